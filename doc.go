// Package backend provides the Balentine API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Authentication and authorization services
// - internal/websocket: Real-time messaging and presence
// - internal/repository: Durable message storage
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (auth, rate limiting, metrics)
// - internal/cache: Redis client for rate limiting
// - internal/metrics: Prometheus instrumentation
// - internal/config: Environment-based configuration
// - internal/logger: Structured logging with rotation

// See the individual package documentation for detailed API reference.
package backend
