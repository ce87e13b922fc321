package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance
var Log *zap.Logger

// Initialize sets up the structured logger.
// logLevel: "debug", "info", "warn", "error" (default: "info")
// logFile: path to a rotating JSON log file; empty disables file output
// (console only, used by tests).
func Initialize(logLevel string, logFile string) error {
	if logLevel == "" {
		logLevel = "info"
	}

	level := parseLogLevel(logLevel)

	// Console output stays human-readable, the file gets JSON
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), level),
	}

	if logFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		})

		jsonEncoderConfig := zap.NewProductionEncoderConfig()
		jsonEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		jsonEncoder := zapcore.NewJSONEncoder(jsonEncoderConfig)

		cores = append(cores, zapcore.NewCore(jsonEncoder, fileWriter, level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	Log.Info("Logger initialized",
		zap.String("level", logLevel),
		zap.String("file", logFile),
	)

	return nil
}

// Close flushes the logger before shutdown
func Close() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}

// parseLogLevel converts string to zapcore.Level
func parseLogLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Field helpers for common logging patterns

func WithUserID(userID uint) zap.Field {
	return zap.Uint("user_id", userID)
}

func WithSessionID(sessionID string) zap.Field {
	return zap.String("session_id", sessionID)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}
