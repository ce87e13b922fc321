// Package auth implements account registration, login and JWT verification.
// The same token verification backs both the REST middleware and the live
// connection handshake.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserBanned         = errors.New("account is banned")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service handles all authentication operations
type Service struct {
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte) *Service {
	return &Service{
		jwtSecret: jwtSecret,
		tokenTTL:  7 * 24 * time.Hour,
	}
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=6"`
	Bio      string `json:"bio"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new user account
func (s *Service) Register(req SignupRequest) (*AuthResponse, error) {
	var existing models.User
	err := database.DB.Where("LOWER(username) = LOWER(?)", req.Username).First(&existing).Error
	if err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hashed),
		Bio:          req.Bio,
		Role:         models.RoleUser,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateAuthResponse(&user)
}

// Login authenticates a user with username/password
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	var user models.User
	err := database.DB.Where("LOWER(username) = LOWER(?)", req.Username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, ErrUserBanned
	}

	return s.generateAuthResponse(&user)
}

// generateAuthResponse creates a signed JWT and auth response
func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT and returns the fresh user record. Banned
// accounts fail validation even when their token is still signed and unexpired.
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing expiration", ErrInvalidToken)
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	// Numeric claims decode as float64
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("%w: invalid user_id claim", ErrInvalidToken)
	}

	var user models.User
	if err := database.DB.First(&user, uint(rawID)).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if user.IsBanned {
		return nil, ErrUserBanned
	}

	return &user, nil
}
