package auth

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", "")
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	database.DB = db
}

func newTestService() *Service {
	return NewService([]byte("test-secret"))
}

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	login, err := svc.Login(LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	_, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(SignupRequest{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameExists)

	// Usernames are case-insensitive
	_, err = svc.Register(SignupRequest{Username: "ALICE", Password: "other"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	_, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBannedUser(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	database.DB.Model(&models.User{}).Where("id = ?", resp.User.ID).Update("is_banned", true)

	_, err = svc.Login(LoginRequest{Username: "alice", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestValidateToken(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	other := NewService([]byte("different-secret"))
	_, err = other.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"user_id":  resp.User.ID,
		"username": "alice",
		"role":     models.RoleUser,
		"exp":      time.Now().Add(-time.Hour).Unix(),
		"iat":      time.Now().Add(-2 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expired, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsBannedUser(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	database.DB.Model(&models.User{}).Where("id = ?", resp.User.ID).Update("is_banned", true)

	// The token is still valid cryptographically but the account is gone
	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestValidateTokenRejectsDeletedUser(t *testing.T) {
	setupTestDB(t)
	svc := newTestService()

	resp, err := svc.Register(SignupRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	database.DB.Delete(&models.User{}, resp.User.ID)

	_, err = svc.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
