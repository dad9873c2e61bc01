package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/emergency-priority/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service := NewService("test-secret", time.Hour)
	hash, err := service.HashPassword("siren-2024")
	require.NoError(t, err)
	service.AddUser(models.User{Username: "dispatch", PasswordHash: hash, Role: models.RoleDispatcher, IsActive: true})
	service.AddUser(models.User{Username: "retired", PasswordHash: hash, Role: models.RoleViewer, IsActive: false})
	return service
}

func TestNewService_Defaults(t *testing.T) {
	service := NewService("", 0)
	assert.NotNil(t, service)
	assert.Equal(t, []byte(DefaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestService_HashPassword(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_Login(t *testing.T) {
	service := newTestService(t)

	resp, err := service.Login("Dispatch", "siren-2024")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Len(t, resp.RefreshToken, 44)
	assert.Equal(t, "dispatch", resp.User.Username)
	assert.Equal(t, models.RoleDispatcher, resp.User.Role)

	claims, err := service.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "dispatch", claims.Username)
	assert.Equal(t, models.RoleDispatcher, claims.Role)
}

func TestService_LoginFailures(t *testing.T) {
	service := newTestService(t)

	_, err := service.Login("dispatch", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("nobody", "siren-2024")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("retired", "siren-2024")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	user := &models.User{Username: "testuser", Role: models.RoleViewer}
	token, _ := service.GenerateToken(user)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	// signed with another secret
	other := NewService("other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_UnknownRole(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	token, _ := service.GenerateToken(&models.User{Username: "x", Role: "admin"})

	_, err := service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	claims := jwt.MapClaims{
		"username": "dispatch",
		"role":     "dispatcher",
		"exp":      time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.jwtSecret)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer "} {
		_, err = service.ExtractTokenFromHeader(header)
		assert.Equal(t, ErrInvalidToken, err, "header %q", header)
	}
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	token, err := service.GenerateRefreshToken()
	assert.NoError(t, err)
	assert.Len(t, token, 44)
}

func TestService_TokenExpiration(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	token, _ := service.GenerateToken(&models.User{Username: "testuser", Role: models.RoleDispatcher})

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)

	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
