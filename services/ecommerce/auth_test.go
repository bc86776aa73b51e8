package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBCryptPasswordEncoder_RoundTrip(t *testing.T) {
	encoder := NewBCryptPasswordEncoder()

	hashed, err := encoder.Encode("abcd1234")

	assert.NoError(t, err)
	assert.NotEqual(t, "abcd1234", hashed, "stored password must never be the raw value")
	assert.True(t, encoder.Matches("abcd1234", hashed))
	assert.False(t, encoder.Matches("wrongpass", hashed))
}

func TestTokenService_GenerateAndVerify(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	user := &User{ID: 1, Username: "alice"}

	token, err := tokens.Generate(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := tokens.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	other := NewTokenService("another-secret", time.Hour)

	token, err := tokens.Generate(&User{Username: "alice"})
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	tokens := NewTokenService("test-secret", -time.Minute)

	token, err := tokens.Generate(&User{Username: "alice"})
	assert.NoError(t, err)

	_, err = tokens.Verify(token)
	assert.Error(t, err)
}

func setupAuthRouter(users *MockUserRepository, tokens *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	handler := NewAuthHandler(users, NewBCryptPasswordEncoder(), tokens)
	r.POST("/api/login", handler.Login)
	return r
}

func TestLogin_Success(t *testing.T) {
	encoder := NewBCryptPasswordEncoder()
	hashed, err := encoder.Encode("abcd1234")
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "alice").Return(&User{
		ID: 1, Username: "alice", Password: hashed,
	}, nil)

	tokens := NewTokenService("test-secret", time.Hour)
	r := setupAuthRouter(users, tokens)

	recorder := performJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "abcd1234",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "token")
	assert.Contains(t, recorder.Header().Get("Authorization"), "Bearer ")
}

func TestLogin_WrongPassword(t *testing.T) {
	encoder := NewBCryptPasswordEncoder()
	hashed, err := encoder.Encode("abcd1234")
	assert.NoError(t, err)

	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "alice").Return(&User{
		ID: 1, Username: "alice", Password: hashed,
	}, nil)

	r := setupAuthRouter(users, NewTokenService("test-secret", time.Hour))

	recorder := performJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "wrongpass",
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("FindByUsername", mock.Anything, "ghost").Return(nil, ErrUserNotFound)

	r := setupAuthRouter(users, NewTokenService("test-secret", time.Hour))

	recorder := performJSON(r, http.MethodPost, "/api/login", map[string]string{
		"username": "ghost", "password": "whatever",
	})

	// Não revela se o usuário existe ou não
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "invalid credentials")
}

func setupProtectedRouter(tokens *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/protected", AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	return r
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := setupProtectedRouter(NewTokenService("test-secret", time.Hour))

	recorder := performJSON(r, http.MethodGet, "/api/protected", nil)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	r := setupProtectedRouter(NewTokenService("test-secret", time.Hour))

	req, _ := http.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	recorder := performRequest(r, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := setupProtectedRouter(NewTokenService("test-secret", time.Hour))

	req, _ := http.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	recorder := performRequest(r, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthMiddleware_ValidTokenInjectsUsername(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)
	r := setupProtectedRouter(tokens)

	token, err := tokens.Generate(&User{Username: "alice"})
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := performRequest(r, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "alice")
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Gera um ID quando ausente
	recorder := performJSON(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))

	// Preserva o ID informado pelo cliente
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "my-request-id")
	recorder = performRequest(r, req)
	assert.Equal(t, "my-request-id", recorder.Header().Get("X-Request-ID"))
}
