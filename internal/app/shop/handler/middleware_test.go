package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cedarcart/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(jwtManager *util.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	m := NewAuthMiddleware(jwtManager)

	router.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID.(uuid.UUID).String()})
	})
	router.GET("/admin", m.Authenticate(), m.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	// Arrange
	router := setupAuthRouter(util.NewJWTManager("secret", time.Hour))

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	// Arrange
	router := setupAuthRouter(util.NewJWTManager("secret", time.Hour))

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc123")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidTokenSetsContext(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("secret", time.Hour)
	router := setupAuthRouter(jwtManager)

	userID := uuid.New()
	token, err := jwtManager.GenerateToken(userID, "test@example.com", false)
	require.NoError(t, err)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	// Arrange
	expiredManager := util.NewJWTManager("secret", -time.Minute)
	router := setupAuthRouter(util.NewJWTManager("secret", time.Hour))

	token, err := expiredManager.GenerateToken(uuid.New(), "test@example.com", false)
	require.NoError(t, err)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestRequireAdmin_RegularUserForbidden(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("secret", time.Hour)
	router := setupAuthRouter(jwtManager)

	token, err := jwtManager.GenerateToken(uuid.New(), "user@example.com", false)
	require.NoError(t, err)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	// Arrange
	jwtManager := util.NewJWTManager("secret", time.Hour)
	router := setupAuthRouter(jwtManager)

	token, err := jwtManager.GenerateToken(uuid.New(), "admin@example.com", true)
	require.NoError(t, err)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}
