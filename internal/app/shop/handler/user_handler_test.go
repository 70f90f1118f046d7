package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cedarcart/internal/app/shop/entity"
	"cedarcart/internal/app/shop/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ===================== Register Handler Tests =====================

func TestRegisterHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	userID := uuid.New()

	userService := new(MockUserService)
	userService.On("Register", mock.Anything, mock.AnythingOfType("*entity.RegisterRequest")).Return(&entity.AuthResponse{
		ID:       userID,
		Username: "ivan",
		Email:    "ivan@example.com",
		Token:    "jwt-token",
	}, nil)

	h := NewUserHandler(userService)
	router.POST("/api/users", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username:        "ivan",
		Email:           "ivan@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestRegisterHandler_PasswordMismatch(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	userService := new(MockUserService)
	h := NewUserHandler(userService)
	router.POST("/api/users", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username:        "ivan",
		Email:           "ivan@example.com",
		Password:        "password123",
		ConfirmPassword: "different",
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	userService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	userService := new(MockUserService)
	userService.On("Register", mock.Anything, mock.AnythingOfType("*entity.RegisterRequest")).Return(nil, service.ErrUserExists)

	h := NewUserHandler(userService)
	router.POST("/api/users", h.Register)

	body, _ := json.Marshal(entity.RegisterRequest{
		Username:        "ivan",
		Email:           "taken@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ===================== Login Handler Tests =====================

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	// Arrange
	router := setupTestRouter()

	userService := new(MockUserService)
	userService.On("Login", mock.Anything, mock.AnythingOfType("*entity.LoginRequest")).Return(nil, service.ErrInvalidCredentials)

	h := NewUserHandler(userService)
	router.POST("/api/users/login", h.Login)

	body, _ := json.Marshal(entity.LoginRequest{
		Email:    "ivan@example.com",
		Password: "wrong",
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ===================== Profile Handler Tests =====================

func TestGetProfileHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	userID := uuid.New()

	userService := new(MockUserService)
	userService.On("GetProfile", mock.Anything, userID).Return(&entity.UserResponse{
		ID:       userID,
		Username: "ivan",
		Email:    "ivan@example.com",
	}, nil)

	h := NewUserHandler(userService)
	router.GET("/api/users/profile", authStub(userID, false), h.GetProfile)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.ID)
}

// ===================== Admin Handler Tests =====================

func TestDeleteUserHandler_SelfDeletion(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	adminID := uuid.New()

	userService := new(MockUserService)
	userService.On("DeleteUser", mock.Anything, adminID, adminID).Return(service.ErrSelfDeletion)

	h := NewUserHandler(userService)
	router.DELETE("/api/users/:id", authStub(adminID, true), h.DeleteUser)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/users/"+adminID.String(), nil)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "own account")
}

func TestChangeRoleHandler_Success(t *testing.T) {
	// Arrange
	router := setupTestRouter()
	targetID := uuid.New()

	userService := new(MockUserService)
	userService.On("ChangeRole", mock.Anything, targetID, true).Return(&entity.UserResponse{
		ID: targetID, IsAdmin: true,
	}, nil)

	h := NewUserHandler(userService)
	router.PATCH("/api/users/:id/role", authStub(uuid.New(), true), h.ChangeRole)

	body := []byte(`{"is_admin": true}`)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/users/"+targetID.String()+"/role", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsAdmin)
}
