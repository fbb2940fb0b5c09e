package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/abhilekh-app/backend/internal/auth"
	"github.com/abhilekh-app/backend/internal/records"
	"github.com/abhilekh-app/backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userIDContextKey    = "abhilekh_user_id"
	userEmailContextKey = "abhilekh_user_email"
)

var (
	errMissingTokenManager   = errors.New("token manager dependency required")
	errMissingUsersService   = errors.New("users service dependency required")
	errMissingRecordsService = errors.New("records service dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// TokenManager issues bearer tokens at sign-in and validates them on record
// routes.
type TokenManager interface {
	IssueToken(ctx context.Context, userID, email string) (string, int64, error)
	ValidateToken(token string) (auth.Claims, error)
}

type Dependencies struct {
	TokenManager   TokenManager
	UsersService   *users.Service
	RecordsService *records.Service
	HealthCheck    func(ctx context.Context) error
	Logger         *zap.Logger
}

func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.UsersService == nil {
		return nil, errMissingUsersService
	}
	if deps.RecordsService == nil {
		return nil, errMissingRecordsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:  deps.TokenManager,
		users:   deps.UsersService,
		records: deps.RecordsService,
		health:  deps.HealthCheck,
		logger:  logger,
	}

	router.GET("/healthz", handler.handleHealthz)
	router.POST("/api/auth/signup", handler.handleSignUp)
	router.POST("/api/auth/signin", handler.handleSignIn)

	protected := router.Group("/api")
	protected.Use(handler.authorizeRequest)
	protected.GET("/records", handler.handleListRecords)
	protected.POST("/records", handler.handleCreateRecord)
	protected.DELETE("/records", handler.handleDeleteRecord)
	protected.GET("/records/:id", handler.handleGetRecord)

	return router, nil
}

type httpHandler struct {
	tokens  TokenManager
	users   *users.Service
	records *records.Service
	health  func(ctx context.Context) error
	logger  *zap.Logger
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponsePayload struct {
	Token string `json:"token"`
}

type deleteRecordPayload struct {
	ID string `json:"id"`
}

func (h *httpHandler) handleHealthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleSignUp(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	_, err := h.users.Register(c.Request.Context(), request.Email, request.Password)
	switch {
	case errors.Is(err, users.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
	case errors.Is(err, users.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
	case err != nil:
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
	}
}

func (h *httpHandler) handleSignIn(c *gin.Context) {
	var request credentialsPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	account, err := h.users.Authenticate(c.Request.Context(), request.Email, request.Password)
	switch {
	case errors.Is(err, users.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	case err != nil:
		h.logger.Error("signin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	token, _, err := h.tokens.IssueToken(c.Request.Context(), account.ID, account.Email)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, tokenResponsePayload{Token: token})
}

func (h *httpHandler) handleListRecords(c *gin.Context) {
	stored, err := h.records.ListRecords(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch records"})
		return
	}
	if stored == nil {
		stored = []records.Record{}
	}
	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) handleCreateRecord(c *gin.Context) {
	var record records.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record payload"})
		return
	}

	if _, err := h.records.SaveRecord(c.Request.Context(), record); err != nil {
		if errors.Is(err, records.ErrDuplicateRecord) {
			c.JSON(http.StatusConflict, gin.H{"error": "Record already exists"})
			return
		}
		h.logger.Error("failed to save record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save record"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Record saved successfully"})
}

func (h *httpHandler) handleDeleteRecord(c *gin.Context) {
	var request deleteRecordPayload
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Record id is required"})
		return
	}

	if err := h.records.DeleteRecord(c.Request.Context(), request.ID); err != nil {
		h.logger.Error("failed to delete record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

func (h *httpHandler) handleGetRecord(c *gin.Context) {
	stored, err := h.records.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		h.logger.Error("failed to fetch record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch record"})
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errInvalidAuthorization.Error()})
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}
	c.Set(userIDContextKey, claims.UserID)
	c.Set(userEmailContextKey, claims.UserEmail)
	c.Next()
}
