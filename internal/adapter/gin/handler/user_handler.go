package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	"user-crud-console/internal/usecase/user"
	apperrors "user-crud-console/pkg/errors"
	"user-crud-console/pkg/logger"
)

// UserHandler serves the /users resource in the shape jsonplaceholder uses:
// bare JSON arrays and objects, 201 on create and an empty object on delete.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Register mounts the user routes on r.
func (h *UserHandler) Register(r gin.IRouter) {
	users := r.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
}

// ListUsers handles GET /users[?q=term]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, "list users", err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var body domain.User
	if !h.bindUser(c, &body) {
		return
	}

	created, err := h.uc.CreateUser(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, "get user", err)
		return
	}

	c.JSON(http.StatusOK, u)
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var body domain.User
	if !h.bindUser(c, &body) {
		return
	}

	updated, err := h.uc.UpdateUser(c.Request.Context(), id, body)
	if err != nil {
		h.handleError(c, "update user", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, "delete user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid user id", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}

// bindUser decodes the body. Only malformed JSON is rejected; field contents are the
// client's responsibility.
func (h *UserHandler) bindUser(c *gin.Context, out *domain.User) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_body",
			Message: err.Error(),
		})
		return false
	}
	return true
}

// handleError converts usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var (
		notFound   *apperrors.NotFoundError
		validation *apperrors.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		log.Warn(op+" failed", zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &validation):
		log.Warn(op+" failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_input", Message: validation.Message})
	default:
		log.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
