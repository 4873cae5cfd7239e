package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/spotifood/spotifood-api/internal/application"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/response"
	"github.com/spotifood/spotifood-api/pkg/validation"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"full_name":    u.FullName,
		"phone_number": u.PhoneNumber,
		"avatar_url":   u.AvatarURL,
		"is_active":    u.IsActive,
		"role":         u.Role.String(),
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error[any](c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

// List GET /api/users (admin)
func (h *UserHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	users, err := h.Svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.Logger.WithError(err).Error("list users failed")
		response.Error[any](c, http.StatusInternalServerError, "list users failed", nil)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userJSON(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]any{"skip": skip, "limit": limit})
}

// Me GET /api/users/me (active user)
func (h *UserHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, userJSON(middleware.CurrentUser(c)), "profile", nil)
}

// Get GET /api/users/:id (self or admin)
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	caller := middleware.CurrentUser(c)
	if id != caller.ID && !caller.IsAdmin() {
		response.Error[any](c, http.StatusForbidden, "cannot access another user's profile", nil)
		return
	}
	u, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == application.ErrUserNotFound {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", id).Error("get user failed")
		response.Error[any](c, http.StatusInternalServerError, "get user failed", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "user", nil)
}

type updateUserRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	IsActive    *bool   `json:"is_active"`
	Role        *string `json:"role" binding:"omitempty,oneof=customer admin restaurant shipper"`
}

// Update PUT /api/users/:id (admin)
// Absent fields are left untouched (exclude-unset semantics).
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), id, application.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IsActive:    req.IsActive,
		Role:        req.Role,
	})
	if err != nil {
		switch err {
		case application.ErrUserNotFound:
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case application.ErrUnknownRole:
			response.Error[any](c, http.StatusBadRequest, "unknown role", nil)
		default:
			h.Logger.WithError(err).WithField("user_id", id).Error("update user failed")
			response.Error[any](c, http.StatusInternalServerError, "update user failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "user updated", nil)
}

// Delete DELETE /api/users/:id (admin)
// Removes the user together with their address book.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		if err == application.ErrUserNotFound {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", id).Error("delete user failed")
		response.Error[any](c, http.StatusInternalServerError, "delete user failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

// Search GET /api/users/search?q= (admin, Elasticsearch-backed)
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("user search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// UploadAvatar POST /api/users/me/avatar (active user, multipart)
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing avatar file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), caller.ID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", caller.ID).Error("avatar upload failed")
		response.Error[any](c, http.StatusInternalServerError, "avatar upload failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}
