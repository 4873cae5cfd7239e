package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/spotifood/spotifood-api/config"
	"github.com/spotifood/spotifood-api/internal/application"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/helpers"
	"github.com/spotifood/spotifood-api/pkg/mailer"
	tpl "github.com/spotifood/spotifood-api/pkg/mailer/templates"
	"github.com/spotifood/spotifood-api/pkg/response"
	"github.com/spotifood/spotifood-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.UserService
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Cfg    *config.Config
	Pub    *helpers.RabbitPublisher
}

func NewAuthHandler(svc *application.UserService, jwt *helpers.JWTManager, logger *logrus.Logger, cfg *config.Config, pub *helpers.RabbitPublisher) *AuthHandler {
	return &AuthHandler{Svc: svc, JWT: jwt, Logger: logger, Cfg: cfg, Pub: pub}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,pwd"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

func (h *AuthHandler) issueToken(c *gin.Context, u *entity.User, message string) {
	token, exp, err := h.JWT.GenerateToken(u.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	}, message, map[string]any{"expires_at": exp})
}

// enqueueMail publishes a notification job; mail is best-effort and never
// blocks the request outcome.
func (h *AuthHandler) enqueueMail(c *gin.Context, u *entity.User, template string) {
	if h.Pub == nil || h.Cfg == nil || !h.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data: map[string]any{
			"Name":  u.FullName,
			"Email": u.Email,
			"Time":  time.Now().UTC().Format(time.RFC3339),
		},
	}
	if err := h.Pub.PublishJSON(c, job); err != nil {
		h.Logger.WithError(err).WithField("template", template).Warn("email publish failed")
	}
}

// Register POST /api/auth/register
// Creates a customer account and returns a bearer token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if err == application.ErrEmailTaken {
			response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	h.enqueueMail(c, u, tpl.Welcome)
	h.issueToken(c, u, "registered")
}

// Login POST /api/auth/login
// Bad email and bad password are indistinguishable in the response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		response.Error[any](c, http.StatusUnauthorized, "incorrect email or password", nil)
		return
	}
	if !u.IsActive {
		response.Error[any](c, http.StatusBadRequest, "account inactive", nil)
		return
	}
	h.issueToken(c, u, "login successful")
}

// ChangePassword POST /api/auth/change-password (active user)
// The current password is authenticated here before the directory service
// re-hashes the new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	u := middleware.CurrentUser(c)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if _, err := h.Svc.Authenticate(c.Request.Context(), u.Email, req.CurrentPassword); err != nil {
		response.Error[any](c, http.StatusBadRequest, "current password is incorrect", nil)
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), u.ID, req.NewPassword); err != nil {
		h.Logger.WithError(err).WithField("user_id", u.ID).Error("change password failed")
		response.Error[any](c, http.StatusInternalServerError, "password change failed", nil)
		return
	}
	h.enqueueMail(c, u, tpl.PasswordChanged)
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed", nil)
}
