package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spotifood/spotifood-api/internal/container"
	"github.com/spotifood/spotifood-api/internal/domain/repository"
	handlers "github.com/spotifood/spotifood-api/internal/interface/http"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/helpers"
)

// AuthModule wires registration, login and password change.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected (active user): POST /api/auth/change-password
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, users repository.UserRepository) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Users: users}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Authenticate(m.JWT, m.Users))
	auth.Use(middleware.RequireActive())
	auth.Use(middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/auth/change-password", m.Handler.ChangePassword)
	}
}
