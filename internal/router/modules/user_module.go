package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spotifood/spotifood-api/internal/container"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/domain/repository"
	handlers "github.com/spotifood/spotifood-api/internal/interface/http"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/helpers"
)

// UserModule wires the user directory endpoints.
// Active user: GET /api/users/me, GET /api/users/:id, POST /api/users/me/avatar
// Admin only: GET /api/users/, GET /api/users/search, PUT/DELETE /api/users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, users repository.UserRepository) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Users: users}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Authenticate(m.JWT, m.Users))
	users.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))

	active := users.Group("/")
	active.Use(middleware.RequireActive())
	{
		active.GET("/me", m.Handler.Me)
		active.POST("/me/avatar", m.Handler.UploadAvatar)
		active.GET("/:id", m.Handler.Get)
	}

	admin := users.Group("/")
	admin.Use(middleware.RequireActive(), middleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("", m.Handler.List)
		admin.GET("/search", m.Handler.Search)
		admin.PUT("/:id", m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
