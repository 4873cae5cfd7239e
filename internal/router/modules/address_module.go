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

// AddressModule wires the per-user address book under /api/addresses.
// All routes require an active authenticated user.
type AddressModule struct {
	Handler *handlers.AddressHandler
	JWT     *helpers.JWTManager
	Users   repository.UserRepository
}

func NewAddressModule(h *handlers.AddressHandler, jwt *helpers.JWTManager, users repository.UserRepository) *AddressModule {
	return &AddressModule{Handler: h, JWT: jwt, Users: users}
}

func (m *AddressModule) Register(rg *gin.RouterGroup) {
	addresses := rg.Group("/addresses")
	addresses.Use(middleware.Authenticate(m.JWT, m.Users))
	addresses.Use(middleware.RequireActive())
	addresses.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		addresses.GET("", m.Handler.List)
		addresses.POST("", m.Handler.Create)
		addresses.GET("/:id", m.Handler.Get)
		addresses.PUT("/:id", m.Handler.Update)
		addresses.DELETE("/:id", m.Handler.Delete)
	}
}
