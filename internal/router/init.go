package router

import (
	"github.com/spotifood/spotifood-api/internal/application"
	"github.com/spotifood/spotifood-api/internal/container"
	pginfra "github.com/spotifood/spotifood-api/internal/infrastructure/postgres"
	handlers "github.com/spotifood/spotifood-api/internal/interface/http"
	"github.com/spotifood/spotifood-api/internal/router/modules"
)

// InitModules builds the feature modules from the container singletons and
// registers them with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	addressRepo := pginfra.NewAddressRepository(container.GetPGPool())

	userSvc := application.NewUserService(
		userRepo,
		container.GetGCS(),
		cfg.GCSBucket,
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
	)
	addressSvc := application.NewAddressService(addressRepo, logger)

	authHandler := handlers.NewAuthHandler(userSvc, container.GetJWT(), logger, cfg, container.GetRabbitPub())
	userHandler := handlers.NewUserHandler(userSvc, logger)
	addressHandler := handlers.NewAddressHandler(addressSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT(), userRepo))
	r.Add(modules.NewUserModule(userHandler, container.GetJWT(), userRepo))
	r.Add(modules.NewAddressModule(addressHandler, container.GetJWT(), userRepo))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
