package container

import (
	"rowdybuddy/internal/config"
	"rowdybuddy/internal/repository"
	"rowdybuddy/internal/service"
	"rowdybuddy/pkg/firestore"
	"rowdybuddy/pkg/logger"
	"rowdybuddy/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *logger.Logger
	Cache           *redis.Client
	DocumentClient  *firestore.Client
	RouteRepository repository.RouteRepository
	UserRepository  repository.UserRepository
	Services        *service.Services
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var cache *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			cache = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	// Initialize the document store client
	var opts []firestore.Option
	if cfg.FirestoreBaseURL != "" {
		opts = append(opts, firestore.WithBaseURL(cfg.FirestoreBaseURL))
	}
	documentClient, err := firestore.NewClient(cfg.FirestoreCredentials(), log, opts...)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	routeRepo := repository.NewRouteRepository(documentClient)
	userRepo := repository.NewUserRepository(documentClient)

	// Initialize services
	routeService := service.NewRouteService(routeRepo, userRepo, cache, log)

	services := &service.Services{
		Route: routeService,
	}

	return &Container{
		Config:          cfg,
		Logger:          log,
		Cache:           cache,
		DocumentClient:  documentClient,
		RouteRepository: routeRepo,
		UserRepository:  userRepo,
		Services:        services,
	}, nil
}

// GetRouteService returns the route service
func (c *Container) GetRouteService() service.RouteService {
	return c.Services.Route
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetCache returns the Redis client (may be nil if not configured)
func (c *Container) GetCache() *redis.Client {
	return c.Cache
}

// HasCache returns true if the Redis client is available
func (c *Container) HasCache() bool {
	return c.Cache != nil
}

// Close releases held resources
func (c *Container) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
