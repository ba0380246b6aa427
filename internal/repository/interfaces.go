package repository

import (
	"context"

	"rowdybuddy/internal/domain"
)

// RouteRepository defines storage operations for escort routes
type RouteRepository interface {
	// Create stores a new route and returns the assigned document id
	Create(ctx context.Context, route *domain.Route) (string, error)

	// GetByID fetches a route by its document id
	GetByID(ctx context.Context, routeID string) (*domain.Route, error)

	// FindByUserID returns the route requested by the given user, or nil
	// when the user has none
	FindByUserID(ctx context.Context, userID string) (*domain.Route, error)
}

// UserRepository defines storage operations for user profiles
type UserRepository interface {
	// Create stores a new user profile and returns the assigned document id
	Create(ctx context.Context, user *domain.User) (string, error)

	// FindByUID returns the profile for the given auth uid, or nil when
	// no profile exists
	FindByUID(ctx context.Context, uid string) (*domain.User, error)
}
