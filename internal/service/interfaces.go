package service

import (
	"context"

	"rowdybuddy/internal/domain"
)

// Services holds all application services
type Services struct {
	Route RouteService
}

// RouteService defines the route operations the HTTP layer consumes
type RouteService interface {
	// CreateRoute stores a new escort request on behalf of a user
	CreateRoute(ctx context.Context, req *domain.CreateRouteRequest) (*domain.Route, error)

	// GetRoute fetches a route by its id
	GetRoute(ctx context.Context, routeID string) (*domain.Route, error)

	// ActiveRouteForUser returns the route a user currently has open, or
	// nil when there is none
	ActiveRouteForUser(ctx context.Context, userID string) (*domain.Route, error)
}
