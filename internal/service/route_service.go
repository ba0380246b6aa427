package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rowdybuddy/internal/domain"
	"rowdybuddy/internal/repository"
	"rowdybuddy/pkg/errors"
	"rowdybuddy/pkg/logger"
	"rowdybuddy/pkg/redis"
)

// routeService orchestrates route creation and lookups, with a cache-aside
// layer in front of the active-route query
type routeService struct {
	routes repository.RouteRepository
	users  repository.UserRepository
	cache  *redis.Client // may be nil, the service then skips caching
	logger *logger.Logger
	now    func() time.Time
}

// NewRouteService creates a new route service
func NewRouteService(routes repository.RouteRepository, users repository.UserRepository, cache *redis.Client, log *logger.Logger) RouteService {
	return &routeService{
		routes: routes,
		users:  users,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// CreateRoute stores a new escort request. The requester's photo is read from
// their profile so the route card can show it to potential buddies.
func (s *routeService) CreateRoute(ctx context.Context, req *domain.CreateRouteRequest) (*domain.Route, error) {
	user, err := s.lookupProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no profile found for user %s", req.UserID))
	}

	route := &domain.Route{
		UserID:          req.UserID,
		DisplayName:     req.DisplayName,
		Origin:          req.Origin,
		OriginName:      req.OriginName,
		Destination:     req.Destination,
		DestinationName: req.DestinationName,
		Timestamp:       s.now().UTC(),
		UserPhoto:       user.PhotoURL,
	}

	id, err := s.routes.Create(ctx, route)
	if err != nil {
		return nil, err
	}
	route.ID = id

	s.invalidateActiveRoute(ctx, req.UserID)

	s.logger.WithFields(map[string]interface{}{
		"route_id": id,
		"user_id":  req.UserID,
	}).Info("Route created")

	return route, nil
}

// GetRoute fetches a route by its id
func (s *routeService) GetRoute(ctx context.Context, routeID string) (*domain.Route, error) {
	return s.routes.GetByID(ctx, routeID)
}

// ActiveRouteForUser returns the route a user currently has open, or nil when
// there is none. Lookups are cached briefly since the walk screen polls this.
func (s *routeService) ActiveRouteForUser(ctx context.Context, userID string) (*domain.Route, error) {
	if route, ok := s.cachedActiveRoute(ctx, userID); ok {
		return route, nil
	}

	route, err := s.routes.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.storeActiveRoute(ctx, userID, route)
	return route, nil
}

// lookupProfile fetches the requesting user's profile, cache-aside. Profiles
// change rarely, so a longer TTL than the active-route cache is safe.
func (s *routeService) lookupProfile(ctx context.Context, uid string) (*domain.User, error) {
	if s.cache != nil {
		key := s.cache.KeyBuilder.KeyUserProfile(uid)
		val, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var user domain.User
			if err := json.Unmarshal([]byte(val), &user); err != nil {
				s.logger.WithError(err).Warn("User profile cache corrupted, falling back to store")
				break
			}
			s.logger.WithField("uid", uid).Debug("User profile cache hit")
			return &user, nil
		case !redis.IsCacheMiss(err):
			s.logger.WithError(err).Warn("User profile cache read failed, falling back to store")
		}
	}

	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to look up requesting user: %w", err)
	}

	if s.cache != nil && user != nil {
		if payload, err := json.Marshal(user); err == nil {
			key := s.cache.KeyBuilder.KeyUserProfile(uid)
			if err := s.cache.Set(ctx, key, payload, redis.TTLUserProfile); err != nil {
				s.logger.WithError(err).Warn("Failed to cache user profile")
			}
		}
	}

	return user, nil
}

// cachedActiveRoute reads the active-route cache. The second return value
// reports a usable cache hit.
func (s *routeService) cachedActiveRoute(ctx context.Context, userID string) (*domain.Route, bool) {
	if s.cache == nil {
		return nil, false
	}

	key := s.cache.KeyBuilder.KeyActiveRoute(userID)
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsCacheMiss(err) {
			s.logger.WithError(err).Warn("Active route cache read failed, falling back to store")
		}
		return nil, false
	}

	var route domain.Route
	if err := json.Unmarshal([]byte(val), &route); err != nil {
		s.logger.WithError(err).Warn("Active route cache corrupted, falling back to store")
		return nil, false
	}

	s.logger.WithField("user_id", userID).Debug("Active route cache hit")
	return &route, true
}

// storeActiveRoute caches an active-route result, best effort. A missing
// route is not cached so a freshly created one shows up immediately.
func (s *routeService) storeActiveRoute(ctx context.Context, userID string, route *domain.Route) {
	if s.cache == nil || route == nil {
		return
	}

	payload, err := json.Marshal(route)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal route for caching")
		return
	}

	key := s.cache.KeyBuilder.KeyActiveRoute(userID)
	if err := s.cache.Set(ctx, key, payload, redis.TTLActiveRoute); err != nil {
		s.logger.WithError(err).Warn("Failed to cache active route")
	}
}

// invalidateActiveRoute drops the cached active route for a user
func (s *routeService) invalidateActiveRoute(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}

	key := s.cache.KeyBuilder.KeyActiveRoute(userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate active route cache")
	}
}
