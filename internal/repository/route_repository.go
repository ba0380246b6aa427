package repository

import (
	"context"
	"fmt"

	"rowdybuddy/internal/domain"
	"rowdybuddy/pkg/firestore"
)

// routesCollection is the document collection holding escort routes
const routesCollection = "routes"

// routeRepository stores escort routes in the document database
type routeRepository struct {
	client *firestore.Client
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(client *firestore.Client) RouteRepository {
	return &routeRepository{
		client: client,
	}
}

// Create stores a new route and returns the assigned document id
func (r *routeRepository) Create(ctx context.Context, route *domain.Route) (string, error) {
	id, err := r.client.CreateDocument(ctx, routesCollection, route.ID, routeToFields(route))
	if err != nil {
		return "", fmt.Errorf("failed to create route: %w", err)
	}
	return id, nil
}

// GetByID fetches a route by its document id
func (r *routeRepository) GetByID(ctx context.Context, routeID string) (*domain.Route, error) {
	doc, err := r.client.GetDocument(ctx, routesCollection, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get route %s: %w", routeID, err)
	}
	return routeFromDocument(doc), nil
}

// FindByUserID returns the route requested by the given user, or nil when the
// user has none
func (r *routeRepository) FindByUserID(ctx context.Context, userID string) (*domain.Route, error) {
	query := firestore.NewQuery(routesCollection).WhereEqual("userId", firestore.String(userID))

	docs, err := r.client.RunQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes for user %s: %w", userID, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return routeFromDocument(&docs[0]), nil
}

// routeToFields maps a route onto its stored field dictionary
func routeToFields(route *domain.Route) firestore.Map {
	return firestore.Map{
		"userId":          firestore.String(route.UserID),
		"displayName":     firestore.String(route.DisplayName),
		"origin":          firestore.GeoPoint{Latitude: route.Origin.Latitude, Longitude: route.Origin.Longitude},
		"originName":      firestore.String(route.OriginName),
		"destination":     firestore.GeoPoint{Latitude: route.Destination.Latitude, Longitude: route.Destination.Longitude},
		"destinationName": firestore.String(route.DestinationName),
		"timestamp":       firestore.Timestamp(route.Timestamp),
		"userPhoto":       firestore.String(route.UserPhoto),
	}
}

// routeFromDocument maps a stored document back onto a route
func routeFromDocument(doc *firestore.Document) *domain.Route {
	origin := geoField(doc.Fields, "origin")
	destination := geoField(doc.Fields, "destination")

	return &domain.Route{
		ID:              doc.ID,
		UserID:          stringField(doc.Fields, "userId"),
		DisplayName:     stringField(doc.Fields, "displayName"),
		Origin:          domain.GeoPoint{Latitude: origin.Latitude, Longitude: origin.Longitude},
		OriginName:      stringField(doc.Fields, "originName"),
		Destination:     domain.GeoPoint{Latitude: destination.Latitude, Longitude: destination.Longitude},
		DestinationName: stringField(doc.Fields, "destinationName"),
		Timestamp:       timeField(doc.Fields, "timestamp"),
		UserPhoto:       stringField(doc.Fields, "userPhoto"),
	}
}
