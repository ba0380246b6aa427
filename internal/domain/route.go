package domain

import "time"

// GeoPoint is a (latitude, longitude) coordinate
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Route represents an escort request: a walk from an origin to a destination
// that a buddy can accept
type Route struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	DisplayName     string    `json:"displayName"`
	Origin          GeoPoint  `json:"origin"`
	OriginName      string    `json:"originName"`
	Destination     GeoPoint  `json:"destination"`
	DestinationName string    `json:"destinationName"`
	Timestamp       time.Time `json:"timestamp"`
	UserPhoto       string    `json:"userPhoto"`
}

// CreateRouteRequest is the payload for requesting a new escort route.
// Field names match the stored document fields and the userId query
// parameter, the API speaks camelCase throughout.
type CreateRouteRequest struct {
	UserID          string   `json:"userId"`
	DisplayName     string   `json:"displayName"`
	Origin          GeoPoint `json:"origin"`
	OriginName      string   `json:"originName"`
	Destination     GeoPoint `json:"destination"`
	DestinationName string   `json:"destinationName"`
}
