package repository

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rowdybuddy/internal/domain"
	"rowdybuddy/pkg/firestore"
	"rowdybuddy/pkg/logger"
)

const testBasePath = "/v1beta1/projects/rowdybuddy/databases/(default)/documents"

func newTestClient(t *testing.T, handler http.HandlerFunc) *firestore.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	creds := firestore.Credentials{
		ProjectID:    "rowdybuddy",
		PrivateKeyID: "key-id-1",
		PrivateKey:   string(pemKey),
		ClientEmail:  "svc@rowdybuddy.iam.gserviceaccount.com",
	}

	log, err := logger.New("error", "test")
	require.NoError(t, err)

	client, err := firestore.NewClient(creds, log, firestore.WithBaseURL(server.URL+testBasePath))
	require.NoError(t, err)
	return client
}

func TestRouteRepositoryCreateWireFormat(t *testing.T) {
	var captured map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, testBasePath+"/routes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "projects/rowdybuddy/databases/(default)/documents/routes/NEW1",
			"fields": {}
		}`))
	})

	repo := NewRouteRepository(client)
	route := &domain.Route{
		UserID:          "user-42",
		DisplayName:     "Alex",
		Origin:          domain.GeoPoint{Latitude: 29.584, Longitude: -98.619},
		OriginName:      "Rec Center",
		Destination:     domain.GeoPoint{Latitude: 29.583, Longitude: -98.617},
		DestinationName: "Chaparral Village",
		Timestamp:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		UserPhoto:       "https://example.com/alex.png",
	}

	id, err := repo.Create(context.Background(), route)
	require.NoError(t, err)
	assert.Equal(t, "NEW1", id)

	fields, ok := captured["fields"].(map[string]interface{})
	require.True(t, ok)

	userID, ok := fields["userId"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user-42", userID["stringValue"])

	origin, ok := fields["origin"].(map[string]interface{})
	require.True(t, ok)
	geo, ok := origin["geoPointValue"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 29.584, geo["latitude"])
	assert.Equal(t, -98.619, geo["longitude"])

	timestamp, ok := fields["timestamp"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T12:00:00Z", timestamp["timestampValue"])
}

func TestRouteRepositoryGetByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testBasePath+"/routes/ROUTE1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "projects/rowdybuddy/databases/(default)/documents/routes/ROUTE1",
			"fields": {
				"userId": {"stringValue": "user-42"},
				"displayName": {"stringValue": "Alex"},
				"origin": {"geoPointValue": {"latitude": 29.584, "longitude": -98.619}},
				"originName": {"stringValue": "Rec Center"},
				"destination": {"geoPointValue": {"latitude": 29.583, "longitude": -98.617}},
				"destinationName": {"stringValue": "Chaparral Village"},
				"timestamp": {"timestampValue": "2024-03-01T12:00:00Z"},
				"userPhoto": {"stringValue": "https://example.com/alex.png"}
			}
		}`))
	})

	repo := NewRouteRepository(client)
	route, err := repo.GetByID(context.Background(), "ROUTE1")
	require.NoError(t, err)

	assert.Equal(t, "ROUTE1", route.ID)
	assert.Equal(t, "user-42", route.UserID)
	assert.Equal(t, "Alex", route.DisplayName)
	assert.Equal(t, domain.GeoPoint{Latitude: 29.584, Longitude: -98.619}, route.Origin)
	assert.Equal(t, "Chaparral Village", route.DestinationName)
	assert.True(t, route.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "https://example.com/alex.png", route.UserPhoto)
}

func TestRouteRepositoryGetByIDToleratesMissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "projects/rowdybuddy/databases/(default)/documents/routes/OLD1",
			"fields": {
				"userId": {"stringValue": "user-42"}
			}
		}`))
	})

	repo := NewRouteRepository(client)
	route, err := repo.GetByID(context.Background(), "OLD1")
	require.NoError(t, err)

	assert.Equal(t, "user-42", route.UserID)
	assert.Empty(t, route.DisplayName)
	assert.Equal(t, domain.GeoPoint{}, route.Origin)
	assert.True(t, route.Timestamp.IsZero())
}

func TestRouteRepositoryFindByUserID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testBasePath+":runQuery", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		query, ok := body["structuredQuery"].(map[string]interface{})
		require.True(t, ok)
		where, ok := query["where"].(map[string]interface{})
		require.True(t, ok)
		filter, ok := where["fieldFilter"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "EQUAL", filter["op"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"document": {
					"name": "projects/rowdybuddy/databases/(default)/documents/routes/ROUTE7",
					"fields": {"userId": {"stringValue": "user-42"}}
				},
				"readTime": "2024-03-01T12:00:01Z"
			}
		]`))
	})

	repo := NewRouteRepository(client)
	route, err := repo.FindByUserID(context.Background(), "user-42")
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, "ROUTE7", route.ID)
}

func TestRouteRepositoryFindByUserIDNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"readTime": "2024-03-01T12:00:01Z"}]`))
	})

	repo := NewRouteRepository(client)
	route, err := repo.FindByUserID(context.Background(), "user-42")
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestUserRepositoryFindByUID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testBasePath+":runQuery", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"document": {
					"name": "projects/rowdybuddy/databases/(default)/documents/users/DOC9",
					"fields": {
						"uid": {"stringValue": "user-42"},
						"name": {"stringValue": "Alex"},
						"email": {"stringValue": "alex@my.utsa.edu"},
						"photoURL": {"stringValue": "https://example.com/alex.png"}
					}
				},
				"readTime": "2024-03-01T12:00:01Z"
			}
		]`))
	})

	repo := NewUserRepository(client)
	user, err := repo.FindByUID(context.Background(), "user-42")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "DOC9", user.ID)
	assert.Equal(t, "user-42", user.UID)
	assert.Equal(t, "alex@my.utsa.edu", user.Email)
}
