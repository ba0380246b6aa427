package repository

import (
	"context"
	"fmt"

	"rowdybuddy/internal/domain"
	"rowdybuddy/pkg/firestore"
)

// usersCollection is the document collection holding user profiles
const usersCollection = "users"

// userRepository stores user profiles in the document database
type userRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *firestore.Client) UserRepository {
	return &userRepository{
		client: client,
	}
}

// Create stores a new user profile and returns the assigned document id
func (r *userRepository) Create(ctx context.Context, user *domain.User) (string, error) {
	fields := firestore.Map{
		"uid":      firestore.String(user.UID),
		"name":     firestore.String(user.Name),
		"email":    firestore.String(user.Email),
		"photoURL": firestore.String(user.PhotoURL),
	}

	id, err := r.client.CreateDocument(ctx, usersCollection, user.ID, fields)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// FindByUID returns the profile for the given auth uid, or nil when no
// profile exists
func (r *userRepository) FindByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := firestore.NewQuery(usersCollection).WhereEqual("uid", firestore.String(uid))

	docs, err := r.client.RunQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users for uid %s: %w", uid, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc := docs[0]
	return &domain.User{
		ID:       doc.ID,
		UID:      stringField(doc.Fields, "uid"),
		Name:     stringField(doc.Fields, "name"),
		Email:    stringField(doc.Fields, "email"),
		PhotoURL: stringField(doc.Fields, "photoURL"),
	}, nil
}
