package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyActiveRoute returns the cache key for a user's open route
func (kb *KeyBuilder) KeyActiveRoute(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyActiveRoute, userID))
}

// KeyUserProfile returns the cache key for a user profile
func (kb *KeyBuilder) KeyUserProfile(uid string) string {
	return kb.BuildKey(fmt.Sprintf(KeyUserProfile, uid))
}
