package firestore

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenSource(t *testing.T) (*TokenSource, *time.Time) {
	t.Helper()

	creds, _ := testCredentials(t)
	signer, err := NewSigner(creds)
	require.NoError(t, err)

	current := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	ts := NewTokenSource(signer)
	ts.now = func() time.Time { return current }

	return ts, &current
}

func TestAuthHeadersFormat(t *testing.T) {
	ts, _ := newTestTokenSource(t)

	headers, err := ts.AuthHeaders()
	require.NoError(t, err)

	require.Len(t, headers, 1)
	assert.True(t, strings.HasPrefix(headers["Authorization"], "Bearer "))
}

func TestAuthHeadersReusesTokenWithinWindow(t *testing.T) {
	ts, current := newTestTokenSource(t)

	first, err := ts.AuthHeaders()
	require.NoError(t, err)

	// Still well within the hour
	*current = current.Add(30 * time.Minute)

	second, err := ts.AuthHeaders()
	require.NoError(t, err)

	assert.Equal(t, first["Authorization"], second["Authorization"])
}

func TestAuthHeadersRegeneratesAfterExpiry(t *testing.T) {
	ts, current := newTestTokenSource(t)

	first, err := ts.AuthHeaders()
	require.NoError(t, err)

	*current = current.Add(2 * time.Hour)

	second, err := ts.AuthHeaders()
	require.NoError(t, err)

	assert.NotEqual(t, first["Authorization"], second["Authorization"])
}

func TestAuthHeadersRegeneratesAtExactExpiry(t *testing.T) {
	ts, current := newTestTokenSource(t)

	first, err := ts.AuthHeaders()
	require.NoError(t, err)

	// Expiry is inclusive: a token expiring exactly now is stale
	*current = current.Add(time.Hour)

	second, err := ts.AuthHeaders()
	require.NoError(t, err)

	assert.NotEqual(t, first["Authorization"], second["Authorization"])
}

func TestAuthHeadersConcurrentAccess(t *testing.T) {
	ts, _ := newTestTokenSource(t)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			headers, err := ts.AuthHeaders()
			assert.NoError(t, err)
			results[i] = headers["Authorization"]
		}(i)
	}
	wg.Wait()

	for _, header := range results[1:] {
		assert.Equal(t, results[0], header)
	}
}
