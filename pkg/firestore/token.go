package firestore

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// authToken is a signed bearer token together with its expiry instant.
// Never persisted; a process restart just forces one fresh signing.
type authToken struct {
	token     string
	expiresAt int64
}

// TokenSource caches the most recent signed token and re-signs exactly when
// it is absent or expired. Reads of a valid token never block; concurrent
// refreshes of an expired one are collapsed into a single signing operation.
type TokenSource struct {
	signer *Signer
	now    func() time.Time
	group  singleflight.Group
	cached atomic.Pointer[authToken]
}

// NewTokenSource creates a token source backed by the given signer
func NewTokenSource(signer *Signer) *TokenSource {
	return &TokenSource{
		signer: signer,
		now:    time.Now,
	}
}

// AuthHeaders returns the Authorization header for an authenticated request,
// minting a fresh token when the cached one is absent or expired
func (ts *TokenSource) AuthHeaders() (map[string]string, error) {
	tok := ts.cached.Load()
	if tok == nil || tok.expiresAt <= ts.now().Unix() {
		fresh, err := ts.refresh()
		if err != nil {
			return nil, err
		}
		tok = fresh
	}

	return map[string]string{"Authorization": "Bearer " + tok.token}, nil
}

// refresh signs a new token and publishes it to the cache
func (ts *TokenSource) refresh() (*authToken, error) {
	v, err, _ := ts.group.Do("token", func() (interface{}, error) {
		signed, expiresAt, err := ts.signer.Sign(ts.now())
		if err != nil {
			return nil, err
		}
		fresh := &authToken{token: signed, expiresAt: expiresAt}
		ts.cached.Store(fresh)
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*authToken), nil
}
