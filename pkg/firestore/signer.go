package firestore

import (
	"crypto/rsa"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rowdybuddy/pkg/errors"
)

const (
	// tokenAudience is the API root the signed token is scoped to
	tokenAudience = "https://firestore.googleapis.com/"
	// tokenTTL is the validity window of a signed token
	tokenTTL = time.Hour
)

// Credentials holds the service account identity used to authenticate
// against the document store. Loaded once from configuration at startup.
type Credentials struct {
	ProjectID    string
	PrivateKeyID string
	PrivateKey   string
	ClientEmail  string
}

// Signer mints short-lived RS256 bearer tokens asserting the service
// account's identity. Signing is a local computation, no network involved.
type Signer struct {
	creds Credentials
	key   *rsa.PrivateKey
}

// NewSigner parses the service account private key and returns a Signer.
// A key that cannot be parsed is a configuration error: fatal, not retried.
func NewSigner(creds Credentials) (*Signer, error) {
	// Keys delivered through env vars carry literal \n sequences
	pemData := strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemData))
	if err != nil {
		return nil, errors.NewConfigurationError("failed to parse service account private key", err)
	}

	return &Signer{creds: creds, key: key}, nil
}

// Sign produces a signed JWT valid for one hour from now, returning the
// compact token and its expiry as epoch seconds
func (s *Signer) Sign(now time.Time) (string, int64, error) {
	issuedAt := now.Truncate(time.Second)
	expiresAt := issuedAt.Add(tokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    s.creds.ClientEmail,
		Subject:   s.creds.ClientEmail,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.creds.PrivateKeyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", 0, errors.NewConfigurationError("failed to sign service account token", err)
	}

	return signed, expiresAt.Unix(), nil
}
