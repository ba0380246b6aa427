package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"rowdybuddy/pkg/errors"
	"rowdybuddy/pkg/logger"
)

// Client is a minimal REST client for the Firestore document API. The app
// runs in environments where the vendor SDK is unavailable, so the wire
// protocol and service-account authentication are implemented directly.
// The client holds no document state; every read and write round-trips to
// the server, and writes are unconditional last-write-wins creates.
type Client struct {
	baseURL    string
	tokens     *TokenSource
	httpClient *http.Client
	logger     *logger.Logger
	retry      RetryConfig
}

// RetryConfig bounds automatic retries of transport failures. Only network
// errors are ever retried; a rejected payload or a missing document cannot
// become valid by asking again. The zero value disables retries.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the document resource root, used to point the client
// at an emulator or a test server
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetry enables bounded retries with jitter for network failures
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// NewClient creates a document store client for the given service account.
// It fails with a configuration error when the private key cannot be parsed,
// before any network call is attempted.
func NewClient(creds Credentials, log *logger.Logger, opts ...Option) (*Client, error) {
	signer, err := NewSigner(creds)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL: fmt.Sprintf(
			"https://firestore.googleapis.com/v1beta1/projects/%s/databases/(default)/documents",
			creds.ProjectID),
		tokens: NewTokenSource(signer),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Document is a named, field-keyed record stored by the document database
type Document struct {
	ID     string
	Fields Map
}

// documentResource is the REST representation of a stored document
type documentResource struct {
	Name       string               `json:"name"`
	Fields     map[string]WireValue `json:"fields"`
	CreateTime string               `json:"createTime,omitempty"`
	UpdateTime string               `json:"updateTime,omitempty"`
}

func (r *documentResource) toDocument() (*Document, error) {
	fields, err := DecodeFields(r.Fields)
	if err != nil {
		return nil, err
	}
	return &Document{ID: path.Base(r.Name), Fields: fields}, nil
}

// GetDocument fetches a single document by collection and id
func (c *Client) GetDocument(ctx context.Context, collection, documentID string) (*Document, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, collection, documentID)

	data, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var resource documentResource
	if err := json.Unmarshal(data, &resource); err != nil {
		return nil, errors.NewExternalError("failed to parse document response", err)
	}

	doc, err := resource.toDocument()
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"collection":  collection,
		"document_id": documentID,
	}).Debug("Fetched document")

	return doc, nil
}

// CreateDocument creates a document in the given collection and returns the
// id assigned by the server. A non-empty documentID requests that exact id;
// otherwise the server picks one. Existing documents are overwritten, there
// are no concurrency preconditions.
func (c *Client) CreateDocument(ctx context.Context, collection, documentID string, fields Map) (string, error) {
	encoded, err := EncodeFields(fields)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(struct {
		Fields map[string]WireValue `json:"fields"`
	}{Fields: encoded})
	if err != nil {
		return "", errors.NewInternalError("failed to marshal document payload", err)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, collection)
	if documentID != "" {
		endpoint += "?documentId=" + url.QueryEscape(documentID)
	}

	data, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return "", err
	}

	var resource documentResource
	if err := json.Unmarshal(data, &resource); err != nil {
		return "", errors.NewExternalError("failed to parse create response", err)
	}

	newID := path.Base(resource.Name)

	c.logger.WithFields(map[string]interface{}{
		"collection":  collection,
		"document_id": newID,
	}).Debug("Created document")

	return newID, nil
}

// queryResult is one envelope of a runQuery response. Some backends emit a
// single envelope without a document to signal an empty result set.
type queryResult struct {
	Document *documentResource `json:"document"`
	ReadTime string            `json:"readTime,omitempty"`
}

// RunQuery executes a structured query and returns the matching documents.
// An empty response array and a response of document-less envelopes are both
// zero results, never an error.
func (c *Client) RunQuery(ctx context.Context, query Query) ([]Document, error) {
	body, err := query.toWire()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternalError("failed to marshal query payload", err)
	}

	data, err := c.do(ctx, http.MethodPost, c.baseURL+":runQuery", payload)
	if err != nil {
		return nil, err
	}

	var results []queryResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, errors.NewExternalError("failed to parse query response", err)
	}

	docs := make([]Document, 0, len(results))
	for _, result := range results {
		if result.Document == nil {
			continue
		}
		doc, err := result.Document.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	c.logger.WithFields(map[string]interface{}{
		"collection": query.collection,
		"results":    len(docs),
	}).Debug("Ran structured query")

	return docs, nil
}

// do issues one authenticated request, retrying transport failures when a
// retry policy is configured. Server-reported errors are returned as-is on
// the first response, carrying the server's message.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	headers, err := c.tokens.AuthHeaders()
	if err != nil {
		return nil, err
	}

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt + 1,
				"method":  method,
			}).Debug("Retrying request after network failure")

			select {
			case <-ctx.Done():
				return nil, errors.NewNetworkError("request cancelled", ctx.Err())
			case <-time.After(backoff(c.retry.BaseDelay, attempt)):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, errors.NewInternalError("failed to create request", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = errors.NewNetworkError("request to document store failed", err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errors.NewNetworkError("failed to read response body", err)
			continue
		}

		if apiErr := serverError(resp.StatusCode, data); apiErr != nil {
			return nil, apiErr
		}

		return data, nil
	}

	return nil, lastErr
}

// backoff returns a jittered exponential delay for the given retry attempt
func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(base)))
	return delay + jitter
}

// errorBody is the error envelope the REST API wraps failures in
type errorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// serverError maps a server-reported failure onto the error taxonomy,
// preserving the server's message. Returns nil when the response is not an
// error.
func serverError(statusCode int, body []byte) error {
	var envelope errorBody
	_ = json.Unmarshal(body, &envelope)

	if envelope.Error != nil {
		code := envelope.Error.Code
		if code == 0 {
			code = statusCode
		}
		return mapStatus(code, envelope.Error.Message)
	}

	if statusCode >= 400 {
		return mapStatus(statusCode, strings.TrimSpace(string(body)))
	}

	return nil
}

func mapStatus(code int, message string) error {
	switch code {
	case http.StatusNotFound:
		return errors.NewNotFoundError(message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthenticationError(message)
	case http.StatusBadRequest:
		return errors.NewValidationError(message, nil)
	default:
		return errors.NewExternalError(message, nil)
	}
}
