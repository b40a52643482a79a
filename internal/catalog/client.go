package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the catalog operations the UI and CLI depend on.
// This interface is implemented by *Client and can be used for testing.
type Service interface {
	List(ctx context.Context, query ListQuery) ([]Record, error)
	Detail(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, draft Draft) (Record, error)
	Update(ctx context.Context, id int64, fields Update) error
	Delete(ctx context.Context, id int64) error
	Login(ctx context.Context, creds Credentials) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

const (
	defaultAPIBase   = "http://localhost:8080"
	defaultUserAgent = "folio/0.1"
	requestTimeout   = 10 * time.Second
	maxBodyBytes     = 4 << 20
)

// Option customizes a Client.
type Option func(*Client)

// WithLogger routes request logging to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient builds a Client for the service rooted at apiBase.
func NewClient(apiBase string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List retrieves the catalog, optionally narrowed to one owner.
func (c *Client) List(ctx context.Context, query ListQuery) ([]Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if owner := strings.TrimSpace(query.Owner); owner != "" {
		values.Set("userId", owner)
	}
	body, err := c.do(ctx, http.MethodGet, "/book/list", values, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// Detail retrieves a single book.
func (c *Client) Detail(ctx context.Context, id int64) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	body, err := c.do(ctx, http.MethodGet, "/book/detail/"+formatID(id), nil, nil)
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(body)
}

// Create posts a new book and returns the stored record.
func (c *Client) Create(ctx context.Context, draft Draft) (Record, error) {
	if c == nil {
		return Record{}, fmt.Errorf("client is nil")
	}
	if err := draft.Validate(); err != nil {
		return Record{}, err
	}
	body, err := c.do(ctx, http.MethodPost, "/book/insert", nil, draft)
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(body)
}

// Update sends the present fields of an edit. The response body is not
// inspected beyond its status.
func (c *Client) Update(ctx context.Context, id int64, fields Update) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := fields.Validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, "/book/update/simple/"+formatID(id), nil, fields)
	return err
}

// Delete removes a book.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	_, err := c.do(ctx, http.MethodDelete, "/book/delete/"+formatID(id), nil, nil)
	return err
}

// Login checks credentials with the service. Success only means the
// service answered 2xx; no token is kept.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(creds.Email) == "" {
		return fmt.Errorf("email must not be empty")
	}
	_, err := c.do(ctx, http.MethodPost, "/user/login", nil, creds)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	reqURL := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", reqURL.Path),
		zap.String("request_id", requestID),
	)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("catalog request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, reqURL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("catalog response read failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	log.Debug("catalog request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(body)}
		log.Info("catalog returned error status", zap.Int("status", resp.StatusCode), zap.String("message", httpErr.Error()))
		return nil, httpErr
	}
	return body, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", apiBase, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api_base %q: unsupported scheme %q", apiBase, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_base %q: missing host", apiBase)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
