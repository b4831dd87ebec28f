// Package backend talks to the HR email backend that owns the escalation
// queue.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrdesk/hrreview/internal/escalation"
	"github.com/hrdesk/hrreview/internal/logging"
	"github.com/hrdesk/hrreview/internal/version"
	"go.uber.org/zap"
)

const (
	escalationsPath = "/api/escalations"
	updatePath      = "/api/update_email"

	// maxErrorBody bounds how much of a failed response is kept for logs.
	maxErrorBody = 4 << 10
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// HTTPError is returned when the backend answers with a non-success status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	// Detail is the "error" field of a JSON error body, or the raw body.
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is the boundary to the backend. It is an interface so the review
// core can be exercised without a server.
type Client interface {
	// FetchEscalations returns the escalation queue in server order.
	FetchEscalations(ctx context.Context) ([]escalation.Email, error)

	// UpdateEmail submits one reviewer correction.
	UpdateEmail(ctx context.Context, u escalation.Update) error
}

// HTTPClient is the default HTTP implementation of Client
type HTTPClient struct {
	addr       string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *HTTPClient) {
		c.log = logging.OrNop(l)
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a client for the backend at addr.
func NewHTTPClient(addr string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		addr:       strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Addr returns the backend base address.
func (c *HTTPClient) Addr() string { return c.addr }

func (c *HTTPClient) FetchEscalations(ctx context.Context) ([]escalation.Email, error) {
	var emails []escalation.Email
	if err := c.do(ctx, http.MethodGet, escalationsPath, nil, &emails); err != nil {
		return nil, fmt.Errorf("fetch escalations: %w", err)
	}
	if emails == nil {
		emails = []escalation.Email{}
	}
	return emails, nil
}

func (c *HTTPClient) UpdateEmail(ctx context.Context, u escalation.Update) error {
	if err := c.do(ctx, http.MethodPost, updatePath, u, nil); err != nil {
		return fmt.Errorf("update email %d: %w", u.EmailID, err)
	}
	return nil
}

// do performs one request; any 2xx status is success. When out is nil the
// response body is discarded.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.addr+path, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Detail:     errorDetail(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts {"error": "..."} from an error body, falling back
// to the trimmed text.
func errorDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

// IsConnectionError reports whether err is a transport failure (as opposed
// to the backend answering with an error status).
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return false
	}
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
