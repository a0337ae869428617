// Package storage uploads registration documents to an S3-compatible
// object gateway and hands back publicly reachable URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/skyhigh-allstar/tryouts-api/internal/platform/logging"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/resilience"
)

const maxErrorBodyBytes = 1 << 20

// ErrUnavailable is returned when the circuit breaker rejects a request
// before it reaches the gateway.
var ErrUnavailable = crerr.New("object storage is temporarily unavailable")

var errStorageTransient = crerr.New("storage transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	Endpoint       string
	Bucket         string
	AccessKey      string
	SecretKey      string
	PublicBaseURL  string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.BreakerConfig
}

// Client talks to one bucket of the storage gateway. Uploads overwrite
// existing objects under the same key.
type Client struct {
	httpClient     *http.Client
	endpoint       string
	bucket         string
	accessKey      string
	secretKey      string
	publicBaseURL  string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.Breaker
	circuitEnabled bool
	backoff        func(attempt int) time.Duration
}

func NewClient(cfg ClientConfig) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, crerr.New("storage endpoint is empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse storage endpoint %q", endpoint)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, crerr.Newf("storage endpoint %q uses unsupported scheme=%q", endpoint, parsed.Scheme)
	}

	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, crerr.New("storage bucket is empty")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	breakerCfg := resilience.NormalizeBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		endpoint:       endpoint,
		bucket:         bucket,
		accessKey:      strings.TrimSpace(cfg.AccessKey),
		secretKey:      strings.TrimSpace(cfg.SecretKey),
		publicBaseURL:  strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		backoff:        linearBackoff,
	}, nil
}

// Upload stores data under key and returns the public URL of the object.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", crerr.New("object key is empty")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "storage circuit breaker rejected upload",
				"state", c.breaker.State(), "key", key)
			return "", fmt.Errorf("%w: circuit is %s", ErrUnavailable, c.breaker.State())
		}
	}

	err := c.executePut(ctx, c.objectURL(key), contentType, data)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, errStorageTransient) {
			c.breaker.Observe(err)
		} else {
			c.breaker.Observe(nil)
		}
	}
	if err != nil {
		c.logger.WarnContext(ctx, "storage upload failed", "key", key, "error", err.Error())
		return "", err
	}

	return c.PublicURL(key), nil
}

// Remove deletes the object stored under key. Missing objects are not an
// error; the gateway answers 404 and the caller only wanted it gone.
func (c *Client) Remove(ctx context.Context, key string) error {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return crerr.New("object key is empty")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: circuit is %s", ErrUnavailable, c.breaker.State())
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(key), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}
	if c.accessKey != "" {
		req.Header.Set("apikey", c.accessKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.circuitEnabled {
			c.breaker.Observe(err)
		}
		return fmt.Errorf("%w: send request: %v", errStorageTransient, err)
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode == http.StatusNotFound:
		if c.circuitEnabled {
			c.breaker.Observe(nil)
		}
		return nil
	case isRetryableStatus(resp.StatusCode):
		err = fmt.Errorf("%w: gateway status=%d message=%s", errStorageTransient, resp.StatusCode, gatewayMessage(raw))
	default:
		err = fmt.Errorf("gateway status=%d message=%s", resp.StatusCode, gatewayMessage(raw))
	}
	if c.circuitEnabled {
		if crerr.Is(err, errStorageTransient) {
			c.breaker.Observe(err)
		} else {
			c.breaker.Observe(nil)
		}
	}
	return err
}

func (c *Client) executePut(ctx context.Context, fullURL, contentType string, data []byte) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, fullURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.ContentLength = int64(len(data))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-upsert", "true")
		if c.secretKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.secretKey)
		}
		if c.accessKey != "" {
			req.Header.Set("apikey", c.accessKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errStorageTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errStorageTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: gateway status=%d message=%s", errStorageTransient, resp.StatusCode, gatewayMessage(raw))
			} else {
				return fmt.Errorf("gateway status=%d message=%s", resp.StatusCode, gatewayMessage(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (c *Client) objectURL(key string) string {
	return joinPath(c.endpoint, "object", c.bucket, key)
}

// PublicURL returns the address an uploaded object is served from.
func (c *Client) PublicURL(key string) string {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if c.publicBaseURL != "" {
		return joinPath(c.publicBaseURL, key)
	}
	return joinPath(c.endpoint, "object", "public", c.bucket, key)
}

func joinPath(base string, parts ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(base)
	for _, part := range parts {
		_ = buf.WriteByte('/')
		_, _ = buf.WriteString(part)
	}
	return buf.String()
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * time.Second
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

type gatewayError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func gatewayMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "(empty body)"
	}
	var payload gatewayError
	if err := sonic.Unmarshal(trimmed, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	if len(trimmed) > 256 {
		trimmed = trimmed[:256]
	}
	return string(trimmed)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
