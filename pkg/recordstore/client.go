package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Collection names served by the remote store.
const (
	Users = "users"
	Jobs  = "jobs"
)

const maxErrorBody = 512

// Client is a thin HTTP gateway over a generic CRUD API. It performs exactly
// one attempt per call and caches nothing.
type Client struct {
	base   *url.URL
	cfg    Config
	client *http.Client
	closed int32 // atomic flag for Close()
}

var _ repository.RecordGateway = (*Client)(nil)

// NewClient creates a new record store client. An empty BaseURL or UserAgent
// falls back to DefaultConfig.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		base:   u,
		cfg:    cfg,
		client: httpClient,
	}
	logger.Info("recordstore: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(cfg Config) (*Client, error) {
	defaultClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// Close releases idle connections on the underlying transport when
// supported. Close is idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
			logger.Info("recordstore: client Close() called - CloseIdleConnections invoked")
		}
	}
	return nil
}

// package-level logger for pkg/recordstore; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/recordstore. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// List decodes every record of collection into out (a pointer to a slice).
func (c *Client) List(ctx context.Context, collection string, out any) error {
	return c.do(ctx, http.MethodGet, c.endpoint(collection), nil, out)
}

// Get decodes one record into out. A missing record yields a *RemoteError
// matching apperr.ErrNotFound.
func (c *Client) Get(ctx context.Context, collection, id string, out any) error {
	return c.do(ctx, http.MethodGet, c.endpoint(collection, id), nil, out)
}

// Create posts in and decodes the stored record (with its assigned id) into out.
func (c *Client) Create(ctx context.Context, collection string, in, out any) error {
	return c.do(ctx, http.MethodPost, c.endpoint(collection), in, out)
}

// Replace overwrites the whole record with in. There is no version check:
// concurrent writers to the same record race and the last write wins.
func (c *Client) Replace(ctx context.Context, collection, id string, in, out any) error {
	return c.do(ctx, http.MethodPut, c.endpoint(collection, id), in, out)
}

func (c *Client) endpoint(parts ...string) *url.URL {
	return c.base.JoinPath(parts...)
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, in, out any) error {
	op := method + " " + u.Path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("recordstore: request failed", slog.String("op", op), slog.Any("err", err))
		return &apperr.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("recordstore: response",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.RemoteError{Op: op, StatusCode: resp.StatusCode, Body: string(b)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	return nil
}
