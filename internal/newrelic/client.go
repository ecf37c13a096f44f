package newrelic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relicnotify/internal/config"
	"relicnotify/internal/credentials"
)

const (
	// USEndpoint is the default API host.
	USEndpoint = "https://api.newrelic.com"
	// EUEndpoint is the API host for accounts in the EU data center.
	EUEndpoint = "https://api.eu.newrelic.com"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "relicnotify"
	maxErrorSnippet  = 512
)

// HTTPDoer describes the HTTP client used to reach New Relic.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DetailWriter receives supplementary lines about a failed send, such as the
// message NerdGraph returned.
type DetailWriter interface {
	Detail(msg string)
}

// Client sends deployment notifications. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	usEndpoint string
	euEndpoint string
	userAgent  string
	httpClient HTTPDoer
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithEndpoints overrides the US and EU base URLs. Empty values keep the
// current setting.
func WithEndpoints(us, eu string) Option {
	return func(c *Client) {
		if us = strings.TrimRight(strings.TrimSpace(us), "/"); us != "" {
			c.usEndpoint = us
		}
		if eu = strings.TrimRight(strings.TrimSpace(eu), "/"); eu != "" {
			c.euEndpoint = eu
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent = strings.TrimSpace(agent); agent != "" {
			c.userAgent = agent
		}
	}
}

// NewClient constructs a client talking to the public New Relic hosts.
func NewClient(opts ...Option) *Client {
	client := &Client{
		usEndpoint: USEndpoint,
		euEndpoint: EUEndpoint,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig builds a client using the endpoints, timeout and user agent
// from cfg.
func NewFromConfig(cfg *config.Config) *Client {
	if cfg == nil {
		return NewClient()
	}
	return NewClient(
		WithEndpoints(cfg.NewRelic.USEndpoint, cfg.NewRelic.EUEndpoint),
		WithUserAgent(cfg.NewRelic.UserAgent),
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
	)
}

// EndpointFor returns the API base URL for the requested region.
func (c *Client) EndpointFor(european bool) string {
	if european {
		return c.euEndpoint
	}
	return c.usEndpoint
}

type response struct {
	status int
	body   []byte
}

func (c *Client) post(ctx context.Context, url, headerName string, secret credentials.Secret, payload []byte) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerName, secret.Reveal())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	return response{status: resp.StatusCode, body: body}, nil
}

func successful(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorSnippet {
		text = text[:maxErrorSnippet] + "..."
	}
	return text
}
