// Package transport is the JSON-over-HTTP client used to reach AI providers.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/logging"
)

// maxErrorBody caps how much of an error response is kept in an APIError.
const maxErrorBody = 4096

// Client provides HTTP client functionality with authentication.
type Client struct {
	provider string
	apiKey   string
	http     *http.Client
	auth     Authenticator
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for provider that authenticates with apiKey.
func New(provider, apiKey string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		provider: provider,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:     auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in errors.
func (c *Client) Provider() string { return c.provider }

// Do performs an HTTP request with authentication and JSON headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.apiKey == "" {
		if _, noAuth := c.auth.(*NoAuth); !noAuth {
			return nil, &errors.APIError{Provider: c.provider, Message: "no API key configured", Err: errors.ErrAPIKeyRequired}
		}
	}
	c.auth.Apply(req, c.apiKey)

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError(c.provider, "", err.Error())
		}
		return nil, errors.WrapAPI(c.provider, 0, err)
	}
	return resp, nil
}

// PostJSON sends body as JSON and decodes a 200 response into target.
func (c *Client) PostJSON(ctx context.Context, url string, body, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.WrapParse("json", "request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.WrapAPI(c.provider, 0, err)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return c.DecodeResponse(ctx, resp, target)
}

// DecodeResponse decodes a JSON response into target. Non-200 responses
// become APIErrors carrying the start of the body.
func (c *Client) DecodeResponse(ctx context.Context, resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("provider", c.provider).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &errors.APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   resp.Request.URL.String(),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}
