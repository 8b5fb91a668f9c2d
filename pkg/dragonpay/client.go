package dragonpay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// ProductionBaseURL is the Dragonpay production gateway.
	ProductionBaseURL = "https://gw.dragonpay.ph/"
	// SandboxBaseURL is the Dragonpay test gateway.
	SandboxBaseURL = "https://test.dragonpay.ph/"
)

// Client holds the merchant credentials issued by Dragonpay. It is immutable
// once constructed and may be shared across goroutines.
type Client struct {
	merchantID       string
	merchantPassword string
	baseURL          string
	httpClient       *http.Client
	debug            bool
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the gateway base URL. A trailing slash is added if missing.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base == "" {
			return
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.baseURL = base
	}
}

// WithSandbox points the client at the Dragonpay test gateway.
func WithSandbox() Option {
	return func(c *Client) {
		c.baseURL = SandboxBaseURL
	}
}

// WithHTTPClient replaces the HTTP client used by Inquire and Cancel.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Dragonpay client descriptor.
func NewClient(merchantID, merchantPassword string, opts ...Option) *Client {
	c := &Client{
		merchantID:       merchantID,
		merchantPassword: merchantPassword,
		baseURL:          ProductionBaseURL,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		debug:            os.Getenv("ENV") == "development",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MerchantID returns the merchant identifier.
func (c *Client) MerchantID() string {
	return c.merchantID
}

// MerchantPassword returns the merchant secret.
func (c *Client) MerchantPassword() string {
	return c.merchantPassword
}

// BaseURL returns the gateway base URL, always ending with a slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// maxResponseSize caps MerchantRequest bodies; the gateway answers with a few bytes.
const maxResponseSize = 64 * 1024

// doGet issues a GET against a fully formed gateway URL and returns the trimmed body.
func (c *Client) doGet(ctx context.Context, rawURL string) (string, error) {
	if c.debug {
		log.Debug().
			Str("endpoint", maskURL(rawURL)).
			Msg("[DRAGONPAY] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Int("status_code", resp.StatusCode).
			Str("response", string(body)).
			Msg("[DRAGONPAY] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrUnexpectedResponse, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return strings.TrimSpace(string(body)), nil
}

// maskURL hides credential query parameters before a URL is logged.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***UNPARSEABLE***"
	}
	q := u.Query()
	for key := range q {
		k := strings.ToLower(key)
		if strings.Contains(k, "pwd") || strings.Contains(k, "password") {
			q.Set(key, "***MASKED***")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
