// internal/mpesa/client.go
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"hesabu-service/internal/pkg/xerrors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tokenTimeout = 10 * time.Second
	pushTimeout  = 15 * time.Second

	// Refresh the cached token this long before its reported expiry.
	tokenSafetyMargin = 60 * time.Second

	defaultTokenTTL = 3599 * time.Second
)

// Client talks to the Daraja API. It caches the OAuth bearer token in memory
// for the process lifetime; concurrent callers during a cache miss may each
// refresh, which is harmless since the token endpoint is idempotent. The
// mutex only keeps the cache fields race-free.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time
	log  *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Client)

// WithHTTPClient overrides the HTTP client, used by tests to inject a fake
// transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock overrides the time source, used by tests to drive token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: pushTimeout},
		now:  time.Now,
		log:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken returns the cached bearer token, refreshing it when it is
// expired or within the safety margin of expiring.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.token, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && c.now().Before(expiry.Add(-tokenSafetyMargin)) {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &xerrors.GatewayError{Op: "token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &xerrors.GatewayError{Op: "token", Status: resp.StatusCode}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &xerrors.GatewayError{Op: "token", Err: fmt.Errorf("decode response: %w", err)}
	}

	ttl := defaultTokenTTL
	if secs, err := body.ExpiresIn.Int64(); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	c.mu.Lock()
	c.token = body.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	c.mu.Unlock()

	c.log.Info("obtained M-Pesa access token")
	return body.AccessToken, nil
}

// STKPush submits a push-payment request for the given phone number and
// amount. The returned CheckoutRequestID must be stored on the payment so
// the asynchronous callback can be matched back to it.
func (c *Client) STKPush(ctx context.Context, phone string, amount decimal.Decimal, accountRef, description string) (*STKPushResponse, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := formatTimestamp(c.now())
	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          buildPassword(c.cfg.Shortcode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            json.Number(amount.String()),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stk push payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	url := c.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to build stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &xerrors.GatewayError{Op: "stkpush", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Warn("stk push rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, &xerrors.GatewayError{Op: "stkpush", Status: resp.StatusCode}
	}

	var out STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &xerrors.GatewayError{Op: "stkpush", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// formatTimestamp renders a time as yyyyMMddHHmmss, the format Daraja expects
// in the push password.
func formatTimestamp(t time.Time) string {
	return t.Format("20060102150405")
}

// buildPassword derives the push password: base64(shortcode+passkey+timestamp).
func buildPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
