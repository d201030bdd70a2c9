package mpesa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hesabu-service/internal/pkg/xerrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/api/v1/payments/mpesa/callback",
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig("https://sandbox.safaricom.co.ke")
	require.NoError(t, cfg.Validate())

	cfg.Passkey = ""
	require.Error(t, cfg.Validate())
}

func TestAccessTokenCaching(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/oauth/v1/generate", r.URL.Path)
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   "3599",
		})
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(testConfig(srv.URL), zap.NewNop(),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return now }),
	)

	tok1, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	tok2, err := client.AccessToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", tok1)
	assert.Equal(t, tok1, tok2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "second call within TTL must not hit the network")

	// Advance past expiry: exactly one refresh.
	now = now.Add(2 * time.Hour)
	_, err = client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestAccessTokenRefreshesInsideSafetyMargin(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok",
			"expires_in":   "120",
		})
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(testConfig(srv.URL), zap.NewNop(),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return now }),
	)

	_, err := client.AccessToken(context.Background())
	require.NoError(t, err)

	// 90s in: 30s of nominal TTL left, inside the 60s margin.
	now = now.Add(90 * time.Second)
	_, err = client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestSTKPush(t *testing.T) {
	var gotPush stkPushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok-push",
				"expires_in":   "3599",
			})
		case "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer tok-push", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPush))
			_ = json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID:   "mr-1",
				CheckoutRequestID:   "ws_CO_123",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	client := NewClient(testConfig(srv.URL), zap.NewNop(),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return now }),
	)

	resp, err := client.STKPush(context.Background(), "254712345678", decimal.NewFromInt(400), "INV-001", "Invoice INV-001")
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_123", resp.CheckoutRequestID)

	assert.Equal(t, "174379", gotPush.BusinessShortCode)
	assert.Equal(t, "CustomerPayBillOnline", gotPush.TransactionType)
	assert.Equal(t, "254712345678", gotPush.PartyA)
	assert.Equal(t, "174379", gotPush.PartyB)
	assert.Equal(t, "20250601120000", gotPush.Timestamp)
	assert.Equal(t, buildPassword("174379", "passkey", "20250601120000"), gotPush.Password)
	assert.Equal(t, json.Number("400"), gotPush.Amount)
}

func TestSTKPushGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok",
				"expires_in":   "3599",
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), zap.NewNop(), WithHTTPClient(srv.Client()))

	_, err := client.STKPush(context.Background(), "254712345678", decimal.NewFromInt(100), "INV-002", "test")
	require.Error(t, err)
	assert.True(t, xerrors.IsGatewayError(err))
}

func TestBuildPassword(t *testing.T) {
	// base64("174379" + "passkey" + "20250601120000")
	assert.Equal(t, "MTc0Mzc5cGFzc2tleTIwMjUwNjAxMTIwMDAw", buildPassword("174379", "passkey", "20250601120000"))
}
