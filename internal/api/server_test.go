package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenplate/campus-client/internal/config"
	"github.com/greenplate/campus-client/internal/domain"
	"github.com/greenplate/campus-client/internal/payment"
)

type fakeSessions struct {
	mu       sync.Mutex
	options  map[string]domain.WidgetOptions
	outcomes map[string]domain.PaymentOutcome
}

func newFakeSessions(ids ...string) *fakeSessions {
	f := &fakeSessions{
		options:  make(map[string]domain.WidgetOptions),
		outcomes: make(map[string]domain.PaymentOutcome),
	}
	for _, id := range ids {
		f.options[id] = domain.WidgetOptions{
			Key:          "rzp_test_key",
			Amount:       domain.MoneyFromMajor(240),
			Currency:     "INR",
			OrderID:      "order_" + id,
			MerchantName: "GreenPlate",
			ThemeColor:   "#10B981",
		}
	}
	return f
}

func (f *fakeSessions) Options(id string) (domain.WidgetOptions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	opts, ok := f.options[id]
	if !ok {
		return domain.WidgetOptions{}, payment.ErrSessionNotFound
	}
	if _, done := f.outcomes[id]; done {
		return domain.WidgetOptions{}, payment.ErrSessionResolved
	}
	return opts, nil
}

func (f *fakeSessions) Resolve(id string, outcome domain.PaymentOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.options[id]; !ok {
		return payment.ErrSessionNotFound
	}
	if _, done := f.outcomes[id]; done {
		return payment.ErrSessionResolved
	}
	f.outcomes[id] = outcome
	return nil
}

func (f *fakeSessions) outcome(id string) (domain.PaymentOutcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.outcomes[id]
	return o, ok
}

type fakeSDK struct {
	script []byte
}

func (f fakeSDK) Script() ([]byte, bool) {
	return f.script, f.script != nil
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		API: &config.APIConfig{Port: "0", BaseURL: "localhost:8787"},
		Gin: &config.GinConfig{Mode: "test"},
	}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutPage(t *testing.T) {
	s := NewServer(testConfig(), newFakeSessions("abc"), fakeSDK{})

	rec := do(t, s, http.MethodGet, "/checkout/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(t, html, `"order_id":"order_abc"`)
	assert.Contains(t, html, `"amount":24000`)
	assert.Contains(t, html, "/api/v1/checkout/abc/success")
	assert.Contains(t, html, "/api/v1/checkout/abc/failure")
	assert.Contains(t, html, "₹240.00")

	rec = do(t, s, http.MethodGet, "/checkout/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSDKScript(t *testing.T) {
	s := NewServer(testConfig(), newFakeSessions(), fakeSDK{})
	rec := do(t, s, http.MethodGet, "/sdk/checkout.js", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s = NewServer(testConfig(), newFakeSessions(), fakeSDK{script: []byte("window.Razorpay=1")})
	rec = do(t, s, http.MethodGet, "/sdk/checkout.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "window.Razorpay=1", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
}

func TestPaymentSuccess(t *testing.T) {
	sessions := newFakeSessions("abc")
	s := NewServer(testConfig(), sessions, fakeSDK{})

	body := `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_abc","razorpay_signature":"sig"}`
	rec := do(t, s, http.MethodPost, "/api/v1/checkout/abc/success", body)
	require.Equal(t, http.StatusOK, rec.Code)

	outcome, ok := sessions.outcome("abc")
	require.True(t, ok)
	assert.False(t, outcome.Failed)
	assert.Equal(t, "pay_1", outcome.PaymentID)
	assert.Equal(t, "sig", outcome.Signature)

	rec = do(t, s, http.MethodPost, "/api/v1/checkout/abc/success", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/checkout/nope/success", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentSuccess_MissingFields(t *testing.T) {
	sessions := newFakeSessions("abc")
	s := NewServer(testConfig(), sessions, fakeSDK{})

	rec := do(t, s, http.MethodPost, "/api/v1/checkout/abc/success", `{"razorpay_payment_id":"pay_1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errBody map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.NotEmpty(t, errBody["request_id"])

	_, resolved := sessions.outcome("abc")
	assert.False(t, resolved)
}

func TestPaymentFailure(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{name: "gateway reason", body: `{"reason":"Card declined","code":"BAD_REQUEST_ERROR"}`, reason: "Card declined"},
		{name: "empty reason", body: `{}`, reason: payment.ReasonDefault},
		{name: "dismissed", body: `{"dismissed":true}`, reason: payment.ReasonCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newFakeSessions("abc")
			s := NewServer(testConfig(), sessions, fakeSDK{})

			rec := do(t, s, http.MethodPost, "/api/v1/checkout/abc/failure", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			outcome, ok := sessions.outcome("abc")
			require.True(t, ok)
			assert.True(t, outcome.Failed)
			assert.Equal(t, tt.reason, outcome.Reason)
		})
	}
}

func TestSwaggerOnlyWhenEnabled(t *testing.T) {
	conf := testConfig()
	s := NewServer(conf, newFakeSessions(), fakeSDK{})
	rec := do(t, s, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	conf = testConfig()
	conf.API.EnableSwagger = true
	s = NewServer(conf, newFakeSessions(), fakeSDK{})
	rec = do(t, s, http.MethodGet, "/swagger/doc.json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/checkout/{sessionID}")
}

func TestServeListener_ShutsDownOnCancel(t *testing.T) {
	s := NewServer(testConfig(), newFakeSessions(), fakeSDK{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ServeListener(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListen_FailsWhenPortTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	conf := testConfig()
	_, port, err := net.SplitHostPort(taken.Addr().String())
	require.NoError(t, err)
	conf.API.Port = port

	s := NewServer(conf, newFakeSessions(), fakeSDK{})
	_, err = s.Listen()
	assert.Error(t, err)

	err = s.Serve(context.Background())
	assert.Error(t, err)
}

func TestListen_BindsConfiguredPort(t *testing.T) {
	s := NewServer(testConfig(), newFakeSessions(), fakeSDK{})

	ln, err := s.Listen()
	require.NoError(t, err)
	defer ln.Close()

	host, _, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
}
