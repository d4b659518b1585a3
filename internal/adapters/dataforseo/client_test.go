package dataforseo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"

	"github.com/rs/zerolog"
)

const okEnvelope = `{"version":"0.1","status_code":20000,"status_message":"Ok.","cost":0.0103,"tasks_count":1,"tasks_error":0,
"tasks":[{"id":"t-1","status_code":20000,"status_message":"Ok.","cost":0.0103,"result_count":1,"result":[{"target":"example.com"}]}]}`

type usageRecorder struct {
	mu   sync.Mutex
	rows []Usage
}

func (r *usageRecorder) TryLog(_ context.Context, u Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, u)
}

func (r *usageRecorder) all() []Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Usage(nil), r.rows...)
}

type harness struct {
	client *Client
	usage  *usageRecorder
	delays []time.Duration
	logs   *bytes.Buffer
}

func newHarness(t *testing.T, baseURL string, mut func(*Options)) *harness {
	t.Helper()
	h := &harness{usage: &usageRecorder{}, logs: &bytes.Buffer{}}
	lg := zerolog.New(h.logs)
	o := Options{
		BaseURL:        baseURL,
		Login:          "login",
		Password:       "secret",
		AttemptTimeout: 5 * time.Second,
		Usage:          h.usage,
		Logger:         (*logger.Logger)(&lg),
	}
	if mut != nil {
		mut(&o)
	}
	h.client = NewClient(o)
	h.client.sleep = func(ctx context.Context, d time.Duration) error {
		h.delays = append(h.delays, d)
		return ctx.Err()
	}
	h.client.newID = func() string { return "corr-1" }
	return h
}

func statusServer(t *testing.T, hits *atomic.Int32, fn func(n int32, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		fn(n, w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCall_RetryCeiling(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		var hits atomic.Int32
		srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) {
			w.WriteHeader(status)
		})
		h := newHarness(t, srv.URL, nil)

		_, err := h.client.Call(context.Background(), Request{Endpoint: "/x", Payload: []any{map[string]any{"a": 1}}, Module: "test"})
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if got := hits.Load(); got != MaxRetries+1 {
			t.Fatalf("status %d: attempts = %d, want %d", status, got, MaxRetries+1)
		}
		if len(h.delays) != MaxRetries {
			t.Fatalf("status %d: sleeps = %d, want %d", status, len(h.delays), MaxRetries)
		}
		ge, ok := AsGatewayError(err)
		if !ok || ge.StatusCode != status {
			t.Fatalf("status %d: got %v", status, err)
		}
		if ge.IsRateLimit() != (status == http.StatusTooManyRequests) {
			t.Fatalf("status %d: IsRateLimit = %v", status, ge.IsRateLimit())
		}
		rows := h.usage.all()
		if len(rows) != 1 {
			t.Fatalf("status %d: usage rows = %d, want 1", status, len(rows))
		}
		if rows[0].Attempts != MaxRetries+1 || rows[0].ResponseStatus != status || rows[0].ErrorMessage == "" {
			t.Fatalf("status %d: usage row = %+v", status, rows[0])
		}
	}
}

func TestCall_SingleAttempt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		mut  func(*Options)
		req  Request
	}{
		{"request opts out", nil, Request{Endpoint: "/x", Module: "test", NoRetry: true}},
		{"client disables retries", func(o *Options) { o.MaxRetries = -1 }, Request{Endpoint: "/x", Module: "test"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) {
				w.WriteHeader(http.StatusServiceUnavailable)
			})
			h := newHarness(t, srv.URL, tc.mut)

			_, err := h.client.Call(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if hits.Load() != 1 || len(h.delays) != 0 {
				t.Fatalf("attempts = %d sleeps = %d, want 1 and 0", hits.Load(), len(h.delays))
			}
			if rows := h.usage.all(); len(rows) != 1 || rows[0].Attempts != 1 {
				t.Fatalf("usage rows = %+v", rows)
			}
		})
	}
}

func TestNewClient_MaxRetries(t *testing.T) {
	t.Parallel()

	cases := map[int]int{0: MaxRetries, -1: 0, -7: 0, 5: 5}
	for in, want := range cases {
		if got := NewClient(Options{MaxRetries: in}).MaxRetries(); got != want {
			t.Fatalf("MaxRetries(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCall_NoRetryOn402(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"status_code":40200,"status_message":"Payment Required."}`))
	})
	h := newHarness(t, srv.URL, nil)

	_, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
	if hits.Load() != 1 {
		t.Fatalf("attempts = %d, want 1", hits.Load())
	}
	if !IsCreditsExhausted(err) {
		t.Fatalf("expected credits exhausted, got %v", err)
	}
	if perr.CodeOf(err) != perr.ErrorCodePaymentRequired {
		t.Fatalf("code = %v, want PaymentRequired", perr.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "Payment Required.") {
		t.Fatalf("error %q should carry the upstream message", err)
	}
	if len(h.delays) != 0 {
		t.Fatalf("unexpected sleeps %v", h.delays)
	}
	if n := len(h.usage.all()); n != 1 {
		t.Fatalf("usage rows = %d, want 1", n)
	}
}

func TestCall_NoRetryOnClientErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{400, 401, 403, 404} {
		var hits atomic.Int32
		srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { w.WriteHeader(status) })
		h := newHarness(t, srv.URL, nil)

		_, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
		ge, ok := AsGatewayError(err)
		if !ok || ge.Kind != KindUpstreamClient || ge.Retryable() {
			t.Fatalf("status %d: got %v", status, err)
		}
		if hits.Load() != 1 {
			t.Fatalf("status %d: attempts = %d, want 1", status, hits.Load())
		}
	}
}

func TestCall_RetryAfterHonoured(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(n int32, w http.ResponseWriter) {
		if n == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(okEnvelope))
	})
	h := newHarness(t, srv.URL, nil)

	env, err := h.client.Call(context.Background(), Request{Endpoint: "/x", CallerID: "user-1"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if env.Attempts != 2 || env.HTTPStatus != 200 || env.CorrelationID != "corr-1" {
		t.Fatalf("env meta = attempts %d status %d corr %q", env.Attempts, env.HTTPStatus, env.CorrelationID)
	}
	if len(h.delays) != 1 {
		t.Fatalf("sleeps = %v, want one", h.delays)
	}
	if d := h.delays[0]; d < 5*time.Second || d > 5500*time.Millisecond {
		t.Fatalf("delay %v outside [5s, 5.5s]", d)
	}

	rows := h.usage.all()
	if len(rows) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(rows))
	}
	u := rows[0]
	if u.ResponseStatus != 200 || u.CostUSD == nil || *u.CostUSD != 0.0103 || u.CreditsUsed == nil || *u.CreditsUsed != 1 {
		t.Fatalf("usage = %+v", u)
	}
	if u.ErrorMessage != "" || u.CallerID != "user-1" || u.CorrelationID != "corr-1" {
		t.Fatalf("usage = %+v", u)
	}

	logs := h.logs.String()
	for _, want := range []string{`"endpoint":"/x"`, `"status":429`, `"attempt":1`, `"delay_ms":`, `"caller_id":"user-1"`, `"retry_after":5`, `"correlation_id":"corr-1"`} {
		if !strings.Contains(logs, want) {
			t.Fatalf("retry log missing %s: %s", want, logs)
		}
	}
}

func TestCall_RetryLogOmitsAbsentRetryAfter(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(n int32, w http.ResponseWriter) {
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(okEnvelope))
	})
	h := newHarness(t, srv.URL, nil)

	if _, err := h.client.Call(context.Background(), Request{Endpoint: "/x"}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if strings.Contains(h.logs.String(), "retry_after") {
		t.Fatalf("retry_after should be absent: %s", h.logs.String())
	}
	if d := h.delays[0]; d < BaseDelay || d > 2*BaseDelay {
		t.Fatalf("first backoff %v outside [1s, 2s]", d)
	}
}

type flakyTransport struct {
	fails atomic.Int32
	limit int32
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.fails.Add(1) <= f.limit {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func TestCall_NetworkErrorsRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { _, _ = w.Write([]byte(okEnvelope)) })
	ft := &flakyTransport{limit: 2, next: http.DefaultTransport}
	h := newHarness(t, srv.URL, func(o *Options) { o.HTTPClient = &http.Client{Transport: ft} })

	env, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if env.Attempts != 3 || len(h.delays) != 2 {
		t.Fatalf("attempts = %d sleeps = %d", env.Attempts, len(h.delays))
	}
	if n := len(h.usage.all()); n != 1 {
		t.Fatalf("usage rows = %d, want 1", n)
	}
}

func TestCall_NetworkErrorsExhausted(t *testing.T) {
	t.Parallel()

	ft := &flakyTransport{limit: 100, next: http.DefaultTransport}
	h := newHarness(t, "http://upstream.invalid", func(o *Options) { o.HTTPClient = &http.Client{Transport: ft} })

	_, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindNetwork || ge.StatusCode != 0 {
		t.Fatalf("got %v", err)
	}
	if ft.fails.Load() != MaxRetries+1 {
		t.Fatalf("attempts = %d, want %d", ft.fails.Load(), MaxRetries+1)
	}
	rows := h.usage.all()
	if len(rows) != 1 || rows[0].ResponseStatus != 0 || rows[0].CostUSD != nil {
		t.Fatalf("usage = %+v", rows)
	}
}

func TestCall_CredentialsMissing(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { _, _ = w.Write([]byte(okEnvelope)) })
	h := newHarness(t, srv.URL, func(o *Options) { o.Password = "" })

	if h.client.HasCredentials() {
		t.Fatal("HasCredentials should be false")
	}
	_, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindCredentialsMissing || ge.StatusCode != http.StatusInternalServerError {
		t.Fatalf("got %v", err)
	}
	if !IsSystemic(err) {
		t.Fatal("missing credentials should be systemic")
	}
	if hits.Load() != 0 {
		t.Fatal("no request should reach the upstream")
	}
	rows := h.usage.all()
	if len(rows) != 1 || rows[0].ResponseStatus != http.StatusInternalServerError {
		t.Fatalf("usage = %+v", rows)
	}
}

func TestCall_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { w.WriteHeader(http.StatusServiceUnavailable) })
	h := newHarness(t, srv.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	h.client.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := h.client.Call(ctx, Request{Endpoint: "/x"})
	if !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("attempts = %d, want 1", hits.Load())
	}
	if n := len(h.usage.all()); n != 1 {
		t.Fatalf("usage rows = %d, want 1", n)
	}
}

func TestCall_RequestShape(t *testing.T) {
	t.Parallel()

	var gotAuth, gotCorr, gotCT, gotMethod string
	var gotBody []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCorr = r.Header.Get("X-Correlation-ID")
		gotCT = r.Header.Get("Content-Type")
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(okEnvelope))
	}))
	t.Cleanup(srv.Close)
	h := newHarness(t, srv.URL+"/", nil)

	_, err := h.client.Call(context.Background(), Request{
		Endpoint: "/backlinks/summary/live",
		Payload:  []map[string]any{{"target": "example.com"}},
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("login:secret"))
	if gotAuth != wantAuth || gotCorr != "corr-1" || gotCT != "application/json" || gotMethod != http.MethodPost {
		t.Fatalf("headers auth=%q corr=%q ct=%q method=%s", gotAuth, gotCorr, gotCT, gotMethod)
	}
	if len(gotBody) != 1 || gotBody[0]["target"] != "example.com" {
		t.Fatalf("body = %v", gotBody)
	}
	if u := h.usage.all()[0]; !strings.Contains(string(u.RequestPayload), "example.com") {
		t.Fatalf("usage payload = %s", u.RequestPayload)
	}
}

func TestCall_DecodeFailureNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { _, _ = w.Write([]byte(`<html>`)) })
	h := newHarness(t, srv.URL, nil)

	_, err := h.client.Call(context.Background(), Request{Endpoint: "/x"})
	ge, ok := AsGatewayError(err)
	if !ok || ge.Kind != KindDecode {
		t.Fatalf("got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("attempts = %d, want 1", hits.Load())
	}
	if perr.CodeOf(err) != perr.ErrorCodeUpstream {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}

func TestCall_UsageSinkPanicContained(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := statusServer(t, &hits, func(_ int32, w http.ResponseWriter) { _, _ = w.Write([]byte(okEnvelope)) })
	h := newHarness(t, srv.URL, func(o *Options) {
		o.Usage = UsageFunc(func(context.Context, Usage) { panic("sink down") })
	})

	if _, err := h.client.Call(context.Background(), Request{Endpoint: "/x"}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{Login: "l", Password: "p"})
	c.backoff = Backoff{Base: BaseDelay, int64n: func(int64) int64 { return 0 }}
	failed := &GatewayError{Kind: KindUpstreamServer}

	cases := []struct {
		name    string
		attempt int
		o       outcome
		want    state
		delay   time.Duration
	}{
		{"success", 0, outcome{status: 200}, stateSucceeded, 0},
		{"402 terminal", 0, outcome{status: 402, err: failed}, stateFailed, 0},
		{"400 terminal", 0, outcome{status: 400, err: failed}, stateFailed, 0},
		{"500 retried", 1, outcome{status: 500, err: failed}, stateRetryScheduled, 2 * time.Second},
		{"429 retry after", 0, outcome{status: 429, retryAfter: "3", err: failed}, stateRetryScheduled, 3 * time.Second},
		{"budget spent", MaxRetries, outcome{status: 503, err: failed}, stateFailed, 0},
		{"network retried", 2, outcome{netErr: errors.New("eof"), err: failed}, stateRetryScheduled, 4 * time.Second},
		{"network budget spent", MaxRetries, outcome{netErr: errors.New("eof"), err: failed}, stateFailed, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.decide(tc.attempt, c.opts.MaxRetries, tc.o)
			if got.next != tc.want || got.delay != tc.delay {
				t.Fatalf("decide = %+v, want state %d delay %v", got, tc.want, tc.delay)
			}
		})
	}
}

func TestGatewayError_Codes(t *testing.T) {
	t.Parallel()

	cases := map[Kind]perr.ErrorCode{
		KindCredentialsMissing: perr.ErrorCodeUnknown,
		KindCreditsExhausted:   perr.ErrorCodePaymentRequired,
		KindRateLimited:        perr.ErrorCodeTooManyRequests,
		KindUpstreamServer:     perr.ErrorCodeUnavailable,
		KindNetwork:            perr.ErrorCodeUnavailable,
		KindUpstreamClient:     perr.ErrorCodeUpstream,
		KindTask:               perr.ErrorCodeUpstream,
		KindDecode:             perr.ErrorCodeUpstream,
	}
	for k, want := range cases {
		err := error(&GatewayError{Kind: k, Endpoint: "/x"})
		if got := perr.CodeOf(err); got != want {
			t.Fatalf("%s: CodeOf = %v, want %v", k, got, want)
		}
	}
}
