// Package dataforseo is the gateway to the DataForSEO v3 API: basic auth, a bounded
// retry loop with Retry-After support, a client side rate limit and exactly one usage
// record per logical call.
package dataforseo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"seogate/internal/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	baseURLDefault        = "https://api.dataforseo.com/v3"
	defaultAttemptTimeout = 60 * time.Second
	defaultUA             = "seogate"
	maxBodyBytes          = 32 << 20
)

// Options configures the Client
type Options struct {
	BaseURL  string
	Login    string
	Password string

	UserAgent      string
	AttemptTimeout time.Duration // per HTTP attempt, sleeps excluded

	MaxRetries int           // additional attempts after the first; 0 means MaxRetries, negative disables retries
	BaseDelay  time.Duration // backoff unit; BaseDelay when <= 0

	// Client side token bucket; RPS <= 0 disables it
	RPS   float64
	Burst int

	HTTPClient *http.Client
	Usage      UsageSink
	Logger     *logger.Logger
}

// UsageSink receives the single audit record of every call. Implementations must not fail the caller
type UsageSink interface {
	TryLog(ctx context.Context, u Usage)
}

// UsageFunc adapts a function to UsageSink
type UsageFunc func(ctx context.Context, u Usage)

// TryLog implements UsageSink
func (f UsageFunc) TryLog(ctx context.Context, u Usage) {
	if f != nil {
		f(ctx, u)
	}
}

// Client issues DataForSEO calls
type Client struct {
	http    *http.Client
	opts    Options
	auth    string
	limiter *rate.Limiter
	backoff Backoff
	usage   UsageSink
	log     logger.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	newID func() string
}

// NewClient creates a Client with defaults applied. Missing credentials are not an
// error here; every call then fails fast with KindCredentialsMissing.
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = defaultAttemptTimeout
	}
	switch {
	case o.MaxRetries == 0:
		o.MaxRetries = MaxRetries
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if o.RPS > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RPS), burst)
	}
	log := logger.Named("dataforseo")
	if o.Logger != nil {
		log = o.Logger
	}
	var auth string
	if o.Login != "" && o.Password != "" {
		auth = "Basic " + base64.StdEncoding.EncodeToString([]byte(o.Login+":"+o.Password))
	}
	usage := o.Usage
	if usage == nil {
		usage = UsageFunc(nil)
	}
	return &Client{
		http:    hc,
		opts:    o,
		auth:    auth,
		limiter: lim,
		backoff: NewBackoff(o.BaseDelay),
		usage:   usage,
		log:     *log,
		now:     time.Now,
		sleep:   sleepCtx,
		newID:   uuid.NewString,
	}
}

// HasCredentials reports whether calls can reach the upstream at all
func (c *Client) HasCredentials() bool { return c.auth != "" }

// BaseURL is the upstream root every endpoint path is joined to
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// MaxRetries is the number of additional attempts after the first
func (c *Client) MaxRetries() int { return c.opts.MaxRetries }

// state is the retry loop position
type state uint8

const (
	statePending state = iota
	stateAttempting
	stateRetryScheduled
	stateSucceeded
	stateFailed
)

// outcome is what one HTTP attempt produced
type outcome struct {
	status     int    // 0 when no response
	retryAfter string // raw Retry-After header
	netErr     error  // transport failure
	env        *Response
	err        error // terminal error for this attempt, nil on success
}

// transition is the decision taken after an attempt
type transition struct {
	next       state
	delay      time.Duration
	retryAfter int // seconds, -1 when the upstream sent none
}

// decide is the pure retry policy: attempt is 0 based, limit the retries allowed
func (c *Client) decide(attempt, limit int, o outcome) transition {
	t := transition{next: stateFailed, retryAfter: -1}
	switch {
	case o.err == nil:
		t.next = stateSucceeded
		return t
	case o.netErr != nil:
		if attempt >= limit {
			return t
		}
		t.next = stateRetryScheduled
		t.delay = c.backoff.Delay(attempt, 0)
		return t
	case o.status == http.StatusPaymentRequired, !ShouldRetry(o.status):
		return t
	}
	if attempt >= limit {
		return t
	}
	ra := 0
	if s, ok := ParseRetryAfter(o.retryAfter, c.now()); ok {
		ra = s
		t.retryAfter = s
	}
	t.next = stateRetryScheduled
	t.delay = c.backoff.Delay(attempt, ra)
	return t
}

// Call performs req with retries. It returns the decoded envelope on a 2xx response
// and a *GatewayError otherwise. Exactly one usage record is emitted per call.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodPost
	}
	if req.CorrelationID == "" {
		req.CorrelationID = c.newID()
	}
	started := c.now()

	var body []byte
	if req.Payload != nil {
		b, err := json.Marshal(req.Payload)
		if err != nil {
			gerr := &GatewayError{Kind: KindEncode, Endpoint: req.Endpoint, Err: err}
			c.record(ctx, req, nil, started, 0, 0, nil, gerr)
			return nil, gerr
		}
		body = b
	}

	if c.auth == "" {
		gerr := &GatewayError{
			Kind:       KindCredentialsMissing,
			StatusCode: http.StatusInternalServerError,
			Endpoint:   req.Endpoint,
			Message:    "DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD are not configured",
		}
		c.record(ctx, req, body, started, http.StatusInternalServerError, 0, nil, gerr)
		return nil, gerr
	}

	limit := c.opts.MaxRetries
	if req.NoRetry {
		limit = 0
	}
	var (
		st      = statePending
		attempt = -1
		last    outcome
	)
	for st != stateSucceeded && st != stateFailed {
		switch st {
		case statePending, stateRetryScheduled:
			attempt++
			st = stateAttempting
		case stateAttempting:
			last = c.attempt(ctx, req, body)
			if last.netErr != nil && ctx.Err() != nil {
				st = stateFailed
				continue
			}
			t := c.decide(attempt, limit, last)
			if t.next == stateRetryScheduled {
				c.logRetry(req, last.status, attempt, t)
				if err := c.sleep(ctx, t.delay); err != nil {
					last = outcome{err: &GatewayError{Kind: KindNetwork, Endpoint: req.Endpoint, Message: "cancelled while backing off", Err: err}}
					st = stateFailed
					continue
				}
			}
			st = t.next
		}
	}

	attempts := attempt + 1
	c.record(ctx, req, body, started, last.status, attempts, last.env, last.err)
	if st == stateFailed {
		return nil, last.err
	}
	last.env.HTTPStatus = last.status
	last.env.Attempts = attempts
	last.env.CorrelationID = req.CorrelationID
	return last.env, nil
}

// attempt runs a single HTTP exchange bounded by the per attempt timeout
func (c *Client) attempt(ctx context.Context, req Request, body []byte) outcome {
	if err := c.limiter.Wait(ctx); err != nil {
		return c.networkOutcome(req, err)
	}
	actx, cancel := context.WithTimeout(ctx, c.opts.AttemptTimeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(actx, req.Method, c.opts.BaseURL+req.Endpoint, rdr)
	if err != nil {
		return outcome{err: &GatewayError{Kind: KindEncode, Endpoint: req.Endpoint, Err: err}}
	}
	hreq.Header.Set("Authorization", c.auth)
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", c.opts.UserAgent)
	hreq.Header.Set("X-Correlation-ID", req.CorrelationID)
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		return c.networkOutcome(req, err)
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	o := outcome{status: resp.StatusCode, retryAfter: resp.Header.Get("Retry-After")}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		o.err = &GatewayError{
			Kind:       statusKind(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Endpoint:   req.Endpoint,
			Message:    upstreamMessage(tail),
		}
		return o
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// a body cut short mid-read is a transport failure
		return c.networkOutcome(req, err)
	}
	var env Response
	if err := json.Unmarshal(raw, &env); err != nil {
		o.err = &GatewayError{Kind: KindDecode, StatusCode: resp.StatusCode, Endpoint: req.Endpoint, Err: err}
		return o
	}
	o.env = &env
	return o
}

func (c *Client) networkOutcome(req Request, err error) outcome {
	return outcome{
		netErr: err,
		err:    &GatewayError{Kind: KindNetwork, Endpoint: req.Endpoint, Err: err},
	}
}

func (c *Client) logRetry(req Request, status, attempt int, t transition) {
	ev := c.log.Warn().
		Str("endpoint", req.Endpoint).
		Int("status", status).
		Int("attempt", attempt+1).
		Int64("delay_ms", t.delay.Milliseconds()).
		Str("caller_id", req.CallerID).
		Str("correlation_id", req.CorrelationID)
	if t.retryAfter >= 0 {
		ev = ev.Int("retry_after", t.retryAfter)
	}
	ev.Msg("dataforseo retry scheduled")
}

// record emits the one usage record of a call; it never fails the caller
func (c *Client) record(ctx context.Context, req Request, body []byte, started time.Time, status, attempts int, env *Response, err error) {
	u := Usage{
		CallerID:       req.CallerID,
		Module:         req.Module,
		Endpoint:       req.Endpoint,
		CorrelationID:  req.CorrelationID,
		RequestPayload: json.RawMessage(body),
		ResponseStatus: status,
		Attempts:       attempts,
		Duration:       c.now().Sub(started),
	}
	if env != nil {
		credits, cost := env.CreditsUsed(), env.CostUSD()
		u.CreditsUsed, u.CostUSD = &credits, &cost
	}
	if err != nil {
		u.ErrorMessage = err.Error()
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("endpoint", req.Endpoint).Msg("usage sink panicked")
		}
	}()
	c.usage.TryLog(context.WithoutCancel(ctx), u)
}

// upstreamMessage pulls status_message out of an error body when it is an envelope
func upstreamMessage(tail []byte) string {
	var env struct {
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(tail, &env) == nil && env.StatusMessage != "" {
		return env.StatusMessage
	}
	return strings.TrimSpace(string(tail))
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsCancelled reports whether err is a gateway failure caused by the caller's context
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
