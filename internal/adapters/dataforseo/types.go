package dataforseo

import (
	"encoding/json"
	"fmt"
	"time"
)

// Request is one logical gateway call. It yields exactly one Response or one *GatewayError
type Request struct {
	Endpoint      string // path below the base url, e.g. /backlinks/summary/live
	Method        string // POST when empty
	Payload       any    // marshalled as the JSON body; nil sends no body
	Module        string // feature that issued the call, recorded in the usage log
	CallerID      string
	CorrelationID string // generated when empty

	// NoRetry makes the call a single attempt; pollers retry on their own schedule
	NoRetry bool
}

// Response mirrors the upstream envelope
type Response struct {
	Version       string  `json:"version"`
	StatusCode    int     `json:"status_code"`
	StatusMessage string  `json:"status_message"`
	Time          string  `json:"time"`
	Cost          float64 `json:"cost"`
	TasksCount    int     `json:"tasks_count"`
	TasksError    int     `json:"tasks_error"`
	Tasks         []Task  `json:"tasks"`

	// set by the client, not part of the envelope
	HTTPStatus    int    `json:"-"`
	Attempts      int    `json:"-"`
	CorrelationID string `json:"-"`
}

// Task is one upstream task; it can fail inside a 200 envelope
type Task struct {
	ID            string            `json:"id"`
	StatusCode    int               `json:"status_code"`
	StatusMessage string            `json:"status_message"`
	Time          string            `json:"time"`
	Cost          float64           `json:"cost"`
	ResultCount   int               `json:"result_count"`
	Path          []string          `json:"path"`
	Result        []json.RawMessage `json:"result"`
}

// upstream status codes in 20000..20199 are successes (20000 ok, 20100 task created)
func statusOK(code int) bool { return code >= 20000 && code < 20200 }

// OK reports whether the task finished without an upstream error
func (t Task) OK() bool { return statusOK(t.StatusCode) }

// inQueue reports the on-page "task in queue" / "handed" states which are not failures
func (t Task) inQueue() bool { return t.StatusCode == 40601 || t.StatusCode == 40602 }

// CostUSD returns the top level cost, or the first task's cost when the top level is zero
func (r *Response) CostUSD() float64 {
	if r == nil {
		return 0
	}
	if r.Cost > 0 || len(r.Tasks) == 0 {
		return r.Cost
	}
	return r.Tasks[0].Cost
}

// CreditsUsed counts the tasks the upstream billed
func (r *Response) CreditsUsed() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, t := range r.Tasks {
		if t.Cost > 0 {
			n++
		}
	}
	return n
}

// FirstTask returns the first task, failing with a KindTask error when the envelope
// or the task reports an upstream error
func (r *Response) FirstTask(endpoint string) (Task, error) {
	if r == nil {
		return Task{}, &GatewayError{Kind: KindTask, Endpoint: endpoint, Message: "empty response"}
	}
	if r.StatusCode != 0 && !statusOK(r.StatusCode) {
		return Task{}, &GatewayError{Kind: KindTask, StatusCode: r.StatusCode, Endpoint: endpoint, Message: r.StatusMessage}
	}
	if len(r.Tasks) == 0 {
		return Task{}, &GatewayError{Kind: KindTask, Endpoint: endpoint, Message: "response has no tasks"}
	}
	t := r.Tasks[0]
	if !t.OK() {
		return t, &GatewayError{Kind: KindTask, StatusCode: t.StatusCode, Endpoint: endpoint, Message: t.StatusMessage}
	}
	return t, nil
}

// DecodeResult unmarshals every result element of t into T
func DecodeResult[T any](t Task) ([]T, error) {
	out := make([]T, 0, len(t.Result))
	for i, raw := range t.Result {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, &GatewayError{Kind: KindDecode, Message: fmt.Sprintf("result %d", i), Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// Usage is the audit record emitted once per Client.Call
type Usage struct {
	CallerID       string
	Module         string
	Endpoint       string
	CorrelationID  string
	RequestPayload json.RawMessage
	ResponseStatus int // last HTTP status, 0 when no response was obtained
	Attempts       int
	CreditsUsed    *int
	CostUSD        *float64
	ErrorMessage   string
	Duration       time.Duration
}
