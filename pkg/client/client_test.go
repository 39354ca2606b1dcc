package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/krishi-connect/internal/testutil"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	cfg := DefaultConfig("krishi-connect-test/1.0")
	cfg.Retry = fastRetry()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		errorMsg string
	}{
		{
			name:   "valid config",
			config: DefaultConfig("krishi/1.0"),
		},
		{
			name:     "empty user agent",
			config:   DefaultConfig(""),
			errorMsg: "user-agent is required",
		},
		{
			name:     "zero attempts",
			config:   Config{UserAgent: "krishi/1.0"},
			errorMsg: "retry max_attempts must be >= 1 (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)

			if tt.errorMsg != "" {
				if err == nil || err.Error() != tt.errorMsg {
					t.Errorf("Error = %v, want %q", err, tt.errorMsg)
				}
				return
			}
			if err != nil || c == nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestFetch_Success(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/schemes", testutil.NewJSONResponse(`{"records":[]}`))

	c := newTestClient(t)
	res := c.Fetch(context.Background(), mock.URL()+"/schemes?page=1")

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if string(res.Body) != `{"records":[]}` {
		t.Errorf("Body = %s", res.Body)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}

	header := mock.GetLastRequestHeader()
	if header.Get("User-Agent") != "krishi-connect-test/1.0" {
		t.Errorf("User-Agent = %q", header.Get("User-Agent"))
	}
	if header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", header.Get("Accept"))
	}
}

func TestFetch_RetryThenSuccess(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetSequence("/schemes",
		testutil.NewServerErrorResponse(),
		testutil.NewJSONResponse(`{"data":[{"title":"ok"}]}`),
	)

	c := newTestClient(t)
	res := c.Fetch(context.Background(), mock.URL()+"/schemes")

	if res.Outcome != OutcomeSuccess {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if res.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", res.Attempts)
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Request count = %d, want 2", mock.GetRequestCount())
	}
}

func TestFetch_Exhausted(t *testing.T) {
	tests := []struct {
		name      string
		response  testutil.MockResponse
		wantClass ErrorClass
	}{
		{"server error", testutil.NewServerErrorResponse(), ErrorClassServer},
		{"client error is retried too", testutil.MockResponse{StatusCode: http.StatusNotFound}, ErrorClassClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockUpstream()
			defer mock.Close()
			mock.SetResponse("/schemes", tt.response)

			c := newTestClient(t)
			res := c.Fetch(context.Background(), mock.URL()+"/schemes")

			if res.Outcome != OutcomeExhausted {
				t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
			}
			if !errors.Is(res.Err, ErrRetryExhausted) {
				t.Errorf("Expected ErrRetryExhausted, got %v", res.Err)
			}
			if got := ClassifyError(res.Err); got != tt.wantClass {
				t.Errorf("Class = %s, want %s", got, tt.wantClass)
			}
			if mock.GetRequestCount() != 2 {
				t.Errorf("Request count = %d, want 2", mock.GetRequestCount())
			}
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	mock := testutil.NewMockUpstream()
	url := mock.URL() + "/schemes"
	mock.Close()

	c := newTestClient(t)
	res := c.Fetch(context.Background(), url)

	if res.Outcome != OutcomeExhausted {
		t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
	}
	if ClassifyError(res.Err) != ErrorClassNetwork {
		t.Errorf("Class = %s, want network", ClassifyError(res.Err))
	}
}

func TestFetch_CanceledInFlight(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	resp := testutil.NewJSONResponse(`{"records":[]}`)
	resp.Delay = 5 * time.Second
	mock.SetResponse("/slow", resp)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	c := newTestClient(t)
	start := time.Now()
	res := c.Fetch(ctx, mock.URL()+"/slow")

	if res.Outcome != OutcomeCanceled {
		t.Fatalf("Outcome = %v, want canceled (err %v)", res.Outcome, res.Err)
	}
	if !errors.Is(res.Err, ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", res.Err)
	}
	if res.Body != nil {
		t.Error("Canceled fetch must not carry a body")
	}
	if time.Since(start) > 2*time.Second {
		t.Error("In-flight request was not aborted")
	}
}

func TestFetch_RateLimitCooldown(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.SetResponse("/schemes", testutil.NewRateLimitResponse("60"))

	c := newTestClient(t)
	res := c.Fetch(context.Background(), mock.URL()+"/schemes")

	if res.Outcome != OutcomeExhausted {
		t.Fatalf("Outcome = %v, want exhausted", res.Outcome)
	}
	if ClassifyError(res.Err) != ErrorClassRateLimit {
		t.Errorf("Class = %s, want rate_limit", ClassifyError(res.Err))
	}
	// The second attempt is refused locally during the cooldown.
	if mock.GetRequestCount() != 1 {
		t.Errorf("Request count = %d, want 1", mock.GetRequestCount())
	}
	if !c.RateLimitState().CoolingDown(time.Now()) {
		t.Error("Expected cooldown to be armed")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := map[int]ErrorClass{
		400: ErrorClassClient,
		404: ErrorClassClient,
		429: ErrorClassRateLimit,
		500: ErrorClassServer,
		503: ErrorClassServer,
		302: ErrorClassNetwork,
	}
	for code, want := range tests {
		if got := ClassifyStatus(code); got != want {
			t.Errorf("ClassifyStatus(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	if OutcomeSuccess.String() != "success" || OutcomeExhausted.String() != "exhausted" || OutcomeCanceled.String() != "canceled" {
		t.Error("Unexpected outcome names")
	}
}
