package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/krishi-connect/pkg/client"
	"github.com/stretchr/testify/assert"
)

func TestClassifyBanner(t *testing.T) {
	rateLimited := &client.HTTPError{StatusCode: 429, ErrorClass: client.ErrorClassRateLimit, Message: "request blocked"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"cors", errors.New("blocked by CORS policy"), BannerCORS},
		{"access control header", errors.New("No 'Access-Control-Allow-Origin' header"), BannerCORS},
		{"rate limit class", fmt.Errorf("%w after 2 attempts: %w", client.ErrRetryExhausted, rateLimited), BannerRateLimited},
		{"429 in message", errors.New("HTTP 429 Too Many Requests"), BannerRateLimited},
		{"rate limit text", errors.New("Rate Limit exceeded"), BannerRateLimited},
		{"server error", &client.HTTPError{StatusCode: 503, ErrorClass: client.ErrorClassServer, Message: "503 Service Unavailable"}, BannerNetwork},
		{"transport error", errors.New("dial tcp: connection refused"), BannerNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBanner(tt.err))
		})
	}
}
