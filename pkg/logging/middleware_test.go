package logging

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestRequestLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)

	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest("GET", "/api/schemes?q=kisan", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	output := buf.String()
	for _, want := range []string{`"method":"GET"`, `"path":"/api/schemes"`, `"status":418`, `"bytes":15`, `"request_id":`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %s, got %q", want, output)
		}
	}
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	buf := &bytes.Buffer{}

	handler := RequestLogger(zerolog.New(buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("Expected status 200, got %q", buf.String())
	}
}
