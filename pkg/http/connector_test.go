package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type echoBody struct {
	Text string `json:"text"`
}

func TestDoRequest(t *testing.T) {
	var gotAuth, gotHeader, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotHeader = r.Header.Get("X-Trace")
		gotContentType = r.Header.Get("Content-Type")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"text":"pong"}`))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(strings.Repeat("x", maxErrorBody+100)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL, Logger: zap.NewNop()},
		WithRequestTimeout(2*time.Second),
		WithRequestLogging(),
		WithAuthToken("token"),
	)

	var resp echoBody
	if err := c.DoRequest(context.Background(), http.MethodPost, "/ok", echoBody{Text: "ping"}, &resp, WithHeader("X-Trace", "t1")); err != nil {
		t.Fatalf("DoRequest() error = %v", err)
	}
	if resp.Text != "pong" || gotAuth != "Bearer token" || gotHeader != "t1" || gotContentType != "application/json" {
		t.Errorf("resp = %+v, auth = %q, header = %q, content type = %q", resp, gotAuth, gotHeader, gotContentType)
	}

	err := c.DoRequest(context.Background(), http.MethodGet, "/busy", nil, nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("DoRequest(/busy) error = %v", err)
	}
	if len(httpErr.Message) != maxErrorBody {
		t.Errorf("error body length = %d, want %d", len(httpErr.Message), maxErrorBody)
	}
}

func TestDoRequestKeepsCallerAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: srv.URL}, WithAuthToken("default"))
	if err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil, WithHeader("Authorization", "Bearer other")); err != nil {
		t.Fatalf("DoRequest() error = %v", err)
	}
	if gotAuth != "Bearer other" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestDoRequestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewConnector(&ConnectorConfig{BaseURL: url}, WithConnClientTimeout(time.Second))
	err := c.DoRequest(context.Background(), http.MethodGet, "/", nil, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error = %v, want NetworkError", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&NetworkError{Err: errors.New("reset")}, true},
		{&HTTPError{StatusCode: http.StatusTooManyRequests}, true},
		{&HTTPError{StatusCode: http.StatusBadGateway}, true},
		{&HTTPError{StatusCode: http.StatusBadRequest}, false},
		{fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 500}), true},
		{&NetworkError{Err: context.Canceled}, false},
		{errors.New("decode response"), false},
	}
	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
