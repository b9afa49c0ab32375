package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ywlim06-debug/dolddari-coach/internal/config"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	pkgRetry "github.com/ywlim06-debug/dolddari-coach/internal/pkg/retry"
	"go.uber.org/zap"
)

type chatServer struct {
	mu      sync.Mutex
	calls   map[string]int
	auth    []string
	handler func(model string, call int) (int, string)
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req entity.LLMChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[req.Model]++
	call := s.calls[req.Model]
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	status, content := s.handler(req.Model, call)
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(content))
		return
	}
	_ = json.NewEncoder(w).Encode(entity.LLMChatResponse{
		Model:   req.Model,
		Choices: []entity.LLMChatChoice{{Message: entity.ChatMessage{Role: "assistant", Content: content}}},
	})
}

func newTestConnector(url string, models ...string) *Connector {
	cfg := config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			Url:            url,
			Token:          "secret",
			RequestTimeout: 5 * time.Second,
		},
		ChatEndpoint: "/v1/chat/completions",
		Models:       models,
		Retry: pkgRetry.RetryConfig{
			Attempts: 3,
			Delay:    time.Millisecond,
			MaxDelay: 5 * time.Millisecond,
			Timeout:  5 * time.Second,
		},
	}
	return NewConnector(cfg, zap.NewNop())
}

func TestGenerateReturnsContent(t *testing.T) {
	srv := &chatServer{handler: func(string, int) (int, string) {
		return http.StatusOK, `  {"question": "What matters most?"}  `
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := newTestConnector(ts.URL, "primary").Generate(context.Background(), entity.GenerateRequest{System: "s", User: "u"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != `{"question": "What matters most?"}` {
		t.Errorf("Generate() = %q", got)
	}
	if srv.auth[0] != "Bearer secret" {
		t.Errorf("Authorization = %q", srv.auth[0])
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	srv := &chatServer{handler: func(_ string, call int) (int, string) {
		if call < 3 {
			return http.StatusBadGateway, "upstream down"
		}
		return http.StatusOK, "ok"
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := newTestConnector(ts.URL, "primary").Generate(context.Background(), entity.GenerateRequest{User: "u"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "ok" || srv.calls["primary"] != 3 {
		t.Errorf("got %q after %d calls", got, srv.calls["primary"])
	}
}

func TestGenerateFallsBackToNextModel(t *testing.T) {
	srv := &chatServer{handler: func(model string, _ int) (int, string) {
		if model == "primary" {
			return http.StatusBadRequest, "unknown model"
		}
		return http.StatusOK, "from backup"
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	got, err := newTestConnector(ts.URL, "primary", "backup").Generate(context.Background(), entity.GenerateRequest{User: "u"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "from backup" {
		t.Errorf("Generate() = %q", got)
	}
	// client errors are not retried
	if srv.calls["primary"] != 1 {
		t.Errorf("primary calls = %d, want 1", srv.calls["primary"])
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := &chatServer{handler: func(string, int) (int, string) {
		return http.StatusOK, "   "
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	_, err := newTestConnector(ts.URL, "primary").Generate(context.Background(), entity.GenerateRequest{User: "u"})
	if !errors.Is(err, entity.ErrEmptyGeneration) {
		t.Fatalf("Generate() error = %v, want ErrEmptyGeneration", err)
	}
}

func TestGenerateNoModels(t *testing.T) {
	_, err := newTestConnector("http://127.0.0.1:0").Generate(context.Background(), entity.GenerateRequest{})
	if !errors.Is(err, entity.ErrInvalidParameter) {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestMockConnectorRecognisesPromptKinds(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		user string
		want string
	}{
		{"conflict", `Return only JSON: {"has_conflict": true|false}`, `"has_conflict": false`},
		{"summary", "New answers:\nQ1: q\nA1: I like my team\n\nMerge the new answers into the summary", "- I like my team"},
		{"report", "Topic: Job change\nWrite a mirroring summary of this interview", `"issue":"Job change"`},
		{"probe", "Question: q\nUser answer: dunno\n", `"question"`},
		{"slot", "Purpose of this question: Clarify the goal.\n", "clarify the goal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Generate(ctx, entity.GenerateRequest{User: tt.user})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Generate() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestNewConnectorDefaultsUnsetRetry(t *testing.T) {
	c := NewConnector(config.LLMConnectorConfig{Models: []string{"m"}}, zap.NewNop())
	if c.config.Retry != *pkgRetry.DefaultRetryConfig() {
		t.Errorf("retry = %+v, want defaults", c.config.Retry)
	}

	custom := newTestConnector("http://127.0.0.1", "m")
	if custom.config.Retry.Delay != time.Millisecond {
		t.Errorf("configured retry overwritten: %+v", custom.config.Retry)
	}
}
