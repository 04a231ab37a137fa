package explain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAIGenerator(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Rate analysis"}}]}`)
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(Config{APIKey: "sk-test", Endpoint: srv.URL + "/"})
	got, err := gen.Generate(context.Background(), Request{Prompt: "explain 0310"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Rate analysis" {
		t.Fatalf("got %q", got)
	}
	if body["model"] != defaultModel {
		t.Fatalf("model sent = %v", body["model"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestOpenAIGenerator_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(Config{APIKey: "sk-bad", Endpoint: srv.URL + "/"})
	if _, err := gen.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestOpenAIGenerator_ServerErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	defer srv.Close()

	gen := NewGenerator(Config{APIKey: "sk-test", Endpoint: srv.URL + "/"}, nil)
	if gen.Name() != "openai" {
		t.Fatalf("expected the openai generator, got %s", gen.Name())
	}
	_, err := NewService(gen, 5*time.Second, nil).Explain(context.Background(), sampleContext(t))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}
