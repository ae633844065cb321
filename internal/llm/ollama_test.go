package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientChat(t *testing.T) {
	var gotPath string
	var gotBody chatRequest

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"qwen2.5","message":{"role":"assistant","content":"  привет  "}}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	result, err := client.Chat(context.Background(), "qwen2.5", []Message{{Role: "user", Content: "привет"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/chat" {
		t.Errorf("expected POST /api/chat, got %s", gotPath)
	}
	if gotBody.Model != "qwen2.5" {
		t.Errorf("request model: got %q", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("expected stream=false")
	}
	if result.Reply != "привет" {
		t.Errorf("expected trimmed reply, got %q", result.Reply)
	}
	if !strings.Contains(string(result.Response), `"content"`) {
		t.Errorf("expected raw response preserved, got %s", result.Response)
	}
	if !strings.Contains(string(result.Request), `"messages"`) {
		t.Errorf("expected raw request preserved, got %s", result.Request)
	}

	if client.Stats.Snapshot().Count != 1 {
		t.Errorf("expected 1 latency sample, got %d", client.Stats.Snapshot().Count)
	}
}

func TestClientGenerateUsesResponseField(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected /api/generate, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"model":"qwen2.5","response":"готово"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	result, err := client.Generate(context.Background(), "qwen2.5", "проверка", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != "готово" {
		t.Errorf("expected generate reply, got %q", result.Reply)
	}
}

func TestClientRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"message":{"content":"ok"}}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	result, err := client.Chat(context.Background(), "qwen2.5", []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if result.Reply != "ok" {
		t.Errorf("reply: got %q", result.Reply)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	_, err := client.Chat(context.Background(), "missing", []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRetryable(err) {
		t.Errorf("404 must not be retryable: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestClientReportsOllamaError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	_, err := client.Chat(context.Background(), "qwen2.5", []Message{{Role: "user", Content: "hi"}}, nil)
	if err == nil || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("expected embedded error surfaced, got %v", err)
	}
}

func TestListModelsAndHasModel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("expected /api/tags, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"qwen2.5:latest"},{"name":"llama3:8b"}]}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	names, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 models, got %v", names)
	}

	ok, err := client.HasModel(context.Background(), "qwen2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected qwen2.5 to match qwen2.5:latest")
	}

	ok, err = client.HasModel(context.Background(), "mistral")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected mistral to be absent")
	}
}

func TestEnsureModelSkipsPullWhenPresent(t *testing.T) {
	var pulls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"qwen2.5:latest"}]}`))
		case "/api/pull":
			pulls.Add(1)
			w.Write([]byte(`{"status":"success"}`))
		}
	}))
	defer backend.Close()

	client := NewClient(backend.URL, 5*time.Second)
	if err := client.EnsureModel(context.Background(), "qwen2.5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pulls.Load() != 0 {
		t.Errorf("expected no pull for present model, got %d", pulls.Load())
	}

	if err := client.EnsureModel(context.Background(), "mistral"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pulls.Load() != 1 {
		t.Errorf("expected 1 pull for missing model, got %d", pulls.Load())
	}
}
