package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"interview-backend/internal/llm"
)

func newTestClient(t *testing.T, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{BaseURL: server.URL + "/v1/", APIKey: "test-key", Model: model})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCompleteReturnsContent(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Technical Questions:\n- Q?  "}}],"usage":{"total_tokens":12}}`))
	})

	out, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Technical Questions:\n- Q?" {
		t.Fatalf("unexpected content %q", out)
	}
	if payload["model"] != DefaultModel {
		t.Fatalf("expected default model, got %v", payload["model"])
	}
	if _, ok := payload["temperature"]; !ok {
		t.Fatalf("expected temperature to be sent")
	}
}

func TestCompleteOmitsTemperatureForFixedModels(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	if _, err := client.Complete(context.Background(), "prompt"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := payload["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestCompleteMapsStatusCodes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
		rateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, transient: true, rateLimit: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, transient: true},
		{name: "unauthorized", status: http.StatusUnauthorized, transient: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"x"}}`))
			})
			_, err := client.Complete(context.Background(), "prompt")
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := llm.IsTransient(err); got != tt.transient {
				t.Fatalf("IsTransient = %v, want %v (err=%v)", got, tt.transient, err)
			}
			if got := errors.Is(err, llm.ErrRateLimited); got != tt.rateLimit {
				t.Fatalf("rate limited = %v, want %v", got, tt.rateLimit)
			}
		})
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	})
	_, err := client.Complete(context.Background(), "prompt")
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestFixedTemperature(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-5", want: true},
		{model: " GPT-5o ", want: true},
		{model: "llama-3.3-70b-versatile", want: false},
		{model: "", want: false},
	}
	for _, tt := range tests {
		if got := fixedTemperature(tt.model); got != tt.want {
			t.Fatalf("fixedTemperature(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}
