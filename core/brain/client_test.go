package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAskReturnsScript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if body["model"] != "test-model" {
			t.Errorf("expected model test-model, got %v", body["model"])
		}
		if body["stream"] != false {
			t.Errorf("expected non-streaming request, got %v", body["stream"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"type": "reasoning"},
				{"type": "message", "content": []map[string]any{
					{"type": "output_text", "text": "It is about ninety"},
					{"type": "output_text", "text": " million miles away."},
				}},
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithURL(server.URL))
	answer, err := client.Ask(context.Background(), "how far is the sun")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Script != "It is about ninety million miles away." {
		t.Errorf("unexpected script: %q", answer.Script)
	}
}

func TestAskRejectsEmptyAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"output": []map[string]any{}})
	}))
	defer server.Close()

	client := NewClient("test-key", "test-model", WithURL(server.URL))
	if _, err := client.Ask(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for an empty answer, got nil")
	}
}

func TestAskSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", "test-model", WithURL(server.URL))
	if _, err := client.Ask(context.Background(), "anything"); err == nil {
		t.Fatal("expected an error for a non-OK status, got nil")
	}
}

func TestAskHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient("test-key", "test-model", WithURL(server.URL))
	if _, err := client.Ask(ctx, "anything"); err == nil {
		t.Fatal("expected a deadline error, got nil")
	}
}

func TestAskToolPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"type": "message", "content": []map[string]any{
					{"type": "output_text", "text": "Water boils at one hundred degrees."},
				}},
			},
		})
	}))
	defer server.Close()

	tool := AskTool(NewClient("test-key", "test-model", WithURL(server.URL)))
	if tool.Name != "ask_brain" {
		t.Errorf("expected tool name ask_brain, got %q", tool.Name)
	}
	if tool.Timeout != askTimeout {
		t.Errorf("expected timeout %v, got %v", askTimeout, tool.Timeout)
	}

	payload, err := tool.Run(context.Background(), map[string]any{"query": "when does water boil"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payload["ok"] != true || payload["speak_verbatim"] != true {
		t.Errorf("unexpected payload: %v", payload)
	}
	if tool.SpokenScript(payload) != "Water boils at one hundred degrees." {
		t.Errorf("unexpected spoken script: %q", tool.SpokenScript(payload))
	}
}
