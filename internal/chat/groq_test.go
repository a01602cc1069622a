package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteReturnsReply(t *testing.T) {
	var gotAuth string
	var gotBody completionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello from the assistant"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	reply, err := client.Complete(context.Background(), "system prompt", "user question")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if reply != "hello from the assistant" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "user question" {
		t.Fatalf("unexpected request payload: %+v", gotBody)
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	if _, err := client.Complete(context.Background(), "system", "message"); err == nil {
		t.Fatal("expected error for non-200 upstream response")
	}
}

func TestCompleteNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	if _, err := client.Complete(context.Background(), "system", "message"); err == nil {
		t.Fatal("expected error when completion has no choices")
	}
}
