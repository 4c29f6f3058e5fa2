package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"speech-relay/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("token") != "tok" || r.PostForm.Get("user") != "usr" {
			http.Error(w, "bad credentials", http.StatusBadRequest)
			return
		}
		got = r.PostForm.Get("message")
		w.Write([]byte(`{"status":1}`))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)

	if err := client.Notify(context.Background(), "Slow down ahead"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if got != "Slow down ahead" {
		t.Errorf("message: got %q", got)
	}
}

func TestClient_NotifyWithoutCredentialsIsNoop(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("", "", server.URL)

	if err := client.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if calls != 0 {
		t.Errorf("server calls: got %d, want 0", calls)
	}
}

func TestClient_NotifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)

	if err := client.Notify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for rejected notification")
	}
}
