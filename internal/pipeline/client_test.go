package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSyncAllUsers_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/pipeline/sync" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing or wrong API key header")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sync": map[string]any{"users": 4, "failed_users": 1, "added": 12, "modified": 3, "removed": 2},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "test-key", server.Client())
	result, err := c.SyncAllUsers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Users != 4 || result.FailedUsers != 1 {
		t.Errorf("unexpected user counts: %+v", result)
	}
	if result.Added != 12 || result.Modified != 3 || result.Removed != 2 {
		t.Errorf("unexpected transaction counts: %+v", result)
	}
}

func TestSyncAllUsers_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_API_KEY","message":"Invalid or missing API key"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", server.Client())
	_, err := c.SyncAllUsers(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected status 401 (INVALID_API_KEY)") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSyncAllUsers_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", server.Client())
	if _, err := c.SyncAllUsers(context.Background()); err == nil || !strings.Contains(err.Error(), "decoding") {
		t.Errorf("expected decoding error, got %v", err)
	}
}

func TestSyncAllUsers_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL, "test-key", server.Client())
	if _, err := c.SyncAllUsers(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
