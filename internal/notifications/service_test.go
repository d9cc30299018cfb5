package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chapterfind/internal/config"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	svc := NewService(&cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyRunStarted(context.Background(), 3, false); err != nil {
		t.Errorf("noop should never fail: %v", err)
	}
}

func TestNtfyServiceSendsHeadersAndBody(t *testing.T) {
	var gotTitle, gotTags, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	if err := svc.NotifyRunCompleted(context.Background(), 12, 90*time.Second); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if gotTitle != "chapterfind - Run Complete" {
		t.Errorf("title = %q", gotTitle)
	}
	if gotTags != "chapterfind,run,completed" {
		t.Errorf("tags = %q", gotTags)
	}
	if gotBody != "Found 12 chapter(s) in 1m30s" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNtfyServiceFailurePriority(t *testing.T) {
	var gotPriority string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	if err := svc.NotifyRunFailed(context.Background(), errors.New("boom")); err != nil {
		t.Fatalf("NotifyRunFailed: %v", err)
	}
	if gotPriority != "high" {
		t.Errorf("priority = %q, want high", gotPriority)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := NewService(&cfg)

	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}
