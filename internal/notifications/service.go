package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chapterfind/internal/config"
)

const userAgent = "chapterfind/0.1.0"

// Service defines the notification surface exposed to the session controller.
type Service interface {
	NotifyRunStarted(ctx context.Context, sourceCount int, testRun bool) error
	NotifyRunCompleted(ctx context.Context, chapterCount int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, sourceCount int, testRun bool) error {
	message := fmt.Sprintf("Scanning %d file(s) for chapters", sourceCount)
	if testRun {
		message += " (test run)"
	}
	return n.send(ctx, payload{
		title:   "chapterfind - Run Started",
		message: message,
		tags:    []string{"chapterfind", "run", "started"},
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, chapterCount int, duration time.Duration) error {
	return n.send(ctx, payload{
		title:   "chapterfind - Run Complete",
		message: fmt.Sprintf("Found %d chapter(s) in %s", chapterCount, duration.Round(time.Second)),
		tags:    []string{"chapterfind", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, err error) error {
	message := "Run failed"
	if err != nil {
		message = fmt.Sprintf("Run failed: %v", err)
	}
	return n.send(ctx, payload{
		title:    "chapterfind - Run Failed",
		message:  message,
		tags:     []string{"chapterfind", "run", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "chapterfind - Test",
		message: "Notifications are working",
		tags:    []string{"chapterfind", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, int, bool) error              { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, time.Duration) error   { return nil }
func (noopService) NotifyRunFailed(context.Context, error) error                   { return nil }
func (noopService) TestNotification(context.Context) error                         { return nil }
