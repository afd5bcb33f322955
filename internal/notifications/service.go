package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"megacut/internal/config"
)

const userAgent = "Megacut-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyRunStarted(ctx context.Context, sceneCount, chunkCount int) error
	NotifyChunkCompleted(ctx context.Context, chunkIndex, chunkCount int, outputFile string) error
	NotifyChunkFailed(ctx context.Context, chunkIndex int, err error) error
	NotifyRunCompleted(ctx context.Context, completedChunks, failedChunks int, duration time.Duration) error
	NotifyRunCancelled(ctx context.Context, completedChunks, remainingChunks int) error
	NotifyError(ctx context.Context, err error, context string) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		runEvents:   cfg.Notifications.RunEvents,
		chunkEvents: cfg.Notifications.ChunkEvents,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	runEvents   bool
	chunkEvents bool
	errors      bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, sceneCount, chunkCount int) error {
	if !n.runEvents {
		return nil
	}
	data := payload{
		title:   "Megacut - Run Started",
		message: fmt.Sprintf("🎬 Rendering %d scenes across %d chunks", sceneCount, chunkCount),
		tags:    []string{"megacut", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyChunkCompleted(ctx context.Context, chunkIndex, chunkCount int, outputFile string) error {
	if !n.chunkEvents {
		return nil
	}
	outputFile = strings.TrimSpace(outputFile)
	message := fmt.Sprintf("🎞️ Chunk %d/%d complete", chunkIndex, chunkCount)
	if outputFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputFile)
	}
	data := payload{
		title:   "Megacut - Chunk Complete",
		message: message,
		tags:    []string{"megacut", "chunk", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyChunkFailed(ctx context.Context, chunkIndex int, err error) error {
	if !n.chunkEvents {
		return nil
	}
	message := fmt.Sprintf("Chunk %d failed", chunkIndex)
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, strings.TrimSpace(err.Error()))
	}
	data := payload{
		title:    "Megacut - Chunk Failed",
		message:  message,
		tags:     []string{"megacut", "chunk", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, completedChunks, failedChunks int, duration time.Duration) error {
	if !n.runEvents {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title string
	var message string
	if failedChunks == 0 {
		title = "Megacut - Run Complete"
		message = fmt.Sprintf("✅ Run complete: %d chunks rendered in %s", completedChunks, durationText)
	} else {
		title = "Megacut - Run Complete (with errors)"
		message = fmt.Sprintf("Run complete: %d chunks rendered, %d failed in %s", completedChunks, failedChunks, durationText)
	}

	data := payload{
		title:    title,
		message:  message,
		tags:     []string{"megacut", "run", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCancelled(ctx context.Context, completedChunks, remainingChunks int) error {
	if !n.runEvents {
		return nil
	}
	data := payload{
		title:   "Megacut - Run Cancelled",
		message: fmt.Sprintf("Run cancelled: %d chunks kept, %d not rendered", completedChunks, remainingChunks),
		tags:    []string{"megacut", "run", "cancelled"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Megacut - Error",
		message:  builder.String(),
		tags:     []string{"megacut", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Megacut - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"megacut", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyRunStarted(context.Context, int, int) error                   { return nil }
func (noopService) NotifyChunkCompleted(context.Context, int, int, string) error       { return nil }
func (noopService) NotifyChunkFailed(context.Context, int, error) error                { return nil }
func (noopService) NotifyRunCompleted(context.Context, int, int, time.Duration) error  { return nil }
func (noopService) NotifyRunCancelled(context.Context, int, int) error                 { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
