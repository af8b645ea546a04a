package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vellum/internal/config"
)

const userAgent = "Vellum/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyContractQueued(ctx context.Context, reference, templateID string) error
	NotifyGenerationStarted(ctx context.Context, reference string) error
	NotifyDocumentDelivered(ctx context.Context, reference, documentFile string) error
	NotifyReviewRequired(ctx context.Context, reference, reason string) error
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
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

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		events:   cfg.Notifications,
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
	events   config.Notifications
}

func (n *ntfyService) NotifyContractQueued(ctx context.Context, reference, templateID string) error {
	if !n.events.Queue {
		return nil
	}
	reference = strings.TrimSpace(reference)
	templateID = strings.TrimSpace(templateID)
	if templateID == "" {
		templateID = "unknown"
	}
	data := payload{
		title:   "Vellum - Contract Queued",
		message: fmt.Sprintf("📥 Queued: %s (%s)", reference, templateID),
		tags:    []string{"vellum", "queue", "added"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyGenerationStarted(ctx context.Context, reference string) error {
	if !n.events.Queue {
		return nil
	}
	reference = strings.TrimSpace(reference)
	data := payload{
		title:   "Vellum - Generating",
		message: fmt.Sprintf("Started generating: %s", reference),
		tags:    []string{"vellum", "generate", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDocumentDelivered(ctx context.Context, reference, documentFile string) error {
	if !n.events.Delivery {
		return nil
	}
	reference = strings.TrimSpace(reference)
	documentFile = strings.TrimSpace(documentFile)
	message := fmt.Sprintf("✅ Document ready: %s", reference)
	if documentFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, documentFile)
	}
	data := payload{
		title:    "Vellum - Document Delivered",
		message:  message,
		tags:     []string{"vellum", "document", "delivered"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, reference, reason string) error {
	if !n.events.Review {
		return nil
	}
	reference = strings.TrimSpace(reference)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual review required"
	}
	data := payload{
		title:   "Vellum - Review Required",
		message: fmt.Sprintf("Parked for review: %s\n%s", reference, reason),
		tags:    []string{"vellum", "review", "parked"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	if !n.events.Queue {
		return nil
	}
	data := payload{
		title:   "Vellum - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d items", count),
		tags:    []string{"vellum", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.events.Queue {
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

	var message string
	var title string
	if failed == 0 {
		title = "Vellum - Queue Complete"
		message = fmt.Sprintf("Queue processing complete: %d contracts generated in %s", processed, durationText)
	} else {
		title = "Vellum - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"vellum", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.events.Errors {
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
		title:    "Vellum - Error",
		message:  builder.String(),
		tags:     []string{"vellum", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Vellum - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"vellum", "test"},
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

func (noopService) NotifyContractQueued(context.Context, string, string) error          { return nil }
func (noopService) NotifyGenerationStarted(context.Context, string) error               { return nil }
func (noopService) NotifyDocumentDelivered(context.Context, string, string) error       { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error          { return nil }
func (noopService) NotifyQueueStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
