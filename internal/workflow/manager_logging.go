package workflow

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/services"
)

// pipelineLane labels the single processing lane in logs and context fields.
const pipelineLane = "pipeline"

func (m *Manager) runnerLogger() *slog.Logger {
	if m.logger == nil {
		return logging.NewNop()
	}
	return m.logger.With(
		logging.String(logging.FieldComponent, "workflow-runner"),
		logging.String(logging.FieldLane, pipelineLane),
	)
}

func (m *Manager) managerLogger(ctx context.Context) *slog.Logger {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	return logging.WithContext(ctx, base.With(logging.String(logging.FieldComponent, "workflow-manager")))
}

func withStageContext(ctx context.Context, stageName string, item *queue.Item, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if item != nil {
		ctx = services.WithItemID(ctx, item.ID)
	}
	if stageName != "" {
		ctx = services.WithStage(ctx, stageName)
	}
	ctx = services.WithLane(ctx, pipelineLane)
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}

// deriveStageLabel renders a queue status as a human readable progress label.
func deriveStageLabel(status queue.Status) string {
	if status == "" {
		return ""
	}
	parts := strings.Fields(strings.ReplaceAll(string(status), "_", " "))
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
