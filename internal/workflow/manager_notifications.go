package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vellum/internal/logging"
	"vellum/internal/queue"
)

func (m *Manager) notifyStageError(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := m.managerLogger(ctx)
	contextLabel := fmt.Sprintf("%s (contract %s)", stageName, item.Reference)
	if err := m.notifier.NotifyError(ctx, stageErr, contextLabel); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send error notification")
		} else {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyReviewRequired(ctx context.Context, item *queue.Item) {
	if m.notifier == nil {
		return
	}
	logger := m.managerLogger(ctx)
	if err := m.notifier.NotifyReviewRequired(ctx, item.Reference, item.ReviewReason); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send review notification")
		} else {
			logger.Debug("review notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) onItemStarted(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logStatsFailure(ctx, err, "start")
		return
	}
	m.mu.Lock()
	if m.queueActive {
		m.mu.Unlock()
		return
	}
	m.queueActive = true
	m.queueStart = time.Now()
	m.mu.Unlock()

	if err := m.notifier.NotifyQueueStarted(ctx, countWorkItems(stats)); err != nil {
		logger := m.managerLogger(ctx)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send queue start notification")
		} else {
			logger.Debug("queue start notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) checkQueueCompletion(ctx context.Context) {
	if m.notifier == nil {
		return
	}
	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logStatsFailure(ctx, err, "completion")
		return
	}
	if countActiveItems(stats) > 0 {
		return
	}

	m.mu.Lock()
	if !m.queueActive {
		m.mu.Unlock()
		return
	}
	start := m.queueStart
	m.queueActive = false
	m.queueStart = time.Time{}
	m.mu.Unlock()

	duration := time.Duration(0)
	if !start.IsZero() {
		duration = time.Since(start)
	}
	processed := stats[queue.StatusCompleted]
	failed := stats[queue.StatusFailed]
	if err := m.notifier.NotifyQueueCompleted(ctx, processed, failed, duration); err != nil {
		logger := m.managerLogger(ctx)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send queue completion notification")
		} else {
			logger.Debug("queue completion notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) logStatsFailure(ctx context.Context, err error, kind string) {
	logger := m.managerLogger(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Debug(fmt.Sprintf("daemon shutting down, could not get queue stats for %s notification", kind))
		return
	}
	logger.Warn(fmt.Sprintf("queue stats unavailable for %s notification; notification skipped", kind),
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_stats_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
		logging.String(logging.FieldImpact, fmt.Sprintf("%s notification will not be sent", kind)),
	)
}

func countWorkItems(stats map[queue.Status]int) int {
	total := 0
	for status, count := range stats {
		if status == queue.StatusCompleted || status == queue.StatusFailed {
			continue
		}
		total += count
	}
	return total
}

func countActiveItems(stats map[queue.Status]int) int {
	total := 0
	for _, status := range []queue.Status{
		queue.StatusPending,
		queue.StatusPreparing,
		queue.StatusPrepared,
		queue.StatusRendering,
		queue.StatusRendered,
		queue.StatusDelivering,
	} {
		total += stats[status]
	}
	return total
}
