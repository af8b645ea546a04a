package api

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"vellum/internal/contract"
	"vellum/internal/preflight"
	"vellum/internal/queue"
	"vellum/internal/stage"
	"vellum/internal/workflow"
)

// FromQueueItem converts a queue record to its API representation.
func FromQueueItem(item *queue.Item) QueueItem {
	if item == nil {
		return QueueItem{}
	}

	dto := QueueItem{
		ID:             item.ID,
		Reference:      item.Reference,
		Series:         item.Series,
		ContractNumber: item.ContractNumber,
		ContractYear:   item.ContractYear,
		TemplateID:     item.TemplateID,
		Status:         string(item.Status),
		Stage:          item.Status.StageKey(),
		Progress: QueueProgress{
			Stage:   item.ProgressStage,
			Percent: item.ProgressPercent,
			Message: item.ProgressMessage,
		},
		ErrorMessage: item.ErrorMessage,
		DocumentID:   item.DocumentID,
		DocumentPath: item.DocumentPath,
		NeedsReview:  item.NeedsReview,
		ReviewReason: item.ReviewReason,
	}

	normalizeProgress(&dto, item)

	if !item.CreatedAt.IsZero() {
		dto.CreatedAt = item.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !item.UpdatedAt.IsZero() {
		dto.UpdatedAt = item.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if raw := item.RequestJSON; raw != "" {
		dto.Request = json.RawMessage(raw)
	}
	if raw := item.ValuesJSON; raw != "" {
		dto.Values = json.RawMessage(raw)
	}
	return dto
}

// normalizeProgress back-fills display progress for items whose stored
// progress lags the final status. Review completions keep their stage label.
func normalizeProgress(dto *QueueItem, item *queue.Item) {
	if item.Status == queue.StatusCompleted && !item.NeedsReview {
		if !strings.Contains(strings.ToLower(dto.Progress.Stage), "review") {
			dto.Progress.Stage = "Completed"
		}
		if dto.Progress.Percent < 100 {
			dto.Progress.Percent = 100
		}
	}
	if dto.Progress.Stage == "" {
		dto.Progress.Stage = stageDisplayLabel(item.Status)
	}
}

// stageDisplayLabel renders a queue status as a progress stage label.
func stageDisplayLabel(status queue.Status) string {
	s := string(status)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FromQueueItems converts a slice of queue records into API DTOs.
func FromQueueItems(items []*queue.Item) []QueueItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]QueueItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromQueueItem(item))
	}
	return out
}

// FromShares converts commission share records into API DTOs.
func FromShares(shares []contract.Share) []ShareRecord {
	if len(shares) == 0 {
		return nil
	}
	out := make([]ShareRecord, 0, len(shares))
	for _, share := range shares {
		record := ShareRecord{
			Category: string(share.Category),
			Value:    share.Value,
			Unit:     string(share.Unit),
		}
		if !share.ValidFrom.IsZero() {
			record.ValidFrom = share.ValidFrom.String()
		}
		if !share.ValidTo.IsZero() {
			record.ValidTo = share.ValidTo.String()
		}
		out = append(out, record)
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	stats := make(map[string]int, len(summary.QueueStats))
	for status, count := range summary.QueueStats {
		stats[string(status)] = count
	}

	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueStats:  stats,
		StageHealth: StageHealthSlice(summary.StageHealth),
	}

	if summary.LastError != "" {
		wf.LastError = summary.LastError
	}
	if summary.LastItem != nil {
		last := FromQueueItem(summary.LastItem)
		wf.LastItem = &last
	}
	return wf
}

// FromPreflightResults converts readiness check results to API payload.
func FromPreflightResults(results []preflight.Result) []PreflightResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]PreflightResult, 0, len(results))
	for _, r := range results {
		out = append(out, PreflightResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

// MergeQueueStats produces a string-keyed representation of queue stats.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	if len(health) == 0 {
		return nil
	}
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
