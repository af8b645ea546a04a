package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vellum/internal/api"
	"vellum/internal/queue"
)

func parsePositiveIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeQueueRemoveResultJSON(cmd *cobra.Command, result api.RemoveItemsResult) error {
	type jsonItem struct {
		ID      int64  `json:"id"`
		Outcome string `json:"outcome"`
	}
	items := make([]jsonItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, jsonItem{ID: item.ID, Outcome: string(item.Outcome)})
	}
	return writeJSON(cmd, map[string]any{"items": items})
}

func printQueueRemoveResult(out io.Writer, result api.RemoveItemsResult) {
	for _, item := range result.Items {
		switch item.Outcome {
		case api.RemoveItemNotFound:
			fmt.Fprintf(out, "Item %d not found\n", item.ID)
		case api.RemoveItemRemoved:
			fmt.Fprintf(out, "Item %d removed\n", item.ID)
		}
	}
}

func bulkClearLabel(all, completed, failed bool) string {
	switch {
	case completed:
		return "completed items"
	case failed:
		return "failed items"
	case all:
		return "queue items"
	default:
		return "queue items"
	}
}

func writeQueueRetryResultJSON(cmd *cobra.Command, result api.RetryItemsResult) error {
	type jsonItem struct {
		ID      int64  `json:"id"`
		Outcome string `json:"outcome"`
	}
	items := make([]jsonItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, jsonItem{ID: item.ID, Outcome: string(item.Outcome)})
	}
	return writeJSON(cmd, map[string]any{"items": items})
}

func printQueueRetryResult(out io.Writer, result api.RetryItemsResult) {
	for _, item := range result.Items {
		switch item.Outcome {
		case api.RetryItemNotFound:
			fmt.Fprintf(out, "Item %d not found\n", item.ID)
		case api.RetryItemNotEligible:
			fmt.Fprintf(out, "Item %d is not in a retryable state (only failed or parked items can be retried)\n", item.ID)
		case api.RetryItemUpdated:
			fmt.Fprintf(out, "Item %d reset for retry\n", item.ID)
		}
	}
}

func writeQueueStopResultJSON(cmd *cobra.Command, result api.StopItemsResult) error {
	type jsonItem struct {
		ID          int64  `json:"id"`
		Outcome     string `json:"outcome"`
		PriorStatus string `json:"prior_status,omitempty"`
	}
	items := make([]jsonItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, jsonItem{
			ID:          item.ID,
			Outcome:     string(item.Outcome),
			PriorStatus: item.PriorStatus,
		})
	}
	return writeJSON(cmd, map[string]any{"items": items})
}

func printQueueStopResult(out io.Writer, result api.StopItemsResult) {
	for _, item := range result.Items {
		switch item.Outcome {
		case api.StopItemNotFound:
			fmt.Fprintf(out, "Item %d not found\n", item.ID)
		case api.StopItemAlreadyCompleted:
			fmt.Fprintf(out, "Item %d is already completed\n", item.ID)
		case api.StopItemAlreadyFailed:
			fmt.Fprintf(out, "Item %d is already failed\n", item.ID)
		case api.StopItemAlreadyParked:
			fmt.Fprintf(out, "Item %d is already parked for review\n", item.ID)
		case api.StopItemUpdated:
			message := fmt.Sprintf("Item %d stop requested", item.ID)
			if queue.IsProcessingStatus(queue.Status(item.PriorStatus)) {
				message = fmt.Sprintf("Item %d stop requested (currently %s; will halt after current stage)", item.ID, formatStatusLabel(item.PriorStatus))
			}
			fmt.Fprintln(out, message)
		}
	}
}

func printQueueItemDetail(out io.Writer, item api.QueueItem) {
	fmt.Fprintf(out, "Item %d\n", item.ID)
	writeDetail := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		fmt.Fprintf(out, "  %-14s %s\n", label+":", value)
	}

	writeDetail("Entity", api.RequestEntityName(string(item.Request)))
	writeDetail("Reference", item.Reference)
	writeDetail("Template", item.TemplateID)
	writeDetail("Status", formatStatusLabel(item.Status))
	if stage := strings.TrimSpace(item.Progress.Stage); stage != "" {
		detail := fmt.Sprintf("%s (%.0f%%)", stage, item.Progress.Percent)
		if message := strings.TrimSpace(item.Progress.Message); message != "" {
			detail += " " + message
		}
		writeDetail("Progress", detail)
	}
	writeDetail("Created", formatDisplayTime(item.CreatedAt))
	writeDetail("Updated", formatDisplayTime(item.UpdatedAt))
	writeDetail("Document", item.DocumentPath)
	writeDetail("Error", item.ErrorMessage)
	if item.NeedsReview {
		reason := strings.TrimSpace(item.ReviewReason)
		if reason == "" {
			reason = "Flagged for review"
		}
		writeDetail("Review", reason)
	}
	if len(item.Shares) > 0 {
		fmt.Fprintln(out, "  Shares:")
		for _, share := range item.Shares {
			fmt.Fprintln(out, "    "+formatShareLine(share))
		}
	}
}

func formatShareLine(share api.ShareRecord) string {
	value := strconv.FormatFloat(share.Value, 'f', -1, 64)
	line := fmt.Sprintf("%s: %s", share.Category, value)
	if unit := strings.TrimSpace(share.Unit); unit != "" {
		line += " " + unit
	}
	from := strings.TrimSpace(share.ValidFrom)
	to := strings.TrimSpace(share.ValidTo)
	switch {
	case from != "" && to != "":
		line += fmt.Sprintf(" (valid %s to %s)", from, to)
	case from != "":
		line += fmt.Sprintf(" (valid from %s)", from)
	case to != "":
		line += fmt.Sprintf(" (valid until %s)", to)
	}
	return line
}
