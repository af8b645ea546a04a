// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal queue models into transport-friendly DTOs
// that clients can render without coupling to internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with progress,
// delivery artefacts, and the request/values payloads.
//
// WorkflowStatus: daemon running state, queue stats, stage health, and last
// item.
//
// DaemonStatus: aggregated runtime information including preflight results.
//
// # Converters
//
// FromQueueItem: queue.Item -> QueueItem with stage key derivation and
// timestamp formatting. FromStatusSummary: workflow.StatusSummary ->
// WorkflowStatus. StageHealthSlice: deterministic ordering of stage health
// maps.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers. Internal
// enums (queue.Status) are exposed as lowercase strings. Timestamps use
// RFC3339 with milliseconds. Request and values payloads are passed through
// as json.RawMessage to avoid double-encoding.
package api
