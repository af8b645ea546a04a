// Package preflight provides readiness checks for the filesystem paths and
// services Vellum depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll once at startup. If any check fails,
//     the daemon refuses to start so misconfiguration surfaces immediately
//     instead of as a string of parked contracts.
//   - The CLI "vellum status" command uses individual check functions
//     (CheckNtfyFromConfig, CheckTemplates, ProbeInbox) to display health.
//
// Service checks are gated by their config toggles; disabled features are
// skipped.
package preflight
