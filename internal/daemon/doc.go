// Package daemon coordinates the long-running vellumd process and its
// integration points.
//
// It wires configuration, queue storage, the workflow manager, the inbox
// monitor, and the HTTP API into a single lifecycle with flock-based locking
// to prevent multiple instances. The daemon exposes the queue maintenance
// facade used by the IPC server and accepts contract requests from watched
// inbox files and HTTP submissions.
//
// Keep orchestration logic here: individual pipeline stages live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
