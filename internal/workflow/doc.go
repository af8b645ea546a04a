// Package workflow advances queue items through the contract generation
// pipeline.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into the registered stage handlers (preparer, renderer, deliverer)
// while capturing progress and failure metadata. It also aggregates queue
// stats, calls stage health checks, and emits queue-level notifications when
// processing starts or completes.
//
// The stages form a single sequential pipeline: an item must be prepared
// before it renders and rendered before it is delivered. Failed stages either
// fail the item outright or park it for operator review, depending on the
// error classification from the services package.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching the manager how to transition items; this package is
// the authoritative home for that coordination logic.
package workflow
