package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vellum/internal/config"
	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/stage"
	"vellum/internal/testsupport"
	"vellum/internal/workflow"
)

const sampleRequest = `{"template_id": "artist-standard", "entity": {"name": "Ana Pop"}}`

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	return cfg
}

func awaitStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.After(60 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		updated, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if updated.Status == want {
			return updated
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestManagerProcessesContracts(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	preparer := newStubStage("preparer")
	renderer := newStubStage("renderer")
	deliverer := newStubStage("deliverer")

	notifier := &testsupport.RecordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(workflow.StageSet{
		Preparer:  preparer,
		Renderer:  renderer,
		Deliverer: deliverer,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewContract(t, store, "ART", "artist-standard", sampleRequest)

	final := awaitStatus(t, store, item.ID, queue.StatusCompleted)
	if final.ProgressPercent != 100 {
		t.Fatalf("expected progress 100 on completion, got %.1f", final.ProgressPercent)
	}
	if final.ProgressStage != "Completed" {
		t.Fatalf("expected progress stage Completed, got %q", final.ProgressStage)
	}

	starts := notifier.QueueStartCounts()
	if len(starts) != 1 {
		t.Fatalf("expected one queue start notification, got %d", len(starts))
	}
	if starts[0] != 1 {
		t.Fatalf("expected queue start count 1, got %d", starts[0])
	}
	deadline := time.After(10 * time.Second)
	for notifier.QueueCompleteCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected queue completion notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerStatusIncludesStageHealth(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := newStubStage("preparer")
	handler.health = stage.Unhealthy(handler.name, "templates directory missing")

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &testsupport.RecordingNotifier{})
	mgr.ConfigureStages(workflow.StageSet{Preparer: handler})

	status := mgr.Status(context.Background())
	if status.Running {
		t.Fatal("expected manager to report not running before Start")
	}
	health, ok := status.StageHealth[handler.name]
	if !ok {
		t.Fatalf("expected stage health entry for %s", handler.name)
	}
	if health.Ready {
		t.Fatalf("expected not ready health, got %+v", health)
	}
	if health.Detail != handler.health.Detail {
		t.Fatalf("expected detail %q, got %q", handler.health.Detail, health.Detail)
	}
}

func TestManagerParksValidationFailuresForReview(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	failing := newStubStage("preparer")
	failing.executeErr = services.Wrap(services.ErrValidation, "preparer", "parse request", "Contract request invalid", nil)

	notifier := &testsupport.RecordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(workflow.StageSet{Preparer: failing})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewContract(t, store, "ART", "artist-standard", sampleRequest)

	parked := awaitStatus(t, store, item.ID, queue.StatusReview)
	if !parked.NeedsReview {
		t.Fatal("expected item to be flagged for review")
	}
	if parked.ProgressStage != "Review" {
		t.Fatalf("expected progress stage Review, got %q", parked.ProgressStage)
	}
	if !strings.Contains(parked.ReviewReason, "Contract request invalid") {
		t.Fatalf("expected review reason to carry the failure detail, got %q", parked.ReviewReason)
	}

	deadline := time.After(10 * time.Second)
	for len(notifier.ReviewedRefs()) == 0 {
		select {
		case <-deadline:
			t.Fatal("expected review notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	if refs := notifier.ReviewedRefs(); refs[0] != item.Reference {
		t.Fatalf("expected review notification for %s, got %s", item.Reference, refs[0])
	}
}

func TestManagerFailureDefaultsToFailed(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	failing := newStubStage("renderer")
	failing.executeErr = errors.New("render pipeline exploded")

	notifier := &testsupport.RecordingNotifier{}
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	mgr.ConfigureStages(workflow.StageSet{Renderer: failing})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	item := testsupport.NewContract(t, store, "ART", "artist-standard", sampleRequest)
	item.Status = queue.StatusPrepared
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	failed := awaitStatus(t, store, item.ID, queue.StatusFailed)
	if failed.ProgressStage != "Failed" {
		t.Fatalf("expected progress stage Failed, got %q", failed.ProgressStage)
	}
	if !strings.Contains(failed.ErrorMessage, "render pipeline exploded") {
		t.Fatalf("expected error message to carry failure detail, got %q", failed.ErrorMessage)
	}

	deadline := time.After(10 * time.Second)
	for len(notifier.ErrorMessages()) == 0 {
		select {
		case <-deadline:
			t.Fatal("expected error notification")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestManagerStartValidation(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &testsupport.RecordingNotifier{})
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected Start to fail without configured stages")
	}

	mgr.ConfigureStages(workflow.StageSet{Preparer: newStubStage("preparer")})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	if err := mgr.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail while running")
	}
}

func TestManagerReclaimsStaleProcessing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workflow.HeartbeatTimeout = 1
	store := testsupport.MustOpenStore(t, cfg)

	renderer := newStubStage("renderer")
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), &testsupport.RecordingNotifier{})
	mgr.ConfigureStages(workflow.StageSet{Renderer: renderer})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	item := testsupport.NewContract(t, store, "ART", "artist-standard", sampleRequest)
	stale := time.Now().Add(-2 * time.Hour).UTC()
	item.Status = queue.StatusRendering
	item.LastHeartbeat = &stale
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { mgr.Stop() })

	// The abandoned render rolls back to prepared, then the stub picks it up.
	awaitStatus(t, store, item.ID, queue.StatusRendered)
}
