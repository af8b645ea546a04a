package ipc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"vellum/internal/daemon"
	"vellum/internal/ipc"
	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/stage"
	"vellum/internal/testsupport"
	"vellum/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

const contractRequest = `{"template_id": "artist-standard", "entity": {"name": "Ana Pop"}, "terms": {"duration_years": 3, "start_date": "2026-01-01"}}`

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Preparer: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := cfg.Paths.SocketPath
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}

	// Park the workflow so queue items stay where the test puts them.
	stopDuring, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !stopDuring.Stopped {
		t.Fatalf("expected Stop to report stopped, got: %#v", stopDuring)
	}

	submitResp, err := client.Submit([]byte(contractRequest))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	itemA := submitResp.Item
	if itemA.Status != string(queue.StatusPending) {
		t.Fatalf("expected submitted item to be pending, got %s", itemA.Status)
	}
	if !strings.HasPrefix(itemA.Reference, "ART-") {
		t.Fatalf("unexpected reference: %s", itemA.Reference)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Items) != 1 {
		t.Fatalf("expected 1 queue item, got %d", len(listResp.Items))
	}

	itemB := testsupport.NewContract(t, store, "ART", "artist-standard", contractRequest)
	itemB.SetFailed("renderer exploded")
	if err := store.Update(ctx, itemB); err != nil {
		t.Fatalf("Update itemB: %v", err)
	}

	failedResp, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList failed filter: %v", err)
	}
	if len(failedResp.Items) != 1 || failedResp.Items[0].ID != itemB.ID {
		t.Fatalf("expected failed item %d, got %#v", itemB.ID, failedResp.Items)
	}

	stopItems, err := client.QueueStop([]int64{itemA.ID})
	if err != nil {
		t.Fatalf("QueueStop failed: %v", err)
	}
	if stopItems.Updated != 1 {
		t.Fatalf("expected 1 stopped item, got %d", stopItems.Updated)
	}

	describeResp, err := client.QueueDescribe(itemA.ID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if !describeResp.Found {
		t.Fatalf("expected item %d to be found", itemA.ID)
	}
	if describeResp.Item.Status != string(queue.StatusReview) || !describeResp.Item.NeedsReview {
		t.Fatalf("expected item %d parked for review, got %#v", itemA.ID, describeResp.Item)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry failed: %v", err)
	}
	if retryResp.Updated != 2 {
		t.Fatalf("expected 2 retried items, got %d", retryResp.Updated)
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 2 || healthResp.Pending != 2 || healthResp.Failed != 0 || healthResp.Review != 0 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "queue.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Sent || notifyResp.Message != "ntfy topic not configured" {
		t.Fatalf("unexpected notification response: %#v", notifyResp)
	}

	refreshedB, err := store.GetByID(ctx, itemB.ID)
	if err != nil {
		t.Fatalf("GetByID itemB: %v", err)
	}
	refreshedB.Status = queue.StatusCompleted
	if err := store.Update(ctx, refreshedB); err != nil {
		t.Fatalf("Update refreshedB: %v", err)
	}

	clearCompletedResp, err := client.QueueClearCompleted()
	if err != nil {
		t.Fatalf("QueueClearCompleted failed: %v", err)
	}
	if clearCompletedResp.Removed != 1 {
		t.Fatalf("expected 1 completed item removed, got %d", clearCompletedResp.Removed)
	}

	removeResp, err := client.QueueRemove([]int64{itemA.ID})
	if err != nil {
		t.Fatalf("QueueRemove failed: %v", err)
	}
	if removeResp.Removed != 1 {
		t.Fatalf("expected 1 item removed, got %d", removeResp.Removed)
	}
	describeGone, err := client.QueueDescribe(itemA.ID)
	if err != nil {
		t.Fatalf("QueueDescribe after remove failed: %v", err)
	}
	if describeGone.Found {
		t.Fatalf("expected removed item %d to be gone", itemA.ID)
	}

	testsupport.NewContract(t, store, "ART", "artist-standard", contractRequest)
	itemD := testsupport.NewContract(t, store, "ART", "artist-standard", contractRequest)
	itemD.Status = queue.StatusRendering
	if err := store.Update(ctx, itemD); err != nil {
		t.Fatalf("Update itemD: %v", err)
	}

	resetResp, err := client.QueueReset()
	if err != nil {
		t.Fatalf("QueueReset failed: %v", err)
	}
	if resetResp.Updated != 1 {
		t.Fatalf("expected 1 item reset, got %d", resetResp.Updated)
	}
	updatedD, err := store.GetByID(ctx, itemD.ID)
	if err != nil {
		t.Fatalf("GetByID itemD: %v", err)
	}
	if updatedD.Status != queue.StatusPrepared {
		t.Fatalf("expected itemD to resume at rendering stage start after reset, got %s", updatedD.Status)
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if clearResp.Removed != 2 {
		t.Fatalf("expected 2 items cleared, got %d", clearResp.Removed)
	}

	startAgain, err := client.Start()
	if err != nil {
		t.Fatalf("second Start RPC failed: %v", err)
	}
	if !startAgain.Started {
		t.Fatalf("expected restart to succeed, message=%s", startAgain.Message)
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status2.Running {
		t.Fatal("expected daemon to be running after restart")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status3, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status3.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
