package deliverer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vellum/internal/config"
	"vellum/internal/deliverer"
	"vellum/internal/docstore"
	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/testsupport"
)

func newHandler(t *testing.T, cfg *config.Config) (*deliverer.Deliverer, *queue.Store, *testsupport.RecordingNotifier) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &testsupport.RecordingNotifier{}
	handler := deliverer.NewDelivererWithDependencies(cfg, store, logging.NewNop(), docstore.NewFilesystem(cfg), notifier)
	return handler, store, notifier
}

func renderedItem(t *testing.T, store *queue.Store, text string) *queue.Item {
	t.Helper()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", "{}")
	item.Status = queue.StatusDelivering
	item.RenderedText = text
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return item
}

func TestDelivererWritesDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, notifier := newHandler(t, cfg)

	ctx := context.Background()
	item := renderedItem(t, store, "CONTRACT Ana Pop\n")

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.DocumentID == "" {
		t.Fatal("expected document id")
	}
	if item.DocumentPath == "" {
		t.Fatal("expected document path")
	}
	if filepath.Base(item.DocumentPath) != item.Reference+".txt" {
		t.Fatalf("unexpected document name: %s", filepath.Base(item.DocumentPath))
	}
	data, err := os.ReadFile(item.DocumentPath)
	if err != nil {
		t.Fatalf("read delivered document: %v", err)
	}
	if string(data) != "CONTRACT Ana Pop\n" {
		t.Fatalf("document content mismatch: %q", string(data))
	}
	if notifier.DeliveredCount() != 1 {
		t.Fatalf("expected delivery notification, got %d", notifier.DeliveredCount())
	}
	if item.ProgressPercent != 100 || item.ProgressStage != "Delivered" {
		t.Fatalf("unexpected progress state: %s %.0f", item.ProgressStage, item.ProgressPercent)
	}
}

func TestDelivererAvoidsOverwritingExistingDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	first := renderedItem(t, store, "first\n")
	if err := handler.Execute(ctx, first); err != nil {
		t.Fatalf("Execute first: %v", err)
	}

	second, err := store.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	second.Status = queue.StatusDelivering
	second.RenderedText = "second\n"
	if err := handler.Execute(ctx, second); err != nil {
		t.Fatalf("Execute second: %v", err)
	}

	if second.DocumentPath == first.DocumentPath {
		t.Fatalf("expected distinct document paths, both %s", first.DocumentPath)
	}
	if !strings.HasSuffix(second.DocumentPath, "-2.txt") {
		t.Fatalf("expected numbered suffix, got %s", second.DocumentPath)
	}
	data, err := os.ReadFile(first.DocumentPath)
	if err != nil {
		t.Fatalf("read first document: %v", err)
	}
	if string(data) != "first\n" {
		t.Fatalf("first document was overwritten: %q", string(data))
	}
}

func TestDelivererKeepsDocumentID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := renderedItem(t, store, "body\n")
	item.DocumentID = "11111111-2222-3333-4444-555555555555"

	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.DocumentID != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("expected retry to keep document id, got %s", item.DocumentID)
	}
}

func TestDelivererRequiresRenderedText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", "{}")
	item.Status = queue.StatusDelivering

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected missing render error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelivererHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, _, _ := newHandler(t, cfg)

	health := handler.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected healthy deliverer, got %q", health.Detail)
	}

	broken := config.Default()
	broken.Paths.OutputDir = ""
	unready := deliverer.NewDelivererWithDependencies(&broken, nil, logging.NewNop(), nil, nil)
	if health := unready.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy deliverer without output dir")
	}
}
