package preparer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vellum/internal/config"
	"vellum/internal/docstore"
	"vellum/internal/logging"
	"vellum/internal/preparer"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/testsupport"
)

const validRequest = `{"template_id": "artist-standard", "entity": {"name": "Ana Pop"}, "terms": {"duration_years": 3, "start_date": "2025-06-01"}}`

const templateBody = `CONTRACT {{entity.name}}
Durata: {{contract.duration.years}} ani
`

func newHandler(t *testing.T, cfg *config.Config) (*preparer.Preparer, *queue.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	docs := docstore.NewFilesystem(cfg)
	handler := preparer.NewPreparerWithDependencies(cfg, store, logging.NewNop(), docs, &testsupport.RecordingNotifier{})
	return handler, store
}

func TestPreparerSnapshotsTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTemplate(t, cfg, "artist-standard", templateBody)
	handler, store := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", validRequest)
	item.Status = queue.StatusPreparing

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if item.ProgressStage != "Preparing" {
		t.Fatalf("unexpected progress stage: %q", item.ProgressStage)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.TemplateText != templateBody {
		t.Fatalf("template snapshot mismatch: %q", item.TemplateText)
	}
	if !strings.Contains(item.RequestJSON, `"template_id":"artist-standard"`) {
		t.Fatalf("expected normalized request snapshot, got %q", item.RequestJSON)
	}
	if item.ProgressPercent != 100 || item.ProgressStage != "Prepared" {
		t.Fatalf("unexpected progress state: %s %.0f", item.ProgressStage, item.ProgressPercent)
	}
}

func TestPreparerRejectsMissingTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", validRequest)
	item.Status = queue.StatusPreparing

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected missing template error")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPreparerRejectsEmptyRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTemplate(t, cfg, "artist-standard", templateBody)
	handler, store := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", "")
	item.Status = queue.StatusPreparing

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected error for empty request payload")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPreparerRejectsInvalidRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTemplate(t, cfg, "artist-standard", templateBody)
	handler, store := newHandler(t, cfg)

	ctx := context.Background()
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"template_id": "artist-standard"`},
		{"missing entity", `{"template_id": "artist-standard", "terms": {"duration_years": 3, "start_date": "2025-06-01"}}`},
		{"zero duration", `{"template_id": "artist-standard", "entity": {"name": "Ana Pop"}, "terms": {"duration_years": 0, "start_date": "2025-06-01"}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := testsupport.NewContract(t, store, "ART", "artist-standard", tc.payload)
			item.Status = queue.StatusPreparing
			err := handler.Execute(ctx, item)
			if err == nil {
				t.Fatal("expected validation failure")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPreparerRejectsEmptyTemplateFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTemplate(t, cfg, "artist-standard", "   \n")
	handler, store := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", validRequest)
	item.Status = queue.StatusPreparing

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected empty template error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPreparerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, _ := newHandler(t, cfg)

	health := handler.HealthCheck(context.Background())
	if !health.Ready {
		t.Fatalf("expected healthy preparer, got %q", health.Detail)
	}
	if health.Name != "preparer" {
		t.Fatalf("unexpected health name %q", health.Name)
	}
}
