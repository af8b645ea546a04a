package renderer_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"vellum/internal/config"
	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/renderer"
	"vellum/internal/services"
	"vellum/internal/testsupport"
)

const renderRequest = `{
	"template_id": "artist-standard",
	"entity": {"name": "Ana Pop"},
	"terms": {"duration_years": 3, "start_date": "2025-06-01"},
	"commission_by_year": {
		"1": {"concert": 20},
		"2": {"concert": 20},
		"3": {"concert": 25}
	},
	"commission_structure": {
		"first_years": {"count": 2, "concert": 20},
		"last_years": {"count": 1, "concert": 25}
	}
}`

const renderTemplate = `CONTRACT {{entity.name}}
{{BEGIN:has_concert_rights}}Concert: {{commission.year1.concert}}%
{{END:has_concert_rights}}Durata: {{contract.duration.phrase:{n} an:{n} ani}}
`

const renderedDocument = `CONTRACT Ana Pop
Concert: 20.0%
Durata: 3 ani
`

func newHandler(t *testing.T, cfg *config.Config) (*renderer.Renderer, *queue.Store, *testsupport.RecordingNotifier) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &testsupport.RecordingNotifier{}
	handler := renderer.NewRendererWithDependencies(cfg, store, logging.NewNop(), nil, notifier)
	return handler, store, notifier
}

func preparedItem(t *testing.T, store *queue.Store, requestJSON, templateText string) *queue.Item {
	t.Helper()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", requestJSON)
	item.Status = queue.StatusRendering
	item.TemplateText = templateText
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return item
}

func TestRendererProducesDocumentAndArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, notifier := newHandler(t, cfg)

	ctx := context.Background()
	item := preparedItem(t, store, renderRequest, renderTemplate)

	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.RenderedText != renderedDocument {
		t.Fatalf("rendered text mismatch:\n%q\nwant:\n%q", item.RenderedText, renderedDocument)
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(item.ValuesJSON), &values); err != nil {
		t.Fatalf("values snapshot not valid JSON: %v", err)
	}
	if _, ok := values["has_concert_rights"]; !ok {
		t.Fatalf("expected analyzer flags in values snapshot, got %v", values)
	}

	shares, err := store.SharesForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("SharesForItem: %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("expected 3 shares persisted, got %d", len(shares))
	}

	if len(notifier.Started) != 1 || notifier.Started[0] != item.Reference {
		t.Fatalf("expected generation start notification for %s, got %v", item.Reference, notifier.Started)
	}
	if item.ProgressPercent != 100 || item.ProgressStage != "Rendered" {
		t.Fatalf("unexpected progress state: %s %.0f", item.ProgressStage, item.ProgressPercent)
	}
}

func TestRendererReRunReplacesShares(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := preparedItem(t, store, renderRequest, renderTemplate)

	for run := 0; run < 2; run++ {
		if err := handler.Execute(ctx, item); err != nil {
			t.Fatalf("Execute run %d: %v", run, err)
		}
	}

	shares, err := store.SharesForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("SharesForItem: %v", err)
	}
	if len(shares) != 3 {
		t.Fatalf("expected re-render to replace shares, got %d", len(shares))
	}
}

func TestRendererPassesUnresolvedThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := preparedItem(t, store, renderRequest, "Salut {{entity.name}}, {{missing.key}}!\n")

	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.RenderedText != "Salut Ana Pop, {{missing.key}}!\n" {
		t.Fatalf("unexpected rendered text: %q", item.RenderedText)
	}
}

func TestRendererStrictModeFailsOnUnresolved(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrictPlaceholders(true))
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := preparedItem(t, store, renderRequest, "Salut {{missing.key}}!\n")

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected strict mode failure")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing.key") {
		t.Fatalf("expected offending token in error, got %v", err)
	}
}

func TestRendererRequiresTemplateSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := testsupport.NewContract(t, store, "ART", "artist-standard", renderRequest)
	item.Status = queue.StatusRendering

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected missing snapshot error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRendererRejectsBadRequestSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	handler, store, _ := newHandler(t, cfg)

	ctx := context.Background()
	item := preparedItem(t, store, `{"template_id": "artist-standard", "entity": {"name": ""}}`, renderTemplate)

	err := handler.Execute(ctx, item)
	if err == nil {
		t.Fatal("expected engine validation failure")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
