package api

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"vellum/internal/logging"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/testsupport"
)

const workflowRequest = `{
	"template_id": "artist-standard",
	"entity": {"name": "Ana Pop"},
	"terms": {"duration_years": 3, "start_date": "2026-01-01"}
}`

const workflowTemplate = `CONTRACT {{entity.name}}
Durata: {{contract.duration.phrase:{n} an:{n} ani}}
`

func TestSubmitContractDefaultsSeries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	result, err := SubmitContract(context.Background(), SubmitContractRequest{
		Config:  cfg,
		Store:   store,
		Payload: []byte(workflowRequest),
	})
	if err != nil {
		t.Fatalf("SubmitContract: %v", err)
	}
	item := result.Item
	if item == nil {
		t.Fatal("expected queued item")
	}
	if item.Series != "ART" {
		t.Fatalf("expected configured series default, got %q", item.Series)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if !strings.HasPrefix(item.Reference, "ART-") {
		t.Fatalf("unexpected reference: %q", item.Reference)
	}
	if item.TemplateID != "artist-standard" {
		t.Fatalf("unexpected template id: %q", item.TemplateID)
	}
}

func TestSubmitContractNotifies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &testsupport.RecordingNotifier{}

	result, err := SubmitContract(context.Background(), SubmitContractRequest{
		Config:   cfg,
		Store:    store,
		Notifier: notifier,
		Payload:  []byte(workflowRequest),
	})
	if err != nil {
		t.Fatalf("SubmitContract: %v", err)
	}
	if len(notifier.Queued) != 1 || notifier.Queued[0] != result.Item.Reference {
		t.Fatalf("expected queued notification for %s, got %v", result.Item.Reference, notifier.Queued)
	}
}

func TestSubmitContractRejectsInvalidPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	cases := []struct {
		name    string
		payload string
	}{
		{name: "malformed json", payload: `{broken`},
		{name: "missing entity name", payload: `{"template_id":"artist-standard","terms":{"duration_years":3,"start_date":"2026-01-01"}}`},
		{name: "missing template", payload: `{"entity":{"name":"Ana Pop"},"terms":{"duration_years":3,"start_date":"2026-01-01"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SubmitContract(context.Background(), SubmitContractRequest{
				Config:  cfg,
				Store:   store,
				Payload: []byte(tc.payload),
			})
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGenerateContractEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteTemplate(t, cfg, "artist-standard", workflowTemplate)
	requestPath := testsupport.WriteRequestFile(t, testsupport.BaseDir(cfg), "request.json", workflowRequest)

	result, err := GenerateContract(context.Background(), GenerateContractRequest{
		Config:      cfg,
		Logger:      logging.NewNop(),
		RequestPath: requestPath,
	})
	if err != nil {
		t.Fatalf("GenerateContract: %v", err)
	}
	if result.Item == nil || result.Item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed item, got %+v", result.Item)
	}
	if result.DocumentPath == "" {
		t.Fatal("expected document path")
	}

	data, err := os.ReadFile(result.DocumentPath)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(data), "Ana Pop") {
		t.Fatalf("expected substituted entity name, got %q", string(data))
	}
	if !strings.Contains(string(data), "3 ani") {
		t.Fatalf("expected pluralized duration, got %q", string(data))
	}

	assessment := AssessGeneration(result.Item)
	if assessment.Outcome != "success" {
		t.Fatalf("Outcome = %q, want success", assessment.Outcome)
	}
	if assessment.EntityName != "Ana Pop" {
		t.Fatalf("EntityName = %q, want Ana Pop", assessment.EntityName)
	}
	if assessment.DocumentPath != result.DocumentPath {
		t.Fatalf("DocumentPath = %q, want %q", assessment.DocumentPath, result.DocumentPath)
	}
}

func TestGenerateContractParksMissingTemplate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	requestPath := testsupport.WriteRequestFile(t, testsupport.BaseDir(cfg), "request.json", workflowRequest)

	result, err := GenerateContract(context.Background(), GenerateContractRequest{
		Config:      cfg,
		Logger:      logging.NewNop(),
		RequestPath: requestPath,
	})
	if err == nil {
		t.Fatal("expected stage failure")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if result.Item == nil {
		t.Fatal("expected item carried through failure")
	}
	if result.Item.Status != queue.StatusReview || !result.Item.NeedsReview {
		t.Fatalf("expected parked item, got %s", result.Item.Status)
	}

	assessment := AssessGeneration(result.Item)
	if assessment.Outcome != "review" {
		t.Fatalf("Outcome = %q, want review", assessment.Outcome)
	}
	if assessment.ReviewReason == "" {
		t.Fatal("expected review reason")
	}
}

func TestGenerateContractMissingRequestFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	_, err := GenerateContract(context.Background(), GenerateContractRequest{
		Config:      cfg,
		RequestPath: testsupport.BaseDir(cfg) + "/does-not-exist.json",
	})
	if err == nil {
		t.Fatal("expected read error")
	}
}

func TestAssessGenerationNilItem(t *testing.T) {
	assessment := AssessGeneration(nil)
	if assessment.Outcome != "failed" {
		t.Fatalf("Outcome = %q, want failed", assessment.Outcome)
	}
	if assessment.EntityName != "Unknown" {
		t.Fatalf("EntityName = %q, want Unknown", assessment.EntityName)
	}
}
