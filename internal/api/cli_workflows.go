package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vellum/internal/config"
	"vellum/internal/deliverer"
	"vellum/internal/generation"
	"vellum/internal/logging"
	"vellum/internal/notifications"
	"vellum/internal/preparer"
	"vellum/internal/queue"
	"vellum/internal/renderer"
	"vellum/internal/services"
	"vellum/internal/stageexec"
)

// SubmitContractRequest carries a raw request payload into the queue.
type SubmitContractRequest struct {
	Config   *config.Config
	Store    *queue.Store
	Notifier notifications.Service
	Logger   *slog.Logger
	Payload  []byte
}

type SubmitContractResult struct {
	Item *queue.Item
}

// SubmitContract validates request JSON and enqueues it for the pipeline.
// The CLI, the watched inbox, and the HTTP API all enqueue through here so
// series defaulting and validation behave identically.
func SubmitContract(ctx context.Context, req SubmitContractRequest) (SubmitContractResult, error) {
	cfg := req.Config
	if cfg == nil {
		return SubmitContractResult{}, fmt.Errorf("configuration is required")
	}
	if req.Store == nil {
		return SubmitContractResult{}, fmt.Errorf("queue store is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	request, err := generation.ParseRequest(req.Payload)
	if err != nil {
		return SubmitContractResult{}, services.Wrap(
			services.ErrValidation,
			"submit",
			"parse request",
			fmt.Sprintf("Contract request is not valid JSON: %v", err),
			err,
		)
	}
	if err := request.Validate(); err != nil {
		return SubmitContractResult{}, services.Wrap(
			services.ErrValidation,
			"submit",
			"validate request",
			fmt.Sprintf("Contract request invalid: %v", err),
			err,
		)
	}

	series := request.Series
	if series == "" {
		series = cfg.Generation.LabelSeries
	}

	item, err := req.Store.NewContract(ctx, series, request.TemplateID, string(req.Payload))
	if err != nil {
		return SubmitContractResult{}, fmt.Errorf("enqueue contract request: %w", err)
	}

	logger.Info(
		"contract queued",
		logging.String(logging.FieldEventType, "contract_queued"),
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String(logging.FieldTemplateID, item.TemplateID),
		logging.String("series", item.Series),
	)
	if req.Notifier != nil {
		if err := req.Notifier.NotifyContractQueued(ctx, item.Reference, item.TemplateID); err != nil {
			logger.Debug("queue notification failed", logging.Error(err))
		}
	}

	return SubmitContractResult{Item: item}, nil
}

// GenerateContractRequest drives the full pipeline inline without a daemon.
type GenerateContractRequest struct {
	Config      *config.Config
	Logger      *slog.Logger
	RequestPath string
	OutputDir   string
}

type GenerateContractResult struct {
	Item         *queue.Item
	Reference    string
	DocumentPath string
}

// GenerateContract runs prepare, render, and deliver against a local request
// file. The result carries the queue item from the moment it is enqueued,
// including when a later stage fails, so callers can report review state.
func GenerateContract(ctx context.Context, req GenerateContractRequest) (GenerateContractResult, error) {
	cfg := req.Config
	if cfg == nil {
		return GenerateContractResult{}, fmt.Errorf("configuration is required")
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	requestPath := strings.TrimSpace(req.RequestPath)
	if requestPath == "" {
		return GenerateContractResult{}, fmt.Errorf("request file path is required")
	}
	payload, err := os.ReadFile(requestPath)
	if err != nil {
		return GenerateContractResult{}, fmt.Errorf("read request file: %w", err)
	}

	if dir := strings.TrimSpace(req.OutputDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return GenerateContractResult{}, fmt.Errorf("resolve output directory: %w", err)
		}
		override := *cfg
		override.Paths.OutputDir = abs
		cfg = &override
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return GenerateContractResult{}, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	submitted, err := SubmitContract(ctx, SubmitContractRequest{
		Config:   cfg,
		Store:    store,
		Notifier: notifier,
		Logger:   logger,
		Payload:  payload,
	})
	if err != nil {
		return GenerateContractResult{}, err
	}
	item := submitted.Item

	stages := []struct {
		name       string
		handler    stageexec.Handler
		processing queue.Status
		done       queue.Status
	}{
		{name: "preparer", handler: preparer.NewPreparer(cfg, store, logger), processing: queue.StatusPreparing, done: queue.StatusPrepared},
		{name: "renderer", handler: renderer.NewRenderer(cfg, store, logger), processing: queue.StatusRendering, done: queue.StatusRendered},
		{name: "deliverer", handler: deliverer.NewDeliverer(cfg, store, logger), processing: queue.StatusDelivering, done: queue.StatusCompleted},
	}
	for _, st := range stages {
		if err := stageexec.Run(ctx, stageexec.Options{
			Logger:     logger,
			Store:      store,
			Notifier:   notifier,
			Handler:    st.handler,
			StageName:  st.name,
			Processing: st.processing,
			Done:       st.done,
			Item:       item,
		}); err != nil {
			return GenerateContractResult{Item: item}, err
		}
	}

	return GenerateContractResult{
		Item:         item,
		Reference:    item.Reference,
		DocumentPath: item.DocumentPath,
	}, nil
}

type GenerationAssessment struct {
	EntityName     string
	TemplateID     string
	Reference      string
	DocumentPath   string
	ReviewRequired bool
	ReviewReason   string
	Outcome        string
	OutcomeMessage string
}

// AssessGeneration derives CLI-facing generation outcomes from queue state.
func AssessGeneration(item *queue.Item) GenerationAssessment {
	if item == nil {
		return GenerationAssessment{
			EntityName:     "Unknown",
			Outcome:        "failed",
			OutcomeMessage: "❌ Generation failed. Check the logs above for details.",
		}
	}

	fields := parseRequestFields(item.RequestJSON)
	assessment := GenerationAssessment{
		EntityName:     fields.entityName,
		TemplateID:     strings.TrimSpace(item.TemplateID),
		Reference:      item.Reference,
		DocumentPath:   strings.TrimSpace(item.DocumentPath),
		ReviewRequired: item.NeedsReview,
		ReviewReason:   strings.TrimSpace(item.ReviewReason),
	}
	if assessment.TemplateID == "" {
		assessment.TemplateID = fields.templateID
	}

	switch {
	case item.Status == queue.StatusCompleted && !item.NeedsReview:
		assessment.Outcome = "success"
		assessment.OutcomeMessage = fmt.Sprintf("📄 Contract %s generated: %s", assessment.Reference, assessment.DocumentPath)
	case assessment.ReviewRequired:
		assessment.Outcome = "review"
		assessment.OutcomeMessage = "⚠️  Generation requires manual review. Check the logs above for details."
	default:
		assessment.Outcome = "failed"
		assessment.OutcomeMessage = "❌ Generation failed. Check the logs above for details."
	}

	return assessment
}
