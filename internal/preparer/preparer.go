package preparer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"vellum/internal/config"
	"vellum/internal/docstore"
	"vellum/internal/logging"
	"vellum/internal/notifications"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/stage"
)

// Preparer validates a queued contract request and snapshots the template it
// will be rendered from. After this stage the item is self-contained: later
// stages read only the snapshots, so edits to the template file no longer
// affect in-flight contracts.
type Preparer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	docs     docstore.Store
	notifier notifications.Service
}

// NewPreparer constructs the preparer stage handler using default dependencies.
func NewPreparer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Preparer {
	return NewPreparerWithDependencies(cfg, store, logger, docstore.NewFilesystem(cfg), notifications.NewService(cfg))
}

// NewPreparerWithDependencies allows injecting collaborators (used in tests).
func NewPreparerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, docs docstore.Store, notifier notifications.Service) *Preparer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "preparer"))
	}
	return &Preparer{store: store, cfg: cfg, logger: stageLogger, docs: docs, notifier: notifier}
}

func (p *Preparer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Preparing"
	}
	item.ProgressMessage = "Validating contract request"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting contract preparation",
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String(logging.FieldTemplateID, strings.TrimSpace(item.TemplateID)),
	)
	return nil
}

func (p *Preparer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if strings.TrimSpace(item.RequestJSON) == "" {
		return services.Wrap(
			services.ErrValidation,
			"preparing",
			"validate inputs",
			"No request payload present; submit the contract request again",
			nil,
		)
	}

	request, err := stage.ParseRequestSnapshot(item.RequestJSON)
	if err != nil {
		return err
	}
	if err := request.Validate(); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"preparing",
			"validate request",
			fmt.Sprintf("Contract request invalid: %v", err),
			err,
		)
	}

	p.updateProgress(ctx, item, "Loading template", 40)
	templateID := request.TemplateID
	templateText, err := p.docs.ReadTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, docstore.ErrTemplateNotFound) {
			return services.Wrap(
				services.ErrNotFound,
				"preparing",
				"load template",
				fmt.Sprintf("Template %q not found; add it to templates_dir or fix template_id", templateID),
				err,
			)
		}
		return services.Wrap(services.ErrTransient, "preparing", "load template", "Failed to read template file", err)
	}
	if strings.TrimSpace(templateText) == "" {
		return services.Wrap(
			services.ErrValidation,
			"preparing",
			"load template",
			fmt.Sprintf("Template %q is empty", templateID),
			nil,
		)
	}

	p.updateProgress(ctx, item, "Snapshotting request", 80)
	normalized, err := json.Marshal(request)
	if err != nil {
		return services.Wrap(services.ErrTransient, "preparing", "encode request", "Failed to encode normalized request", err)
	}
	item.RequestJSON = string(normalized)
	item.TemplateID = templateID
	item.TemplateText = templateText

	item.SetProgressComplete("Prepared", fmt.Sprintf("Template %s snapshotted (%d bytes)", templateID, len(templateText)))
	logger.Info(
		"contract preparation completed",
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String(logging.FieldTemplateID, templateID),
		logging.Int("template_bytes", len(templateText)),
	)
	return nil
}

// HealthCheck verifies the preparer can resolve templates from the configured directory.
func (p *Preparer) HealthCheck(ctx context.Context) stage.Health {
	const name = "preparer"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Paths.TemplatesDir) == "" {
		return stage.Unhealthy(name, "templates directory not configured")
	}
	if p.docs == nil {
		return stage.Unhealthy(name, "document store unavailable")
	}
	if _, err := p.docs.Templates(ctx); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("templates directory unreadable: %v", err))
	}
	return stage.Healthy(name)
}

func (p *Preparer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, p.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := p.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist preparer progress", logging.Error(err))
		return
	}
	*item = copy
}
