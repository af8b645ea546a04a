package deliverer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"vellum/internal/config"
	"vellum/internal/docstore"
	"vellum/internal/logging"
	"vellum/internal/notifications"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/stage"
	"vellum/internal/textutil"
)

// Deliverer writes the rendered document into the output directory, mints
// its document identity, and announces the delivery.
type Deliverer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	docs     docstore.Store
	notifier notifications.Service
}

// NewDeliverer constructs the deliverer stage handler using default dependencies.
func NewDeliverer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Deliverer {
	return NewDelivererWithDependencies(cfg, store, logger, docstore.NewFilesystem(cfg), notifications.NewService(cfg))
}

// NewDelivererWithDependencies allows injecting collaborators (used in tests).
func NewDelivererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, docs docstore.Store, notifier notifications.Service) *Deliverer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "deliverer"))
	}
	return &Deliverer{store: store, cfg: cfg, logger: stageLogger, docs: docs, notifier: notifier}
}

func (d *Deliverer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Delivering"
	}
	item.ProgressMessage = "Preparing document delivery"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting document delivery",
		logging.String(logging.FieldContractRef, item.Reference),
	)
	return nil
}

func (d *Deliverer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, d.logger)
	if strings.TrimSpace(item.RenderedText) == "" {
		return services.Wrap(
			services.ErrValidation,
			"delivering",
			"validate inputs",
			"No rendered document present; run rendering before delivery",
			nil,
		)
	}

	d.updateProgress(ctx, item, "Writing document", 30)
	filename := d.documentFilename(item)
	path, err := d.docs.WriteDocument(ctx, filename, item.RenderedText)
	if err != nil {
		return services.Wrap(services.ErrStore, "delivering", "write document", "Failed to write document into output_dir", err)
	}

	d.updateProgress(ctx, item, "Recording delivery", 80)
	if strings.TrimSpace(item.DocumentID) == "" {
		item.DocumentID = uuid.NewString()
	}
	item.DocumentPath = path

	item.SetProgressComplete("Delivered", fmt.Sprintf("Delivered: %s", filepath.Base(path)))
	logger.Info(
		"document delivery completed",
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String("document_id", item.DocumentID),
		logging.String("document_path", path),
	)

	if d.notifier != nil {
		if err := d.notifier.NotifyDocumentDelivered(ctx, item.Reference, filepath.Base(path)); err != nil {
			logger.Warn("delivery notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the deliverer can write into the output directory.
func (d *Deliverer) HealthCheck(ctx context.Context) stage.Health {
	const name = "deliverer"
	if d.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Paths.OutputDir) == "" {
		return stage.Unhealthy(name, "output directory not configured")
	}
	if d.docs == nil {
		return stage.Unhealthy(name, "document store unavailable")
	}
	return stage.Healthy(name)
}

func (d *Deliverer) documentFilename(item *queue.Item) string {
	base := textutil.SanitizeFileName(item.Reference)
	if base == "" {
		base = fmt.Sprintf("contract-%d", item.ID)
	}
	ext := ".txt"
	if d.cfg != nil {
		if configured := strings.TrimSpace(d.cfg.Generation.TemplateExtension); configured != "" {
			if !strings.HasPrefix(configured, ".") {
				configured = "." + configured
			}
			ext = configured
		}
	}
	return base + ext
}

func (d *Deliverer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, d.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := d.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist deliverer progress", logging.Error(err))
		return
	}
	*item = copy
}
