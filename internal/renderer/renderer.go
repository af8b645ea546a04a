package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"log/slog"

	"vellum/internal/config"
	"vellum/internal/generation"
	"vellum/internal/logging"
	"vellum/internal/notifications"
	"vellum/internal/queue"
	"vellum/internal/services"
	"vellum/internal/stage"
)

// Renderer runs the generation engine over the snapshots the preparer took
// and persists the rendered document, the resolved value map, and the
// expanded commission schedule.
type Renderer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	engine   *generation.Generator
	notifier notifications.Service
}

// NewRenderer constructs the renderer stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	return NewRendererWithDependencies(cfg, store, logger, nil, notifications.NewService(cfg))
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
// A nil engine gets a generator on the system clock.
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine *generation.Generator, notifier notifications.Service) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "renderer"))
	}
	if engine == nil {
		engine = generation.New(stageLogger)
	}
	return &Renderer{store: store, cfg: cfg, logger: stageLogger, engine: engine, notifier: notifier}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Preparing document render"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting document render",
		logging.String(logging.FieldContractRef, item.Reference),
		logging.String(logging.FieldTemplateID, strings.TrimSpace(item.TemplateID)),
	)
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	if strings.TrimSpace(item.TemplateText) == "" {
		return services.Wrap(
			services.ErrValidation,
			"rendering",
			"validate inputs",
			"No template snapshot present; run preparation before rendering",
			nil,
		)
	}
	request, err := stage.ParseRequestSnapshot(item.RequestJSON)
	if err != nil {
		return err
	}

	if r.notifier != nil {
		if err := r.notifier.NotifyGenerationStarted(ctx, item.Reference); err != nil {
			logger.Warn("generation start notification failed", logging.Error(err))
		}
	}

	r.updateProgress(ctx, item, "Rendering document", 25)
	result, err := r.engine.Generate(request, item.TemplateText)
	if err != nil {
		return services.Wrap(
			services.ErrValidation,
			"rendering",
			"run engine",
			fmt.Sprintf("Contract could not be rendered: %v", err),
			err,
		)
	}

	if len(result.Unresolved) > 0 {
		if r.cfg != nil && r.cfg.Generation.StrictPlaceholders {
			return services.Wrap(
				services.ErrValidation,
				"rendering",
				"resolve placeholders",
				fmt.Sprintf("Unresolved placeholders: %s", strings.Join(result.Unresolved, ", ")),
				nil,
			)
		}
		logger.Warn(
			"document rendered with unresolved placeholders",
			logging.Int("unresolved", len(result.Unresolved)),
			logging.String("placeholders", strings.Join(result.Unresolved, ", ")),
			logging.Alert("unresolved_placeholders"),
		)
	}

	r.updateProgress(ctx, item, "Persisting render artifacts", 75)
	valuesJSON, err := json.Marshal(result.Values)
	if err != nil {
		return services.Wrap(services.ErrTransient, "rendering", "encode values", "Failed to encode resolved values", err)
	}
	item.RenderedText = result.Text
	item.ValuesJSON = string(valuesJSON)
	if err := r.store.ReplaceShares(ctx, item.ID, result.Shares); err != nil {
		return services.Wrap(services.ErrTransient, "rendering", "persist shares", "Failed to persist commission schedule", err)
	}

	item.SetProgressComplete("Rendered", fmt.Sprintf("Document rendered (%d values, %d shares)", result.Values.Len(), len(result.Shares)))
	logger.Info(
		"document render completed",
		logging.String(logging.FieldContractRef, item.Reference),
		logging.Int("rendered_bytes", len(result.Text)),
		logging.Int("values", result.Values.Len()),
		logging.Int("shares", len(result.Shares)),
		logging.Int("unresolved", len(result.Unresolved)),
	)
	return nil
}

// HealthCheck verifies the renderer has an engine to run.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "renderer"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if r.engine == nil {
		return stage.Unhealthy(name, "generation engine unavailable")
	}
	return stage.Healthy(name)
}

func (r *Renderer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, r.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := r.store.UpdateProgress(ctx, &copy); err != nil {
		logger.Warn("failed to persist renderer progress", logging.Error(err))
		return
	}
	*item = copy
}
