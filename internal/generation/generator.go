package generation

import (
	"log/slog"

	"vellum/internal/commission"
	"vellum/internal/contract"
	"vellum/internal/logging"
	"vellum/internal/placeholder"
	"vellum/internal/template"
)

// Generator runs the rendering pipeline over a request and template text.
type Generator struct {
	logger *slog.Logger
	clock  Clock
}

// Result carries everything one generation run produced: the rendered
// document, the fully resolved value map, the expanded share records, and
// any tokens that stayed unresolved.
type Result struct {
	Text       string
	Values     *placeholder.Values
	Shares     []contract.Share
	Unresolved []string
}

// New returns a generator on the system clock.
func New(logger *slog.Logger) *Generator {
	return NewWithClock(logger, SystemClock())
}

// NewWithClock returns a generator with an explicit clock.
func NewWithClock(logger *slog.Logger, clock Clock) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Generator{logger: logger, clock: clock}
}

// Generate renders templateText for the request. The stages run in a
// fixed order: base values, commission analysis, schedule expansion,
// conditional regions, special tokens, substitution. Later additions win
// on key collisions, and inserted values are never re-expanded, so the
// same request, template, and clock produce byte-identical output.
func (g *Generator) Generate(request *Request, templateText string) (*Result, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	values := placeholder.New()
	values.Merge(request.Entity.Placeholders())
	values.Merge(request.Terms.Placeholders())
	values.Merge(request.CommissionStructure.Placeholders())
	values.Merge(placeholder.FromMap(request.Overrides))

	values.Merge(commission.Analyze(request.CommissionByYear, request.EnabledCategories()))

	var shares []contract.Share
	if !request.CommissionStructure.IsZero() {
		expanded, err := commission.Expand(request.CommissionStructure, request.Terms.DurationYears, request.Terms.StartDate)
		if err != nil {
			return nil, err
		}
		shares = expanded
		for _, share := range shares {
			values.Merge(share.Placeholders(request.Terms.StartDate))
		}
	}

	text := template.ProcessConditionals(templateText, values, g.logger)
	template.ResolveSpecials(text, values, g.clock.Today(), g.logger)
	text, unresolved := template.Substitute(text, values, g.logger)

	if len(unresolved) > 0 {
		g.logger.Debug("generation finished with unresolved placeholders",
			logging.Int("unresolved", len(unresolved)))
	}

	return &Result{
		Text:       text,
		Values:     values,
		Shares:     shares,
		Unresolved: unresolved,
	}, nil
}
