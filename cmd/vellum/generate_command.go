package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"vellum/internal/api"
	"vellum/internal/logging"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate <request.json>",
		Short: "Generate a contract document from a request file",
		Long: `Generate a contract document by running the full pipeline inline.
The request is validated and queued, then prepared, rendered, and delivered
without requiring the daemon. Stage progress is logged to stdout as it runs.

Examples:
  vellum generate request.json                  # Deliver to the configured output directory
  vellum generate request.json --output ./out   # Deliver to a specific directory`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}

			requestPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			if !ctx.JSONMode() {
				fmt.Fprintf(cmd.OutOrStdout(), "📝 Generating contract from %s\n\n", filepath.Base(requestPath))
			}

			result, genErr := api.GenerateContract(cmd.Context(), api.GenerateContractRequest{
				Config:      cfg,
				Logger:      logger,
				RequestPath: requestPath,
				OutputDir:   outputDir,
			})
			if genErr != nil && result.Item == nil {
				return genErr
			}

			assessment := api.AssessGeneration(result.Item)
			if ctx.JSONMode() {
				return writeJSON(cmd, generationReport(assessment))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n📊 Generation Results:\n")
			fmt.Fprintf(out, "  Entity: %s\n", assessment.EntityName)
			fmt.Fprintf(out, "  Template: %s\n", assessment.TemplateID)
			if assessment.Reference != "" {
				fmt.Fprintf(out, "  Reference: %s\n", assessment.Reference)
			}
			if assessment.DocumentPath != "" {
				fmt.Fprintf(out, "  Document: %s\n", assessment.DocumentPath)
			}
			if assessment.ReviewRequired {
				fmt.Fprintf(out, "  Review Required: ⚠️  Yes - %s\n", assessment.ReviewReason)
			} else {
				fmt.Fprintf(out, "  Review Required: ✅ No\n")
			}
			fmt.Fprintf(out, "\n%s\n", assessment.OutcomeMessage)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Write the document to this directory instead of the configured output directory")
	return cmd
}

func generationReport(a api.GenerationAssessment) map[string]any {
	report := map[string]any{
		"outcome":   a.Outcome,
		"entity":    a.EntityName,
		"template":  a.TemplateID,
		"reference": a.Reference,
	}
	if a.DocumentPath != "" {
		report["document"] = a.DocumentPath
	}
	if a.ReviewRequired {
		report["review_required"] = true
		report["review_reason"] = a.ReviewReason
	}
	return report
}
