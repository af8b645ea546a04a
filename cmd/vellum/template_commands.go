package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vellum/internal/docstore"
	"vellum/internal/template"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect contract templates",
	}

	templateCmd.AddCommand(newTemplateListCommand(ctx))
	templateCmd.AddCommand(newTemplateCheckCommand(ctx))

	return templateCmd
}

func newTemplateListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := docstore.NewFilesystem(cfg)
			templates, err := store.Templates(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				type jsonTemplate struct {
					ID       string `json:"id"`
					Path     string `json:"path"`
					Size     int64  `json:"size"`
					Modified string `json:"modified"`
				}
				items := make([]jsonTemplate, 0, len(templates))
				for _, tpl := range templates {
					items = append(items, jsonTemplate{
						ID:       tpl.ID,
						Path:     tpl.Path,
						Size:     tpl.Size,
						Modified: tpl.Modified.UTC().Format(time.RFC3339),
					})
				}
				return writeJSON(cmd, map[string]any{"templates": items})
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found")
				return nil
			}
			rows := make([][]string, 0, len(templates))
			for _, tpl := range templates {
				rows = append(rows, []string{
					tpl.ID,
					fmt.Sprintf("%d", tpl.Size),
					tpl.Modified.UTC().Format("2006-01-02 15:04"),
				})
			}
			table := renderTable([]string{"ID", "Bytes", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func newTemplateCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <templateID>",
		Short: "Inventory the placeholders and blocks a template uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := docstore.NewFilesystem(cfg)
			text, err := store.ReadTemplate(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, docstore.ErrTemplateNotFound) {
					return fmt.Errorf("template %q not found in %s", args[0], cfg.Paths.TemplatesDir)
				}
				return err
			}

			inv := template.Scan(text)
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"template":     args[0],
					"placeholders": inv.Placeholders,
					"blocks":       inv.Blocks,
					"gender":       inv.Gender,
					"phrases":      inv.Phrases,
					"uses_dates":   inv.UsesDates,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Template %s\n", args[0])
			printTokenList(out, "Placeholders", inv.Placeholders)
			printTokenList(out, "Blocks", inv.Blocks)
			printTokenList(out, "Gender tokens", inv.Gender)
			printTokenList(out, "Phrases", inv.Phrases)
			fmt.Fprintf(out, "  %-14s %s\n", "Uses dates:", yesNo(inv.UsesDates))
			return nil
		},
	}
}

func printTokenList(out io.Writer, label string, tokens []string) {
	value := "none"
	if len(tokens) > 0 {
		value = strings.Join(tokens, ", ")
	}
	fmt.Fprintf(out, "  %-14s %s\n", label+":", value)
}
