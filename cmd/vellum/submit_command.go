package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vellum/internal/api"
	"vellum/internal/notifications"
	"vellum/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <request.json>",
		Short: "Queue a contract request for generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			payload, err := os.ReadFile(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("request file does not exist: %s", absPath)
				}
				return fmt.Errorf("read request file: %w", err)
			}

			if client, dialErr := ctx.dialClient(); dialErr == nil {
				defer client.Close()
				resp, err := client.Submit(payload)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				return printSubmitOutcome(cmd, ctx, resp.Item.ID, resp.Item.Reference, resp.Item.Status, absPath)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := api.SubmitContract(cmd.Context(), api.SubmitContractRequest{
				Config:   cfg,
				Store:    store,
				Notifier: notifications.NewService(cfg),
				Payload:  payload,
			})
			if err != nil {
				return err
			}
			return printSubmitOutcome(cmd, ctx, result.Item.ID, result.Item.Reference, string(result.Item.Status), absPath)
		},
	}
}

func printSubmitOutcome(cmd *cobra.Command, ctx *commandContext, id int64, reference, status, requestPath string) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, api.SubmitResponse{ID: id, Reference: reference, Status: status})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Queued contract %s as item #%d (%s)\n", reference, id, filepath.Base(requestPath))
	return nil
}
