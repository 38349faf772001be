package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the artifact tables in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			be, closeBackend, err := openBackend(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			if err := be.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("migration complete", "store", a.cfg.Store.Driver)
			return nil
		},
	}
}

func newIngestCmd(a *app) *cobra.Command {
	var sessionID, messageID string

	cmd := &cobra.Command{
		Use:   "ingest FILE",
		Short: "Extract the visualizations of a message file and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			be, closeBackend, err := openBackend(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeBackend()

			if err := be.Migrate(cmd.Context()); err != nil {
				return err
			}
			res, err := be.Ingest(cmd.Context(), sessionID, messageID, string(content))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, art := range res.Artifacts {
				fmt.Fprintf(out, "%s\t%s\t%s\n", art.ID, art.Kind, art.Title)
			}
			for _, e := range res.Errors {
				a.logger.Warn("block skipped", "error", e)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "session %s: %d artifact(s) stored\n", sessionID, len(res.Artifacts))
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (default: a new UUID)")
	cmd.Flags().StringVar(&messageID, "message", "", "Message ID recorded on each artifact")
	return cmd
}
