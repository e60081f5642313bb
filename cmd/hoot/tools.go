package main

import (
	"log/slog"

	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/spf13/cobra"
)

func newToolsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Start the configured providers and list their tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			o, cleanup, err := newOrchestrator(cfg, root.builtin)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := o.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() {
				if err := o.Stop(); err != nil {
					slog.Warn("failed to stop providers", slogx.Error(err))
				}
			}()

			printTools(cmd.OutOrStdout(), o.Capabilities())
			return nil
		},
	}
}
