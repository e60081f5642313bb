package main

import (
	"log/slog"
	"strings"

	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/spf13/cobra"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	var stream bool
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a single query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			console, err := newConsoleHook(cmd.OutOrStdout(), stream)
			if err != nil {
				return err
			}
			o, cleanup, err := newOrchestrator(cfg, root.builtin, console)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if err := o.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := o.Stop(); err != nil {
					slog.Warn("failed to stop providers", slogx.Error(err))
				}
			}()

			_, err = o.ProcessQuery(ctx, strings.Join(args, " "))
			return err
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "print text as it arrives instead of rendering markdown")
	return cmd
}
