package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/events/natshook"
	"github.com/casualjim/hoot/pkg/natsx"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var url, subject string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the observations other hoot sessions publish to NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if url == "" || subject == "" {
				cfg, err := root.loadConfig()
				if err != nil {
					return err
				}
				if cfg.NATS != nil {
					url = cmp.Or(url, cfg.NATS.URL)
					subject = cmp.Or(subject, cfg.NATS.Subject)
				}
			}

			nc, err := natsx.Connect(url)
			if err != nil {
				return fmt.Errorf("connect to nats: %w", err)
			}
			defer nc.Close()

			out := cmd.OutOrStdout()
			err = natshook.Subscribe(cmd.Context(), nc, subject, func(obs natshook.Observation) {
				printObservation(out, obs)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "NATS server url")
	cmd.Flags().StringVar(&subject, "subject", "", "subject prefix, "+natshook.DefaultSubject+" by default")
	return cmd
}

func printObservation(out io.Writer, obs natshook.Observation) {
	run := obs.RunID.String()[:8]
	switch obs.Type {
	case "text":
		fmt.Fprintf(out, "%s %s\n", color.HiBlackString(run), gjson.GetBytes(obs.Data, "text").String())
	case events.TypeToolCall:
		fmt.Fprintf(out, "%s %s%s\n", color.HiBlackString(run),
			color.YellowString(gjson.GetBytes(obs.Data, "name").String()),
			gjson.GetBytes(obs.Data, "arguments").Raw)
	case events.TypeToolResult:
		fmt.Fprintf(out, "%s %s: %s\n", color.HiBlackString(run),
			color.YellowString(gjson.GetBytes(obs.Data, "tool").String()),
			gjson.GetBytes(obs.Data, "tool_output").String())
	case events.TypeError:
		fmt.Fprintf(out, "%s %s %s\n", color.HiBlackString(run), color.RedString("error:"), gjson.GetBytes(obs.Data, "error").String())
	default:
		fmt.Fprintf(out, "%s %s %s\n", color.HiBlackString(run), color.CyanString(obs.Type), obs.Data)
	}
}
