package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/casualjim/hoot"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/tool"
	"github.com/fatih/color"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Besides queries the prompt understands:

  /history  print the conversation
  /tools    list the available tools
  /reset    forget the conversation
  exit      leave the session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			console, err := newConsoleHook(cmd.OutOrStdout(), true)
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
			return repl(ctx, o, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// session is the part of the orchestrator the prompt drives.
type session interface {
	ProcessQuery(context.Context, string) ([]messages.Message, error)
	History() []messages.Message
	Capabilities() []tool.Spec
	Reset()
}

var _ session = (*hoot.Orchestrator)(nil)

func repl(ctx context.Context, s session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanLines)

	for {
		fmt.Fprintf(out, "%s: ", color.CyanString("User"))
		if !scanner.Scan() {
			fmt.Fprintln(out, "Exiting...")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case strings.EqualFold(input, "exit"), strings.EqualFold(input, "quit"):
			return nil
		case input == "/history":
			printer := pp.New()
			printer.SetOutput(out)
			printer.SetColoringEnabled(false)
			printer.Println(s.History())
			continue
		case input == "/tools":
			printTools(out, s.Capabilities())
			continue
		case input == "/reset":
			s.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		if _, err := s.ProcessQuery(ctx, input); err != nil {
			var te *hoot.TurnError
			if !errors.As(err, &te) {
				return err
			}
			// the apology is already on screen, keep the session going
			if errors.Is(err, context.Canceled) {
				return nil
			}
		}
		fmt.Fprintln(out)
	}
}

func printTools(out io.Writer, specs []tool.Spec) {
	if len(specs) == 0 {
		fmt.Fprintln(out, "No tools available.")
		return
	}
	for _, spec := range specs {
		fmt.Fprintf(out, "%s  %s\n", color.YellowString(spec.Name), spec.Description)
	}
}
