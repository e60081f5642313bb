package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/casualjim/hoot/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "hoot.yaml"

type rootOptions struct {
	configFile string
	verbose    bool
	backend    string
	model      string
	maxDepth   int
	builtin    bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	cmd := &cobra.Command{
		Use:          "hoot",
		Short:        "Chat with a language model that can call tools from MCP servers",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(opts.verbose)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (default ./"+defaultConfigFile+" when present)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.backend, "backend", "", "completion backend, anthropic or openai")
	flags.StringVarP(&opts.model, "model", "m", "", "model name")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "maximum tool calls per query")
	flags.BoolVar(&opts.builtin, "builtin", false, "also serve the built-in tools")

	cmd.AddCommand(
		newChatCmd(&opts),
		newAskCmd(&opts),
		newToolsCmd(&opts),
		newWatchCmd(&opts),
	)
	return cmd
}

// loadConfig reads the configuration file and applies the command line overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.configFile != "":
		cfg, err = config.Load(o.configFile)
	case fileExists(defaultConfigFile):
		cfg, err = config.Load(defaultConfigFile)
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.model != "" {
		cfg.Model = o.model
	}
	if o.maxDepth > 0 {
		cfg.MaxDepth = o.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
