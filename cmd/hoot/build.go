package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/casualjim/hoot"
	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/events/natshook"
	"github.com/casualjim/hoot/internal/config"
	"github.com/casualjim/hoot/mcpclient"
	"github.com/casualjim/hoot/pkg/natsx"
	"github.com/casualjim/hoot/provider"
	"github.com/casualjim/hoot/provider/anthropic"
	"github.com/casualjim/hoot/provider/openai"
	"github.com/casualjim/hoot/tool"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/option"
)

func completionProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Backend {
	case config.BackendAnthropic:
		var options []anthropicopt.RequestOption
		if cfg.APIKey != "" {
			options = append(options, anthropicopt.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			options = append(options, anthropicopt.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(options...), nil
	case config.BackendOpenAI:
		var options []openaiopt.RequestOption
		if cfg.APIKey != "" {
			options = append(options, openaiopt.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			options = append(options, openaiopt.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(options...), nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.Backend)
	}
}

func connectors(cfg *config.Config, builtin bool) []tool.Connector {
	result := make([]tool.Connector, 0, len(cfg.Providers)+1)
	for _, p := range cfg.Providers {
		result = append(result, mcpclient.Descriptor{
			Name:    p.ID,
			Command: p.Command,
			Args:    p.Args,
			Dir:     p.Dir,
			Env:     p.Env,
		})
	}
	if builtin {
		result = append(result, builtinTools())
	}
	return result
}

// Returns the current local time.
func currentTime() time.Time {
	return time.Now()
}

func builtinTools() *tool.Local {
	return tool.NewLocal("builtin",
		tool.Must(currentTime,
			tool.Name("current_time"),
			tool.Description("Returns the current local time in RFC 3339 format"),
		),
	)
}

// newOrchestrator wires an orchestrator from the configuration. The returned cleanup releases
// whatever the hooks hold, it does not stop the orchestrator.
func newOrchestrator(cfg *config.Config, builtin bool, hooks ...events.Hook) (*hoot.Orchestrator, func(), error) {
	completion, err := completionProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	hooks = append(hooks, events.Logging(slog.Default()))
	if cfg.NATS != nil {
		nc, err := natsx.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to nats: %w", err)
		}
		cleanup = nc.Close
		hooks = append(hooks, natshook.New(nc, cfg.NATS.Subject))
	}

	options := []hoot.Option{
		hoot.WithCompletion(completion),
		hoot.WithModel(cfg.Model),
		hoot.WithMaxTokens(cfg.MaxTokens),
		hoot.WithInstructions(cfg.Instructions),
		hoot.WithMaxDepth(cfg.MaxDepth),
		hoot.WithRetryPolicy(cfg.Retry.Policy()),
		hoot.WithHooks(hooks...),
	}
	if conns := connectors(cfg, builtin); len(conns) > 0 {
		options = append(options, hoot.WithConnectors(conns[0], conns[1:]...))
	}

	o, err := hoot.New(options...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return o, cleanup, nil
}
