package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/casualjim/hoot"
	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/events/natshook"
	"github.com/casualjim/hoot/internal/config"
	"github.com/casualjim/hoot/mcpclient"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/provider/anthropic"
	"github.com/casualjim/hoot/provider/openai"
	"github.com/casualjim/hoot/provider/scripted"
	"github.com/casualjim/hoot/tool"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestCompletionProvider(t *testing.T) {
	cfg := config.Default()

	p, err := completionProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &anthropic.Provider{}, p)

	cfg.Backend = config.BackendOpenAI
	cfg.APIKey = "sk-test"
	p, err = completionProvider(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openai.Provider{}, p)

	cfg.Backend = "llama"
	_, err = completionProvider(cfg)
	require.Error(t, err)
}

func TestConnectors(t *testing.T) {
	cfg := config.Default()
	cfg.Providers = []config.Provider{{ID: "math", Command: "mathserver", Env: map[string]string{"A": "1"}}}

	conns := connectors(cfg, false)
	require.Len(t, conns, 1)
	desc, ok := conns[0].(mcpclient.Descriptor)
	require.True(t, ok)
	assert.Equal(t, "math", desc.ID())
	assert.Equal(t, "mathserver", desc.Command)

	conns = connectors(cfg, true)
	require.Len(t, conns, 2)
	assert.Equal(t, "builtin", conns[1].ID())

	specs, err := builtinTools().Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "current_time", specs[0].Name)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hoot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: openai\nmodel: gpt-4o\n"), 0o600))

	opts := rootOptions{configFile: path, model: "gpt-4o-mini", maxDepth: 3}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendOpenAI, cfg.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 3, cfg.MaxDepth)

	opts = rootOptions{configFile: path, backend: "llama"}
	_, err = opts.loadConfig()
	require.ErrorContains(t, err, "invalid configuration")
}

func TestNewOrchestrator(t *testing.T) {
	cfg := config.Default()
	o, cleanup, err := newOrchestrator(cfg, true)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()
	specs := o.Capabilities()
	require.Len(t, specs, 1)
	assert.Equal(t, "current_time", specs[0].Name)
}

var echo = tool.Must(func(text string) string { return text },
	tool.Name("echo"),
	tool.Description("Echoes the text back"),
	tool.Parameters("text"),
)

func TestREPL(t *testing.T) {
	var out bytes.Buffer
	console, err := newConsoleHook(&out, true)
	require.NoError(t, err)

	model := scripted.New(
		scripted.ToolUse("Let me check.", "echo", `{"text": "pong"}`),
		scripted.Text("It said ", "pong."),
		scripted.ToolUse("", "teleport", `{}`),
	)
	o, err := hoot.New(
		hoot.WithCompletion(model),
		hoot.WithConnectors(tool.NewLocal("local", echo)),
		hoot.WithHooks(console),
	)
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	in := strings.NewReader(strings.Join([]string{
		"/tools",
		"ping please",
		"",
		"beam me up",
		"/history",
		"/reset",
		"/history",
		"exit",
		"never read",
	}, "\n"))
	require.NoError(t, repl(context.Background(), o, in, &out))

	text := out.String()
	assert.Contains(t, text, "echo  Echoes the text back")
	assert.Contains(t, text, "Assistant: Let me check.")
	assert.Contains(t, text, `echo{"text"="pong"}`)
	assert.Contains(t, text, "echo: pong")
	assert.Contains(t, text, "Assistant: It said pong.")
	assert.Contains(t, text, "teleport")
	assert.Contains(t, text, "Conversation cleared.")
	assert.Contains(t, text, "Tool result returned for [echo]: pong")
	assert.Equal(t, 3, model.Calls())
	assert.Empty(t, o.History())
}

func TestREPL_EndOfInput(t *testing.T) {
	o, err := hoot.New(hoot.WithCompletion(scripted.New()))
	require.NoError(t, err)
	require.NoError(t, o.Start(context.Background()))
	defer o.Stop()

	var out bytes.Buffer
	require.NoError(t, repl(context.Background(), o, strings.NewReader("/tools\n"), &out))
	assert.Contains(t, out.String(), "No tools available.")
	assert.Contains(t, out.String(), "Exiting...")
}

func TestConsoleHook_Markdown(t *testing.T) {
	var out bytes.Buffer
	console, err := newConsoleHook(&out, false)
	require.NoError(t, err)

	ctx := context.Background()
	console.OnStreamEvent(ctx, events.TextFragment{Text: "ignored while rendering"})
	console.OnAssistantMessage(ctx, messages.Assistant("The answer is **5**"))
	console.OnAssistantMessage(ctx, messages.Apology("Sorry, that failed."))

	text := out.String()
	assert.NotContains(t, text, "ignored while rendering")
	assert.Contains(t, text, "Assistant: ")
	assert.Contains(t, text, "answer")
	assert.Contains(t, text, "Sorry, that failed.")
}

func TestPrintObservation(t *testing.T) {
	runID := uuid.MustParse("0191b8a2-6a8e-7c3e-9d1f-2b3c4d5e6f70")
	data, err := events.EncodeToolCall(runID, tool.Call{Name: "add", Raw: `{"a":2}`})
	require.NoError(t, err)

	var out bytes.Buffer
	printObservation(&out, natshook.Observation{Type: events.TypeToolCall, RunID: runID, Data: data})
	assert.Equal(t, "0191b8a2 add{\"a\":2}\n", out.String())
}
