package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/casualjim/hoot/events"
	"github.com/casualjim/hoot/messages"
	"github.com/casualjim/hoot/tool"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// consoleHook renders a conversation on a terminal. In streaming mode text is written as it
// arrives, otherwise complete assistant messages are rendered as markdown.
type consoleHook struct {
	events.Nop

	mu        sync.Mutex
	w         io.Writer
	streaming bool
	glam      *glamour.TermRenderer
	// open is set while a streamed line is being written
	open bool
}

func newConsoleHook(w io.Writer, streaming bool) (*consoleHook, error) {
	h := &consoleHook{w: w, streaming: streaming}
	if !streaming {
		glam, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			return nil, err
		}
		h.glam = glam
	}
	return h, nil
}

func (c *consoleHook) endLine() {
	if c.open {
		fmt.Fprintln(c.w)
		c.open = false
	}
}

func (c *consoleHook) OnStreamEvent(_ context.Context, ev events.StreamEvent) {
	if !c.streaming {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case events.TextFragment:
		if e.Text == "" {
			return
		}
		if !c.open {
			fmt.Fprint(c.w, color.MagentaString("Assistant")+": ")
			c.open = true
		}
		fmt.Fprint(c.w, e.Text)
	case events.TurnComplete:
		c.endLine()
	}
}

func (c *consoleHook) OnToolCall(_ context.Context, _ uuid.UUID, call tool.Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	args := strings.ReplaceAll(call.Raw, ": ", "=")
	if args == "" {
		args = "{}"
	}
	fmt.Fprintf(c.w, "%s%s\n", color.YellowString(call.Name), args)
}

func (c *consoleHook) OnToolResult(_ context.Context, msg messages.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	fmt.Fprintf(c.w, "%s: %s\n", color.YellowString(msg.Tool), msg.ToolOutput)
}

func (c *consoleHook) OnAssistantMessage(_ context.Context, msg messages.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Kind == messages.KindApology {
		c.endLine()
		fmt.Fprintln(c.w, color.RedString(msg.Content))
		return
	}
	if c.streaming {
		return
	}
	out, err := c.glam.Render(msg.Content)
	if err != nil {
		out = msg.Content + "\n"
	}
	fmt.Fprint(c.w, color.MagentaString("Assistant")+": ")
	fmt.Fprint(c.w, out)
}

func (c *consoleHook) OnError(_ context.Context, err events.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	fmt.Fprintf(c.w, "%s %v\n", color.RedString("Error:"), err.Err)
}
