// Package clockserver is an MCP provider that tells the time and converts between time zones.
package clockserver

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported during the handshake.
var Version = "dev"

// NewServer creates the clock provider. A nil now uses time.Now.
func NewServer(now func() time.Time) *server.MCPServer {
	if now == nil {
		now = time.Now
	}
	s := server.NewMCPServer(
		"clock",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool("now",
		mcp.WithDescription("Current date and time in RFC 3339 format"),
		mcp.WithString("timezone", mcp.Description("IANA time zone name, defaults to UTC")),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		loc, err := location(stringArg(req, "timezone"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(now().In(loc).Format(time.RFC3339)), nil
	})

	s.AddTool(mcp.NewTool("convert_timezone",
		mcp.WithDescription("Convert an RFC 3339 timestamp to another time zone"),
		mcp.WithString("time", mcp.Required(), mcp.Description("timestamp in RFC 3339 format")),
		mcp.WithString("to", mcp.Required(), mcp.Description("target IANA time zone name")),
	), func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ts, err := time.Parse(time.RFC3339, stringArg(req, "time"))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid time: %v", err)), nil
		}
		to := stringArg(req, "to")
		if to == "" {
			return mcp.NewToolResultError(`missing argument "to"`), nil
		}
		loc, err := location(to)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(ts.In(loc).Format(time.RFC3339)), nil
	})
	return s
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

func location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}
