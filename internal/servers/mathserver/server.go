// Package mathserver is a small MCP provider exposing arithmetic capabilities.
package mathserver

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is reported during the handshake.
var Version = "dev"

// NewServer creates the math provider with add, subtract, multiply and divide.
func NewServer() *server.MCPServer {
	s := server.NewMCPServer(
		"math",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(binary("add", "Add two numbers and return the sum"), handle(func(a, b float64) (float64, error) {
		return a + b, nil
	}))
	s.AddTool(binary("subtract", "Subtract b from a and return the difference"), handle(func(a, b float64) (float64, error) {
		return a - b, nil
	}))
	s.AddTool(binary("multiply", "Multiply two numbers and return the product"), handle(func(a, b float64) (float64, error) {
		return a * b, nil
	}))
	s.AddTool(binary("divide", "Divide a by b and return the quotient"), handle(func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	}))
	return s
}

func binary(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("the first operand")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("the second operand")),
	)
}

func handle(op func(a, b float64) (float64, error)) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		a, err := number(args, "a")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := number(args, "b")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := op(a, b)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(Format(result)), nil
	}
}

func number(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q is not a number: %q", key, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q is not a number: %v", key, v)
	}
}

// Format renders a result without a trailing fraction for whole numbers.
func Format(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
