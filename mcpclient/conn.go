package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/casualjim/hoot/tool"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tidwall/gjson"
)

// ClientName and ClientVersion identify this client during the handshake.
var (
	ClientName    = "hoot"
	ClientVersion = "dev"
)

// Descriptor describes a provider process.
type Descriptor struct {
	Name    string
	Command string
	Args    []string
	Dir     string
	// Env overrides are added on top of the current process environment.
	Env map[string]string
}

var _ tool.Connector = Descriptor{}

// ID returns the provider id.
func (d Descriptor) ID() string { return d.Name }

// Connect spawns the provider process and performs the protocol handshake.
func (d Descriptor) Connect(ctx context.Context) (tool.Connection, error) {
	if strings.TrimSpace(d.Command) == "" {
		return nil, fmt.Errorf("provider %s: empty command", d.Name)
	}

	env := d.environ()
	c, err := client.NewStdioMCPClientWithOptions(d.Command, env, d.Args,
		transport.WithCommandFunc(func(_ context.Context, command string, env []string, args []string) (*exec.Cmd, error) {
			// the process lives as long as the connection, Close terminates it
			cmd := exec.Command(command, args...)
			cmd.Env = env
			cmd.Dir = d.Dir
			return cmd, nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("provider %s: spawn %s: %w", d.Name, d.Command, err)
	}

	conn, err := handshake(ctx, d.Name, c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return conn, nil
}

func (d Descriptor) environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+d.Env[k])
	}
	return env
}

// InProcess returns a connector for an mcp-go server running in this process.
func InProcess(id string, srv *server.MCPServer) tool.Connector {
	return inProcess{id: id, srv: srv}
}

type inProcess struct {
	id  string
	srv *server.MCPServer
}

func (p inProcess) ID() string { return p.id }

func (p inProcess) Connect(ctx context.Context) (tool.Connection, error) {
	c, err := client.NewInProcessClient(p.srv)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.id, err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("provider %s: start: %w", p.id, err)
	}
	conn, err := handshake(ctx, p.id, c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return conn, nil
}

func handshake(ctx context.Context, id string, c *client.Client) (*Conn, error) {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    ClientName,
		Version: ClientVersion,
	}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provider %s: initialize: %w", id, err)
	}

	logger := slog.Default().With(slogx.Provider(id))
	logger.DebugContext(ctx, "connected to provider",
		slog.String("server", res.ServerInfo.Name),
		slog.String("server_version", res.ServerInfo.Version),
		slog.String("protocol", res.ProtocolVersion),
	)
	return &Conn{id: id, client: c, logger: logger}, nil
}

// Conn is a live connection to an MCP provider.
type Conn struct {
	id     string
	client *client.Client
	logger *slog.Logger
}

var _ tool.Connection = (*Conn)(nil)

// ID returns the provider id.
func (c *Conn) ID() string { return c.id }

// Discover lists the provider's capabilities.
func (c *Conn) Discover(ctx context.Context) ([]tool.Spec, error) {
	res, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("provider %s: list tools: %w", c.id, err)
	}

	specs := make([]tool.Spec, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := inputSchema(t)
		if err != nil {
			return nil, fmt.Errorf("provider %s: tool %s: %w", c.id, t.Name, err)
		}
		specs = append(specs, tool.Spec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}
	return specs, nil
}

// inputSchema extracts the advertised schema through the tool's wire form, which covers both
// structured and raw schemas.
func inputSchema(t mcp.Tool) (*jsonschema.Schema, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	raw := gjson.GetBytes(b, "inputSchema")
	if !raw.Exists() || raw.Type == gjson.Null {
		return &jsonschema.Schema{Type: "object"}, nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(raw.Raw), &schema); err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return &schema, nil
}

// Invoke calls a capability. Results flagged as errors by the provider are returned as content,
// the model gets to see what went wrong.
func (c *Conn) Invoke(ctx context.Context, name string, arguments map[string]any) (tool.Result, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if arguments == nil {
		arguments = map[string]any{}
	}
	req.Params.Arguments = arguments

	res, err := c.client.CallTool(ctx, req)
	if err != nil {
		return tool.Result{}, fmt.Errorf("provider %s: call %s: %w", c.id, name, err)
	}

	result := tool.Result{IsError: res.IsError}
	for _, content := range res.Content {
		result.Content = append(result.Content, contentText(content))
	}
	if res.IsError {
		c.logger.WarnContext(ctx, "provider reported a failed call",
			slogx.Capability(name),
			slog.String("output", result.Text()),
		)
	}
	return result, nil
}

func contentText(content mcp.Content) string {
	if text, ok := mcp.AsTextContent(content); ok {
		return text.Text
	}
	if img, ok := mcp.AsImageContent(content); ok {
		return fmt.Sprintf("[%s image omitted]", img.MIMEType)
	}
	b, err := json.Marshal(content)
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(b)
}

// Close terminates the connection and, for spawned providers, the process.
func (c *Conn) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("provider %s: close: %w", c.id, err)
	}
	return nil
}
