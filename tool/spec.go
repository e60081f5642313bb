package tool

import (
	"context"
	"strings"

	"github.com/casualjim/hoot/pkg/jsonx"
	"github.com/invopop/jsonschema"
)

// Spec is the advertised description of a single capability.
type Spec struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// SchemaMap renders the input schema as a generic JSON object, which is the form the
// completion APIs accept. A missing schema yields an empty object schema.
func (s Spec) SchemaMap() (map[string]any, error) {
	if s.InputSchema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	result, err := jsonx.ToMap(s.InputSchema)
	if err != nil {
		return nil, err
	}
	if _, ok := result["type"]; !ok {
		result["type"] = "object"
	}
	if _, ok := result["properties"]; !ok {
		result["properties"] = map[string]any{}
	}
	return result, nil
}

// Call is a capability invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments map[string]any
	// Raw is the argument payload exactly as it was streamed.
	Raw string
}

// Result is what a provider returned for a call.
type Result struct {
	Content []string
	IsError bool
}

// Text joins the text segments of the result.
func (r Result) Text() string {
	return strings.Join(r.Content, "\n")
}

// Connection is a live handle to a capability provider.
type Connection interface {
	Discover(context.Context) ([]Spec, error)
	Invoke(ctx context.Context, name string, arguments map[string]any) (Result, error)
	Close() error
}

// Connector opens a connection to one provider.
type Connector interface {
	ID() string
	Connect(context.Context) (Connection, error)
}
