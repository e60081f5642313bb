package tool

import (
	"context"
	"fmt"
	"reflect"

	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Definition describes a Go function served as a capability.
// It includes the function's name, description, parameter names, and the function itself.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]string
	Function    any
}

var functionReflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

var contextType = reflect.TypeFor[context.Context]()

// Spec builds the advertised capability description from the function signature.
func (td Definition) Spec() Spec {
	return Spec{
		Name:        td.Name,
		Description: td.Description,
		InputSchema: inputSchema(&functionReflector, td),
	}
}

// parameterNames returns the schema property name of every non-context parameter, in order.
func (td Definition) parameterNames() []string {
	typ := reflect.TypeOf(td.Function)
	if typ == nil || typ.Kind() != reflect.Func {
		return nil
	}

	var names []string
	for i, idx := firstArgument(typ), 0; i < typ.NumIn(); i, idx = i+1, idx+1 {
		name := fmt.Sprintf("param%d", idx)
		if p, ok := td.Parameters[name]; ok {
			name = p
		}
		names = append(names, name)
	}
	return names
}

// firstArgument skips a leading context.Context parameter.
func firstArgument(typ reflect.Type) int {
	if typ.NumIn() > 0 && typ.In(0) == contextType {
		return 1
	}
	return 0
}

func inputSchema(reflector *jsonschema.Reflector, f Definition) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](),
	}

	typ := reflect.TypeOf(f.Function)
	if typ == nil || typ.Kind() != reflect.Func {
		return schema
	}

	names := f.parameterNames()
	start := firstArgument(typ)
	for i, name := range names {
		propSchema := reflector.ReflectFromType(typ.In(start + i))
		propSchema.Version = ""
		schema.Properties.Set(name, propSchema)
	}
	if len(names) > 0 {
		schema.Required = names
	}
	return schema
}

// Option is a type alias for a function that modifies
// the configuration of a tool definition.
type Option = opts.Option[Definition]

// Must wraps New and panics when the definition is invalid.
// It is meant for package level tool declarations.
func Must(f any, options ...Option) Definition {
	def, err := New(f, options...)
	if err != nil {
		panic(err)
	}
	return def
}

// New creates a Definition from the provided function and options.
// When no name is configured the function name is used.
func New(f any, options ...Option) (Definition, error) {
	if !isFunction(f) {
		return Definition{}, fmt.Errorf("provided value is not a function")
	}

	var def Definition
	if err := opts.Apply(&def, options); err != nil {
		return Definition{}, err
	}
	if def.Name == "" {
		def.Name = functionName(f)
	}

	def.Function = f
	return def, nil
}

// Name sets the capability name.
var Name = opts.ForName[Definition, string]("Name")

// Description sets the human readable description offered to the model.
var Description = opts.ForName[Definition, string]("Description")

// Parameters names the function parameters in order, skipping a leading context.Context.
// Unnamed parameters are exposed as "paramN".
func Parameters(parameters ...string) opts.Option[Definition] {
	return opts.Type[Definition](func(o *Definition) error {
		o.Parameters = make(map[string]string, len(parameters))
		for i, p := range parameters {
			o.Parameters[fmt.Sprintf("param%d", i)] = p
		}
		return nil
	})
}
