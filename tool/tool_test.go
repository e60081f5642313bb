package tool

import (
	"context"
	"reflect"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestMust(t *testing.T) {
	testFunc := func() {}

	t.Run("valid function", func(t *testing.T) {
		assert.NotPanics(t, func() {
			def := Must(testFunc)
			assert.Equal(t, reflect.ValueOf(testFunc).Pointer(), reflect.ValueOf(def.Function).Pointer())
		})
	})

	t.Run("invalid function", func(t *testing.T) {
		assert.Panics(t, func() {
			Must("not a function")
		})
	})
}

func TestNew_Options(t *testing.T) {
	def, err := New(func(a, b int) int { return a + b },
		Name("add"),
		Description("Adds two integers"),
		Parameters("a", "b"),
	)
	require.NoError(t, err)

	assert.Equal(t, "add", def.Name)
	assert.Equal(t, "Adds two integers", def.Description)
	assert.Equal(t, map[string]string{"param0": "a", "param1": "b"}, def.Parameters)
}

func namedForTest() string { return "" }

func TestNew_DefaultName(t *testing.T) {
	def, err := New(namedForTest)
	require.NoError(t, err)
	assert.Equal(t, "namedForTest", def.Name)
}

func TestDefinition_Spec(t *testing.T) {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("value1", &jsonschema.Schema{Type: "string"})

	tests := []struct {
		name       string
		tool       Definition
		wantSchema *jsonschema.Schema
	}{
		{
			name: "named parameter",
			tool: Definition{
				Name:        "echo",
				Description: "Echoes",
				Parameters:  map[string]string{"param0": "value1"},
				Function:    func(s string) string { return s },
			},
			wantSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: props,
				Required:   []string{"value1"},
			},
		},
		{
			name: "context parameter is skipped",
			tool: Definition{
				Name:       "echo",
				Parameters: map[string]string{"param0": "value1"},
				Function:   func(_ context.Context, s string) string { return s },
			},
			wantSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: props,
				Required:   []string{"value1"},
			},
		},
		{
			name: "no parameters",
			tool: Definition{
				Name:     "noop",
				Function: func() {},
			},
			wantSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: orderedmap.New[string, *jsonschema.Schema](),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.tool.Spec()
			assert.Equal(t, tt.tool.Name, spec.Name)
			assert.Equal(t, tt.tool.Description, spec.Description)
			assert.Equal(t, tt.wantSchema, spec.InputSchema)
		})
	}
}

func TestSpec_SchemaMap(t *testing.T) {
	t.Run("nil schema", func(t *testing.T) {
		m, err := Spec{Name: "x"}.SchemaMap()
		require.NoError(t, err)
		assert.Equal(t, "object", m["type"])
		assert.Equal(t, map[string]any{}, m["properties"])
	})

	t.Run("reflected schema", func(t *testing.T) {
		spec := Must(func(a, b int) int { return a + b }, Name("add"), Parameters("a", "b")).Spec()
		m, err := spec.SchemaMap()
		require.NoError(t, err)

		assert.Equal(t, "object", m["type"])
		props, ok := m["properties"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, props, "a")
		assert.Contains(t, props, "b")
		assert.Equal(t, []any{"a", "b"}, m["required"])
	})
}

func TestResult_Text(t *testing.T) {
	assert.Equal(t, "", Result{}.Text())
	assert.Equal(t, "a\nb", Result{Content: []string{"a", "b"}}.Text())
}
