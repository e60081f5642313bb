package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/casualjim/hoot/pkg/slogx"
	"github.com/goccy/go-json"
)

// ErrUnknownTool is returned when a Local connection is asked to run a function it does not hold.
var ErrUnknownTool = errors.New("unknown tool")

var (
	_ Connection = (*Local)(nil)
	_ Connector  = (*Local)(nil)
)

// Local serves Go function definitions as an in-process capability provider.
// It is its own Connector, connecting returns the same value.
type Local struct {
	id    string
	defs  []Definition
	index map[string]int
}

// NewLocal creates an in-process provider with the given id and functions.
// Later definitions with a name already taken are ignored.
func NewLocal(id string, defs ...Definition) *Local {
	l := &Local{id: id, index: make(map[string]int, len(defs))}
	for _, def := range defs {
		if _, exists := l.index[def.Name]; exists {
			slog.Warn("ignoring duplicate local tool", slogx.Provider(id), slogx.Capability(def.Name))
			continue
		}
		l.index[def.Name] = len(l.defs)
		l.defs = append(l.defs, def)
	}
	return l
}

func (l *Local) ID() string {
	return l.id
}

func (l *Local) Connect(context.Context) (Connection, error) {
	return l, nil
}

// Discover returns the specs of all functions, in declaration order.
func (l *Local) Discover(context.Context) ([]Spec, error) {
	specs := make([]Spec, len(l.defs))
	for i, def := range l.defs {
		specs[i] = def.Spec()
	}
	return specs, nil
}

// Invoke calls the named function with the decoded arguments.
func (l *Local) Invoke(ctx context.Context, name string, arguments map[string]any) (res Result, err error) {
	idx, ok := l.index[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	def := l.defs[idx]

	if arguments == nil {
		arguments = map[string]any{}
	}
	raw, err := json.Marshal(arguments)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode arguments for %s: %w", name, err)
	}

	args, err := bindArguments(ctx, def, string(raw))
	if err != nil {
		return Result{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()

	out, err := callFunction(def.Function, args)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: []string{out}}, nil
}

func (l *Local) Close() error {
	return nil
}
