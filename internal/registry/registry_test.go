package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/casualjim/hoot/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mock.Mock
}

func (m *mockConn) Discover(ctx context.Context) ([]tool.Spec, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tool.Spec), args.Error(1)
}

func (m *mockConn) Invoke(ctx context.Context, name string, arguments map[string]any) (tool.Result, error) {
	args := m.Called(ctx, name, arguments)
	return args.Get(0).(tool.Result), args.Error(1)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}

func specs(names ...string) []tool.Spec {
	out := make([]tool.Spec, len(names))
	for i, n := range names {
		out[i] = tool.Spec{Name: n, Description: n + " capability"}
	}
	return out
}

func TestRegistry_Routing(t *testing.T) {
	p1, p2 := &mockConn{}, &mockConn{}
	r := New()
	require.NoError(t, r.Register(Binding{ID: "P1", Conn: p1, Capabilities: specs("x")}))
	require.NoError(t, r.Register(Binding{ID: "P2", Conn: p2, Capabilities: specs("y")}))

	b, err := r.Resolve("y")
	require.NoError(t, err)
	assert.Equal(t, "P2", b.ID)
	assert.Same(t, p2, b.Conn)

	b, err = r.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, "P1", b.ID)

	_, err = r.Resolve("z")
	require.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "z")
}

func TestRegistry_AllCapabilitiesOrder(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Binding{ID: "math", Capabilities: specs("add", "subtract")}))
	require.NoError(t, r.Register(Binding{ID: "clock", Capabilities: specs("now")}))
	require.NoError(t, r.Register(Binding{ID: "empty"}))

	var names []string
	for _, s := range r.AllCapabilities() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"add", "subtract", "now"}, names)
	assert.Equal(t, 3, r.Len())

	ids := make([]string, 0)
	for _, b := range r.Bindings() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"math", "clock", "empty"}, ids)
}

func TestRegistry_Duplicates(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Binding{ID: "P1", Capabilities: specs("x")}))

	t.Run("capability across providers", func(t *testing.T) {
		err := r.Register(Binding{ID: "P2", Capabilities: specs("y", "x")})
		require.ErrorIs(t, err, ErrDuplicateCapability)
		assert.ErrorContains(t, err, "P1")
		assert.ErrorContains(t, err, "P2")

		// nothing of P2 was registered
		_, err = r.Resolve("y")
		require.ErrorIs(t, err, ErrNotFound)
		_, ok := r.Provider("P2")
		assert.False(t, ok)
	})

	t.Run("capability within a provider", func(t *testing.T) {
		err := r.Register(Binding{ID: "P3", Capabilities: specs("z", "z")})
		require.ErrorIs(t, err, ErrDuplicateCapability)
		_, err = r.Resolve("z")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("provider id", func(t *testing.T) {
		err := r.Register(Binding{ID: "P1", Capabilities: specs("w")})
		require.ErrorIs(t, err, ErrDuplicateProvider)
	})

	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.AllCapabilities(), 1)
}

func TestRegistry_RegisterCopiesCapabilities(t *testing.T) {
	caps := specs("x")
	r := New()
	require.NoError(t, r.Register(Binding{ID: "P1", Capabilities: caps}))
	caps[0].Name = "mutated"

	_, err := r.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, "x", r.AllCapabilities()[0].Name)
}

func TestRegistry_CloseJoinsErrors(t *testing.T) {
	p1, p2, p3 := &mockConn{}, &mockConn{}, &mockConn{}
	p1.On("Close").Return(errors.New("p1 gone")).Once()
	p2.On("Close").Return(nil).Once()
	p3.On("Close").Return(errors.New("p3 gone")).Once()

	r := New()
	require.NoError(t, r.Register(Binding{ID: "P1", Conn: p1, Capabilities: specs("a")}))
	require.NoError(t, r.Register(Binding{ID: "P2", Conn: p2, Capabilities: specs("b")}))
	require.NoError(t, r.Register(Binding{ID: "P3", Conn: p3, Capabilities: specs("c")}))
	require.NoError(t, r.Register(Binding{ID: "P4", Capabilities: specs("d")}))

	err := r.Close()
	require.Error(t, err)
	assert.ErrorContains(t, err, "close P1: p1 gone")
	assert.ErrorContains(t, err, "close P3: p3 gone")
	p1.AssertExpectations(t)
	p2.AssertExpectations(t)
	p3.AssertExpectations(t)

	assert.Zero(t, r.Len())
	_, err = r.Resolve("a")
	require.ErrorIs(t, err, ErrNotFound)

	// closing again is a no-op
	require.NoError(t, r.Close())
}
