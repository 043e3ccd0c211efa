package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeComponent struct {
	name string
	tag  string
}

func (f fakeComponent) Name() string { return f.name }

func TestRegisterAndGet(t *testing.T) {
	r := New[fakeComponent]("test", zap.NewNop())

	require.NoError(t, r.Register(fakeComponent{name: "a"}))
	require.NoError(t, r.Register(fakeComponent{name: "b"}))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Count())
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := New[fakeComponent]("test", zap.NewNop())
	assert.Error(t, r.Register(fakeComponent{name: ""}))
	assert.Equal(t, 0, r.Count())
}

func TestRegisterLastWriteWinsKeepsOrder(t *testing.T) {
	r := New[fakeComponent]("test", zap.NewNop())

	require.NoError(t, r.Register(fakeComponent{name: "a", tag: "v1"}))
	require.NoError(t, r.Register(fakeComponent{name: "b"}))
	require.NoError(t, r.Register(fakeComponent{name: "a", tag: "v2"}))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "v2", got.tag, "re-registration replaces the component")
	assert.Equal(t, []string{"a", "b"}, r.List(), "original position is kept")
	assert.Equal(t, 2, r.Count())
}

func TestListReturnsCopy(t *testing.T) {
	r := New[fakeComponent]("test", zap.NewNop())
	require.NoError(t, r.Register(fakeComponent{name: "a"}))

	names := r.List()
	names[0] = "mutated"
	assert.Equal(t, []string{"a"}, r.List())
}
