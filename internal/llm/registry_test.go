package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	name string
	out  string
}

func (f fakeGenerator) Name() string { return f.name }

func (f fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return f.out, nil
}

func TestRegistry_GetKnown(t *testing.T) {
	r := NewRegistry(fakeGenerator{name: BackendGroq}, fakeGenerator{name: BackendGemini})

	g, err := r.Get(BackendGemini)
	require.NoError(t, err)
	assert.Equal(t, BackendGemini, g.Name())
}

func TestRegistry_UnknownIsTypedError(t *testing.T) {
	r := NewRegistry(fakeGenerator{name: BackendGroq})

	_, err := r.Get("claude")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
	assert.Contains(t, err.Error(), `"claude"`)
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry(fakeGenerator{name: "zeta"}, fakeGenerator{name: "alpha"})
	assert.Equal(t, []string{"alpha", "zeta"}, r.Names())
}
