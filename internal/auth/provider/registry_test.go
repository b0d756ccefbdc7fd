package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icebob/kantab-sub001/internal/auth"
)

type fakeStrategy struct{ name string }

func (f fakeStrategy) Name() string                   { return f.name }
func (f fakeStrategy) AuthCodeURL(_, _ string) string { return "https://example.com/authorize" }
func (f fakeStrategy) Exchange(context.Context, string, string) (auth.RawProfile, error) {
	return auth.RawProfile{"sub": "x"}, nil
}

func testDescriptor(name string) Descriptor {
	return Descriptor{
		Name:         name,
		DefaultScope: []string{"profile"},
		Normalize: func(raw auth.RawProfile) (auth.Profile, error) {
			return auth.Profile{Provider: name}, nil
		},
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(testDescriptor("google")))
	err := r.Register(testDescriptor("google"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRegistry_LoadDisabled(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testDescriptor("github")))

	// registered but never enabled: credentials absent
	_, _, ok := r.Load("github")
	assert.False(t, ok)

	_, _, ok = r.Load("unknown")
	assert.False(t, ok)
}

func TestRegistry_DisabledProviderLeavesOthersWorking(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testDescriptor("google")))
	require.NoError(t, r.Register(testDescriptor("github")))

	require.NoError(t, r.Enable(fakeStrategy{name: "google"}))
	r.Disable("github", errors.New("missing credentials"))

	s, desc, ok := r.Load("google")
	require.True(t, ok)
	assert.Equal(t, "google", s.Name())
	assert.NotNil(t, desc.Normalize)

	assert.Equal(t, []string{"google"}, r.Enabled())
}

func TestRegistry_EnableUnregistered(t *testing.T) {
	r := NewRegistry()
	err := r.Enable(fakeStrategy{name: "twitter"})
	assert.Error(t, err)
}

func TestRegistry_RegisterInvalidDescriptor(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Descriptor{}))
	assert.Error(t, r.Register(Descriptor{Name: "nameless-normalizer"}))
}
