package module_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/goboot/framework/module"
)

func TestFlatten(t *testing.T) {
	t.Parallel()

	m := module.New("m")
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{"nil", nil, nil},
		{"string", "app", []any{"app"}},
		{"module", m, []any{m}},
		{"ref", module.Name("x"), []any{module.Name("x")}},
		{"bytes stay whole", []byte("ab"), []any{[]byte("ab")}},
		{"[]any", []any{"a", m}, []any{"a", m}},
		{"[]string", []string{"a", "b"}, []any{"a", "b"}},
		{"[]*Module", []*module.Module{m}, []any{m}},
		{"[]Ref", []module.Ref{module.Name("r")}, []any{module.Name("r")}},
		{"array", [2]string{"a", "b"}, []any{"a", "b"}},
		{"other slice", []definedHere{{}}, []any{definedHere{}}},
		{"scalar", 7, []any{7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, module.Flatten(tt.in))
		})
	}
}

func TestFlatten_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	in := []any{"a", "b"}
	out := module.Flatten(in)
	out[0] = "changed"
	assert.Equal(t, "a", in[0])
}

func TestNormalize_SingleItemEqualsOneElementList(t *testing.T) {
	t.Parallel()

	cat := newCatalog(t, "app")

	single, err := module.Normalize(cat, "app")
	require.NoError(t, err)
	list, err := module.Normalize(cat, []string{"app"})
	require.NoError(t, err)

	assert.Equal(t, single, list)
	require.Len(t, single, 1)
	assert.Equal(t, "app", single[0].Name())
}

func TestNormalize_DedupesKeepingFirst(t *testing.T) {
	t.Parallel()

	cat := newCatalog(t, "a", "b")
	otherA := module.New("a", module.WithMembers("shadow"))

	mods, err := module.Normalize(cat, []any{"a", "b", otherA, module.Name("b"), "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, module.Names(mods))
	first, _ := cat.Import("a")
	assert.Same(t, first, mods[0])
}

func TestNormalize_FirstOccurrenceWinsForHandles(t *testing.T) {
	t.Parallel()

	x1 := module.New("x", module.WithMembers(1))
	x2 := module.New("x", module.WithMembers(2))

	mods, err := module.Normalize(module.NewCatalog(), []*module.Module{x1, x2})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Same(t, x1, mods[0])
}

func TestNormalize_MixedVariants(t *testing.T) {
	t.Parallel()

	cat := newCatalog(t, "by-name", testPkg)
	direct := module.New("direct")

	mods, err := module.Normalize(cat, []any{
		"by-name",
		direct,
		definedHere{},
		helperFunc,
		named{name: "by-name"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"by-name", "direct", testPkg}, module.Names(mods))
}

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range []any{nil, []any{}, []string(nil)} {
		mods, err := module.Normalize(module.NewCatalog(), in)
		require.NoError(t, err)
		assert.Empty(t, mods)
	}
}

func TestNormalize_UnresolvableItem(t *testing.T) {
	t.Parallel()

	_, err := module.Normalize(newCatalog(t, "app"), []any{"app", 42})

	var ue *module.UnresolvableModuleError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "42", ue.Item)
}

func TestNormalize_ImportErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("init failed")
	cat := module.NewCatalog()
	cat.Register("bad", func() (*module.Module, error) { return nil, boom })

	_, err := module.Normalize(cat, []string{"bad"})
	require.ErrorIs(t, err, boom)

	_, err = module.Normalize(cat, "missing")
	var nf *module.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	a1, a2, b := module.New("a"), module.New("a"), module.New("b")
	out := module.Dedupe([]*module.Module{a1, b, a2})

	require.Len(t, out, 2)
	assert.Same(t, a1, out[0])
	assert.Same(t, b, out[1])
}
