package container_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/goboot/framework/container"
)

type counter struct{ n int }

type repo interface{ Find() string }

type memRepo struct{}

func (memRepo) Find() string { return "mem" }

// ── Bind / Singleton / Instance ───────────────────────────────────────────────

func TestBind_NewInstanceEveryMake(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Bind("counter", func(*container.Container) any { return &counter{} })

	a := c.Make("counter")
	b := c.Make("counter")
	assert.NotSame(t, a, b)
	assert.False(t, c.Resolved("counter"))
}

func TestSingleton_SameInstance(t *testing.T) {
	t.Parallel()

	c := container.New()
	calls := 0
	c.Singleton("counter", func(*container.Container) any {
		calls++
		return &counter{}
	})

	a := c.Make("counter")
	b := c.Make("counter")
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.True(t, c.Resolved("counter"))
}

func TestSingleton_RebindDropsCachedInstance(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Singleton("v", func(*container.Container) any { return "one" })
	assert.Equal(t, "one", c.Make("v"))

	c.Singleton("v", func(*container.Container) any { return "two" })
	assert.Equal(t, "two", c.Make("v"))
}

func TestInstance_ReplacesBinding(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Bind("v", func(*container.Container) any { return "factory" })
	c.Instance("v", "instance")

	assert.Equal(t, "instance", c.Make("v"))
}

func TestNew_BindsItself(t *testing.T) {
	t.Parallel()

	c := container.New()
	assert.Same(t, c, c.Make(container.SelfKey))
	assert.NotEmpty(t, c.ID())
	assert.NotEqual(t, c.ID(), container.New().ID())
}

// ── Alias ─────────────────────────────────────────────────────────────────────

func TestAlias_ResolvesCanonical(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Singleton("cache", func(*container.Container) any { return "redis" })
	c.Alias("cache", "cacheManager")

	assert.Equal(t, "redis", c.Make("cacheManager"))
	assert.True(t, c.Bound("cacheManager"))
}

func TestAlias_ToItselfPanics(t *testing.T) {
	t.Parallel()

	c := container.New()
	assert.Panics(t, func() { c.Alias("x", "x") })
}

// ── Get / Make errors ─────────────────────────────────────────────────────────

func TestGet_NotBound(t *testing.T) {
	t.Parallel()

	c := container.New()
	_, err := c.Get("missing")

	var nb container.NotBoundError
	require.ErrorAs(t, err, &nb)
	assert.Equal(t, "missing", nb.Key)
	assert.Panics(t, func() { c.Make("missing") })
}

func TestGet_FactoryPanicBecomesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := container.New()
	c.Singleton("bad", func(*container.Container) any { panic(boom) })

	_, err := c.Get("bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, container.ErrFactoryPanic)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Resolved("bad"))

	// container is still usable afterwards
	c.Instance("ok", 1)
	assert.Equal(t, 1, c.Make("ok"))
}

// ── Extend ────────────────────────────────────────────────────────────────────

func TestExtend_DecoratesOnResolve(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Bind("greeting", func(*container.Container) any { return "hello" })
	c.Extend("greeting", func(v any, _ *container.Container) any { return v.(string) + " world" })

	assert.Equal(t, "hello world", c.Make("greeting"))
}

func TestExtend_DecoratesResolvedSingleton(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Instance("n", 1)
	c.Extend("n", func(v any, _ *container.Container) any { return v.(int) + 1 })

	assert.Equal(t, 2, c.Make("n"))
}

// ── Tags ──────────────────────────────────────────────────────────────────────

func TestTagged_ResolvesInOrder(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Instance("cpu", "cpu-report")
	c.Instance("mem", "mem-report")
	c.Tag([]string{"cpu", "mem"}, "reports")

	assert.Equal(t, []any{"cpu-report", "mem-report"}, c.Tagged("reports"))
	assert.Empty(t, c.Tagged("none"))
}

// ── Forget / Flush / Bindings ─────────────────────────────────────────────────

func TestForgetAndFlush(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Instance("a", 1)
	c.Bind("b", func(*container.Container) any { return 2 })
	assert.Equal(t, []string{"a", "b", container.SelfKey}, c.Bindings())

	c.Forget("a")
	assert.False(t, c.Bound("a"))

	c.Flush()
	assert.Empty(t, c.Bindings())
}

// ── Generics ──────────────────────────────────────────────────────────────────

func TestResolve_Typed(t *testing.T) {
	t.Parallel()

	c := container.New()
	key := container.TypeKey((*repo)(nil))
	c.Singleton(key, func(*container.Container) any { return memRepo{} })

	r := container.Resolve[repo](c, key)
	assert.Equal(t, "mem", r.Find())
	assert.Contains(t, key, "framework/container_test.repo")
}

func TestTypeKey_NilInterface(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", container.TypeKey(nil))
	assert.Equal(t, "github.com/km-arc/goboot/framework/container_test.memRepo", container.TypeKey(&memRepo{}))
}

func TestTryResolve_WrongType(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Instance("n", 42)

	_, err := container.TryResolve[string](c, "n")
	var wt container.WrongTypeError
	require.ErrorAs(t, err, &wt)
	assert.Equal(t, "int", wt.GotType)

	n, err := container.TryResolve[int](c, "n")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	assert.Panics(t, func() { container.Resolve[string](c, "n") })
}

// ── Callbacks / Shutdown ──────────────────────────────────────────────────────

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestAfterResolving_Fires(t *testing.T) {
	t.Parallel()

	c := container.New()
	var seen []string
	c.AfterResolving(func(key string, _ any) { seen = append(seen, key) })
	c.Bind("x", func(*container.Container) any { return 1 })

	c.Make("x")
	c.Make("x")
	assert.Equal(t, []string{"x", "x"}, seen)
}

func TestShutdown_ClosesSingletons(t *testing.T) {
	t.Parallel()

	failing := &closer{err: errors.New("close failed")}
	fine := &closer{}

	c := container.New()
	c.Instance("a", failing)
	c.Singleton("b", func(*container.Container) any { return fine })
	c.Make("b")

	err := c.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
	assert.True(t, failing.closed)
	assert.True(t, fine.closed)
	assert.Empty(t, c.Bindings())
}

func TestSingleton_ConcurrentMakeReturnsOneInstance(t *testing.T) {
	t.Parallel()

	c := container.New()
	c.Singleton("counter", func(*container.Container) any { return &counter{} })

	const n = 16
	got := make([]any, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = c.Make("counter")
		}()
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, got[0], got[i])
	}
}
