package counselor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom struct {
	f float64
	i int
}

func (r fixedRandom) Float64() float64 { return r.f }
func (r fixedRandom) Intn(n int) int   { return r.i % n }

func noSleep(recorded *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*recorded = append(*recorded, d)
		return nil
	}
}

func TestNewResponder_EmptyCatalog(t *testing.T) {
	_, err := NewResponder(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestResponder_DeterministicDraw(t *testing.T) {
	catalog := []string{"a", "b", "c"}
	var slept []time.Duration

	r, err := NewResponder(catalog,
		WithRandom(fixedRandom{f: 0.5, i: 2}),
		WithSleeper(noSleep(&slept)),
	)
	require.NoError(t, err)

	reply, err := r.Respond(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "c", reply.Content)
	assert.Equal(t, 2, reply.CatalogIndex)
	assert.Equal(t, 2*time.Second, reply.Delay)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestResponder_DelayBounds(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want time.Duration
	}{
		{name: "lower bound", f: 0, want: time.Second},
		{name: "quarter", f: 0.25, want: 1500 * time.Millisecond},
		{name: "near upper bound", f: 0.999, want: time.Second + time.Duration(0.999*float64(2*time.Second))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResponder([]string{"x"}, WithRandom(fixedRandom{f: tt.f}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Delay())
		})
	}
}

func TestResponder_SeededRandomStaysInRange(t *testing.T) {
	catalog := []string{"a", "b", "c", "d"}
	r, err := NewResponder(catalog, WithRandom(NewLockedRandom(42)))
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		d := r.Delay()
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)

		content, idx := r.Pick()
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, len(catalog))
		assert.Equal(t, catalog[idx], content)
	}
}

func TestResponder_CatalogIsCopied(t *testing.T) {
	catalog := []string{"first", "second"}
	r, err := NewResponder(catalog, WithRandom(fixedRandom{i: 0}))
	require.NoError(t, err)

	catalog[0] = "mutated"
	content, _ := r.Pick()
	assert.Equal(t, "first", content)
}

func TestResponder_CancelledContext(t *testing.T) {
	r, err := NewResponder([]string{"x"}, WithDelayRange(time.Hour, time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply, err := r.Respond(ctx)
	assert.Nil(t, reply)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContextSleep_Elapses(t *testing.T) {
	start := time.Now()
	err := ContextSleep(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
