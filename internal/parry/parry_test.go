package parry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/schedule"
)

func newSystem() (*System, *schedule.Queue) {
	q := schedule.New(60)
	return New(catalog.Default().Player, q), q
}

func advance(q *schedule.Queue, ticks int) {
	for i := 0; i < ticks; i++ {
		q.Advance()
	}
}

func TestIdleDoesNotParry(t *testing.T) {
	s, _ := newSystem()
	assert.Equal(t, Result{}, s.CheckParry(10))
	assert.Equal(t, Idle, s.State())
}

func TestWindowOpensAndClosesByEvent(t *testing.T) {
	s, q := newSystem()
	require.True(t, s.AttemptParry(q.NowMs()))
	assert.True(t, s.IsParrying())

	advance(q, int(q.TicksFor(s.window))-1)
	assert.True(t, s.IsParrying())
	advance(q, 1)
	assert.Equal(t, Idle, s.State())
}

func TestCounterDamageDoesNotCloseWindow(t *testing.T) {
	s, q := newSystem()
	require.True(t, s.AttemptParry(q.NowMs()))

	for _, incoming := range []float64{2, 4, 10} {
		res := s.CheckParry(incoming)
		assert.True(t, res.Parried)
		assert.Equal(t, incoming*2.0, res.CounterDamage)
	}
	assert.True(t, s.IsParrying())
}

func TestAttemptDuringCooldownChangesNothing(t *testing.T) {
	s, q := newSystem()
	require.True(t, s.AttemptParry(q.NowMs()))
	gen := s.generation

	// Окно открыто: повторная попытка отклоняется
	assert.False(t, s.AttemptParry(q.NowMs()+100))
	assert.True(t, s.IsParrying())
	assert.Equal(t, gen, s.generation)

	// Окно закрылось, но перезарядка ещё идёт
	advance(q, 30)
	require.Equal(t, Idle, s.State())
	assert.False(t, s.AttemptParry(q.NowMs()))
	assert.Equal(t, Idle, s.State(), "окно не открылось")
	assert.Equal(t, int64(0), s.lastAttempt)

	advance(q, 20) // 50 тиков = 833мс
	assert.True(t, s.AttemptParry(q.NowMs()))
	assert.True(t, s.IsParrying())
}

func TestStaleCloseEventIgnored(t *testing.T) {
	spec := catalog.Default().Player
	spec.ParryCooldownMs = 0
	spec.ParryWindowMs = 150
	q := schedule.New(60)
	s := New(spec, q)

	require.True(t, s.AttemptParry(q.NowMs()))
	advance(q, 5)
	require.True(t, s.AttemptParry(q.NowMs()))

	// Событие первого окна (тик 9) не закрывает второе (тик 14)
	advance(q, 5)
	assert.True(t, s.IsParrying())
	advance(q, 4)
	assert.Equal(t, Idle, s.State())
}

func TestReset(t *testing.T) {
	s, q := newSystem()
	require.True(t, s.AttemptParry(q.NowMs()))
	s.Reset()
	assert.Equal(t, Idle, s.State())
	assert.True(t, s.AttemptParry(q.NowMs()), "после возрождения перезарядки нет")
}
