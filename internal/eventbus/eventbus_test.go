package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/notify"
)

type collector struct {
	mu  sync.Mutex
	evs []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.evs = append(c.evs, ev)
	c.mu.Unlock()
}

func (c *collector) snapshot() []*Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Envelope(nil), c.evs...)
}

func TestMemoryBusFilterAndClose(t *testing.T) {
	bus := NewMemoryBus(16)
	all, killed := &collector{}, &collector{}

	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{"EnemyKilled"}}, killed.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "1", EventType: "EnemyKilled"}))
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "2", EventType: "CoinsChanged"}))

	// Close дожидается доставки буфера
	require.NoError(t, bus.Close())
	assert.Len(t, all.snapshot(), 2)
	require.Len(t, killed.snapshot(), 1)
	assert.Equal(t, "1", killed.snapshot()[0].ID)

	stats := bus.Metrics()
	assert.EqualValues(t, 2, stats.Published)
	assert.EqualValues(t, 3, stats.Consumed)

	assert.ErrorIs(t, bus.Publish(ctx, &Envelope{ID: "3"}), ErrBusClosed)
	assert.NoError(t, bus.Close(), "повторное закрытие безопасно")
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewMemoryBus(4)
	c := &collector{}
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), &Envelope{ID: "x"}))
	require.NoError(t, bus.Close())
	assert.Empty(t, c.snapshot())
}

func TestForwarderRoundTrip(t *testing.T) {
	bus := NewMemoryBus(64)
	c := &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	fwd := NewForwarder(bus, "test", "run-1")
	d := notify.NewDispatcher()
	d.SubscribeAll(fwd)

	d.Emit(notify.EnemyKilled{EnemyID: 4, Archetype: "archer", Tier: "basic", Reward: 5})
	d.Emit(notify.PlayerDied{Level: 3})
	fwd.Close()
	require.NoError(t, bus.Close())

	got := c.snapshot()
	require.Len(t, got, 2)

	assert.Equal(t, "EnemyKilled", got[0].EventType)
	assert.Equal(t, "run-1", got[0].CorrelationID)
	assert.Equal(t, PriorityLow, got[0].Priority)
	assert.Equal(t, PriorityHigh, got[1].Priority)
	assert.NotEmpty(t, got[0].ID)

	ev, err := Decode(got[0])
	require.NoError(t, err)
	assert.Equal(t, notify.EnemyKilled{EnemyID: 4, Archetype: "archer", Tier: "basic", Reward: 5}, ev)

	ev, err = Decode(got[1])
	require.NoError(t, err)
	assert.Equal(t, notify.PlayerDied{Level: 3}, ev)

	// После Close уведомления отбрасываются без паники
	assert.NotPanics(t, func() { fwd.Emit(notify.CoinsChanged{Coins: 1}) })
	assert.EqualValues(t, 1, fwd.Dropped())
}

// stalledBus держит Publish до закрытия release
type stalledBus struct {
	started   chan struct{}
	release   chan struct{}
	published int64
}

func newStalledBus() *stalledBus {
	return &stalledBus{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *stalledBus) Publish(ctx context.Context, _ *Envelope) error {
	select {
	case b.started <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	atomic.AddInt64(&b.published, 1)
	return nil
}

func (b *stalledBus) Subscribe(context.Context, Filter, Handler) (Subscription, error) {
	return nil, ErrBusClosed
}

func (b *stalledBus) Metrics() Stats { return Stats{} }
func (b *stalledBus) Close() error { return nil }

func TestForwarderHighPriorityDoesNotBlockOnFullQueue(t *testing.T) {
	bus := newStalledBus()
	fwd := newForwarder(bus, "test", "run-1", 1)

	fwd.Emit(notify.PlayerDied{Level: 1})
	select {
	case <-bus.started:
	case <-time.After(time.Second):
		t.Fatal("первый конверт не дошёл до шины")
	}
	fwd.Emit(notify.PlayerDied{Level: 2}) // занимает очередь

	start := time.Now()
	fwd.Emit(notify.LevelComplete{Level: 2})
	assert.Less(t, time.Since(start), publishTimeout)
	assert.EqualValues(t, 1, fwd.Dropped())

	fwd.Emit(notify.EnemyKilled{EnemyID: 1})
	assert.EqualValues(t, 2, fwd.Dropped())

	close(bus.release)
	fwd.Close()
	assert.EqualValues(t, 2, atomic.LoadInt64(&bus.published))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(&Envelope{EventType: "Teleported", Payload: []byte(`{}`)})
	assert.Error(t, err)

	_, err = Decode(&Envelope{EventType: "CoinsChanged", Payload: []byte(`{"coins":"a"}`)})
	assert.Error(t, err)
}

func TestMetricsExporterCollectsDeltas(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "a"}))
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "b"}))
	require.NoError(t, bus.Close())

	me.Collect()
	me.Collect()

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		m := f.GetMetric()[0]
		if m.GetCounter() != nil {
			values[f.GetName()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, values["eventbus_messages_published_total"], "повторный Collect не удваивает счётчик")
}

func TestMetricsExporterStartStop(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()
	me, err := NewMetricsExporter(bus, prometheus.NewRegistry())
	require.NoError(t, err)

	me.Start(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	me.Stop()
}
