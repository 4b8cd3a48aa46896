package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversByKind(t *testing.T) {
	d := NewDispatcher()
	var coins []int
	d.SubscribeFunc(KindCoinsChanged, func(e Event) {
		coins = append(coins, e.(CoinsChanged).Coins)
	})
	rec := &Recorder{}
	d.SubscribeAll(rec)

	d.Emit(CoinsChanged{Coins: 5})
	d.Emit(HealthChanged{Health: 90, MaxHealth: 100})
	d.Emit(CoinsChanged{Coins: 10})

	assert.Equal(t, []int{5, 10}, coins)
	require.Len(t, rec.Events, 3)
	last, ok := rec.Last(KindHealthChanged)
	require.True(t, ok)
	assert.Equal(t, HealthChanged{Health: 90, MaxHealth: 100}, last)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	d := NewDispatcher()
	assert.NotPanics(t, func() {
		d.Emit(PlayerDied{Level: 1})
		d.Emit(nil)
		OrNop(nil).Emit(LevelComplete{Level: 1})
	})
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	a := &Recorder{}
	b := &Recorder{}
	d.Subscribe(KindEnemyKilled, a)
	d.Subscribe(KindEnemyKilled, b)
	d.Unsubscribe(KindEnemyKilled, a)

	d.Emit(EnemyKilled{EnemyID: 1})
	assert.Empty(t, a.Events)
	assert.Len(t, b.Events, 1)
}

func TestEveryEventHasKind(t *testing.T) {
	events := []Event{
		HealthChanged{}, CoinsChanged{}, WeaponChanged{}, PlayerDied{},
		LevelComplete{}, UpgradeChanged{}, MovementUnlocked{}, ParrySuccess{},
		EnemyDamaged{}, EnemyKilled{}, HealthPackCollected{},
	}
	seen := make(map[Kind]bool)
	for _, e := range events {
		seen[e.Kind()] = true
	}
	for _, k := range AllKinds {
		assert.True(t, seen[k], "нет события для %s", k)
	}
}
