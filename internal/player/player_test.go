package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

type fixture struct {
	player *Player
	queue  *schedule.Queue
	rec    *notify.Recorder
	world  *physics.World
}

func newFixture() *fixture {
	q := schedule.New(60)
	rec := &notify.Recorder{}
	return &fixture{
		player: New(catalog.Default(), q, rec),
		queue:  q,
		rec:    rec,
		world:  physics.NewWorld(3000),
	}
}

func (f *fixture) tick(in Input) Command {
	cmd := f.player.HandleInput(in)
	f.player.Step(1.0/60, f.world)
	f.queue.Advance()
	return cmd
}

func (f *fixture) idle(ticks int) {
	for i := 0; i < ticks; i++ {
		f.tick(Frame{})
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	f := newFixture()
	p := f.player
	assert.Equal(t, 100.0, p.Health)
	assert.Equal(t, 100.0, p.MaxHealth)
	assert.Equal(t, 150.0, p.Speed)
	assert.Equal(t, vec.New(100, 300), p.Position())
	assert.Equal(t, "sword", p.Weapons().Current().Key())
}

func TestMovementAndFacing(t *testing.T) {
	f := newFixture()
	f.tick(Hold(ActionLeft))
	assert.Equal(t, -1.0, f.player.Facing)
	assert.Equal(t, -150.0, f.player.Body.Velocity.X)

	f.tick(Hold(ActionRight))
	assert.Equal(t, 1.0, f.player.Facing)

	f.tick(Frame{})
	assert.Equal(t, 0.0, f.player.Body.Velocity.X)
}

func TestJumpOnlyFromFloor(t *testing.T) {
	f := newFixture()
	f.tick(Press(ActionJump))
	assert.False(t, f.player.Body.Velocity.Y < -500, "в воздухе прыжок не срабатывает")

	// Падаем на землю
	f.idle(120)
	require.True(t, f.player.Body.OnFloor)

	f.player.HandleInput(Press(ActionJump))
	assert.Equal(t, -600.0, f.player.Body.Velocity.Y)
}

func TestAttackTarget(t *testing.T) {
	f := newFixture()
	cmd := f.player.HandleInput(Press(ActionAttack))
	require.True(t, cmd.Attack)
	assert.Equal(t, f.player.Position().X+100, cmd.Target.X)

	f.player.Facing = -1
	cmd = f.player.HandleInput(Press(ActionAttack))
	assert.Equal(t, f.player.Position().X-100, cmd.Target.X)

	aim := vec.New(900, 200)
	frame := Press(ActionAttack)
	frame.Target = &aim
	cmd = f.player.HandleInput(frame)
	assert.Equal(t, aim, cmd.Target)
}

func TestDashInvulnerabilityAndCooldown(t *testing.T) {
	f := newFixture()
	p := f.player

	require.True(t, p.Dash())
	assert.True(t, p.Dashing)
	assert.True(t, p.Invulnerable())
	assert.Equal(t, 300.0, p.Body.Velocity.X)
	assert.Equal(t, Ignored, p.TakeDamage(50, 1).Outcome)
	assert.Equal(t, 100.0, p.Health)

	// 200мс = 12 тиков
	f.idle(12)
	assert.False(t, p.Dashing)
	assert.False(t, p.Invulnerable())

	assert.False(t, p.Dash(), "перезарядка 1с")
	f.idle(48)
	assert.True(t, p.Dash())
}

func TestTakeDamageInvulnerabilityWindow(t *testing.T) {
	f := newFixture()
	p := f.player

	res := p.TakeDamage(10, 7)
	assert.Equal(t, Applied, res.Outcome)
	assert.Equal(t, 90.0, p.Health)

	hc, ok := f.rec.Last(notify.KindHealthChanged)
	require.True(t, ok)
	assert.Equal(t, notify.HealthChanged{Health: 90, MaxHealth: 100}, hc)

	assert.Equal(t, Ignored, p.TakeDamage(10, 7).Outcome)
	f.idle(30) // 500мс
	assert.Equal(t, Applied, p.TakeDamage(10, 7).Outcome)
	assert.Equal(t, 80.0, p.Health)
}

func TestParryReflectsWithoutHealthLoss(t *testing.T) {
	f := newFixture()
	p := f.player

	f.tick(Press(ActionParry))
	require.True(t, p.Parry().IsParrying())

	res := p.TakeDamage(4, 42)
	assert.Equal(t, Parried, res.Outcome)
	assert.Equal(t, 8.0, res.CounterDamage)
	assert.Equal(t, 100.0, p.Health)

	ev, ok := f.rec.Last(notify.KindParrySuccess)
	require.True(t, ok)
	assert.Equal(t, notify.ParrySuccess{CounterDamage: 8, AttackerID: 42}, ev)

	// Отражение не даёт неуязвимости: второй удар в окне тоже отражается
	assert.Equal(t, Parried, p.TakeDamage(2, 42).Outcome)
}

func TestDeathAndRespawn(t *testing.T) {
	f := newFixture()
	p := f.player

	res := p.TakeDamage(150, 1)
	assert.Equal(t, Killed, res.Outcome)
	assert.True(t, p.Dead)
	assert.Equal(t, 0.0, p.Health)
	assert.Equal(t, Ignored, p.TakeDamage(1, 1).Outcome)
	assert.False(t, p.HandleInput(Press(ActionAttack)).Attack)

	p.Body.Position = vec.New(2000, 100)
	p.Respawn()
	assert.False(t, p.Dead)
	assert.False(t, p.Invulnerable())
	assert.Equal(t, p.MaxHealth, p.Health)
	assert.Equal(t, vec.New(100, 300), p.Position())

	// Событие неуязвимости прошлой жизни не трогает счётчик новой
	f.idle(40)
	assert.Equal(t, Applied, p.TakeDamage(5, 1).Outcome)
}

func TestHealCapped(t *testing.T) {
	f := newFixture()
	p := f.player
	p.Health = 85

	assert.Equal(t, 15.0, p.Heal(30))
	assert.Equal(t, 100.0, p.Health)
	assert.Equal(t, 0.0, p.Heal(10))
}

func TestApplyUpgrades(t *testing.T) {
	f := newFixture()
	p := f.player

	p.ApplyUpgrades(progression.CurrentUpgrades{WeaponLevel: 7, Health: 2, Speed: 1})
	assert.Equal(t, 200.0, p.MaxHealth)
	assert.Equal(t, 200.0, p.Health)
	assert.Equal(t, 210.0, p.Speed)
	assert.Equal(t, catalog.MaxWeaponLevel, p.Weapons().Current().Level())

	ev, ok := f.rec.Last(notify.KindWeaponChanged)
	require.True(t, ok)
	assert.Equal(t, "Sword Lv.4", ev.(notify.WeaponChanged).Label)

	// Повторное применение не накапливается
	p.ApplyUpgrades(progression.CurrentUpgrades{Health: 1})
	assert.Equal(t, 150.0, p.MaxHealth)
	assert.Equal(t, 150.0, p.Speed)
	assert.Equal(t, 0, p.Weapons().Current().Level())
}

func TestApplyPurchase(t *testing.T) {
	f := newFixture()
	p := f.player
	p.Health = 60

	p.ApplyPurchase(catalog.UpgradeHealth, 1)
	assert.Equal(t, 150.0, p.MaxHealth)
	assert.Equal(t, 110.0, p.Health)

	p.ApplyPurchase(catalog.UpgradeSpeed, 1)
	assert.Equal(t, 210.0, p.Speed)

	p.ApplyPurchase(catalog.UpgradeWeaponLevel, 1)
	assert.Equal(t, 1, p.Weapons().Current().Level())
}

func TestSwitchWeaponAction(t *testing.T) {
	f := newFixture()
	f.player.ApplyUpgrades(progression.CurrentUpgrades{WeaponLevel: 3})

	f.tick(Press(ActionSwitchWeapon))
	w := f.player.Weapons().Current()
	assert.Equal(t, "bow", w.Key())
	assert.Equal(t, 3, w.Level())

	last, ok := f.rec.Last(notify.KindWeaponChanged)
	require.True(t, ok)
	assert.Equal(t, notify.WeaponChanged{Label: "Bow Lv.3", Level: 3}, last)

	f.tick(Frame{})
	assert.Equal(t, "bow", f.player.Weapons().Current().Key(), "удержание не переключает повторно")
}
