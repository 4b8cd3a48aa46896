package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/combat"
	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

type arena struct {
	cat      *catalog.Catalog
	queue    *schedule.Queue
	enemies  *entity.Manager
	executor *Executor
	field    *combat.Field
}

func newArena(t *testing.T, cat *catalog.Catalog) *arena {
	t.Helper()
	a := &arena{cat: cat, queue: schedule.New(60)}
	a.enemies = entity.NewManager(cat, a.queue, nil)
	a.queue.SetLiveness(a.enemies.IsAlive)
	a.field = combat.NewField(a.queue, a.enemies)
	a.executor = NewExecutor(combat.NewResolver(a.enemies), a.field, a.enemies)
	return a
}

func (a *arena) spawn(t *testing.T, tag string, tier catalog.Tier, x float64) *entity.Enemy {
	t.Helper()
	e, err := a.enemies.Spawn(tag, tier, vec.New(x, 520))
	require.NoError(t, err)
	return e
}

func sword(t *testing.T, cat *catalog.Catalog, level int) *Weapon {
	t.Helper()
	spec, ok := cat.Weapon("sword")
	require.True(t, ok)
	w := New("sword", spec)
	w.SetLevel(level)
	return w
}

func TestLevelUpIsCapped(t *testing.T) {
	w := sword(t, catalog.Default(), 0)
	for i := 1; i <= 4; i++ {
		require.True(t, w.LevelUp())
		assert.Equal(t, i, w.Level())
	}
	assert.False(t, w.LevelUp())
	assert.Equal(t, 4, w.Level())
	assert.Equal(t, "Sword Lv.4", w.Label())

	w.SetLevel(99)
	assert.Equal(t, 4, w.Level())
	w.SetLevel(-3)
	assert.Equal(t, 0, w.Level())
}

func TestChoose(t *testing.T) {
	pos := vec.New(500, 500)
	near := vec.New(600, 500) // ровно 100, не дальше порога
	far := vec.New(601, 500)

	assert.Equal(t, KindBasic, Choose(0, Context{Position: pos, Dashing: true}))
	assert.Equal(t, KindBasic, Choose(1, Context{Position: pos, Target: far}))
	assert.Equal(t, KindDash, Choose(2, Context{Position: pos, Dashing: true}))
	assert.Equal(t, KindBasic, Choose(2, Context{Position: pos}))
	assert.Equal(t, KindBasic, Choose(3, Context{Position: pos, Target: near}))
	assert.Equal(t, KindThrow, Choose(3, Context{Position: pos, Target: far}))
	assert.Equal(t, KindBasicWave, Choose(4, Context{Position: pos}))
}

func TestAreas(t *testing.T) {
	assert.Equal(t, physics.Rect{X: 540, Y: 470, W: 80, H: 60}, BasicArea(vec.New(500, 500), 1, 80))
	assert.Equal(t, physics.Rect{X: 380, Y: 470, W: 80, H: 60}, BasicArea(vec.New(500, 500), -1, 80))

	dash := DashArea(vec.New(500, 500), 1, 110)
	assert.InDelta(t, 665.0, dash.Center().X, 1e-9)
	assert.InDelta(t, 165.0, dash.W, 1e-9)
	assert.Equal(t, DashHeight, dash.H)
}

func TestBasicSlashWithKnockback(t *testing.T) {
	cat := catalog.Default()
	a := newArena(t, cat)
	e := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 1000)
	behind := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 800)

	rep := a.executor.Attack(sword(t, cat, 0), Context{Position: vec.New(930, 515), Facing: 1})
	require.Len(t, rep.Hits, 1)
	assert.Equal(t, KindBasic, rep.Kind)
	assert.InDelta(t, 10.0, e.Health, 1e-9)
	assert.Equal(t, vec.New(250, -100), e.Body.Velocity)
	assert.Equal(t, 30.0, behind.Health, "удар только в сторону взгляда")
}

func TestLevelFourOneShotsBasicTierOnly(t *testing.T) {
	cat := catalog.Default()
	s := cat.Weapons["sword"]
	s.Levels[4].Damage = 0.5 // настроенный урон не важен для базовых врагов
	cat.Weapons["sword"] = s

	a := newArena(t, cat)
	basic := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 1000)
	basic.Behavior.(*entity.TurtleState).Defending = true
	mini := a.spawn(t, catalog.TagTurtle, catalog.TierMiniboss, 1060)

	rep := a.executor.Attack(sword(t, cat, 4), Context{Position: vec.New(900, 515), Facing: 1})
	assert.Equal(t, KindBasicWave, rep.Kind)
	require.NotNil(t, rep.Wave)
	assert.LessOrEqual(t, basic.Health, 0.0)
	assert.InDelta(t, 90-0.5, mini.Health, 1e-9)
}

func TestLevelFourOneShotsWithAnyWeapon(t *testing.T) {
	cat := catalog.Default()

	t.Run("лук", func(t *testing.T) {
		a := newArena(t, cat)
		basic := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 1100)

		bow := New("bow", cat.Weapons["bow"])
		bow.SetLevel(catalog.MaxWeaponLevel)
		rep := a.executor.Attack(bow, Context{Position: vec.New(900, 515), Facing: 1})
		require.Len(t, rep.Hits, 1)
		assert.False(t, basic.Alive())
	})

	t.Run("каталог без тега способности", func(t *testing.T) {
		stripped := catalog.Default()
		s := stripped.Weapons["sword"]
		s.Levels[4].Abilities = nil
		s.Levels[4].Damage = 1
		stripped.Weapons["sword"] = s

		a := newArena(t, stripped)
		basic := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 1000)
		a.executor.Attack(sword(t, stripped, 4), Context{Position: vec.New(900, 515), Facing: 1})
		assert.False(t, basic.Alive())
	})
}

func TestLevelFourComputedDamageOnElites(t *testing.T) {
	cat := catalog.Default()
	a := newArena(t, cat)
	boss := a.spawn(t, catalog.TagTurtle, catalog.TierBoss, 1000)

	a.executor.Attack(sword(t, cat, 4), Context{Position: vec.New(900, 515), Facing: 1})
	assert.InDelta(t, 300-80, boss.Health, 1e-9)

	// Первая проверка волны через 100мс: урон 80 * 2
	for i := 0; i < 6; i++ {
		a.field.Step(1.0 / 60)
		a.queue.Advance()
	}
	assert.InDelta(t, 220-160, boss.Health, 1e-9)
	assert.True(t, boss.Alive())
}

func TestDashAttack(t *testing.T) {
	cat := catalog.Default()
	a := newArena(t, cat)
	e := a.spawn(t, catalog.TagTurtle, catalog.TierMiniboss, 1000)

	// Центр хитбокса 835 + 1.5*110 = 1000
	rep := a.executor.Attack(sword(t, cat, 2), Context{Position: vec.New(835, 505), Facing: 1, Dashing: true})
	assert.Equal(t, KindDash, rep.Kind)
	require.Len(t, rep.Hits, 1)
	assert.InDelta(t, 90-45*1.5, e.Health, 1e-9)
}

func TestThrowTargetsNearestOrFliesForward(t *testing.T) {
	cat := catalog.Default()

	t.Run("без врагов вперёд", func(t *testing.T) {
		a := newArena(t, cat)
		rep := a.executor.Attack(sword(t, cat, 3), Context{Position: vec.New(500, 500), Facing: -1, Target: vec.New(100, 500)})
		require.NotNil(t, rep.Projectile)
		assert.Zero(t, rep.Projectile.TargetID)
		assert.InDelta(t, -ThrowSpeed, rep.Projectile.Velocity.X, 1e-9)
	})

	t.Run("ближайший враг", func(t *testing.T) {
		a := newArena(t, cat)
		a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 2000)
		near := a.spawn(t, catalog.TagTurtle, catalog.TierBasic, 800)

		rep := a.executor.Attack(sword(t, cat, 3), Context{Position: vec.New(500, 520), Facing: 1, Target: vec.New(900, 520)})
		require.NotNil(t, rep.Projectile)
		assert.Equal(t, near.ID, rep.Projectile.TargetID)

		for i := 0; i < 120; i++ {
			a.field.Step(1.0 / 60)
			a.queue.Advance()
		}
		assert.Less(t, near.Health, 30.0)
	})
}

func TestManagerSwitchAndUpgrade(t *testing.T) {
	rec := &notify.Recorder{}
	m := NewManager(catalog.Default(), rec)

	require.NotNil(t, m.Current())
	assert.Equal(t, "sword", m.Current().Key())
	assert.Equal(t, []string{"bow", "staff", "sword"}, m.Names())

	require.True(t, m.UpgradeCurrent())
	last, ok := rec.Last(notify.KindWeaponChanged)
	require.True(t, ok)
	assert.Equal(t, "Sword Lv.1", last.(notify.WeaponChanged).Label)

	assert.False(t, m.Switch("axe"))
	require.True(t, m.Switch("bow"))
	last, _ = rec.Last(notify.KindWeaponChanged)
	assert.Equal(t, "Bow Lv.1", last.(notify.WeaponChanged).Label, "уровень улучшения переходит к новому оружию")

	m.SetCurrentLevel(7)
	assert.Equal(t, 4, m.Current().Level())
	assert.False(t, m.UpgradeCurrent())

	m.SetBonusDamage(5)
	assert.Equal(t, 18.0+5, m.Current().Damage())
}

func TestManagerCycle(t *testing.T) {
	rec := &notify.Recorder{}
	m := NewManager(catalog.Default(), rec)
	m.SetCurrentLevel(2)

	// sword -> bow -> staff -> sword
	assert.Equal(t, "bow", m.Cycle().Key())
	assert.Equal(t, 2, m.Current().Level())
	assert.Equal(t, "staff", m.Cycle().Key())
	assert.Equal(t, "sword", m.Cycle().Key())

	last, ok := rec.Last(notify.KindWeaponChanged)
	require.True(t, ok)
	assert.Equal(t, notify.WeaponChanged{Label: "Sword Lv.2", Level: 2}, last)
}
