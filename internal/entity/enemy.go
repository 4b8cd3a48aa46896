// Package entity содержит врагов, их подсостояния поведения и выбор намерений ИИ.
package entity

import (
	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// DefendDamageFactor множитель входящего урона черепахи в защите
const DefendDamageFactor = 0.3

// Enemy экземпляр врага. Множители тира применены один раз при создании.
type Enemy struct {
	ID        uint64
	Archetype catalog.EnemyArchetype
	Tier      catalog.Tier
	Health    float64
	MaxHealth float64
	Damage    float64
	Body      *physics.Body
	Behavior  BehaviorState

	// Flashing визуальная подсветка после удара, снимается событием через 200мс
	Flashing  bool
	Destroyed bool
}

// NewEnemy создаёт врага из архетипа и применяет множители тира
func NewEnemy(id uint64, arch catalog.EnemyArchetype, tier catalog.Tier, spec catalog.TierSpec, pos vec.Vec2) *Enemy {
	if tier == "" {
		tier = catalog.TierBasic
	}
	e := &Enemy{
		ID:        id,
		Archetype: arch,
		Tier:      tier,
		MaxHealth: arch.MaxHealth,
		Damage:    arch.Damage,
		Body:      physics.NewBody(pos, arch.Width, arch.Height),
		Behavior:  NewBehaviorState(arch.Tag),
	}
	if tier != catalog.TierBasic {
		if spec.HealthMultiplier > 0 {
			e.MaxHealth *= spec.HealthMultiplier
		}
		if spec.DamageMultiplier > 0 {
			e.Damage *= spec.DamageMultiplier
		}
		if spec.Width > 0 && spec.Height > 0 {
			e.Body.SetSize(spec.Width, spec.Height)
		}
	}
	e.Health = e.MaxHealth
	return e
}

// Position центр врага
func (e *Enemy) Position() vec.Vec2 {
	return e.Body.Position
}

// Bounds текущий AABB врага
func (e *Enemy) Bounds() physics.Rect {
	return e.Body.Bounds()
}

// Alive враг ещё участвует в симуляции
func (e *Enemy) Alive() bool {
	return !e.Destroyed && e.Health > 0
}

// IsBasic враг базового тира (на него действует правило one-shot)
func (e *Enemy) IsBasic() bool {
	return e.Tier == catalog.TierBasic
}

// Defending черепаха в защитной стойке
func (e *Enemy) Defending() bool {
	t, ok := e.Behavior.(*TurtleState)
	return ok && t.Defending
}

// DamageResult итог применения урона
type DamageResult struct {
	Applied float64 // Фактически снятое здоровье
	Killed  bool    // Этот удар уничтожил врага
	Ignored bool    // Враг уже уничтожен, ничего не изменилось
}

// TakeDamage снимает здоровье. lethal гарантирует убийство независимо от защиты.
// Уничтожение происходит ровно один раз, после него вызовы ничего не меняют.
func (e *Enemy) TakeDamage(amount float64, lethal bool) DamageResult {
	if !e.Alive() {
		return DamageResult{Ignored: true}
	}
	if amount < 0 {
		amount = 0
	}

	switch {
	case lethal:
		amount = e.Health
	case e.Defending():
		amount *= DefendDamageFactor
	}

	e.Health -= amount
	e.Flashing = true

	if e.Health <= 0 {
		e.Destroyed = true
		return DamageResult{Applied: amount, Killed: true}
	}
	return DamageResult{Applied: amount}
}

// Knockback задаёт импульс отбрасывания
func (e *Enemy) Knockback(vx, vy float64) {
	if !e.Alive() {
		return
	}
	e.Body.Velocity.X = vx
	e.Body.Velocity.Y = vy
}
