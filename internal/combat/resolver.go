// Package combat разрешает попадания хитбоксов по врагам: пересечение AABB,
// урон с множителем, правило гарантированного убийства и отбрасывание.
package combat

import (
	"time"

	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/physics"
)

// Knockback параметры отбрасывания от атакующего
type Knockback struct {
	Direction float64 // -1 влево, 1 вправо
	SpeedX    float64
	SpeedY    float64 // вертикальная скорость (отрицательная = вверх)
}

// DefaultKnockback отбрасывание базового удара
func DefaultKnockback(direction float64) *Knockback {
	return &Knockback{Direction: direction, SpeedX: 250, SpeedY: -100}
}

// Hit описание одного удара
type Hit struct {
	Area       physics.Rect
	BaseDamage float64
	Multiplier float64
	// OneShotBasic гарантирует убийство врагов базового тира
	OneShotBasic bool
	Knockback    *Knockback
}

// Damage урон удара до правил цели
func (h Hit) Damage() float64 {
	m := h.Multiplier
	if m == 0 {
		m = 1
	}
	return h.BaseDamage * m
}

// Damager применяет урон к врагу (награды, уведомления)
type Damager interface {
	Damage(e *entity.Enemy, amount float64, lethal bool) entity.DamageResult
}

// HitResult попадание по одному врагу
type HitResult struct {
	EnemyID uint64
	Lethal  bool
	entity.DamageResult
}

// Resolver разрешает удары против набора живых врагов
type Resolver struct {
	damager Damager
}

// NewResolver создаёт резолвер
func NewResolver(d Damager) *Resolver {
	return &Resolver{damager: d}
}

// Resolve проверяет пересечение удара с каждым врагом снимка ровно один раз.
// Враг, уничтоженный в ходе разрешения, повторно не рассматривается.
func (r *Resolver) Resolve(hit Hit, snapshot []*entity.Enemy) []HitResult {
	var results []HitResult
	seen := make(map[uint64]struct{}, len(snapshot))

	for _, e := range snapshot {
		if e == nil {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		if !e.Alive() || !hit.Area.Intersects(e.Bounds()) {
			continue
		}

		lethal := hit.OneShotBasic && e.IsBasic()
		res := r.damager.Damage(e, hit.Damage(), lethal)
		if res.Ignored {
			continue
		}
		if hit.Knockback != nil && !res.Killed {
			e.Knockback(hit.Knockback.Direction*hit.Knockback.SpeedX, hit.Knockback.SpeedY)
		}
		results = append(results, HitResult{EnemyID: e.ID, Lethal: lethal, DamageResult: res})
	}
	return results
}

// LiveSource отдаёт снимок живых врагов на момент проверки
type LiveSource interface {
	Live() []*entity.Enemy
}

// LaunchContinuous выпускает продолжительный хитбокс: каждые interval область
// снаряда заново проверяется против живых врагов и может бить одного врага повторно.
func (r *Resolver) LaunchContinuous(f *Field, p *Projectile, hit Hit, interval, lifetime time.Duration, src LiveSource) *Projectile {
	return f.Launch(p, interval, lifetime, func(p *Projectile) bool {
		h := hit
		h.Area = p.Bounds()
		r.Resolve(h, src.Live())
		return true
	})
}
