package entity

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Длительности, задаваемые событиями очереди
const (
	FlashDuration  = 200 * time.Millisecond
	DefendDuration = 2 * time.Second
)

// Scheduler планирует колбэк от имени владельца
type Scheduler interface {
	After(d time.Duration, owner uint64, fn func()) schedule.Handle
}

// KillHandler вызывается ровно один раз при уничтожении врага
type KillHandler func(e *Enemy)

// Decision намерение конкретного врага в текущем тике
type Decision struct {
	Enemy  *Enemy
	Intent Intent
}

// Manager реестр врагов уровня
type Manager struct {
	catalog   *catalog.Catalog
	scheduler Scheduler
	emitter   notify.Emitter
	onKilled  KillHandler

	enemies map[uint64]*Enemy
	order   []uint64 // порядок спавна для детерминированного обхода
	nextID  uint64
	log     *logging.Logger
}

// NewManager создаёт менеджер врагов
func NewManager(cat *catalog.Catalog, scheduler Scheduler, emitter notify.Emitter) *Manager {
	return &Manager{
		catalog:   cat,
		scheduler: scheduler,
		emitter:   notify.OrNop(emitter),
		enemies:   make(map[uint64]*Enemy),
		nextID:    1,
		log:       logging.GetAILogger(),
	}
}

// OnKilled задаёт обработчик уничтожения (награда)
func (m *Manager) OnKilled(h KillHandler) {
	m.onKilled = h
}

// Spawn создаёт врага архетипа tag заданного тира
func (m *Manager) Spawn(tag string, tier catalog.Tier, pos vec.Vec2) (*Enemy, error) {
	arch, ok := m.catalog.Archetype(tag)
	if !ok {
		return nil, fmt.Errorf("unknown archetype %q", tag)
	}

	id := m.nextID
	m.nextID++

	e := NewEnemy(id, arch, tier, m.catalog.Tier(tier), pos)
	// Элитные размеры не должны утопить врага в земле
	if bottom := e.Body.Position.Y + e.Body.Size.Y/2; bottom > physics.GroundTop {
		e.Body.Position.Y = physics.GroundTop - e.Body.Size.Y/2
	}
	m.enemies[id] = e
	m.order = append(m.order, id)

	m.log.Debug("Spawned %s #%d tier=%s hp=%.0f at (%.0f, %.0f)", tag, id, e.Tier, e.Health, pos.X, pos.Y)
	return e, nil
}

// Get возвращает врага по ID
func (m *Manager) Get(id uint64) (*Enemy, bool) {
	e, ok := m.enemies[id]
	return e, ok
}

// IsAlive проверка жизни владельца для очереди событий
func (m *Manager) IsAlive(id uint64) bool {
	_, ok := m.alive(id)
	return ok
}

// alive ищет врага в реестре. Отложенные колбэки держат только ID.
func (m *Manager) alive(id uint64) (*Enemy, bool) {
	e, ok := m.enemies[id]
	if !ok || !e.Alive() {
		return nil, false
	}
	return e, true
}

// Live снимок живых врагов в порядке спавна
func (m *Manager) Live() []*Enemy {
	live := make([]*Enemy, 0, len(m.order))
	for _, id := range m.order {
		if e := m.enemies[id]; e != nil && e.Alive() {
			live = append(live, e)
		}
	}
	return live
}

// Count число живых врагов
func (m *Manager) Count() int {
	return len(m.Live())
}

// ComputeIntents вычисляет намерения всех живых врагов до разрешения столкновений
func (m *Manager) ComputeIntents(playerPos vec.Vec2, rng *rand.Rand) []Decision {
	live := m.Live()
	decisions := make([]Decision, 0, len(live))
	for _, e := range live {
		decisions = append(decisions, Decision{Enemy: e, Intent: ComputeIntent(e, playerPos, rng)})
	}
	return decisions
}

// ApplyIntent применяет скорость из намерения и планирует выход из защиты
func (m *Manager) ApplyIntent(d Decision) {
	e := d.Enemy
	if !e.Alive() {
		return
	}
	if d.Intent.SetVelocityX {
		e.Body.Velocity.X = d.Intent.VelocityX
	}
	if d.Intent.SetVelocityY {
		e.Body.Velocity.Y = d.Intent.VelocityY
	}
	if d.Intent.BeganDefending && m.scheduler != nil {
		id := e.ID
		m.scheduler.After(DefendDuration, id, func() {
			e, ok := m.alive(id)
			if !ok {
				return
			}
			if st, ok := e.Behavior.(*TurtleState); ok {
				st.Defending = false
				logging.LogEnemyTransition(e.ID, e.Archetype.Tag, "defending", "walking")
			}
		})
	}
}

// Damage наносит урон врагу, уведомляет слушателей и выдаёт награду при уничтожении
func (m *Manager) Damage(e *Enemy, amount float64, lethal bool) DamageResult {
	res := e.TakeDamage(amount, lethal)
	if res.Ignored {
		return res
	}
	logging.LogHit(e.ID, res.Applied, lethal)

	m.emitter.Emit(notify.EnemyDamaged{EnemyID: e.ID, Amount: res.Applied, Health: e.Health})
	if m.scheduler != nil && !res.Killed {
		id := e.ID
		m.scheduler.After(FlashDuration, id, func() {
			if e, ok := m.alive(id); ok {
				e.Flashing = false
			}
		})
	}

	if res.Killed {
		reward := m.catalog.Level.KillReward
		m.log.Debug("Enemy #%d (%s, %s) destroyed", e.ID, e.Archetype.Tag, e.Tier)
		m.emitter.Emit(notify.EnemyKilled{
			EnemyID:   e.ID,
			Archetype: e.Archetype.Tag,
			Tier:      string(e.Tier),
			Reward:    reward,
		})
		if m.onKilled != nil {
			m.onKilled(e)
		}
	}
	return res
}

// Step интегрирует физику живых врагов
func (m *Manager) Step(dt float64, world *physics.World) {
	for _, e := range m.Live() {
		e.Body.Step(dt, world)
	}
}

// Prune удаляет уничтоженных врагов из реестра
func (m *Manager) Prune() {
	kept := m.order[:0]
	for _, id := range m.order {
		if e := m.enemies[id]; e != nil && !e.Destroyed {
			kept = append(kept, id)
			continue
		}
		delete(m.enemies, id)
	}
	m.order = kept
}

// Clear удаляет всех врагов (разбор уровня). Отложенные события владельцев
// становятся пустыми, так как владельцы больше не живы.
func (m *Manager) Clear() {
	for _, e := range m.enemies {
		e.Destroyed = true
	}
	m.enemies = make(map[uint64]*Enemy)
	m.order = nil
}

// Locate возвращает позицию живого врага (наведение снарядов)
func (m *Manager) Locate(id uint64) (vec.Vec2, bool) {
	e, ok := m.enemies[id]
	if !ok || !e.Alive() {
		return vec.Vec2{}, false
	}
	return e.Position(), true
}

// Nearest возвращает ближайшего к точке живого врага
func (m *Manager) Nearest(from vec.Vec2) (*Enemy, bool) {
	var best *Enemy
	bestDist := 0.0
	for _, e := range m.Live() {
		d := from.DistanceTo(e.Position())
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, best != nil
}
