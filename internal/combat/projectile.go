package combat

import (
	"time"

	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Scheduler очередь событий для повторных проверок и времени жизни
type Scheduler interface {
	Every(interval, lifetime time.Duration, owner uint64, fn func() bool, done func())
}

// Locator находит позицию живой цели по ID
type Locator interface {
	Locate(id uint64) (vec.Vec2, bool)
}

// Projectile движущийся хитбокс: брошенный меч, магическая волна, стрела
type Projectile struct {
	ID       uint64
	Kind     string
	Position vec.Vec2 // центр
	Velocity vec.Vec2
	Size     vec.Vec2
	Speed    float64
	TargetID uint64 // 0 = без наведения
	Active   bool
}

// Bounds текущий AABB снаряда
func (p *Projectile) Bounds() physics.Rect {
	return physics.RectFromCenter(p.Position, p.Size.X, p.Size.Y)
}

// Aim направляет скорость на точку
func (p *Projectile) Aim(target vec.Vec2) {
	dir := target.Sub(p.Position)
	p.Velocity = vec.FromAngle(dir.Angle(), p.Speed)
}

// CheckFunc проверка попадания. false завершает жизнь снаряда.
type CheckFunc func(p *Projectile) bool

// Field множество активных снарядов уровня
type Field struct {
	scheduler   Scheduler
	locator     Locator
	projectiles []*Projectile
	nextID      uint64
}

// NewField создаёт поле снарядов
func NewField(s Scheduler, l Locator) *Field {
	return &Field{scheduler: s, locator: l, nextID: 1}
}

// Launch выпускает снаряд: проверка каждые interval, исчезновение через lifetime
func (f *Field) Launch(p *Projectile, interval, lifetime time.Duration, check CheckFunc) *Projectile {
	p.ID = f.nextID
	f.nextID++
	p.Active = true
	f.projectiles = append(f.projectiles, p)

	f.scheduler.Every(interval, lifetime, schedule.NoOwner, func() bool {
		return p.Active && check(p)
	}, func() {
		p.Active = false
	})
	return p
}

// Step переводит снаряды на dt секунд. Самонаводящиеся перенацеливаются на живую
// цель, после её смерти летят прямо.
func (f *Field) Step(dt float64) {
	kept := f.projectiles[:0]
	for _, p := range f.projectiles {
		if !p.Active {
			continue
		}
		if p.TargetID != 0 && f.locator != nil {
			if target, ok := f.locator.Locate(p.TargetID); ok {
				p.Aim(target)
			} else {
				p.TargetID = 0
			}
		}
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		kept = append(kept, p)
	}
	f.projectiles = kept
}

// Active снимок активных снарядов
func (f *Field) Active() []*Projectile {
	out := make([]*Projectile, 0, len(f.projectiles))
	for _, p := range f.projectiles {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

// Clear гасит все снаряды
func (f *Field) Clear() {
	for _, p := range f.projectiles {
		p.Active = false
	}
	f.projectiles = nil
}
