package weapon

import (
	"math"
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/combat"
	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Геометрия форм атаки
const (
	BasicHeight  = 60.0
	BasicYOffset = 30.0

	DashRangeFactor = 1.5
	DashHeight      = 80.0
	DashMultiplier  = 1.5

	ThrowThreshold  = 100.0
	ThrowSpeed      = 400.0
	ThrowWidth      = 30.0
	ThrowHeight     = 10.0
	ThrowFallback   = 300.0
	ThrowMultiplier = 1.2
	ThrowInterval   = 50 * time.Millisecond
	ThrowLifetime   = 2 * time.Second

	WaveRangeFactor = 2.0
	WaveHeight      = 100.0
	WaveSpeed       = 300.0
	WaveMultiplier  = 2.0
	WaveInterval    = 100 * time.Millisecond
	WaveLifetime    = 800 * time.Millisecond
)

// Kind форма атаки
type Kind string

const (
	KindBasic     Kind = "basic"
	KindDash      Kind = "dash"
	KindThrow     Kind = "throw"
	KindBasicWave Kind = "basic+wave"
)

// Context состояние игрока в момент атаки
type Context struct {
	Position vec.Vec2
	Facing   float64 // -1 влево, 1 вправо
	Dashing  bool
	Target   vec.Vec2 // точка прицеливания
}

func (c Context) direction() float64 {
	if c.Facing < 0 {
		return -1
	}
	return 1
}

// Arena враги уровня, доступные оружию
type Arena interface {
	Live() []*entity.Enemy
	Nearest(from vec.Vec2) (*entity.Enemy, bool)
}

// Report итог атаки
type Report struct {
	Kind       Kind
	Hits       []combat.HitResult
	Projectile *combat.Projectile
	Wave       *combat.Projectile
}

// Choose выбирает форму атаки по уровню и состоянию игрока
func Choose(level int, ctx Context) Kind {
	switch level {
	case 2:
		if ctx.Dashing {
			return KindDash
		}
	case 3:
		if math.Abs(ctx.Target.X-ctx.Position.X) > ThrowThreshold {
			return KindThrow
		}
	case 4:
		return KindBasicWave
	}
	return KindBasic
}

// BasicArea хитбокс базового удара в направлении взгляда
func BasicArea(pos vec.Vec2, dir, reach float64) physics.Rect {
	return physics.Rect{
		X: pos.X + dir*reach - reach/2,
		Y: pos.Y - BasicYOffset,
		W: reach,
		H: BasicHeight,
	}
}

// DashArea хитбокс атаки в рывке
func DashArea(pos vec.Vec2, dir, reach float64) physics.Rect {
	center := vec.Vec2{X: pos.X + dir*reach*DashRangeFactor, Y: pos.Y}
	return physics.RectFromCenter(center, reach*DashRangeFactor, DashHeight)
}

// Executor выполняет атаки оружия против врагов уровня
type Executor struct {
	resolver *combat.Resolver
	field    *combat.Field
	arena    Arena
	log      *logging.Logger
}

// NewExecutor создаёт исполнителя атак
func NewExecutor(resolver *combat.Resolver, field *combat.Field, arena Arena) *Executor {
	return &Executor{
		resolver: resolver,
		field:    field,
		arena:    arena,
		log:      logging.GetCombatLogger(),
	}
}

// Attack выполняет атаку оружием. Перезарядка из каталога не применяется.
func (x *Executor) Attack(w *Weapon, ctx Context) Report {
	stats := w.Stats()
	dir := ctx.direction()
	// Последний уровень убивает базовых врагов с одного удара при любом каталоге
	oneShot := w.Level() == catalog.MaxWeaponLevel
	kind := Choose(w.Level(), ctx)

	report := Report{Kind: kind}
	switch kind {
	case KindBasic:
		report.Hits = x.basic(w, ctx, dir, oneShot)

	case KindDash:
		report.Hits = x.resolver.Resolve(combat.Hit{
			Area:         DashArea(ctx.Position, dir, stats.Range),
			BaseDamage:   w.Damage(),
			Multiplier:   DashMultiplier,
			OneShotBasic: oneShot,
		}, x.arena.Live())

	case KindThrow:
		report.Projectile = x.throw(w, ctx, dir, oneShot)

	case KindBasicWave:
		report.Hits = x.basic(w, ctx, dir, oneShot)
		report.Wave = x.wave(w, ctx, dir, oneShot)
	}

	x.log.Trace("%s attack %s: %d hits", w.Label(), kind, len(report.Hits))
	return report
}

func (x *Executor) basic(w *Weapon, ctx Context, dir float64, oneShot bool) []combat.HitResult {
	return x.resolver.Resolve(combat.Hit{
		Area:         BasicArea(ctx.Position, dir, w.Stats().Range),
		BaseDamage:   w.Damage(),
		Multiplier:   1,
		OneShotBasic: oneShot,
		Knockback:    combat.DefaultKnockback(dir),
	}, x.arena.Live())
}

func (x *Executor) throw(w *Weapon, ctx Context, dir float64, oneShot bool) *combat.Projectile {
	p := &combat.Projectile{
		Kind:     "thrown_" + w.Key(),
		Position: ctx.Position,
		Size:     vec.Vec2{X: ThrowWidth, Y: ThrowHeight},
		Speed:    ThrowSpeed,
	}
	if target, ok := x.arena.Nearest(ctx.Position); ok {
		p.TargetID = target.ID
		p.Aim(target.Position())
	} else {
		p.Aim(vec.Vec2{X: ctx.Position.X + dir*ThrowFallback, Y: ctx.Position.Y})
	}
	hit := combat.Hit{BaseDamage: w.Damage(), Multiplier: ThrowMultiplier, OneShotBasic: oneShot}
	return x.resolver.LaunchContinuous(x.field, p, hit, ThrowInterval, ThrowLifetime, x.arena)
}

func (x *Executor) wave(w *Weapon, ctx Context, dir float64, oneShot bool) *combat.Projectile {
	p := &combat.Projectile{
		Kind:     "wave_" + w.Key(),
		Position: ctx.Position,
		Size:     vec.Vec2{X: w.Stats().Range * WaveRangeFactor, Y: WaveHeight},
		Velocity: vec.Vec2{X: dir * WaveSpeed},
		Speed:    WaveSpeed,
	}
	hit := combat.Hit{BaseDamage: w.Damage(), Multiplier: WaveMultiplier, OneShotBasic: oneShot}
	return x.resolver.LaunchContinuous(x.field, p, hit, WaveInterval, WaveLifetime, x.arena)
}
