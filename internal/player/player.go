// Package player реализует боевое состояние игрока: движение, рывок,
// получение урона через парирование, лечение, смерть и применение улучшений.
package player

import (
	"math"
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/parry"
	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
	"github.com/annel0/roguelite-platformer/internal/weapon"
)

// AttackTargetOffset точка атаки с клавиатуры перед игроком
const AttackTargetOffset = 100.0

// Clock планировщик и время симуляции
type Clock interface {
	After(d time.Duration, owner uint64, fn func()) schedule.Handle
	NowMs() int64
}

// Command действие, которое игрок запросил в этом тике
type Command struct {
	Attack bool
	Target vec.Vec2
}

// Outcome исход входящего удара
type Outcome int

const (
	Ignored Outcome = iota // неуязвим или мёртв
	Parried
	Applied
	Killed
)

// HitResult результат TakeDamage
type HitResult struct {
	Outcome       Outcome
	CounterDamage float64
}

// Player боевое состояние игрока, принадлежит симуляции
type Player struct {
	Body      *physics.Body
	Health    float64
	MaxHealth float64
	Speed     float64
	Facing    float64
	Dead      bool
	Dashing   bool

	spec     catalog.PlayerSpec
	upgrades catalog.UpgradeSpec
	weapons  *weapon.Manager
	parry    *parry.System
	clock    Clock
	emitter  notify.Emitter

	invulnerable int    // число активных источников неуязвимости
	life         uint64 // растёт при возрождении, события прошлой жизни игнорируются
	lastDashMs   int64
	dashed       bool

	log *logging.Logger
}

// New создаёт игрока в точке возрождения
func New(cat *catalog.Catalog, clock Clock, emitter notify.Emitter) *Player {
	spec := cat.Player
	body := physics.NewBody(vec.New(spec.SpawnX, spec.SpawnY), spec.Width, spec.Height)
	body.MaxSpeed = vec.New(spec.MaxVelocityX, spec.MaxVelocityY)

	emitter = notify.OrNop(emitter)
	return &Player{
		Body:      body,
		Health:    spec.BaseHealth,
		MaxHealth: spec.BaseHealth,
		Speed:     spec.BaseSpeed,
		Facing:    1,
		spec:      spec,
		upgrades:  cat.Upgrades,
		weapons:   weapon.NewManager(cat, emitter),
		parry:     parry.New(spec, clock),
		clock:     clock,
		emitter:   emitter,
		log:       logging.GetComponentLogger("player"),
	}
}

// Position центр тела игрока
func (p *Player) Position() vec.Vec2 { return p.Body.Position }

// Bounds AABB игрока
func (p *Player) Bounds() physics.Rect { return p.Body.Bounds() }

// Weapons инвентарь оружия
func (p *Player) Weapons() *weapon.Manager { return p.weapons }

// Parry система парирования игрока
func (p *Player) Parry() *parry.System { return p.parry }

// Invulnerable активна ли неуязвимость (рывок или недавний удар)
func (p *Player) Invulnerable() bool { return p.invulnerable > 0 }

// Hurt здоровье ниже максимума
func (p *Player) Hurt() bool { return p.Health < p.MaxHealth }

// HandleInput применяет ввод тика: атака, рывок, парирование, смена оружия,
// движение, прыжок.
// Саму атаку выполняет вызывающий по возвращённой команде.
func (p *Player) HandleInput(in Input) Command {
	var cmd Command
	if p.Dead || in == nil {
		return cmd
	}

	if in.JustPressed(ActionAttack) {
		cmd.Attack = true
		cmd.Target = p.attackTarget(in)
	}
	if in.JustPressed(ActionDash) {
		p.Dash()
	}
	if in.JustPressed(ActionParry) {
		p.parry.AttemptParry(p.clock.NowMs())
	}
	if in.JustPressed(ActionSwitchWeapon) {
		w := p.weapons.Cycle()
		p.log.Debug("Weapon switched to %s", w.Label())
	}

	// Во время рывка горизонтальная скорость задана рывком
	if !p.Dashing {
		switch {
		case in.Held(ActionLeft):
			p.Body.Velocity.X = -p.Speed
			p.Facing = -1
		case in.Held(ActionRight):
			p.Body.Velocity.X = p.Speed
			p.Facing = 1
		default:
			p.Body.Velocity.X = 0
		}
	}

	if in.JustPressed(ActionJump) && p.Body.OnFloor {
		p.Body.Velocity.Y = p.spec.JumpForce
	}
	return cmd
}

func (p *Player) attackTarget(in Input) vec.Vec2 {
	if aimer, ok := in.(Aimer); ok {
		if target, ok := aimer.Aim(); ok {
			return target
		}
	}
	return vec.New(p.Body.Position.X+p.Facing*AttackTargetOffset, p.Body.Position.Y)
}

// AttackContext состояние игрока для оружия
func (p *Player) AttackContext(target vec.Vec2) weapon.Context {
	return weapon.Context{
		Position: p.Body.Position,
		Facing:   p.Facing,
		Dashing:  p.Dashing,
		Target:   target,
	}
}

// Dash выполняет рывок, если прошла перезарядка. Во время рывка игрок неуязвим.
func (p *Player) Dash() bool {
	if p.Dead {
		return false
	}
	now := p.clock.NowMs()
	if p.dashed && now-p.lastDashMs < int64(p.spec.DashCooldownMs) {
		return false
	}

	p.dashed = true
	p.lastDashMs = now
	p.Dashing = true
	p.Body.Velocity.X = p.Facing * p.spec.DashSpeed

	duration := time.Duration(p.spec.DashDurationMs) * time.Millisecond
	p.grantInvulnerability(duration)
	life := p.life
	p.clock.After(duration, schedule.NoOwner, func() {
		if p.life == life {
			p.Dashing = false
		}
	})
	p.log.Trace("Dash at %dms", now)
	return true
}

func (p *Player) grantInvulnerability(d time.Duration) {
	p.invulnerable++
	life := p.life
	p.clock.After(d, schedule.NoOwner, func() {
		if p.life == life && p.invulnerable > 0 {
			p.invulnerable--
		}
	})
}

// TakeDamage принимает удар врага. Неуязвимость и смерть игнорируют удар,
// открытое окно парирования отражает его без потери здоровья.
func (p *Player) TakeDamage(amount float64, attackerID uint64) HitResult {
	if p.Invulnerable() || p.Dead {
		return HitResult{Outcome: Ignored}
	}

	if res := p.parry.CheckParry(amount); res.Parried {
		p.log.Debug("Parried %.1f from %d, counter %.1f", amount, attackerID, res.CounterDamage)
		p.emitter.Emit(notify.ParrySuccess{CounterDamage: res.CounterDamage, AttackerID: attackerID})
		return HitResult{Outcome: Parried, CounterDamage: res.CounterDamage}
	}

	p.Health = math.Max(0, p.Health-amount)
	p.grantInvulnerability(time.Duration(p.spec.HitInvulnerabilityMs) * time.Millisecond)
	p.emitHealth()

	if p.Health <= 0 {
		p.die()
		return HitResult{Outcome: Killed}
	}
	return HitResult{Outcome: Applied}
}

// Heal лечит с ограничением максимумом и возвращает фактическое лечение
func (p *Player) Heal(amount float64) float64 {
	if p.Dead || amount <= 0 {
		return 0
	}
	before := p.Health
	p.Health = math.Min(p.Health+amount, p.MaxHealth)
	p.emitHealth()
	return p.Health - before
}

func (p *Player) die() {
	p.Dead = true
	p.Dashing = false
	p.Body.Velocity = vec.Zero
	p.log.Info("Player died")
}

// Respawn возвращает игрока в точку старта с полным здоровьем
func (p *Player) Respawn() {
	p.life++
	p.Health = p.MaxHealth
	p.Dead = false
	p.Dashing = false
	p.invulnerable = 0
	p.dashed = false
	p.Facing = 1
	p.Body.Position = vec.New(p.spec.SpawnX, p.spec.SpawnY)
	p.Body.Velocity = vec.Zero
	p.parry.Reset()
	p.emitHealth()
}

// Step двигает тело игрока
func (p *Player) Step(dt float64, world *physics.World) {
	if p.Dead {
		return
	}
	p.Body.Step(dt, world)
}

// ApplyUpgrades пересчитывает характеристики из сохранённых улучшений (старт уровня)
func (p *Player) ApplyUpgrades(u progression.CurrentUpgrades) {
	p.MaxHealth = p.spec.BaseHealth + float64(u.Health)*p.upgrades.HealthPerLevel
	p.Health = p.MaxHealth
	p.Speed = p.spec.BaseSpeed + float64(u.Speed)*p.upgrades.SpeedPerLevel

	level := u.WeaponLevel
	if level > catalog.MaxWeaponLevel {
		level = catalog.MaxWeaponLevel
	}
	p.weapons.SetCurrentLevel(level)
	p.weapons.SetBonusDamage(float64(u.WeaponDamage) * p.upgrades.DamagePerUpgrade)

	p.emitHealth()
	p.log.Debug("Upgrades applied: hp=%.0f speed=%.0f weapon=%d", p.MaxHealth, p.Speed, level)
}

// ApplyPurchase применяет купленное посреди уровня улучшение; level новый уровень улучшения
func (p *Player) ApplyPurchase(t catalog.UpgradeType, level int) {
	switch t {
	case catalog.UpgradeWeaponLevel:
		p.weapons.UpgradeCurrent()
	case catalog.UpgradeWeaponDamage:
		p.weapons.SetBonusDamage(float64(level) * p.upgrades.DamagePerUpgrade)
	case catalog.UpgradeHealth:
		p.MaxHealth += p.upgrades.HealthPerLevel
		p.Heal(p.upgrades.HealthPerLevel)
	case catalog.UpgradeSpeed:
		p.Speed += p.upgrades.SpeedPerLevel
	}
}

func (p *Player) emitHealth() {
	p.emitter.Emit(notify.HealthChanged{Health: p.Health, MaxHealth: p.MaxHealth})
}
