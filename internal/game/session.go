// Package game ведёт один забег по уровню: тиковый цикл, столкновения,
// награды, завершение уровня, смерть и перезапуск.
package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/combat"
	"github.com/annel0/roguelite-platformer/internal/encounter"
	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/notify"
	"github.com/annel0/roguelite-platformer/internal/player"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/weapon"
)

// OverlapPushSpeed скорость, с которой враг отталкивается от игрока при наложении
const OverlapPushSpeed = 200.0

// Phase состояние забега
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseDead
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseDead:
		return "dead"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// TickObserver получает длительность каждого тика (метрики)
type TickObserver interface {
	ObserveTick(d time.Duration)
}

// Options параметры забега. Нулевые значения берутся из каталога.
type Options struct {
	Level       int
	LevelLength float64
	Seed        int64
	TickRate    int
	Observer    TickObserver
}

// Session один уровень от старта до смерти или финиша
type Session struct {
	cat      *catalog.Catalog
	progress *progression.Store
	emitter  notify.Emitter
	observer TickObserver

	level  int
	length float64
	seed   int64
	runs   int
	dt     float64

	rng       *rand.Rand
	queue     *schedule.Queue
	player    *player.Player
	enemies   *entity.Manager
	field     *combat.Field
	arrows    *combat.Field
	executor  *weapon.Executor
	generator *encounter.Generator
	layout    *encounter.Layout

	phase Phase
	log   *logging.Logger
}

// ErrLevelLocked уровень ещё не открыт в хабе
var ErrLevelLocked = errors.New("game: уровень закрыт")

// NewSession собирает уровень и применяет сохранённые улучшения к игроку.
// Закрытый уровень не запускается.
func NewSession(cat *catalog.Catalog, progress *progression.Store, emitter notify.Emitter, opts Options) (*Session, error) {
	if opts.Level <= 0 {
		opts.Level = 1
	}
	if !progress.IsLevelUnlocked(opts.Level) {
		return nil, fmt.Errorf("%w: %d (открыто %d)", ErrLevelLocked, opts.Level, progress.UnlockedLevels())
	}
	if opts.LevelLength <= 0 {
		opts.LevelLength = cat.Level.Length
	}
	if opts.TickRate <= 0 {
		opts.TickRate = schedule.DefaultTickRate
	}

	s := &Session{
		cat:      cat,
		progress: progress,
		emitter:  notify.OrNop(emitter),
		observer: opts.Observer,
		level:    opts.Level,
		length:   opts.LevelLength,
		seed:     opts.Seed,
		dt:       1 / float64(opts.TickRate),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		queue:    schedule.New(opts.TickRate),
		log:      logging.GetComponentLogger("game"),
	}

	s.enemies = entity.NewManager(cat, s.queue, s.emitter)
	s.enemies.OnKilled(func(*entity.Enemy) {
		s.progress.AddCoins(cat.Level.KillReward)
	})
	s.queue.SetLiveness(s.enemies.IsAlive)

	s.player = player.New(cat, s.queue, s.emitter)
	s.field = combat.NewField(s.queue, s.enemies)
	s.arrows = combat.NewField(s.queue, nil)
	s.executor = weapon.NewExecutor(combat.NewResolver(s.enemies), s.field, s.enemies)
	s.generator = encounter.NewGenerator(cat, s.rng)

	s.player.ApplyUpgrades(progress.Snapshot().CurrentUpgrades)
	s.emitter.Emit(notify.CoinsChanged{Coins: progress.Coins()})
	s.build()
	return s, nil
}

func (s *Session) build() {
	s.layout = s.generator.BuildLayout(s.length, s.seed+int64(s.runs))
	spawned := s.generator.Populate(s.length, s.enemies)
	s.phase = PhasePlaying
	s.log.Info("Level %d started: length=%.0f enemies=%d packs=%d",
		s.level, s.length, len(spawned), len(s.layout.HealthPacks))
}

// Tick продвигает забег на один тик. После смерти или финиша ничего не делает.
func (s *Session) Tick(in player.Input) Phase {
	if s.phase != PhasePlaying {
		return s.phase
	}
	start := time.Now()

	if cmd := s.player.HandleInput(in); cmd.Attack {
		s.executor.Attack(s.player.Weapons().Current(), s.player.AttackContext(cmd.Target))
	}

	// Все намерения считаются до применения и столкновений
	decisions := s.enemies.ComputeIntents(s.player.Position(), s.rng)
	for _, d := range decisions {
		s.enemies.ApplyIntent(d)
	}
	for _, d := range decisions {
		switch {
		case d.Intent.Shoot:
			s.shootArrow(d.Enemy)
		case d.Intent.Attack:
			s.hitPlayer(d.Enemy.ID, d.Enemy.Damage)
		}
	}

	world := s.layout.World
	s.player.Step(s.dt, world)
	s.enemies.Step(s.dt, world)
	s.field.Step(s.dt)
	s.arrows.Step(s.dt)

	s.pushOverlapping()
	s.collectPacks()

	switch {
	case s.player.Dead:
		s.onDeath()
	case s.player.Bounds().Intersects(s.layout.Finish):
		s.onComplete()
	}

	s.enemies.Prune()
	s.queue.Advance()

	if s.observer != nil {
		s.observer.ObserveTick(time.Since(start))
	}
	return s.phase
}

// Run крутит тики, пока забег не закончится или не выйдут maxTicks
func (s *Session) Run(input func(tick schedule.Tick) player.Input, maxTicks int) Phase {
	for i := 0; i < maxTicks && s.phase == PhasePlaying; i++ {
		var in player.Input
		if input != nil {
			in = input(s.queue.Now())
		}
		s.Tick(in)
	}
	return s.phase
}

// hitPlayer наносит удар игроку. Парированный удар возвращается атакующему.
func (s *Session) hitPlayer(attackerID uint64, damage float64) player.HitResult {
	res := s.player.TakeDamage(damage, attackerID)
	if res.Outcome != player.Parried || res.CounterDamage <= 0 {
		return res
	}
	if attacker, ok := s.enemies.Get(attackerID); ok && attacker.Alive() {
		s.enemies.Damage(attacker, res.CounterDamage, false)
	}
	return res
}

func (s *Session) pushOverlapping() {
	if s.player.Dead {
		return
	}
	pb := s.player.Bounds()
	px := s.player.Position().X
	for _, e := range s.enemies.Live() {
		if !pb.Intersects(e.Bounds()) {
			continue
		}
		dir := 1.0
		if e.Position().X < px {
			dir = -1
		}
		e.Body.Velocity.X = dir * OverlapPushSpeed
	}
}

// collectPacks подбирает аптечки, только если игрок ранен
func (s *Session) collectPacks() {
	if s.player.Dead {
		return
	}
	pb := s.player.Bounds()
	for _, hp := range s.layout.ActivePacks() {
		if !s.player.Hurt() {
			return
		}
		if !pb.Intersects(hp.Area) {
			continue
		}
		roll, amount := encounter.RollHeal(s.rng)
		healed := s.player.Heal(amount)
		hp.Collected = true
		s.emitter.Emit(notify.HealthPackCollected{Roll: roll, Healed: healed})
		s.log.Debug("Health pack %d: roll=%d healed=%.0f", hp.ID, roll, healed)
	}
}

func (s *Session) onDeath() {
	s.phase = PhaseDead
	s.progress.ApplyDeathDecay()
	s.emitter.Emit(notify.PlayerDied{Level: s.level})
	s.log.Info("Player died on level %d at x=%.0f", s.level, s.player.Position().X)
}

func (s *Session) onComplete() {
	s.phase = PhaseComplete
	unlocked, newUnlock := s.progress.CompleteLevel(s.level)
	s.emitter.Emit(notify.LevelComplete{Level: s.level, UnlockedLevels: unlocked, NewUnlock: newUnlock})
	s.log.Info("Level %d complete, unlocked=%d", s.level, unlocked)
}

// Restart начинает уровень заново: возрождение, улучшения после штрафа,
// перемешанный пул и новая генерация.
func (s *Session) Restart() {
	s.queue.Clear()
	s.field.Clear()
	s.arrows.Clear()
	s.enemies.Clear()

	s.player.Respawn()
	s.player.ApplyUpgrades(s.progress.Snapshot().CurrentUpgrades)
	s.generator.ShufflePool()
	s.runs++
	s.build()
}

// PurchaseUpgrade покупает улучшение посреди уровня и сразу применяет его к игроку
func (s *Session) PurchaseUpgrade(t catalog.UpgradeType) bool {
	if !s.progress.PurchaseUpgrade(t) {
		return false
	}
	s.player.ApplyPurchase(t, s.progress.UpgradeLevel(t))
	return true
}

// Phase текущее состояние забега
func (s *Session) Phase() Phase { return s.phase }

// Level номер уровня
func (s *Session) Level() int { return s.level }

// Now текущий тик
func (s *Session) Now() schedule.Tick { return s.queue.Now() }

func (s *Session) Player() *player.Player    { return s.player }
func (s *Session) Enemies() *entity.Manager  { return s.enemies }
func (s *Session) Layout() *encounter.Layout { return s.layout }

// Projectiles активные снаряды игрока и стрелы врагов
func (s *Session) Projectiles() []*combat.Projectile {
	return append(s.field.Active(), s.arrows.Active()...)
}

// Snapshot краткое состояние забега для вывода
type Snapshot struct {
	Tick      schedule.Tick `json:"tick"`
	Phase     string        `json:"phase"`
	PlayerX   float64       `json:"playerX"`
	Health    float64       `json:"health"`
	MaxHealth float64       `json:"maxHealth"`
	Enemies   int           `json:"enemies"`
	Coins     int           `json:"coins"`
}

// Snapshot снимает текущее состояние
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Tick:      s.queue.Now(),
		Phase:     s.phase.String(),
		PlayerX:   math.Round(s.player.Position().X),
		Health:    s.player.Health,
		MaxHealth: s.player.MaxHealth,
		Enemies:   s.enemies.Count(),
		Coins:     s.progress.Coins(),
	}
}
