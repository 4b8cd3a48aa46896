// Package parry реализует окно парирования: короткий интервал, в течение
// которого входящий удар превращается в отражённый контрудар.
package parry

import (
	"time"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/schedule"
)

// State состояние парирования
type State int

const (
	Idle State = iota
	Parrying
)

func (s State) String() string {
	if s == Parrying {
		return "parrying"
	}
	return "idle"
}

// Scheduler планирует закрытие окна
type Scheduler interface {
	After(d time.Duration, owner uint64, fn func()) schedule.Handle
}

// Result результат проверки входящего удара
type Result struct {
	Parried       bool
	CounterDamage float64
}

// System автомат парирования игрока
type System struct {
	window   time.Duration
	cooldown time.Duration
	reward   float64

	state       State
	lastAttempt int64 // мс времени симуляции последней успешной попытки
	attempted   bool
	generation  uint64

	scheduler Scheduler
	log       *logging.Logger
}

// New создаёт систему парирования по параметрам игрока
func New(spec catalog.PlayerSpec, scheduler Scheduler) *System {
	return &System{
		window:    time.Duration(spec.ParryWindowMs) * time.Millisecond,
		cooldown:  time.Duration(spec.ParryCooldownMs) * time.Millisecond,
		reward:    spec.ParryReward,
		scheduler: scheduler,
		log:       logging.GetCombatLogger(),
	}
}

// State текущее состояние
func (s *System) State() State { return s.state }

// IsParrying окно открыто
func (s *System) IsParrying() bool { return s.state == Parrying }

// AttemptParry открывает окно, если с прошлой успешной попытки прошла перезарядка.
// Отклонённая попытка ничего не меняет.
func (s *System) AttemptParry(nowMs int64) bool {
	if s.attempted && nowMs-s.lastAttempt < s.cooldown.Milliseconds() {
		return false
	}

	s.attempted = true
	s.lastAttempt = nowMs
	s.state = Parrying
	s.generation++
	gen := s.generation
	s.log.Debug("Parry window opened at %dms", nowMs)

	if s.scheduler != nil {
		s.scheduler.After(s.window, schedule.NoOwner, func() {
			// Более позднее окно закрывается своим событием
			if s.generation == gen {
				s.state = Idle
			}
		})
	}
	return true
}

// CheckParry проверяет входящий удар. Успех не закрывает окно раньше времени.
func (s *System) CheckParry(incoming float64) Result {
	if s.state != Parrying {
		return Result{}
	}
	return Result{Parried: true, CounterDamage: incoming * s.reward}
}

// Reset закрывает окно и сбрасывает перезарядку (возрождение)
func (s *System) Reset() {
	s.state = Idle
	s.attempted = false
	s.generation++
}
