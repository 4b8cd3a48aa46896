package game

import (
	"math"

	"github.com/annel0/roguelite-platformer/internal/player"
	"github.com/annel0/roguelite-platformer/internal/progression"
	"github.com/annel0/roguelite-platformer/internal/schedule"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Параметры скриптового бота
const (
	botEngageRange  = 110.0
	botParryRange   = 70.0
	botAttackEvery  = 20
	botParryEvery   = 45
	botStuckTicks   = 30
	botDashCooldown = 120
)

// Bot простая политика ввода для безголовых прогонов: идёт вправо,
// бьёт ближайшего врага, прыгает при застревании.
type Bot struct {
	s        *Session
	lastX    float64
	stuck    int
	nextDash schedule.Tick
}

// NewBot создаёт бота для сессии
func NewBot(s *Session) *Bot {
	return &Bot{s: s, lastX: math.Inf(-1)}
}

// Input формирует кадр ввода на тик
func (b *Bot) Input(tick schedule.Tick) player.Input {
	pos := b.s.Player().Position()
	frame := player.Hold(player.ActionRight)
	frame.Pressed = map[player.Action]bool{}

	if pos.X-b.lastX < 0.5 {
		b.stuck++
	} else {
		b.stuck = 0
	}
	b.lastX = pos.X

	if e, ok := b.s.Enemies().Nearest(pos); ok {
		target := e.Position()
		dist := pos.DistanceTo(target)
		if dist < botEngageRange {
			// Стоим на месте и бьём в сторону врага
			delete(frame.Down, player.ActionRight)
			if target.X < pos.X {
				frame.Down[player.ActionLeft] = dist > botParryRange
			}
			aim := vec.Vec2{X: target.X, Y: target.Y}
			frame.Target = &aim
			if tick%botAttackEvery == 0 {
				frame.Pressed[player.ActionAttack] = true
			}
			if dist < botParryRange && tick%botParryEvery == 0 {
				frame.Pressed[player.ActionParry] = true
			}
			return frame
		}
	}

	if b.stuck >= botStuckTicks {
		frame.Pressed[player.ActionJump] = true
		b.stuck = 0
	}
	if b.s.progress.HasMovementUnlock(progression.UnlockDash) && tick >= b.nextDash {
		frame.Pressed[player.ActionDash] = true
		b.nextDash = tick + botDashCooldown
	}
	return frame
}
