package game

import (
	"time"

	"github.com/annel0/roguelite-platformer/internal/combat"
	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Стрела лучника
const (
	ArrowWidth     = 20.0
	ArrowHeight    = 4.0
	ArrowSpeed     = 250.0
	ArrowHitRadius = 30.0
	ArrowInterval  = 50 * time.Millisecond
	ArrowLifetime  = 3 * time.Second
)

// shootArrow выпускает стрелу в текущую позицию игрока. Стрела летит прямо,
// без гравитации, и исчезает после первого попадания даже по неуязвимому игроку.
func (s *Session) shootArrow(archer *entity.Enemy) *combat.Projectile {
	arrow := &combat.Projectile{
		Kind:     "arrow",
		Position: archer.Position(),
		Size:     vec.New(ArrowWidth, ArrowHeight),
		Speed:    ArrowSpeed,
	}
	arrow.Aim(s.player.Position())

	archerID, damage := archer.ID, archer.Damage
	return s.arrows.Launch(arrow, ArrowInterval, ArrowLifetime, func(p *combat.Projectile) bool {
		if p.Position.DistanceTo(s.player.Position()) >= ArrowHitRadius {
			return true
		}
		s.hitPlayer(archerID, damage)
		return false
	})
}
