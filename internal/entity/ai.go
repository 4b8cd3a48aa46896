package entity

import (
	"math"
	"math/rand"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Параметры базовых политик
const (
	RangedTolerance    = 50.0
	DefensiveTolerance = 20.0
	DefensiveSpeed     = 0.7

	UnpredictableHopP      = 0.02
	UnpredictableHopVY     = -300.0
	UnpredictableDashP     = 0.05
	UnpredictableRushP     = 0.01
	UnpredictableRushSpeed = 1.5

	ZombieLungeSpeed = 2.0
	ZombieLungeVY    = -200.0
)

// Intent решение ИИ на один тик. Поля Set* отличают "не трогать" от нуля.
type Intent struct {
	VelocityX    float64
	SetVelocityX bool
	VelocityY    float64
	SetVelocityY bool

	// Attack враг в радиусе атаки и бьёт игрока в этом тике
	Attack bool
	// Shoot лучник выпускает стрелу в игрока
	Shoot bool
	// BeganDefending черепаха вошла в защиту, нужно запланировать выход
	BeganDefending bool
}

func (in *Intent) moveX(vx float64) {
	in.VelocityX = vx
	in.SetVelocityX = true
}

func (in *Intent) moveY(vy float64) {
	in.VelocityY = vy
	in.SetVelocityY = true
}

// ComputeIntent выбирает намерение врага относительно позиции игрока.
// Для уничтоженного врага возвращает пустое намерение.
func ComputeIntent(e *Enemy, playerPos vec.Vec2, rng *rand.Rand) Intent {
	if e == nil || !e.Alive() {
		return Intent{}
	}

	// Цикл лучника полностью заменяет базовое движение и ближнюю атаку
	if st, ok := e.Behavior.(*ArcherState); ok {
		return archerIntent(e, st, playerPos)
	}

	var in Intent
	baseMovement(e, playerPos, rng, &in)

	if e.Position().DistanceTo(playerPos) < e.Archetype.AttackRange {
		in.Attack = true
	}

	switch st := e.Behavior.(type) {
	case *TurtleState:
		turtleLayer(e, st, rng, &in)
	case *ZombieState:
		zombieLayer(e, st, playerPos, &in)
	case *RabbitState:
		rabbitLayer(e, st, rng, &in)
	}
	return in
}

func baseMovement(e *Enemy, playerPos vec.Vec2, rng *rand.Rand, in *Intent) {
	pos := e.Position()
	speed := e.Archetype.Speed
	toward := pos.DirectionX(playerPos)
	if toward == 0 {
		toward = 1
	}

	switch e.Archetype.AIType {
	case catalog.AIAggressive:
		in.moveX(toward * speed)

	case catalog.AIRanged:
		in.moveX(band(pos, playerPos, e.Archetype.PreferredDistance, RangedTolerance, speed))

	case catalog.AIDefensive:
		in.moveX(band(pos, playerPos, e.Archetype.PreferredDistance, DefensiveTolerance, speed*DefensiveSpeed))

	case catalog.AIUnpredictable:
		// Три независимых испытания Бернулли
		if rng.Float64() < UnpredictableHopP {
			in.moveY(UnpredictableHopVY)
		}
		if rng.Float64() < UnpredictableDashP {
			dir := 1.0
			if rng.Float64() < 0.5 {
				dir = -1
			}
			in.moveX(dir * speed)
		}
		if rng.Float64() < UnpredictableRushP {
			in.moveX(toward * speed * UnpredictableRushSpeed)
		}
	}
}

// band держит дистанцию preferred±tolerance по горизонтали
func band(pos, playerPos vec.Vec2, preferred, tolerance, speed float64) float64 {
	dx := playerPos.X - pos.X
	dist := math.Abs(dx)
	toward := 1.0
	if dx < 0 {
		toward = -1
	}
	switch {
	case dist < preferred-tolerance:
		return -toward * speed
	case dist > preferred+tolerance:
		return toward * speed
	default:
		return 0
	}
}

func archerIntent(e *Enemy, st *ArcherState, playerPos vec.Vec2) Intent {
	var in Intent
	pos := e.Position()

	switch st.Phase {
	case ArcherWaiting:
		in.moveX(0)
		st.WaitTimer++
		if st.WaitTimer >= ArcherWaitTicks {
			st.setPhase(e, ArcherAttacking)
			st.HasAttacked = false
			st.WaitTimer = 0
		}

	case ArcherAttacking:
		in.moveX(0)
		if !st.HasAttacked && pos.DistanceTo(playerPos) < e.Archetype.AttackRange {
			in.Shoot = true
			st.HasAttacked = true
			st.FleeTimer = 0
			st.setPhase(e, ArcherFleeing)
		}

	case ArcherFleeing:
		away := -pos.DirectionX(playerPos)
		if away == 0 {
			away = 1
		}
		in.moveX(away * e.Archetype.Speed * ArcherFleeFactor)
		st.FleeTimer++
		if st.FleeTimer >= ArcherFleeTicks {
			st.FleeTimer = 0
			st.WaitTimer = 0
			st.setPhase(e, ArcherWaiting)
		}
	}
	return in
}

func (st *ArcherState) setPhase(e *Enemy, p ArcherPhase) {
	logging.LogEnemyTransition(e.ID, e.Archetype.Tag, st.Phase.String(), p.String())
	st.Phase = p
}

func turtleLayer(e *Enemy, st *TurtleState, rng *rand.Rand, in *Intent) {
	if st.Defending {
		in.moveX(0)
		return
	}
	if rng.Float64() < TurtleDefendP {
		st.Defending = true
		in.moveX(0)
		in.BeganDefending = true
		logging.LogEnemyTransition(e.ID, e.Archetype.Tag, "walking", "defending")
	}
}

func zombieLayer(e *Enemy, st *ZombieState, playerPos vec.Vec2, in *Intent) {
	pos := e.Position()
	dist := pos.HorizontalDistanceTo(playerPos)
	if dist > ZombieBandMin && dist < ZombieBandMax {
		st.LungeCharge++
		if st.LungeCharge >= ZombieLungeCharge {
			toward := pos.DirectionX(playerPos)
			in.moveX(toward * e.Archetype.Speed * ZombieLungeSpeed)
			in.moveY(ZombieLungeVY)
			st.LungeCharge = 0
			logging.Trace("Zombie %d lunges", e.ID)
		}
		return
	}
	st.LungeCharge = 0
}

func rabbitLayer(e *Enemy, st *RabbitState, rng *rand.Rand, in *Intent) {
	st.JumpTimer++
	if st.JumpTimer > RabbitHopTicks && e.Body.OnFloor {
		// Угол в градусах из [-45, 45]
		angle := float64(rng.Intn(91)-45) * math.Pi / 180
		in.moveX(math.Sin(angle) * RabbitHopImpulse)
		in.moveY(-RabbitHopImpulse)
		st.JumpTimer = 0
	}
}
