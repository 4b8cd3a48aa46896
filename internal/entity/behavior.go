package entity

import "github.com/annel0/roguelite-platformer/internal/catalog"

// Тиковые константы подсостояний (60 тиков в секунду)
const (
	ArcherWaitTicks   = 90
	ArcherFleeTicks   = 60
	ArcherFleeFactor  = 1.5
	ZombieLungeCharge = 60
	ZombieBandMin     = 100.0
	ZombieBandMax     = 200.0
	RabbitHopTicks    = 240
	RabbitHopImpulse  = 200.0
	TurtleDefendP     = 0.01
)

// BehaviorState подсостояние поведения, своё для каждого архетипа
type BehaviorState interface {
	Name() string
}

// ArcherPhase фаза цикла лучника
type ArcherPhase int

const (
	ArcherWaiting ArcherPhase = iota
	ArcherAttacking
	ArcherFleeing
)

func (p ArcherPhase) String() string {
	switch p {
	case ArcherWaiting:
		return "waiting"
	case ArcherAttacking:
		return "attacking"
	case ArcherFleeing:
		return "fleeing"
	}
	return "unknown"
}

// ArcherState цикл ожидание -> атака -> отступление
type ArcherState struct {
	Phase       ArcherPhase
	WaitTimer   int
	FleeTimer   int
	HasAttacked bool
}

// TurtleState защитная стойка
type TurtleState struct {
	Defending bool
}

// ZombieState заряд рывка
type ZombieState struct {
	LungeCharge int
}

// RabbitState таймер прыжка
type RabbitState struct {
	JumpTimer int
}

func (*ArcherState) Name() string { return catalog.TagArcher }
func (*TurtleState) Name() string { return catalog.TagTurtle }
func (*ZombieState) Name() string { return catalog.TagSpeedZombie }
func (*RabbitState) Name() string { return catalog.TagGiantRabbit }

// behaviorFactories реестр подсостояний по тегу архетипа
var behaviorFactories = map[string]func() BehaviorState{
	catalog.TagArcher:      func() BehaviorState { return &ArcherState{Phase: ArcherWaiting} },
	catalog.TagTurtle:      func() BehaviorState { return &TurtleState{} },
	catalog.TagSpeedZombie: func() BehaviorState { return &ZombieState{} },
	catalog.TagGiantRabbit: func() BehaviorState { return &RabbitState{} },
}

// NewBehaviorState создаёт подсостояние для тега. Для архетипов без
// собственного поведения возвращает nil: работает только базовая политика.
func NewBehaviorState(tag string) BehaviorState {
	if f, ok := behaviorFactories[tag]; ok {
		return f()
	}
	return nil
}
