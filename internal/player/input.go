package player

import "github.com/annel0/roguelite-platformer/internal/vec"

// Action игровое действие источника ввода
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionJump
	ActionAttack
	ActionDash
	ActionParry
	ActionSwitchWeapon
)

var actionNames = [...]string{"left", "right", "jump", "attack", "dash", "parry", "switch_weapon"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Input абстрактный источник ввода (клавиатура, сенсор, бот)
type Input interface {
	// JustPressed действие нажато в этом тике
	JustPressed(a Action) bool
	// Held действие удерживается
	Held(a Action) bool
}

// Aimer необязательное расширение Input с точкой прицеливания (указатель)
type Aimer interface {
	Aim() (vec.Vec2, bool)
}

// Frame снимок ввода одного тика. Удобен для ботов и тестов.
type Frame struct {
	Pressed map[Action]bool
	Down    map[Action]bool
	Target  *vec.Vec2
}

// JustPressed реализует Input
func (f Frame) JustPressed(a Action) bool { return f.Pressed[a] }

// Held реализует Input
func (f Frame) Held(a Action) bool { return f.Down[a] || f.Pressed[a] }

// Aim реализует Aimer
func (f Frame) Aim() (vec.Vec2, bool) {
	if f.Target == nil {
		return vec.Vec2{}, false
	}
	return *f.Target, true
}

// Press кадр с однократными нажатиями
func Press(actions ...Action) Frame {
	f := Frame{Pressed: make(map[Action]bool, len(actions))}
	for _, a := range actions {
		f.Pressed[a] = true
	}
	return f
}

// Hold кадр с удерживаемыми действиями
func Hold(actions ...Action) Frame {
	f := Frame{Down: make(map[Action]bool, len(actions))}
	for _, a := range actions {
		f.Down[a] = true
	}
	return f
}
