package physics

import (
	"math"

	"github.com/annel0/roguelite-platformer/internal/vec"
)

const (
	// Gravity ускорение свободного падения, ед/с²
	Gravity = 800.0

	// GroundTop верхняя грань земли уровня
	GroundTop = 560.0

	// WorldHeight высота мира
	WorldHeight = 600.0
)

// World статическая геометрия уровня
type World struct {
	Width  float64
	Height float64
	Solids []Rect // Земля и платформы
}

// NewWorld создаёт мир заданной длины с землёй
func NewWorld(width float64) *World {
	return &World{
		Width:  width,
		Height: WorldHeight,
		Solids: []Rect{{X: 0, Y: GroundTop, W: width, H: WorldHeight - GroundTop + 20}},
	}
}

// AddPlatform добавляет платформу (центр, размеры)
func (w *World) AddPlatform(center vec.Vec2, width, height float64) Rect {
	r := RectFromCenter(center, width, height)
	w.Solids = append(w.Solids, r)
	return r
}

// Body кинематическое тело с гравитацией. Position это центр тела.
type Body struct {
	Position vec.Vec2
	Velocity vec.Vec2
	Size     vec.Vec2
	MaxSpeed vec.Vec2 // 0 = без ограничения
	OnFloor  bool
}

// NewBody создаёт тело
func NewBody(pos vec.Vec2, w, h float64) *Body {
	return &Body{Position: pos, Size: vec.Vec2{X: w, Y: h}}
}

// Bounds возвращает AABB тела
func (b *Body) Bounds() Rect {
	return RectFromCenter(b.Position, b.Size.X, b.Size.Y)
}

// SetSize меняет размеры, сохраняя нижнюю грань на месте
func (b *Body) SetSize(w, h float64) {
	bottom := b.Position.Y + b.Size.Y/2
	b.Size = vec.Vec2{X: w, Y: h}
	b.Position.Y = bottom - h/2
}

// Step интегрирует движение за dt секунд и разрешает столкновения с миром.
// Платформы твёрдые только сверху.
func (b *Body) Step(dt float64, w *World) {
	b.Velocity.Y += Gravity * dt
	b.clampVelocity()

	prevBottom := b.Position.Y + b.Size.Y/2
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	b.OnFloor = false

	if w == nil {
		return
	}

	halfW := b.Size.X / 2
	halfH := b.Size.Y / 2

	// Границы мира по X
	if b.Position.X-halfW < 0 {
		b.Position.X = halfW
		b.Velocity.X = 0
	} else if b.Position.X+halfW > w.Width {
		b.Position.X = w.Width - halfW
		b.Velocity.X = 0
	}
	if b.Position.Y-halfH < 0 {
		b.Position.Y = halfH
		b.Velocity.Y = 0
	}

	if b.Velocity.Y < 0 {
		return
	}

	bottom := b.Position.Y + halfH
	left := b.Position.X - halfW
	right := b.Position.X + halfW
	for _, s := range w.Solids {
		if right <= s.Left() || left >= s.Right() {
			continue
		}
		// Пересекли верхнюю грань за этот шаг
		if prevBottom <= s.Top()+0.001 && bottom >= s.Top() {
			b.Position.Y = s.Top() - halfH
			b.Velocity.Y = 0
			b.OnFloor = true
			break
		}
	}
}

func (b *Body) clampVelocity() {
	if b.MaxSpeed.X > 0 {
		b.Velocity.X = math.Max(-b.MaxSpeed.X, math.Min(b.MaxSpeed.X, b.Velocity.X))
	}
	if b.MaxSpeed.Y > 0 {
		b.Velocity.Y = math.Max(-b.MaxSpeed.Y, math.Min(b.MaxSpeed.Y, b.Velocity.Y))
	}
}
