package physics

import (
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Rect прямоугольник AABB в мировых координатах: X, Y задают левый верхний угол
type Rect struct {
	X, Y float64
	W, H float64
}

// RectFromCenter создаёт прямоугольник по центру и размерам
func RectFromCenter(center vec.Vec2, w, h float64) Rect {
	return Rect{X: center.X - w/2, Y: center.Y - h/2, W: w, H: h}
}

// Center возвращает центр прямоугольника
func (r Rect) Center() vec.Vec2 {
	return vec.Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects проверяет пересечение двух прямоугольников.
// Касание гранями считается пересечением.
func (r Rect) Intersects(other Rect) bool {
	if r.W <= 0 || r.H <= 0 || other.W <= 0 || other.H <= 0 {
		return false
	}
	return r.X <= other.X+other.W &&
		r.X+r.W >= other.X &&
		r.Y <= other.Y+other.H &&
		r.Y+r.H >= other.Y
}

// Contains проверяет, находится ли точка внутри прямоугольника
func (r Rect) Contains(p vec.Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Translate сдвигает прямоугольник на вектор
func (r Rect) Translate(d vec.Vec2) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// CheckBoxCollision проверяет столкновение двух коллайдеров, заданных центрами и размерами
func CheckBoxCollision(pos1, size1, pos2, size2 vec.Vec2) bool {
	return RectFromCenter(pos1, size1.X, size1.Y).Intersects(RectFromCenter(pos2, size2.X, size2.Y))
}
