package vec

import "math"

// Vec2 представляет 2D координаты с плавающей точкой (мировые единицы, Y вниз)
type Vec2 struct {
	X, Y float64
}

// Zero нулевой вектор
var Zero = Vec2{}

// New создаёт вектор
func New(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2) Mul(scalar float64) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

// Normalized возвращает нормализованный вектор
func (v Vec2) Normalized() Vec2 {
	length := v.Length()
	if length == 0 {
		return Vec2{X: 0, Y: 0}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HorizontalDistanceTo расстояние только по оси X
func (v Vec2) HorizontalDistanceTo(other Vec2) float64 {
	return math.Abs(v.X - other.X)
}

// DirectionX возвращает -1, 0 или 1 в сторону other по оси X
func (v Vec2) DirectionX(other Vec2) float64 {
	switch {
	case other.X > v.X:
		return 1
	case other.X < v.X:
		return -1
	default:
		return 0
	}
}

// Angle возвращает угол вектора в радианах
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// FromAngle создаёт вектор длины length под углом angle
func FromAngle(angle, length float64) Vec2 {
	return Vec2{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}
