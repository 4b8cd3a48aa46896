package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/roguelite-platformer/internal/vec"
)

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}

	t.Run("перекрытие", func(t *testing.T) {
		assert.True(t, a.Intersects(Rect{X: 5, Y: 5, W: 10, H: 10}))
	})
	t.Run("касание гранью", func(t *testing.T) {
		assert.True(t, a.Intersects(Rect{X: 10, Y: 0, W: 5, H: 5}))
	})
	t.Run("раздельные", func(t *testing.T) {
		assert.False(t, a.Intersects(Rect{X: 11, Y: 0, W: 5, H: 5}))
		assert.False(t, a.Intersects(Rect{X: 0, Y: 20, W: 5, H: 5}))
	})
	t.Run("пустой прямоугольник", func(t *testing.T) {
		assert.False(t, a.Intersects(Rect{X: 1, Y: 1, W: 0, H: 5}))
	})
}

func TestRectFromCenter(t *testing.T) {
	r := RectFromCenter(vec.New(100, 50), 40, 60)
	assert.Equal(t, Rect{X: 80, Y: 20, W: 40, H: 60}, r)
	assert.Equal(t, vec.New(100, 50), r.Center())
	assert.True(t, r.Contains(vec.New(80, 20)))
	assert.False(t, r.Contains(vec.New(79, 20)))
}

func TestCheckBoxCollision(t *testing.T) {
	assert.True(t, CheckBoxCollision(vec.New(0, 0), vec.New(10, 10), vec.New(8, 0), vec.New(10, 10)))
	assert.False(t, CheckBoxCollision(vec.New(0, 0), vec.New(10, 10), vec.New(30, 0), vec.New(10, 10)))
}

func TestBodyLandsOnGround(t *testing.T) {
	w := NewWorld(3000)
	b := NewBody(vec.New(100, 300), 60, 90)

	for i := 0; i < 120; i++ {
		b.Step(1.0/60, w)
	}

	assert.True(t, b.OnFloor)
	assert.InDelta(t, GroundTop-45, b.Position.Y, 1e-6)
	assert.Equal(t, 0.0, b.Velocity.Y)
}

func TestBodyStaysInsideWorld(t *testing.T) {
	w := NewWorld(500)
	b := NewBody(vec.New(480, 515), 40, 60)
	b.Velocity.X = 1000

	b.Step(0.1, w)
	assert.InDelta(t, 480.0, b.Position.X, 1e-6)
	assert.Equal(t, 0.0, b.Velocity.X)
}

func TestBodyJumpsThroughPlatformFromBelow(t *testing.T) {
	w := NewWorld(1000)
	w.AddPlatform(vec.New(200, 400), 150, 20)
	b := NewBody(vec.New(200, 515), 60, 90)
	b.Velocity.Y = -600

	b.Step(1.0/60, w)
	assert.False(t, b.OnFloor)
	assert.Less(t, b.Position.Y, 515.0)
}
