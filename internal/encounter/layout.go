package encounter

import (
	"math/rand"

	"github.com/annel0/roguelite-platformer/internal/physics"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Геометрия разметки уровня
const (
	PlatformStartX = 200.0
	PlatformBaseY  = 500.0
	PlatformWidth  = 150.0
	PlatformHeight = 20.0
	PlatformJitter = 50

	HealthPackMinX = 800.0
	HealthPackTail = 300.0
	HealthPackY    = 500.0
	HealthPackSize = 25.0

	FinishY      = 540.0
	FinishWidth  = 100.0
	FinishHeight = 80.0
)

// HealthPack аптечка на уровне
type HealthPack struct {
	ID        int
	Area      physics.Rect
	Collected bool
}

// Layout статическая разметка уровня
type Layout struct {
	World       *physics.World
	Platforms   []physics.Rect
	HealthPacks []*HealthPack
	Finish      physics.Rect
}

// ActivePacks аптечки, которые ещё можно подобрать
func (l *Layout) ActivePacks() []*HealthPack {
	active := make([]*HealthPack, 0, len(l.HealthPacks))
	for _, hp := range l.HealthPacks {
		if !hp.Collected {
			active = append(active, hp)
		}
	}
	return active
}

// BuildLayout строит землю, платформы, аптечки и финиш. Высоты платформ
// выбираются шумом Перлина от seed, смещения и аптечки берутся из rng.
func (g *Generator) BuildLayout(levelLength float64, seed int64) *Layout {
	lvl := g.cat.Level
	world := physics.NewWorld(levelLength)
	layout := &Layout{World: world}

	noise := newHeightNoise(seed)
	spacing := lvl.PlatformSpacing
	if spacing <= 0 {
		spacing = 400
	}
	for x := PlatformStartX; x < levelLength; x += spacing {
		h := noise.pick(x, lvl.PlatformHeights)
		jitter := float64(g.rng.Intn(2*PlatformJitter+1) - PlatformJitter)
		r := world.AddPlatform(vec.New(x+jitter, PlatformBaseY-h), PlatformWidth, PlatformHeight)
		layout.Platforms = append(layout.Platforms, r)
	}

	count := lvl.HealthPacksMin
	if lvl.HealthPacksMax > lvl.HealthPacksMin {
		count += g.rng.Intn(lvl.HealthPacksMax - lvl.HealthPacksMin + 1)
	}
	maxX := levelLength - HealthPackTail
	for i := 0; i < count && maxX >= HealthPackMinX; i++ {
		x := HealthPackMinX + float64(g.rng.Intn(int(maxX-HealthPackMinX)+1))
		layout.HealthPacks = append(layout.HealthPacks, &HealthPack{
			ID:   i + 1,
			Area: physics.RectFromCenter(vec.New(x, HealthPackY), HealthPackSize, HealthPackSize),
		})
	}

	layout.Finish = physics.RectFromCenter(vec.New(levelLength-lvl.FinishOffset, FinishY), FinishWidth, FinishHeight)
	return layout
}

// HealForRoll лечение аптечки по броску d20
func HealForRoll(roll int) float64 {
	switch {
	case roll <= 10:
		return 10
	case roll <= 16:
		return 20
	default:
		return 30
	}
}

// RollHeal бросает d20 и возвращает бросок и лечение
func RollHeal(rng *rand.Rand) (int, float64) {
	roll := 1 + rng.Intn(20)
	return roll, HealForRoll(roll)
}
