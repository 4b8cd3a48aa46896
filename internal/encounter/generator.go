// Package encounter строит уровень: очередь спавна врагов с элитными маркерами,
// фильтр по расстоянию от старта и статическую разметку (платформы, аптечки, финиш).
package encounter

import (
	"math"
	"math/rand"

	"github.com/annel0/roguelite-platformer/internal/catalog"
	"github.com/annel0/roguelite-platformer/internal/entity"
	"github.com/annel0/roguelite-platformer/internal/logging"
	"github.com/annel0/roguelite-platformer/internal/vec"
)

// Маркеры элитных врагов в очереди спавна
const (
	MarkerMiniboss = "miniboss"
	MarkerBoss     = "boss"
)

// Spawn запись очереди: тег архетипа или элитный маркер и позиция
type Spawn struct {
	Archetype string  `json:"archetype"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Queue упорядоченная очередь спавна уровня
type Queue []Spawn

// Spawner создаёт врагов (entity.Manager)
type Spawner interface {
	Spawn(tag string, tier catalog.Tier, pos vec.Vec2) (*entity.Enemy, error)
}

// Generator генератор встреч уровня
type Generator struct {
	cat  *catalog.Catalog
	pool []string
	rng  *rand.Rand
	log  *logging.Logger
}

// NewGenerator создаёт генератор с пулом врагов из каталога
func NewGenerator(cat *catalog.Catalog, rng *rand.Rand) *Generator {
	return &Generator{
		cat:  cat,
		pool: append([]string(nil), cat.EnemyPool...),
		rng:  rng,
		log:  logging.GetComponentLogger("encounter"),
	}
}

// Pool текущий порядок пула врагов
func (g *Generator) Pool() []string {
	return append([]string(nil), g.pool...)
}

// ShufflePool перемешивает пул для следующего забега
func (g *Generator) ShufflePool() {
	g.rng.Shuffle(len(g.pool), func(i, j int) {
		g.pool[i], g.pool[j] = g.pool[j], g.pool[i]
	})
}

func (g *Generator) randomTag() string {
	return g.pool[g.rng.Intn(len(g.pool))]
}

// Generate строит очередь спавна для уровня длины levelLength:
// секции со случайными врагами, мини-боссы на равных долях длины и босс у финиша.
func (g *Generator) Generate(levelLength float64) Queue {
	lvl := g.cat.Level
	var q Queue

	if len(g.pool) > 0 && lvl.SectionLength > 0 {
		sections := int(math.Floor(levelLength / lvl.SectionLength))
		for i := 0; i < sections; i++ {
			if g.rng.Float64() < lvl.SpawnChance {
				q = append(q, Spawn{
					Archetype: g.randomTag(),
					X:         float64(i+1) * lvl.SectionLength,
					Y:         lvl.SpawnY,
				})
			}
		}
	}

	for i := 0; i < lvl.MiniBossCount; i++ {
		q = append(q, Spawn{
			Archetype: MarkerMiniboss,
			X:         float64(i+1) * levelLength / float64(lvl.MiniBossCount+2),
			Y:         lvl.SpawnY,
		})
	}

	q = append(q, Spawn{Archetype: MarkerBoss, X: levelLength - lvl.BossOffset, Y: lvl.SpawnY})

	g.log.Debug("Generated %d spawns for level length %.0f", len(q), levelLength)
	return q
}

// FilterByDistance отбрасывает записи ближе minDistance по горизонтали от startX
func FilterByDistance(q Queue, startX, minDistance float64) Queue {
	out := make(Queue, 0, len(q))
	for _, s := range q {
		if s.X-startX > minDistance {
			out = append(out, s)
		}
	}
	return out
}

// Resolve превращает запись в архетип и тир. Мини-босс получает случайный
// базовый архетип, босс берёт архетип из каталога.
func (g *Generator) Resolve(s Spawn) (string, catalog.Tier) {
	switch s.Archetype {
	case MarkerMiniboss:
		return g.randomTag(), catalog.TierMiniboss
	case MarkerBoss:
		if tag := g.cat.Level.BossArchetype; tag != "" {
			return tag, catalog.TierBoss
		}
		return g.randomTag(), catalog.TierBoss
	default:
		return s.Archetype, catalog.TierBasic
	}
}

// Materialize создаёт врагов из очереди. Неизвестные архетипы пропускаются с предупреждением.
func (g *Generator) Materialize(q Queue, sp Spawner) []*entity.Enemy {
	enemies := make([]*entity.Enemy, 0, len(q))
	for _, s := range q {
		tag, tier := g.Resolve(s)
		e, err := sp.Spawn(tag, tier, vec.New(s.X, s.Y))
		if err != nil {
			g.log.Warn("Skip spawn %s at %.0f: %v", s.Archetype, s.X, err)
			continue
		}
		enemies = append(enemies, e)
	}
	return enemies
}

// Populate полный цикл старта уровня: генерация, фильтр от точки старта, создание врагов
func (g *Generator) Populate(levelLength float64, sp Spawner) []*entity.Enemy {
	q := FilterByDistance(g.Generate(levelLength), g.cat.Player.SpawnX, g.cat.Level.MinSpawnDistance)
	return g.Materialize(q, sp)
}
