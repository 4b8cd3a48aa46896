// Package catalog содержит статические балансные данные: уровни оружия,
// архетипы врагов, множители элитных тиров и стоимость улучшений.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCatalog возвращается, если каталог нарушает инварианты
var ErrInvalidCatalog = errors.New("invalid catalog")

// CurrentVersion версия встроенного каталога
const CurrentVersion = 1

// WeaponLevels количество уровней эволюции оружия (0..4)
const WeaponLevels = 5

// MaxWeaponLevel последний уровень оружия
const MaxWeaponLevel = WeaponLevels - 1

// Ability тег способности уровня оружия
type Ability string

const (
	AbilityIncreasedRange Ability = "increased_range"
	AbilityDashAttack     Ability = "dash_attack"
	AbilityThrowable      Ability = "throwable"
	AbilityMagicSlash     Ability = "magic_slash"
	AbilityOneShotBasic   Ability = "one_shot_basic"
)

// WeaponLevelStats неизменяемые параметры одного уровня оружия
type WeaponLevelStats struct {
	Damage     float64   `yaml:"damage" json:"damage"`
	Range      float64   `yaml:"range" json:"range"`
	CooldownMs int       `yaml:"cooldown_ms" json:"cooldownMs"` // не используется логикой атаки
	Abilities  []Ability `yaml:"abilities" json:"abilities"`
}

// Has проверяет наличие способности
func (s WeaponLevelStats) Has(a Ability) bool {
	for _, ab := range s.Abilities {
		if ab == a {
			return true
		}
	}
	return false
}

// WeaponSpec описание оружия
type WeaponSpec struct {
	Name   string             `yaml:"name" json:"name"`
	Levels []WeaponLevelStats `yaml:"levels" json:"levels"`
}

// AIType базовая политика движения врага
type AIType string

const (
	AIAggressive    AIType = "aggressive"
	AIRanged        AIType = "ranged"
	AIDefensive     AIType = "defensive"
	AIUnpredictable AIType = "unpredictable"
)

func (t AIType) valid() bool {
	switch t {
	case AIAggressive, AIRanged, AIDefensive, AIUnpredictable:
		return true
	}
	return false
}

// Теги архетипов с собственным подсостоянием поведения
const (
	TagArcher      = "archer"
	TagTurtle      = "turtle"
	TagSpeedZombie = "speedZombie"
	TagGiantRabbit = "giantRabbit"
)

// EnemyArchetype неизменяемый шаблон врага
type EnemyArchetype struct {
	Tag               string  `yaml:"-" json:"tag"`
	Name              string  `yaml:"name" json:"name"`
	MaxHealth         float64 `yaml:"max_health" json:"maxHealth"`
	Damage            float64 `yaml:"damage" json:"damage"`
	Speed             float64 `yaml:"speed" json:"speed"`
	AttackRange       float64 `yaml:"attack_range" json:"attackRange"`
	PreferredDistance float64 `yaml:"preferred_distance" json:"preferredDistance"`
	AIType            AIType  `yaml:"ai_type" json:"aiType"`
	Width             float64 `yaml:"width" json:"width"`
	Height            float64 `yaml:"height" json:"height"`
}

// Tier элитный тир врага
type Tier string

const (
	TierBasic    Tier = "basic"
	TierMiniboss Tier = "miniboss"
	TierBoss     Tier = "boss"
)

// TierSpec множители тира, применяются один раз при спавне
type TierSpec struct {
	HealthMultiplier float64 `yaml:"health_multiplier" json:"healthMultiplier"`
	DamageMultiplier float64 `yaml:"damage_multiplier" json:"damageMultiplier"`
	Width            float64 `yaml:"width" json:"width"`
	Height           float64 `yaml:"height" json:"height"`
}

// UpgradeType тип временного улучшения
type UpgradeType string

const (
	UpgradeWeaponDamage UpgradeType = "weaponDamage"
	UpgradeWeaponLevel  UpgradeType = "weaponLevel"
	UpgradeHealth       UpgradeType = "health"
	UpgradeSpeed        UpgradeType = "speed"
)

// UpgradeTypes все типы улучшений в порядке отображения
var UpgradeTypes = []UpgradeType{UpgradeWeaponLevel, UpgradeWeaponDamage, UpgradeHealth, UpgradeSpeed}

// UpgradeSpec стоимость и эффект улучшений
type UpgradeSpec struct {
	Costs map[UpgradeType]int `yaml:"costs" json:"costs"`
	// Лестница цен хранится для справки, покупка берёт плоскую цену
	CostLadder       map[UpgradeType][]int `yaml:"cost_ladder" json:"costLadder"`
	DecayRate        float64               `yaml:"decay_rate" json:"decayRate"`
	HealthPerLevel   float64               `yaml:"health_per_level" json:"healthPerLevel"`
	SpeedPerLevel    float64               `yaml:"speed_per_level" json:"speedPerLevel"`
	DamagePerUpgrade float64               `yaml:"damage_per_upgrade" json:"damagePerUpgrade"`
}

// PlayerSpec параметры игрока
type PlayerSpec struct {
	BaseHealth           float64 `yaml:"base_health" json:"baseHealth"`
	BaseSpeed            float64 `yaml:"base_speed" json:"baseSpeed"`
	JumpForce            float64 `yaml:"jump_force" json:"jumpForce"`
	DashSpeed            float64 `yaml:"dash_speed" json:"dashSpeed"`
	DashDurationMs       int     `yaml:"dash_duration_ms" json:"dashDurationMs"`
	DashCooldownMs       int     `yaml:"dash_cooldown_ms" json:"dashCooldownMs"`
	ParryWindowMs        int     `yaml:"parry_window_ms" json:"parryWindowMs"`
	ParryCooldownMs      int     `yaml:"parry_cooldown_ms" json:"parryCooldownMs"`
	ParryReward          float64 `yaml:"parry_reward" json:"parryReward"`
	HitInvulnerabilityMs int     `yaml:"hit_invulnerability_ms" json:"hitInvulnerabilityMs"`
	SpawnX               float64 `yaml:"spawn_x" json:"spawnX"`
	SpawnY               float64 `yaml:"spawn_y" json:"spawnY"`
	Width                float64 `yaml:"width" json:"width"`
	Height               float64 `yaml:"height" json:"height"`
	MaxVelocityX         float64 `yaml:"max_velocity_x" json:"maxVelocityX"`
	MaxVelocityY         float64 `yaml:"max_velocity_y" json:"maxVelocityY"`
}

// LevelSpec параметры генерации уровня
type LevelSpec struct {
	Length           float64   `yaml:"length" json:"length"`
	SectionLength    float64   `yaml:"section_length" json:"sectionLength"`
	SpawnChance      float64   `yaml:"spawn_chance" json:"spawnChance"`
	SpawnY           float64   `yaml:"spawn_y" json:"spawnY"`
	MiniBossCount    int       `yaml:"miniboss_count" json:"minibossCount"`
	BossOffset       float64   `yaml:"boss_offset" json:"bossOffset"`
	BossArchetype    string    `yaml:"boss_archetype" json:"bossArchetype"` // "" = случайный из пула
	MinSpawnDistance float64   `yaml:"min_spawn_distance" json:"minSpawnDistance"`
	PlatformHeights  []float64 `yaml:"platform_heights" json:"platformHeights"`
	PlatformSpacing  float64   `yaml:"platform_spacing" json:"platformSpacing"`
	HealthPacksMin   int       `yaml:"health_packs_min" json:"healthPacksMin"`
	HealthPacksMax   int       `yaml:"health_packs_max" json:"healthPacksMax"`
	FinishOffset     float64   `yaml:"finish_offset" json:"finishOffset"`
	KillReward       int       `yaml:"kill_reward" json:"killReward"`
	MaxLevel         int       `yaml:"max_level" json:"maxLevel"`
}

// Catalog версионированный набор балансных данных
type Catalog struct {
	Version   int                       `yaml:"version" json:"version"`
	Weapons   map[string]WeaponSpec     `yaml:"weapons" json:"weapons"`
	Enemies   map[string]EnemyArchetype `yaml:"enemies" json:"enemies"`
	EnemyPool []string                  `yaml:"enemy_pool" json:"enemyPool"`
	Tiers     map[Tier]TierSpec         `yaml:"tiers" json:"tiers"`
	Upgrades  UpgradeSpec               `yaml:"upgrades" json:"upgrades"`
	Player    PlayerSpec                `yaml:"player" json:"player"`
	Level     LevelSpec                 `yaml:"level" json:"level"`
}

// Archetype возвращает архетип по тегу
func (c *Catalog) Archetype(tag string) (EnemyArchetype, bool) {
	a, ok := c.Enemies[tag]
	if ok {
		a.Tag = tag
	}
	return a, ok
}

// Weapon возвращает описание оружия по имени
func (c *Catalog) Weapon(name string) (WeaponSpec, bool) {
	w, ok := c.Weapons[name]
	return w, ok
}

// WeaponNames возвращает имена оружия в стабильном порядке
func (c *Catalog) WeaponNames() []string {
	names := make([]string, 0, len(c.Weapons))
	for name := range c.Weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tier возвращает множители тира. Для basic множители единичные.
func (c *Catalog) Tier(t Tier) TierSpec {
	if spec, ok := c.Tiers[t]; ok {
		return spec
	}
	return TierSpec{HealthMultiplier: 1, DamageMultiplier: 1}
}

// Cost возвращает плоскую стоимость улучшения
func (c *Catalog) Cost(t UpgradeType) (int, bool) {
	cost, ok := c.Upgrades.Costs[t]
	return cost, ok
}

// LadderCost возвращает цену по лестнице для текущего уровня улучшения.
// Выше последней ступени используется последняя.
func (c *Catalog) LadderCost(t UpgradeType, level int) (int, bool) {
	ladder := c.Upgrades.CostLadder[t]
	if len(ladder) == 0 {
		return 0, false
	}
	if level < 0 {
		level = 0
	}
	if level >= len(ladder) {
		level = len(ladder) - 1
	}
	return ladder[level], true
}

// Validate проверяет инварианты каталога
func (c *Catalog) Validate() error {
	if c.Version <= 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidCatalog)
	}
	if len(c.Weapons) == 0 {
		return fmt.Errorf("%w: no weapons", ErrInvalidCatalog)
	}
	for name, w := range c.Weapons {
		if len(w.Levels) != WeaponLevels {
			return fmt.Errorf("%w: weapon %s has %d levels, want %d", ErrInvalidCatalog, name, len(w.Levels), WeaponLevels)
		}
		for i := 1; i < len(w.Levels); i++ {
			for _, ab := range w.Levels[i-1].Abilities {
				if !w.Levels[i].Has(ab) {
					return fmt.Errorf("%w: weapon %s level %d drops ability %q", ErrInvalidCatalog, name, i, ab)
				}
			}
		}
		for i, lvl := range w.Levels {
			if lvl.Has(AbilityOneShotBasic) != (i == MaxWeaponLevel) {
				return fmt.Errorf("%w: weapon %s: %s only and always on level %d", ErrInvalidCatalog, name, AbilityOneShotBasic, MaxWeaponLevel)
			}
			if lvl.Damage < 0 || lvl.Range <= 0 {
				return fmt.Errorf("%w: weapon %s level %d has invalid damage/range", ErrInvalidCatalog, name, i)
			}
		}
	}

	for tag, e := range c.Enemies {
		if e.MaxHealth <= 0 {
			return fmt.Errorf("%w: enemy %s max health must be positive", ErrInvalidCatalog, tag)
		}
		if !e.AIType.valid() {
			return fmt.Errorf("%w: enemy %s unknown ai type %q", ErrInvalidCatalog, tag, e.AIType)
		}
		if e.Width <= 0 || e.Height <= 0 {
			return fmt.Errorf("%w: enemy %s size must be positive", ErrInvalidCatalog, tag)
		}
	}
	if len(c.EnemyPool) == 0 {
		return fmt.Errorf("%w: empty enemy pool", ErrInvalidCatalog)
	}
	for _, tag := range c.EnemyPool {
		if _, ok := c.Enemies[tag]; !ok {
			return fmt.Errorf("%w: enemy pool references unknown archetype %q", ErrInvalidCatalog, tag)
		}
	}
	if c.Level.BossArchetype != "" {
		if _, ok := c.Enemies[c.Level.BossArchetype]; !ok {
			return fmt.Errorf("%w: unknown boss archetype %q", ErrInvalidCatalog, c.Level.BossArchetype)
		}
	}

	for _, t := range UpgradeTypes {
		cost, ok := c.Upgrades.Costs[t]
		if !ok || cost <= 0 {
			return fmt.Errorf("%w: upgrade %s needs a positive cost", ErrInvalidCatalog, t)
		}
	}
	if c.Upgrades.DecayRate < 0 || c.Upgrades.DecayRate > 1 {
		return fmt.Errorf("%w: decay rate %v out of [0,1]", ErrInvalidCatalog, c.Upgrades.DecayRate)
	}
	if c.Level.SectionLength <= 0 || c.Level.Length <= 0 {
		return fmt.Errorf("%w: level and section length must be positive", ErrInvalidCatalog)
	}
	if c.Level.HealthPacksMin > c.Level.HealthPacksMax {
		return fmt.Errorf("%w: health packs min > max", ErrInvalidCatalog)
	}
	return nil
}

// Load читает каталог из YAML поверх встроенного. Незаданные секции берутся из Default(),
// записи карт (оружие, враги, тиры) заменяются целиком.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение каталога %s: %w", path, err)
	}
	return Parse(data)
}

// Parse разбирает YAML каталога и валидирует результат
func Parse(data []byte) (*Catalog, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("разбор каталога: %w", err)
	}
	for tag, e := range c.Enemies {
		e.Tag = tag
		c.Enemies[tag] = e
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
