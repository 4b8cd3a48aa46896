// Package notify описывает типизированные уведомления симуляции для внешних
// слушателей (HUD, рендер, шина событий). Ядро не зависит от наличия подписчиков.
package notify

// Kind тип уведомления
type Kind string

const (
	KindHealthChanged       Kind = "HealthChanged"
	KindCoinsChanged        Kind = "CoinsChanged"
	KindWeaponChanged       Kind = "WeaponChanged"
	KindPlayerDied          Kind = "PlayerDied"
	KindLevelComplete       Kind = "LevelComplete"
	KindUpgradeChanged      Kind = "UpgradeChanged"
	KindMovementUnlocked    Kind = "MovementUnlocked"
	KindParrySuccess        Kind = "ParrySuccess"
	KindEnemyDamaged        Kind = "EnemyDamaged"
	KindEnemyKilled         Kind = "EnemyKilled"
	KindHealthPackCollected Kind = "HealthPackCollected"
)

// AllKinds все типы уведомлений
var AllKinds = []Kind{
	KindHealthChanged, KindCoinsChanged, KindWeaponChanged, KindPlayerDied,
	KindLevelComplete, KindUpgradeChanged, KindMovementUnlocked, KindParrySuccess,
	KindEnemyDamaged, KindEnemyKilled, KindHealthPackCollected,
}

// Event уведомление симуляции
type Event interface {
	Kind() Kind
}

// HealthChanged здоровье игрока изменилось
type HealthChanged struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
}

// CoinsChanged баланс монет изменился
type CoinsChanged struct {
	Coins int `json:"coins"`
}

// WeaponChanged сменилась подпись текущего оружия, например "Sword Lv.2"
type WeaponChanged struct {
	Label string `json:"label"`
	Level int    `json:"level"`
}

// PlayerDied игрок погиб, временные улучшения уже ослаблены
type PlayerDied struct {
	Level int `json:"level"`
}

// LevelComplete уровень пройден
type LevelComplete struct {
	Level          int  `json:"level"`
	UnlockedLevels int  `json:"unlockedLevels"`
	NewUnlock      bool `json:"newUnlock"`
}

// UpgradeChanged изменился счётчик улучшения
type UpgradeChanged struct {
	Upgrade string `json:"upgrade"`
	Value   int    `json:"value"`
}

// MovementUnlocked открыта способность передвижения
type MovementUnlocked struct {
	Unlock string `json:"unlock"`
}

// ParrySuccess удар отражён парированием
type ParrySuccess struct {
	CounterDamage float64 `json:"counterDamage"`
	AttackerID    uint64  `json:"attackerId"`
}

// EnemyDamaged враг получил урон
type EnemyDamaged struct {
	EnemyID uint64  `json:"enemyId"`
	Amount  float64 `json:"amount"`
	Health  float64 `json:"health"`
}

// EnemyKilled враг уничтожен, награда выдана
type EnemyKilled struct {
	EnemyID   uint64 `json:"enemyId"`
	Archetype string `json:"archetype"`
	Tier      string `json:"tier"`
	Reward    int    `json:"reward"`
}

// HealthPackCollected подобрана аптечка
type HealthPackCollected struct {
	Roll   int     `json:"roll"`
	Healed float64 `json:"healed"`
}

func (HealthChanged) Kind() Kind       { return KindHealthChanged }
func (CoinsChanged) Kind() Kind        { return KindCoinsChanged }
func (WeaponChanged) Kind() Kind       { return KindWeaponChanged }
func (PlayerDied) Kind() Kind          { return KindPlayerDied }
func (LevelComplete) Kind() Kind       { return KindLevelComplete }
func (UpgradeChanged) Kind() Kind      { return KindUpgradeChanged }
func (MovementUnlocked) Kind() Kind    { return KindMovementUnlocked }
func (ParrySuccess) Kind() Kind        { return KindParrySuccess }
func (EnemyDamaged) Kind() Kind        { return KindEnemyDamaged }
func (EnemyKilled) Kind() Kind         { return KindEnemyKilled }
func (HealthPackCollected) Kind() Kind { return KindHealthPackCollected }
