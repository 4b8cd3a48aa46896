package progression

import (
	"encoding/json"
	"fmt"

	"github.com/annel0/roguelite-platformer/internal/catalog"
)

// Ключи хранилища
const (
	KeyPlayerUpgrades = "playerUpgrades"
	KeyUnlockedLevels = "unlockedLevels"
)

// Теги способностей передвижения
const (
	UnlockDash      = "dash"
	UnlockGrappling = "grappling"
	UnlockLaunch    = "launch"
	UnlockSprint    = "sprint"
)

// MovementTags все известные способности передвижения
var MovementTags = []string{UnlockDash, UnlockGrappling, UnlockLaunch, UnlockSprint}

// CurrentUpgrades временные улучшения, ослабевают при смерти
type CurrentUpgrades struct {
	WeaponDamage int `json:"weaponDamage"`
	WeaponLevel  int `json:"weaponLevel"`
	Health       int `json:"health"`
	Speed        int `json:"speed"`
}

// Get уровень улучшения по типу
func (c CurrentUpgrades) Get(t catalog.UpgradeType) int {
	if p := c.field(t); p != nil {
		return *p
	}
	return 0
}

func (c *CurrentUpgrades) field(t catalog.UpgradeType) *int {
	switch t {
	case catalog.UpgradeWeaponDamage:
		return &c.WeaponDamage
	case catalog.UpgradeWeaponLevel:
		return &c.WeaponLevel
	case catalog.UpgradeHealth:
		return &c.Health
	case catalog.UpgradeSpeed:
		return &c.Speed
	}
	return nil
}

// MovementUnlocks постоянные способности передвижения
type MovementUnlocks struct {
	Dash      bool `json:"dash"`
	Grappling bool `json:"grappling"`
	Launch    bool `json:"launch"`
	Sprint    bool `json:"sprint"`
}

func (m *MovementUnlocks) field(tag string) *bool {
	switch tag {
	case UnlockDash:
		return &m.Dash
	case UnlockGrappling:
		return &m.Grappling
	case UnlockLaunch:
		return &m.Launch
	case UnlockSprint:
		return &m.Sprint
	}
	return nil
}

// PermanentUpgrades никогда не ослабевают
type PermanentUpgrades struct {
	MovementUnlocks MovementUnlocks `json:"movementUnlocks"`
}

// UpgradeState сохраняемое состояние экономики под ключом playerUpgrades
type UpgradeState struct {
	Coins             int               `json:"coins"`
	CurrentUpgrades   CurrentUpgrades   `json:"currentUpgrades"`
	PermanentUpgrades PermanentUpgrades `json:"permanentUpgrades"`
}

// HasMovementUnlock открыта ли способность
func (s UpgradeState) HasMovementUnlock(tag string) bool {
	if p := s.PermanentUpgrades.MovementUnlocks.field(tag); p != nil {
		return *p
	}
	return false
}

// DecodeState разбирает запись playerUpgrades. Отсутствующие поля получают
// значения по умолчанию, отрицательные обнуляются.
func DecodeState(data []byte) (UpgradeState, error) {
	var state UpgradeState
	if err := json.Unmarshal(data, &state); err != nil {
		return UpgradeState{}, fmt.Errorf("разбор %s: %w", KeyPlayerUpgrades, err)
	}
	state.clamp()
	return state, nil
}

// Encode сериализует состояние для хранилища
func (s UpgradeState) Encode() ([]byte, error) {
	return json.Marshal(s)
}

func (s *UpgradeState) clamp() {
	if s.Coins < 0 {
		s.Coins = 0
	}
	for _, t := range catalog.UpgradeTypes {
		if p := s.CurrentUpgrades.field(t); *p < 0 {
			*p = 0
		}
	}
}
