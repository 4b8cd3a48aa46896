package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, CurrentVersion, c.Version)

	sword, ok := c.Weapon("sword")
	require.True(t, ok)
	require.Len(t, sword.Levels, WeaponLevels)
	assert.Equal(t, 20.0, sword.Levels[0].Damage)
	assert.Equal(t, 160.0, sword.Levels[4].Range)
	assert.True(t, sword.Levels[4].Has(AbilityOneShotBasic))
	assert.True(t, sword.Levels[4].Has(AbilityDashAttack), "способности накапливаются")
	assert.False(t, sword.Levels[3].Has(AbilityOneShotBasic))

	archer, ok := c.Archetype(TagArcher)
	require.True(t, ok)
	assert.Equal(t, TagArcher, archer.Tag)
	assert.Equal(t, 300.0, archer.AttackRange)
	assert.Equal(t, AIRanged, archer.AIType)

	assert.Equal(t, []string{"bow", "staff", "sword"}, c.WeaponNames())
}

func TestAbilitySupersetValidation(t *testing.T) {
	c := Default()
	sword := c.Weapons["sword"]
	sword.Levels[3].Abilities = []Ability{AbilityThrowable} // теряет dash_attack
	c.Weapons["sword"] = sword

	err := c.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestValidateRejectsBrokenData(t *testing.T) {
	cases := map[string]func(c *Catalog){
		"unknown pool tag":   func(c *Catalog) { c.EnemyPool = append(c.EnemyPool, "dragon") },
		"zero health":        func(c *Catalog) { e := c.Enemies[TagTurtle]; e.MaxHealth = 0; c.Enemies[TagTurtle] = e },
		"bad ai type":        func(c *Catalog) { e := c.Enemies[TagTurtle]; e.AIType = "sleepy"; c.Enemies[TagTurtle] = e },
		"missing cost":       func(c *Catalog) { delete(c.Upgrades.Costs, UpgradeSpeed) },
		"four levels":        func(c *Catalog) { w := c.Weapons["bow"]; w.Levels = w.Levels[:4]; c.Weapons["bow"] = w },
		"decay above one":    func(c *Catalog) { c.Upgrades.DecayRate = 1.5 },
		"unknown boss":       func(c *Catalog) { c.Level.BossArchetype = "dragon" },
		"packs min over max": func(c *Catalog) { c.Level.HealthPacksMin = 9 },
		"one shot missing on last level": func(c *Catalog) {
			w := c.Weapons["bow"]
			w.Levels[MaxWeaponLevel].Abilities = []Ability{"elemental"}
			c.Weapons["bow"] = w
		},
		"one shot below last level": func(c *Catalog) {
			w := c.Weapons["staff"]
			w.Levels[2].Abilities = append(w.Levels[2].Abilities, AbilityOneShotBasic)
			c.Weapons["staff"] = w
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidCatalog)
		})
	}
}

func TestCosts(t *testing.T) {
	c := Default()

	cost, ok := c.Cost(UpgradeWeaponLevel)
	require.True(t, ok)
	assert.Equal(t, 150, cost)

	_, ok = c.Cost("jetpack")
	assert.False(t, ok)

	ladder, ok := c.LadderCost(UpgradeHealth, 2)
	require.True(t, ok)
	assert.Equal(t, 320, ladder)

	ladder, _ = c.LadderCost(UpgradeHealth, 99)
	assert.Equal(t, 640, ladder, "выше лестницы берётся последняя ступень")
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
version: 2
upgrades:
  costs:
    weaponLevel: 10
    weaponDamage: 20
    health: 30
    speed: 40
  decay_rate: 0.25
level:
  length: 5000
  section_length: 500
  boss_archetype: archer
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Version)
	assert.Equal(t, 0.25, c.Upgrades.DecayRate)
	assert.Equal(t, 5000.0, c.Level.Length)
	assert.Equal(t, "archer", c.Level.BossArchetype)

	cost, _ := c.Cost(UpgradeWeaponLevel)
	assert.Equal(t, 10, cost)

	// Незаданные секции остаются встроенными
	_, ok := c.Weapon("sword")
	assert.True(t, ok)
	assert.Equal(t, 150.0, c.Player.BaseSpeed)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("version: 0"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = Parse([]byte("version: [oops"))
	assert.Error(t, err)
}

func TestEveryWeaponOneShotsOnLastLevel(t *testing.T) {
	c := Default()
	for name, w := range c.Weapons {
		assert.True(t, w.Levels[MaxWeaponLevel].Has(AbilityOneShotBasic), name)
	}
}

func TestParseRejectsWeaponWithoutOneShot(t *testing.T) {
	const levels = `
weapons:
  sword:
    name: Sword
    levels:
      - {damage: 1, range: 80}
      - {damage: 1, range: 80}
      - {damage: 1, range: 80}
      - {damage: 1, range: 80}
`
	_, err := Parse([]byte(levels + "      - {damage: 1, range: 80}\n"))
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	c, err := Parse([]byte(levels + "      - {damage: 1, range: 80, abilities: [one_shot_basic]}\n"))
	require.NoError(t, err)
	assert.True(t, c.Weapons["sword"].Levels[MaxWeaponLevel].Has(AbilityOneShotBasic))
}

func TestTierDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, TierSpec{HealthMultiplier: 1, DamageMultiplier: 1}, c.Tier(TierBasic))
	assert.Equal(t, 10.0, c.Tier(TierBoss).HealthMultiplier)
}
