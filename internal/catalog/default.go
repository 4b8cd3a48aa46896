package catalog

// cumulative накапливает способности: каждый уровень наследует предыдущие
func cumulative(levels []WeaponLevelStats) []WeaponLevelStats {
	var acc []Ability
	for i := range levels {
		acc = append(acc, levels[i].Abilities...)
		levels[i].Abilities = append([]Ability(nil), acc...)
	}
	return levels
}

// Default возвращает встроенный каталог версии 1
func Default() *Catalog {
	c := &Catalog{
		Version: CurrentVersion,
		Weapons: map[string]WeaponSpec{
			"sword": {
				Name: "Sword",
				Levels: cumulative([]WeaponLevelStats{
					{Damage: 20, Range: 80, CooldownMs: 2000},
					{Damage: 30, Range: 95, CooldownMs: 1800, Abilities: []Ability{AbilityIncreasedRange}},
					{Damage: 45, Range: 110, CooldownMs: 1600, Abilities: []Ability{AbilityDashAttack}},
					{Damage: 60, Range: 130, CooldownMs: 1400, Abilities: []Ability{AbilityThrowable}},
					{Damage: 80, Range: 160, CooldownMs: 1200, Abilities: []Ability{AbilityMagicSlash, AbilityOneShotBasic}},
				}),
			},
			"bow": {
				Name: "Bow",
				Levels: cumulative([]WeaponLevelStats{
					{Damage: 4, Range: 200, CooldownMs: 700},
					{Damage: 6, Range: 220, CooldownMs: 650, Abilities: []Ability{"faster_arrows"}},
					{Damage: 9, Range: 240, CooldownMs: 600, Abilities: []Ability{"double_shot"}},
					{Damage: 13, Range: 260, CooldownMs: 550, Abilities: []Ability{"homing"}},
					{Damage: 18, Range: 300, CooldownMs: 500, Abilities: []Ability{"elemental", "triple_shot", AbilityOneShotBasic}},
				}),
			},
			"staff": {
				Name: "Staff",
				Levels: cumulative([]WeaponLevelStats{
					{Damage: 5, Range: 150, CooldownMs: 800},
					{Damage: 7, Range: 160, CooldownMs: 750, Abilities: []Ability{"faster_projectile"}},
					{Damage: 10, Range: 180, CooldownMs: 700, Abilities: []Ability{"piercing"}},
					{Damage: 14, Range: 200, CooldownMs: 650, Abilities: []Ability{"area_damage"}},
					{Damage: 19, Range: 250, CooldownMs: 600, Abilities: []Ability{"crowd_control", "buff_aura", AbilityOneShotBasic}},
				}),
			},
		},
		Enemies: map[string]EnemyArchetype{
			TagArcher: {
				Name: "Archer", MaxHealth: 15, Damage: 2, Speed: 80,
				AttackRange: 300, PreferredDistance: 180, AIType: AIRanged,
				Width: 30, Height: 40,
			},
			TagTurtle: {
				Name: "Turtle", MaxHealth: 30, Damage: 4, Speed: 40,
				AttackRange: 60, PreferredDistance: 100, AIType: AIDefensive,
				Width: 40, Height: 60,
			},
			TagSpeedZombie: {
				Name: "Speed Zombie", MaxHealth: 12, Damage: 3, Speed: 120,
				AttackRange: 40, PreferredDistance: 0, AIType: AIAggressive,
				Width: 40, Height: 60,
			},
			TagGiantRabbit: {
				Name: "Giant Rabbit", MaxHealth: 20, Damage: 5, Speed: 120,
				AttackRange: 50, PreferredDistance: 80, AIType: AIUnpredictable,
				Width: 40, Height: 60,
			},
		},
		EnemyPool: []string{TagArcher, TagTurtle, TagSpeedZombie, TagGiantRabbit},
		Tiers: map[Tier]TierSpec{
			TierMiniboss: {HealthMultiplier: 3, DamageMultiplier: 1.5, Width: 60, Height: 90},
			TierBoss:     {HealthMultiplier: 10, DamageMultiplier: 2, Width: 100, Height: 140},
		},
		Upgrades: UpgradeSpec{
			Costs: map[UpgradeType]int{
				UpgradeWeaponLevel:  150,
				UpgradeWeaponDamage: 100,
				UpgradeHealth:       80,
				UpgradeSpeed:        120,
			},
			CostLadder: map[UpgradeType][]int{
				UpgradeWeaponDamage: {100, 200, 400, 800},
				UpgradeWeaponLevel:  {150, 300, 600, 1200},
				UpgradeHealth:       {80, 160, 320, 640},
				UpgradeSpeed:        {120, 240, 480, 960},
			},
			DecayRate:        0.5,
			HealthPerLevel:   50,
			SpeedPerLevel:    60,
			DamagePerUpgrade: 0,
		},
		Player: PlayerSpec{
			BaseHealth:           100,
			BaseSpeed:            150,
			JumpForce:            -600,
			DashSpeed:            300,
			DashDurationMs:       200,
			DashCooldownMs:       1000,
			ParryWindowMs:        150,
			ParryCooldownMs:      800,
			ParryReward:          2.0,
			HitInvulnerabilityMs: 500,
			SpawnX:               100,
			SpawnY:               300,
			Width:                60,
			Height:               90,
			MaxVelocityX:         300,
			MaxVelocityY:         600,
		},
		Level: LevelSpec{
			Length:           3000,
			SectionLength:    400,
			SpawnChance:      0.6,
			SpawnY:           520,
			MiniBossCount:    5,
			BossOffset:       200,
			MinSpawnDistance: 620,
			PlatformHeights:  []float64{100, 200, 300},
			PlatformSpacing:  400,
			HealthPacksMin:   5,
			HealthPacksMax:   8,
			FinishOffset:     150,
			KillReward:       5,
			MaxLevel:         10,
		},
	}
	for tag, e := range c.Enemies {
		e.Tag = tag
		c.Enemies[tag] = e
	}
	return c
}
