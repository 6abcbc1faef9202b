package catalog

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Flag uint32

const (
	FlagBuilding Flag = 1 << iota
	FlagAddon
	FlagLifts
	FlagMobile
	FlagWorker
	FlagFlyer
	FlagOrganic
	FlagMechanical
	FlagRobotic
	FlagResource
	FlagDepot
	FlagRefinery
	FlagLarva
	FlagProduces
	FlagAddons
	FlagPsi
	FlagCreep
	FlagCritter
	FlagPowerup
	FlagSpecial
	FlagBeacon
	FlagSpell
	FlagDetector
	FlagInvincible
)

var flagNames = map[string]Flag{
	"building":   FlagBuilding,
	"addon":      FlagAddon,
	"lifts":      FlagLifts,
	"mobile":     FlagMobile,
	"worker":     FlagWorker,
	"flyer":      FlagFlyer,
	"organic":    FlagOrganic,
	"mechanical": FlagMechanical,
	"robotic":    FlagRobotic,
	"resource":   FlagResource,
	"depot":      FlagDepot,
	"refinery":   FlagRefinery,
	"larva":      FlagLarva,
	"produces":   FlagProduces,
	"addons":     FlagAddons,
	"psi":        FlagPsi,
	"creep":      FlagCreep,
	"critter":    FlagCritter,
	"powerup":    FlagPowerup,
	"special":    FlagSpecial,
	"beacon":     FlagBeacon,
	"spell":      FlagSpell,
	"detector":   FlagDetector,
	"invincible": FlagInvincible,
}

type UnitDef struct {
	ID             UnitType   `yaml:"id"`
	Name           string     `yaml:"name"`
	Race           Race       `yaml:"race"`
	Minerals       int        `yaml:"min"`
	Gas            int        `yaml:"gas"`
	Supply         int        `yaml:"supply"`
	SupplyProvided int        `yaml:"provides"`
	BuildTime      int        `yaml:"time"`
	TileWidth      int        `yaml:"w"`
	TileHeight     int        `yaml:"h"`
	MaxHitPoints   int        `yaml:"hp"`
	MaxShields     int        `yaml:"sh"`
	MaxEnergy      int        `yaml:"en"`
	SpaceRequired  int        `yaml:"space"`
	SpaceProvided  int        `yaml:"carry"`
	GroundRange    int        `yaml:"ground"`
	GroundMinRange int        `yaml:"ground_min"`
	AirRange       int        `yaml:"air"`
	WhatBuilds     UnitType   `yaml:"from"`
	RequiredUnits  []UnitType `yaml:"requires"`
	RequiredAddon  UnitType   `yaml:"addon"`
	RequiredTech   TechType   `yaml:"tech"`
	Satisfies      []UnitType `yaml:"satisfies"`
	Abilities      []TechType `yaml:"abilities"`
	CloakingTech   TechType   `yaml:"cloak"`
	RawFlags       []string   `yaml:"flags"`

	flags Flag
}

func (d *UnitDef) Has(f Flag) bool { return d != nil && d.flags&f == f }

func (d *UnitDef) IsBuilding() bool          { return d.Has(FlagBuilding) }
func (d *UnitDef) IsAddon() bool             { return d.Has(FlagAddon) }
func (d *UnitDef) IsFlyingBuilding() bool    { return d.Has(FlagLifts) }
func (d *UnitDef) CanMove() bool             { return d.Has(FlagMobile) }
func (d *UnitDef) IsWorker() bool            { return d.Has(FlagWorker) }
func (d *UnitDef) IsFlyer() bool             { return d.Has(FlagFlyer) }
func (d *UnitDef) IsOrganic() bool           { return d.Has(FlagOrganic) }
func (d *UnitDef) IsMechanical() bool        { return d.Has(FlagMechanical) }
func (d *UnitDef) IsRobotic() bool           { return d.Has(FlagRobotic) }
func (d *UnitDef) IsResourceContainer() bool { return d.Has(FlagResource) }
func (d *UnitDef) IsResourceDepot() bool     { return d.Has(FlagDepot) }
func (d *UnitDef) IsRefinery() bool          { return d.Has(FlagRefinery) }
func (d *UnitDef) ProducesLarva() bool       { return d.Has(FlagLarva) }
func (d *UnitDef) CanProduce() bool          { return d.Has(FlagProduces) }
func (d *UnitDef) CanBuildAddon() bool       { return d.Has(FlagAddons) }
func (d *UnitDef) RequiresPsi() bool         { return d.Has(FlagPsi) }
func (d *UnitDef) RequiresCreep() bool       { return d.Has(FlagCreep) }
func (d *UnitDef) IsCritter() bool           { return d.Has(FlagCritter) }
func (d *UnitDef) IsPowerup() bool           { return d.Has(FlagPowerup) }
func (d *UnitDef) IsSpecialBuilding() bool   { return d.Has(FlagSpecial) }
func (d *UnitDef) IsFlagBeacon() bool        { return d.Has(FlagBeacon) }
func (d *UnitDef) IsSpell() bool             { return d.Has(FlagSpell) }
func (d *UnitDef) IsDetector() bool          { return d.Has(FlagDetector) }
func (d *UnitDef) IsInvincible() bool        { return d.Has(FlagInvincible) }

func (d *UnitDef) HasGroundWeapon() bool { return d != nil && d.GroundRange > 0 }
func (d *UnitDef) HasAirWeapon() bool    { return d != nil && d.AirRange > 0 }

// HasAbility reports whether units of this type can use tech t.
func (d *UnitDef) HasAbility(t TechType) bool {
	if d == nil {
		return false
	}
	for _, a := range d.Abilities {
		if a == t {
			return true
		}
	}
	return false
}

type TechDef struct {
	ID              TechType `yaml:"id"`
	Name            string   `yaml:"name"`
	Minerals        int      `yaml:"min"`
	Gas             int      `yaml:"gas"`
	ResearchTime    int      `yaml:"time"`
	EnergyCost      int      `yaml:"energy"`
	WhatResearches  UnitType `yaml:"from"`
	TargetsUnit     bool     `yaml:"unit"`
	TargetsPosition bool     `yaml:"pos"`
	Free            bool     `yaml:"free"`
	Order           Order    `yaml:"order"`
}

type UpgradeDef struct {
	ID            UpgradeType `yaml:"id"`
	Name          string      `yaml:"name"`
	Minerals      int         `yaml:"min"`
	Gas           int         `yaml:"gas"`
	MineralsStep  int         `yaml:"min_step"`
	GasStep       int         `yaml:"gas_step"`
	UpgradeTime   int         `yaml:"time"`
	UpgradeStep   int         `yaml:"time_step"`
	MaxLevel      int         `yaml:"max"`
	WhatUpgrades  UnitType    `yaml:"from"`
	LevelRequires []UnitType  `yaml:"levels"`
}

// MineralPrice is the cost of the next level when `owned` levels are already done.
func (u *UpgradeDef) MineralPrice(owned int) int { return u.Minerals + owned*u.MineralsStep }
func (u *UpgradeDef) GasPrice(owned int) int     { return u.Gas + owned*u.GasStep }
func (u *UpgradeDef) Time(owned int) int         { return u.UpgradeTime + owned*u.UpgradeStep }

// RequirementFor returns the unit type needed to start level `owned+1`, or UnitTypeNone.
func (u *UpgradeDef) RequirementFor(owned int) UnitType {
	if owned < 0 || owned >= len(u.LevelRequires) || u.LevelRequires[owned] == 0 {
		return UnitTypeNone
	}
	return u.LevelRequires[owned]
}

type Catalog struct {
	units    map[UnitType]*UnitDef
	techs    map[TechType]*TechDef
	upgrades map[UpgradeType]*UpgradeDef

	// users[t] lists the unit types that carry tech t as an ability.
	users map[TechType][]UnitType
}

func (c *Catalog) Unit(t UnitType) *UnitDef { return c.units[t] }

func (c *Catalog) Tech(t TechType) *TechDef { return c.techs[t] }

func (c *Catalog) Upgrade(t UpgradeType) *UpgradeDef { return c.upgrades[t] }

func (c *Catalog) TechUsers(t TechType) []UnitType { return c.users[t] }

// Satisfies reports whether owning a completed `have` meets a requirement on `want`.
func (c *Catalog) Satisfies(have, want UnitType) bool {
	if have == want {
		return true
	}
	d := c.units[have]
	if d == nil {
		return false
	}
	for _, s := range d.Satisfies {
		if s == want {
			return true
		}
	}
	return false
}

func (c *Catalog) UnitTypes() []UnitType {
	out := make([]UnitType, 0, len(c.units))
	for t := range c.units {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type unitFile struct {
	Units []*UnitDef `yaml:"units"`
}

type techFile struct {
	Techs []*TechDef `yaml:"techs"`
}

type upgradeFile struct {
	Upgrades []*UpgradeDef `yaml:"upgrades"`
}

// Load parses the three tables. Every cross-reference must resolve.
func Load(units, techs, upgrades []byte) (*Catalog, error) {
	var uf unitFile
	if err := yaml.Unmarshal(units, &uf); err != nil {
		return nil, fmt.Errorf("units.yaml: %w", err)
	}
	var tf techFile
	if err := yaml.Unmarshal(techs, &tf); err != nil {
		return nil, fmt.Errorf("techs.yaml: %w", err)
	}
	var gf upgradeFile
	if err := yaml.Unmarshal(upgrades, &gf); err != nil {
		return nil, fmt.Errorf("upgrades.yaml: %w", err)
	}

	c := &Catalog{
		units:    make(map[UnitType]*UnitDef, len(uf.Units)),
		techs:    make(map[TechType]*TechDef, len(tf.Techs)),
		upgrades: make(map[UpgradeType]*UpgradeDef, len(gf.Upgrades)),
		users:    map[TechType][]UnitType{},
	}
	for _, d := range tf.Techs {
		if _, dup := c.techs[d.ID]; dup {
			return nil, fmt.Errorf("techs.yaml: duplicate id %d", d.ID)
		}
		c.techs[d.ID] = d
	}
	for _, d := range gf.Upgrades {
		if _, dup := c.upgrades[d.ID]; dup {
			return nil, fmt.Errorf("upgrades.yaml: duplicate id %d", d.ID)
		}
		c.upgrades[d.ID] = d
	}
	for _, d := range uf.Units {
		if _, dup := c.units[d.ID]; dup {
			return nil, fmt.Errorf("units.yaml: duplicate id %d", d.ID)
		}
		for _, name := range d.RawFlags {
			f, ok := flagNames[name]
			if !ok {
				return nil, fmt.Errorf("units.yaml: %s: unknown flag %q", d.Name, name)
			}
			d.flags |= f
		}
		if d.TileWidth == 0 {
			d.TileWidth = 1
		}
		if d.TileHeight == 0 {
			d.TileHeight = 1
		}
		if d.RequiredAddon == 0 {
			d.RequiredAddon = UnitTypeNone
		}
		if d.CloakingTech == 0 {
			d.CloakingTech = TechNone
		}
		if d.RequiredTech == 0 {
			d.RequiredTech = TechNone
		}
		c.units[d.ID] = d
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, d := range uf.Units {
		for _, t := range d.Abilities {
			c.users[t] = append(c.users[t], d.ID)
		}
	}
	return c, nil
}

func (c *Catalog) validate() error {
	known := func(t UnitType) bool {
		return t == UnitTypeNone || c.units[t] != nil
	}
	for _, d := range c.units {
		if !known(d.WhatBuilds) {
			return fmt.Errorf("units.yaml: %s: unknown builder %d", d.Name, d.WhatBuilds)
		}
		if !known(d.RequiredAddon) {
			return fmt.Errorf("units.yaml: %s: unknown addon %d", d.Name, d.RequiredAddon)
		}
		for _, r := range append(append([]UnitType{}, d.RequiredUnits...), d.Satisfies...) {
			if !known(r) {
				return fmt.Errorf("units.yaml: %s: unknown unit reference %d", d.Name, r)
			}
		}
		for _, t := range d.Abilities {
			if c.techs[t] == nil {
				return fmt.Errorf("units.yaml: %s: unknown ability %d", d.Name, t)
			}
		}
		if d.RequiredTech != TechNone && c.techs[d.RequiredTech] == nil {
			return fmt.Errorf("units.yaml: %s: unknown tech %d", d.Name, d.RequiredTech)
		}
	}
	for _, t := range c.techs {
		if !known(t.WhatResearches) {
			return fmt.Errorf("techs.yaml: %s: unknown researcher %d", t.Name, t.WhatResearches)
		}
	}
	for _, u := range c.upgrades {
		if !known(u.WhatUpgrades) {
			return fmt.Errorf("upgrades.yaml: %s: unknown upgrader %d", u.Name, u.WhatUpgrades)
		}
		for _, r := range u.LevelRequires {
			if r != 0 && !known(r) {
				return fmt.Errorf("upgrades.yaml: %s: unknown level requirement %d", u.Name, r)
			}
		}
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded tables. It panics if they are malformed, which
// TestDefault guards against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = loadEmbedded()
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCat
}

func loadEmbedded() (*Catalog, error) {
	read := func(name string) ([]byte, error) {
		b, err := dataFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return b, nil
	}
	u, err := read("units.yaml")
	if err != nil {
		return nil, err
	}
	t, err := read("techs.yaml")
	if err != nil {
		return nil, err
	}
	g, err := read("upgrades.yaml")
	if err != nil {
		return nil, err
	}
	return Load(u, t, g)
}
