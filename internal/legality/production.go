package legality

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

const maxTrainingQueue = 5

func unitArg(c *Command) catalog.UnitType { return catalog.UnitType(c.Extra) }

func (e *Engine) canBuild(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if u.IsConstructing() || !u.IsCompleted() || (d.IsBuilding() && !u.IsIdle()) {
		return protocol.ErrUnitBusy
	}
	if u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) buildWith(u state.Unit, c *Command) string {
	t := unitArg(c)
	if r := e.prereq.CanMake(e.w, &u, t); r != "" {
		return r
	}
	if d := e.w.Cat.Unit(t); !d.IsBuilding() || d.IsAddon() {
		return protocol.ErrIncompatibleType
	}
	if u.Addon() >= 0 {
		return protocol.ErrIncapable
	}
	return e.sites.CanBuildHere(e.w, &u, t, c.X, c.Y, true)
}

func (e *Engine) canBuildAddon(u state.Unit) string {
	if u.IsConstructing() || !u.IsCompleted() || u.IsLifted() || (u.Def().IsBuilding() && !u.IsIdle()) {
		return protocol.ErrUnitBusy
	}
	if a, ok := e.w.Unit(u.Addon()); ok && a.Exists() {
		return protocol.ErrIncompatibleState
	}
	if !u.Def().CanBuildAddon() {
		return protocol.ErrIncapable
	}
	return ""
}

// AddonTile is where an addon of type t attaches to builder u, in tiles.
func (e *Engine) AddonTile(u state.Unit, t catalog.UnitType) (tx, ty int) {
	d, ad := u.Def(), e.w.Cat.Unit(t)
	x, y := u.Position()
	tx = (x-d.TileWidth*16)/32 + d.TileWidth
	ty = (y-d.TileHeight*16)/32 + d.TileHeight
	if ad != nil {
		ty -= ad.TileHeight
	}
	return tx, ty
}

func (e *Engine) buildAddonWith(u state.Unit, c *Command) string {
	t := unitArg(c)
	if r := e.prereq.CanMake(e.w, &u, t); r != "" {
		return r
	}
	if !e.w.Cat.Unit(t).IsAddon() {
		return protocol.ErrIncompatibleType
	}
	tx, ty := e.AddonTile(u, t)
	if r := e.sites.CanBuildHere(e.w, &u, t, tx, ty, false); r != "" {
		return protocol.ErrUnbuildable
	}
	return ""
}

func trainer(t catalog.UnitType) bool {
	switch t {
	case catalog.TerranNuclearSilo, catalog.ZergHydralisk, catalog.ZergMutalisk,
		catalog.ZergCreepColony, catalog.ZergSpire, catalog.ZergLarva:
		return true
	}
	return false
}

func morpher(t catalog.UnitType) bool {
	switch t {
	case catalog.ZergHydralisk, catalog.ZergMutalisk, catalog.ZergCreepColony, catalog.ZergSpire,
		catalog.ZergHatchery, catalog.ZergLair, catalog.ZergHive, catalog.ZergLarva:
		return true
	}
	return false
}

func (e *Engine) canTrain(u state.Unit) string {
	d := u.Def()
	if d.ProducesLarva() {
		if !u.IsConstructing() && u.IsCompleted() {
			return ""
		}
		if _, ok := e.larva(u, func(state.Unit) bool { return true }); ok {
			return ""
		}
		return protocol.ErrUnitBusy
	}
	if u.IsConstructing() || !u.IsCompleted() || u.IsLifted() {
		return protocol.ErrUnitBusy
	}
	if !d.CanProduce() && !trainer(u.Type()) {
		return protocol.ErrIncapable
	}
	if u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canMorph(u state.Unit) string {
	d := u.Def()
	if d.ProducesLarva() {
		if !u.IsConstructing() && u.IsCompleted() && (!d.IsBuilding() || u.IsIdle()) {
			return ""
		}
		if _, ok := e.larva(u, func(state.Unit) bool { return true }); ok {
			return ""
		}
		return protocol.ErrUnitBusy
	}
	if u.IsConstructing() || !u.IsCompleted() || (d.IsBuilding() && !u.IsIdle()) {
		return protocol.ErrUnitBusy
	}
	if !morpher(u.Type()) {
		return protocol.ErrIncapable
	}
	if u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

// retarget swaps a larva producer for one of its larva when t hatches from
// larva. busy is the producer's own readiness check for other types.
func (e *Engine) retarget(u state.Unit, c *Command, t catalog.UnitType, ready func(state.Unit) string, busy bool) (state.Unit, string) {
	if !u.Def().ProducesLarva() {
		return u, ""
	}
	d := e.w.Cat.Unit(t)
	if d != nil && d.WhatBuilds == catalog.ZergLarva {
		l, ok := e.larva(u, func(l state.Unit) bool { return ready(l) == "" })
		if !ok {
			return u, protocol.ErrUnitBusy
		}
		c.Unit = l.ID()
		return l, ""
	}
	if busy {
		return u, protocol.ErrUnitBusy
	}
	return u, ""
}

func (e *Engine) trainWith(u state.Unit, c *Command) string {
	t := unitArg(c)
	u, r := e.retarget(u, c, t, e.canTrain, u.IsConstructing() || !u.IsCompleted())
	if r != "" {
		return r
	}
	if len(u.TrainingQueue()) >= maxTrainingQueue {
		return protocol.ErrUnitBusy
	}
	if r := e.prereq.CanMake(e.w, &u, t); r != "" {
		return r
	}
	d := e.w.Cat.Unit(t)
	if d.IsAddon() || (d.IsBuilding() && !u.Def().IsBuilding()) {
		return protocol.ErrIncompatibleType
	}
	switch t {
	case catalog.ZergLarva, catalog.ZergEgg, catalog.ZergCocoon:
		return protocol.ErrIncompatibleType
	}
	return ""
}

func (e *Engine) morphWith(u state.Unit, c *Command) string {
	t := unitArg(c)
	busy := u.IsConstructing() || !u.IsCompleted() || (u.Def().IsBuilding() && !u.IsIdle())
	u, r := e.retarget(u, c, t, e.canMorph, busy)
	if r != "" {
		return r
	}
	if r := e.prereq.CanMake(e.w, &u, t); r != "" {
		return r
	}
	switch t {
	case catalog.ZergLarva, catalog.ZergEgg, catalog.ZergCocoon:
		return protocol.ErrIncompatibleType
	}
	return ""
}

func (e *Engine) canResearch(u state.Unit) string {
	if u.IsLifted() || !u.IsIdle() || !u.IsCompleted() {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) researchWith(u state.Unit, c *Command) string {
	tech := catalog.TechType(c.Extra)
	td := e.w.Cat.Tech(tech)
	if td == nil {
		return protocol.ErrIncompatibleTech
	}
	if u.Player() != e.self() {
		return protocol.ErrUnitNotOwned
	}
	if !e.w.Cat.Satisfies(u.Type(), td.WhatResearches) {
		return protocol.ErrIncompatibleType
	}
	p, ok := e.selfPlayer()
	if !ok {
		return protocol.ErrUnitNotOwned
	}
	if p.IsResearching(tech) {
		return protocol.ErrCurrentlyResearching
	}
	if p.HasTech(tech) {
		return protocol.ErrAlreadyResearched
	}
	if p.Minerals() < td.Minerals {
		return protocol.ErrInsufficientMinerals
	}
	if p.Gas() < td.Gas {
		return protocol.ErrInsufficientGas
	}
	return ""
}

func (e *Engine) upgradeWith(u state.Unit, c *Command) string {
	up := catalog.UpgradeType(c.Extra)
	ud := e.w.Cat.Upgrade(up)
	if ud == nil {
		return protocol.ErrBadParameter
	}
	if u.Player() != e.self() {
		return protocol.ErrUnitNotOwned
	}
	if !e.w.Cat.Satisfies(u.Type(), ud.WhatUpgrades) {
		return protocol.ErrIncompatibleType
	}
	p, ok := e.selfPlayer()
	if !ok {
		return protocol.ErrUnitNotOwned
	}
	owned := p.UpgradeLevel(up)
	if req := ud.RequirementFor(owned); req != catalog.UnitTypeNone && !p.HasCompleted(req) {
		return protocol.ErrInsufficientTech
	}
	if owned+1 > ud.MaxLevel {
		return protocol.ErrFullyUpgraded
	}
	if p.IsUpgrading(up) {
		return protocol.ErrCurrentlyUpgrading
	}
	if p.Minerals() < ud.MineralPrice(owned) {
		return protocol.ErrInsufficientMinerals
	}
	if p.Gas() < ud.GasPrice(owned) {
		return protocol.ErrInsufficientGas
	}
	return ""
}

func (e *Engine) canUseTech(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if len(d.Abilities) == 0 || u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canUseTechAny(u state.Unit, tech catalog.TechType) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !d.HasAbility(tech) || u.IsHallucination() {
		return protocol.ErrIncapable
	}
	td := e.w.Cat.Tech(tech)
	if td == nil {
		return protocol.ErrIncompatibleTech
	}
	if td.EnergyCost > u.Energy() {
		return protocol.ErrInsufficientEnergy
	}
	p, ok := e.selfPlayer()
	if !ok {
		return protocol.ErrUnitNotOwned
	}
	lurkerBurrow := tech == catalog.TechBurrowing && u.Type() == catalog.ZergLurker
	if !lurkerBurrow && !p.HasTech(tech) {
		return protocol.ErrInsufficientTech
	}
	if tech == catalog.TechSpiderMines && u.SpiderMineCount() <= 0 {
		return protocol.ErrInsufficientAmmo
	}
	if tech == catalog.TechNuclearStrike && p.CompletedUnitCount(catalog.TerranNuclearMissile) == 0 {
		return protocol.ErrInsufficientAmmo
	}
	return ""
}

func (e *Engine) canUseTechWithoutTarget(u state.Unit, tech catalog.TechType) string {
	if r := e.canUseTechAny(u, tech); r != "" {
		return r
	}
	td := e.w.Cat.Tech(tech)
	if td.TargetsUnit || td.TargetsPosition || tech == catalog.TechLurkerAspect {
		return protocol.ErrIncompatibleTech
	}
	switch tech {
	case catalog.TechStimPacks:
		if u.HitPoints() <= 10 {
			return protocol.ErrIncompatibleState
		}
	case catalog.TechCloakingField, catalog.TechPersonnelCloaking:
		if u.SecondaryOrder() == catalog.OrderCloak {
			return protocol.ErrIncompatibleState
		}
	case catalog.TechBurrowing:
		if o := u.Order(); u.IsBurrowed() || o == catalog.OrderBurrowing || o == catalog.OrderUnburrowing {
			return protocol.ErrIncompatibleState
		}
	case catalog.TechTankSiegeMode:
		if o := u.Order(); sieged(u) || o == catalog.OrderSieging || o == catalog.OrderUnsieging {
			return protocol.ErrIncompatibleState
		}
	}
	return ""
}

func (e *Engine) useTechWith(u state.Unit, c *Command) string {
	return e.canUseTechWithoutTarget(u, catalog.TechType(c.Extra))
}

func (e *Engine) useTechPositionWith(u state.Unit, c *Command) string {
	tech := catalog.TechType(c.Extra)
	if r := e.canUseTechAny(u, tech); r != "" {
		return r
	}
	if !e.w.Cat.Tech(tech).TargetsPosition {
		return protocol.ErrIncompatibleTech
	}
	if !e.inMap(c.X, c.Y) {
		return protocol.ErrBadParameter
	}
	if tech == catalog.TechSpiderMines && !e.hasPath(u, c.X, c.Y) {
		return protocol.ErrUnreachable
	}
	return ""
}

func (e *Engine) useTechUnitWith(u state.Unit, c *Command) string {
	tech := catalog.TechType(c.Extra)
	if r := e.canUseTechAny(u, tech); r != "" {
		return r
	}
	if !e.w.Cat.Tech(tech).TargetsUnit {
		return protocol.ErrIncompatibleTech
	}
	t, r := e.target(c)
	if r != "" {
		return r
	}
	td := t.Def()
	switch tech {
	case catalog.TechArchonWarp, catalog.TechDarkArchonMeld:
		want := catalog.ProtossHighTemplar
		if tech == catalog.TechDarkArchonMeld {
			want = catalog.ProtossDarkTemplar
		}
		if t.Type() != want {
			return protocol.ErrIncompatibleType
		}
		if t.Player() != e.self() {
			return protocol.ErrUnitNotOwned
		}
		if t.ID() == u.ID() {
			return protocol.ErrBadParameter
		}
	case catalog.TechConsume:
		if t.Player() != e.self() {
			return protocol.ErrUnitNotOwned
		}
		if td.Race != catalog.RaceZerg || t.Type() == catalog.ZergLarva || td.IsBuilding() {
			return protocol.ErrIncompatibleType
		}
	case catalog.TechSpawnBroodlings:
		if td.IsBuilding() || t.IsFlying() || td.IsRobotic() || t.Type() == catalog.ZergLarva || t.Type() == catalog.ZergEgg {
			return protocol.ErrIncompatibleType
		}
	case catalog.TechLockdown:
		if !td.IsMechanical() || td.IsBuilding() {
			return protocol.ErrIncompatibleType
		}
	case catalog.TechHealing:
		if !td.IsOrganic() || t.IsFlying() {
			return protocol.ErrIncompatibleType
		}
		if t.HitPoints() >= td.MaxHitPoints {
			return protocol.ErrIncompatibleState
		}
	case catalog.TechMindControl:
		if t.Player() == e.self() {
			return protocol.ErrBadParameter
		}
		if td.IsBuilding() {
			return protocol.ErrIncompatibleType
		}
	case catalog.TechFeedback:
		if td.IsBuilding() || td.MaxEnergy == 0 {
			return protocol.ErrIncompatibleType
		}
	case catalog.TechOpticalFlare, catalog.TechDefensiveMatrix, catalog.TechIrradiate,
		catalog.TechRestoration, catalog.TechParasite:
		if td.IsBuilding() {
			return protocol.ErrIncompatibleType
		}
	}
	return ""
}
