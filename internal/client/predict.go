package client

import (
	"slices"

	"broodlink/internal/catalog"
	"broodlink/internal/placement"
	"broodlink/internal/speculative"
	"broodlink/internal/state"
)

const tile = 32

// prediction installs the expected immediate effect of one accepted command
// on one unit and its owner.
type prediction struct {
	c    *speculative.Cache
	cat  *catalog.Catalog
	w    *state.World
	u    state.Unit
	row  *speculative.UnitRow
	bank *speculative.PlayerRow
}

func (p prediction) flag(f speculative.Field, on bool) { speculative.Install(p.c, p.row.Flag(f), on) }
func (p prediction) order(o catalog.Order)             { speculative.Install(p.c, &p.row.Order, o) }
func (p prediction) target(id int)                     { speculative.Install(p.c, &p.row.OrderTarget, id) }
func (p prediction) busy()                             { p.flag(speculative.FieldIdle, false) }

func (p prediction) moveTo(x, y int) {
	speculative.Install(p.c, &p.row.TargetPosition, speculative.Point{X: x, Y: y})
	p.flag(speculative.FieldMoving, true)
	p.busy()
}

func (p prediction) spend(minerals, gas, supply int) {
	p.c.AddCounter(speculative.FieldMinerals, &p.bank.Minerals, -minerals)
	p.c.AddCounter(speculative.FieldGas, &p.bank.Gas, -gas)
	if supply != 0 {
		p.c.AddCounter(speculative.FieldSupplyUsed, &p.bank.SupplyUsed, supply)
	}
}

func (p prediction) refund(minerals, gas, supply int) { p.spend(-minerals, -gas, -supply) }

func (g *Game) predict(cmd Command) {
	if !g.spec.Enabled() {
		return
	}
	u, ok := g.world.Unit(cmd.Unit)
	if !ok {
		return
	}
	p := prediction{
		c:    g.spec,
		cat:  g.cat,
		w:    g.world,
		u:    u,
		row:  g.spec.Units().Row(cmd.Unit),
		bank: g.spec.Players().Row(u.Player()),
	}
	p.apply(cmd)
}

func (p prediction) apply(cmd Command) {
	u := p.u
	switch cmd.Kind {
	case catalog.CmdAttackMove:
		p.order(catalog.OrderAttackMove)
		p.moveTo(cmd.X, cmd.Y)
	case catalog.CmdAttackUnit:
		p.order(catalog.OrderAttackUnit)
		p.target(cmd.Target)
		p.flag(speculative.FieldAttacking, true)
		p.busy()
	case catalog.CmdMove:
		p.order(catalog.OrderMove)
		p.moveTo(cmd.X, cmd.Y)
		p.flag(speculative.FieldHoldingPosition, false)
		p.flag(speculative.FieldPatrolling, false)
	case catalog.CmdPatrol:
		p.order(catalog.OrderPatrol)
		p.moveTo(cmd.X, cmd.Y)
		p.flag(speculative.FieldPatrolling, true)
	case catalog.CmdHoldPosition:
		p.order(catalog.OrderHoldPosition)
		p.flag(speculative.FieldHoldingPosition, true)
		p.flag(speculative.FieldMoving, false)
		p.busy()
	case catalog.CmdStop:
		p.order(catalog.OrderStop)
		for _, f := range []speculative.Field{
			speculative.FieldMoving, speculative.FieldAttacking, speculative.FieldHoldingPosition,
			speculative.FieldPatrolling, speculative.FieldFollowing, speculative.FieldGathering,
			speculative.FieldRepairing,
		} {
			p.flag(f, false)
		}
		p.flag(speculative.FieldIdle, true)
	case catalog.CmdFollow:
		p.order(catalog.OrderFollow)
		p.target(cmd.Target)
		p.flag(speculative.FieldFollowing, true)
		p.flag(speculative.FieldMoving, true)
		p.busy()
	case catalog.CmdGather:
		p.gather(cmd.Target)
	case catalog.CmdReturnCargo:
		if u.IsCarryingGas() {
			p.order(catalog.OrderReturnGas)
		} else {
			p.order(catalog.OrderReturnMinerals)
		}
		p.flag(speculative.FieldGathering, true)
		p.busy()
	case catalog.CmdRepair:
		p.order(catalog.OrderRepair)
		p.target(cmd.Target)
		p.flag(speculative.FieldRepairing, true)
		p.busy()

	case catalog.CmdBuild:
		p.build(catalog.UnitType(cmd.Extra), cmd.X, cmd.Y)
	case catalog.CmdBuildAddon:
		t := catalog.UnitType(cmd.Extra)
		if d := p.cat.Unit(t); d != nil {
			p.spend(d.Minerals, d.Gas, 0)
		}
		p.order(catalog.OrderBuildAddon)
		speculative.Install(p.c, &p.row.BuildType, t)
		p.flag(speculative.FieldConstructing, true)
		p.busy()
	case catalog.CmdTrain, catalog.CmdMorph:
		p.produce(catalog.UnitType(cmd.Extra))
	case catalog.CmdResearch:
		p.research(catalog.TechType(cmd.Extra))
	case catalog.CmdUpgrade:
		p.upgrade(catalog.UpgradeType(cmd.Extra))

	case catalog.CmdSetRallyPosition:
		speculative.Install(p.c, &p.row.RallyPosition, speculative.Point{X: cmd.X, Y: cmd.Y})
		speculative.Install(p.c, &p.row.RallyUnit, -1)
	case catalog.CmdSetRallyUnit:
		speculative.Install(p.c, &p.row.RallyUnit, cmd.Target)

	case catalog.CmdBurrow:
		p.order(catalog.OrderBurrowing)
		p.flag(speculative.FieldBurrowed, true)
	case catalog.CmdUnburrow:
		p.order(catalog.OrderUnburrowing)
		p.flag(speculative.FieldBurrowed, false)
	case catalog.CmdCloak:
		p.order(catalog.OrderCloak)
		p.flag(speculative.FieldCloaked, true)
		if d := u.Def(); d != nil {
			p.drain(d.CloakingTech)
		}
	case catalog.CmdDecloak:
		p.order(catalog.OrderDecloak)
		p.flag(speculative.FieldCloaked, false)
	case catalog.CmdSiege:
		p.order(catalog.OrderSieging)
		p.flag(speculative.FieldSieged, true)
		speculative.Install(p.c, &p.row.Type, catalog.TerranSiegeTankSiegeMode)
	case catalog.CmdUnsiege:
		p.order(catalog.OrderUnsieging)
		p.flag(speculative.FieldSieged, false)
		speculative.Install(p.c, &p.row.Type, catalog.TerranSiegeTankTankMode)
	case catalog.CmdLift:
		p.order(catalog.OrderBuildingLiftOff)
		p.flag(speculative.FieldLifted, true)
		p.busy()
	case catalog.CmdLand:
		p.order(catalog.OrderBuildingLand)
		if d := u.Def(); d != nil {
			speculative.Install(p.c, &p.row.TargetPosition, speculative.Point{
				X: cmd.X*tile + d.TileWidth*tile/2,
				Y: cmd.Y*tile + d.TileHeight*tile/2,
			})
		}
		p.busy()

	case catalog.CmdLoad:
		p.load(cmd.Target)
	case catalog.CmdUnload:
		p.order(catalog.OrderUnload)
		p.target(cmd.Target)
		if cargo, ok := p.w.Unit(cmd.Target); ok && cargo.Exists() {
			p.other(cmd.Target).flag(speculative.FieldLoaded, false)
		}
	case catalog.CmdUnloadAll:
		p.order(catalog.OrderUnload)
		p.busy()
	case catalog.CmdUnloadAllPosition:
		p.order(catalog.OrderMoveUnload)
		p.moveTo(cmd.X, cmd.Y)

	case catalog.CmdRightClickPosition:
		if d := u.Def(); d != nil && d.IsBuilding() && !u.IsLifted() {
			speculative.Install(p.c, &p.row.RallyPosition, speculative.Point{X: cmd.X, Y: cmd.Y})
			return
		}
		p.order(catalog.OrderMove)
		p.moveTo(cmd.X, cmd.Y)
	case catalog.CmdRightClickUnit:
		p.rightClick(cmd.Target)

	case catalog.CmdHaltConstruction:
		p.order(catalog.OrderStop)
		p.flag(speculative.FieldConstructing, false)
		p.flag(speculative.FieldIdle, true)
	case catalog.CmdCancelConstruction:
		if d := u.Def(); d != nil {
			p.refund(d.Minerals*3/4, d.Gas*3/4, 0)
		}
		p.flag(speculative.FieldConstructing, false)
	case catalog.CmdCancelAddon:
		if d := p.cat.Unit(u.BuildType()); d != nil {
			p.refund(d.Minerals, d.Gas, 0)
		}
		speculative.Install(p.c, &p.row.BuildType, catalog.UnitTypeNone)
		p.flag(speculative.FieldConstructing, false)
		p.flag(speculative.FieldIdle, true)
	case catalog.CmdCancelTrain:
		p.cancelSlot(len(u.TrainingQueue()) - 1)
	case catalog.CmdCancelTrainSlot:
		p.cancelSlot(cmd.Extra)
	case catalog.CmdCancelMorph:
		p.cancelMorph()
	case catalog.CmdCancelResearch:
		t := u.Tech()
		if d := p.cat.Tech(t); d != nil {
			p.refund(d.Minerals, d.Gas, 0)
		}
		if t >= 0 && t < catalog.MaxTechTypes {
			speculative.Install(p.c, &p.bank.Researching[t], false)
		}
		speculative.Install(p.c, &p.row.Tech, catalog.TechNone)
		p.flag(speculative.FieldResearching, false)
		p.flag(speculative.FieldIdle, true)
	case catalog.CmdCancelUpgrade:
		up := u.Upgrade()
		if d := p.cat.Upgrade(up); d != nil {
			if bank, ok := p.w.Player(u.Player()); ok {
				lvl := bank.UpgradeLevel(up)
				p.refund(d.MineralPrice(lvl), d.GasPrice(lvl), 0)
			}
		}
		if up >= 0 && up < catalog.MaxUpgradeTypes {
			speculative.Install(p.c, &p.bank.Upgrading[up], false)
		}
		speculative.Install(p.c, &p.row.Upgrade, catalog.UpgradeNone)
		p.flag(speculative.FieldUpgrading, false)
		p.flag(speculative.FieldIdle, true)

	case catalog.CmdUseTech, catalog.CmdUseTechPosition, catalog.CmdUseTechUnit:
		tech := catalog.TechType(cmd.Extra)
		if d := p.cat.Tech(tech); d != nil && d.Order != 0 {
			p.order(d.Order)
		}
		p.drain(tech)
		switch cmd.Kind {
		case catalog.CmdUseTechPosition:
			speculative.Install(p.c, &p.row.TargetPosition, speculative.Point{X: cmd.X, Y: cmd.Y})
			p.busy()
		case catalog.CmdUseTechUnit:
			p.target(cmd.Target)
			p.busy()
		}
	case catalog.CmdPlaceCOP:
		p.order(catalog.OrderCTFCOPInit)
	}
}

func (p prediction) other(id int) prediction {
	q := p
	if u, ok := p.w.Unit(id); ok {
		q.u = u
	}
	q.row = p.c.Units().Row(id)
	return q
}

// drain predicts the energy spent casting tech.
func (p prediction) drain(tech catalog.TechType) {
	d := p.cat.Tech(tech)
	if d == nil || d.EnergyCost == 0 {
		return
	}
	speculative.Install(p.c, &p.row.Energy, max(p.u.Energy()-d.EnergyCost, 0))
}

func (p prediction) gather(target int) {
	order := catalog.OrderMoveToMinerals
	if t, ok := p.w.Unit(target); ok {
		if d := t.Def(); d != nil && d.IsRefinery() {
			order = catalog.OrderMoveToGas
		}
	}
	p.order(order)
	p.target(target)
	p.flag(speculative.FieldGathering, true)
	p.flag(speculative.FieldMoving, true)
	p.busy()
}

// build predicts a worker heading out to place t. Costs are charged by the
// engine when the building is placed, so none are reserved here.
func (p prediction) build(t catalog.UnitType, tx, ty int) {
	d := p.cat.Unit(t)
	if d == nil {
		return
	}
	order := catalog.OrderPlaceBuilding
	if d.Race == catalog.RaceProtoss {
		order = catalog.OrderPlaceProtossBuilding
	}
	p.order(order)
	speculative.Install(p.c, &p.row.BuildType, t)
	speculative.Install(p.c, &p.row.TargetPosition, speculative.Point{
		X: tx*tile + d.TileWidth*tile/2,
		Y: ty*tile + d.TileHeight*tile/2,
	})
	p.flag(speculative.FieldConstructing, true)
	p.busy()
}

// produce covers Train and Morph once legality has retargeted larva
// producers to a larva.
func (p prediction) produce(t catalog.UnitType) {
	d := p.cat.Unit(t)
	if d == nil {
		return
	}
	u := p.u
	p.spend(d.Minerals, d.Gas, placement.SupplyNeeded(p.w, &u, d))

	switch ut := u.Type(); {
	case ut == catalog.ZergLarva:
		p.morphInto(catalog.ZergEgg, t, catalog.OrderZergUnitMorph, d.BuildTime)
	case ut == catalog.ZergHydralisk && t == catalog.ZergLurker:
		p.morphInto(catalog.ZergLurkerEgg, t, catalog.OrderZergUnitMorph, d.BuildTime)
	case ut == catalog.ZergMutalisk && (t == catalog.ZergGuardian || t == catalog.ZergDevourer):
		p.morphInto(catalog.ZergCocoon, t, catalog.OrderZergUnitMorph, d.BuildTime)
	case d.IsBuilding() && d.Race == catalog.RaceZerg:
		p.morphInto(ut, t, catalog.OrderZergBuildingMorph, d.BuildTime)
	default:
		queue := slices.Clone(u.TrainingQueue())
		if len(queue) == 0 {
			speculative.Install(p.c, &p.row.RemainingTrainTime, d.BuildTime)
		}
		speculative.Install(p.c, &p.row.TrainingQueue, append(queue, t))
		p.order(catalog.OrderTrain)
		p.flag(speculative.FieldTraining, true)
		p.busy()
	}
}

func (p prediction) morphInto(shell, t catalog.UnitType, o catalog.Order, frames int) {
	speculative.Install(p.c, &p.row.Type, shell)
	speculative.Install(p.c, &p.row.BuildType, t)
	speculative.Install(p.c, &p.row.RemainingBuildTime, frames)
	p.order(o)
	p.flag(speculative.FieldMorphing, true)
	p.flag(speculative.FieldConstructing, true)
	p.busy()
}

func (p prediction) research(t catalog.TechType) {
	d := p.cat.Tech(t)
	if d == nil {
		return
	}
	p.spend(d.Minerals, d.Gas, 0)
	speculative.Install(p.c, &p.row.Tech, t)
	speculative.Install(p.c, &p.row.RemainingResearchTime, d.ResearchTime)
	if t >= 0 && t < catalog.MaxTechTypes {
		speculative.Install(p.c, &p.bank.Researching[t], true)
	}
	p.order(catalog.OrderResearchTech)
	p.flag(speculative.FieldResearching, true)
	p.busy()
}

func (p prediction) upgrade(up catalog.UpgradeType) {
	d := p.cat.Upgrade(up)
	bank, ok := p.w.Player(p.u.Player())
	if d == nil || !ok {
		return
	}
	lvl := bank.UpgradeLevel(up)
	p.spend(d.MineralPrice(lvl), d.GasPrice(lvl), 0)
	speculative.Install(p.c, &p.row.Upgrade, up)
	speculative.Install(p.c, &p.row.RemainingUpgradeTime, d.Time(lvl))
	if up >= 0 && up < catalog.MaxUpgradeTypes {
		speculative.Install(p.c, &p.bank.Upgrading[up], true)
	}
	p.order(catalog.OrderUpgrade)
	p.flag(speculative.FieldUpgrading, true)
	p.busy()
}

func (p prediction) load(target int) {
	t, ok := p.w.Unit(target)
	if !ok {
		return
	}
	carrier, cargo := p, p.other(target)
	if d := p.u.Def(); d == nil || d.SpaceProvided == 0 {
		carrier, cargo = p.other(target), p
	}
	if carrier.u.Type() == catalog.TerranBunker {
		cargo.order(catalog.OrderEnterTransport)
		cargo.target(carrier.u.ID())
		cargo.busy()
		return
	}
	if carrier.u.ID() == p.u.ID() {
		p.order(catalog.OrderPickupTransport)
		p.target(t.ID())
		p.busy()
		return
	}
	p.order(catalog.OrderEnterTransport)
	p.target(t.ID())
	p.flag(speculative.FieldMoving, true)
	p.busy()
}

func (p prediction) rightClick(target int) {
	t, ok := p.w.Unit(target)
	if !ok {
		return
	}
	owner, ok := p.w.Player(p.u.Player())
	d, td := p.u.Def(), t.Def()
	switch {
	case d == nil || td == nil:
	case ok && t.Player() >= 0 && owner.IsEnemy(t.Player()):
		p.order(catalog.OrderAttackUnit)
		p.target(target)
		p.flag(speculative.FieldAttacking, true)
		p.busy()
	case d.IsBuilding() && !p.u.IsLifted():
		speculative.Install(p.c, &p.row.RallyUnit, target)
	case d.IsWorker() && (td.IsResourceContainer() || td.IsRefinery()):
		p.gather(target)
	case td.SpaceProvided > 0 && t.IsOwnedBy(p.u.Player()) && d.SpaceRequired > 0:
		p.load(target)
	default:
		p.order(catalog.OrderFollow)
		p.target(target)
		p.flag(speculative.FieldFollowing, true)
		p.flag(speculative.FieldMoving, true)
		p.busy()
	}
}

func (p prediction) cancelSlot(slot int) {
	queue := slices.Clone(p.u.TrainingQueue())
	if slot < 0 || slot >= len(queue) {
		return
	}
	if d := p.cat.Unit(queue[slot]); d != nil {
		u := p.u
		p.refund(d.Minerals, d.Gas, placement.SupplyNeeded(p.w, &u, d))
	}
	queue = slices.Delete(queue, slot, slot+1)
	speculative.Install(p.c, &p.row.TrainingQueue, queue)
	if len(queue) == 0 {
		p.flag(speculative.FieldTraining, false)
		p.flag(speculative.FieldIdle, true)
	}
}

// cancelMorph restores the pre-morph type of an egg or cocoon and returns
// the full cost.
func (p prediction) cancelMorph() {
	bt := p.u.BuildType()
	d := p.cat.Unit(bt)
	if d == nil {
		return
	}
	from := d.WhatBuilds
	shell := p.u.Type()
	switch shell {
	case catalog.ZergEgg, catalog.ZergLurkerEgg, catalog.ZergCocoon:
		speculative.Install(p.c, &p.row.Type, from)
		if fd := p.cat.Unit(from); fd != nil {
			p.refund(d.Minerals, d.Gas, placement.SupplyNeeded(p.w, nil, d)-supplyOf(fd, from))
		}
	default:
		p.refund(d.Minerals, d.Gas, 0)
	}
	speculative.Install(p.c, &p.row.BuildType, catalog.UnitTypeNone)
	p.flag(speculative.FieldMorphing, false)
	p.flag(speculative.FieldConstructing, false)
	p.flag(speculative.FieldIdle, true)
}

// supplyOf is the supply a pre-morph unit already held. Larva hold none.
func supplyOf(d *catalog.UnitDef, t catalog.UnitType) int {
	if t == catalog.ZergLarva {
		return 0
	}
	return d.Supply
}
