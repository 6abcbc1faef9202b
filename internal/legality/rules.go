package legality

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

// Rules for individual orders. can is the parameterless check; the *With
// variants inspect the command's target or arguments.

func (e *Engine) target(c *Command) (state.Unit, string) { return e.unit(c.Target) }

func (e *Engine) canAttackMove(u state.Unit) string {
	if u.Type() != catalog.TerranMedic && e.canAttackUnit(u) != "" {
		return protocol.ErrIncapable
	}
	if e.canMove(u) != "" {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canAttackUnit(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !d.HasGroundWeapon() && !d.HasAirWeapon() {
		switch u.Type() {
		case catalog.ProtossCarrier:
			if u.InterceptorCount() <= 0 {
				return protocol.ErrUnableToHit
			}
		case catalog.ProtossReaver:
			if u.ScarabCount() <= 0 {
				return protocol.ErrUnableToHit
			}
		default:
			return protocol.ErrUnableToHit
		}
	}
	if u.Type() == catalog.ZergLurker {
		if !u.IsBurrowed() {
			return protocol.ErrUnableToHit
		}
	} else if u.IsBurrowed() {
		return protocol.ErrUnableToHit
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) attackUnitWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if t.Def().IsInvincible() {
		return protocol.ErrUnableToHit
	}
	d := u.Def()
	air := t.IsFlying()
	armed := d.HasGroundWeapon()
	if air {
		armed = d.HasAirWeapon()
	}
	if !armed {
		switch u.Type() {
		case catalog.ProtossCarrier:
			if u.InterceptorCount() <= 0 {
				return protocol.ErrUnableToHit
			}
		case catalog.ProtossReaver:
			if u.ScarabCount() <= 0 || air {
				return protocol.ErrUnableToHit
			}
		default:
			return protocol.ErrUnableToHit
		}
	}
	if !d.CanMove() && !e.inWeaponRange(u, t) {
		return protocol.ErrOutOfRange
	}
	if u.Type() == catalog.ZergLurker && !e.inWeaponRange(u, t) {
		return protocol.ErrOutOfRange
	}
	if t.ID() == u.ID() {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) canMove(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() {
		if !u.IsInterruptible() {
			return protocol.ErrUnitBusy
		}
		if !d.CanMove() || u.IsBurrowed() || u.Type() == catalog.ZergLarva {
			return protocol.ErrIncapable
		}
		if u.Order() == catalog.OrderConstructingBuilding {
			return protocol.ErrUnitBusy
		}
	} else if !d.IsFlyingBuilding() || !u.IsLifted() {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) followWith(u state.Unit, c *Command) string {
	if c.Target == u.ID() {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) canHoldPosition(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() {
		if !u.IsInterruptible() {
			return protocol.ErrUnitBusy
		}
		if !d.CanMove() && !sieged(u) {
			return protocol.ErrIncapable
		}
		if u.IsBurrowed() && u.Type() != catalog.ZergLurker {
			return protocol.ErrIncapable
		}
		if u.Order() == catalog.OrderConstructingBuilding {
			return protocol.ErrUnitBusy
		}
		if u.Type() == catalog.ZergLarva {
			return protocol.ErrIncapable
		}
	} else if !d.IsFlyingBuilding() || !u.IsLifted() {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canStop(u state.Unit) string {
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if u.IsBurrowed() && u.Type() != catalog.ZergLurker {
		return protocol.ErrIncapable
	}
	if u.Def().IsBuilding() && !u.IsLifted() {
		switch u.Type() {
		case catalog.ProtossPhotonCannon, catalog.ZergSunkenColony, catalog.ZergSporeColony, catalog.TerranMissileTurret:
		default:
			return protocol.ErrIncapable
		}
	}
	return ""
}

func (e *Engine) canGather(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !u.Def().IsWorker() || u.IsHallucination() || u.IsBurrowed() {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) gatherWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	td := t.Def()
	if !td.IsResourceContainer() || t.Type() == catalog.ResourceVespeneGeyser {
		return protocol.ErrIncompatibleType
	}
	if !t.IsCompleted() {
		return protocol.ErrUnitBusy
	}
	if !e.hasPathTo(u, t) {
		return protocol.ErrUnreachable
	}
	if td.IsRefinery() && t.Player() != e.self() {
		return protocol.ErrUnitNotOwned
	}
	return ""
}

func (e *Engine) canReturnCargo(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !d.IsWorker() {
		return protocol.ErrIncapable
	}
	if !u.IsCarryingMinerals() && !u.IsCarryingGas() {
		return protocol.ErrInsufficientAmmo
	}
	if u.IsBurrowed() {
		return protocol.ErrIncapable
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canRepair(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if u.Type() != catalog.TerranSCV || u.IsHallucination() {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) repairWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	td := t.Def()
	if td.Race != catalog.RaceTerran || !td.IsMechanical() {
		return protocol.ErrIncompatibleType
	}
	if t.HitPoints() >= td.MaxHitPoints || !t.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if t.ID() == u.ID() {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) canBurrow(u state.Unit) string {
	return e.canUseTechWithoutTarget(u, catalog.TechBurrowing)
}

func (e *Engine) canUnburrow(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !d.HasAbility(catalog.TechBurrowing) {
		return protocol.ErrIncapable
	}
	if !u.IsBurrowed() || u.Order() == catalog.OrderUnburrowing {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canCloak(u state.Unit) string {
	t := u.Def().CloakingTech
	if t == catalog.TechNone {
		return protocol.ErrIncapable
	}
	return e.canUseTechWithoutTarget(u, t)
}

func (e *Engine) canDecloak(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if d.CloakingTech == catalog.TechNone {
		return protocol.ErrIncapable
	}
	if u.SecondaryOrder() != catalog.OrderCloak {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canSiege(u state.Unit) string {
	return e.canUseTechWithoutTarget(u, catalog.TechTankSiegeMode)
}

func (e *Engine) canUnsiege(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !sieged(u) {
		return protocol.ErrIncompatibleState
	}
	if o := u.Order(); o == catalog.OrderSieging || o == catalog.OrderUnsieging {
		return protocol.ErrIncompatibleState
	}
	if u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canLift(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !u.Def().IsFlyingBuilding() {
		return protocol.ErrIncapable
	}
	if u.IsLifted() || !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if !u.IsIdle() {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) canLand(u state.Unit) string {
	if !u.Def().IsFlyingBuilding() {
		return protocol.ErrIncapable
	}
	if !u.IsLifted() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) landWith(u state.Unit, c *Command) string {
	return e.sites.CanBuildHere(e.w, &u, u.Type(), c.X, c.Y, true)
}

func (e *Engine) canLoad(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !u.IsCompleted() {
		return protocol.ErrUnitBusy
	}
	if u.Type() == catalog.ZergOverlord && !e.ventralSacs() {
		return protocol.ErrInsufficientTech
	}
	if u.IsBurrowed() || u.Type() == catalog.ZergLarva {
		return protocol.ErrIncapable
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	return ""
}

// loadWith accepts both directions: u picking up the target, or u boarding
// the target transport.
func (e *Engine) loadWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if t.Player() != e.self() {
		return protocol.ErrUnitNotOwned
	}
	if t.IsLoaded() || !t.IsCompleted() {
		return protocol.ErrUnitBusy
	}
	if t.ID() == u.ID() {
		return protocol.ErrBadParameter
	}
	transport, cargo := u, t
	if u.Def().SpaceProvided <= 0 {
		transport, cargo = t, u
	}
	return e.canCarry(transport, cargo)
}

func (e *Engine) canCarry(transport, cargo state.Unit) string {
	td, cd := transport.Def(), cargo.Def()
	if td.SpaceProvided <= 0 {
		return protocol.ErrIncompatibleType
	}
	if transport.Type() == catalog.ZergOverlord && !e.ventralSacs() {
		return protocol.ErrInsufficientTech
	}
	if transport.Type() == catalog.TerranBunker {
		if !cd.IsOrganic() || cd.Race != catalog.RaceTerran || cd.SpaceRequired != 1 {
			return protocol.ErrIncompatibleType
		}
	} else if cd.IsBuilding() || cd.IsFlyer() || cd.SpaceRequired <= 0 || cd.SpaceRequired > 8 {
		return protocol.ErrIncompatibleType
	}
	if transport.SpaceRemaining() < cd.SpaceRequired {
		return protocol.ErrInsufficientSpace
	}
	if !transport.IsFlying() && !e.hasPathTo(cargo, transport) {
		return protocol.ErrUnreachable
	}
	return ""
}

func (e *Engine) canUnload(u state.Unit) string {
	d := u.Def()
	if !d.IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if d.SpaceProvided <= 0 {
		return protocol.ErrIncapable
	}
	if u.Type() == catalog.ZergOverlord && !e.ventralSacs() {
		return protocol.ErrInsufficientTech
	}
	if len(u.LoadedUnits()) == 0 {
		return protocol.ErrUnitNotExist
	}
	return ""
}

func (e *Engine) unloadWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if !t.IsLoaded() {
		return protocol.ErrIncompatibleState
	}
	if t.Transport() != u.ID() {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) unloadAt(u state.Unit, x, y int) string {
	if u.Type() == catalog.TerranBunker {
		return ""
	}
	if !e.inMap(x, y) {
		return protocol.ErrBadParameter
	}
	if e.w.Map != nil && e.w.Map.RegionAt(x, y) == nil {
		return protocol.ErrUnreachable
	}
	return ""
}

func (e *Engine) unloadAllWith(u state.Unit, c *Command) string {
	x, y := u.Position()
	return e.unloadAt(u, x, y)
}

func (e *Engine) canUnloadAllPosition(u state.Unit) string {
	if r := e.canUnload(u); r != "" {
		return r
	}
	if u.Type() == catalog.TerranBunker {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) unloadAllPositionWith(u state.Unit, c *Command) string {
	return e.unloadAt(u, c.X, c.Y)
}

func (e *Engine) canRightClickPosition(u state.Unit) string {
	if !u.Def().IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if e.canMove(u) != "" && e.canSetRally(u) != "" {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canRightClickUnit(u state.Unit) string {
	if !u.Def().IsBuilding() && !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if e.canMove(u) != "" && e.canAttackUnit(u) != "" && e.canLoad(u) != "" && e.canSetRally(u) != "" {
		return protocol.ErrIncapable
	}
	return ""
}

// rightClickUnitWith resolves to an attack against enemies, otherwise to a
// follow, gather, repair, load or rally depending on what the unit can do.
func (e *Engine) rightClickUnitWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if p, ok := e.selfPlayer(); ok && t.Player() >= 0 && p.IsEnemy(t.Player()) {
		if r := e.canAttackUnit(u); r != "" {
			return r
		}
		return e.attackUnitWith(u, c)
	}
	if e.canMove(u) == "" && t.ID() != u.ID() {
		return ""
	}
	if e.canGather(u) == "" && e.gatherWith(u, c) == "" {
		return ""
	}
	if e.canRepair(u) == "" && e.repairWith(u, c) == "" {
		return ""
	}
	if e.canLoad(u) == "" && e.loadWith(u, c) == "" {
		return ""
	}
	if e.canSetRally(u) == "" {
		return ""
	}
	return protocol.ErrIncapable
}

func (e *Engine) canHaltConstruction(u state.Unit) string {
	if u.Order() != catalog.OrderConstructingBuilding {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canCancelConstruction(u state.Unit) string {
	if !u.Def().IsBuilding() {
		return protocol.ErrIncapable
	}
	if u.IsCompleted() || (u.Type() == catalog.ZergNydusCanal && u.BuildUnit() >= 0) {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canCancelAddon(u state.Unit) string {
	a, ok := e.w.Unit(u.Addon())
	if !ok || !a.Exists() || a.IsCompleted() {
		return protocol.ErrIncompatibleType
	}
	return ""
}

func (e *Engine) canCancelTrain(u state.Unit) string {
	if !u.IsTraining() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) cancelTrainSlotWith(u state.Unit, c *Command) string {
	if c.Extra < 0 || c.Extra >= len(u.TrainingQueue()) {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) canCancelMorph(u state.Unit) string {
	if !u.IsMorphing() || (!u.IsCompleted() && u.Type() == catalog.ZergNydusCanal && u.BuildUnit() >= 0) {
		return protocol.ErrIncompatibleState
	}
	if u.IsHallucination() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canCancelResearch(u state.Unit) string {
	if u.Order() != catalog.OrderResearchTech {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canCancelUpgrade(u state.Unit) string {
	if u.Order() != catalog.OrderUpgrade {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canSetRally(u state.Unit) string {
	d := u.Def()
	if !d.CanProduce() || !d.IsBuilding() {
		return protocol.ErrIncapable
	}
	if u.IsLifted() {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) canPlaceCOP(u state.Unit) string {
	if !u.Def().IsFlagBeacon() || u.Order() != catalog.OrderCTFCOPInit {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) placeCOPWith(u state.Unit, c *Command) string {
	return e.sites.CanBuildHere(e.w, &u, u.Type(), c.X, c.Y, true)
}

func (e *Engine) positionWith(u state.Unit, c *Command) string {
	if !e.inMap(c.X, c.Y) {
		return protocol.ErrBadParameter
	}
	return ""
}
