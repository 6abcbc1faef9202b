package legality

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

func (e *Engine) self() int { return e.w.Seg.Self() }

func (e *Engine) commandable(u state.Unit) string {
	if !u.Exists() {
		return protocol.ErrUnitNotExist
	}
	if u.Player() != e.self() {
		return protocol.ErrUnitNotOwned
	}
	t := u.Type()
	switch t {
	case catalog.ProtossInterceptor, catalog.TerranVultureSpiderMine, catalog.SpellScannerSweep, catalog.SpecialMapRevealer:
		return protocol.ErrIncapable
	}
	d := u.Def()
	if d == nil {
		return protocol.ErrIncompatibleType
	}
	if u.IsCompleted() {
		switch {
		case t == catalog.ProtossPylon, t == catalog.TerranSupplyDepot, t == catalog.ProtossShieldBattery,
			t == catalog.TerranNuclearMissile, d.IsResourceContainer(), d.IsPowerup(),
			d.IsSpecialBuilding() && !d.IsFlagBeacon():
			return protocol.ErrIncapable
		}
	} else if !d.IsBuilding() && !u.IsMorphing() {
		return protocol.ErrIncapable
	}

	// Status timers stop every order, larva producers included.
	if u.IsLockedDown() || u.IsMaelstrommed() || u.IsStasised() {
		return protocol.ErrUnitBusy
	}
	if !u.IsPowered() || u.IsLoaded() || u.Order() == catalog.OrderZergBirth {
		if !d.ProducesLarva() {
			return protocol.ErrUnitBusy
		}
		for _, id := range u.Larva() {
			if l, ok := e.w.Unit(id); ok && e.commandable(l) == "" {
				return ""
			}
		}
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) commandableGrouped(u state.Unit) string {
	if r := e.commandable(u); r != "" {
		return r
	}
	if d := u.Def(); d.IsBuilding() || d.IsCritter() {
		return protocol.ErrIncompatibleType
	}
	return ""
}

func (e *Engine) targetable(t state.Unit) string {
	if !t.Exists() {
		return protocol.ErrUnitNotExist
	}
	ty := t.Type()
	d := t.Def()
	if d == nil {
		return protocol.ErrIncompatibleType
	}
	if !t.IsCompleted() && !d.IsBuilding() && !t.IsMorphing() && ty != catalog.ProtossArchon && ty != catalog.ProtossDarkArchon {
		return protocol.ErrIncompatibleState
	}
	switch ty {
	case catalog.SpellScannerSweep, catalog.SpellDarkSwarm, catalog.SpellDisruptionWeb, catalog.SpecialMapRevealer:
		return protocol.ErrIncompatibleType
	}
	return ""
}

// larva returns the first larva of a producer accepted by ok.
func (e *Engine) larva(u state.Unit, ok func(state.Unit) bool) (state.Unit, bool) {
	for _, id := range u.Larva() {
		l, found := e.w.Unit(id)
		if found && !l.IsConstructing() && l.IsCompleted() && e.commandable(l) == "" && ok(l) {
			return l, true
		}
	}
	return state.Unit{}, false
}

func (e *Engine) selfPlayer() (state.Player, bool) { return e.w.Self() }

func (e *Engine) hasPath(u state.Unit, x, y int) bool {
	if u.IsFlying() || e.w.Map == nil {
		return true
	}
	ux, uy := u.Position()
	return e.w.Map.HasPath(ux, uy, x, y)
}

// hasPathTo tries the target's center and then the corners of its footprint,
// which may straddle unwalkable ground.
func (e *Engine) hasPathTo(u, t state.Unit) bool {
	tx, ty := t.Position()
	if e.hasPath(u, tx, ty) {
		return true
	}
	d := t.Def()
	if d == nil {
		return false
	}
	hw, hh := d.TileWidth*32/2, d.TileHeight*32/2
	ux, uy := u.Position()
	return e.w.Map.AnyCornerReachable(ux, uy, tx-hw, ty-hh, tx+hw-1, ty+hh-1)
}

func (e *Engine) inWeaponRange(u, t state.Unit) bool {
	d := u.Def()
	rng, minRng := d.GroundRange, d.GroundMinRange
	if t.IsFlying() {
		rng, minRng = d.AirRange, 0
	}
	if rng <= 0 {
		return false
	}
	dist := u.Distance(t)
	return dist <= rng && dist >= minRng
}

func sieged(u state.Unit) bool {
	return u.Type() == catalog.TerranSiegeTankSiegeMode || u.IsSieged()
}

func (e *Engine) inMap(x, y int) bool {
	return x >= 0 && y >= 0 && x < e.w.Seg.MapWidth()*32 && y < e.w.Seg.MapHeight()*32
}

func (e *Engine) ventralSacs() bool {
	p, ok := e.selfPlayer()
	return ok && p.UpgradeLevel(catalog.UpgradeVentralSacs) > 0
}
