// Package placement answers the production questions the legality engine
// delegates: whether the player can afford and unlock a unit type, and
// whether a building fits at a tile.
package placement

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

const (
	tile = 32

	// Resource depots keep this many tiles clear of minerals and geysers.
	depotResourceGap = 3

	// Psi field half extents in pixels around a pylon's center.
	psiHalfWidth  = 256
	psiHalfHeight = 160
)

// Rules implements the prerequisite and build-site checks over a world view.
// It holds no state.
type Rules struct{}

func New() Rules { return Rules{} }

// CanMake reports why the controlled player could not produce t, or "" when
// it could. builder may be nil to check costs and requirements only.
func (Rules) CanMake(w *state.World, builder *state.Unit, t catalog.UnitType) string {
	d := w.Cat.Unit(t)
	if d == nil {
		return protocol.ErrIncompatibleType
	}
	p, ok := w.Self()
	if !ok {
		return protocol.ErrUnitNotOwned
	}
	if builder != nil {
		if r := builderReady(p, builder, d); r != "" {
			return r
		}
		if t == catalog.ZergNydusCanal && builder.Type() == catalog.ZergNydusCanal {
			return ""
		}
	}
	if p.Minerals() < d.Minerals {
		return protocol.ErrInsufficientMinerals
	}
	if p.Gas() < d.Gas {
		return protocol.ErrInsufficientGas
	}
	if supply := SupplyNeeded(w, builder, d); supply > 0 && p.SupplyTotal() < p.SupplyUsed()+supply {
		return protocol.ErrInsufficientSupply
	}
	if d.RequiredTech != catalog.TechNone && !p.HasTech(d.RequiredTech) {
		return protocol.ErrInsufficientTech
	}
	for _, req := range d.RequiredUnits {
		if builder != nil && req == d.RequiredAddon {
			continue
		}
		if !p.HasCompleted(req) {
			return protocol.ErrInsufficientTech
		}
	}
	return ""
}

func builderReady(p state.Player, b *state.Unit, d *catalog.UnitDef) string {
	if b.Player() != p.ID() {
		return protocol.ErrUnitNotOwned
	}
	bt := b.Type()
	if d.ID == catalog.ZergNydusCanal && bt == catalog.ZergNydusCanal {
		if !b.IsCompleted() || b.BuildUnit() >= 0 {
			return protocol.ErrUnitBusy
		}
		return ""
	}
	if d.WhatBuilds == catalog.ZergLarva && b.Def().ProducesLarva() {
		if len(b.Larva()) == 0 {
			return protocol.ErrUnitNotExist
		}
	} else if bt != d.WhatBuilds {
		return protocol.ErrIncompatibleType
	}
	if limit := hangarLimit(p, bt); limit > 0 && (d.ID == catalog.ProtossInterceptor || d.ID == catalog.ProtossScarab) {
		held := b.ScarabCount()
		if bt == catalog.ProtossCarrier {
			held = b.InterceptorCount()
		}
		if held+len(b.TrainingQueue()) >= limit {
			return protocol.ErrInsufficientSpace
		}
	}
	if d.RequiredAddon != catalog.UnitTypeNone && !b.HasAddon(d.RequiredAddon) {
		return protocol.ErrInsufficientTech
	}
	return ""
}

func hangarLimit(p state.Player, t catalog.UnitType) int {
	switch t {
	case catalog.ProtossCarrier:
		if p.UpgradeLevel(catalog.UpgradeCarrierCapacity) > 0 {
			return 8
		}
		return 4
	case catalog.ProtossReaver:
		return 5
	}
	return 0
}

// SupplyNeeded is the additional supply t consumes. Paired units hatch two
// per egg; unit morphs only pay the difference.
func SupplyNeeded(w *state.World, builder *state.Unit, d *catalog.UnitDef) int {
	s := d.Supply
	if d.ID == catalog.ZergZergling || d.ID == catalog.ZergScourge {
		s *= 2
	}
	if builder != nil && !d.IsBuilding() {
		bd := builder.Def()
		if bd != nil && !bd.IsBuilding() && builder.Type() == d.WhatBuilds && builder.Type() != catalog.ZergLarva {
			s -= bd.Supply
		}
	}
	return s
}
