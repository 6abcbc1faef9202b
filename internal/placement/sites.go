package placement

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

type rect struct{ left, top, right, bottom int }

func (a rect) overlaps(b rect) bool {
	return a.left <= b.right && b.left <= a.right && a.top <= b.bottom && b.top <= a.bottom
}

func (a rect) contains(x, y int) bool {
	return x >= a.left && x <= a.right && y >= a.top && y <= a.bottom
}

// footprint is the pixel rectangle a building of type d covers from tile (tx, ty).
func footprint(d *catalog.UnitDef, tx, ty int) rect {
	return rect{tx * tile, ty * tile, (tx+d.TileWidth)*tile - 1, (ty+d.TileHeight)*tile - 1}
}

// unitFootprint is the pixel rectangle an existing building covers, derived
// from its center.
func unitFootprint(u state.Unit) rect {
	d := u.Def()
	x, y := u.Position()
	l, t := x-d.TileWidth*tile/2, y-d.TileHeight*tile/2
	return rect{l, t, l + d.TileWidth*tile - 1, t + d.TileHeight*tile - 1}
}

// CanBuildHere reports why a building of type t cannot be placed with its
// top-left tile at (tx, ty), or "" when it can. builder may be nil.
func (Rules) CanBuildHere(w *state.World, builder *state.Unit, t catalog.UnitType, tx, ty int, checkExplored bool) string {
	d := w.Cat.Unit(t)
	if d == nil || !d.IsBuilding() {
		return protocol.ErrIncompatibleType
	}
	seg := w.Seg
	if tx < 0 || ty < 0 || tx+d.TileWidth > seg.MapWidth() || ty+d.TileHeight > seg.MapHeight() {
		return protocol.ErrInvalidTile
	}
	area := footprint(d, tx, ty)

	if d.IsRefinery() {
		if !geyserAt(w, tx, ty) {
			return protocol.ErrUnbuildable
		}
		return reachable(w, builder, d, area)
	}

	for y := ty; y < ty+d.TileHeight; y++ {
		for x := tx; x < tx+d.TileWidth; x++ {
			if !seg.Buildable(x, y) || (checkExplored && !seg.Explored(x, y)) {
				return protocol.ErrUnbuildable
			}
			creep := seg.HasCreep(x, y)
			if d.RequiresCreep() && !creep {
				return protocol.ErrUnbuildable
			}
			if !d.RequiresCreep() && d.Race != catalog.RaceZerg && creep {
				return protocol.ErrUnbuildable
			}
		}
	}
	if d.RequiresPsi() && !HasPower(w, tx, ty, t) {
		return protocol.ErrUnbuildable
	}
	if occupied(w, builder, area) {
		return protocol.ErrUnbuildable
	}
	if d.IsResourceDepot() && nearResources(w, d, tx, ty) {
		return protocol.ErrUnbuildable
	}
	return reachable(w, builder, d, area)
}

// reachable probes the footprint corners from a ground builder. Flyers,
// lifted buildings and buildings placing addons skip the probe.
func reachable(w *state.World, builder *state.Unit, d *catalog.UnitDef, area rect) string {
	if builder == nil || w.Map == nil || builder.IsFlying() {
		return ""
	}
	if bd := builder.Def(); bd == nil || bd.IsBuilding() {
		return ""
	}
	if d.ID == catalog.ZergNydusCanal || d.IsFlagBeacon() {
		return ""
	}
	bx, by := builder.Position()
	if !w.Map.AnyCornerReachable(bx, by, area.left, area.top, area.right, area.bottom) {
		return protocol.ErrUnreachable
	}
	return ""
}

func geyserAt(w *state.World, tx, ty int) bool {
	found := false
	w.Units(func(u state.Unit) bool {
		if u.Type() != catalog.ResourceVespeneGeyser {
			return true
		}
		f := unitFootprint(u)
		if f.left == tx*tile && f.top == ty*tile {
			found = true
			return false
		}
		return true
	})
	return found
}

// occupied reports whether any ground unit other than the builder sits in area.
func occupied(w *state.World, builder *state.Unit, area rect) bool {
	hit := false
	w.Units(func(u state.Unit) bool {
		if builder != nil && u.ID() == builder.ID() {
			return true
		}
		if u.IsFlying() || u.IsLoaded() {
			return true
		}
		d := u.Def()
		if d == nil {
			return true
		}
		if d.IsBuilding() {
			hit = unitFootprint(u).overlaps(area)
		} else {
			x, y := u.Position()
			hit = area.contains(x, y)
		}
		return !hit
	})
	return hit
}

func nearResources(w *state.World, d *catalog.UnitDef, tx, ty int) bool {
	zone := rect{
		(tx - depotResourceGap) * tile,
		(ty - depotResourceGap) * tile,
		(tx+d.TileWidth+depotResourceGap)*tile - 1,
		(ty+d.TileHeight+depotResourceGap)*tile - 1,
	}
	near := false
	w.Units(func(u state.Unit) bool {
		if ud := u.Def(); ud == nil || !ud.IsResourceContainer() {
			return true
		}
		near = unitFootprint(u).overlaps(zone)
		return !near
	})
	return near
}

// HasPower reports whether a building of type t at tile (tx, ty) would sit
// inside the psi field of a completed pylon owned by the controlled player.
// The field is approximated by an ellipse around the pylon's center.
func HasPower(w *state.World, tx, ty int, t catalog.UnitType) bool {
	d := w.Cat.Unit(t)
	if d == nil {
		return false
	}
	cx := int64(tx*tile + d.TileWidth*tile/2)
	cy := int64(ty*tile + d.TileHeight*tile/2)
	self := w.Seg.Self()
	powered := false
	w.Units(func(u state.Unit) bool {
		if u.Type() != catalog.ProtossPylon || u.Player() != self || !u.IsCompleted() {
			return true
		}
		px, py := u.Position()
		dx, dy := cx-int64(px), cy-int64(py)
		const a, b = int64(psiHalfWidth), int64(psiHalfHeight)
		powered = dx*dx*b*b+dy*dy*a*a <= a*a*b*b
		return !powered
	})
	return powered
}
