// Package state merges the authoritative segment with speculative overrides
// into the read model consumed by legality checks and bot code.
package state

import (
	"broodlink/internal/catalog"
	"broodlink/internal/regions"
	"broodlink/internal/relations"
	"broodlink/internal/shm"
	"broodlink/internal/speculative"
)

// World is a read view over one step. It holds no state of its own beyond
// the components it reads.
type World struct {
	Seg  *shm.Segment
	Cat  *catalog.Catalog
	Spec *speculative.Cache
	Rel  *relations.Cache
	Map  *regions.Map
}

// New wires a world over seg. The region map is loaded from seg once; spec
// may be nil to read authoritative values only.
func New(seg *shm.Segment, cat *catalog.Catalog, spec *speculative.Cache) *World {
	return &World{Seg: seg, Cat: cat, Spec: spec, Rel: relations.New(seg), Map: regions.Load(seg)}
}

func (w *World) Frame() int { return w.Seg.Frame() }

// Self returns the controlled player, or ok == false when there is none.
func (w *World) Self() (Player, bool) { return w.Player(w.Seg.Self()) }

func (w *World) Player(id int) (Player, bool) {
	rec, ok := w.Seg.Player(id)
	if !ok {
		return Player{}, false
	}
	return Player{w: w, rec: rec}, true
}

// Unit returns a handle for id, or ok == false when id is out of range. The
// handle may refer to a unit that no longer exists.
func (w *World) Unit(id int) (Unit, bool) {
	rec, ok := w.Seg.Unit(id)
	if !ok {
		return Unit{}, false
	}
	return Unit{w: w, rec: rec}, true
}

// Units calls fn for each existing unit until fn returns false.
func (w *World) Units(fn func(Unit) bool) {
	n := w.Seg.UnitCount()
	for id := 0; id < n; id++ {
		rec, ok := w.Seg.Unit(id)
		if !ok || !rec.Exists() {
			continue
		}
		if !fn(Unit{w: w, rec: rec}) {
			return
		}
	}
}
