// Package shmtest authors segments for tests.
package shmtest

import (
	"broodlink/internal/catalog"
	"broodlink/internal/shm"
)

// Builder fills a fresh segment. Methods return the builder or the record they
// created so tests can keep adjusting fields with the shm setters.
type Builder struct {
	Seg *shm.Segment
	Cat *catalog.Catalog

	nextUnit  int
	nextSplit int
}

// New returns a builder over a 64x64 open map where player 0 is self.
func New() *Builder {
	b := &Builder{Seg: shm.New(), Cat: catalog.Default()}
	b.Map(64, 64)
	b.Seg.SetSelf(0)
	b.Seg.SetPlayerCount(2)
	b.Seg.SetInGame(true)
	for id := 0; id < shm.MaxPlayers; id++ {
		p, _ := b.Seg.Player(id)
		p.SetRace(catalog.RaceNone)
	}
	return b
}

// Map resizes the map and marks every tile buildable, walkable, explored and visible.
func (b *Builder) Map(w, h int) *Builder {
	b.Seg.SetMapSize(w, h)
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			b.Seg.SetBuildable(tx, ty, true)
			b.Seg.SetWalkable(tx, ty, true)
			b.Seg.SetExplored(tx, ty, true)
			b.Seg.SetVisible(tx, ty, true)
		}
	}
	return b
}

func (b *Builder) Frame(f int) *Builder {
	b.Seg.SetFrame(f)
	return b
}

func (b *Builder) Latency(frames int) *Builder {
	b.Seg.SetLatencyFrames(frames)
	return b
}

// Player sets up a player record with the given race and bank.
func (b *Builder) Player(id int, race catalog.Race, minerals, gas int) shm.Player {
	p, ok := b.Seg.Player(id)
	if !ok {
		panic("shmtest: player id out of range")
	}
	p.SetName("p" + string(rune('0'+id%10)))
	p.SetRace(race)
	p.SetMinerals(minerals)
	p.SetGas(gas)
	p.SetSupplyTotal(400)
	for other := 0; other < shm.MaxPlayers; other++ {
		if other != id {
			p.SetEnemy(other, true)
		}
	}
	return p
}

// Unit adds a completed, idle unit of type t. Hit points, shields and energy
// start at the type's maximum.
func (b *Builder) Unit(player int, t catalog.UnitType, x, y int) shm.Unit {
	if b.nextUnit >= shm.MaxUnits {
		panic("shmtest: unit table full")
	}
	u, _ := b.Seg.Unit(b.nextUnit)
	b.nextUnit++
	b.Seg.SetUnitCount(b.nextUnit)

	u.Clear()
	u.SetPlayer(player)
	u.SetType(t)
	u.SetPosition(x, y)
	u.SetTargetPosition(x, y)
	u.SetFlags(shm.UnitExists | shm.UnitCompleted | shm.UnitIdle | shm.UnitInterruptible | shm.UnitPowered | shm.UnitVisible)
	u.SetOrder(catalog.OrderPlayerGuard)
	if d := b.Cat.Unit(t); d != nil {
		u.SetHitPoints(d.MaxHitPoints)
		u.SetShields(d.MaxShields)
		u.SetEnergy(d.MaxEnergy)
		u.Set(shm.UnitFlying, d.IsFlyer())
		if d.IsBuilding() {
			u.SetOrder(catalog.OrderNothing)
		}
		if d.IsResourceContainer() && !d.IsRefinery() {
			u.SetResources(1500)
		}
	}
	if p, ok := b.Seg.Player(player); ok {
		p.SetCompletedUnitCount(t, p.CompletedUnitCount(t)+1)
		p.SetAllUnitCount(t, p.AllUnitCount(t)+1)
	}
	return u
}

// Incomplete flips a unit added by Unit back to under construction.
func (b *Builder) Incomplete(u shm.Unit, remaining int) shm.Unit {
	u.Set(shm.UnitCompleted, false)
	u.Set(shm.UnitIdle, false)
	u.SetRemainingBuildTime(remaining)
	if d := b.Cat.Unit(u.Type()); d != nil && d.IsBuilding() {
		u.Set(shm.UnitConstructing, true)
		u.SetOrder(catalog.OrderIncompleteBuilding)
	}
	if p, ok := b.Seg.Player(u.Player()); ok {
		p.SetCompletedUnitCount(u.Type(), p.CompletedUnitCount(u.Type())-1)
	}
	return u
}

// Region writes a region record and assigns its tile rectangle [tx0,tx1)x[ty0,ty1).
func (b *Builder) Region(id int, accessible bool, tx0, ty0, tx1, ty1 int, neighbors ...int) shm.Region {
	r, ok := b.Seg.Region(id)
	if !ok {
		panic("shmtest: region id out of range")
	}
	r.SetAccessible(accessible)
	r.SetBounds(tx0*32, ty0*32, tx1*32-1, ty1*32-1)
	r.SetCenter((tx0+tx1)*16, (ty0+ty1)*16)
	r.SetNeighbors(neighbors)
	for ty := ty0; ty < ty1; ty++ {
		for tx := tx0; tx < tx1; tx++ {
			b.Seg.SetTileRegion(tx, ty, uint16(id))
			b.Seg.SetWalkable(tx, ty, accessible)
		}
	}
	if id+1 > b.Seg.RegionCount() {
		b.Seg.SetRegionCount(id + 1)
	}
	return r
}

// Split marks tile (tx,ty) as shared by two regions. Mini-tiles whose mask bit
// is set belong to r2.
func (b *Builder) Split(tx, ty int, mask uint16, r1, r2 int) {
	i := b.nextSplit
	b.nextSplit++
	b.Seg.SetSplit(i, shm.SplitTile{Mask: mask, Region1: uint16(r1), Region2: uint16(r2)})
	b.Seg.SetSplitCount(b.nextSplit)
	b.Seg.SetTileRegion(tx, ty, uint16(i)|shm.SplitBit)
}
