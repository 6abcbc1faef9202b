// Package regions resolves positions to map regions and answers ground
// reachability by comparing connectivity group ids.
package regions

import (
	"broodlink/internal/shm"
)

const (
	TileSize     = 32
	MiniTileSize = 8

	splitIndexMask = 0x1FFF
)

type Region struct {
	ID         int
	Group      int
	Accessible bool
	Left       int
	Top        int
	Right      int
	Bottom     int
	CenterX    int
	CenterY    int
	Neighbors  []int
}

// Terrain is the read side of the segment this package needs.
type Terrain interface {
	RegionCount() int
	Region(id int) (shm.Region, bool)
	TileRegion(tx, ty int) (uint16, bool)
	Split(i int) (shm.SplitTile, bool)
}

// Map is built once per match and is read-only afterwards.
type Map struct {
	terrain Terrain
	regions []*Region
	groups  int
}

// Load copies every region record and assigns group ids. Accessible regions
// joined through neighbor links share a group; each inaccessible region gets
// its own.
func Load(t Terrain) *Map {
	n := t.RegionCount()
	m := &Map{terrain: t, regions: make([]*Region, n)}
	for id := 0; id < n; id++ {
		rec, ok := t.Region(id)
		if !ok {
			continue
		}
		r := &Region{ID: id, Group: -1, Accessible: rec.Accessible(), Neighbors: rec.Neighbors()}
		r.Left, r.Top, r.Right, r.Bottom = rec.Bounds()
		r.CenterX, r.CenterY = rec.Center()
		m.regions[id] = r
	}
	m.assignGroups()
	return m
}

func (m *Map) assignGroups() {
	// Neighbor lists are not guaranteed symmetric, so walk an undirected copy.
	adj := make([][]int, len(m.regions))
	for _, r := range m.regions {
		if r == nil || !r.Accessible {
			continue
		}
		for _, nb := range r.Neighbors {
			o := m.Region(nb)
			if o == nil || !o.Accessible || o.ID == r.ID {
				continue
			}
			adj[r.ID] = append(adj[r.ID], o.ID)
			adj[o.ID] = append(adj[o.ID], r.ID)
		}
	}

	next := 0
	var queue []int
	for _, r := range m.regions {
		if r == nil || r.Group >= 0 {
			continue
		}
		r.Group = next
		if r.Accessible {
			queue = append(queue[:0], r.ID)
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, nb := range adj[cur] {
					if o := m.regions[nb]; o.Group < 0 {
						o.Group = next
						queue = append(queue, nb)
					}
				}
			}
		}
		next++
	}
	m.groups = next
}

// Region returns nil for unknown ids.
func (m *Map) Region(id int) *Region {
	if id < 0 || id >= len(m.regions) {
		return nil
	}
	return m.regions[id]
}

func (m *Map) Regions() []*Region { return m.regions }
func (m *Map) GroupCount() int    { return m.groups }

// RegionAt maps a pixel position to its region. Split tiles pick one of two
// regions by the 8x8 mini-tile the position falls in.
func (m *Map) RegionAt(x, y int) *Region {
	if x < 0 || y < 0 {
		return nil
	}
	id, ok := m.terrain.TileRegion(x/TileSize, y/TileSize)
	if !ok {
		return nil
	}
	if id&shm.SplitBit != 0 {
		sp, ok := m.terrain.Split(int(id & splitIndexMask))
		if !ok {
			return nil
		}
		bit := (x&(TileSize-1))/MiniTileSize + ((y&(TileSize-1))/MiniTileSize)*4
		if sp.Mask>>bit&1 != 0 {
			id = sp.Region2
		} else {
			id = sp.Region1
		}
	}
	return m.Region(int(id))
}

// HasPath reports whether two pixel positions are ground connected. It
// ignores unit size, dynamic obstacles and flight.
func (m *Map) HasPath(ax, ay, bx, by int) bool {
	a, b := m.RegionAt(ax, ay), m.RegionAt(bx, by)
	if a == nil || b == nil {
		return false
	}
	return a.Group == b.Group
}

// AnyCornerReachable probes the four corners of a pixel rectangle so a
// footprint straddling unwalkable ground still counts as reachable.
func (m *Map) AnyCornerReachable(fromX, fromY, left, top, right, bottom int) bool {
	for _, c := range [4][2]int{{left, top}, {right, top}, {left, bottom}, {right, bottom}} {
		if m.HasPath(fromX, fromY, c[0], c[1]) {
			return true
		}
	}
	return false
}
