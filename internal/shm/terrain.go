package shm

// Tile grids are row-major with a fixed MaxMapTiles pitch regardless of the
// published map size.

func (s *Segment) tileIndex(tx, ty int) (int, bool) {
	if tx < 0 || ty < 0 || tx >= min(s.MapWidth(), MaxMapTiles) || ty >= min(s.MapHeight(), MaxMapTiles) {
		return 0, false
	}
	return ty*MaxMapTiles + tx, true
}

func (s *Segment) tileFlag(base, tx, ty int) bool {
	i, ok := s.tileIndex(tx, ty)
	return ok && s.flag(base+i)
}

func (s *Segment) setTileFlag(base, tx, ty int, on bool) {
	if i, ok := s.tileIndex(tx, ty); ok {
		s.putFlag(base+i, on)
	}
}

func (s *Segment) Buildable(tx, ty int) bool { return s.tileFlag(offBuildable, tx, ty) }
func (s *Segment) Walkable(tx, ty int) bool  { return s.tileFlag(offWalkable, tx, ty) }
func (s *Segment) Explored(tx, ty int) bool  { return s.tileFlag(offExplored, tx, ty) }
func (s *Segment) Visible(tx, ty int) bool   { return s.tileFlag(offVisible, tx, ty) }
func (s *Segment) HasCreep(tx, ty int) bool  { return s.tileFlag(offCreep, tx, ty) }

func (s *Segment) SetBuildable(tx, ty int, on bool) { s.setTileFlag(offBuildable, tx, ty, on) }
func (s *Segment) SetWalkable(tx, ty int, on bool)  { s.setTileFlag(offWalkable, tx, ty, on) }
func (s *Segment) SetExplored(tx, ty int, on bool)  { s.setTileFlag(offExplored, tx, ty, on) }
func (s *Segment) SetVisible(tx, ty int, on bool)   { s.setTileFlag(offVisible, tx, ty, on) }
func (s *Segment) SetCreep(tx, ty int, on bool)     { s.setTileFlag(offCreep, tx, ty, on) }

// TileRegion returns the packed region id of a tile. Ids with the split bit
// set index the split table instead of naming a region directly.
func (s *Segment) TileRegion(tx, ty int) (uint16, bool) {
	i, ok := s.tileIndex(tx, ty)
	if !ok {
		return 0, false
	}
	return s.u16(offTileRegion + 2*i), true
}

func (s *Segment) SetTileRegion(tx, ty int, id uint16) {
	if i, ok := s.tileIndex(tx, ty); ok {
		s.putU16(offTileRegion+2*i, id)
	}
}

type SplitTile struct {
	Mask    uint16
	Region1 uint16
	Region2 uint16
}

func (s *Segment) Split(i int) (SplitTile, bool) {
	if i < 0 || i >= MaxSplitTiles {
		return SplitTile{}, false
	}
	off := offSplits + i*splitStride
	return SplitTile{
		Mask:    s.u16(off + spMask),
		Region1: s.u16(off + spRegion1),
		Region2: s.u16(off + spRegion2),
	}, true
}

func (s *Segment) SetSplit(i int, t SplitTile) {
	if i < 0 || i >= MaxSplitTiles {
		return
	}
	off := offSplits + i*splitStride
	s.putU16(off+spMask, t.Mask)
	s.putU16(off+spRegion1, t.Region1)
	s.putU16(off+spRegion2, t.Region2)
}

// Region is a view of one region record.
type Region struct {
	s   *Segment
	id  int
	off int
}

func (s *Segment) Region(id int) (Region, bool) {
	if id < 0 || id >= MaxRegions {
		return Region{}, false
	}
	return Region{s: s, id: id, off: offRegions + id*regionStride}, true
}

func (r Region) ID() int               { return r.id }
func (r Region) Accessible() bool      { return r.s.i32(r.off+rgAccessible) != 0 }
func (r Region) SetAccessible(on bool) { r.s.putI32(r.off+rgAccessible, b2i(on)) }
func (r Region) Center() (x, y int)    { return int(r.s.i32(r.off + rgCenterX)), int(r.s.i32(r.off + rgCenterY)) }

func (r Region) SetCenter(x, y int) {
	r.s.putI32(r.off+rgCenterX, int32(x))
	r.s.putI32(r.off+rgCenterY, int32(y))
}

// Bounds are pixel coordinates, inclusive.
func (r Region) Bounds() (left, top, right, bottom int) {
	return int(r.s.i32(r.off + rgLeft)), int(r.s.i32(r.off + rgTop)),
		int(r.s.i32(r.off + rgRight)), int(r.s.i32(r.off + rgBottom))
}

func (r Region) SetBounds(left, top, right, bottom int) {
	r.s.putI32(r.off+rgLeft, int32(left))
	r.s.putI32(r.off+rgTop, int32(top))
	r.s.putI32(r.off+rgRight, int32(right))
	r.s.putI32(r.off+rgBottom, int32(bottom))
}

func (r Region) Neighbors() []int {
	n := min(max(int(r.s.i32(r.off+rgNeighborCount)), 0), MaxNeighbors)
	out := make([]int, n)
	for i := range out {
		out[i] = int(r.s.i32(r.off + rgNeighbors + 4*i))
	}
	return out
}

// SetNeighbors stores at most MaxNeighbors ids; the rest are dropped.
func (r Region) SetNeighbors(ids []int) {
	n := min(len(ids), MaxNeighbors)
	for i := 0; i < n; i++ {
		r.s.putI32(r.off+rgNeighbors+4*i, int32(ids[i]))
	}
	r.s.putI32(r.off+rgNeighborCount, int32(n))
}
