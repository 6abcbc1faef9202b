package regions

import (
	"testing"

	"broodlink/internal/shm/shmtest"
)

// Layout (tiles): 0 | 1 | 2 (water) | 3 | 4, with 0-1 linked, 3-4 linked, and
// region 5 an island linked to nothing.
func buildStrip(t *testing.T) *Map {
	t.Helper()
	b := shmtest.New()
	b.Region(0, true, 0, 0, 8, 8, 1)
	b.Region(1, true, 8, 0, 16, 8, 0, 2)
	b.Region(2, false, 16, 0, 24, 8, 1, 3)
	b.Region(3, true, 24, 0, 32, 8, 2, 4)
	b.Region(4, true, 32, 0, 40, 8)
	b.Region(5, true, 0, 8, 8, 16)
	// region 4 lists no neighbors; the 3-4 link comes from region 3 alone
	return Load(b.Seg)
}

func TestLoad_GroupsPartitionRegions(t *testing.T) {
	m := buildStrip(t)
	g := func(id int) int { return m.Region(id).Group }
	if g(0) != g(1) {
		t.Fatalf("0 and 1 should share a group")
	}
	if g(3) != g(4) {
		t.Fatalf("3 and 4 should share a group despite one-sided neighbor list")
	}
	if g(0) == g(3) || g(2) == g(1) || g(2) == g(3) || g(5) == g(0) {
		t.Fatalf("groups leaked across water: %d %d %d %d %d %d", g(0), g(1), g(2), g(3), g(4), g(5))
	}
	if m.GroupCount() != 4 {
		t.Fatalf("groups=%d want 4", m.GroupCount())
	}
}

func TestHasPath_EquivalenceRelation(t *testing.T) {
	m := buildStrip(t)
	points := [][2]int{
		{16, 16}, {100, 40}, {300, 40}, {520, 40}, {900, 200}, {1200, 10}, {40, 300},
	}
	for _, a := range points {
		if m.RegionAt(a[0], a[1]) != nil && !m.HasPath(a[0], a[1], a[0], a[1]) {
			t.Fatalf("not reflexive at %v", a)
		}
		for _, b := range points {
			ab := m.HasPath(a[0], a[1], b[0], b[1])
			if ab != m.HasPath(b[0], b[1], a[0], a[1]) {
				t.Fatalf("not symmetric %v %v", a, b)
			}
			for _, c := range points {
				if ab && m.HasPath(b[0], b[1], c[0], c[1]) && !m.HasPath(a[0], a[1], c[0], c[1]) {
					t.Fatalf("not transitive %v %v %v", a, b, c)
				}
			}
		}
	}
	if m.HasPath(16, 16, 900, 200) {
		t.Fatalf("path across water")
	}
	if !m.HasPath(16, 16, 500, 100) {
		t.Fatalf("no path between linked regions")
	}
}

func TestHasPath_FalseWithoutRegion(t *testing.T) {
	m := buildStrip(t)
	if m.HasPath(-5, 10, 16, 16) || m.HasPath(16, 16, 64*32+1, 0) {
		t.Fatalf("path to a point outside the map")
	}
	if m.Region(-1) != nil || m.Region(4999) != nil {
		t.Fatalf("unknown id resolved")
	}
}

func TestRegionAt_SplitTile(t *testing.T) {
	b := shmtest.New()
	b.Region(0, true, 0, 0, 4, 4)
	b.Region(1, true, 4, 0, 8, 4)
	// Right half of tile (3,0) belongs to region 1: mini-tile columns 2 and 3
	// in all four rows.
	var mask uint16
	for row := 0; row < 4; row++ {
		mask |= 1<<(row*4+2) | 1<<(row*4+3)
	}
	b.Split(3, 0, mask, 0, 1)
	m := Load(b.Seg)

	if r := m.RegionAt(3*32+4, 5); r == nil || r.ID != 0 {
		t.Fatalf("left half resolved to %+v", r)
	}
	if r := m.RegionAt(3*32+20, 28); r == nil || r.ID != 1 {
		t.Fatalf("right half resolved to %+v", r)
	}
}

func TestAnyCornerReachable(t *testing.T) {
	m := buildStrip(t)
	// Footprint straddling regions 2 (water) and 3: only right corners reach.
	if !m.AnyCornerReachable(900, 100, 23*32, 32, 25*32, 64) {
		t.Fatalf("straddling footprint should be reachable by a corner")
	}
	if m.AnyCornerReachable(16, 16, 17*32, 32, 18*32, 64) {
		t.Fatalf("footprint fully in water reached from region 0")
	}
}
