// Package relations answers "which units point at this one" for relations
// stored as a back-reference on the member.
package relations

import (
	"slices"

	"broodlink/internal/shm"
)

// Relation reads the owner id a member refers to, or a negative id for none.
type Relation struct {
	Name string
	Ref  func(u shm.Unit) int
}

var (
	Loaded       = Relation{Name: "loaded", Ref: shm.Unit.Transport}
	Interceptors = Relation{Name: "interceptors", Ref: shm.Unit.Carrier}
	Larva        = Relation{Name: "larva", Ref: shm.Unit.Hatchery}
)

// Units is the subset of the segment the cache scans.
type Units interface {
	UnitCount() int
	Unit(id int) (shm.Unit, bool)
}

// Cache memoizes one reverse index per relation until Reset.
type Cache struct {
	src   Units
	index map[string]map[int][]int
	scans int
}

func New(src Units) *Cache {
	return &Cache{src: src, index: make(map[string]map[int][]int)}
}

// Connected returns the ids of existing units whose back-reference under rel
// equals owner, ascending. The first call per relation after Reset scans
// every unit once.
func (c *Cache) Connected(rel Relation, owner int) []int {
	if owner < 0 {
		return nil
	}
	return slices.Clone(c.build(rel)[owner])
}

func (c *Cache) Count(rel Relation, owner int) int {
	if owner < 0 {
		return 0
	}
	return len(c.build(rel)[owner])
}

// Reset drops every memoized index. Call once per step.
func (c *Cache) Reset() { clear(c.index) }

// Scans reports how many full unit scans have run since New.
func (c *Cache) Scans() int { return c.scans }

func (c *Cache) build(rel Relation) map[int][]int {
	if idx, ok := c.index[rel.Name]; ok {
		return idx
	}
	c.scans++
	idx := make(map[int][]int)
	n := c.src.UnitCount()
	for id := 0; id < n; id++ {
		u, ok := c.src.Unit(id)
		if !ok || !u.Exists() {
			continue
		}
		if ref := rel.Ref(u); ref >= 0 && ref != id {
			idx[ref] = append(idx[ref], id)
		}
	}
	c.index[rel.Name] = idx
	return idx
}
