package state_test

import (
	"testing"

	"broodlink/internal/catalog"
	"broodlink/internal/shm/shmtest"
	"broodlink/internal/speculative"
	"broodlink/internal/state"
)

func TestUnit_OverrideVisibleWithinWindow(t *testing.T) {
	b := shmtest.New().Frame(10)
	rec := b.Unit(0, catalog.TerranMarine, 100, 100)
	spec := speculative.New(speculative.DefaultWindows(2))
	spec.Advance(10)
	w := state.New(b.Seg, b.Cat, spec)

	row := spec.Units().Row(rec.ID())
	speculative.Install(spec, &row.Order, catalog.OrderMove)
	speculative.Install(spec, row.Flag(speculative.FieldMoving), true)

	u, ok := w.Unit(rec.ID())
	if !ok {
		t.Fatalf("unit %d missing", rec.ID())
	}
	if u.Order() != catalog.OrderMove || !u.IsMoving() {
		t.Fatalf("override hidden: order=%v moving=%v", u.Order(), u.IsMoving())
	}

	spec.Advance(12)
	if u.Order() != catalog.OrderPlayerGuard || u.IsMoving() {
		t.Fatalf("override outlived window: order=%v moving=%v", u.Order(), u.IsMoving())
	}
}

func TestPlayer_CounterDelta(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 200, 100)
	spec := speculative.New(speculative.DefaultWindows(1))
	w := state.New(b.Seg, b.Cat, spec)

	row := spec.Players().Row(0)
	spec.AddCounter(speculative.FieldMinerals, &row.Minerals, -150)
	me, ok := w.Self()
	if !ok {
		t.Fatalf("no self")
	}
	if me.Minerals() != 50 || me.Gas() != 100 {
		t.Fatalf("bank=%d/%d", me.Minerals(), me.Gas())
	}
	spec.Advance(2)
	if me.Minerals() != 200 {
		t.Fatalf("delta outlived window: %d", me.Minerals())
	}
}

func TestWorld_AuthoritativeOnly(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceZerg, 75, 0)
	rec := b.Unit(0, catalog.ZergDrone, 40, 40)
	w := state.New(b.Seg, b.Cat, nil)

	u, _ := w.Unit(rec.ID())
	if u.Type() != catalog.ZergDrone || u.Def() == nil || !u.Def().IsWorker() {
		t.Fatalf("type=%v def=%v", u.Type(), u.Def())
	}
	me, _ := w.Self()
	if me.Minerals() != 75 {
		t.Fatalf("minerals=%d", me.Minerals())
	}
}

func TestWorld_UnitsSkipsEmptySlots(t *testing.T) {
	b := shmtest.New()
	a := b.Unit(0, catalog.TerranSCV, 10, 10)
	gone := b.Unit(0, catalog.TerranSCV, 20, 10)
	c := b.Unit(1, catalog.ProtossProbe, 30, 10)
	gone.Clear()
	w := state.New(b.Seg, b.Cat, nil)

	var ids []int
	w.Units(func(u state.Unit) bool {
		ids = append(ids, u.ID())
		return true
	})
	if len(ids) != 2 || ids[0] != a.ID() || ids[1] != c.ID() {
		t.Fatalf("ids=%v", ids)
	}

	var first []int
	w.Units(func(u state.Unit) bool {
		first = append(first, u.ID())
		return false
	})
	if len(first) != 1 {
		t.Fatalf("iteration did not stop: %v", first)
	}

	if _, ok := w.Unit(-1); ok {
		t.Fatalf("negative id resolved")
	}
}
