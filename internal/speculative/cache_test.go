package speculative

import (
	"strings"
	"testing"

	"broodlink/internal/catalog"
)

func TestValue_VisibleOnlyInsideWindow(t *testing.T) {
	for _, window := range []int{1, 2, 5} {
		c := New(DefaultWindows(window))
		c.Advance(100)
		row := c.Units().Row(7)
		Install(c, &row.Order, catalog.OrderMove)

		w := c.Window(FieldOrder)
		for now := 100; now < 100+w; now++ {
			c.Advance(now)
			if got := Read(c, FieldOrder, &c.Unit(7).Order, catalog.OrderPlayerGuard); got != catalog.OrderMove {
				t.Fatalf("window=%d now=%d: got %d, want override", w, now, got)
			}
		}
		for _, now := range []int{100 + w, 100 + w + 1, 100 + 10*w} {
			c.Advance(now)
			if got := Read(c, FieldOrder, &c.Unit(7).Order, catalog.OrderPlayerGuard); got != catalog.OrderPlayerGuard {
				t.Fatalf("window=%d now=%d: got %d, want authoritative", w, now, got)
			}
		}
	}
}

func TestValue_PerFieldWindows(t *testing.T) {
	c := New(DefaultWindows(2))
	c.SetWindow(FieldMoving, 1)
	c.SetWindow(FieldTargetPosition, 6)
	c.Advance(10)
	row := c.Units().Row(1)
	Install(c, &row.Moving, true)
	Install(c, &row.TargetPosition, Point{X: 64, Y: 96})

	c.Advance(11)
	if Read(c, FieldMoving, &row.Moving, false) {
		t.Fatalf("moving should have expired after one frame")
	}
	if got := Read(c, FieldTargetPosition, &row.TargetPosition, Point{}); got != (Point{X: 64, Y: 96}) {
		t.Fatalf("target position expired early: %+v", got)
	}
}

func TestValue_NotVisibleBeforeInstallFrame(t *testing.T) {
	var v Value[int]
	v.Set(3, 20)
	if _, ok := v.Get(19, 5); ok {
		t.Fatalf("override visible before it was installed")
	}
}

func TestDelta_EntriesExpireIndependently(t *testing.T) {
	c := New(DefaultWindows(2))
	w := c.Window(FieldMinerals)
	p := c.Players().Row(0)

	c.Advance(0)
	c.AddCounter(FieldMinerals, &p.Minerals, -50)
	c.Advance(1)
	c.AddCounter(FieldMinerals, &p.Minerals, -100)
	if got := c.Counter(FieldMinerals, &p.Minerals, 500); got != 350 {
		t.Fatalf("both spends: got %d want 350", got)
	}
	c.Advance(w)
	if got := c.Counter(FieldMinerals, &p.Minerals, 450); got != 350 {
		t.Fatalf("first spend expired: got %d want 350", got)
	}
	c.Advance(w + 1)
	if got := c.Counter(FieldMinerals, &p.Minerals, 350); got != 350 {
		t.Fatalf("all expired: got %d want 350", got)
	}
}

func TestCache_DisabledFallsThrough(t *testing.T) {
	c := New(DefaultWindows(3))
	row := c.Units().Row(4)
	Install(c, &row.Idle, false)
	c.SetEnabled(false)
	if c.Unit(4) != nil || c.Units().Len() != 0 {
		t.Fatalf("disabling must drop overrides")
	}
	if !Read(c, FieldIdle, &row.Idle, true) {
		t.Fatalf("disabled cache returned override")
	}
	fresh := c.Units().Row(5)
	Install(c, &fresh.Idle, false)
	c.SetEnabled(true)
	if !Read(c, FieldIdle, &fresh.Idle, true) {
		t.Fatalf("install while disabled must be ignored")
	}
}

func TestUnitTable_ForgetAndClear(t *testing.T) {
	var tbl UnitTable
	if tbl.Get(1) != nil {
		t.Fatalf("empty table returned a row")
	}
	a := tbl.Row(1)
	if tbl.Row(1) != a {
		t.Fatalf("row not stable")
	}
	tbl.Row(2)
	tbl.Forget(1)
	if tbl.Get(1) != nil || tbl.Len() != 1 {
		t.Fatalf("forget failed, len=%d", tbl.Len())
	}
	tbl.Clear()
	if tbl.Len() != 0 {
		t.Fatalf("clear failed")
	}
}

func TestWindows_Override(t *testing.T) {
	w, err := DefaultWindows(2).Override(map[string]int{"order": 7, "Minerals": 1})
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if w[FieldOrder] != 7 || w[FieldMinerals] != 1 || w[FieldIdle] != 2 {
		t.Fatalf("windows=%v", w)
	}
	_, err = DefaultWindows(2).Override(map[string]int{"bogus": 1, "idle": -1})
	if err == nil || !strings.Contains(err.Error(), "bogus, idle") {
		t.Fatalf("err=%v", err)
	}
}

func TestRowFlagCoversStatusFields(t *testing.T) {
	var r UnitRow
	for f := FieldIdle; f <= FieldLoaded; f++ {
		if r.Flag(f) == nil {
			t.Fatalf("no slot for %s", f)
		}
	}
	if r.Flag(FieldOrder) != nil {
		t.Fatalf("order is not a status flag")
	}
}
