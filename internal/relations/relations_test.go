package relations

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"broodlink/internal/catalog"
	"broodlink/internal/shm/shmtest"
)

func TestConnected_LoadedUnitAppearsOnce(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	ship := b.Unit(0, catalog.TerranDropship, 100, 100)
	marine := b.Unit(0, catalog.TerranMarine, 100, 100)
	b.Unit(0, catalog.TerranMarine, 120, 100)

	c := New(b.Seg)
	if got := c.Connected(Loaded, ship.ID()); len(got) != 0 {
		t.Fatalf("empty dropship has cargo %v", got)
	}

	marine.SetTransport(ship.ID())
	c.Reset()
	want := []int{marine.ID()}
	if diff := cmp.Diff(want, c.Connected(Loaded, ship.ID())); diff != "" {
		t.Fatalf("cargo (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, c.Connected(Loaded, ship.ID())); diff != "" {
		t.Fatalf("memoized cargo (-want +got):\n%s", diff)
	}
	if c.Scans() != 2 {
		t.Fatalf("scans=%d want 2", c.Scans())
	}

	c.Reset()
	if diff := cmp.Diff(want, c.Connected(Loaded, ship.ID())); diff != "" {
		t.Fatalf("recomputed cargo (-want +got):\n%s", diff)
	}
	if c.Scans() != 3 {
		t.Fatalf("reset did not force a rescan, scans=%d", c.Scans())
	}
}

func TestConnected_StaleUntilReset(t *testing.T) {
	b := shmtest.New()
	hatch := b.Unit(0, catalog.ZergHatchery, 200, 200)
	l1 := b.Unit(0, catalog.ZergLarva, 190, 230)
	l1.SetHatchery(hatch.ID())

	c := New(b.Seg)
	if c.Count(Larva, hatch.ID()) != 1 {
		t.Fatalf("larva count=%d", c.Count(Larva, hatch.ID()))
	}
	l2 := b.Unit(0, catalog.ZergLarva, 210, 230)
	l2.SetHatchery(hatch.ID())
	if c.Count(Larva, hatch.ID()) != 1 {
		t.Fatalf("index changed without reset")
	}
	c.Reset()
	if diff := cmp.Diff([]int{l1.ID(), l2.ID()}, c.Connected(Larva, hatch.ID())); diff != "" {
		t.Fatalf("larva (-want +got):\n%s", diff)
	}
}

func TestConnected_IgnoresDeadMembersAndBadOwners(t *testing.T) {
	b := shmtest.New()
	carrier := b.Unit(0, catalog.ProtossCarrier, 300, 300)
	i1 := b.Unit(0, catalog.ProtossInterceptor, 300, 300)
	i2 := b.Unit(0, catalog.ProtossInterceptor, 300, 300)
	i1.SetCarrier(carrier.ID())
	i2.SetCarrier(carrier.ID())
	i2.Clear()

	c := New(b.Seg)
	if diff := cmp.Diff([]int{i1.ID()}, c.Connected(Interceptors, carrier.ID())); diff != "" {
		t.Fatalf("interceptors (-want +got):\n%s", diff)
	}
	if c.Connected(Interceptors, -1) != nil || c.Count(Interceptors, 9999) != 0 {
		t.Fatalf("bad owner returned members")
	}
}
