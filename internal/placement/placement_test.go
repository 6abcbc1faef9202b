package placement

import (
	"testing"

	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/shm/shmtest"
	"broodlink/internal/state"
)

func world(b *shmtest.Builder) *state.World {
	b.Region(0, true, 0, 0, 64, 64)
	return state.New(b.Seg, b.Cat, nil)
}

func unit(t *testing.T, w *state.World, id int) *state.Unit {
	t.Helper()
	u, ok := w.Unit(id)
	if !ok {
		t.Fatalf("unit %d missing", id)
	}
	return &u
}

func TestCanMake_Requirements(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 1000, 1000)
	scv := b.Unit(0, catalog.TerranSCV, 100, 100)
	factory := b.Unit(0, catalog.TerranFactory, 600, 600)
	w := world(b)
	r := New()

	if got := r.CanMake(w, unit(t, w, scv.ID()), catalog.TerranBarracks); got != protocol.ErrInsufficientTech {
		t.Fatalf("barracks without command center: %q", got)
	}
	b.Unit(0, catalog.TerranCommandCenter, 64, 48)
	if got := r.CanMake(w, unit(t, w, scv.ID()), catalog.TerranBarracks); got != "" {
		t.Fatalf("barracks: %q", got)
	}
	if got := r.CanMake(w, unit(t, w, factory.ID()), catalog.TerranSiegeTankTankMode); got != protocol.ErrInsufficientTech {
		t.Fatalf("tank without machine shop: %q", got)
	}
	shop := b.Unit(0, catalog.TerranMachineShop, 680, 620)
	factory.SetAddon(shop.ID())
	if got := r.CanMake(w, unit(t, w, factory.ID()), catalog.TerranSiegeTankTankMode); got != "" {
		t.Fatalf("tank with machine shop: %q", got)
	}
	if got := r.CanMake(w, unit(t, w, scv.ID()), catalog.TerranMarine); got != protocol.ErrIncompatibleType {
		t.Fatalf("scv training a marine: %q", got)
	}
}

func TestCanMake_PairedUnitsNeedDoubleSupply(t *testing.T) {
	b := shmtest.New()
	p := b.Player(0, catalog.RaceZerg, 1000, 0)
	p.SetSupplyTotal(10)
	p.SetSupplyUsed(9)
	b.Unit(0, catalog.ZergSpawningPool, 600, 600)
	hatch := b.Unit(0, catalog.ZergHatchery, 400, 400)
	larva := b.Unit(0, catalog.ZergLarva, 380, 440)
	larva.SetHatchery(hatch.ID())
	w := world(b)
	r := New()

	if got := r.CanMake(w, unit(t, w, larva.ID()), catalog.ZergZergling); got != protocol.ErrInsufficientSupply {
		t.Fatalf("zergling pair at 9/10: %q", got)
	}
	p.SetSupplyUsed(8)
	if got := r.CanMake(w, unit(t, w, larva.ID()), catalog.ZergZergling); got != "" {
		t.Fatalf("zergling pair at 8/10: %q", got)
	}
	if got := r.CanMake(w, unit(t, w, hatch.ID()), catalog.ZergZergling); got != "" {
		t.Fatalf("hatchery with larva: %q", got)
	}
}

func TestCanBuildHere_PsiPower(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceProtoss, 1000, 0)
	probe := b.Unit(0, catalog.ProtossProbe, 100, 100)
	b.Unit(0, catalog.ProtossPylon, 20*32, 20*32)
	w := world(b)
	r := New()

	if !HasPower(w, 22, 19, catalog.ProtossGateway) {
		t.Fatalf("gateway beside the pylon should be powered")
	}
	if HasPower(w, 40, 40, catalog.ProtossGateway) {
		t.Fatalf("distant gateway should be unpowered")
	}
	if got := r.CanBuildHere(w, unit(t, w, probe.ID()), catalog.ProtossGateway, 40, 40, true); got != protocol.ErrUnbuildable {
		t.Fatalf("unpowered gateway: %q", got)
	}
	if got := r.CanBuildHere(w, unit(t, w, probe.ID()), catalog.ProtossGateway, 22, 19, true); got != "" {
		t.Fatalf("powered gateway: %q", got)
	}
}

func TestCanBuildHere_CreepAndRefinery(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceZerg, 1000, 0)
	drone := b.Unit(0, catalog.ZergDrone, 100, 100)
	b.Unit(-1, catalog.ResourceVespeneGeyser, 30*32+64, 30*32+32)
	for y := 10; y < 14; y++ {
		for x := 10; x < 14; x++ {
			b.Seg.SetCreep(x, y, true)
		}
	}
	w := world(b)
	r := New()
	d := unit(t, w, drone.ID())

	if got := r.CanBuildHere(w, d, catalog.ZergSpawningPool, 10, 10, true); got != "" {
		t.Fatalf("pool on creep: %q", got)
	}
	if got := r.CanBuildHere(w, d, catalog.ZergSpawningPool, 20, 20, true); got != protocol.ErrUnbuildable {
		t.Fatalf("pool off creep: %q", got)
	}
	if got := r.CanBuildHere(w, nil, catalog.TerranSupplyDepot, 10, 10, true); got != protocol.ErrUnbuildable {
		t.Fatalf("depot on creep: %q", got)
	}
	if got := r.CanBuildHere(w, d, catalog.ZergExtractor, 30, 30, true); got != "" {
		t.Fatalf("extractor on geyser: %q", got)
	}
	if got := r.CanBuildHere(w, d, catalog.ZergExtractor, 31, 30, true); got != protocol.ErrUnbuildable {
		t.Fatalf("extractor beside geyser: %q", got)
	}
}

func TestCanBuildHere_DepotKeepsClearOfResources(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 1000, 0)
	scv := b.Unit(0, catalog.TerranSCV, 100, 100)
	b.Unit(-1, catalog.ResourceMineralField, 20*32+32, 20*32+16)
	w := world(b)
	r := New()
	s := unit(t, w, scv.ID())

	if got := r.CanBuildHere(w, s, catalog.TerranCommandCenter, 23, 20, true); got != protocol.ErrUnbuildable {
		t.Fatalf("command center next to minerals: %q", got)
	}
	if got := r.CanBuildHere(w, s, catalog.TerranCommandCenter, 26, 20, true); got != "" {
		t.Fatalf("command center at distance: %q", got)
	}
	if got := r.CanBuildHere(w, s, catalog.TerranBarracks, 23, 20, true); got != "" {
		t.Fatalf("barracks ignore the resource gap: %q", got)
	}
}

func TestCanBuildHere_Unexplored(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 1000, 0)
	b.Seg.SetExplored(5, 5, false)
	w := world(b)
	r := New()

	if got := r.CanBuildHere(w, nil, catalog.TerranSupplyDepot, 5, 5, true); got != protocol.ErrUnbuildable {
		t.Fatalf("unexplored: %q", got)
	}
	if got := r.CanBuildHere(w, nil, catalog.TerranSupplyDepot, 5, 5, false); got != "" {
		t.Fatalf("unexplored without the check: %q", got)
	}
	if got := r.CanBuildHere(w, nil, catalog.TerranMarine, 5, 5, false); got != protocol.ErrIncompatibleType {
		t.Fatalf("non-building: %q", got)
	}
}
