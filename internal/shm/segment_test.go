package shm

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"broodlink/internal/catalog"
)

func TestWrap_ValidatesHeader(t *testing.T) {
	s := New()
	if _, err := Wrap(s.Bytes()); err != nil {
		t.Fatalf("wrap fresh segment: %v", err)
	}
	if _, err := Wrap(make([]byte, 16)); !errors.Is(err, ErrShortSegment) {
		t.Fatalf("short: err=%v", err)
	}
	if _, err := Wrap(make([]byte, Size)); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("zeroed: err=%v", err)
	}
}

func TestWrap_RejectsCountsPastTables(t *testing.T) {
	for _, tc := range []struct {
		name string
		off  int
		v    int32
	}{
		{"units", hdrUnitCount, MaxUnits + 1},
		{"negative units", hdrUnitCount, -3},
		{"map width", hdrMapWidth, MaxMapTiles + 1},
		{"regions", hdrRegionCount, MaxRegions + 1},
		{"strings", hdrStringCount, MaxStrings + 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			s.putI32(tc.off, tc.v)
			if _, err := Wrap(s.Bytes()); !errors.Is(err, ErrBadHeader) {
				t.Fatalf("err=%v", err)
			}
		})
	}

	s := New()
	s.SetUnitCount(MaxUnits)
	s.SetMapSize(MaxMapTiles, MaxMapTiles)
	if _, err := Wrap(s.Bytes()); err != nil {
		t.Fatalf("counts at their limits: %v", err)
	}
}

func TestTerrain_OversizedWidthStaysInGrid(t *testing.T) {
	s := New()
	s.putI32(hdrMapWidth, 4*MaxMapTiles)
	s.putI32(hdrMapHeight, 1)
	if _, ok := s.TileRegion(MaxMapTiles+1, 0); ok {
		t.Fatalf("tile past the grid resolved")
	}
}

func TestSegment_OutOfRangeIsNoValue(t *testing.T) {
	s := New()
	s.SetMapSize(8, 8)
	if _, ok := s.Unit(-1); ok {
		t.Fatalf("unit -1 resolved")
	}
	if _, ok := s.Unit(MaxUnits); ok {
		t.Fatalf("unit MaxUnits resolved")
	}
	if _, ok := s.Player(MaxPlayers); ok {
		t.Fatalf("player MaxPlayers resolved")
	}
	if _, ok := s.Region(MaxRegions); ok {
		t.Fatalf("region MaxRegions resolved")
	}
	if _, ok := s.TileRegion(8, 0); ok {
		t.Fatalf("tile outside published map resolved")
	}
	if s.Buildable(-1, 0) {
		t.Fatalf("negative tile buildable")
	}
	p, _ := s.Player(0)
	if p.HasResearched(catalog.TechUnknown) || p.UpgradeLevel(catalog.UpgradeType(99)) != 0 {
		t.Fatalf("out of range tech/upgrade must read as zero")
	}
}

func TestUnit_ClearResetsReferences(t *testing.T) {
	s := New()
	u, _ := s.Unit(3)
	u.SetTransport(9)
	u.SetFlags(UnitExists | UnitLoaded)
	u.Clear()
	if u.Exists() || u.Transport() != NoUnit || u.Hatchery() != NoUnit || u.BuildType() != catalog.UnitTypeNone {
		t.Fatalf("clear left state: exists=%v transport=%d", u.Exists(), u.Transport())
	}
}

func TestUnit_TrainingQueue(t *testing.T) {
	s := New()
	u, _ := s.Unit(0)
	u.SetTrainingQueue([]catalog.UnitType{catalog.TerranMarine, catalog.TerranMedic})
	want := []catalog.UnitType{catalog.TerranMarine, catalog.TerranMedic}
	if diff := cmp.Diff(want, u.TrainingQueue()); diff != "" {
		t.Fatalf("queue (-want +got):\n%s", diff)
	}
	long := make([]catalog.UnitType, TrainingSlots+3)
	u.SetTrainingQueue(long)
	if got := len(u.TrainingQueue()); got != TrainingSlots {
		t.Fatalf("queue len=%d", got)
	}
}

func TestOutbox_AppendsInOrderAndReportsFull(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		if err := s.AddUnitCommand(UnitCommand{Type: catalog.CmdMove, Unit: i, Target: NoUnit, X: i * 32, Y: 64}); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	got := s.UnitCommands()
	if len(got) != 3 || got[0].Unit != 0 || got[2].X != 64 {
		t.Fatalf("commands=%+v", got)
	}

	for s.GameCommandCount() < MaxGameCommands {
		if err := s.AddGameCommand(GameCommand{Type: catalog.CommandPauseGame}); err != nil {
			t.Fatalf("add game command: %v", err)
		}
	}
	if err := s.AddGameCommand(GameCommand{Type: catalog.CommandResumeGame}); !errors.Is(err, ErrOutboxFull) {
		t.Fatalf("expected ErrOutboxFull, got %v", err)
	}
	if got := s.GameCommandCount(); got != MaxGameCommands {
		t.Fatalf("count moved past capacity: %d", got)
	}

	s.ClearOutbound()
	if s.UnitCommandCount() != 0 || s.GameCommandCount() != 0 {
		t.Fatalf("clear left counts")
	}
}

func TestOutbox_StringsAreTruncatedAndTerminated(t *testing.T) {
	s := New()
	idx, err := s.AddString(strings.Repeat("x", StringWidth+10))
	if err != nil {
		t.Fatalf("add string: %v", err)
	}
	got, ok := s.Text(idx)
	if !ok || len(got) != StringWidth-1 {
		t.Fatalf("len=%d ok=%v", len(got), ok)
	}
	idx, _ = s.AddString("gg")
	if got, _ := s.Text(idx); got != "gg" {
		t.Fatalf("text=%q", got)
	}
	if _, ok := s.Text(idx + 1); ok {
		t.Fatalf("unwritten string resolved")
	}
}

func TestOutbox_ShapeRoundTrip(t *testing.T) {
	s := New()
	in := Shape{Type: catalog.ShapeBox, Coords: catalog.CoordinateMap, X1: 1, Y1: 2, X2: 3, Y2: 4, Color: 111, Solid: true}
	if err := s.AddShape(in); err != nil {
		t.Fatalf("add shape: %v", err)
	}
	if diff := cmp.Diff([]Shape{in}, s.Shapes()); diff != "" {
		t.Fatalf("shapes (-want +got):\n%s", diff)
	}
}
