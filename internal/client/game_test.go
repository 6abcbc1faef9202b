package client_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"broodlink/internal/catalog"
	"broodlink/internal/client"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
	"broodlink/internal/shm/shmtest"
	"broodlink/internal/tuning"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newGame(t *testing.T, b *shmtest.Builder, tun tuning.Tuning) *client.Game {
	t.Helper()
	b.Region(0, true, 0, 0, 64, 64)
	g, err := client.New(b.Seg, client.Options{Tuning: tun, Catalog: b.Cat})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	g.BeginFrame()
	return g
}

func handle(t *testing.T, g *client.Game, id int) client.Unit {
	t.Helper()
	u, ok := g.Unit(id)
	if !ok {
		t.Fatalf("unit %d has no handle", id)
	}
	return u
}

func step(g *client.Game, seg *shm.Segment, frame int) {
	seg.SetFrame(frame)
	g.BeginFrame()
}

func TestIssue_MovePredictionExpiresWithWindow(t *testing.T) {
	b := shmtest.New().Latency(2)
	b.Player(0, catalog.RaceTerran, 0, 0)
	rec := b.Unit(0, catalog.TerranMarine, 100, 100)
	g := newGame(t, b, tuning.Defaults())
	m := handle(t, g, rec.ID())

	if !m.Move(300, 320) {
		t.Fatalf("move rejected: %v", g.Rejections())
	}
	if !m.IsMoving() || m.IsIdle() {
		t.Fatalf("prediction not visible: moving=%v idle=%v", m.IsMoving(), m.IsIdle())
	}
	if x, y := m.TargetPosition(); x != 300 || y != 320 {
		t.Fatalf("target=(%d,%d)", x, y)
	}
	if rec.Has(shm.UnitMoving) {
		t.Fatalf("segment must not change before the engine answers")
	}

	st, err := g.EndFrame()
	if err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if st.Issued != 1 || st.Flushed != 1 || st.Dropped != 0 {
		t.Fatalf("stats=%+v", st)
	}
	want := []shm.UnitCommand{{Type: catalog.CmdMove, Unit: rec.ID(), Target: -1, X: 300, Y: 320}}
	if diff := cmp.Diff(want, b.Seg.UnitCommands()); diff != "" {
		t.Fatalf("outbound (-want +got):\n%s", diff)
	}

	step(g, b.Seg, 1)
	if !m.IsMoving() {
		t.Fatalf("prediction should hold inside its window")
	}
	step(g, b.Seg, 2)
	if m.IsMoving() || !m.IsIdle() {
		t.Fatalf("prediction should have expired at frame 2")
	}
}

func TestIssue_TrainSpendsPredictedBank(t *testing.T) {
	b := shmtest.New().Latency(2)
	b.Player(0, catalog.RaceTerran, 200, 0)
	rax := b.Unit(0, catalog.TerranBarracks, 600, 600)
	g := newGame(t, b, tuning.Defaults())
	r := handle(t, g, rax.ID())
	self, ok := g.Self()
	if !ok {
		t.Fatalf("no self player")
	}

	for i := 0; i < 4; i++ {
		if !r.Train(catalog.TerranMarine) {
			t.Fatalf("marine %d rejected: %v", i, g.Rejections())
		}
	}
	if r.Train(catalog.TerranMarine) {
		t.Fatalf("fifth marine should be unaffordable after predicted spending")
	}
	if got := g.Rejections(); len(got) != 1 || got[0].Reason != protocol.ErrInsufficientMinerals {
		t.Fatalf("rejections=%v", got)
	}
	if self.Minerals() != 0 || self.SupplyUsed() != 8 {
		t.Fatalf("bank minerals=%d supply=%d", self.Minerals(), self.SupplyUsed())
	}
	if q := r.TrainingQueue(); len(q) != 4 || !r.IsTraining() {
		t.Fatalf("queue=%v training=%v", q, r.IsTraining())
	}

	st, _ := g.EndFrame()
	if st.Issued != 4 || st.Rejected[protocol.ErrInsufficientMinerals] != 1 || len(st.Commands) != 5 {
		t.Fatalf("stats=%+v", st)
	}
	if v := st.Commands[4].Verdict; v != "params:"+protocol.ErrInsufficientMinerals {
		t.Fatalf("verdict=%q", v)
	}

	// Counters stay one frame past the latency, then fall back to the segment.
	step(g, b.Seg, 2)
	if self.Minerals() != 0 {
		t.Fatalf("minerals at frame 2 = %d", self.Minerals())
	}
	step(g, b.Seg, 3)
	if self.Minerals() != 200 || len(r.TrainingQueue()) != 0 {
		t.Fatalf("predictions should be gone: minerals=%d queue=%v", self.Minerals(), r.TrainingQueue())
	}
}

func TestIssue_TrainOnHatcheryMorphsLarva(t *testing.T) {
	b := shmtest.New().Latency(2)
	b.Player(0, catalog.RaceZerg, 100, 0)
	b.Unit(0, catalog.ZergSpawningPool, 800, 800)
	hatch := b.Unit(0, catalog.ZergHatchery, 400, 400)
	larva := b.Unit(0, catalog.ZergLarva, 380, 440)
	larva.SetHatchery(hatch.ID())
	g := newGame(t, b, tuning.Defaults())
	h := handle(t, g, hatch.ID())

	if !h.Train(catalog.ZergZergling) {
		t.Fatalf("zergling rejected: %v", g.Rejections())
	}
	l := handle(t, g, larva.ID())
	if l.Type() != catalog.ZergEgg || l.BuildType() != catalog.ZergZergling || !l.IsMorphing() {
		t.Fatalf("larva prediction: type=%v build=%v morphing=%v", l.Type(), l.BuildType(), l.IsMorphing())
	}
	if h.Train(catalog.ZergZergling) {
		t.Fatalf("the only larva is already an egg")
	}
	g.EndFrame()
	cmds := b.Seg.UnitCommands()
	if len(cmds) != 1 || cmds[0].Unit != larva.ID() || cmds[0].Type != catalog.CmdTrain {
		t.Fatalf("outbound=%+v", cmds)
	}
}

func TestIssueGrouped_DivergesFromIndividual(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 1000, 0)
	s1 := b.Unit(0, catalog.TerranSCV, 100, 100)
	s2 := b.Unit(0, catalog.TerranSCV, 120, 100)
	medic := b.Unit(0, catalog.TerranMedic, 140, 100)
	g := newGame(t, b, tuning.Defaults())
	ids := []int{s1.ID(), s2.ID(), medic.ID()}

	build := client.Command{Kind: catalog.CmdBuild, X: 20, Y: 20, Extra: int(catalog.TerranSupplyDepot)}
	if g.CheckSet(ids, build) {
		t.Fatalf("CheckSet accepted a grouped build")
	}
	if !g.CheckSet(ids, client.Command{Kind: catalog.CmdAttackMove, X: 900, Y: 900}) {
		t.Fatalf("CheckSet rejected a grouped attack-move")
	}
	if n := g.IssueGrouped(ids, build); n != 0 {
		t.Fatalf("grouped build accepted by %d units", n)
	}
	if n := g.IssueGrouped(ids, client.Command{Kind: catalog.CmdAttackMove, X: 900, Y: 900}); n != 3 {
		t.Fatalf("grouped attack-move accepted by %d units, want 3", n)
	}
	build.Unit = s1.ID()
	if !g.Issue(build) {
		t.Fatalf("individual build rejected: %v", g.Rejections())
	}

	st, _ := g.EndFrame()
	if st.Issued != 4 || st.Rejected[protocol.ErrIncapable] != 3 {
		t.Fatalf("stats=%+v", st)
	}
	if n := b.Seg.UnitCommandCount(); n != 4 {
		t.Fatalf("outbound unit commands=%d", n)
	}
	for _, c := range st.Commands[:3] {
		if !c.Grouped || c.Accepted() {
			t.Fatalf("grouped build record=%+v", c)
		}
	}
}

func TestIssue_LatencyCompensationToggle(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	rec := b.Unit(0, catalog.TerranMarine, 100, 100)
	tun := tuning.Defaults()
	tun.LatencyCompensation = false
	g := newGame(t, b, tun)
	m := handle(t, g, rec.ID())

	if !m.Move(200, 200) {
		t.Fatalf("move rejected")
	}
	if m.IsMoving() {
		t.Fatalf("prediction visible with latency compensation off")
	}
	g.SetLatencyCompensation(true)
	if !m.Move(220, 220) || !m.IsMoving() {
		t.Fatalf("prediction missing after enabling")
	}
	g.SetLatencyCompensation(false)
	if m.IsMoving() {
		t.Fatalf("disabling must drop installed predictions")
	}
	g.EndFrame()
}

func TestIssue_ImmediateEffects(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	rec := b.Unit(0, catalog.TerranMarine, 100, 100)
	tun := tuning.Defaults()
	tun.ImmediateEffects = true
	g := newGame(t, b, tun)

	if !handle(t, g, rec.ID()).Stop() {
		t.Fatalf("stop rejected")
	}
	if n := b.Seg.UnitCommandCount(); n != 1 {
		t.Fatalf("immediate mode should write at once, count=%d", n)
	}
	st, err := g.EndFrame()
	if err != nil || st.Flushed != 1 || b.Seg.UnitCommandCount() != 1 {
		t.Fatalf("stats=%+v err=%v count=%d", st, err, b.Seg.UnitCommandCount())
	}
}

func TestEndFrame_FlushesOncePerStep(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	rec := b.Unit(0, catalog.TerranMarine, 100, 100)
	g := newGame(t, b, tuning.Defaults())
	m := handle(t, g, rec.ID())

	m.Move(200, 200)
	m.HoldPosition()
	m.Stop()
	if b.Seg.UnitCommandCount() != 0 {
		t.Fatalf("commands written before EndFrame")
	}
	g.EndFrame()
	st, _ := g.EndFrame()
	if st.Flushed != 0 || b.Seg.UnitCommandCount() != 3 {
		t.Fatalf("second flush stats=%+v count=%d", st, b.Seg.UnitCommandCount())
	}
	var kinds []catalog.UnitCommandType
	for _, c := range b.Seg.UnitCommands() {
		kinds = append(kinds, c.Type)
	}
	if diff := cmp.Diff([]catalog.UnitCommandType{catalog.CmdMove, catalog.CmdHoldPosition, catalog.CmdStop}, kinds); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestGameCommandsAndDrawing(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceProtoss, 0, 0)
	g := newGame(t, b, tuning.Defaults())

	if err := g.SendText(false, "gl hf %d", 1); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := g.DrawCircle(catalog.CoordinateMap, 10, 20, 5, 0x6f, true); err != nil {
		t.Fatalf("DrawCircle: %v", err)
	}
	if err := g.DrawTextScreen(1, 2, "frame %d", 7); err != nil {
		t.Fatalf("DrawText: %v", err)
	}
	if err := g.SetFrameSkip(0); err == nil {
		t.Fatalf("frame skip 0 accepted")
	}
	g.PauseGame()

	st, err := g.EndFrame()
	if err != nil || st.Flushed != 4 {
		t.Fatalf("stats=%+v err=%v", st, err)
	}
	gc := b.Seg.GameCommands()
	want := []shm.GameCommand{
		{Type: catalog.CommandSendText, Value1: 0},
		{Type: catalog.CommandPauseGame},
	}
	if diff := cmp.Diff(want, gc); diff != "" {
		t.Fatalf("game commands (-want +got):\n%s", diff)
	}
	if s, _ := b.Seg.Text(0); s != "gl hf 1" {
		t.Fatalf("text 0=%q", s)
	}
	shapes := b.Seg.Shapes()
	if len(shapes) != 2 || shapes[0].Type != catalog.ShapeCircle || shapes[1].Type != catalog.ShapeText || shapes[1].Extra1 != 1 {
		t.Fatalf("shapes=%+v", shapes)
	}
	if s, _ := b.Seg.Text(1); !strings.HasPrefix(s, "frame 7") {
		t.Fatalf("text 1=%q", s)
	}
}

func TestInvalidIdentifiers(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	g := newGame(t, b, tuning.Defaults())

	for _, id := range []int{-1, shm.MaxUnits} {
		if _, ok := g.Unit(id); ok {
			t.Fatalf("unit %d should have no handle", id)
		}
	}
	if _, ok := g.Player(shm.MaxPlayers); ok {
		t.Fatalf("player out of range should have no handle")
	}
	v := g.IssueVerdict(client.Command{Kind: catalog.CmdStop, Unit: 500})
	if v.OK() || v.Reason != protocol.ErrUnitNotExist {
		t.Fatalf("verdict=%s", v)
	}
}

func TestZeroUnitIsNoUnit(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	mineral := b.Unit(-1, catalog.ResourceMineralField, 300, 100)
	rec := b.Unit(0, catalog.TerranSCV, 100, 100)
	g := newGame(t, b, tuning.Defaults())
	scv := handle(t, g, rec.ID())
	if mineral.ID() != 0 {
		t.Fatalf("mineral id=%d, want slot 0", mineral.ID())
	}

	var none client.Unit
	if none.ID() != shm.NoUnit || none.Exists() || none.Type() != 0 {
		t.Fatalf("zero handle: id=%d exists=%v", none.ID(), none.Exists())
	}
	if none.Move(10, 10) || none.CanIssue(catalog.CmdStop) {
		t.Fatalf("zero handle issued a command")
	}
	if scv.Gather(none) {
		t.Fatalf("gather on the zero handle resolved to unit 0")
	}
	if !scv.Gather(handle(t, g, mineral.ID())) {
		t.Fatalf("gather on the mineral: %v", g.Rejections())
	}
}

func TestIssue_ConcurrentProducers(t *testing.T) {
	b := shmtest.New()
	b.Player(0, catalog.RaceTerran, 0, 0)
	var ids []int
	for i := 0; i < 4; i++ {
		ids = append(ids, b.Unit(0, catalog.TerranMarine, 100+i*20, 100).ID())
	}
	g := newGame(t, b, tuning.Defaults())

	var eg errgroup.Group
	for _, id := range ids {
		u := handle(t, g, id)
		eg.Go(func() error {
			for j := 0; j < 10; j++ {
				u.Move(200+j, 300)
				g.DrawDot(catalog.CoordinateMap, 200+j, 300, 0)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.Fatalf("producers: %v", err)
	}
	st, err := g.EndFrame()
	if err != nil || st.Issued != 40 || st.Flushed != 80 {
		t.Fatalf("stats=%+v err=%v", st, err)
	}
	last := map[int]int{}
	for _, c := range b.Seg.UnitCommands() {
		if c.X <= last[c.Unit] {
			t.Fatalf("unit %d commands out of order", c.Unit)
		}
		last[c.Unit] = c.X
	}
}
