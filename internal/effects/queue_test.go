package effects

import (
	"errors"
	"testing"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"broodlink/internal/catalog"
	"broodlink/internal/shm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func move(unit, seq int) UnitCommand {
	return UnitCommand{Cmd: shm.UnitCommand{Type: catalog.CmdMove, Unit: unit, Target: shm.NoUnit, X: seq, Extra: seq}}
}

func TestFlush_AppendsAfterExistingInOrder(t *testing.T) {
	seg := shm.New()
	const existing, queued = 3, 5
	for i := 0; i < existing; i++ {
		if err := seg.AddUnitCommand(move(100+i, i).Cmd); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	var q Queue
	for i := 0; i < queued; i++ {
		q.Enqueue(move(i, i))
	}
	n, err := q.Flush(seg)
	if err != nil || n != queued {
		t.Fatalf("flush n=%d err=%v", n, err)
	}
	if q.Len() != 0 {
		t.Fatalf("queue not empty after flush: %d", q.Len())
	}
	got := seg.UnitCommands()
	if len(got) != existing+queued {
		t.Fatalf("commands=%d want %d", len(got), existing+queued)
	}
	for i := 0; i < queued; i++ {
		if got[existing+i].Unit != i {
			t.Fatalf("slot %d holds unit %d", existing+i, got[existing+i].Unit)
		}
	}

	n, err = q.Flush(seg)
	if n != 0 || err != nil || seg.UnitCommandCount() != existing+queued {
		t.Fatalf("second flush applied effects again: n=%d err=%v", n, err)
	}
}

func TestFlush_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers, perProducer = 16, 500
	var q Queue
	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProducer; i++ {
				q.Enqueue(move(p, i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("producers: %v", err)
	}

	seg := shm.New()
	n, err := q.Flush(seg)
	if err != nil || n != producers*perProducer {
		t.Fatalf("flush n=%d err=%v", n, err)
	}
	next := make([]int, producers)
	for _, c := range seg.UnitCommands() {
		if c.Extra != next[c.Unit] {
			t.Fatalf("producer %d: got seq %d want %d", c.Unit, c.Extra, next[c.Unit])
		}
		next[c.Unit]++
	}
	for p, seen := range next {
		if seen != perProducer {
			t.Fatalf("producer %d: %d effects applied", p, seen)
		}
	}
}

func TestFlush_OverflowIsReportedAndDropped(t *testing.T) {
	seg := shm.New()
	for seg.GameCommandCount() < shm.MaxGameCommands-1 {
		if err := seg.AddGameCommand(shm.GameCommand{Type: catalog.CommandSetLocalSpeed}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	var q Queue
	q.Enqueue(GameCommand{Cmd: shm.GameCommand{Type: catalog.CommandPauseGame}})
	q.Enqueue(GameCommand{Cmd: shm.GameCommand{Type: catalog.CommandResumeGame}})
	q.Enqueue(move(1, 0))

	n, err := q.Flush(seg)
	if n != 2 {
		t.Fatalf("applied=%d want 2", n)
	}
	if !errors.Is(err, shm.ErrOutboxFull) {
		t.Fatalf("err=%v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("failed effect was kept for retry")
	}
}

func TestApply_Immediate(t *testing.T) {
	seg := shm.New()
	var q Queue
	q.Enqueue(move(1, 0))
	if err := q.Apply(move(2, 0), seg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if seg.UnitCommandCount() != 1 || q.Len() != 1 {
		t.Fatalf("immediate apply touched the queue")
	}
}

func TestTextAndStringCommand(t *testing.T) {
	seg := shm.New()
	var q Queue
	q.Enqueue(StringCommand{Type: catalog.CommandSendText, Text: "gl hf", Value2: 1})
	q.Enqueue(Text{Shape: shm.Shape{Coords: catalog.CoordinateScreen, X1: 10, Y1: 20}, Text: "hello"})
	if _, err := q.Flush(seg); err != nil {
		t.Fatalf("flush: %v", err)
	}
	gc := seg.GameCommands()
	if len(gc) != 1 || gc[0].Type != catalog.CommandSendText || gc[0].Value2 != 1 {
		t.Fatalf("game commands=%+v", gc)
	}
	if s, _ := seg.Text(gc[0].Value1); s != "gl hf" {
		t.Fatalf("send text=%q", s)
	}
	sh := seg.Shapes()
	if len(sh) != 1 || sh[0].Type != catalog.ShapeText {
		t.Fatalf("shapes=%+v", sh)
	}
	if s, _ := seg.Text(sh[0].Extra1); s != "hello" {
		t.Fatalf("text shape=%q", s)
	}
}

func TestStringCommand_FullCommandBufferLeavesNoOrphanString(t *testing.T) {
	seg := shm.New()
	for seg.GameCommandCount() < shm.MaxGameCommands {
		if err := seg.AddGameCommand(shm.GameCommand{Type: catalog.CommandSetLocalSpeed}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	err := StringCommand{Type: catalog.CommandSendText, Text: "gg"}.Apply(seg)
	if !errors.Is(err, shm.ErrOutboxFull) {
		t.Fatalf("err=%v", err)
	}
	if seg.StringCount() != 0 {
		t.Fatalf("strings=%d after a rejected command", seg.StringCount())
	}
}

func TestText_FullStringBufferWritesNoShape(t *testing.T) {
	seg := shm.New()
	for seg.StringCount() < shm.MaxStrings {
		if _, err := seg.AddString("x"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	err := Text{Shape: shm.Shape{Coords: catalog.CoordinateMap}, Text: "late"}.Apply(seg)
	if !errors.Is(err, shm.ErrOutboxFull) {
		t.Fatalf("err=%v", err)
	}
	if seg.ShapeCount() != 0 {
		t.Fatalf("shapes=%d after a rejected text", seg.ShapeCount())
	}
}
