// Package client is the bot-facing session over one shared segment. It
// merges predictions with authoritative state, checks commands locally,
// queues the accepted ones and flushes them once per step.
package client

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"broodlink/internal/catalog"
	"broodlink/internal/effects"
	"broodlink/internal/legality"
	"broodlink/internal/placement"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
	"broodlink/internal/speculative"
	"broodlink/internal/state"
	"broodlink/internal/tuning"
)

type Options struct {
	Tuning tuning.Tuning
	// Catalog defaults to the embedded tables.
	Catalog *catalog.Catalog
	Logger  *log.Logger
}

// Game is safe for concurrent use by bot goroutines. EndFrame and BeginFrame
// belong to the single frame driver.
type Game struct {
	mu sync.Mutex

	id     string
	seg    *shm.Segment
	cat    *catalog.Catalog
	tun    tuning.Tuning
	spec   *speculative.Cache
	world  *state.World
	legal  *legality.Engine
	queue  effects.Queue
	logger *log.Logger

	acc frameAcc
}

// frameAcc collects what happened during one step.
type frameAcc struct {
	frame    int
	issued   int
	applied  int
	dropped  int
	rejected map[string]int
	commands []protocol.CommandRecord
}

func New(seg *shm.Segment, opts Options) (*Game, error) {
	if seg == nil {
		return nil, fmt.Errorf("client: nil segment")
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	tun := opts.Tuning
	if tun.FrameRateHz == 0 {
		tun = tuning.Defaults()
	}
	windows, err := tun.SpeculativeWindows(seg.LatencyFrames())
	if err != nil {
		return nil, err
	}
	spec := speculative.New(windows)
	spec.SetEnabled(tun.LatencyCompensation)
	spec.Advance(seg.Frame())

	world := state.New(seg, cat, spec)
	rules := placement.New()
	legal, err := legality.New(world, rules, rules)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	g := &Game{
		id:     uuid.NewString(),
		seg:    seg,
		cat:    cat,
		tun:    tun,
		spec:   spec,
		world:  world,
		legal:  legal,
		logger: logger,
	}
	g.acc.reset(seg.Frame())
	return g, nil
}

func (a *frameAcc) reset(frame int) {
	a.frame = frame
	a.issued, a.applied, a.dropped = 0, 0, 0
	a.rejected = map[string]int{}
	a.commands = a.commands[:0:0]
}

func (g *Game) SessionID() string               { return g.id }
func (g *Game) Catalog() *catalog.Catalog       { return g.cat }
func (g *Game) Tuning() tuning.Tuning           { return g.tun }
func (g *Game) Segment() *shm.Segment           { return g.seg }
func (g *Game) Engine() *legality.Engine        { return g.legal }
func (g *Game) Speculative() *speculative.Cache { return g.spec }

func (g *Game) Frame() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seg.Frame()
}

// LatencyCompensation reports whether predictions are installed and read.
func (g *Game) LatencyCompensation() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spec.Enabled()
}

// SetLatencyCompensation toggles prediction locally without telling the
// engine. Turning it off discards every installed prediction.
func (g *Game) SetLatencyCompensation(on bool) {
	g.mu.Lock()
	g.spec.SetEnabled(on)
	g.mu.Unlock()
}

// BeginFrame moves the session to the segment's current frame. Predictions
// whose window has closed stop being visible from here on.
func (g *Game) BeginFrame() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.seg.Frame()
	g.spec.Advance(f)
	g.world.Rel.Reset()
	g.acc.reset(f)
	return f
}

// EndFrame writes every queued effect to the segment, drops the relation
// index and reports what the step did. Overflowed effects are counted as
// dropped and logged; the returned error joins them.
func (g *Game) EndFrame() (protocol.FrameStats, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pending := g.queue.Len()
	applied, err := g.queue.Flush(g.seg)
	g.world.Rel.Reset()
	if err != nil {
		g.logger.Printf("flush frame=%d dropped=%d: %v", g.acc.frame, pending-applied, err)
	}

	st := protocol.FrameStats{
		SessionID: g.id,
		Frame:     g.acc.frame,
		Issued:    g.acc.issued,
		Flushed:   applied + g.acc.applied,
		Dropped:   pending - applied + g.acc.dropped,
		Units:     g.countUnits(),
		Commands:  g.acc.commands,
	}
	if len(g.acc.rejected) > 0 {
		st.Rejected = g.acc.rejected
	}
	if p, ok := g.world.Self(); ok {
		st.Minerals, st.Gas = p.Minerals(), p.Gas()
		st.SupplyUsed, st.SupplyTotal = p.SupplyUsed(), p.SupplyTotal()
	}
	g.acc.reset(g.acc.frame)
	return st, err
}

func (g *Game) countUnits() int {
	n := 0
	g.world.Units(func(u state.Unit) bool {
		n++
		return true
	})
	return n
}

// Rejections returns this step's rejection counts sorted by reason.
func (g *Game) Rejections() []ReasonCount {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ReasonCount, 0, len(g.acc.rejected))
	for r, n := range g.acc.rejected {
		out = append(out, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reason < out[j].Reason })
	return out
}

type ReasonCount struct {
	Reason string
	Count  int
}

// emit queues e, or writes it at once in immediate mode.
func (g *Game) emit(e effects.Effect) error {
	if !g.tun.ImmediateEffects {
		g.queue.Enqueue(e)
		return nil
	}
	if err := g.queue.Apply(e, g.seg); err != nil {
		g.acc.dropped++
		return err
	}
	g.acc.applied++
	return nil
}
