// Package driver runs the per-step loop: wait for the engine's next frame,
// let the bot act, flush once, then hand the step's stats to the sinks.
package driver

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"broodlink/internal/client"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
)

// Source yields the engine's frame counter once a new step is readable.
// ok == false ends the match.
type Source interface {
	Next(ctx context.Context) (frame int, ok bool, err error)
}

type Bot interface {
	OnFrame(ctx context.Context, g *client.Game) error
}

type BotFunc func(ctx context.Context, g *client.Game) error

func (f BotFunc) OnFrame(ctx context.Context, g *client.Game) error { return f(ctx, g) }

// Sink receives every step's stats: the journal, the frame index and the
// observer stream.
type Sink interface {
	WriteFrame(ctx context.Context, st protocol.FrameStats) error
}

type SinkFunc func(ctx context.Context, st protocol.FrameStats) error

func (f SinkFunc) WriteFrame(ctx context.Context, st protocol.FrameStats) error { return f(ctx, st) }

type Driver struct {
	game   *client.Game
	src    Source
	bot    Bot
	sinks  []Sink
	logger *log.Logger

	last    int
	started bool
	steps   int
}

func New(g *client.Game, src Source, bot Bot, logger *log.Logger, sinks ...Sink) *Driver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Driver{game: g, src: src, bot: bot, sinks: sinks, logger: logger}
}

// Steps is the number of frames driven so far.
func (d *Driver) Steps() int { return d.steps }

// Run drives frames until the source ends, ctx is cancelled or a step fails.
// A frame the source reports twice is driven once.
func (d *Driver) Run(ctx context.Context) error {
	for {
		frame, ok, err := d.src.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			d.logger.Printf("source ended after %d steps", d.steps)
			return nil
		}
		if d.started && frame == d.last {
			continue
		}
		d.started, d.last = true, frame
		if err := d.Step(ctx); err != nil {
			return err
		}
	}
}

// Step drives the segment's current frame once.
func (d *Driver) Step(ctx context.Context) error {
	frame := d.game.BeginFrame()
	if d.bot != nil {
		if err := d.bot.OnFrame(ctx, d.game); err != nil {
			return fmt.Errorf("bot frame %d: %w", frame, err)
		}
	}
	st, err := d.game.EndFrame()
	if err != nil {
		d.logger.Printf("frame=%d dropped=%d", frame, st.Dropped)
	}
	d.steps++
	return d.publish(ctx, st)
}

func (d *Driver) publish(ctx context.Context, st protocol.FrameStats) error {
	if len(d.sinks) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range d.sinks {
		s := s
		g.Go(func() error { return s.WriteFrame(gctx, st) })
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sink frame %d: %w", st.Frame, err)
	}
	return nil
}

// PollSource watches a live segment's frame counter. It reports every tick
// while the game runs; the driver skips ticks that did not advance.
type PollSource struct {
	Seg      *shm.Segment
	Interval time.Duration
}

func (p PollSource) Next(ctx context.Context) (int, bool, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	t := time.NewTimer(interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case <-t.C:
	}
	if !p.Seg.InGame() {
		return 0, false, nil
	}
	return p.Seg.Frame(), true, nil
}
