package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"broodlink/internal/catalog"
	"broodlink/internal/client"
	"broodlink/internal/driver"
	"broodlink/internal/persistence/capture"
	"broodlink/internal/persistence/indexdb"
	"broodlink/internal/persistence/journal"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
	"broodlink/internal/transport/observer"
	"broodlink/internal/tuning"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (empty for defaults)")
		capPath    = flag.String("capture", "", "segment capture to drive (overrides tuning capture)")
		fast       = flag.Bool("fast", false, "drive the capture as fast as possible instead of at frame_rate_hz")
		makeDemo   = flag.String("make_demo", "", "write a synthetic capture to this path and exit")
		demoFrames = flag.Int("demo_frames", 720, "frames in the synthetic capture")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[client] ", log.LstdFlags|log.Lmicroseconds)

	if *makeDemo != "" {
		if err := writeDemoCapture(*makeDemo, *demoFrames); err != nil {
			logger.Fatalf("make_demo: %v", err)
		}
		logger.Printf("wrote %d frames to %s", *demoFrames, *makeDemo)
		return
	}

	tun, err := tuning.Load(*tuningPath)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	path := tun.Capture
	if *capPath != "" {
		path = *capPath
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "missing -capture (or capture in tuning)")
		os.Exit(2)
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := run(ctx, logger, tun, path, *fast); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, tun tuning.Tuning, path string, fast bool) error {
	seg := shm.New()
	src, err := capture.Open(path, seg)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer src.Close()
	if !fast {
		src.Interval = time.Second / time.Duration(tun.FrameRateHz)
	}
	if _, ok, err := src.Next(ctx); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("capture %s has no frames", path)
	}

	g, err := client.New(seg, client.Options{
		Tuning:  tun,
		Catalog: catalog.Default(),
		Logger:  log.New(os.Stdout, "[game] ", log.LstdFlags|log.Lmicroseconds),
	})
	if err != nil {
		return err
	}
	logger.Printf("session=%s capture=%s latency=%d latcom=%v immediate=%v",
		g.SessionID(), path, seg.LatencyFrames(), g.LatencyCompensation(), tun.ImmediateEffects)

	var sinks []driver.Sink
	if tun.JournalDir != "" {
		j := journal.NewWriter(tun.JournalDir, g.SessionID())
		defer func() {
			if err := j.Close(); err != nil {
				logger.Printf("journal close: %v", err)
			}
		}()
		sinks = append(sinks, j)
	}
	var idx *indexdb.SQLiteIndex
	if tun.IndexDB != "" {
		idx, err = indexdb.OpenSQLite(tun.IndexDB)
		if err != nil {
			return fmt.Errorf("open index: %w", err)
		}
		defer idx.Close()
		idx.RecordSession(g.SessionID(), seg.LatencyFrames(), g.LatencyCompensation(), tun)
		sinks = append(sinks, idx)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	eg, ctx := errgroup.WithContext(ctx)
	if tun.ObserverAddr != "" {
		obs := observer.NewServer(protocol.HelloMsg{
			SessionID:     g.SessionID(),
			Self:          seg.Self(),
			MapWidth:      seg.MapWidth(),
			MapHeight:     seg.MapHeight(),
			LatencyFrames: seg.LatencyFrames(),
			FrameRateHz:   tun.FrameRateHz,
			LatCom:        g.LatencyCompensation(),
		}, 0, log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmicroseconds))
		sinks = append(sinks, obs)
		eg.Go(func() error { return obs.ListenAndServe(ctx, tun.ObserverAddr) })
	}

	d := driver.New(g, src, newDemoBot(logger), logger, sinks...)
	eg.Go(func() error {
		defer stop()
		if err := d.Step(ctx); err != nil {
			return err
		}
		return d.Run(ctx)
	})
	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Printf("session=%s steps=%d frames=%d", g.SessionID(), d.Steps(), src.Frames())

	if idx != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := idx.Sync(sctx); serr == nil {
			totals, _ := idx.RejectionTotals(sctx, g.SessionID())
			for _, r := range totals {
				logger.Printf("rejected %-28s %d", r.Reason, r.Count)
			}
		}
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
