package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/goleak"

	"broodlink/internal/catalog"
	"broodlink/internal/client"
	"broodlink/internal/driver"
	"broodlink/internal/persistence/capture"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
	"broodlink/internal/shm/shmtest"
	"broodlink/internal/tuning"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// record writes frames 1..n where the marine walks 8 pixels a frame.
func record(t *testing.T, path string, n int) (marine int) {
	t.Helper()
	b := shmtest.New().Latency(2)
	b.Region(0, true, 0, 0, 64, 64)
	b.Player(0, catalog.RaceTerran, 100, 0)
	m := b.Unit(0, catalog.TerranMarine, 100, 100)

	w, err := capture.Create(path, "walk")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for f := 1; f <= n; f++ {
		b.Seg.SetFrame(f)
		m.SetPosition(100+8*f, 100)
		if err := w.Add(b.Seg); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if w.Frames() != n {
		t.Fatalf("frames=%d", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return m.ID()
}

func TestReader_ReplaysIntoTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.cap.zst")
	marine := record(t, path, 3)

	seg := shm.New()
	r, err := capture.Open(path, seg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if h := r.Header(); h.Label != "walk" || h.SegmentSize != shm.Size {
		t.Fatalf("header=%+v", h)
	}

	ctx := context.Background()
	for f := 1; f <= 3; f++ {
		frame, ok, err := r.Next(ctx)
		if err != nil || !ok || frame != f {
			t.Fatalf("Next=%d,%v,%v want %d", frame, ok, err, f)
		}
		u, _ := seg.Unit(marine)
		if x, _ := u.Position(); x != 100+8*f || seg.Frame() != f {
			t.Fatalf("frame %d: x=%d seg frame=%d", f, x, seg.Frame())
		}
	}
	if _, ok, err := r.Next(ctx); ok || err != nil {
		t.Fatalf("after last frame: ok=%v err=%v", ok, err)
	}
	if r.Frames() != 3 {
		t.Fatalf("frames=%d", r.Frames())
	}
}

func TestOpen_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.zst")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, _ := zstd.NewWriter(f)
	_, _ = enc.Write([]byte(`{"magic":"NOPE","version":1}` + "\n"))
	_ = enc.Close()
	_ = f.Close()

	if _, err := capture.Open(path, shm.New()); !errors.Is(err, capture.ErrBadMagic) {
		t.Fatalf("err=%v, want ErrBadMagic", err)
	}
}

func TestReader_PacedCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.cap.zst")
	record(t, path, 2)
	r, err := capture.Open(path, shm.New())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	r.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	if _, ok, err := r.Next(ctx); !ok || err != nil {
		t.Fatalf("first frame is not paced: ok=%v err=%v", ok, err)
	}
	cancel()
	if _, _, err := r.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestReader_DrivesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.cap.zst")
	marine := record(t, path, 4)

	seg := shm.New()
	r, err := capture.Open(path, seg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if _, ok, err := r.Next(context.Background()); !ok || err != nil {
		t.Fatalf("prime: ok=%v err=%v", ok, err)
	}
	g, err := client.New(seg, client.Options{Tuning: tuning.Defaults(), Catalog: catalog.Default()})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}

	var stats []protocol.FrameStats
	sink := driver.SinkFunc(func(_ context.Context, st protocol.FrameStats) error {
		stats = append(stats, st)
		return nil
	})
	bot := driver.BotFunc(func(_ context.Context, g *client.Game) error {
		u, _ := g.Unit(marine)
		u.Stop()
		return nil
	})
	d := driver.New(g, r, bot, nil, sink)
	if err := d.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stats) != 4 {
		t.Fatalf("steps=%d", len(stats))
	}
	for i, st := range stats {
		if st.Frame != i+1 || st.Issued != 1 || st.Flushed != 1 || st.Units != 1 {
			t.Fatalf("step %d: %+v", i, st)
		}
	}
}
