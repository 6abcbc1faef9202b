// Package capture stores a sequence of shared segments, one per engine
// frame, so a session can be driven offline.
//
// A capture file is a zstd stream: one JSON header line followed by a gob
// stream of frame records.
package capture

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"broodlink/internal/shm"
)

const (
	Magic   = "BRDLCAP"
	Version = 1
)

var ErrBadMagic = errors.New("capture: bad magic")

type Header struct {
	Magic          string `json:"magic"`
	Version        int    `json:"version"`
	SegmentVersion uint32 `json:"segment_version"`
	SegmentSize    int    `json:"segment_size"`
	Label          string `json:"label,omitempty"`
}

type record struct {
	Frame int
	Data  []byte
}

type Writer struct {
	f      *os.File
	enc    *zstd.Encoder
	bw     *bufio.Writer
	gob    *gob.Encoder
	frames int
}

// Create truncates path and writes the header.
func Create(path, label string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	hb, _ := json.Marshal(Header{
		Magic:          Magic,
		Version:        Version,
		SegmentVersion: shm.Version,
		SegmentSize:    shm.Size,
		Label:          label,
	})
	if _, err := bw.Write(hb); err == nil {
		err = bw.WriteByte('\n')
	}
	if err != nil {
		_ = enc.Close()
		_ = f.Close()
		return nil, err
	}
	return &Writer{f: f, enc: enc, bw: bw, gob: gob.NewEncoder(bw)}, nil
}

// Add appends the segment's current contents as one frame.
func (w *Writer) Add(seg *shm.Segment) error {
	if err := w.gob.Encode(record{Frame: seg.Frame(), Data: seg.Bytes()}); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	w.frames++
	return nil
}

func (w *Writer) Frames() int { return w.frames }

func (w *Writer) Close() error {
	err := w.bw.Flush()
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Reader replays a capture into a live segment. It satisfies the driver's
// Source: every Next overwrites the target with the next captured frame.
type Reader struct {
	// Interval paces frames; zero replays as fast as the driver consumes.
	Interval time.Duration

	header Header
	target *shm.Segment
	f      *os.File
	dec    *zstd.Decoder
	gob    *gob.Decoder
	ticker *time.Ticker
	frames int
}

// Open reads the header of path. Frames are copied into target.
func Open(path string, target *shm.Segment) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	br := bufio.NewReaderSize(dec, 256*1024)
	r := &Reader{target: target, f: f, dec: dec, gob: gob.NewDecoder(br)}

	line, err := br.ReadBytes('\n')
	if err == nil {
		err = json.Unmarshal(line, &r.header)
	}
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %v", ErrBadMagic, err)
	case r.header.Magic != Magic:
		err = ErrBadMagic
	case r.header.Version != Version:
		err = fmt.Errorf("capture: unsupported version %d", r.header.Version)
	case r.header.SegmentVersion != shm.Version || r.header.SegmentSize != shm.Size:
		err = fmt.Errorf("capture: segment v%d/%d bytes, want v%d/%d bytes",
			r.header.SegmentVersion, r.header.SegmentSize, shm.Version, shm.Size)
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) Header() Header { return r.header }

// Frames is the number of frames replayed so far.
func (r *Reader) Frames() int { return r.frames }

// Next loads the next frame into the target segment. ok is false at the end
// of the capture.
func (r *Reader) Next(ctx context.Context) (int, bool, error) {
	if err := r.wait(ctx); err != nil {
		return 0, false, err
	}
	var rec record
	if err := r.gob.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("gob decode: %w", err)
	}
	if _, err := shm.Wrap(rec.Data); err != nil {
		return 0, false, fmt.Errorf("capture frame %d: %w", rec.Frame, err)
	}
	copy(r.target.Bytes(), rec.Data)
	r.frames++
	return rec.Frame, true, nil
}

func (r *Reader) wait(ctx context.Context) error {
	if r.Interval <= 0 {
		return ctx.Err()
	}
	if r.ticker == nil {
		r.ticker = time.NewTicker(r.Interval)
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ticker.C:
		return nil
	}
}

func (r *Reader) Close() error {
	if r.ticker != nil {
		r.ticker.Stop()
	}
	r.dec.Close()
	return r.f.Close()
}
