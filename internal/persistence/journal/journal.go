// Package journal records every step's FrameStats as zstd-compressed JSONL.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"broodlink/internal/protocol"
)

const ext = ".jsonl.zst"

// Writer appends one line per frame. Files rotate every UTC hour and are
// named <prefix>-<yyyy-mm-dd-hh>.jsonl.zst.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	frames  int
}

// NewWriter journals into dir. The session id keeps concurrent sessions
// from sharing a file.
func NewWriter(dir, sessionID string) *Writer {
	return &Writer{baseDir: dir, prefix: sessionID, now: time.Now}
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Frames is the number of lines written so far.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *Writer) WriteFrame(_ context.Context, st protocol.FrameStats) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.frames++
	return w.w.Flush()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s%s", w.prefix, hour, ext))
}

// Files lists the journal files under dir in name order, which is session
// then hour order.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Reader decodes one journal file line by line.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	br  *bufio.Reader
	n   int
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{f: f, dec: dec, br: bufio.NewReaderSize(dec, 64*1024)}, nil
}

// Next returns io.EOF after the last frame. A truncated last line, as left
// by a crash mid-write, also ends the file.
func (r *Reader) Next() (protocol.FrameStats, error) {
	var st protocol.FrameStats
	line, err := r.br.ReadBytes('\n')
	if len(line) == 0 || (err != nil && line[len(line)-1] != '\n') {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return st, err
	}
	r.n++
	if err := json.Unmarshal(line, &st); err != nil {
		return st, fmt.Errorf("journal line %d: %w", r.n, err)
	}
	return st, nil
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}

// ReadFile loads a whole journal file.
func ReadFile(path string) ([]protocol.FrameStats, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []protocol.FrameStats
	for {
		st, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out = append(out, st)
	}
}
