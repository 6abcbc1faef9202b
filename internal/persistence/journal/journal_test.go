package journal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"

	"broodlink/internal/protocol"
)

func TestWriter_RotatesHourlyAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "s1")
	clock := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }

	in := []protocol.FrameStats{
		{SessionID: "s1", Frame: 1, Issued: 2, Flushed: 2, Minerals: 50},
		{SessionID: "s1", Frame: 2, Rejected: map[string]int{"E_INSUFFICIENT_MINERALS": 1},
			Commands: []protocol.CommandRecord{{Kind: "Train", Unit: 3, Extra: 0, Verdict: "params:E_INSUFFICIENT_MINERALS"}}},
		{SessionID: "s1", Frame: 3, Issued: 1, Flushed: 1},
	}
	ctx := context.Background()
	for i, st := range in {
		if i == 2 {
			clock = clock.Add(2 * time.Minute)
		}
		if err := w.WriteFrame(ctx, st); err != nil {
			t.Fatalf("WriteFrame(%d): %v", st.Frame, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.Frames() != 3 {
		t.Fatalf("frames=%d", w.Frames())
	}

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{
		filepath.Join(dir, "s1-2024-05-01-10.jsonl.zst"),
		filepath.Join(dir, "s1-2024-05-01-11.jsonl.zst"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("files (-want +got):\n%s", diff)
	}

	var got []protocol.FrameStats
	for _, f := range files {
		part, err := ReadFile(f)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		got = append(got, part...)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("frames (-want +got):\n%s", diff)
	}
}

func writeRaw(t *testing.T, path, body string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadFile_TruncatedTailIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s-2024-01-01-00.jsonl.zst")
	writeRaw(t, path, `{"session_id":"s","frame":1}`+"\n"+`{"session_id":"s","fra`)
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].Frame != 1 {
		t.Fatalf("got=%+v", got)
	}
}

func TestReadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s-2024-01-01-00.jsonl.zst")
	writeRaw(t, path, `{"frame":1}`+"\nnot json\n")
	_, err := ReadFile(path)
	if err == nil || !strings.Contains(err.Error(), "journal line 2") {
		t.Fatalf("err=%v", err)
	}
}

func TestFiles_SkipsOtherEntries(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, filepath.Join(dir, "b-2024-01-01-00.jsonl.zst"), "")
	writeRaw(t, filepath.Join(dir, "a-2024-01-01-00.jsonl.zst"), "")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.jsonl.zst"), 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := Files(dir)
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a-2024-01-01-00.jsonl.zst" {
		t.Fatalf("files=%v", files)
	}
}
