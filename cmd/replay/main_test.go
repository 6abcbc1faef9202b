package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"broodlink/internal/persistence/indexdb"
	"broodlink/internal/protocol"
)

func sample() []protocol.FrameStats {
	return []protocol.FrameStats{
		{SessionID: "a", Frame: 1, Issued: 2, Rejected: map[string]int{"E_INCAPABLE": 1}, Commands: []protocol.CommandRecord{
			{Kind: "Move", Verdict: "ok"},
			{Kind: "Move", Verdict: "ok"},
			{Kind: "Build", Verdict: "kind:E_INCAPABLE"},
		}},
		{SessionID: "b", Frame: 7, Issued: 1, Commands: []protocol.CommandRecord{{Kind: "Stop", Verdict: "ok"}}},
		{SessionID: "a", Frame: 2, Issued: 1, Flushed: 1, Commands: []protocol.CommandRecord{{Kind: "Train", Verdict: "ok"}}},
	}
}

func TestVerify_Consistent(t *testing.T) {
	if p := verify(sample()); len(p) != 0 {
		t.Fatalf("problems=%v", p)
	}
}

func TestVerify_FlagsMismatches(t *testing.T) {
	frames := sample()
	frames[0].Issued = 3
	frames[0].Rejected = nil
	frames = append(frames, protocol.FrameStats{SessionID: "a", Frame: 2})

	want := []string{
		"frame 1: 1 E_INCAPABLE records not counted",
		"frame 1: issued=3 but 2 accepted commands",
		"session a: frame 2 after 2",
	}
	if diff := cmp.Diff(want, verify(frames)); diff != "" {
		t.Fatalf("problems (-want +got):\n%s", diff)
	}
}

func TestSummarize_GroupsBySession(t *testing.T) {
	sums := summarize(sample())
	if len(sums) != 2 || sums[0].Session != "a" || sums[1].Session != "b" {
		t.Fatalf("sums=%+v", sums)
	}
	a := sums[0]
	if a.Frames != 2 || a.First != 1 || a.Last != 2 || a.Issued != 3 || a.Kinds["Move"] != 2 || a.Rejected["E_INCAPABLE"] != 1 {
		t.Fatalf("a=%+v", a)
	}

	var buf bytes.Buffer
	printSummary(&buf, a)
	if !strings.Contains(buf.String(), "session=a frames=2 [1..2] issued=3") {
		t.Fatalf("summary=%q", buf.String())
	}
}

func TestFilter(t *testing.T) {
	got := filter(sample(), "a", 2, 0)
	if len(got) != 1 || got[0].Frame != 2 {
		t.Fatalf("got=%+v", got)
	}
}

func TestPrintIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	idx.RecordSession("a", 2, true, nil)
	for _, st := range sample() {
		_ = idx.WriteFrame(context.Background(), st)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var buf bytes.Buffer
	if err := printIndex(context.Background(), &buf, path, ""); err != nil {
		t.Fatalf("printIndex: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "session=a frames=2 [1..2] issued=3 rejected=1") || !strings.Contains(out, "E_INCAPABLE") {
		t.Fatalf("out=%q", out)
	}
}
