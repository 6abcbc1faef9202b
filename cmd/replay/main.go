package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"broodlink/internal/persistence/indexdb"
	"broodlink/internal/persistence/journal"
	"broodlink/internal/protocol"
	"broodlink/internal/transport/observer"
)

func main() {
	var (
		journalPath = flag.String("journal", "", "journal dir or single .jsonl.zst file")
		session     = flag.String("session", "", "only this session id (optional)")
		fromFrame   = flag.Int("from_frame", 0, "first frame to check (inclusive, optional)")
		toFrame     = flag.Int("to_frame", 0, "last frame to check (inclusive, optional)")
		verbose     = flag.Bool("v", false, "print every frame")
		indexPath   = flag.String("index", "", "sqlite index: print per-session spans and rejection totals")
		follow      = flag.String("follow", "", "observer ws url to follow live, e.g. ws://127.0.0.1:8090/v1/observe")
		backfill    = flag.Bool("backfill", true, "with -follow, fetch recorded frames before live ones")
	)
	flag.Parse()

	switch {
	case *follow != "":
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := followLive(ctx, os.Stdout, *follow, *backfill); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "follow:", err)
			os.Exit(1)
		}
	case *indexPath != "":
		if err := printIndex(context.Background(), os.Stdout, *indexPath, *session); err != nil {
			fmt.Fprintln(os.Stderr, "index:", err)
			os.Exit(1)
		}
	case *journalPath != "":
		files, err := journalFiles(*journalPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list journal:", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "no journal files found in", *journalPath)
			os.Exit(1)
		}
		var frames []protocol.FrameStats
		for _, path := range files {
			st, err := journal.ReadFile(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, "read journal:", err)
				os.Exit(1)
			}
			frames = append(frames, st...)
		}
		frames = filter(frames, *session, *fromFrame, *toFrame)
		if *verbose {
			for _, st := range frames {
				fmt.Fprintln(os.Stdout, frameLine(st))
			}
		}
		sums := summarize(frames)
		for _, s := range sums {
			printSummary(os.Stdout, s)
		}
		if problems := verify(frames); len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintln(os.Stderr, "verify:", p)
			}
			os.Exit(1)
		}
		fmt.Printf("replay ok: checked=%d frames sessions=%d\n", len(frames), len(sums))
	default:
		fmt.Fprintln(os.Stderr, "missing -journal, -index or -follow")
		os.Exit(2)
	}
}

func journalFiles(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{path}, nil
	}
	return journal.Files(path)
}

func filter(in []protocol.FrameStats, session string, from, to int) []protocol.FrameStats {
	out := in[:0]
	for _, st := range in {
		if session != "" && st.SessionID != session {
			continue
		}
		if st.Frame < from || (to != 0 && st.Frame > to) {
			continue
		}
		out = append(out, st)
	}
	return out
}

type summary struct {
	Session     string
	First, Last int
	Frames      int
	Issued      int
	Flushed     int
	Dropped     int
	Rejected    map[string]int
	Kinds       map[string]int
}

// summarize groups frames by session in first-seen order.
func summarize(frames []protocol.FrameStats) []*summary {
	var order []*summary
	by := map[string]*summary{}
	for _, st := range frames {
		s := by[st.SessionID]
		if s == nil {
			s = &summary{Session: st.SessionID, First: st.Frame, Rejected: map[string]int{}, Kinds: map[string]int{}}
			by[st.SessionID] = s
			order = append(order, s)
		}
		s.Last = st.Frame
		s.Frames++
		s.Issued += st.Issued
		s.Flushed += st.Flushed
		s.Dropped += st.Dropped
		for r, n := range st.Rejected {
			s.Rejected[r] += n
		}
		for _, c := range st.Commands {
			if c.Accepted() {
				s.Kinds[c.Kind]++
			}
		}
	}
	return order
}

func printSummary(w io.Writer, s *summary) {
	fmt.Fprintf(w, "session=%s frames=%d [%d..%d] issued=%d flushed=%d dropped=%d\n",
		s.Session, s.Frames, s.First, s.Last, s.Issued, s.Flushed, s.Dropped)
	for _, kv := range sortedCounts(s.Kinds) {
		fmt.Fprintf(w, "  issued   %-28s %d\n", kv.key, kv.n)
	}
	for _, kv := range sortedCounts(s.Rejected) {
		fmt.Fprintf(w, "  rejected %-28s %d\n", kv.key, kv.n)
	}
}

type count struct {
	key string
	n   int
}

func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

// verify checks each frame's counters against its command records and that
// every session's frames strictly increase.
func verify(frames []protocol.FrameStats) []string {
	var problems []string
	last := map[string]int{}
	for _, st := range frames {
		if prev, ok := last[st.SessionID]; ok && st.Frame <= prev {
			problems = append(problems, fmt.Sprintf("session %s: frame %d after %d", st.SessionID, st.Frame, prev))
		}
		last[st.SessionID] = st.Frame

		if len(st.Commands) == 0 {
			continue
		}
		accepted, rejected := 0, map[string]int{}
		for _, c := range st.Commands {
			if c.Accepted() {
				accepted++
				continue
			}
			_, reason, _ := strings.Cut(c.Verdict, ":")
			rejected[reason]++
		}
		if accepted != st.Issued {
			problems = append(problems, fmt.Sprintf("frame %d: issued=%d but %d accepted commands", st.Frame, st.Issued, accepted))
		}
		for r, n := range st.Rejected {
			if rejected[r] != n {
				problems = append(problems, fmt.Sprintf("frame %d: rejected %s=%d but %d records", st.Frame, r, n, rejected[r]))
			}
			delete(rejected, r)
		}
		for r, n := range rejected {
			problems = append(problems, fmt.Sprintf("frame %d: %d %s records not counted", st.Frame, n, r))
		}
	}
	sort.Strings(problems)
	return problems
}

func frameLine(st protocol.FrameStats) string {
	return fmt.Sprintf("frame=%d issued=%d rejected=%d flushed=%d dropped=%d minerals=%d gas=%d supply=%d/%d units=%d",
		st.Frame, st.Issued, st.RejectedTotal(), st.Flushed, st.Dropped,
		st.Minerals, st.Gas, st.SupplyUsed, st.SupplyTotal, st.Units)
}

func printIndex(ctx context.Context, w io.Writer, path, session string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()
	ids := []string{session}
	if session == "" {
		if ids, err = idx.Sessions(ctx); err != nil {
			return err
		}
	}
	for _, id := range ids {
		sp, err := idx.Span(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "session=%s frames=%d [%d..%d] issued=%d rejected=%d dropped=%d\n",
			id, sp.Frames, sp.First, sp.Last, sp.Issued, sp.Rejected, sp.Dropped)
		totals, err := idx.RejectionTotals(ctx, id)
		if err != nil {
			return err
		}
		for _, r := range totals {
			fmt.Fprintf(w, "  rejected %-28s %d\n", r.Reason, r.Count)
		}
	}
	return nil
}

func followLive(ctx context.Context, w io.Writer, url string, backfill bool) error {
	f := &observer.Follower{
		URL:      url,
		Backfill: backfill,
		OnHello: func(h protocol.HelloMsg) {
			fmt.Fprintf(w, "HELLO session=%s self=%d map=%dx%d latency=%d rate=%dHz latcom=%v\n",
				h.SessionID, h.Self, h.MapWidth, h.MapHeight, h.LatencyFrames, h.FrameRateHz, h.LatCom)
		},
		OnFrame: func(st protocol.FrameStats) error {
			_, err := fmt.Fprintln(w, frameLine(st))
			return err
		},
	}
	return f.Run(ctx)
}
