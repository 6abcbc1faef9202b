package observer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"broodlink/internal/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func frame(n int) protocol.FrameStats {
	return protocol.FrameStats{SessionID: "s", Frame: n, Issued: n}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServer_BatchWindow(t *testing.T) {
	s := NewServer(protocol.HelloMsg{SessionID: "s"}, 3, nil)
	for n := 1; n <= 5; n++ {
		_ = s.WriteFrame(context.Background(), frame(n))
	}
	got, next := s.Batch(0, 10)
	if len(got) != 3 || got[0].Frame != 3 || next != 5 {
		t.Fatalf("batch=%v next=%d", got, next)
	}
	got, next = s.Batch(3, 1)
	if len(got) != 1 || got[0].Frame != 4 || next != 4 {
		t.Fatalf("batch=%v next=%d", got, next)
	}
	got, next = s.Batch(5, 10)
	if len(got) != 0 || next != 5 {
		t.Fatalf("batch=%v next=%d", got, next)
	}
}

func TestServer_HelloHandler(t *testing.T) {
	s := NewServer(protocol.HelloMsg{SessionID: "abc", LatencyFrames: 2, LatCom: true}, 0, nil)
	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/hello")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var h protocol.HelloMsg
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, SessionID: "abc", LatencyFrames: 2, LatCom: true}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Fatalf("hello (-want +got):\n%s", diff)
	}
}

func TestServer_StreamAndBatchRequest(t *testing.T) {
	s := NewServer(protocol.HelloMsg{SessionID: "s"}, 0, nil)
	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	_ = s.WriteFrame(context.Background(), frame(1))
	_ = s.WriteFrame(context.Background(), frame(2))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observe"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var hello protocol.HelloMsg
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != protocol.TypeHello {
		t.Fatalf("hello=%+v err=%v", hello, err)
	}
	waitFor(t, "observer registration", func() bool { return s.Stats().Observers == 1 })

	_ = s.WriteFrame(context.Background(), frame(3))
	var fm protocol.FrameMsg
	if err := conn.ReadJSON(&fm); err != nil || fm.Type != protocol.TypeFrame || fm.Frame != 3 {
		t.Fatalf("frame=%+v err=%v", fm, err)
	}

	req := protocol.FrameBatchReqMsg{
		Type:            protocol.TypeFrameBatchReq,
		ProtocolVersion: protocol.Version,
		ReqID:           "r1",
		SinceFrame:      0,
		Limit:           2,
	}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}
	var batch protocol.FrameBatchMsg
	if err := conn.ReadJSON(&batch); err != nil {
		t.Fatalf("read batch: %v", err)
	}
	if batch.Type != protocol.TypeFrameBatch || batch.ReqID != "r1" || batch.NextFrame != 2 {
		t.Fatalf("batch=%+v", batch)
	}
	if diff := cmp.Diff([]protocol.FrameStats{frame(1), frame(2)}, batch.Frames); diff != "" {
		t.Fatalf("frames (-want +got):\n%s", diff)
	}

	_ = conn.Close()
	waitFor(t, "observer removal", func() bool { return s.Stats().Observers == 0 })
}

func TestFollower_BackfillsThenFollows(t *testing.T) {
	s := NewServer(protocol.HelloMsg{SessionID: "s"}, 0, nil)
	srv := httptest.NewServer(s.Mux())
	defer srv.Close()
	for n := 1; n <= 3; n++ {
		_ = s.WriteFrame(context.Background(), frame(n))
	}

	var (
		mu    sync.Mutex
		got   []int
		hello protocol.HelloMsg
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := &Follower{
		URL:      "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observe",
		Backfill: true,
		OnHello: func(h protocol.HelloMsg) {
			mu.Lock()
			hello = h
			mu.Unlock()
		},
		OnFrame: func(st protocol.FrameStats) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, st.Frame)
			return nil
		},
	}
	errc := make(chan error, 1)
	go func() { errc <- f.Run(ctx) }()

	waitFor(t, "observer registration", func() bool { return s.Stats().Observers == 1 })
	_ = s.WriteFrame(context.Background(), frame(4))
	_ = s.WriteFrame(context.Background(), frame(5))
	waitFor(t, "frame 5", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == 5
	})
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, got); diff != "" {
		t.Fatalf("frames (-want +got):\n%s", diff)
	}
	if hello.SessionID != "s" {
		t.Fatalf("hello=%+v", hello)
	}
}

func TestFollower_StopsOnFrameError(t *testing.T) {
	s := NewServer(protocol.HelloMsg{SessionID: "s"}, 0, nil)
	srv := httptest.NewServer(s.Mux())
	defer srv.Close()

	boom := errors.New("stop here")
	f := &Follower{
		URL:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observe",
		OnFrame: func(protocol.FrameStats) error { return boom },
	}
	errc := make(chan error, 1)
	go func() { errc <- f.Run(context.Background()) }()
	waitFor(t, "observer registration", func() bool { return s.Stats().Observers == 1 })
	_ = s.WriteFrame(context.Background(), frame(1))
	if err := <-errc; !errors.Is(err, boom) {
		t.Fatalf("Run: %v", err)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v want %v", addr, got, want)
		}
	}
}
