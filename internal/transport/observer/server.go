// Package observer streams a session's frame summaries over websocket.
//
// An observer connects, receives HELLO, then one FRAME per step. It may send
// FRAME_BATCH_REQ to fetch frames it missed from a bounded history.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"broodlink/internal/protocol"
)

const (
	DefaultHistory = 1024
	maxBatch       = 256
	sendQueue      = 64
)

type Server struct {
	hello protocol.HelloMsg
	log   *log.Logger

	// AllowRemote accepts observers from non-loopback addresses.
	AllowRemote bool

	upgrader websocket.Upgrader

	mu      sync.Mutex
	subs    map[uint64]chan []byte
	history []protocol.FrameStats
	histCap int

	nextID  atomic.Uint64
	dropped atomic.Uint64
}

// NewServer serves hello to every observer and keeps the last history frames
// for batch requests. history <= 0 means DefaultHistory.
func NewServer(hello protocol.HelloMsg, history int, logger *log.Logger) *Server {
	if history <= 0 {
		history = DefaultHistory
	}
	hello.Type = protocol.TypeHello
	hello.ProtocolVersion = protocol.Version
	return &Server{
		hello:   hello,
		log:     logger,
		subs:    map[uint64]chan []byte{},
		histCap: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type Stats struct {
	Observers int
	History   int
	Dropped   uint64
}

func (s *Server) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Observers: len(s.subs), History: len(s.history), Dropped: s.dropped.Load()}
}

// WriteFrame records st and fans it out. A slow observer loses frames rather
// than stalling the frame loop; it can recover them with FRAME_BATCH_REQ.
func (s *Server) WriteFrame(_ context.Context, st protocol.FrameStats) error {
	b, err := json.Marshal(protocol.NewFrameMsg(st))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == s.histCap {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, st)
	for _, out := range s.subs {
		select {
		case out <- b:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Batch returns up to limit recorded frames after since, and the frame to
// ask from next.
func (s *Server) Batch(since, limit int) ([]protocol.FrameStats, int) {
	if limit <= 0 || limit > maxBatch {
		limit = maxBatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []protocol.FrameStats{}
	next := since
	for _, st := range s.history {
		if st.Frame <= since {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, st)
		next = st.Frame
	}
	return out, next
}

func (s *Server) HelloHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.hello)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := writeJSON(conn, s.hello); err != nil {
			return
		}

		id := s.nextID.Add(1)
		out := make(chan []byte, sendQueue)
		s.mu.Lock()
		s.subs[id] = out
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		}()
		s.logf("observer %d connected from %s", id, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeFrameBatchReq {
				continue
			}
			var req protocol.FrameBatchReqMsg
			if err := json.Unmarshal(msg, &req); err != nil || req.ProtocolVersion != protocol.Version {
				continue
			}
			frames, next := s.Batch(req.SinceFrame, req.Limit)
			b, _ := json.Marshal(protocol.FrameBatchMsg{
				Type:            protocol.TypeFrameBatch,
				ProtocolVersion: protocol.Version,
				ReqID:           req.ReqID,
				Frames:          frames,
				NextFrame:       next,
			})
			select {
			case out <- b:
			case <-ctx.Done():
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		s.logf("observer %d disconnected", id)
	}
}

// Mux routes /v1/hello and /v1/observe.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/hello", s.HelloHandler())
	mux.HandleFunc("/v1/observe", s.WSHandler())
	return mux
}

// ListenAndServe serves Mux on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logf("observer listening on %s", addr)
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx2)
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
