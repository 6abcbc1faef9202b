package observer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"broodlink/internal/protocol"
)

// Follower reads a session's observer stream and hands frames to OnFrame in
// increasing frame order. Frames lost on the wire are fetched with
// FRAME_BATCH_REQ before later frames are delivered.
type Follower struct {
	URL string
	// Backfill requests the server's recorded history before the first live frame.
	Backfill bool
	OnHello  func(protocol.HelloMsg)
	OnFrame  func(protocol.FrameStats) error
	Logger   *log.Logger

	last    int
	seen    bool
	waiting string
	pending []protocol.FrameStats
}

// Run blocks until ctx ends, the server closes the stream or OnFrame fails.
func (f *Follower) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if f.Backfill {
		f.seen, f.last = true, -1
	}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeHello:
			var h protocol.HelloMsg
			if err := json.Unmarshal(msg, &h); err != nil {
				return err
			}
			if h.ProtocolVersion != protocol.Version {
				return errors.New("observer: protocol version " + h.ProtocolVersion)
			}
			if f.OnHello != nil {
				f.OnHello(h)
			}

		case protocol.TypeFrame:
			var m protocol.FrameMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			req, err := f.frame(m.FrameStats)
			if err != nil {
				return err
			}
			if req != nil {
				if err := conn.WriteJSON(req); err != nil {
					return err
				}
			}

		case protocol.TypeFrameBatch:
			var m protocol.FrameBatchMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			if err := f.batch(m); err != nil {
				return err
			}
		}
	}
}

func (f *Follower) frame(st protocol.FrameStats) (*protocol.FrameBatchReqMsg, error) {
	if f.waiting != "" {
		f.pending = append(f.pending, st)
		return nil, nil
	}
	if f.seen && st.Frame > f.last+1 {
		f.waiting = uuid.NewString()
		f.pending = append(f.pending[:0], st)
		if f.Logger != nil {
			f.Logger.Printf("gap after frame %d, requesting up to %d", f.last, st.Frame)
		}
		return &protocol.FrameBatchReqMsg{
			Type:            protocol.TypeFrameBatchReq,
			ProtocolVersion: protocol.Version,
			ReqID:           f.waiting,
			SinceFrame:      f.last,
			Limit:           st.Frame - f.last,
		}, nil
	}
	return nil, f.deliver(st)
}

func (f *Follower) batch(m protocol.FrameBatchMsg) error {
	if m.ReqID != f.waiting {
		return nil
	}
	f.waiting = ""
	for _, st := range m.Frames {
		if err := f.deliver(st); err != nil {
			return err
		}
	}
	for _, st := range f.pending {
		if err := f.deliver(st); err != nil {
			return err
		}
	}
	f.pending = f.pending[:0]
	return nil
}

func (f *Follower) deliver(st protocol.FrameStats) error {
	if f.seen && st.Frame <= f.last {
		return nil
	}
	f.seen, f.last = true, st.Frame
	if f.OnFrame == nil {
		return nil
	}
	return f.OnFrame(st)
}
