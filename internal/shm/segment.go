// Package shm exposes typed accessors over one frame's shared state segment.
//
// The engine is the only writer of the inbound sections (header, players,
// units, terrain). The client is the only writer of the outbound buffers.
package shm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrBadMagic     = errors.New("shm: bad segment magic")
	ErrShortSegment = errors.New("shm: segment too short")
	ErrOutboxFull   = errors.New("shm: outbound buffer full")
	ErrBadHeader    = errors.New("shm: header count out of range")
)

var le = binary.LittleEndian

type Segment struct {
	b []byte
}

// New allocates a zeroed segment with a valid header and every unit slot empty.
func New() *Segment {
	s := &Segment{b: make([]byte, Size)}
	le.PutUint32(s.b[hdrMagic:], Magic)
	le.PutUint32(s.b[hdrVersion:], Version)
	s.putI32(hdrSelf, NoPlayer)
	return s
}

// Wrap uses b as the backing store without copying.
func Wrap(b []byte) (*Segment, error) {
	if len(b) < Size {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortSegment, len(b), Size)
	}
	if le.Uint32(b[hdrMagic:]) != Magic {
		return nil, ErrBadMagic
	}
	if v := le.Uint32(b[hdrVersion:]); v != Version {
		return nil, fmt.Errorf("shm: unsupported segment version %d", v)
	}
	s := &Segment{b: b}
	if err := s.checkCounts(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkCounts rejects header counts that would index past their tables.
func (s *Segment) checkCounts() error {
	for _, c := range [...]struct {
		name  string
		off   int
		limit int
	}{
		{"players", hdrPlayerCount, MaxPlayers},
		{"map width", hdrMapWidth, MaxMapTiles},
		{"map height", hdrMapHeight, MaxMapTiles},
		{"units", hdrUnitCount, MaxUnits},
		{"regions", hdrRegionCount, MaxRegions},
		{"splits", hdrSplitCount, MaxSplitTiles},
		{"unit commands", hdrUnitCommandCount, MaxUnitCommands},
		{"game commands", hdrGameCommandCount, MaxGameCommands},
		{"shapes", hdrShapeCount, MaxShapes},
		{"strings", hdrStringCount, MaxStrings},
	} {
		if n := int(s.i32(c.off)); n < 0 || n > c.limit {
			return fmt.Errorf("%w: %s=%d", ErrBadHeader, c.name, n)
		}
	}
	return nil
}

func (s *Segment) Bytes() []byte { return s.b }

func (s *Segment) i32(off int) int32        { return int32(le.Uint32(s.b[off:])) }
func (s *Segment) putI32(off int, v int32)  { le.PutUint32(s.b[off:], uint32(v)) }
func (s *Segment) u16(off int) uint16       { return le.Uint16(s.b[off:]) }
func (s *Segment) putU16(off int, v uint16) { le.PutUint16(s.b[off:], v) }

func (s *Segment) flag(off int) bool { return s.b[off] != 0 }

func (s *Segment) putFlag(off int, v bool) {
	if v {
		s.b[off] = 1
	} else {
		s.b[off] = 0
	}
}

func (s *Segment) str(off, width int) string {
	raw := s.b[off : off+width]
	for i, c := range raw {
		if c == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// putStr writes v null-padded, truncating so at least one terminator fits.
func (s *Segment) putStr(off, width int, v string) {
	raw := s.b[off : off+width]
	n := copy(raw[:width-1], v)
	clear(raw[n:])
}

func (s *Segment) Frame() int             { return int(s.i32(hdrFrame)) }
func (s *Segment) SetFrame(f int)         { s.putI32(hdrFrame, int32(f)) }
func (s *Segment) LatencyFrames() int     { return int(s.i32(hdrLatencyFrames)) }
func (s *Segment) SetLatencyFrames(n int) { s.putI32(hdrLatencyFrames, int32(n)) }

// Self returns the id of the player this client controls, or NoPlayer.
func (s *Segment) Self() int            { return int(s.i32(hdrSelf)) }
func (s *Segment) SetSelf(id int)       { s.putI32(hdrSelf, int32(id)) }
func (s *Segment) PlayerCount() int     { return int(s.i32(hdrPlayerCount)) }
func (s *Segment) SetPlayerCount(n int) { s.putI32(hdrPlayerCount, int32(n)) }

func (s *Segment) MapWidth() int  { return int(s.i32(hdrMapWidth)) }
func (s *Segment) MapHeight() int { return int(s.i32(hdrMapHeight)) }

func (s *Segment) SetMapSize(w, h int) {
	s.putI32(hdrMapWidth, int32(min(w, MaxMapTiles)))
	s.putI32(hdrMapHeight, int32(min(h, MaxMapTiles)))
}

// UnitCount is the high-water mark of used unit slots.
func (s *Segment) UnitCount() int     { return int(s.i32(hdrUnitCount)) }
func (s *Segment) SetUnitCount(n int) { s.putI32(hdrUnitCount, int32(min(n, MaxUnits))) }

func (s *Segment) RegionCount() int     { return int(s.i32(hdrRegionCount)) }
func (s *Segment) SetRegionCount(n int) { s.putI32(hdrRegionCount, int32(min(n, MaxRegions))) }

func (s *Segment) SplitCount() int     { return int(s.i32(hdrSplitCount)) }
func (s *Segment) SetSplitCount(n int) { s.putI32(hdrSplitCount, int32(min(n, MaxSplitTiles))) }

func (s *Segment) LatCom() bool      { return s.i32(hdrLatCom) != 0 }
func (s *Segment) SetLatCom(on bool) { s.putI32(hdrLatCom, b2i(on)) }
func (s *Segment) InGame() bool      { return s.i32(hdrInGame) != 0 }
func (s *Segment) SetInGame(on bool) { s.putI32(hdrInGame, b2i(on)) }
func (s *Segment) Paused() bool      { return s.i32(hdrPaused) != 0 }
func (s *Segment) SetPaused(on bool) { s.putI32(hdrPaused, b2i(on)) }

func b2i(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
