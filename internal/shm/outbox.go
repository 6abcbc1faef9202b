package shm

import "broodlink/internal/catalog"

type UnitCommand struct {
	Type   catalog.UnitCommandType `json:"type"`
	Unit   int                     `json:"unit"`
	Target int                     `json:"target"`
	X      int                     `json:"x"`
	Y      int                     `json:"y"`
	Extra  int                     `json:"extra"`
}

// GameCommand carries two scalar arguments. String arguments are stored in
// the string buffer and referenced by index in Value1.
type GameCommand struct {
	Type   catalog.CommandType `json:"type"`
	Value1 int                 `json:"v1"`
	Value2 int                 `json:"v2"`
}

type Shape struct {
	Type   catalog.ShapeType      `json:"type"`
	Coords catalog.CoordinateType `json:"coords"`
	X1     int                    `json:"x1"`
	Y1     int                    `json:"y1"`
	X2     int                    `json:"x2"`
	Y2     int                    `json:"y2"`
	Extra1 int                    `json:"e1"`
	Extra2 int                    `json:"e2"`
	Color  int                    `json:"color"`
	Solid  bool                   `json:"solid"`
}

// Outbox is the append-only side of the segment the client writes to.
type Outbox interface {
	AddUnitCommand(c UnitCommand) error
	AddGameCommand(c GameCommand) error
	AddShape(sh Shape) error
	// AddString stores s and returns its index for use in a command or shape.
	AddString(s string) (int, error)
	Room() Room
}

// Room counts the free slots left in each outbound buffer. Records that
// span two buffers check it before writing either.
type Room struct {
	UnitCommands int
	GameCommands int
	Shapes       int
	Strings      int
}

var _ Outbox = (*Segment)(nil)

func (s *Segment) UnitCommandCount() int { return int(s.i32(hdrUnitCommandCount)) }
func (s *Segment) GameCommandCount() int { return int(s.i32(hdrGameCommandCount)) }
func (s *Segment) ShapeCount() int       { return int(s.i32(hdrShapeCount)) }
func (s *Segment) StringCount() int      { return int(s.i32(hdrStringCount)) }

func (s *Segment) Room() Room {
	return Room{
		UnitCommands: max(MaxUnitCommands-s.UnitCommandCount(), 0),
		GameCommands: max(MaxGameCommands-s.GameCommandCount(), 0),
		Shapes:       max(MaxShapes-s.ShapeCount(), 0),
		Strings:      max(MaxStrings-s.StringCount(), 0),
	}
}

// AddUnitCommand writes the record before bumping the count so a reader never
// observes a half-written command.
func (s *Segment) AddUnitCommand(c UnitCommand) error {
	n := s.UnitCommandCount()
	if n >= MaxUnitCommands {
		return ErrOutboxFull
	}
	off := offUnitCommands + n*unitCommandStride
	s.putI32(off, int32(c.Type))
	s.putI32(off+4, int32(c.Unit))
	s.putI32(off+8, int32(c.Target))
	s.putI32(off+12, int32(c.X))
	s.putI32(off+16, int32(c.Y))
	s.putI32(off+20, int32(c.Extra))
	s.putI32(hdrUnitCommandCount, int32(n+1))
	return nil
}

func (s *Segment) AddGameCommand(c GameCommand) error {
	n := s.GameCommandCount()
	if n >= MaxGameCommands {
		return ErrOutboxFull
	}
	off := offGameCommands + n*gameCommandStride
	s.putI32(off, int32(c.Type))
	s.putI32(off+4, int32(c.Value1))
	s.putI32(off+8, int32(c.Value2))
	s.putI32(hdrGameCommandCount, int32(n+1))
	return nil
}

func (s *Segment) AddShape(sh Shape) error {
	n := s.ShapeCount()
	if n >= MaxShapes {
		return ErrOutboxFull
	}
	off := offShapes + n*shapeStride
	for i, v := range [...]int{int(sh.Type), int(sh.Coords), sh.X1, sh.Y1, sh.X2, sh.Y2, sh.Extra1, sh.Extra2, sh.Color} {
		s.putI32(off+4*i, int32(v))
	}
	s.putI32(off+36, b2i(sh.Solid))
	s.putI32(hdrShapeCount, int32(n+1))
	return nil
}

func (s *Segment) AddString(v string) (int, error) {
	n := s.StringCount()
	if n >= MaxStrings {
		return -1, ErrOutboxFull
	}
	s.putStr(offStrings+n*StringWidth, StringWidth, v)
	s.putI32(hdrStringCount, int32(n+1))
	return n, nil
}

func (s *Segment) UnitCommands() []UnitCommand {
	out := make([]UnitCommand, min(s.UnitCommandCount(), MaxUnitCommands))
	for i := range out {
		off := offUnitCommands + i*unitCommandStride
		out[i] = UnitCommand{
			Type:   catalog.UnitCommandType(s.i32(off)),
			Unit:   int(s.i32(off + 4)),
			Target: int(s.i32(off + 8)),
			X:      int(s.i32(off + 12)),
			Y:      int(s.i32(off + 16)),
			Extra:  int(s.i32(off + 20)),
		}
	}
	return out
}

func (s *Segment) GameCommands() []GameCommand {
	out := make([]GameCommand, min(s.GameCommandCount(), MaxGameCommands))
	for i := range out {
		off := offGameCommands + i*gameCommandStride
		out[i] = GameCommand{
			Type:   catalog.CommandType(s.i32(off)),
			Value1: int(s.i32(off + 4)),
			Value2: int(s.i32(off + 8)),
		}
	}
	return out
}

func (s *Segment) Shapes() []Shape {
	out := make([]Shape, min(s.ShapeCount(), MaxShapes))
	for i := range out {
		off := offShapes + i*shapeStride
		v := func(k int) int { return int(s.i32(off + 4*k)) }
		out[i] = Shape{
			Type:   catalog.ShapeType(v(0)),
			Coords: catalog.CoordinateType(v(1)),
			X1:     v(2),
			Y1:     v(3),
			X2:     v(4),
			Y2:     v(5),
			Extra1: v(6),
			Extra2: v(7),
			Color:  v(8),
			Solid:  v(9) != 0,
		}
	}
	return out
}

// Text returns the i-th outbound string.
func (s *Segment) Text(i int) (string, bool) {
	if i < 0 || i >= s.StringCount() || i >= MaxStrings {
		return "", false
	}
	return s.str(offStrings+i*StringWidth, StringWidth), true
}

// ClearOutbound resets every outbound count. The engine does this after it
// consumes a step's commands; offline drivers do it themselves.
func (s *Segment) ClearOutbound() {
	for _, off := range []int{hdrUnitCommandCount, hdrGameCommandCount, hdrShapeCount, hdrStringCount} {
		s.putI32(off, 0)
	}
}
