package client

import (
	"fmt"

	"broodlink/internal/catalog"
	"broodlink/internal/effects"
	"broodlink/internal/shm"
)

func (g *Game) game(t catalog.CommandType, v1, v2 int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emit(effects.GameCommand{Cmd: shm.GameCommand{Type: t, Value1: v1, Value2: v2}})
}

func (g *Game) text(t catalog.CommandType, s string, v2 int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emit(effects.StringCommand{Type: t, Text: s, Value2: v2})
}

// SendText sends a chat message to the other players. toAllies limits it to
// allied players.
func (g *Game) SendText(toAllies bool, format string, args ...any) error {
	return g.text(catalog.CommandSendText, fmt.Sprintf(format, args...), b2i(toAllies))
}

// Printf prints to the local screen only.
func (g *Game) Printf(format string, args ...any) error {
	return g.text(catalog.CommandPrintf, fmt.Sprintf(format, args...), 0)
}

func (g *Game) PauseGame() error  { return g.game(catalog.CommandPauseGame, 0, 0) }
func (g *Game) ResumeGame() error { return g.game(catalog.CommandResumeGame, 0, 0) }
func (g *Game) LeaveGame() error  { return g.game(catalog.CommandLeaveGame, 0, 0) }

// SetLocalSpeed sets the frame delay in milliseconds. Negative restores the
// default.
func (g *Game) SetLocalSpeed(ms int) error { return g.game(catalog.CommandSetLocalSpeed, ms, 0) }

func (g *Game) SetFrameSkip(n int) error {
	if n < 1 {
		return fmt.Errorf("client: frame skip must be at least 1, got %d", n)
	}
	return g.game(catalog.CommandSetFrameSkip, n, 0)
}

// PingMinimap pings a map position in pixels.
func (g *Game) PingMinimap(x, y int) error { return g.game(catalog.CommandPingMinimap, x, y) }

// SetLatCom asks the engine to toggle its own latency compensation and
// mirrors the setting locally.
func (g *Game) SetLatCom(on bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.spec.SetEnabled(on)
	return g.emit(effects.GameCommand{Cmd: shm.GameCommand{Type: catalog.CommandSetLatCom, Value1: b2i(on)}})
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

func (g *Game) shape(sh shm.Shape) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emit(effects.Shape{Shape: sh})
}

func (g *Game) DrawText(c catalog.CoordinateType, x, y int, format string, args ...any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emit(effects.Text{
		Shape: shm.Shape{Coords: c, X1: x, Y1: y},
		Text:  fmt.Sprintf(format, args...),
	})
}

func (g *Game) DrawBox(c catalog.CoordinateType, left, top, right, bottom, color int, solid bool) error {
	return g.shape(shm.Shape{Type: catalog.ShapeBox, Coords: c, X1: left, Y1: top, X2: right, Y2: bottom, Color: color, Solid: solid})
}

func (g *Game) DrawTriangle(c catalog.CoordinateType, ax, ay, bx, by, cx, cy, color int, solid bool) error {
	return g.shape(shm.Shape{Type: catalog.ShapeTriangle, Coords: c, X1: ax, Y1: ay, X2: bx, Y2: by, Extra1: cx, Extra2: cy, Color: color, Solid: solid})
}

func (g *Game) DrawCircle(c catalog.CoordinateType, x, y, radius, color int, solid bool) error {
	return g.shape(shm.Shape{Type: catalog.ShapeCircle, Coords: c, X1: x, Y1: y, Extra1: radius, Color: color, Solid: solid})
}

func (g *Game) DrawEllipse(c catalog.CoordinateType, x, y, xrad, yrad, color int, solid bool) error {
	return g.shape(shm.Shape{Type: catalog.ShapeEllipse, Coords: c, X1: x, Y1: y, Extra1: xrad, Extra2: yrad, Color: color, Solid: solid})
}

func (g *Game) DrawDot(c catalog.CoordinateType, x, y, color int) error {
	return g.shape(shm.Shape{Type: catalog.ShapeDot, Coords: c, X1: x, Y1: y, Color: color})
}

func (g *Game) DrawLine(c catalog.CoordinateType, x1, y1, x2, y2, color int) error {
	return g.shape(shm.Shape{Type: catalog.ShapeLine, Coords: c, X1: x1, Y1: y1, X2: x2, Y2: y2, Color: color})
}

// Map-coordinate shorthands.
func (g *Game) DrawBoxMap(left, top, right, bottom, color int, solid bool) error {
	return g.DrawBox(catalog.CoordinateMap, left, top, right, bottom, color, solid)
}

func (g *Game) DrawLineMap(x1, y1, x2, y2, color int) error {
	return g.DrawLine(catalog.CoordinateMap, x1, y1, x2, y2, color)
}

func (g *Game) DrawTextScreen(x, y int, format string, args ...any) error {
	return g.DrawText(catalog.CoordinateScreen, x, y, format, args...)
}
