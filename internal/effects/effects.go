// Package effects buffers outgoing commands and drawing until the frame
// driver applies them to the segment, once per step.
package effects

import (
	"fmt"

	"broodlink/internal/catalog"
	"broodlink/internal/shm"
)

// Effect is an immutable outgoing intent that knows how to write itself.
type Effect interface {
	Apply(out shm.Outbox) error
}

type UnitCommand struct {
	Cmd shm.UnitCommand
}

func (e UnitCommand) Apply(out shm.Outbox) error {
	if err := out.AddUnitCommand(e.Cmd); err != nil {
		return fmt.Errorf("unit command %s for %d: %w", e.Cmd.Type, e.Cmd.Unit, err)
	}
	return nil
}

type GameCommand struct {
	Cmd shm.GameCommand
}

func (e GameCommand) Apply(out shm.Outbox) error {
	if err := out.AddGameCommand(e.Cmd); err != nil {
		return fmt.Errorf("game command %d: %w", e.Cmd.Type, err)
	}
	return nil
}

// StringCommand is a game command whose first argument is text, such as
// SendText, Printf or SetMap. The text goes to the string buffer and the
// command carries its index.
type StringCommand struct {
	Type   catalog.CommandType
	Text   string
	Value2 int
}

func (e StringCommand) Apply(out shm.Outbox) error {
	if r := out.Room(); r.Strings == 0 || r.GameCommands == 0 {
		return fmt.Errorf("game command %d: %w", e.Type, shm.ErrOutboxFull)
	}
	idx, err := out.AddString(e.Text)
	if err != nil {
		return fmt.Errorf("game command %d text: %w", e.Type, err)
	}
	if err := out.AddGameCommand(shm.GameCommand{Type: e.Type, Value1: idx, Value2: e.Value2}); err != nil {
		return fmt.Errorf("game command %d: %w", e.Type, err)
	}
	return nil
}

type Shape struct {
	Shape shm.Shape
}

func (e Shape) Apply(out shm.Outbox) error {
	if err := out.AddShape(e.Shape); err != nil {
		return fmt.Errorf("shape %d: %w", e.Shape.Type, err)
	}
	return nil
}

// Text draws a string. The shape's Extra1 is replaced by the string index.
type Text struct {
	Shape shm.Shape
	Text  string
}

func (e Text) Apply(out shm.Outbox) error {
	if r := out.Room(); r.Strings == 0 || r.Shapes == 0 {
		return fmt.Errorf("text shape: %w", shm.ErrOutboxFull)
	}
	idx, err := out.AddString(e.Text)
	if err != nil {
		return fmt.Errorf("text shape: %w", err)
	}
	sh := e.Shape
	sh.Type = catalog.ShapeText
	sh.Extra1 = idx
	if err := out.AddShape(sh); err != nil {
		return fmt.Errorf("text shape: %w", err)
	}
	return nil
}
