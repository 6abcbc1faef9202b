package legality

import (
	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/state"
)

// Rules that differ when a unit receives an order as part of a set.

func incapable(*Engine, state.Unit) string { return protocol.ErrIncapable }

func (e *Engine) canAttackMoveGrouped(u state.Unit) string {
	if u.Def().CanMove() {
		return ""
	}
	switch u.Type() {
	case catalog.TerranSiegeTankSiegeMode, catalog.ZergCocoon, catalog.ZergLurkerEgg:
		return ""
	}
	return protocol.ErrIncapable
}

func (e *Engine) canAttackUnitGrouped(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if !u.Def().CanMove() && u.Type() != catalog.TerranSiegeTankSiegeMode {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() {
		return protocol.ErrIncompatibleState
	}
	if u.Type() == catalog.ZergLurker {
		if !u.IsBurrowed() {
			return protocol.ErrUnableToHit
		}
	} else if u.IsBurrowed() {
		return protocol.ErrUnableToHit
	}
	if u.Order() == catalog.OrderConstructingBuilding {
		return protocol.ErrUnitBusy
	}
	return ""
}

func (e *Engine) attackUnitGroupedWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if t.Def().IsInvincible() {
		return protocol.ErrUnableToHit
	}
	if u.Type() == catalog.ZergLurker && !e.inWeaponRange(u, t) {
		return protocol.ErrOutOfRange
	}
	if t.ID() == u.ID() {
		return protocol.ErrBadParameter
	}
	return ""
}

func (e *Engine) canMoveGrouped(u state.Unit) string {
	if !u.Def().CanMove() {
		return protocol.ErrIncapable
	}
	if !u.IsCompleted() && !u.IsMorphing() {
		return protocol.ErrIncompatibleState
	}
	return ""
}

func (e *Engine) canRightClickPositionGrouped(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	return e.canMoveGrouped(u)
}

func (e *Engine) canRightClickUnitGrouped(u state.Unit) string {
	if !u.IsInterruptible() {
		return protocol.ErrUnitBusy
	}
	if e.canMoveGrouped(u) != "" && e.canAttackUnitGrouped(u) != "" && e.canLoad(u) != "" {
		return protocol.ErrIncapable
	}
	return ""
}

func (e *Engine) rightClickUnitGroupedWith(u state.Unit, c *Command) string {
	t, r := e.target(c)
	if r != "" {
		return r
	}
	if p, ok := e.selfPlayer(); ok && t.Player() >= 0 && p.IsEnemy(t.Player()) {
		if r := e.canAttackUnitGrouped(u); r != "" {
			return r
		}
		return e.attackUnitGroupedWith(u, c)
	}
	if e.canMoveGrouped(u) == "" && t.ID() != u.ID() {
		return ""
	}
	if e.canLoad(u) == "" && e.loadWith(u, c) == "" {
		return ""
	}
	return protocol.ErrIncapable
}
