package client

import (
	"broodlink/internal/catalog"
	"broodlink/internal/legality"
	"broodlink/internal/shm"
	"broodlink/internal/state"
)

// Unit is a bot-side handle. Getters read the prediction while its window is
// open and the segment otherwise. The zero Unit is no unit: its ID is
// shm.NoUnit, its getters return zero values and it issues nothing.
type Unit struct {
	g  *Game
	id int
}

// Unit returns a handle for id, or ok == false when id is outside the unit
// table. A valid handle may still refer to a unit that does not exist.
func (g *Game) Unit(id int) (Unit, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.world.Unit(id); !ok {
		return Unit{}, false
	}
	return Unit{g: g, id: id}, true
}

// Units returns handles for every existing unit owned by player, or for all
// existing units when player is negative.
func (g *Game) Units(player int) []Unit {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Unit
	g.world.Units(func(u state.Unit) bool {
		if player < 0 || u.Player() == player {
			out = append(out, Unit{g: g, id: u.ID()})
		}
		return true
	})
	return out
}

// MyUnits returns the controlled player's units.
func (g *Game) MyUnits() []Unit { return g.Units(g.segSelf()) }

func (g *Game) segSelf() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seg.Self()
}

func get[T any](u Unit, fn func(state.Unit) T) T {
	if u.g == nil {
		var zero T
		return zero
	}
	u.g.mu.Lock()
	defer u.g.mu.Unlock()
	su, _ := u.g.world.Unit(u.id)
	return fn(su)
}

func (u Unit) ID() int {
	if u.g == nil {
		return shm.NoUnit
	}
	return u.id
}

func (u Unit) Exists() bool                { return get(u, state.Unit.Exists) }
func (u Unit) Player() int                 { return get(u, state.Unit.Player) }
func (u Unit) Type() catalog.UnitType      { return get(u, state.Unit.Type) }
func (u Unit) Order() catalog.Order        { return get(u, state.Unit.Order) }
func (u Unit) OrderTarget() int            { return get(u, state.Unit.OrderTarget) }
func (u Unit) BuildType() catalog.UnitType { return get(u, state.Unit.BuildType) }

// CurrentTech and CurrentUpgrade are what the unit is researching or
// upgrading, if anything.
func (u Unit) CurrentTech() catalog.TechType { return get(u, state.Unit.Tech) }
func (u Unit) CurrentUpgrade() catalog.UpgradeType {
	return get(u, state.Unit.Upgrade)
}

func (u Unit) TrainingQueue() []catalog.UnitType { return get(u, state.Unit.TrainingQueue) }
func (u Unit) Energy() int                       { return get(u, state.Unit.Energy) }
func (u Unit) HitPoints() int                    { return get(u, state.Unit.HitPoints) }
func (u Unit) RemainingBuildTime() int           { return get(u, state.Unit.RemainingBuildTime) }
func (u Unit) RemainingTrainTime() int           { return get(u, state.Unit.RemainingTrainTime) }
func (u Unit) RallyUnit() int                    { return get(u, state.Unit.RallyUnit) }

func (u Unit) Position() (x, y int) {
	p := get(u, func(s state.Unit) [2]int { x, y := s.Position(); return [2]int{x, y} })
	return p[0], p[1]
}

func (u Unit) TargetPosition() (x, y int) {
	p := get(u, func(s state.Unit) [2]int { x, y := s.TargetPosition(); return [2]int{x, y} })
	return p[0], p[1]
}

func (u Unit) RallyPosition() (x, y int) {
	p := get(u, func(s state.Unit) [2]int { x, y := s.RallyPosition(); return [2]int{x, y} })
	return p[0], p[1]
}

func (u Unit) IsIdle() bool         { return get(u, state.Unit.IsIdle) }
func (u Unit) IsMoving() bool       { return get(u, state.Unit.IsMoving) }
func (u Unit) IsAttacking() bool    { return get(u, state.Unit.IsAttacking) }
func (u Unit) IsGathering() bool    { return get(u, state.Unit.IsGathering) }
func (u Unit) IsConstructing() bool { return get(u, state.Unit.IsConstructing) }
func (u Unit) IsMorphing() bool     { return get(u, state.Unit.IsMorphing) }
func (u Unit) IsTraining() bool     { return get(u, state.Unit.IsTraining) }
func (u Unit) IsResearching() bool  { return get(u, state.Unit.IsResearching) }
func (u Unit) IsUpgrading() bool    { return get(u, state.Unit.IsUpgrading) }
func (u Unit) IsBurrowed() bool     { return get(u, state.Unit.IsBurrowed) }
func (u Unit) IsCloaked() bool      { return get(u, state.Unit.IsCloaked) }
func (u Unit) IsSieged() bool       { return get(u, state.Unit.IsSieged) }
func (u Unit) IsLifted() bool       { return get(u, state.Unit.IsLifted) }
func (u Unit) IsCompleted() bool    { return get(u, state.Unit.IsCompleted) }

func (u Unit) LoadedUnits() []int  { return get(u, state.Unit.LoadedUnits) }
func (u Unit) Interceptors() []int { return get(u, state.Unit.Interceptors) }
func (u Unit) Larva() []int        { return get(u, state.Unit.Larva) }

// CanIssue is the parameterless legality check for kind k.
func (u Unit) CanIssue(k legality.Kind) bool {
	return u.g != nil && u.g.CanIssue(u.id, k)
}

func (u Unit) issue(k legality.Kind, target, x, y, extra int) bool {
	if u.g == nil {
		return false
	}
	return u.g.Issue(Command{Kind: k, Unit: u.id, Target: target, X: x, Y: y, Extra: extra})
}

func (u Unit) Move(x, y int) bool       { return u.issue(catalog.CmdMove, -1, x, y, 0) }
func (u Unit) AttackMove(x, y int) bool { return u.issue(catalog.CmdAttackMove, -1, x, y, 0) }
func (u Unit) Patrol(x, y int) bool     { return u.issue(catalog.CmdPatrol, -1, x, y, 0) }
func (u Unit) Attack(target Unit) bool  { return u.issue(catalog.CmdAttackUnit, target.ID(), 0, 0, 0) }
func (u Unit) Follow(target Unit) bool  { return u.issue(catalog.CmdFollow, target.ID(), 0, 0, 0) }
func (u Unit) Gather(target Unit) bool  { return u.issue(catalog.CmdGather, target.ID(), 0, 0, 0) }
func (u Unit) Repair(target Unit) bool  { return u.issue(catalog.CmdRepair, target.ID(), 0, 0, 0) }
func (u Unit) Load(target Unit) bool    { return u.issue(catalog.CmdLoad, target.ID(), 0, 0, 0) }

func (u Unit) RightClick(target Unit) bool {
	return u.issue(catalog.CmdRightClickUnit, target.ID(), 0, 0, 0)
}

func (u Unit) ReturnCargo() bool  { return u.issue(catalog.CmdReturnCargo, -1, 0, 0, 0) }
func (u Unit) Stop() bool         { return u.issue(catalog.CmdStop, -1, 0, 0, 0) }
func (u Unit) HoldPosition() bool { return u.issue(catalog.CmdHoldPosition, -1, 0, 0, 0) }
func (u Unit) Burrow() bool       { return u.issue(catalog.CmdBurrow, -1, 0, 0, 0) }
func (u Unit) Unburrow() bool     { return u.issue(catalog.CmdUnburrow, -1, 0, 0, 0) }
func (u Unit) Siege() bool        { return u.issue(catalog.CmdSiege, -1, 0, 0, 0) }
func (u Unit) Unsiege() bool      { return u.issue(catalog.CmdUnsiege, -1, 0, 0, 0) }
func (u Unit) Lift() bool         { return u.issue(catalog.CmdLift, -1, 0, 0, 0) }
func (u Unit) UnloadAll() bool    { return u.issue(catalog.CmdUnloadAll, -1, 0, 0, 0) }

// Build places building t with its top-left tile at (tx, ty).
func (u Unit) Build(t catalog.UnitType, tx, ty int) bool {
	return u.issue(catalog.CmdBuild, -1, tx, ty, int(t))
}

func (u Unit) BuildAddon(t catalog.UnitType) bool {
	return u.issue(catalog.CmdBuildAddon, -1, 0, 0, int(t))
}

// Train queues t. On a hatchery, lair or hive it morphs one of its larva.
func (u Unit) Train(t catalog.UnitType) bool { return u.issue(catalog.CmdTrain, -1, 0, 0, int(t)) }
func (u Unit) Morph(t catalog.UnitType) bool { return u.issue(catalog.CmdMorph, -1, 0, 0, int(t)) }

func (u Unit) Research(t catalog.TechType) bool {
	return u.issue(catalog.CmdResearch, -1, 0, 0, int(t))
}

func (u Unit) Upgrade(t catalog.UpgradeType) bool {
	return u.issue(catalog.CmdUpgrade, -1, 0, 0, int(t))
}

func (u Unit) SetRallyPoint(x, y int) bool { return u.issue(catalog.CmdSetRallyPosition, -1, x, y, 0) }
func (u Unit) CancelTrain() bool          { return u.issue(catalog.CmdCancelTrain, -1, 0, 0, 0) }
func (u Unit) CancelMorph() bool          { return u.issue(catalog.CmdCancelMorph, -1, 0, 0, 0) }

func (u Unit) UseTech(t catalog.TechType) bool {
	return u.issue(catalog.CmdUseTech, -1, 0, 0, int(t))
}

func (u Unit) UseTechOn(t catalog.TechType, target Unit) bool {
	return u.issue(catalog.CmdUseTechUnit, target.ID(), 0, 0, int(t))
}

func (u Unit) UseTechAt(t catalog.TechType, x, y int) bool {
	return u.issue(catalog.CmdUseTechPosition, -1, x, y, int(t))
}
