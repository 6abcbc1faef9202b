// Package legality decides locally whether a unit command would be accepted,
// without consulting the engine. Every check is a pure read of a state.World.
package legality

import (
	"fmt"

	"broodlink/internal/catalog"
	"broodlink/internal/protocol"
	"broodlink/internal/shm"
	"broodlink/internal/state"
)

type Kind = catalog.UnitCommandType

const NumKinds = int(catalog.NumUnitCommandTypes)

// Command is one order addressed to a single unit. Extra carries the unit,
// tech or upgrade type for kinds that need one, or the slot for
// CancelTrainSlot. X and Y are pixels, or tiles for Build, Land and PlaceCOP.
type Command struct {
	Kind   Kind `json:"kind"`
	Unit   int  `json:"unit"`
	Target int  `json:"target"`
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Extra  int  `json:"extra"`
}

// Record converts the command to its outbound wire form.
func (c Command) Record() shm.UnitCommand {
	return shm.UnitCommand{Type: c.Kind, Unit: c.Unit, Target: c.Target, X: c.X, Y: c.Y, Extra: c.Extra}
}

type Stage int

const (
	StageNone Stage = iota
	StageCommandable
	StageKind
	StageTarget
	StageParams
)

var stageNames = [...]string{"none", "commandable", "kind", "target", "params"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Verdict names the first stage that rejected a command and its reason code.
// The zero value accepts.
type Verdict struct {
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason,omitempty"`
}

func (v Verdict) OK() bool { return v.Reason == "" }

func (v Verdict) String() string {
	if v.OK() {
		return "ok"
	}
	return v.Stage.String() + ":" + v.Reason
}

func reject(s Stage, reason string) Verdict {
	if reason == "" {
		return Verdict{}
	}
	return Verdict{Stage: s, Reason: reason}
}

// Options lets a caller skip stages it has already verified. Skipping is an
// optimization only; it never makes a rejected command legal.
type Options struct {
	SkipCommandability bool
	SkipTargetability  bool
	SkipKind           bool
}

// Prerequisites answers whether the current player could make a unit type,
// optionally from a specific builder.
type Prerequisites interface {
	CanMake(w *state.World, builder *state.Unit, t catalog.UnitType) string
}

// Sites answers build-site questions. tx and ty are tiles.
type Sites interface {
	CanBuildHere(w *state.World, builder *state.Unit, t catalog.UnitType, tx, ty int, checkExplored bool) string
}

type Engine struct {
	w      *state.World
	prereq Prerequisites
	sites  Sites
}

// New fails when either validator table is incomplete.
func New(w *state.World, prereq Prerequisites, sites Sites) (*Engine, error) {
	if err := validateTables(); err != nil {
		return nil, err
	}
	if w == nil || prereq == nil || sites == nil {
		return nil, fmt.Errorf("legality: world, prerequisites and sites are required")
	}
	return &Engine{w: w, prereq: prereq, sites: sites}, nil
}

func (e *Engine) World() *state.World { return e.w }

func (e *Engine) unit(id int) (state.Unit, string) {
	u, ok := e.w.Unit(id)
	if !ok || !u.Exists() {
		return state.Unit{}, protocol.ErrUnitNotExist
	}
	if u.Def() == nil {
		return state.Unit{}, protocol.ErrIncompatibleType
	}
	return u, ""
}

// Commandable reports whether the unit can receive any individual command.
func (e *Engine) Commandable(id int) Verdict {
	u, r := e.unit(id)
	if r != "" {
		return reject(StageCommandable, r)
	}
	return reject(StageCommandable, e.commandable(u))
}

// CommandableGrouped is Commandable plus the restrictions on unit sets.
func (e *Engine) CommandableGrouped(id int) Verdict {
	u, r := e.unit(id)
	if r != "" {
		return reject(StageCommandable, r)
	}
	return reject(StageCommandable, e.commandableGrouped(u))
}

// Targetable reports whether the unit can be the target of a command.
func (e *Engine) Targetable(id int) Verdict {
	u, r := e.unit(id)
	if r != "" {
		return reject(StageTarget, r)
	}
	return reject(StageTarget, e.targetable(u))
}

// CanIssueKind is the parameterless check: could the unit issue some command
// of this kind at all.
func (e *Engine) CanIssueKind(id int, k Kind, opts Options) Verdict {
	return e.canIssueKind(id, k, opts, &individual, e.commandable)
}

func (e *Engine) CanIssueKindGrouped(id int, k Kind, opts Options) Verdict {
	return e.canIssueKind(id, k, opts, &grouped, e.commandableGrouped)
}

func (e *Engine) canIssueKind(id int, k Kind, opts Options, table *[NumKinds]rule, commandable func(state.Unit) string) Verdict {
	if !k.Valid() {
		return reject(StageKind, protocol.ErrBadParameter)
	}
	u, r := e.unit(id)
	if r != "" {
		return reject(StageCommandable, r)
	}
	if !opts.SkipCommandability {
		if r := commandable(u); r != "" {
			return reject(StageCommandable, r)
		}
	}
	return reject(StageKind, table[k].can(e, u))
}

// Check runs the full individual check for cmd.
func (e *Engine) Check(cmd Command, opts Options) Verdict {
	_, v := e.Resolve(cmd, opts)
	return v
}

// CheckGrouped runs the full check for cmd as issued to a unit set.
func (e *Engine) CheckGrouped(cmd Command, opts Options) Verdict {
	_, v := e.run(cmd, opts, &grouped, e.commandableGrouped)
	return v
}

// Resolve is Check that also returns the command as it should be issued. A
// Train or Morph addressed to a larva producer comes back retargeted to one
// of its larva.
func (e *Engine) Resolve(cmd Command, opts Options) (Command, Verdict) {
	return e.run(cmd, opts, &individual, e.commandable)
}

// CheckSet reports whether at least one unit in ids would accept cmd as part
// of a group order.
func (e *Engine) CheckSet(ids []int, cmd Command) bool {
	for _, id := range ids {
		c := cmd
		c.Unit = id
		if e.CheckGrouped(c, Options{}).OK() {
			return true
		}
	}
	return false
}

func (e *Engine) run(cmd Command, opts Options, table *[NumKinds]rule, commandable func(state.Unit) string) (Command, Verdict) {
	if !cmd.Kind.Valid() {
		return cmd, reject(StageKind, protocol.ErrBadParameter)
	}
	u, r := e.unit(cmd.Unit)
	if r != "" {
		return cmd, reject(StageCommandable, r)
	}
	if !opts.SkipCommandability {
		if r := commandable(u); r != "" {
			return cmd, reject(StageCommandable, r)
		}
	}
	rl := &table[cmd.Kind]
	if !opts.SkipKind {
		if r := rl.can(e, u); r != "" {
			return cmd, reject(StageKind, r)
		}
	}
	if rl.target && !opts.SkipTargetability {
		t, r := e.unit(cmd.Target)
		if r == "" {
			r = e.targetable(t)
		}
		if r != "" {
			return cmd, reject(StageTarget, r)
		}
	}
	if rl.with != nil {
		if r := rl.with(e, u, &cmd); r != "" {
			return cmd, reject(StageParams, r)
		}
	}
	return cmd, Verdict{}
}
