package speculative

import "broodlink/internal/catalog"

type Point struct{ X, Y int }

// UnitRow holds every predictable field of one unit.
type UnitRow struct {
	Type                  Value[catalog.UnitType]
	Order                 Value[catalog.Order]
	SecondaryOrder        Value[catalog.Order]
	OrderTarget           Value[int]
	TargetPosition        Value[Point]
	BuildType             Value[catalog.UnitType]
	Tech                  Value[catalog.TechType]
	Upgrade               Value[catalog.UpgradeType]
	TrainingQueue         Value[[]catalog.UnitType]
	RemainingBuildTime    Value[int]
	RemainingTrainTime    Value[int]
	RemainingResearchTime Value[int]
	RemainingUpgradeTime  Value[int]
	RallyPosition         Value[Point]
	RallyUnit             Value[int]
	Transport             Value[int]
	Energy                Value[int]

	Idle            Value[bool]
	Interruptible   Value[bool]
	Moving          Value[bool]
	Gathering       Value[bool]
	Attacking       Value[bool]
	HoldingPosition Value[bool]
	Patrolling      Value[bool]
	Following       Value[bool]
	Repairing       Value[bool]
	Constructing    Value[bool]
	Morphing        Value[bool]
	Training        Value[bool]
	Researching     Value[bool]
	Upgrading       Value[bool]
	Burrowed        Value[bool]
	Cloaked         Value[bool]
	Sieged          Value[bool]
	Lifted          Value[bool]
	Loaded          Value[bool]
}

// Flag returns the boolean slot for a status field, or nil when f is not one.
func (r *UnitRow) Flag(f Field) *Value[bool] {
	switch f {
	case FieldIdle:
		return &r.Idle
	case FieldInterruptible:
		return &r.Interruptible
	case FieldMoving:
		return &r.Moving
	case FieldGathering:
		return &r.Gathering
	case FieldAttacking:
		return &r.Attacking
	case FieldHoldingPosition:
		return &r.HoldingPosition
	case FieldPatrolling:
		return &r.Patrolling
	case FieldFollowing:
		return &r.Following
	case FieldRepairing:
		return &r.Repairing
	case FieldConstructing:
		return &r.Constructing
	case FieldMorphing:
		return &r.Morphing
	case FieldTraining:
		return &r.Training
	case FieldResearching:
		return &r.Researching
	case FieldUpgrading:
		return &r.Upgrading
	case FieldBurrowed:
		return &r.Burrowed
	case FieldCloaked:
		return &r.Cloaked
	case FieldSieged:
		return &r.Sieged
	case FieldLifted:
		return &r.Lifted
	case FieldLoaded:
		return &r.Loaded
	}
	return nil
}

// PlayerRow holds predicted bank and research state for one player.
type PlayerRow struct {
	Minerals    Delta
	Gas         Delta
	SupplyUsed  Delta
	Researching [catalog.MaxTechTypes]Value[bool]
	Upgrading   [catalog.MaxUpgradeTypes]Value[bool]
}

// UnitTable is keyed by unit id. Rows are allocated on first write.
type UnitTable struct {
	rows map[int]*UnitRow
}

func (t *UnitTable) Get(id int) *UnitRow { return t.rows[id] }

func (t *UnitTable) Row(id int) *UnitRow {
	if t.rows == nil {
		t.rows = make(map[int]*UnitRow)
	}
	r := t.rows[id]
	if r == nil {
		r = &UnitRow{}
		t.rows[id] = r
	}
	return r
}

func (t *UnitTable) Forget(id int) { delete(t.rows, id) }
func (t *UnitTable) Clear()        { clear(t.rows) }
func (t *UnitTable) Len() int      { return len(t.rows) }

// PlayerTable is keyed by player id.
type PlayerTable struct {
	rows map[int]*PlayerRow
}

func (t *PlayerTable) Get(id int) *PlayerRow { return t.rows[id] }

func (t *PlayerTable) Row(id int) *PlayerRow {
	if t.rows == nil {
		t.rows = make(map[int]*PlayerRow)
	}
	r := t.rows[id]
	if r == nil {
		r = &PlayerRow{}
		t.rows[id] = r
	}
	return r
}

func (t *PlayerTable) Forget(id int) { delete(t.rows, id) }
func (t *PlayerTable) Clear()        { clear(t.rows) }
func (t *PlayerTable) Len() int      { return len(t.rows) }
