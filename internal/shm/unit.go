package shm

import "broodlink/internal/catalog"

// UnitFlag bits live in one 32-bit word per unit record.
type UnitFlag uint32

const (
	UnitExists UnitFlag = 1 << iota
	UnitCompleted
	UnitMorphing
	UnitConstructing
	UnitIdle
	UnitInterruptible
	UnitPowered
	UnitLoaded
	UnitLifted
	UnitBurrowed
	UnitCloaked
	UnitHallucination
	UnitFlying
	UnitMoving
	UnitGathering
	UnitCarryingMinerals
	UnitCarryingGas
	UnitTraining
	UnitAttacking
	UnitHoldingPosition
	UnitPatrolling
	UnitResearching
	UnitUpgrading
	UnitFollowing
	UnitRepairing
	UnitVisible
	UnitSieged
	UnitStartingAttack
)

// Unit is a view of one unit record.
type Unit struct {
	s   *Segment
	id  int
	off int
}

// Unit returns the record for id, or ok == false when id is out of range. A
// returned record may still be an empty slot; check Exists.
func (s *Segment) Unit(id int) (Unit, bool) {
	if id < 0 || id >= MaxUnits {
		return Unit{}, false
	}
	return Unit{s: s, id: id, off: offUnits + id*unitStride}, true
}

// Clear zeroes the record and resets every reference field to NoUnit.
func (u Unit) Clear() {
	clear(u.s.b[u.off : u.off+unitStride])
	for _, f := range []int{unOrderTarget, unTarget, unRallyUnit, unBuildUnit, unAddon, unTransport, unHatchery, unCarrier} {
		u.s.putI32(u.off+f, NoUnit)
	}
	u.s.putI32(u.off+unPlayer, NoPlayer)
	u.s.putI32(u.off+unBuildType, int32(catalog.UnitTypeNone))
	u.s.putI32(u.off+unTech, int32(catalog.TechNone))
	u.s.putI32(u.off+unUpgrade, int32(catalog.UpgradeNone))
	u.s.putI32(u.off+unOrder, int32(catalog.OrderNone))
	u.s.putI32(u.off+unSecondaryOrder, int32(catalog.OrderNone))
}

func (u Unit) ID() int { return u.id }

func (u Unit) Flags() UnitFlag     { return UnitFlag(u.s.i32(u.off + unFlags)) }
func (u Unit) SetFlags(f UnitFlag) { u.s.putI32(u.off+unFlags, int32(f)) }
func (u Unit) Has(f UnitFlag) bool { return u.Flags()&f == f }
func (u Unit) Exists() bool        { return u.Has(UnitExists) }

func (u Unit) Set(f UnitFlag, on bool) {
	v := u.Flags()
	if on {
		v |= f
	} else {
		v &^= f
	}
	u.SetFlags(v)
}

func (u Unit) get(off int) int    { return int(u.s.i32(u.off + off)) }
func (u Unit) put(off int, v int) { u.s.putI32(u.off+off, int32(v)) }

func (u Unit) Player() int                       { return u.get(unPlayer) }
func (u Unit) SetPlayer(id int)                  { u.put(unPlayer, id) }
func (u Unit) Type() catalog.UnitType            { return catalog.UnitType(u.get(unType)) }
func (u Unit) SetType(t catalog.UnitType)        { u.put(unType, int(t)) }
func (u Unit) Position() (x, y int)              { return u.get(unX), u.get(unY) }
func (u Unit) HitPoints() int                    { return u.get(unHitPoints) }
func (u Unit) SetHitPoints(v int)                { u.put(unHitPoints, v) }
func (u Unit) Shields() int                      { return u.get(unShields) }
func (u Unit) SetShields(v int)                  { u.put(unShields, v) }
func (u Unit) Energy() int                       { return u.get(unEnergy) }
func (u Unit) SetEnergy(v int)                   { u.put(unEnergy, v) }
func (u Unit) Resources() int                    { return u.get(unResources) }
func (u Unit) SetResources(v int)                { u.put(unResources, v) }
func (u Unit) Order() catalog.Order              { return catalog.Order(u.get(unOrder)) }
func (u Unit) SetOrder(o catalog.Order)          { u.put(unOrder, int(o)) }
func (u Unit) SecondaryOrder() catalog.Order     { return catalog.Order(u.get(unSecondaryOrder)) }
func (u Unit) SetSecondaryOrder(o catalog.Order) { u.put(unSecondaryOrder, int(o)) }
func (u Unit) OrderTarget() int                  { return u.get(unOrderTarget) }
func (u Unit) SetOrderTarget(id int)             { u.put(unOrderTarget, id) }

func (u Unit) SetPosition(x, y int) {
	u.put(unX, x)
	u.put(unY, y)
}

func (u Unit) OrderTargetPosition() (x, y int) {
	return u.get(unOrderTargetX), u.get(unOrderTargetY)
}

func (u Unit) SetOrderTargetPosition(x, y int) {
	u.put(unOrderTargetX, x)
	u.put(unOrderTargetY, y)
}

func (u Unit) Target() int                { return u.get(unTarget) }
func (u Unit) SetTarget(id int)           { u.put(unTarget, id) }
func (u Unit) TargetPosition() (x, y int) { return u.get(unTargetX), u.get(unTargetY) }

func (u Unit) SetTargetPosition(x, y int) {
	u.put(unTargetX, x)
	u.put(unTargetY, y)
}

func (u Unit) RallyPosition() (x, y int) { return u.get(unRallyX), u.get(unRallyY) }

func (u Unit) SetRallyPosition(x, y int) {
	u.put(unRallyX, x)
	u.put(unRallyY, y)
}

func (u Unit) RallyUnit() int      { return u.get(unRallyUnit) }
func (u Unit) SetRallyUnit(id int) { u.put(unRallyUnit, id) }

func (u Unit) BuildType() catalog.UnitType      { return catalog.UnitType(u.get(unBuildType)) }
func (u Unit) SetBuildType(t catalog.UnitType)  { u.put(unBuildType, int(t)) }
func (u Unit) Tech() catalog.TechType           { return catalog.TechType(u.get(unTech)) }
func (u Unit) SetTech(t catalog.TechType)       { u.put(unTech, int(t)) }
func (u Unit) Upgrade() catalog.UpgradeType     { return catalog.UpgradeType(u.get(unUpgrade)) }
func (u Unit) SetUpgrade(t catalog.UpgradeType) { u.put(unUpgrade, int(t)) }

func (u Unit) RemainingBuildTime() int        { return u.get(unRemainingBuild) }
func (u Unit) SetRemainingBuildTime(v int)    { u.put(unRemainingBuild, v) }
func (u Unit) RemainingTrainTime() int        { return u.get(unRemainingTrain) }
func (u Unit) SetRemainingTrainTime(v int)    { u.put(unRemainingTrain, v) }
func (u Unit) RemainingResearchTime() int     { return u.get(unRemainingResearch) }
func (u Unit) SetRemainingResearchTime(v int) { u.put(unRemainingResearch, v) }
func (u Unit) RemainingUpgradeTime() int      { return u.get(unRemainingUpgrade) }
func (u Unit) SetRemainingUpgradeTime(v int)  { u.put(unRemainingUpgrade, v) }

// TrainingQueue returns a copy of the queued unit types, oldest first.
func (u Unit) TrainingQueue() []catalog.UnitType {
	n := min(max(u.get(unQueueCount), 0), TrainingSlots)
	out := make([]catalog.UnitType, n)
	for i := range out {
		out[i] = catalog.UnitType(u.get(unQueue + 4*i))
	}
	return out
}

// SetTrainingQueue stores up to TrainingSlots entries.
func (u Unit) SetTrainingQueue(q []catalog.UnitType) {
	n := min(len(q), TrainingSlots)
	for i := 0; i < TrainingSlots; i++ {
		v := catalog.UnitTypeNone
		if i < n {
			v = q[i]
		}
		u.put(unQueue+4*i, int(v))
	}
	u.put(unQueueCount, n)
}

func (u Unit) BuildUnit() int            { return u.get(unBuildUnit) }
func (u Unit) SetBuildUnit(id int)       { u.put(unBuildUnit, id) }
func (u Unit) Addon() int                { return u.get(unAddon) }
func (u Unit) SetAddon(id int)           { u.put(unAddon, id) }
func (u Unit) Transport() int            { return u.get(unTransport) }
func (u Unit) SetTransport(id int)       { u.put(unTransport, id) }
func (u Unit) Hatchery() int             { return u.get(unHatchery) }
func (u Unit) SetHatchery(id int)        { u.put(unHatchery, id) }
func (u Unit) Carrier() int              { return u.get(unCarrier) }
func (u Unit) SetCarrier(id int)         { u.put(unCarrier, id) }
func (u Unit) InterceptorCount() int     { return u.get(unInterceptors) }
func (u Unit) SetInterceptorCount(n int) { u.put(unInterceptors, n) }
func (u Unit) ScarabCount() int          { return u.get(unScarabs) }
func (u Unit) SetScarabCount(n int)      { u.put(unScarabs, n) }
func (u Unit) SpiderMineCount() int      { return u.get(unSpiderMines) }
func (u Unit) SetSpiderMineCount(n int)  { u.put(unSpiderMines, n) }

func (u Unit) LockdownTimer() int      { return u.get(unLockdown) }
func (u Unit) SetLockdownTimer(v int)  { u.put(unLockdown, v) }
func (u Unit) MaelstromTimer() int     { return u.get(unMaelstrom) }
func (u Unit) SetMaelstromTimer(v int) { u.put(unMaelstrom, v) }
func (u Unit) StasisTimer() int        { return u.get(unStasis) }
func (u Unit) SetStasisTimer(v int)    { u.put(unStasis, v) }

// LastCommand is the command type and frame of the most recent order the
// engine accepted for this unit.
func (u Unit) LastCommand() (catalog.UnitCommandType, int) {
	return catalog.UnitCommandType(u.get(unLastCommand)), u.get(unLastCommandFrame)
}

func (u Unit) SetLastCommand(k catalog.UnitCommandType, frame int) {
	u.put(unLastCommand, int(k))
	u.put(unLastCommandFrame, frame)
}
