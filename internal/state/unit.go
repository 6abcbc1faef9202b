package state

import (
	"broodlink/internal/catalog"
	"broodlink/internal/relations"
	"broodlink/internal/shm"
	"broodlink/internal/speculative"
)

// Unit is a merged view of one unit: predicted values while their window is
// open, segment values otherwise.
type Unit struct {
	w   *World
	rec shm.Unit
}

func (u Unit) ID() int              { return u.rec.ID() }
func (u Unit) Record() shm.Unit     { return u.rec }
func (u Unit) Exists() bool         { return u.rec.Exists() }
func (u Unit) Player() int          { return u.rec.Player() }
func (u Unit) Position() (x, y int) { return u.rec.Position() }
func (u Unit) HitPoints() int       { return u.rec.HitPoints() }
func (u Unit) Shields() int         { return u.rec.Shields() }
func (u Unit) Resources() int       { return u.rec.Resources() }

func (u Unit) IsOwnedBy(player int) bool { return u.rec.Player() == player }

func (u Unit) row() *speculative.UnitRow {
	if u.w.Spec == nil {
		return nil
	}
	return u.w.Spec.Unit(u.rec.ID())
}

func read[T any](u Unit, f speculative.Field, pick func(*speculative.UnitRow) *speculative.Value[T], auth T) T {
	if r := u.row(); r != nil {
		return speculative.Read(u.w.Spec, f, pick(r), auth)
	}
	return auth
}

func (u Unit) flag(f speculative.Field, bit shm.UnitFlag) bool {
	auth := u.rec.Has(bit)
	if r := u.row(); r != nil {
		return speculative.Read(u.w.Spec, f, r.Flag(f), auth)
	}
	return auth
}

func (u Unit) Type() catalog.UnitType {
	return read(u, speculative.FieldType, func(r *speculative.UnitRow) *speculative.Value[catalog.UnitType] { return &r.Type }, u.rec.Type())
}

// Def is the catalog entry for the unit's current type, nil when unknown.
func (u Unit) Def() *catalog.UnitDef { return u.w.Cat.Unit(u.Type()) }

func (u Unit) Order() catalog.Order {
	return read(u, speculative.FieldOrder, func(r *speculative.UnitRow) *speculative.Value[catalog.Order] { return &r.Order }, u.rec.Order())
}

func (u Unit) SecondaryOrder() catalog.Order {
	return read(u, speculative.FieldSecondaryOrder, func(r *speculative.UnitRow) *speculative.Value[catalog.Order] { return &r.SecondaryOrder }, u.rec.SecondaryOrder())
}

func (u Unit) OrderTarget() int {
	return read(u, speculative.FieldOrderTarget, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.OrderTarget }, u.rec.OrderTarget())
}

func (u Unit) TargetPosition() (x, y int) {
	ax, ay := u.rec.TargetPosition()
	p := read(u, speculative.FieldTargetPosition, func(r *speculative.UnitRow) *speculative.Value[speculative.Point] { return &r.TargetPosition }, speculative.Point{X: ax, Y: ay})
	return p.X, p.Y
}

func (u Unit) BuildType() catalog.UnitType {
	return read(u, speculative.FieldBuildType, func(r *speculative.UnitRow) *speculative.Value[catalog.UnitType] { return &r.BuildType }, u.rec.BuildType())
}

func (u Unit) Tech() catalog.TechType {
	return read(u, speculative.FieldTech, func(r *speculative.UnitRow) *speculative.Value[catalog.TechType] { return &r.Tech }, u.rec.Tech())
}

func (u Unit) Upgrade() catalog.UpgradeType {
	return read(u, speculative.FieldUpgrade, func(r *speculative.UnitRow) *speculative.Value[catalog.UpgradeType] { return &r.Upgrade }, u.rec.Upgrade())
}

func (u Unit) TrainingQueue() []catalog.UnitType {
	return read(u, speculative.FieldTrainingQueue, func(r *speculative.UnitRow) *speculative.Value[[]catalog.UnitType] { return &r.TrainingQueue }, u.rec.TrainingQueue())
}

func (u Unit) RemainingBuildTime() int {
	return read(u, speculative.FieldRemainingBuildTime, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.RemainingBuildTime }, u.rec.RemainingBuildTime())
}

func (u Unit) RemainingTrainTime() int {
	return read(u, speculative.FieldRemainingTrainTime, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.RemainingTrainTime }, u.rec.RemainingTrainTime())
}

func (u Unit) RemainingResearchTime() int {
	return read(u, speculative.FieldRemainingResearchTime, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.RemainingResearchTime }, u.rec.RemainingResearchTime())
}

func (u Unit) RemainingUpgradeTime() int {
	return read(u, speculative.FieldRemainingUpgradeTime, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.RemainingUpgradeTime }, u.rec.RemainingUpgradeTime())
}

func (u Unit) RallyPosition() (x, y int) {
	ax, ay := u.rec.RallyPosition()
	p := read(u, speculative.FieldRallyPosition, func(r *speculative.UnitRow) *speculative.Value[speculative.Point] { return &r.RallyPosition }, speculative.Point{X: ax, Y: ay})
	return p.X, p.Y
}

func (u Unit) RallyUnit() int {
	return read(u, speculative.FieldRallyUnit, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.RallyUnit }, u.rec.RallyUnit())
}

func (u Unit) Transport() int {
	return read(u, speculative.FieldTransport, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.Transport }, u.rec.Transport())
}

func (u Unit) Energy() int {
	return read(u, speculative.FieldEnergy, func(r *speculative.UnitRow) *speculative.Value[int] { return &r.Energy }, u.rec.Energy())
}

func (u Unit) IsIdle() bool            { return u.flag(speculative.FieldIdle, shm.UnitIdle) }
func (u Unit) IsInterruptible() bool   { return u.flag(speculative.FieldInterruptible, shm.UnitInterruptible) }
func (u Unit) IsMoving() bool          { return u.flag(speculative.FieldMoving, shm.UnitMoving) }
func (u Unit) IsGathering() bool       { return u.flag(speculative.FieldGathering, shm.UnitGathering) }
func (u Unit) IsAttacking() bool       { return u.flag(speculative.FieldAttacking, shm.UnitAttacking) }
func (u Unit) IsHoldingPosition() bool { return u.flag(speculative.FieldHoldingPosition, shm.UnitHoldingPosition) }
func (u Unit) IsPatrolling() bool      { return u.flag(speculative.FieldPatrolling, shm.UnitPatrolling) }
func (u Unit) IsFollowing() bool       { return u.flag(speculative.FieldFollowing, shm.UnitFollowing) }
func (u Unit) IsRepairing() bool       { return u.flag(speculative.FieldRepairing, shm.UnitRepairing) }
func (u Unit) IsConstructing() bool    { return u.flag(speculative.FieldConstructing, shm.UnitConstructing) }
func (u Unit) IsMorphing() bool        { return u.flag(speculative.FieldMorphing, shm.UnitMorphing) }
func (u Unit) IsTraining() bool        { return u.flag(speculative.FieldTraining, shm.UnitTraining) }
func (u Unit) IsResearching() bool     { return u.flag(speculative.FieldResearching, shm.UnitResearching) }
func (u Unit) IsUpgrading() bool       { return u.flag(speculative.FieldUpgrading, shm.UnitUpgrading) }
func (u Unit) IsBurrowed() bool        { return u.flag(speculative.FieldBurrowed, shm.UnitBurrowed) }
func (u Unit) IsCloaked() bool         { return u.flag(speculative.FieldCloaked, shm.UnitCloaked) }
func (u Unit) IsSieged() bool          { return u.flag(speculative.FieldSieged, shm.UnitSieged) }
func (u Unit) IsLifted() bool          { return u.flag(speculative.FieldLifted, shm.UnitLifted) }
func (u Unit) IsLoaded() bool          { return u.flag(speculative.FieldLoaded, shm.UnitLoaded) }

func (u Unit) IsCompleted() bool        { return u.rec.Has(shm.UnitCompleted) }
func (u Unit) IsPowered() bool          { return u.rec.Has(shm.UnitPowered) }
func (u Unit) IsFlying() bool           { return u.rec.Has(shm.UnitFlying) || u.IsLifted() }
func (u Unit) IsHallucination() bool    { return u.rec.Has(shm.UnitHallucination) }
func (u Unit) IsVisible() bool          { return u.rec.Has(shm.UnitVisible) }
func (u Unit) IsCarryingMinerals() bool { return u.rec.Has(shm.UnitCarryingMinerals) }
func (u Unit) IsCarryingGas() bool      { return u.rec.Has(shm.UnitCarryingGas) }
func (u Unit) IsStartingAttack() bool   { return u.rec.Has(shm.UnitStartingAttack) }

func (u Unit) IsLockedDown() bool    { return u.rec.LockdownTimer() > 0 }
func (u Unit) IsMaelstrommed() bool  { return u.rec.MaelstromTimer() > 0 }
func (u Unit) IsStasised() bool      { return u.rec.StasisTimer() > 0 }
func (u Unit) Hatchery() int         { return u.rec.Hatchery() }
func (u Unit) Carrier() int          { return u.rec.Carrier() }
func (u Unit) Addon() int            { return u.rec.Addon() }
func (u Unit) BuildUnit() int        { return u.rec.BuildUnit() }
func (u Unit) InterceptorCount() int { return u.rec.InterceptorCount() }
func (u Unit) ScarabCount() int      { return u.rec.ScarabCount() }
func (u Unit) SpiderMineCount() int  { return u.rec.SpiderMineCount() }

// HasAddon reports whether the unit's attached addon is of type t.
func (u Unit) HasAddon(t catalog.UnitType) bool {
	a, ok := u.w.Unit(u.rec.Addon())
	return ok && a.Exists() && a.Type() == t
}

// LoadedUnits lists the units carried by this unit.
func (u Unit) LoadedUnits() []int { return u.w.Rel.Connected(relations.Loaded, u.ID()) }

// Interceptors lists the interceptors bound to this carrier.
func (u Unit) Interceptors() []int { return u.w.Rel.Connected(relations.Interceptors, u.ID()) }

// Larva lists the larva belonging to this hatchery.
func (u Unit) Larva() []int { return u.w.Rel.Connected(relations.Larva, u.ID()) }

// SpaceRemaining is the transport's free cargo space.
func (u Unit) SpaceRemaining() int {
	d := u.Def()
	if d == nil {
		return 0
	}
	free := d.SpaceProvided
	for _, id := range u.LoadedUnits() {
		if m, ok := u.w.Unit(id); ok {
			if md := m.Def(); md != nil {
				free -= md.SpaceRequired
			}
		}
	}
	return free
}

// Distance is the edge-to-edge gap approximated from footprints.
func (u Unit) Distance(o Unit) int {
	ax, ay := u.Position()
	bx, by := o.Position()
	dx := abs(ax-bx) - halfWidth(u) - halfWidth(o)
	dy := abs(ay-by) - halfHeight(u) - halfHeight(o)
	return approxDistance(max(dx, 0), max(dy, 0))
}

func halfWidth(u Unit) int {
	if d := u.Def(); d != nil && d.IsBuilding() {
		return d.TileWidth * 16
	}
	return 8
}

func halfHeight(u Unit) int {
	if d := u.Def(); d != nil && d.IsBuilding() {
		return d.TileHeight * 16
	}
	return 8
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// approxDistance is the engine's octagonal approximation of Euclidean length.
func approxDistance(dx, dy int) int {
	lo, hi := min(dx, dy), max(dx, dy)
	if lo < hi>>2 {
		return hi
	}
	lc := (3 * lo) >> 3
	return lc>>5 + lc + hi - hi>>4 - hi>>6
}
