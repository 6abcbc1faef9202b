package state

import (
	"broodlink/internal/catalog"
	"broodlink/internal/shm"
	"broodlink/internal/speculative"
)

type Player struct {
	w   *World
	rec shm.Player
}

func (p Player) ID() int            { return p.rec.ID() }
func (p Player) Name() string       { return p.rec.Name() }
func (p Player) Race() catalog.Race { return p.rec.Race() }
func (p Player) IsNeutral() bool    { return p.rec.IsNeutral() }
func (p Player) LeftGame() bool     { return p.rec.LeftGame() }
func (p Player) SupplyTotal() int   { return p.rec.SupplyTotal() }

func (p Player) IsEnemy(other int) bool { return p.rec.IsEnemy(other) }
func (p Player) IsAlly(other int) bool  { return p.rec.IsAlly(other) }

func (p Player) row() *speculative.PlayerRow {
	if p.w.Spec == nil {
		return nil
	}
	return p.w.Spec.Player(p.rec.ID())
}

func (p Player) Minerals() int {
	if r := p.row(); r != nil {
		return p.w.Spec.Counter(speculative.FieldMinerals, &r.Minerals, p.rec.Minerals())
	}
	return p.rec.Minerals()
}

func (p Player) Gas() int {
	if r := p.row(); r != nil {
		return p.w.Spec.Counter(speculative.FieldGas, &r.Gas, p.rec.Gas())
	}
	return p.rec.Gas()
}

func (p Player) SupplyUsed() int {
	if r := p.row(); r != nil {
		return p.w.Spec.Counter(speculative.FieldSupplyUsed, &r.SupplyUsed, p.rec.SupplyUsed())
	}
	return p.rec.SupplyUsed()
}

func (p Player) HasResearched(t catalog.TechType) bool { return p.rec.HasResearched(t) }

func (p Player) IsResearching(t catalog.TechType) bool {
	auth := p.rec.IsResearching(t)
	if r := p.row(); r != nil && t >= 0 && t < catalog.MaxTechTypes {
		return speculative.Read(p.w.Spec, speculative.FieldPlayerResearching, &r.Researching[t], auth)
	}
	return auth
}

// HasTech reports whether t is available, either researched or free.
func (p Player) HasTech(t catalog.TechType) bool {
	if t == catalog.TechNone {
		return true
	}
	if d := p.w.Cat.Tech(t); d != nil && d.Free {
		return true
	}
	return p.rec.HasResearched(t)
}

func (p Player) UpgradeLevel(u catalog.UpgradeType) int { return p.rec.UpgradeLevel(u) }

func (p Player) IsUpgrading(u catalog.UpgradeType) bool {
	auth := p.rec.IsUpgrading(u)
	if r := p.row(); r != nil && u >= 0 && u < catalog.MaxUpgradeTypes {
		return speculative.Read(p.w.Spec, speculative.FieldPlayerUpgrading, &r.Upgrading[u], auth)
	}
	return auth
}

func (p Player) CompletedUnitCount(t catalog.UnitType) int { return p.rec.CompletedUnitCount(t) }
func (p Player) AllUnitCount(t catalog.UnitType) int       { return p.rec.AllUnitCount(t) }

// HasCompleted reports whether the player owns a finished unit of a type
// that satisfies want, counting upgraded forms such as Lair for Hatchery.
func (p Player) HasCompleted(want catalog.UnitType) bool {
	if p.rec.CompletedUnitCount(want) > 0 {
		return true
	}
	for _, t := range p.w.Cat.UnitTypes() {
		if t != want && p.w.Cat.Satisfies(t, want) && p.rec.CompletedUnitCount(t) > 0 {
			return true
		}
	}
	return false
}
