package client

import (
	"broodlink/internal/catalog"
	"broodlink/internal/state"
)

// Player is a handle on one player's bank and research state, with the
// controlled player's pending spending already applied.
type Player struct {
	g  *Game
	id int
}

// Player returns ok == false for ids outside the player table.
func (g *Game) Player(id int) (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.world.Player(id); !ok {
		return Player{}, false
	}
	return Player{g: g, id: id}, true
}

// Self is the controlled player.
func (g *Game) Self() (Player, bool) { return g.Player(g.segSelf()) }

func with[T any](p Player, fn func(state.Player) T) T {
	p.g.mu.Lock()
	defer p.g.mu.Unlock()
	sp, _ := p.g.world.Player(p.id)
	return fn(sp)
}

func (p Player) ID() int            { return p.id }
func (p Player) Name() string       { return with(p, state.Player.Name) }
func (p Player) Race() catalog.Race { return with(p, state.Player.Race) }
func (p Player) Minerals() int      { return with(p, state.Player.Minerals) }
func (p Player) Gas() int           { return with(p, state.Player.Gas) }
func (p Player) SupplyUsed() int    { return with(p, state.Player.SupplyUsed) }
func (p Player) SupplyTotal() int   { return with(p, state.Player.SupplyTotal) }

func (p Player) HasResearched(t catalog.TechType) bool {
	return with(p, func(s state.Player) bool { return s.HasResearched(t) })
}

func (p Player) IsResearching(t catalog.TechType) bool {
	return with(p, func(s state.Player) bool { return s.IsResearching(t) })
}

func (p Player) UpgradeLevel(u catalog.UpgradeType) int {
	return with(p, func(s state.Player) int { return s.UpgradeLevel(u) })
}

func (p Player) IsUpgrading(u catalog.UpgradeType) bool {
	return with(p, func(s state.Player) bool { return s.IsUpgrading(u) })
}

func (p Player) CompletedUnitCount(t catalog.UnitType) int {
	return with(p, func(s state.Player) int { return s.CompletedUnitCount(t) })
}
