package shm

import "broodlink/internal/catalog"

const (
	playerNeutral  = 1 << 0
	playerLeftGame = 1 << 1
	playerVictory  = 1 << 2
	playerDefeated = 1 << 3
)

// Player is a view of one player record. The zero value is not usable; obtain
// one from Segment.Player.
type Player struct {
	s   *Segment
	id  int
	off int
}

// Player returns the record for id, or ok == false when id is out of range.
func (s *Segment) Player(id int) (Player, bool) {
	if id < 0 || id >= MaxPlayers {
		return Player{}, false
	}
	return Player{s: s, id: id, off: offPlayers + id*playerStride}, true
}

func (p Player) ID() int { return p.id }

func (p Player) Name() string           { return p.s.str(p.off+plName, PlayerNameWidth) }
func (p Player) SetName(name string)    { p.s.putStr(p.off+plName, PlayerNameWidth, name) }
func (p Player) Race() catalog.Race     { return catalog.Race(p.s.i32(p.off + plRace)) }
func (p Player) SetRace(r catalog.Race) { p.s.putI32(p.off+plRace, int32(r)) }

func (p Player) Minerals() int        { return int(p.s.i32(p.off + plMinerals)) }
func (p Player) SetMinerals(v int)    { p.s.putI32(p.off+plMinerals, int32(v)) }
func (p Player) Gas() int             { return int(p.s.i32(p.off + plGas)) }
func (p Player) SetGas(v int)         { p.s.putI32(p.off+plGas, int32(v)) }
func (p Player) SupplyTotal() int     { return int(p.s.i32(p.off + plSupplyTotal)) }
func (p Player) SetSupplyTotal(v int) { p.s.putI32(p.off+plSupplyTotal, int32(v)) }
func (p Player) SupplyUsed() int      { return int(p.s.i32(p.off + plSupplyUsed)) }
func (p Player) SetSupplyUsed(v int)  { p.s.putI32(p.off+plSupplyUsed, int32(v)) }

func (p Player) bit(mask int32) bool { return p.s.i32(p.off+plFlags)&mask != 0 }

func (p Player) setBit(mask int32, on bool) {
	v := p.s.i32(p.off + plFlags)
	if on {
		v |= mask
	} else {
		v &^= mask
	}
	p.s.putI32(p.off+plFlags, v)
}

func (p Player) IsNeutral() bool       { return p.bit(playerNeutral) }
func (p Player) SetNeutral(on bool)    { p.setBit(playerNeutral, on) }
func (p Player) LeftGame() bool        { return p.bit(playerLeftGame) }
func (p Player) SetLeftGame(on bool)   { p.setBit(playerLeftGame, on) }
func (p Player) IsVictorious() bool    { return p.bit(playerVictory) }
func (p Player) SetVictorious(on bool) { p.setBit(playerVictory, on) }
func (p Player) IsDefeated() bool      { return p.bit(playerDefeated) }
func (p Player) SetDefeated(on bool)   { p.setBit(playerDefeated, on) }

func (p Player) IsAlly(other int) bool {
	if other < 0 || other >= MaxPlayers {
		return false
	}
	return p.s.flag(p.off + plAlly + other)
}

func (p Player) SetAlly(other int, on bool) {
	if other >= 0 && other < MaxPlayers {
		p.s.putFlag(p.off+plAlly+other, on)
	}
}

func (p Player) IsEnemy(other int) bool {
	if other < 0 || other >= MaxPlayers {
		return false
	}
	return p.s.flag(p.off + plEnemy + other)
}

func (p Player) SetEnemy(other int, on bool) {
	if other >= 0 && other < MaxPlayers {
		p.s.putFlag(p.off+plEnemy+other, on)
	}
}

func validTech(t catalog.TechType) bool       { return t >= 0 && t < maxTechs }
func validUpgrade(u catalog.UpgradeType) bool { return u >= 0 && u < maxUpgrades }
func validUnitType(t catalog.UnitType) bool   { return t >= 0 && t < maxUnitTypes }

func (p Player) HasResearched(t catalog.TechType) bool {
	return validTech(t) && p.s.flag(p.off+plResearched+int(t))
}

func (p Player) SetResearched(t catalog.TechType, on bool) {
	if validTech(t) {
		p.s.putFlag(p.off+plResearched+int(t), on)
	}
}

func (p Player) IsResearching(t catalog.TechType) bool {
	return validTech(t) && p.s.flag(p.off+plResearching+int(t))
}

func (p Player) SetResearching(t catalog.TechType, on bool) {
	if validTech(t) {
		p.s.putFlag(p.off+plResearching+int(t), on)
	}
}

func (p Player) UpgradeLevel(u catalog.UpgradeType) int {
	if !validUpgrade(u) {
		return 0
	}
	return int(p.s.b[p.off+plUpgradeLevel+int(u)])
}

func (p Player) SetUpgradeLevel(u catalog.UpgradeType, level int) {
	if validUpgrade(u) {
		p.s.b[p.off+plUpgradeLevel+int(u)] = byte(level)
	}
}

func (p Player) IsUpgrading(u catalog.UpgradeType) bool {
	return validUpgrade(u) && p.s.flag(p.off+plUpgrading+int(u))
}

func (p Player) SetUpgrading(u catalog.UpgradeType, on bool) {
	if validUpgrade(u) {
		p.s.putFlag(p.off+plUpgrading+int(u), on)
	}
}

// CompletedUnitCount is the number of finished units of type t the player owns.
func (p Player) CompletedUnitCount(t catalog.UnitType) int {
	if !validUnitType(t) {
		return 0
	}
	return int(p.s.i32(p.off + plCompleted + 4*int(t)))
}

func (p Player) SetCompletedUnitCount(t catalog.UnitType, n int) {
	if validUnitType(t) {
		p.s.putI32(p.off+plCompleted+4*int(t), int32(n))
	}
}

// AllUnitCount includes units still under construction.
func (p Player) AllUnitCount(t catalog.UnitType) int {
	if !validUnitType(t) {
		return 0
	}
	return int(p.s.i32(p.off + plAllCount + 4*int(t)))
}

func (p Player) SetAllUnitCount(t catalog.UnitType, n int) {
	if validUnitType(t) {
		p.s.putI32(p.off+plAllCount+4*int(t), int32(n))
	}
}
