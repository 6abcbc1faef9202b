package protocol

import "sort"

// Rejection codes reported when a command fails a local legality check.
const (
	// Unit and target status.
	ErrUnitNotExist = "E_UNIT_NOT_EXIST"
	ErrUnitNotOwned = "E_UNIT_NOT_OWNED"
	ErrUnitBusy     = "E_UNIT_BUSY"
	ErrNotVisible   = "E_NOT_VISIBLE"
	ErrBadTarget    = "E_INVALID_TARGET"

	// Type and state compatibility.
	ErrIncompatibleType  = "E_INCOMPATIBLE_UNIT_TYPE"
	ErrIncompatibleTech  = "E_INCOMPATIBLE_TECH_TYPE"
	ErrIncompatibleState = "E_INCOMPATIBLE_STATE"
	ErrIncapable         = "E_INCAPABLE"

	// Research and upgrades.
	ErrAlreadyResearched    = "E_ALREADY_RESEARCHED"
	ErrFullyUpgraded        = "E_FULLY_UPGRADED"
	ErrCurrentlyResearching = "E_CURRENTLY_RESEARCHING"
	ErrCurrentlyUpgrading   = "E_CURRENTLY_UPGRADING"

	// Costs and prerequisites.
	ErrInsufficientMinerals = "E_INSUFFICIENT_MINERALS"
	ErrInsufficientGas      = "E_INSUFFICIENT_GAS"
	ErrInsufficientSupply   = "E_INSUFFICIENT_SUPPLY"
	ErrInsufficientEnergy   = "E_INSUFFICIENT_ENERGY"
	ErrInsufficientTech     = "E_INSUFFICIENT_TECH"
	ErrInsufficientAmmo     = "E_INSUFFICIENT_AMMO"
	ErrInsufficientSpace    = "E_INSUFFICIENT_SPACE"

	// Geometry.
	ErrInvalidTile  = "E_INVALID_TILE_POSITION"
	ErrUnbuildable  = "E_UNBUILDABLE_LOCATION"
	ErrUnreachable  = "E_UNREACHABLE_LOCATION"
	ErrOutOfRange   = "E_OUT_OF_RANGE"
	ErrUnableToHit  = "E_UNABLE_TO_HIT"
	ErrBadParameter = "E_INVALID_PARAMETER"
	ErrUnknown      = "E_UNKNOWN"
)

var knownCodes = map[string]struct{}{
	ErrUnitNotExist:         {},
	ErrUnitNotOwned:         {},
	ErrUnitBusy:             {},
	ErrNotVisible:           {},
	ErrBadTarget:            {},
	ErrIncompatibleType:     {},
	ErrIncompatibleTech:     {},
	ErrIncompatibleState:    {},
	ErrIncapable:            {},
	ErrAlreadyResearched:    {},
	ErrFullyUpgraded:        {},
	ErrCurrentlyResearching: {},
	ErrCurrentlyUpgrading:   {},
	ErrInsufficientMinerals: {},
	ErrInsufficientGas:      {},
	ErrInsufficientSupply:   {},
	ErrInsufficientEnergy:   {},
	ErrInsufficientTech:     {},
	ErrInsufficientAmmo:     {},
	ErrInsufficientSpace:    {},
	ErrInvalidTile:          {},
	ErrUnbuildable:          {},
	ErrUnreachable:          {},
	ErrOutOfRange:           {},
	ErrUnableToHit:          {},
	ErrBadParameter:         {},
	ErrUnknown:              {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// KnownCodes lists every rejection code, for stats tables that report zeros.
func KnownCodes() []string {
	out := make([]string, 0, len(knownCodes))
	for c := range knownCodes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
