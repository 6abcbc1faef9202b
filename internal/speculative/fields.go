package speculative

import (
	"fmt"
	"sort"
	"strings"
)

// Field names one predictable quantity. Every field has its own window.
type Field int

const (
	FieldType Field = iota
	FieldOrder
	FieldSecondaryOrder
	FieldOrderTarget
	FieldTargetPosition
	FieldBuildType
	FieldTech
	FieldUpgrade
	FieldTrainingQueue
	FieldRemainingBuildTime
	FieldRemainingTrainTime
	FieldRemainingResearchTime
	FieldRemainingUpgradeTime
	FieldRallyPosition
	FieldRallyUnit
	FieldTransport
	FieldEnergy

	FieldIdle
	FieldInterruptible
	FieldMoving
	FieldGathering
	FieldAttacking
	FieldHoldingPosition
	FieldPatrolling
	FieldFollowing
	FieldRepairing
	FieldConstructing
	FieldMorphing
	FieldTraining
	FieldResearching
	FieldUpgrading
	FieldBurrowed
	FieldCloaked
	FieldSieged
	FieldLifted
	FieldLoaded

	FieldMinerals
	FieldGas
	FieldSupplyUsed
	FieldPlayerResearching
	FieldPlayerUpgrading

	NumFields
)

var fieldNames = [NumFields]string{
	"type", "order", "secondary_order", "order_target", "target_position",
	"build_type", "tech", "upgrade", "training_queue", "remaining_build_time",
	"remaining_train_time", "remaining_research_time", "remaining_upgrade_time",
	"rally_position", "rally_unit", "transport", "energy",
	"idle", "interruptible", "moving", "gathering", "attacking",
	"holding_position", "patrolling", "following", "repairing", "constructing",
	"morphing", "training", "researching", "upgrading", "burrowed", "cloaked",
	"sieged", "lifted", "loaded",
	"minerals", "gas", "supply_used", "player_researching", "player_upgrading",
}

func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

func ParseField(name string) (Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return Field(f), true
		}
	}
	return 0, false
}

// Windows holds the validity window, in frames, of every field.
type Windows [NumFields]int

// DefaultWindows covers one command round trip: an override installed at
// frame t is visible until the engine's answer lands at t+latency.
// Counters stay one extra frame because the engine debits them a frame after
// it accepts the order.
func DefaultWindows(latencyFrames int) Windows {
	base := max(latencyFrames, 1)
	var w Windows
	for f := range w {
		w[f] = base
	}
	w[FieldMinerals] = base + 1
	w[FieldGas] = base + 1
	w[FieldSupplyUsed] = base + 1
	return w
}

// Override applies named windows on top of w. Unknown names and negative
// values are reported together.
func (w Windows) Override(named map[string]int) (Windows, error) {
	var bad []string
	for name, frames := range named {
		f, ok := ParseField(name)
		if !ok || frames < 0 {
			bad = append(bad, name)
			continue
		}
		w[f] = frames
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return w, fmt.Errorf("speculative: invalid windows: %s", strings.Join(bad, ", "))
	}
	return w, nil
}
