package legality

import (
	"fmt"

	"broodlink/internal/catalog"
	"broodlink/internal/state"
)

type rule struct {
	can func(*Engine, state.Unit) string
	// with checks the command's arguments; nil when the kind takes none.
	with func(*Engine, state.Unit, *Command) string
	// target marks kinds whose Target must pass Targetable.
	target bool
}

var individual = [NumKinds]rule{
	catalog.CmdAttackMove:         {can: (*Engine).canAttackMove, with: (*Engine).positionWith},
	catalog.CmdAttackUnit:         {can: (*Engine).canAttackUnit, with: (*Engine).attackUnitWith, target: true},
	catalog.CmdBuild:              {can: (*Engine).canBuild, with: (*Engine).buildWith},
	catalog.CmdBuildAddon:         {can: (*Engine).canBuildAddon, with: (*Engine).buildAddonWith},
	catalog.CmdTrain:              {can: (*Engine).canTrain, with: (*Engine).trainWith},
	catalog.CmdMorph:              {can: (*Engine).canMorph, with: (*Engine).morphWith},
	catalog.CmdResearch:           {can: (*Engine).canResearch, with: (*Engine).researchWith},
	catalog.CmdUpgrade:            {can: (*Engine).canResearch, with: (*Engine).upgradeWith},
	catalog.CmdSetRallyPosition:   {can: (*Engine).canSetRally, with: (*Engine).positionWith},
	catalog.CmdSetRallyUnit:       {can: (*Engine).canSetRally, target: true},
	catalog.CmdMove:               {can: (*Engine).canMove, with: (*Engine).positionWith},
	catalog.CmdPatrol:             {can: (*Engine).canMove, with: (*Engine).positionWith},
	catalog.CmdHoldPosition:       {can: (*Engine).canHoldPosition},
	catalog.CmdStop:               {can: (*Engine).canStop},
	catalog.CmdFollow:             {can: (*Engine).canMove, with: (*Engine).followWith, target: true},
	catalog.CmdGather:             {can: (*Engine).canGather, with: (*Engine).gatherWith, target: true},
	catalog.CmdReturnCargo:        {can: (*Engine).canReturnCargo},
	catalog.CmdRepair:             {can: (*Engine).canRepair, with: (*Engine).repairWith, target: true},
	catalog.CmdBurrow:             {can: (*Engine).canBurrow},
	catalog.CmdUnburrow:           {can: (*Engine).canUnburrow},
	catalog.CmdCloak:              {can: (*Engine).canCloak},
	catalog.CmdDecloak:            {can: (*Engine).canDecloak},
	catalog.CmdSiege:              {can: (*Engine).canSiege},
	catalog.CmdUnsiege:            {can: (*Engine).canUnsiege},
	catalog.CmdLift:               {can: (*Engine).canLift},
	catalog.CmdLand:               {can: (*Engine).canLand, with: (*Engine).landWith},
	catalog.CmdLoad:               {can: (*Engine).canLoad, with: (*Engine).loadWith, target: true},
	catalog.CmdUnload:             {can: (*Engine).canUnload, with: (*Engine).unloadWith, target: true},
	catalog.CmdUnloadAll:          {can: (*Engine).canUnload, with: (*Engine).unloadAllWith},
	catalog.CmdUnloadAllPosition:  {can: (*Engine).canUnloadAllPosition, with: (*Engine).unloadAllPositionWith},
	catalog.CmdRightClickPosition: {can: (*Engine).canRightClickPosition, with: (*Engine).positionWith},
	catalog.CmdRightClickUnit:     {can: (*Engine).canRightClickUnit, with: (*Engine).rightClickUnitWith, target: true},
	catalog.CmdHaltConstruction:   {can: (*Engine).canHaltConstruction},
	catalog.CmdCancelConstruction: {can: (*Engine).canCancelConstruction},
	catalog.CmdCancelAddon:        {can: (*Engine).canCancelAddon},
	catalog.CmdCancelTrain:        {can: (*Engine).canCancelTrain},
	catalog.CmdCancelTrainSlot:    {can: (*Engine).canCancelTrain, with: (*Engine).cancelTrainSlotWith},
	catalog.CmdCancelMorph:        {can: (*Engine).canCancelMorph},
	catalog.CmdCancelResearch:     {can: (*Engine).canCancelResearch},
	catalog.CmdCancelUpgrade:      {can: (*Engine).canCancelUpgrade},
	catalog.CmdUseTech:            {can: (*Engine).canUseTech, with: (*Engine).useTechWith},
	catalog.CmdUseTechPosition:    {can: (*Engine).canUseTech, with: (*Engine).useTechPositionWith},
	catalog.CmdUseTechUnit:        {can: (*Engine).canUseTech, with: (*Engine).useTechUnitWith, target: true},
	catalog.CmdPlaceCOP:           {can: (*Engine).canPlaceCOP, with: (*Engine).placeCOPWith},
}

var grouped = [NumKinds]rule{
	catalog.CmdAttackMove:         {can: (*Engine).canAttackMoveGrouped, with: (*Engine).positionWith},
	catalog.CmdAttackUnit:         {can: (*Engine).canAttackUnitGrouped, with: (*Engine).attackUnitGroupedWith, target: true},
	catalog.CmdBuild:              {can: incapable},
	catalog.CmdBuildAddon:         {can: incapable},
	catalog.CmdTrain:              {can: (*Engine).canTrain, with: (*Engine).trainWith},
	catalog.CmdMorph:              {can: (*Engine).canMorph, with: (*Engine).morphWith},
	catalog.CmdResearch:           {can: incapable},
	catalog.CmdUpgrade:            {can: incapable},
	catalog.CmdSetRallyPosition:   {can: incapable},
	catalog.CmdSetRallyUnit:       {can: incapable},
	catalog.CmdMove:               {can: (*Engine).canMoveGrouped, with: (*Engine).positionWith},
	catalog.CmdPatrol:             {can: (*Engine).canMoveGrouped, with: (*Engine).positionWith},
	catalog.CmdHoldPosition:       {can: (*Engine).canHoldPosition},
	catalog.CmdStop:               {can: (*Engine).canStop},
	catalog.CmdFollow:             {can: (*Engine).canMove, with: (*Engine).followWith, target: true},
	catalog.CmdGather:             {can: (*Engine).canGather, with: (*Engine).gatherWith, target: true},
	catalog.CmdReturnCargo:        {can: (*Engine).canReturnCargo},
	catalog.CmdRepair:             {can: (*Engine).canRepair, with: (*Engine).repairWith, target: true},
	catalog.CmdBurrow:             {can: (*Engine).canBurrow},
	catalog.CmdUnburrow:           {can: (*Engine).canUnburrow},
	catalog.CmdCloak:              {can: (*Engine).canCloak},
	catalog.CmdDecloak:            {can: (*Engine).canDecloak},
	catalog.CmdSiege:              {can: (*Engine).canSiege},
	catalog.CmdUnsiege:            {can: (*Engine).canUnsiege},
	catalog.CmdLift:               {can: incapable},
	catalog.CmdLand:               {can: incapable},
	catalog.CmdLoad:               {can: (*Engine).canLoad, with: (*Engine).loadWith, target: true},
	catalog.CmdUnload:             {can: incapable},
	catalog.CmdUnloadAll:          {can: incapable},
	catalog.CmdUnloadAllPosition:  {can: (*Engine).canUnloadAllPosition, with: (*Engine).unloadAllPositionWith},
	catalog.CmdRightClickPosition: {can: (*Engine).canRightClickPositionGrouped, with: (*Engine).positionWith},
	catalog.CmdRightClickUnit:     {can: (*Engine).canRightClickUnitGrouped, with: (*Engine).rightClickUnitGroupedWith, target: true},
	catalog.CmdHaltConstruction:   {can: (*Engine).canHaltConstruction},
	catalog.CmdCancelConstruction: {can: incapable},
	catalog.CmdCancelAddon:        {can: incapable},
	catalog.CmdCancelTrain:        {can: incapable},
	catalog.CmdCancelTrainSlot:    {can: incapable},
	catalog.CmdCancelMorph:        {can: (*Engine).canCancelMorph},
	catalog.CmdCancelResearch:     {can: incapable},
	catalog.CmdCancelUpgrade:      {can: incapable},
	catalog.CmdUseTech:            {can: (*Engine).canUseTech, with: (*Engine).useTechWith},
	catalog.CmdUseTechPosition:    {can: (*Engine).canUseTech, with: (*Engine).useTechPositionWith},
	catalog.CmdUseTechUnit:        {can: (*Engine).canUseTech, with: (*Engine).useTechUnitWith, target: true},
	catalog.CmdPlaceCOP:           {can: incapable},
}

func validateTables() error {
	if err := validateTable("individual", &individual); err != nil {
		return err
	}
	return validateTable("grouped", &grouped)
}

func validateTable(name string, table *[NumKinds]rule) error {
	for k := range table {
		if table[k].can == nil {
			return fmt.Errorf("legality: %s table missing kind %s", name, Kind(k))
		}
	}
	return nil
}
