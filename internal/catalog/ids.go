package catalog

// Ids below match the engine's wire numbering; the segment stores them as-is.

type Race int32

const (
	RaceZerg    Race = 0
	RaceTerran  Race = 1
	RaceProtoss Race = 2
	RaceOther   Race = 3
	RaceNone    Race = 7
)

func (r Race) String() string {
	switch r {
	case RaceZerg:
		return "Zerg"
	case RaceTerran:
		return "Terran"
	case RaceProtoss:
		return "Protoss"
	case RaceOther:
		return "Other"
	default:
		return "None"
	}
}

type UnitType int32

const (
	TerranMarine             UnitType = 0
	TerranGhost              UnitType = 1
	TerranVulture            UnitType = 2
	TerranGoliath            UnitType = 3
	TerranSiegeTankTankMode  UnitType = 5
	TerranSCV                UnitType = 7
	TerranWraith             UnitType = 8
	TerranScienceVessel      UnitType = 9
	TerranDropship           UnitType = 11
	TerranBattlecruiser      UnitType = 12
	TerranVultureSpiderMine  UnitType = 13
	TerranNuclearMissile     UnitType = 14
	TerranSiegeTankSiegeMode UnitType = 30
	TerranFirebat            UnitType = 32
	SpellScannerSweep        UnitType = 33
	TerranMedic              UnitType = 34
	ZergLarva                UnitType = 35
	ZergEgg                  UnitType = 36
	ZergZergling             UnitType = 37
	ZergHydralisk            UnitType = 38
	ZergUltralisk            UnitType = 39
	ZergDrone                UnitType = 41
	ZergOverlord             UnitType = 42
	ZergMutalisk             UnitType = 43
	ZergGuardian             UnitType = 44
	ZergQueen                UnitType = 45
	ZergDefiler              UnitType = 46
	ZergScourge              UnitType = 47
	TerranValkyrie           UnitType = 58
	ZergCocoon               UnitType = 59
	ProtossCorsair           UnitType = 60
	ProtossDarkTemplar       UnitType = 61
	ZergDevourer             UnitType = 62
	ProtossDarkArchon        UnitType = 63
	ProtossProbe             UnitType = 64
	ProtossZealot            UnitType = 65
	ProtossDragoon           UnitType = 66
	ProtossHighTemplar       UnitType = 67
	ProtossArchon            UnitType = 68
	ProtossShuttle           UnitType = 69
	ProtossScout             UnitType = 70
	ProtossArbiter           UnitType = 71
	ProtossCarrier           UnitType = 72
	ProtossInterceptor       UnitType = 73
	ProtossReaver            UnitType = 83
	ProtossObserver          UnitType = 84
	ProtossScarab            UnitType = 85
	CritterRhynadon          UnitType = 89
	CritterBengalaas         UnitType = 90
	ZergLurkerEgg            UnitType = 97
	SpecialMapRevealer       UnitType = 101
	ZergLurker               UnitType = 103
	SpellDisruptionWeb       UnitType = 105
	TerranCommandCenter      UnitType = 106
	TerranComsatStation      UnitType = 107
	TerranNuclearSilo        UnitType = 108
	TerranSupplyDepot        UnitType = 109
	TerranRefinery           UnitType = 110
	TerranBarracks           UnitType = 111
	TerranAcademy            UnitType = 112
	TerranFactory            UnitType = 113
	TerranStarport           UnitType = 114
	TerranControlTower       UnitType = 115
	TerranScienceFacility    UnitType = 116
	TerranCovertOps          UnitType = 117
	TerranPhysicsLab         UnitType = 118
	TerranMachineShop        UnitType = 120
	TerranEngineeringBay     UnitType = 122
	TerranArmory             UnitType = 123
	TerranMissileTurret      UnitType = 124
	TerranBunker             UnitType = 125
	ZergHatchery             UnitType = 131
	ZergLair                 UnitType = 132
	ZergHive                 UnitType = 133
	ZergNydusCanal           UnitType = 134
	ZergHydraliskDen         UnitType = 135
	ZergDefilerMound         UnitType = 136
	ZergGreaterSpire         UnitType = 137
	ZergQueensNest           UnitType = 138
	ZergEvolutionChamber     UnitType = 139
	ZergUltraliskCavern      UnitType = 140
	ZergSpire                UnitType = 141
	ZergSpawningPool         UnitType = 142
	ZergCreepColony          UnitType = 143
	ZergSporeColony          UnitType = 144
	ZergSunkenColony         UnitType = 146
	ZergExtractor            UnitType = 149
	ProtossNexus             UnitType = 154
	ProtossRoboticsFacility  UnitType = 155
	ProtossPylon             UnitType = 156
	ProtossAssimilator       UnitType = 157
	ProtossObservatory       UnitType = 159
	ProtossGateway           UnitType = 160
	ProtossPhotonCannon      UnitType = 162
	ProtossCitadelOfAdun     UnitType = 163
	ProtossCyberneticsCore   UnitType = 164
	ProtossTemplarArchives   UnitType = 165
	ProtossForge             UnitType = 166
	ProtossStargate          UnitType = 167
	ProtossFleetBeacon       UnitType = 169
	ProtossArbiterTribunal   UnitType = 170
	ProtossRoboticsSupport   UnitType = 171
	ProtossShieldBattery     UnitType = 172
	ResourceMineralField     UnitType = 176
	ResourceVespeneGeyser    UnitType = 188
	SpecialZergFlagBeacon    UnitType = 197
	SpecialTerranFlagBeacon  UnitType = 198
	SpecialProtossFlagBeacon UnitType = 199
	SpellDarkSwarm           UnitType = 202
	PowerupFlag              UnitType = 215
	UnitTypeNone             UnitType = 228
	UnitTypeUnknown          UnitType = 229

	MaxUnitTypes = 234
)

type TechType int32

const (
	TechStimPacks         TechType = 0
	TechLockdown          TechType = 1
	TechEMPShockwave      TechType = 2
	TechSpiderMines       TechType = 3
	TechScannerSweep      TechType = 4
	TechTankSiegeMode     TechType = 5
	TechDefensiveMatrix   TechType = 6
	TechIrradiate         TechType = 7
	TechYamatoGun         TechType = 8
	TechCloakingField     TechType = 9
	TechPersonnelCloaking TechType = 10
	TechBurrowing         TechType = 11
	TechInfestation       TechType = 12
	TechSpawnBroodlings   TechType = 13
	TechDarkSwarm         TechType = 14
	TechPlague            TechType = 15
	TechConsume           TechType = 16
	TechEnsnare           TechType = 17
	TechParasite          TechType = 18
	TechPsionicStorm      TechType = 19
	TechHallucination     TechType = 20
	TechRecall            TechType = 21
	TechStasisField       TechType = 22
	TechArchonWarp        TechType = 23
	TechRestoration       TechType = 24
	TechDisruptionWeb     TechType = 25
	TechMindControl       TechType = 27
	TechDarkArchonMeld    TechType = 28
	TechFeedback          TechType = 29
	TechOpticalFlare      TechType = 30
	TechMaelstrom         TechType = 31
	TechLurkerAspect      TechType = 32
	TechHealing           TechType = 34
	TechNone              TechType = 44
	TechNuclearStrike     TechType = 45
	TechUnknown           TechType = 46

	MaxTechTypes = 47
)

type UpgradeType int32

const (
	UpgradeTerranInfantryArmor   UpgradeType = 0
	UpgradeZergCarapace          UpgradeType = 3
	UpgradeTerranInfantryWeapons UpgradeType = 7
	UpgradeZergMeleeAttacks      UpgradeType = 10
	UpgradeProtossGroundWeapons  UpgradeType = 15
	UpgradeU238Shells            UpgradeType = 16
	UpgradeIonThrusters          UpgradeType = 17
	UpgradeVentralSacs           UpgradeType = 24
	UpgradeAntennae              UpgradeType = 25
	UpgradePneumatizedCarapace   UpgradeType = 26
	UpgradeMetabolicBoost        UpgradeType = 27
	UpgradeAdrenalGlands         UpgradeType = 28
	UpgradeMuscularAugments      UpgradeType = 29
	UpgradeGroovedSpines         UpgradeType = 30
	UpgradeSingularityCharge     UpgradeType = 33
	UpgradeLegEnhancements       UpgradeType = 34
	UpgradeCarrierCapacity       UpgradeType = 52
	UpgradeNone                  UpgradeType = 61
	UpgradeUnknown               UpgradeType = 62

	MaxUpgradeTypes = 63
)

type Order int32

const (
	OrderDie                   Order = 0
	OrderStop                  Order = 1
	OrderGuard                 Order = 2
	OrderPlayerGuard           Order = 3
	OrderMove                  Order = 6
	OrderAttackUnit            Order = 10
	OrderAttackTile            Order = 12
	OrderAttackMove            Order = 14
	OrderNothing               Order = 23
	OrderPlaceBuilding         Order = 30
	OrderPlaceProtossBuilding  Order = 31
	OrderConstructingBuilding  Order = 33
	OrderRepair                Order = 34
	OrderPlaceAddon            Order = 36
	OrderBuildAddon            Order = 37
	OrderTrain                 Order = 38
	OrderRallyPointUnit        Order = 39
	OrderRallyPointTile        Order = 40
	OrderZergBirth             Order = 41
	OrderZergUnitMorph         Order = 42
	OrderZergBuildingMorph     Order = 43
	OrderIncompleteBuilding    Order = 44
	OrderFollow                Order = 49
	OrderBuildingLand          Order = 71
	OrderBuildingLiftOff       Order = 72
	OrderResearchTech          Order = 75
	OrderUpgrade               Order = 76
	OrderLarva                 Order = 77
	OrderHarvest1              Order = 79
	OrderMoveToGas             Order = 81
	OrderMoveToMinerals        Order = 85
	OrderReturnGas             Order = 84
	OrderReturnMinerals        Order = 90
	OrderEnterTransport        Order = 92
	OrderPickupIdle            Order = 93
	OrderPickupTransport       Order = 94
	OrderPickupBunker          Order = 95
	OrderSieging               Order = 98
	OrderUnsieging             Order = 99
	OrderArchonWarp            Order = 105
	OrderHoldPosition          Order = 107
	OrderCloak                 Order = 109
	OrderDecloak               Order = 110
	OrderUnload                Order = 111
	OrderMoveUnload            Order = 112
	OrderBurrowing             Order = 116
	OrderBurrowed              Order = 117
	OrderUnburrowing           Order = 118
	OrderPlaceMine             Order = 132
	OrderPatrol                Order = 152
	OrderCTFCOPInit            Order = 153
	OrderDarkArchonMeld        Order = 183
	OrderMedic                 Order = 175
	OrderNone                  Order = 189
	OrderUnknown               Order = 190
)

type CommandType int32

// Game-level commands written to the outbound command buffer.
const (
	CommandNone CommandType = iota
	CommandSetScreenPosition
	CommandPingMinimap
	CommandEnableFlag
	CommandPrintf
	CommandSendText
	CommandPauseGame
	CommandResumeGame
	CommandLeaveGame
	CommandRestartGame
	CommandSetLocalSpeed
	CommandSetLatCom
	CommandSetGui
	CommandSetFrameSkip
	CommandSetMap
	CommandSetAllies
	CommandSetVision
	CommandSetCommandOptimizerLevel
	CommandSetRevealAll
)

type ShapeType int32

const (
	ShapeNone ShapeType = iota
	ShapeText
	ShapeBox
	ShapeTriangle
	ShapeCircle
	ShapeEllipse
	ShapeDot
	ShapeLine
)

type CoordinateType int32

const (
	CoordinateNone CoordinateType = iota
	CoordinateScreen
	CoordinateMap
	CoordinateMouse
)

// UnitCommandType is the closed set of orders a unit can be given.
type UnitCommandType int32

const (
	CmdAttackMove UnitCommandType = iota
	CmdAttackUnit
	CmdBuild
	CmdBuildAddon
	CmdTrain
	CmdMorph
	CmdResearch
	CmdUpgrade
	CmdSetRallyPosition
	CmdSetRallyUnit
	CmdMove
	CmdPatrol
	CmdHoldPosition
	CmdStop
	CmdFollow
	CmdGather
	CmdReturnCargo
	CmdRepair
	CmdBurrow
	CmdUnburrow
	CmdCloak
	CmdDecloak
	CmdSiege
	CmdUnsiege
	CmdLift
	CmdLand
	CmdLoad
	CmdUnload
	CmdUnloadAll
	CmdUnloadAllPosition
	CmdRightClickPosition
	CmdRightClickUnit
	CmdHaltConstruction
	CmdCancelConstruction
	CmdCancelAddon
	CmdCancelTrain
	CmdCancelTrainSlot
	CmdCancelMorph
	CmdCancelResearch
	CmdCancelUpgrade
	CmdUseTech
	CmdUseTechPosition
	CmdUseTechUnit
	CmdPlaceCOP

	NumUnitCommandTypes

	UnitCommandNone    UnitCommandType = 44
	UnitCommandUnknown UnitCommandType = 45
)

var unitCommandNames = [NumUnitCommandTypes]string{
	"Attack_Move", "Attack_Unit", "Build", "Build_Addon", "Train", "Morph",
	"Research", "Upgrade", "Set_Rally_Position", "Set_Rally_Unit", "Move",
	"Patrol", "Hold_Position", "Stop", "Follow", "Gather", "Return_Cargo",
	"Repair", "Burrow", "Unburrow", "Cloak", "Decloak", "Siege", "Unsiege",
	"Lift", "Land", "Load", "Unload", "Unload_All", "Unload_All_Position",
	"Right_Click_Position", "Right_Click_Unit", "Halt_Construction",
	"Cancel_Construction", "Cancel_Addon", "Cancel_Train", "Cancel_Train_Slot",
	"Cancel_Morph", "Cancel_Research", "Cancel_Upgrade", "Use_Tech",
	"Use_Tech_Position", "Use_Tech_Unit", "Place_COP",
}

func (k UnitCommandType) Valid() bool { return k >= 0 && k < NumUnitCommandTypes }

func (k UnitCommandType) String() string {
	if !k.Valid() {
		if k == UnitCommandNone {
			return "None"
		}
		return "Unknown"
	}
	return unitCommandNames[k]
}
