package shm

// Segment layout. Every record is addressed as base + index*stride and all
// integers are little-endian. Offsets inside a record are relative to its base.

const (
	Magic   uint32 = 0x4C445242 // "BRDL"
	Version uint32 = 3

	MaxPlayers      = 12
	MaxUnits        = 10000
	MaxRegions      = 5000
	MaxNeighbors    = 64
	MaxMapTiles     = 256
	MaxSplitTiles   = 5000
	MaxUnitCommands = 20000
	MaxGameCommands = 1000
	MaxShapes       = 40000
	MaxStrings      = 1024
	StringWidth     = 256
	PlayerNameWidth = 32
	TrainingSlots   = 5

	NoPlayer = -1
	NoUnit   = -1

	// SplitBit marks a packed tile region id as an index into the split table.
	SplitBit = 0x2000
)

// Header fields.
const (
	hdrMagic            = 0
	hdrVersion          = 4
	hdrFrame            = 8
	hdrLatencyFrames    = 12
	hdrSelf             = 16
	hdrPlayerCount      = 20
	hdrMapWidth         = 24
	hdrMapHeight        = 28
	hdrUnitCount        = 32
	hdrRegionCount      = 36
	hdrSplitCount       = 40
	hdrUnitCommandCount = 44
	hdrGameCommandCount = 48
	hdrShapeCount       = 52
	hdrStringCount      = 56
	hdrLatCom           = 60
	hdrInGame           = 64
	hdrPaused           = 68

	headerSize = 256
)

// Player record.
const (
	plName         = 0
	plRace         = plName + PlayerNameWidth
	plMinerals     = plRace + 4
	plGas          = plMinerals + 4
	plSupplyTotal  = plGas + 4
	plSupplyUsed   = plSupplyTotal + 4
	plFlags        = plSupplyUsed + 4
	plAlly         = plFlags + 4
	plEnemy        = plAlly + MaxPlayers
	plResearched   = plEnemy + MaxPlayers
	plResearching  = plResearched + maxTechs
	plUpgradeLevel = plResearching + maxTechs
	plUpgrading    = plUpgradeLevel + maxUpgrades
	plCompleted    = plUpgrading + maxUpgrades
	plAllCount     = plCompleted + 4*maxUnitTypes
	playerStride   = plAllCount + 4*maxUnitTypes
	maxTechs       = 47
	maxUpgrades    = 63
	maxUnitTypes   = 234
)

// Unit record.
const (
	unPlayer            = 0
	unType              = 4
	unX                 = 8
	unY                 = 12
	unHitPoints         = 16
	unShields           = 20
	unEnergy            = 24
	unResources         = 28
	unOrder             = 32
	unSecondaryOrder    = 36
	unOrderTarget       = 40
	unOrderTargetX      = 44
	unOrderTargetY      = 48
	unTarget            = 52
	unTargetX           = 56
	unTargetY           = 60
	unRallyX            = 64
	unRallyY            = 68
	unRallyUnit         = 72
	unBuildType         = 76
	unTech              = 80
	unUpgrade           = 84
	unRemainingBuild    = 88
	unRemainingTrain    = 92
	unRemainingResearch = 96
	unRemainingUpgrade  = 100
	unQueueCount        = 104
	unQueue             = 108
	unBuildUnit         = unQueue + 4*TrainingSlots
	unAddon             = unBuildUnit + 4
	unTransport         = unAddon + 4
	unHatchery          = unTransport + 4
	unCarrier           = unHatchery + 4
	unInterceptors      = unCarrier + 4
	unScarabs           = unInterceptors + 4
	unSpiderMines       = unScarabs + 4
	unLockdown          = unSpiderMines + 4
	unMaelstrom         = unLockdown + 4
	unStasis            = unMaelstrom + 4
	unFlags             = unStasis + 4
	unLastCommandFrame  = unFlags + 4
	unLastCommand       = unLastCommandFrame + 4
	unitStride          = 192
)

// Region record.
const (
	rgAccessible    = 0
	rgLeft          = 4
	rgTop           = 8
	rgRight         = 12
	rgBottom        = 16
	rgCenterX       = 20
	rgCenterY       = 24
	rgNeighborCount = 28
	rgNeighbors     = 32
	regionStride    = rgNeighbors + 4*MaxNeighbors
)

// Split tile record: mini-tile mask, then the two candidate regions.
const (
	spMask      = 0
	spRegion1   = 2
	spRegion2   = 4
	splitStride = 6
)

// Outbound records.
const (
	unitCommandStride = 24
	gameCommandStride = 12
	shapeStride       = 40
)

const mapTiles = MaxMapTiles * MaxMapTiles

// Section bases.
const (
	offPlayers      = headerSize
	offUnits        = offPlayers + MaxPlayers*playerStride
	offRegions      = offUnits + MaxUnits*unitStride
	offBuildable    = offRegions + MaxRegions*regionStride
	offWalkable     = offBuildable + mapTiles
	offExplored     = offWalkable + mapTiles
	offVisible      = offExplored + mapTiles
	offCreep        = offVisible + mapTiles
	offTileRegion   = offCreep + mapTiles
	offSplits       = offTileRegion + 2*mapTiles
	offUnitCommands = offSplits + MaxSplitTiles*splitStride
	offGameCommands = offUnitCommands + MaxUnitCommands*unitCommandStride
	offShapes       = offGameCommands + MaxGameCommands*gameCommandStride
	offStrings      = offShapes + MaxShapes*shapeStride
	Size            = offStrings + MaxStrings*StringWidth
)
