package f1

// Packet layouts of the F1 23 and F1 24 UDP telemetry. All values are little endian.

const (
	PacketLapData      uint8 = 2
	PacketCarTelemetry uint8 = 6
)

const (
	Format2023 uint16 = 2023
	Format2024 uint16 = 2024
)

// NumCars is the number of car entries in every per-car packet.
const NumCars = 22

type Header struct {
	PacketFormat            uint16
	GameYear                uint8
	GameMajorVersion        uint8
	GameMinorVersion        uint8
	PacketVersion           uint8
	PacketID                uint8
	SessionUID              uint64
	SessionTime             float32
	FrameIdentifier         uint32
	OverallFrameIdentifier  uint32
	PlayerCarIndex          uint8
	SecondaryPlayerCarIndex uint8
}

const headerSize = 29

// LapData23 is the per-car entry of the lap data packet (F1 23).
type LapData23 struct {
	LastLapTimeInMS             uint32
	CurrentLapTimeInMS          uint32
	Sector1TimeInMS             uint16
	Sector1TimeMinutes          uint8
	Sector2TimeInMS             uint16
	Sector2TimeMinutes          uint8
	DeltaToCarInFrontInMS       uint16
	DeltaToRaceLeaderInMS       uint16
	LapDistance                 float32
	TotalDistance               float32
	SafetyCarDelta              float32
	CarPosition                 uint8
	CurrentLapNum               uint8
	PitStatus                   uint8
	NumPitStops                 uint8
	Sector                      uint8
	CurrentLapInvalid           uint8
	Penalties                   uint8
	TotalWarnings               uint8
	CornerCuttingWarnings       uint8
	NumUnservedDriveThroughPens uint8
	NumUnservedStopGoPens       uint8
	GridPosition                uint8
	DriverStatus                uint8
	ResultStatus                uint8
	PitLaneTimerActive          uint8
	PitLaneTimeInLaneInMS       uint16
	PitStopTimerInMS            uint16
	PitStopShouldServePen       uint8
}

const lapData23Size = 50

// LapData24 is the per-car entry of the lap data packet (F1 24).
type LapData24 struct {
	LastLapTimeInMS              uint32
	CurrentLapTimeInMS           uint32
	Sector1TimeMSPart            uint16
	Sector1TimeMinutesPart       uint8
	Sector2TimeMSPart            uint16
	Sector2TimeMinutesPart       uint8
	DeltaToCarInFrontMSPart      uint16
	DeltaToCarInFrontMinutesPart uint8
	DeltaToRaceLeaderMSPart      uint16
	DeltaToRaceLeaderMinutesPart uint8
	LapDistance                  float32
	TotalDistance                float32
	SafetyCarDelta               float32
	CarPosition                  uint8
	CurrentLapNum                uint8
	PitStatus                    uint8
	NumPitStops                  uint8
	Sector                       uint8
	CurrentLapInvalid            uint8
	Penalties                    uint8
	TotalWarnings                uint8
	CornerCuttingWarnings        uint8
	NumUnservedDriveThroughPens  uint8
	NumUnservedStopGoPens        uint8
	GridPosition                 uint8
	DriverStatus                 uint8
	ResultStatus                 uint8
	PitLaneTimerActive           uint8
	PitLaneTimeInLaneInMS        uint16
	PitStopTimerInMS             uint16
	PitStopShouldServePen        uint8
	SpeedTrapFastestSpeed        float32
	SpeedTrapFastestLap          uint8
}

const lapData24Size = 57

// CarTelemetry is the per-car entry of the car telemetry packet (F1 23 and F1 24).
type CarTelemetry struct {
	Speed                   uint16
	Throttle                float32
	Steer                   float32
	Brake                   float32
	Clutch                  uint8
	Gear                    int8
	EngineRPM               uint16
	Drs                     uint8
	RevLightsPercent        uint8
	RevLightsBitValue       uint16
	BrakesTemperature       [4]uint16
	TyresSurfaceTemperature [4]uint8
	TyresInnerTemperature   [4]uint8
	EngineTemperature       uint16
	TyresPressure           [4]float32
	SurfaceType             [4]uint8
}

const carTelemetrySize = 60
