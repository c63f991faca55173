package model

import "github.com/shopspring/decimal"

// Sample is either a PositionSample or a ChannelSample.
// The set is closed, consumers are expected to switch on the concrete type.
type Sample interface {
	sample()
}

// PositionSample carries the lap position of the player car.
type PositionSample struct {
	DistanceMeters decimal.Decimal // may be negative before the start line
	LapTimeMs      decimal.Decimal
	LapNumber      int
}

// ChannelSample carries the driver inputs and car state of the player car.
// It has no distance of its own, it is placed at the last accepted distance.
type ChannelSample struct {
	SpeedKph     decimal.Decimal
	BrakeFrac    decimal.Decimal // 0..1
	ThrottleFrac decimal.Decimal // 0..1
	Gear         int
	SteerFrac    decimal.Decimal // -1..1
	DrsOn        bool
}

func (PositionSample) sample() {}
func (ChannelSample) sample()  {}

var (
	_ Sample = PositionSample{}
	_ Sample = ChannelSample{}
)
