package model

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Channel int

const (
	ChannelSpeed Channel = iota
	ChannelBrake
	ChannelThrottle
	ChannelGear
	ChannelSteer
	ChannelDrs
	NumChannels
)

var channelNames = [NumChannels]string{"speed", "brake", "throttle", "gear", "steer", "drs"}

func (c Channel) String() string {
	if c < 0 || c >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Channels returns all channels in export order.
func Channels() []Channel {
	return []Channel{
		ChannelSpeed, ChannelBrake, ChannelThrottle, ChannelGear, ChannelSteer, ChannelDrs,
	}
}

// Point is a value at a whole meter of the lap.
type Point struct {
	X int
	Y decimal.Decimal
}

// Series holds at most one point per meter, ordered by X.
type Series []Point

func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Clone copies the points. decimal.Decimal is immutable, copying the value is enough.
func (s Series) Clone() Series {
	if s == nil {
		return Series{}
	}
	return slices.Clone(s)
}

// Ys returns the y values in series order.
func (s Series) Ys() []decimal.Decimal {
	ret := make([]decimal.Decimal, len(s))
	for i := range s {
		ret[i] = s[i].Y
	}
	return ret
}
