package resample

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

// fraction channels are kept with this many decimal places
const fracPlaces = 3

// Upsert places p into s keeping X strictly increasing.
// A point above the last meter is appended and a point on an existing meter replaces it.
// A point below the last meter without an existing point is dropped, that meter has already been passed.
func Upsert(s model.Series, p model.Point) model.Series {
	n := len(s)
	if n == 0 || p.X > s[n-1].X {
		return append(s, p)
	}
	if i, found := slices.BinarySearchFunc(s, p.X, func(e model.Point, x int) int {
		return cmp.Compare(e.X, x)
	}); found {
		s[i] = p
	}
	return s
}

// Apply places the channel sample at meter x of every series of the capture.
func Apply(c *model.LapCapture, x int, cs model.ChannelSample) {
	for _, ch := range model.Channels() {
		c.Series[ch] = Upsert(c.Series[ch], model.Point{X: x, Y: Value(ch, cs)})
	}
}

// Value returns the series value of a channel for the given sample.
func Value(ch model.Channel, cs model.ChannelSample) decimal.Decimal {
	switch ch {
	case model.ChannelSpeed:
		return cs.SpeedKph
	case model.ChannelBrake:
		return cs.BrakeFrac.Round(fracPlaces)
	case model.ChannelThrottle:
		return cs.ThrottleFrac.Round(fracPlaces)
	case model.ChannelGear:
		return decimal.NewFromInt(int64(cs.Gear))
	case model.ChannelSteer:
		return cs.SteerFrac.Round(fracPlaces)
	case model.ChannelDrs:
		if cs.DrsOn {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case model.NumChannels:
	}
	return decimal.Zero
}
