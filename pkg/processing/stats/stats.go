package stats

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

var hundred = decimal.NewFromInt(100)

// Compute returns the summary of a finished capture. Empty series yield zero values.
func Compute(c *model.LapCapture) model.LapStats {
	speed := c.Channel(model.ChannelSpeed).Ys()
	return model.LapStats{
		SpeedTopKph:    top(speed),
		SpeedAvgKph:    mean(speed),
		ThrottleAvgPct: mean(c.Channel(model.ChannelThrottle).Ys()).Mul(hundred),
		BrakeAvgPct:    mean(c.Channel(model.ChannelBrake).Ys()).Mul(hundred),
	}
}

func top(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return lo.MaxBy(values, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Avg(values[0], values[1:]...)
}
