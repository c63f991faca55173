// Package samples builds sample streams for tests.
package samples

import (
	"github.com/shopspring/decimal"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

type Builder struct {
	samples []model.Sample
	lapNum  int
	msPerM  decimal.Decimal
}

func NewBuilder() *Builder {
	return &Builder{lapNum: 1, msPerM: decimal.NewFromInt(20)}
}

// Lap sets the lap number used for subsequent positions.
func (b *Builder) Lap(n int) *Builder {
	b.lapNum = n
	return b
}

// Position adds a position sample. The lap time is derived from the distance.
func (b *Builder) Position(dist float64) *Builder {
	d := decimal.NewFromFloat(dist)
	b.samples = append(b.samples, model.PositionSample{
		DistanceMeters: d,
		LapTimeMs:      d.Abs().Mul(b.msPerM),
		LapNumber:      b.lapNum,
	})
	return b
}

// Channel adds a channel sample with the given speed and fixed inputs.
func (b *Builder) Channel(speed int64) *Builder {
	b.samples = append(b.samples, model.ChannelSample{
		SpeedKph:     decimal.NewFromInt(speed),
		BrakeFrac:    decimal.RequireFromString("0.1"),
		ThrottleFrac: decimal.RequireFromString("0.9"),
		Gear:         5,
		SteerFrac:    decimal.Zero,
		DrsOn:        false,
	})
	return b
}

// Drive adds position and channel samples from..to (inclusive) in steps of step meters.
func (b *Builder) Drive(from, to, step int, speed int64) *Builder {
	for d := from; d <= to; d += step {
		b.Position(float64(d)).Channel(speed)
	}
	return b
}

func (b *Builder) Build() []model.Sample {
	return b.samples
}

// Chan returns a closed channel holding all samples.
func (b *Builder) Chan() <-chan model.Sample {
	ch := make(chan model.Sample, len(b.samples))
	for _, s := range b.samples {
		ch <- s
	}
	close(ch)
	return ch
}
