package model

import (
	"github.com/aarondl/opt/omit"
	"github.com/shopspring/decimal"
)

// LapCapture is the lap currently being recorded.
// It is owned by the ingestion path and never shared.
type LapCapture struct {
	TimeNormalized *TimeNormalizedMap
	Series         [NumChannels]Series

	LastDistance  omit.Val[decimal.Decimal]
	LastLapNumber omit.Val[int]
}

func NewLapCapture() *LapCapture {
	c := &LapCapture{TimeNormalized: NewTimeNormalizedMap()}
	for i := range c.Series {
		c.Series[i] = Series{}
	}
	return c
}

func (c *LapCapture) Channel(ch Channel) Series {
	return c.Series[ch]
}

// Empty reports whether no meter has been recorded yet.
func (c *LapCapture) Empty() bool {
	return c.TimeNormalized.Len() == 0
}

// Clone returns a deep copy of the recorded data.
// The transient tracking fields are not copied.
func (c *LapCapture) Clone() *LapCapture {
	ret := &LapCapture{TimeNormalized: c.TimeNormalized.Clone()}
	for i := range c.Series {
		ret.Series[i] = c.Series[i].Clone()
	}
	return ret
}

// WholeMeter rounds a distance to the nearest meter, halves away from zero.
func WholeMeter(d decimal.Decimal) int {
	// decimal.Round rounds half away from zero
	return int(d.Round(0).IntPart())
}
