package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/racetelemetry/laprecorder/pkg/model"
)

var ErrMissingFields = errors.New("missing required fields")

// required top level fields of an export document
var requiredFields = []string{
	"time_normalized", "speed", "brake", "throttle", "gear", "steer", "drs",
}

type Point struct {
	X int    `json:"x"`
	Y Number `json:"y"`
}

type Stats struct {
	SpeedTop        Number `json:"speed_top"`
	SpeedAverage    Number `json:"speed_average"`
	ThrottleAverage Number `json:"throttle_average"`
	BrakeAverage    Number `json:"brake_average"`
}

// Lap is the export document of a completed lap.
type Lap struct {
	TimeNormalized TimeNormalized `json:"time_normalized"`
	Speed          []Point        `json:"speed"`
	Brake          []Point        `json:"brake"`
	Throttle       []Point        `json:"throttle"`
	Gear           []Point        `json:"gear"`
	Steer          []Point        `json:"steer"`
	Drs            []Point        `json:"drs"`
	LapStats       *Stats         `json:"lap_stats,omitempty"`
}

func FromRecord(r *model.LapRecord) *Lap {
	ret := &Lap{
		TimeNormalized: TimeNormalized{m: r.Data.TimeNormalized},
		LapStats: &Stats{
			SpeedTop:        NewNumber(r.Stats.SpeedTopKph.Round(0)),
			SpeedAverage:    NewNumber(r.Stats.SpeedAvgKph.Round(1)),
			ThrottleAverage: NewNumber(r.Stats.ThrottleAvgPct.Round(0)),
			BrakeAverage:    NewNumber(r.Stats.BrakeAvgPct.Round(0)),
		},
	}
	for _, ch := range model.Channels() {
		*ret.series(ch) = toPoints(r.Data.Channel(ch))
	}
	return ret
}

// Capture converts the document back into capture data.
func (l *Lap) Capture() *model.LapCapture {
	ret := model.NewLapCapture()
	ret.TimeNormalized = l.TimeNormalized.Map().Clone()
	for _, ch := range model.Channels() {
		ret.Series[ch] = fromPoints(*l.series(ch))
	}
	return ret
}

// Stats returns the exported statistics, zero values if the document has none.
func (l *Lap) Stats() model.LapStats {
	if l.LapStats == nil {
		return model.LapStats{}
	}
	return model.LapStats{
		SpeedTopKph:    l.LapStats.SpeedTop.Decimal,
		SpeedAvgKph:    l.LapStats.SpeedAverage.Decimal,
		ThrottleAvgPct: l.LapStats.ThrottleAverage.Decimal,
		BrakeAvgPct:    l.LapStats.BrakeAverage.Decimal,
	}
}

func (l *Lap) Series(ch model.Channel) []Point {
	return *l.series(ch)
}

func (l *Lap) series(ch model.Channel) *[]Point {
	switch ch {
	case model.ChannelSpeed:
		return &l.Speed
	case model.ChannelBrake:
		return &l.Brake
	case model.ChannelThrottle:
		return &l.Throttle
	case model.ChannelGear:
		return &l.Gear
	case model.ChannelSteer:
		return &l.Steer
	case model.ChannelDrs:
		return &l.Drs
	case model.NumChannels:
	}
	panic(fmt.Sprintf("unknown channel %d", ch))
}

func Marshal(l *Lap) ([]byte, error) {
	return json.Marshal(l)
}

func MarshalIndent(l *Lap) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Parse reads an export document. All series and the time map must be present.
func Parse(data []byte) (*Lap, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil, errors.New("document is null")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse lap: %w", err)
	}
	missing := lo.Filter(requiredFields, func(f string, _ int) bool {
		v, ok := raw[f]
		return !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ","))
	}
	ret := &Lap{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("parse lap: %w", err)
	}
	return ret, nil
}

func toPoints(s model.Series) []Point {
	return lo.Map(s, func(p model.Point, _ int) Point {
		return Point{X: p.X, Y: NewNumber(p.Y)}
	})
}

func fromPoints(pts []Point) model.Series {
	return lo.Map(pts, func(p Point, _ int) model.Point {
		return model.Point{X: p.X, Y: p.Y.Decimal}
	})
}
