// Package inspect evaluates JSONPath expressions on exported laps.
package inspect

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

// Summary describes a valid export document.
type Summary struct {
	Points map[string]int // number of points per channel, plus time_normalized
	Stats  bool           // lap_stats present
}

// Validate parses data as export document and summarizes its content.
func Validate(data []byte) (*Summary, error) {
	lap, err := export.Parse(data)
	if err != nil {
		return nil, err
	}
	ret := &Summary{
		Points: map[string]int{"time_normalized": lap.TimeNormalized.Map().Len()},
		Stats:  lap.LapStats != nil,
	}
	for _, ch := range model.Channels() {
		ret.Points[ch.String()] = len(lap.Series(ch))
	}
	return ret, nil
}

// Query returns the results of the JSONPath expression expr on data.
func Query(data []byte, expr string) ([]any, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	path, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", expr, err)
	}
	return path.Get(obj), nil
}

// Format renders a query result as indented JSON.
func Format(v any) string {
	return oj.JSON(v, &oj.Options{Indent: 2})
}
