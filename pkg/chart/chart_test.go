package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

func sampleLap(t *testing.T) *export.Lap {
	t.Helper()
	c := model.NewLapCapture()
	c.TimeNormalized.Set(0, decimal.NewFromInt(0))
	c.TimeNormalized.Set(1, decimal.NewFromInt(20))
	for ch := range model.NumChannels {
		c.Series[ch] = model.Series{
			{X: 0, Y: decimal.NewFromInt(100)},
			{X: 1, Y: decimal.RequireFromString("200.5")},
		}
	}
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &model.LapRecord{
		Index: 1, CapturedAt: at, Reason: model.ReasonLapComplete, Data: c,
		Stats: model.LapStats{
			SpeedTopKph:    decimal.RequireFromString("200.5"),
			SpeedAvgKph:    decimal.RequireFromString("150.25"),
			ThrottleAvgPct: decimal.NewFromInt(80),
			BrakeAvgPct:    decimal.RequireFromString("9.6"),
		},
	}
	return export.FromRecord(rec)
}

func TestNewLineChart(t *testing.T) {
	l := sampleLap(t)
	line := NewLineChart(model.ChannelSpeed, "sub", Input{Name: "a", Lap: l}, Input{Name: "b", Lap: l})
	require.Len(t, line.MultiSeries, 2)
	assert.Equal(t, "a", line.MultiSeries[0].Name)
	assert.Nil(t, line.MultiSeries[0].Step)
	data, ok := line.MultiSeries[1].Data.([]opts.LineData)
	require.True(t, ok)
	require.Len(t, data, 2)
	assert.Equal(t, []any{1, 200.5}, data[1].Value)
}

func TestStepChannels(t *testing.T) {
	l := sampleLap(t)
	for _, ch := range model.Channels() {
		line := NewLineChart(ch, "", Input{Name: "lap", Lap: l})
		if ch == model.ChannelGear || ch == model.ChannelDrs {
			assert.Equal(t, "end", line.MultiSeries[0].Step, ch.String())
		} else {
			assert.Nil(t, line.MultiSeries[0].Step, ch.String())
		}
	}
}

func TestStatsLine(t *testing.T) {
	assert.Equal(t,
		"top 201 km/h | avg 150.3 km/h | throttle 80% | brake 10%",
		StatsLine(sampleLap(t).Stats()))
}

func TestRender(t *testing.T) {
	l := sampleLap(t)
	page := NewPage("lap one", Input{Name: "lap", Lap: l})
	assert.Len(t, page.Charts, int(model.NumChannels))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "lap one", Input{Name: "lap", Lap: l}))
	assert.Contains(t, buf.String(), "lap one")
	assert.Contains(t, buf.String(), "throttle")
}
