// Package chart renders exported laps as html line charts.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

// Input is a lap shown in a page. Name is used as series name.
type Input struct {
	Name string
	Lap  *export.Lap
}

var yAxisNames = map[model.Channel]string{
	model.ChannelSpeed:    "km/h",
	model.ChannelBrake:    "brake",
	model.ChannelThrottle: "throttle",
	model.ChannelGear:     "gear",
	model.ChannelSteer:    "steer",
	model.ChannelDrs:      "drs",
}

// discrete channels are drawn as step lines
func isStep(ch model.Channel) bool {
	return ch == model.ChannelGear || ch == model.ChannelDrs
}

// NewPage creates a page with one chart per channel. All inputs are drawn into each chart.
func NewPage(title string, inputs ...Input) *components.Page {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout(components.PageFlexLayout)
	subtitle := ""
	if len(inputs) == 1 {
		subtitle = StatsLine(inputs[0].Lap.Stats())
	}
	for _, ch := range model.Channels() {
		page.AddCharts(NewLineChart(ch, subtitle, inputs...))
	}
	return page
}

// Render writes the html page for inputs to w.
func Render(w io.Writer, title string, inputs ...Input) error {
	return NewPage(title, inputs...).Render(w)
}

func NewLineChart(ch model.Channel, subtitle string, inputs ...Input) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: ch.String(), Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "m"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: yAxisNames[ch]}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
	)
	lineOpts := opts.LineChart{ShowSymbol: opts.Bool(false)}
	if isStep(ch) {
		lineOpts.Step = "end"
	}
	for _, in := range inputs {
		line.AddSeries(in.Name, lineData(in.Lap.Series(ch)),
			charts.WithLineChartOpts(lineOpts))
	}
	return line
}

func lineData(pts []export.Point) []opts.LineData {
	ret := make([]opts.LineData, 0, len(pts))
	for _, p := range pts {
		ret = append(ret, opts.LineData{Value: []any{p.X, p.Y.InexactFloat64()}})
	}
	return ret
}

// StatsLine formats the lap stats the way the subtitle shows them.
func StatsLine(s model.LapStats) string {
	return fmt.Sprintf("top %s km/h | avg %s km/h | throttle %s%% | brake %s%%",
		s.SpeedTopKph.Round(0).String(),
		s.SpeedAvgKph.StringFixed(1),
		s.ThrottleAvgPct.Round(0).String(),
		s.BrakeAvgPct.Round(0).String())
}
