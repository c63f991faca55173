package processing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/racetelemetry/laprecorder/log"
)

func (p *Processor) setupMetrics() {
	meter := otel.GetMeterProvider().Meter("lrec.processing")
	register := func(metricName, desc string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(valueProvider())
				return nil
			})); err != nil {
			p.log.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	for _, d := range []struct {
		name  string
		desc  string
		value func() int64
	}{
		{"lrec.samples.position", "Number of position samples", p.counters.positions.Load},
		{"lrec.samples.channel", "Number of channel samples", p.counters.channels.Load},
		{"lrec.samples.accepted", "Number of samples recorded", p.counters.accepted.Load},
		{"lrec.samples.dropped", "Number of samples dropped", p.counters.dropped.Load},
		{"lrec.laps.discarded", "Number of empty captures discarded", p.counters.discarded.Load},
		{"lrec.laps.completed", "Number of completed laps", p.counters.laps.Load},
		{"lrec.laps.unpublished", "Number of records not forwarded to sinks", p.counters.unpublished.Load},
	} {
		register(d.name, d.desc, d.value)
	}
}
