// Package sink forwards completed laps to persistence targets.
package sink

import (
	"context"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

// Sink stores a completed lap. Errors are reported to the caller only,
// they never affect the recording.
type Sink interface {
	Name() string
	Store(ctx context.Context, rec *model.LapRecord) error
}

// Consume passes every record of ch to s until ch is closed.
func Consume(ctx context.Context, ch <-chan *model.LapRecord, s Sink) {
	l := log.Default().Named("sink").Named(s.Name())
	for rec := range ch {
		if err := s.Store(ctx, rec); err != nil {
			l.Error("could not store lap",
				log.Int("index", rec.Index),
				log.String("file", rec.SuggestedFileName),
				log.ErrorField(err))
			continue
		}
		l.Debug("lap stored", log.Int("index", rec.Index))
	}
	l.Debug("sink finished")
}
