package record

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"
	"github.com/pgx-contrib/pgxtrace"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/cmd/util"
	"github.com/racetelemetry/laprecorder/pkg/config"
	"github.com/racetelemetry/laprecorder/pkg/db/postgres"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/sink"
	"github.com/racetelemetry/laprecorder/pkg/sink/file"
	"github.com/racetelemetry/laprecorder/pkg/sink/natssink"
	"github.com/racetelemetry/laprecorder/pkg/sink/pgsink"
	"github.com/racetelemetry/laprecorder/pkg/utils/broadcast"
)

// pipeline fans finished laps out to the enabled sinks.
type pipeline struct {
	records chan *model.LapRecord
	bc      broadcast.BroadcastServer[*model.LapRecord]
	sinks   []sink.Sink
	wg      sync.WaitGroup
	closers []func()
}

//nolint:funlen // by design
func newPipeline(sessionID uuid.UUID, logger *log.Logger) (*pipeline, error) {
	p := &pipeline{records: make(chan *model.LapRecord, 16)}

	autoSave := file.NewAutoSave(config.AutoSaveFolder)
	config.OnAutoSaveFolderChange(autoSave.SetDir)
	p.sinks = append(p.sinks, autoSave)

	if config.NatsURL != "" {
		nc, err := natssink.Connect(config.NatsURL)
		if err != nil {
			p.close()
			return nil, err
		}
		p.closers = append(p.closers, func() {
			if err := nc.Drain(); err != nil {
				log.Warn("could not drain nats connection", log.ErrorField(err))
			}
		})
		p.sinks = append(p.sinks, natssink.NewNatsSink(nc, config.NatsSubject,
			sessionID.String(), natssink.WithLogger(logger.Named("nats"))))
	}

	if config.EnableDB {
		pgTracer := pgxtrace.CompositeQueryTracer{
			postgres.NewMyTracer(util.NewSQLLogger(), log.DebugLevel),
		}
		if config.EnableTelemetry {
			pgTracer = append(pgTracer, postgres.NewOtlpTracer())
		}
		pool, err := postgres.InitWithUrl(config.DB, postgres.WithTracer(pgTracer))
		if err != nil {
			p.close()
			return nil, err
		}
		p.closers = append(p.closers, pool.Close)
		p.sinks = append(p.sinks, pgsink.NewPgSink(pool, sessionID))
	}

	p.bc = broadcast.NewBroadcastServer("laps", p.records,
		broadcast.WithListenerBuffer[*model.LapRecord](64))

	// sinks finish pending work after the recording was cancelled
	ctx := context.Background()
	for _, s := range p.sinks {
		ch := p.bc.Subscribe()
		p.wg.Add(1)
		go func(s sink.Sink) {
			defer p.wg.Done()
			sink.Consume(ctx, ch, s)
		}(s)
		log.Info("sink enabled", log.String("sink", s.Name()))
	}
	return p, nil
}

// shutdown waits until every published record was handled by all sinks.
// No record may be published afterwards.
func (p *pipeline) shutdown() {
	close(p.records)
	<-p.bc.Done()
	p.wg.Wait()
	p.close()
}

func (p *pipeline) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}
