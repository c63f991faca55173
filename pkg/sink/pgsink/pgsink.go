package pgsink

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/racetelemetry/laprecorder/log"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/repository"
	laprepos "github.com/racetelemetry/laprecorder/pkg/repository/lap"
)

// PgSink inserts every lap of a recording session into the lap table.
type PgSink struct {
	conn      repository.Querier
	sessionID uuid.UUID
	l         *log.Logger
}

func NewPgSink(conn repository.Querier, sessionID uuid.UUID) *PgSink {
	return &PgSink{
		conn:      conn,
		sessionID: sessionID,
		l:         log.Default().Named("pgsink"),
	}
}

func (p *PgSink) Name() string {
	return "postgres"
}

func (p *PgSink) SessionID() uuid.UUID {
	return p.sessionID
}

func (p *PgSink) Store(ctx context.Context, rec *model.LapRecord) error {
	ctx, span := otel.Tracer("lrec.sink").Start(ctx, "postgres.store")
	defer span.End()

	id, err := laprepos.Create(ctx, p.conn, p.sessionID, rec)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int("lap.id", id))
	p.l.Debug("lap inserted", log.Int("id", id), log.Int("index", rec.Index))
	return nil
}
