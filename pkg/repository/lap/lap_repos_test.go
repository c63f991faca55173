//nolint:funlen // ok for tests
package lap

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/testsupport/testdb"
)

func initTestDb(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return testdb.InitTestDb(t)
}

func record(index int) *model.LapRecord {
	c := model.NewLapCapture()
	c.TimeNormalized.Set(0, decimal.Zero)
	c.TimeNormalized.Set(1, decimal.RequireFromString("14.29"))
	c.Series[model.ChannelSpeed] = model.Series{{X: 1, Y: decimal.NewFromInt(250)}}
	at := time.Date(2024, 6, 1, 12, 0, index, 0, time.UTC)
	return &model.LapRecord{
		Index: index, CapturedAt: at, Reason: model.ReasonLapComplete,
		SuggestedFileName: model.SuggestedFileName(index, at),
		Data:              c,
		Stats:             model.LapStats{SpeedTopKph: decimal.NewFromInt(250)},
	}
}

func TestCreateAndLoad(t *testing.T) {
	pool := initTestDb(t)
	ctx := context.Background()
	session := uuid.Must(uuid.NewV7())

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i := 1; i <= 3; i++ {
			if _, err := Create(ctx, tx, session, record(i)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	laps, err := LoadBySession(ctx, pool, session)
	require.NoError(t, err)
	require.Len(t, laps, 3)
	for i, l := range laps {
		assert.Equal(t, i+1, l.Index)
		assert.Equal(t, session, l.SessionID)
		assert.Equal(t, "lap-complete", l.Reason)
	}

	got, err := LoadByIndex(ctx, pool, session, 2)
	require.NoError(t, err)
	assert.Equal(t, "lap_002_20240601_120002.json", got.FileName)
	assert.True(t, got.CapturedAt.Equal(record(2).CapturedAt))
	lap, err := got.Lap()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, lap.TimeNormalized.Map().Keys())
	assert.Equal(t, "250", lap.LapStats.SpeedTop.String())

	_, err = LoadByIndex(ctx, pool, session, 9)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	n, err := DeleteBySession(ctx, pool, session)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDuplicateIndexIsRejected(t *testing.T) {
	pool := initTestDb(t)
	ctx := context.Background()
	session := uuid.Must(uuid.NewV7())
	_, err := Create(ctx, pool, session, record(1))
	require.NoError(t, err)
	_, err = Create(ctx, pool, session, record(1))
	assert.Error(t, err)
}
