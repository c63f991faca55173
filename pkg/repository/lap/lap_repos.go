package lap

// Note: the export document of a lap is stored in the column data

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
	"github.com/racetelemetry/laprecorder/pkg/repository"
)

type DbLap struct {
	ID         int
	SessionID  uuid.UUID
	Index      int
	CapturedAt time.Time
	Reason     string
	FileName   string
	Data       []byte
}

const selector = `select id, session_id, lap_index, captured_at, reason, file_name, data from lap`

// Create stores the export document of rec and returns the new id.
//
//nolint:whitespace // can't make both editor and linter happy
func Create(
	ctx context.Context, conn repository.Querier, sessionID uuid.UUID, rec *model.LapRecord,
) (int, error) {
	data, err := export.Marshal(export.FromRecord(rec))
	if err != nil {
		return 0, err
	}
	row := conn.QueryRow(ctx, `
	insert into lap (session_id, lap_index, captured_at, reason, file_name, data)
	values ($1,$2,$3,$4,$5,$6)
	returning id`,
		sessionID, rec.Index, rec.CapturedAt, string(rec.Reason), rec.SuggestedFileName, data)
	var id int
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert lap %d: %w", rec.Index, err)
	}
	return id, nil
}

//nolint:whitespace // can't make both editor and linter happy
func LoadBySession(ctx context.Context, conn repository.Querier, sessionID uuid.UUID) (
	[]*DbLap, error,
) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where session_id=$1 order by lap_index asc", selector),
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*DbLap, 0)
	for rows.Next() {
		var item DbLap
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

//nolint:whitespace // can't make both editor and linter happy
func LoadByIndex(
	ctx context.Context, conn repository.Querier, sessionID uuid.UUID, index int,
) (*DbLap, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where session_id=$1 and lap_index=$2", selector),
		sessionID, index)
	var item DbLap
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// deletes all laps of a session
func DeleteBySession(ctx context.Context, conn repository.Querier, sessionID uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_id=$1", sessionID)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// Lap parses the stored export document.
func (d *DbLap) Lap() (*export.Lap, error) {
	return export.Parse(d.Data)
}

func scan(item *DbLap, row pgx.Row) error {
	return row.Scan(
		&item.ID, &item.SessionID, &item.Index, &item.CapturedAt,
		&item.Reason, &item.FileName, &item.Data)
}
