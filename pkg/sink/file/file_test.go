package file

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racetelemetry/laprecorder/pkg/export"
	"github.com/racetelemetry/laprecorder/pkg/model"
)

func record() *model.LapRecord {
	c := model.NewLapCapture()
	c.TimeNormalized.Set(0, decimal.NewFromInt(0))
	c.TimeNormalized.Set(1, decimal.RequireFromString("16.67"))
	c.Series[model.ChannelSpeed] = model.Series{{X: 1, Y: decimal.NewFromInt(180)}}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	return &model.LapRecord{
		Index: 1, CapturedAt: at, Reason: model.ReasonLapComplete,
		SuggestedFileName: model.SuggestedFileName(1, at),
		Data:              c,
		Stats:             model.LapStats{SpeedTopKph: decimal.NewFromInt(180)},
	}
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/laps", 0o755))
	a := NewAutoSave("/laps", WithFs(fs))

	path, err := a.Save(record())
	require.NoError(t, err)
	assert.Equal(t, "/laps/lap_001_20240102_030405.json", path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	lap, err := export.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, lap.TimeNormalized.Map().Keys())
	assert.Equal(t, "180", lap.LapStats.SpeedTop.String())

	// second save of the same record gets a suffix
	path, err = a.Save(record())
	require.NoError(t, err)
	assert.Equal(t, "/laps/lap_001_20240102_030405_2.json", path)
}

func TestSaveWithoutFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"", "  ", "/missing"} {
		a := NewAutoSave(dir, WithFs(fs))
		_, err := a.Save(record())
		assert.ErrorIs(t, err, ErrNoFolder, dir)
		assert.Error(t, a.Store(context.Background(), record()))
	}
}

func TestSetDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/b", 0o755))
	a := NewAutoSave("", WithFs(fs))
	a.SetDir("/b")
	require.NoError(t, a.Store(context.Background(), record()))
	ok, err := afero.Exists(fs, "/b/lap_001_20240102_030405.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEnsureUniquePath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/x", 0o755))
	path, err := EnsureUniquePath(fs, "/x/lap.json")
	require.NoError(t, err)
	assert.Equal(t, "/x/lap.json", path)

	require.NoError(t, afero.WriteFile(fs, "/x/lap.json", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/x/lap_2.json", []byte("{}"), 0o644))
	path, err = EnsureUniquePath(fs, "/x/lap.json")
	require.NoError(t, err)
	assert.Equal(t, "/x/lap_3.json", path)
}

func TestEnsureUniquePathRandomSuffix(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/x", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/x/lap.json", []byte("{}"), 0o644))
	for i := 2; i <= maxSuffix; i++ {
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/x/lap_%d.json", i), nil, 0o644))
	}
	path, err := EnsureUniquePath(fs, "/x/lap.json")
	require.NoError(t, err)
	assert.Regexp(t, `^/x/lap_[0-9a-f]{32}\.json$`, path)
}
