package view

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{"time_normalized":{"0":0,"1":20},"speed":[{"x":0,"y":99.5},{"x":1,"y":101}],
"brake":[],"throttle":[],"gear":[{"x":0,"y":3}],"steer":[],"drs":[{"x":0,"y":0}],
"lap_stats":{"speed_top":101,"speed_average":100.3,"throttle_average":0,"brake_average":0}}`

func setupFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/lap_001.json", []byte(doc), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/in/lap_002.json", []byte(doc), 0o644))
	return fs
}

func TestRenderFiles(t *testing.T) {
	fs := setupFs(t)
	written, err := renderFiles(fs, "/out", false, []string{"/in/lap_001.json", "/in/lap_002.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/lap_001.html", "/out/lap_002.html"}, written)
	for _, f := range written {
		data, err := afero.ReadFile(fs, f)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<html")
	}
}

func TestRenderFilesCompare(t *testing.T) {
	fs := setupFs(t)
	written, err := renderFiles(fs, "/out", true, []string{"/in/lap_001.json", "/in/lap_002.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/compare.html"}, written)
	ok, err := afero.Exists(fs, "/out/compare.html")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRenderFilesInvalid(t *testing.T) {
	fs := setupFs(t)
	require.NoError(t, afero.WriteFile(fs, "/in/bad.json", []byte(`{}`), 0o644))
	_, err := renderFiles(fs, "/out", false, []string{"/in/bad.json"})
	assert.ErrorContains(t, err, "/in/bad.json")
	ok, _ := afero.Exists(fs, "/out")
	assert.False(t, ok)
}
