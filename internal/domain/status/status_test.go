package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 9, 14, 8, 30, 0, 0, time.UTC)

func TestGenerate_Basic(t *testing.T) {
	subjects := []Subject{
		{Code: "1ESO_GeH", Codes: 120, Loaded: true},
		{Code: "2ESO_GeH", Codes: 80, Loaded: true},
		{Code: "1BACH_Hist", Codes: 60, Loaded: true},
	}

	data := Generate(subjects, 0, now)
	assert.Equal(t, 3, data.Subjects)
	assert.Equal(t, 3, data.Loaded)
	assert.Empty(t, data.Failed)
	assert.Equal(t, []string{"1ESO_GeH", "2ESO_GeH", "1BACH_Hist"}, data.TopSubjects)
	assert.Equal(t, now, data.UpdatedAt)
}

func TestGenerate_FailedAndInactive(t *testing.T) {
	subjects := []Subject{
		{Code: "ok", Codes: 10, Loaded: true},
		{Code: "zbroken", Error: "missing sheet CE"},
		{Code: "abroken", Error: "open: no such file"},
		{Code: "inactive"},
	}

	data := Generate(subjects, 4, now)
	assert.Equal(t, 4, data.Subjects)
	assert.Equal(t, 1, data.Loaded)
	assert.Equal(t, []string{"abroken", "zbroken"}, data.Failed)
	assert.Equal(t, uint64(4), data.Reloads)
	assert.Equal(t, []string{"ok"}, data.TopSubjects)
}

func TestGenerate_Empty(t *testing.T) {
	data := Generate(nil, 0, now)
	assert.Equal(t, 0, data.Subjects)
	assert.Equal(t, 0, data.Loaded)
	assert.Empty(t, data.TopSubjects)
}

func TestTopSubjects_LimitedAndTieBroken(t *testing.T) {
	subjects := []Subject{
		{Code: "d", Codes: 5, Loaded: true},
		{Code: "b", Codes: 9, Loaded: true},
		{Code: "a", Codes: 9, Loaded: true},
		{Code: "c", Codes: 7, Loaded: true},
		{Code: "empty", Codes: 0, Loaded: true},
	}

	top := topSubjects(subjects, 3)
	assert.Equal(t, []string{"a", "b", "c"}, top)
}

func TestWriteJSON_ReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), StatusFile)

	data := &StatusData{
		Port:        19042,
		Subjects:    2,
		Loaded:      1,
		Failed:      []string{"x"},
		TopSubjects: []string{"geh"},
		UpdatedAt:   now,
	}
	require.NoError(t, WriteJSON(path, data))

	loaded, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestWriteJSON_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), StatusFile)

	require.NoError(t, WriteJSON(path, &StatusData{Reloads: 1}))
	require.NoError(t, WriteJSON(path, &StatusData{Reloads: 2}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded StatusData
	require.NoError(t, json.Unmarshal(raw, &loaded))
	assert.Equal(t, uint64(2), loaded.Reloads)
}

func TestReadJSON_Missing(t *testing.T) {
	_, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
