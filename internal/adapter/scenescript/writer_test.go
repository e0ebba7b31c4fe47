package scenescript

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

func testSource(id string) domain.WaterSource {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.WaterSource{
		ID:       id,
		Location: domain.Vector{X: 400, Y: -600, Z: 12.5},
		Series: []domain.DepthTimeEntry{
			{Timestamp: start, Depth: 0.5},
			{Timestamp: start.Add(time.Hour), Depth: 0.75},
			{Timestamp: start.Add(90 * time.Minute), Depth: 0.6},
		},
		GeneratedAt: start,
	}
}

func TestWriterCreateSceneObject(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, slog.Default())
	require.NoError(t, err)

	handle, err := w.CreateSceneObject(context.Background(), testSource("ws-01"))
	require.NoError(t, err)
	assert.Equal(t, "ws-01", handle)
	require.NoError(t, w.Close())

	t.Run("spawn command", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, CommandsFileName))
		require.NoError(t, err)

		var cmd Command
		require.NoError(t, json.Unmarshal(data, &cmd))
		assert.Equal(t, BlueprintClassPath, cmd.Blueprint)
		assert.Equal(t, SceneFolder, cmd.Folder)
		assert.Equal(t, "ws-01", cmd.ID)
		assert.Equal(t, domain.Vector{X: 400, Y: -600, Z: 12.5}, cmd.Location)
		assert.Equal(t, 0.5, cmd.Volume, "volume is the first depth of the series")
		assert.Equal(t, "DepthTime_ws-01.csv", cmd.CurveCSV)
	})

	t.Run("depth curve", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "DepthTime_ws-01.csv"))
		require.NoError(t, err)
		assert.Equal(t, "0,0.5\n3600,0.75\n5400,0.6\n", string(data))
	})
}

func TestWriterAppendsOneCommandPerSource(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, slog.Default())
	require.NoError(t, err)

	for _, id := range []string{"ws-01", "ws-02", "ws-03"} {
		_, err := w.CreateSceneObject(context.Background(), testSource(id))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	f, err := os.Open(filepath.Join(dir, CommandsFileName))
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var cmd Command
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &cmd))
		ids = append(ids, cmd.ID)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"ws-01", "ws-02", "ws-03"}, ids)
}

func TestWriterEmptySeries(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, slog.Default())
	require.NoError(t, err)

	src := testSource("ws-empty")
	src.Series = nil

	_, err = w.CreateSceneObject(context.Background(), src)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "DepthTime_ws-empty.csv"))
	require.NoError(t, err)
	assert.Empty(t, string(data))
}
