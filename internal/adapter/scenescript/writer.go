// Package scenescript writes spawn commands for an editor-side consumer: a
// JSON-lines command file plus one depth-time curve CSV per water source.
package scenescript

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/riverbed-labs/flood-source-etl/internal/domain"
)

// BlueprintClassPath is the actor class the editor consumer spawns for each
// water source.
const BlueprintClassPath = "/Game/FFChildren/BP_FluxModifierSourceActor_Child.BP_FluxModifierSourceActor_Child"

// SceneFolder is the outliner folder spawned actors are grouped under.
const SceneFolder = "/FluidFlux/Sources"

// CommandsFileName is the JSON-lines file the consumer tails.
const CommandsFileName = "spawn_commands.jsonl"

// Command is one spawn instruction. The curve CSV path is relative to the
// command file so the output directory can be moved as a unit.
type Command struct {
	Blueprint string        `json:"blueprint_class_path"`
	Folder    string        `json:"folder"`
	ID        string        `json:"id"`
	Location  domain.Vector `json:"location"`
	Volume    float64       `json:"volume"`
	CurveCSV  string        `json:"curve_csv"`
}

// Writer materializes water sources as spawn commands.
// It implements domain.SceneAuthor.
type Writer struct {
	dir    string
	file   *os.File
	logger *slog.Logger
}

// NewWriter creates the output directory and truncates the command file.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, CommandsFileName))
	if err != nil {
		return nil, fmt.Errorf("create command file: %w", err)
	}
	return &Writer{dir: dir, file: f, logger: logger}, nil
}

// CreateSceneObject writes the source's depth curve CSV and appends its
// spawn command, returning the source ID as the object handle.
func (w *Writer) CreateSceneObject(_ context.Context, src domain.WaterSource) (string, error) {
	curveName := "DepthTime_" + src.ID + ".csv"
	if err := writeCurve(filepath.Join(w.dir, curveName), src.Series); err != nil {
		return "", err
	}

	cmd := Command{
		Blueprint: BlueprintClassPath,
		Folder:    SceneFolder,
		ID:        src.ID,
		Location:  src.Location,
		Volume:    src.Volume(),
		CurveCSV:  curveName,
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("serialize spawn command %s: %w", src.ID, err)
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return "", fmt.Errorf("append spawn command %s: %w", src.ID, err)
	}

	w.logger.Debug("scene object written", "id", src.ID, "curve", curveName)
	return src.ID, nil
}

func (w *Writer) Close() error {
	return w.file.Close()
}

// writeCurve renders the depth series as (seconds since first entry, depth)
// rows, the curve format the actor's flux modifier imports.
func writeCurve(path string, series []domain.DepthTimeEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create curve %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if len(series) > 0 {
		start := series[0].Timestamp
		for _, entry := range series {
			row := []string{
				strconv.FormatFloat(entry.Timestamp.Sub(start).Seconds(), 'f', -1, 64),
				strconv.FormatFloat(entry.Depth, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				f.Close()
				return fmt.Errorf("write curve %s: %w", path, err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush curve %s: %w", path, err)
	}
	return f.Close()
}
