package worldfile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wricardo/fogquest/game/engine"
)

func testWorld() *engine.World {
	w := engine.NewWorld(3, 4)
	w.SetTile(engine.Location{Row: 0, Col: 3}, engine.Wall)
	w.SetTile(engine.Location{Row: 1, Col: 1}, engine.Sand)
	w.SetTile(engine.Location{Row: 2, Col: 0}, engine.Mountain)
	w.Goal = engine.Location{Row: 2, Col: 3}
	w.Objects[w.Goal] = engine.Boss()
	w.Objects[engine.Location{Row: 1, Col: 2}] = engine.PowerUp(3)
	w.Objects[engine.Location{Row: 2, Col: 1}] = engine.StaticMonster(4)
	return w
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	starts := []engine.Location{{Row: 0, Col: 0}, {Row: 1, Col: 3}}

	for _, name := range []string{"map.json", "map.yaml", "nested/dir/map.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			w := testWorld()
			if err := Save(path, w, starts); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, gotStarts, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(loaded.Tiles, w.Tiles) {
				t.Errorf("Tiles differ:\n%v\n%v", loaded.Tiles, w.Tiles)
			}
			if !reflect.DeepEqual(loaded.Objects, w.Objects) {
				t.Errorf("Objects differ: %v vs %v", loaded.Objects, w.Objects)
			}
			if loaded.Goal != w.Goal {
				t.Errorf("Goal %s, want %s", loaded.Goal, w.Goal)
			}
			if !reflect.DeepEqual(gotStarts, starts) {
				t.Errorf("Starts %v, want %v", gotStarts, starts)
			}
		})
	}
}

func TestYAMLIsHumanReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := Save(path, testWorld(), nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, want := range []string{"rows:", "kind: boss", "strength: 4", "goal:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in:\n%s", want, data)
		}
	}
}

func TestFileWorldErrors(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"negative width", File{Height: 1, Width: -1, Rows: []string{""}}},
		{"zero height", File{Height: 0, Width: 2}},
		{"row count", File{Height: 3, Width: 2, Rows: []string{"..", ".."}}},
		{"row width", File{Height: 2, Width: 2, Rows: []string{"..", "."}}},
		{"bad char", File{Height: 2, Width: 2, Rows: []string{"..", ".x"}}},
		{"no boss", File{Height: 2, Width: 2, Rows: []string{"..", ".."}, Goal: engine.Location{Row: 1, Col: 1}}},
		{"duplicate object", File{Height: 2, Width: 2, Rows: []string{"..", ".."},
			Objects: []PlacedObject{{Row: 1, Col: 1, Kind: engine.KindBoss}, {Row: 1, Col: 1, Kind: engine.KindPowerUp, Delta: 1}},
			Goal:    engine.Location{Row: 1, Col: 1}}},
		{"start on wall", File{Height: 2, Width: 2, Rows: []string{"#.", ".."},
			Objects: []PlacedObject{{Row: 1, Col: 1, Kind: engine.KindBoss}},
			Goal:    engine.Location{Row: 1, Col: 1},
			Starts:  []engine.Location{{Row: 0, Col: 0}}}},
		{"shared start", File{Height: 2, Width: 2, Rows: []string{"..", ".."},
			Objects: []PlacedObject{{Row: 1, Col: 1, Kind: engine.KindBoss}},
			Goal:    engine.Location{Row: 1, Col: 1},
			Starts:  []engine.Location{{Row: 0, Col: 1}, {Row: 0, Col: 1}}}},
		{"unknown tile", File{Height: 2, Width: 2, Rows: []string{"?.", ".."},
			Objects: []PlacedObject{{Row: 1, Col: 1, Kind: engine.KindBoss}},
			Goal:    engine.Location{Row: 1, Col: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.file.World(); !errors.Is(err, ErrInvalidFile) {
				t.Errorf("Expected ErrInvalidFile, got %v", err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := Load(filepath.Join(dir, "missing.json")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(bad); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("Expected ErrInvalidFile, got %v", err)
	}
}
