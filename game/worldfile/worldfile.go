// Package worldfile saves and loads authoritative maps.
//
// A map file holds the terrain as one string per row using the characters of
// engine.TileChar, the object placements, the goal and optionally the agents'
// starting cells. Files ending in .yaml or .yml are written as YAML, anything
// else as JSON.
package worldfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/fogquest/game/engine"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFile is returned when a map file cannot be turned back into a world
var ErrInvalidFile = errors.New("invalid map file")

// PlacedObject is one object together with its cell
type PlacedObject struct {
	Row      int               `json:"row" yaml:"row"`
	Col      int               `json:"col" yaml:"col"`
	Kind     engine.ObjectKind `json:"kind" yaml:"kind"`
	Delta    int               `json:"delta,omitempty" yaml:"delta,omitempty"`
	Strength int               `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// File is the on-disk projection of a world
type File struct {
	Height  int               `json:"height" yaml:"height"`
	Width   int               `json:"width" yaml:"width"`
	Rows    []string          `json:"rows" yaml:"rows"`
	Objects []PlacedObject    `json:"objects" yaml:"objects"`
	Goal    engine.Location   `json:"goal" yaml:"goal"`
	Starts  []engine.Location `json:"starts,omitempty" yaml:"starts,omitempty"`
}

// FromWorld projects a world and the agents' starting cells into a File.
// Objects are sorted row-major so the output is stable.
func FromWorld(w *engine.World, starts []engine.Location) *File {
	f := &File{
		Height: w.Height,
		Width:  w.Width,
		Rows:   make([]string, w.Height),
		Goal:   w.Goal,
		Starts: append([]engine.Location(nil), starts...),
	}
	for r, row := range w.Tiles {
		var sb strings.Builder
		for _, t := range row {
			sb.WriteByte(engine.TileChar(t))
		}
		f.Rows[r] = sb.String()
	}
	for loc, obj := range w.Objects {
		f.Objects = append(f.Objects, PlacedObject{
			Row: loc.Row, Col: loc.Col,
			Kind: obj.Kind, Delta: obj.Delta, Strength: obj.Strength,
		})
	}
	sort.Slice(f.Objects, func(i, j int) bool {
		if f.Objects[i].Row != f.Objects[j].Row {
			return f.Objects[i].Row < f.Objects[j].Row
		}
		return f.Objects[i].Col < f.Objects[j].Col
	})
	return f
}

// World rebuilds and validates the authoritative world described by the file
func (f *File) World() (*engine.World, error) {
	if f.Height <= 0 || f.Width <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidFile, f.Height, f.Width)
	}
	if len(f.Rows) != f.Height {
		return nil, fmt.Errorf("%w: height %d but %d rows", ErrInvalidFile, f.Height, len(f.Rows))
	}
	w := engine.NewWorld(f.Height, f.Width)
	for r, row := range f.Rows {
		if len(row) != f.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidFile, r, len(row), f.Width)
		}
		for c := 0; c < len(row); c++ {
			tile, err := engine.TileFromChar(row[c])
			if err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %v", ErrInvalidFile, r, c, err)
			}
			w.SetTile(engine.Location{Row: r, Col: c}, tile)
		}
	}
	for _, o := range f.Objects {
		loc := engine.Location{Row: o.Row, Col: o.Col}
		if _, dup := w.Objects[loc]; dup {
			return nil, fmt.Errorf("%w: two objects at %s", ErrInvalidFile, loc)
		}
		w.Objects[loc] = engine.Object{Kind: o.Kind, Delta: o.Delta, Strength: o.Strength}
	}
	w.Goal = f.Goal

	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	seen := make(map[engine.Location]int, len(f.Starts))
	for i, s := range f.Starts {
		if !w.InBounds(s) || !engine.Passable(w.TileAt(s)) {
			return nil, fmt.Errorf("%w: start %d at %s is not a passable cell", ErrInvalidFile, i, s)
		}
		if j, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: starts %d and %d share %s", ErrInvalidFile, j, i, s)
		}
		seen[s] = i
	}
	return w, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Marshal encodes the file as YAML or JSON depending on path
func (f *File) Marshal(path string) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(f)
	}
	return json.MarshalIndent(f, "", "  ")
}

// Unmarshal decodes a map file, picking the format from path
func Unmarshal(path string, data []byte) (*File, error) {
	var f File
	var err error
	if isYAML(path) {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &f, nil
}

// Save writes the world and starting cells to path, creating parent directories.
func Save(path string, w *engine.World, starts []engine.Location) error {
	data, err := FromWorld(w, starts).Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to encode map: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create map directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return nil
}

// Load reads a map file back into a validated world and its starting cells
func Load(path string) (*engine.World, []engine.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := Unmarshal(path, data)
	if err != nil {
		return nil, nil, err
	}
	w, err := f.World()
	if err != nil {
		return nil, nil, err
	}
	return w, f.Starts, nil
}
