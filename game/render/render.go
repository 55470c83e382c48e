// Package render draws worlds and agent views as text for terminals and traces.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wricardo/fogquest/game/engine"
)

// Glyphs for objects and agents; terrain uses engine.TileChar.
const (
	GlyphPowerUp = '+'
	GlyphMonster = 'M'
	GlyphBoss    = 'B'
	GlyphSelf    = '@'
)

type cellStyle int

const (
	styleDefault cellStyle = iota
	styleGrass
	styleSand
	styleMountain
	styleWall
	styleUnknown
	stylePowerUp
	styleMonster
	styleBoss
	styleAgent
)

var cellStyles = map[cellStyle]lipgloss.Style{
	styleDefault:  lipgloss.NewStyle(),
	styleGrass:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	styleSand:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	styleMountain: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	styleWall:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	styleUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("237")),
	stylePowerUp:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	styleMonster:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	styleBoss:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	styleAgent:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
}

var frame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

type cell struct {
	r     rune
	style cellStyle
}

// Grid is a rendered map before it is turned into a string
type Grid struct {
	cells [][]cell
}

func newGrid(tiles [][]engine.Tile) *Grid {
	g := &Grid{cells: make([][]cell, len(tiles))}
	for r, row := range tiles {
		g.cells[r] = make([]cell, len(row))
		for c, t := range row {
			g.cells[r][c] = cell{r: rune(engine.TileChar(t)), style: tileStyle(t)}
		}
	}
	return g
}

func tileStyle(t engine.Tile) cellStyle {
	switch t {
	case engine.Grass:
		return styleGrass
	case engine.Sand:
		return styleSand
	case engine.Mountain:
		return styleMountain
	case engine.Wall:
		return styleWall
	case engine.Unknown:
		return styleUnknown
	}
	return styleDefault
}

func (g *Grid) set(loc engine.Location, r rune, style cellStyle) {
	if loc.Row < 0 || loc.Row >= len(g.cells) || loc.Col < 0 || loc.Col >= len(g.cells[loc.Row]) {
		return
	}
	g.cells[loc.Row][loc.Col] = cell{r: r, style: style}
}

func (g *Grid) placeObjects(objects engine.ObjectMap) {
	for loc, obj := range objects {
		switch obj.Kind {
		case engine.KindPowerUp:
			g.set(loc, GlyphPowerUp, stylePowerUp)
		case engine.KindMonster:
			g.set(loc, GlyphMonster, styleMonster)
		case engine.KindBoss:
			g.set(loc, GlyphBoss, styleBoss)
		}
	}
}

// Plain returns the grid without any styling, one row per line.
func (g *Grid) Plain() string {
	var sb strings.Builder
	for r, row := range g.cells {
		if r > 0 {
			sb.WriteRune('\n')
		}
		for _, c := range row {
			sb.WriteRune(c.r)
		}
	}
	return sb.String()
}

// Styled returns the grid coloured for a terminal.
// Adjacent cells sharing a style are rendered as one run.
func (g *Grid) Styled() string {
	var sb strings.Builder
	for r, row := range g.cells {
		if r > 0 {
			sb.WriteRune('\n')
		}
		c := 0
		for c < len(row) {
			start := row[c].style
			var run strings.Builder
			for c < len(row) && row[c].style == start {
				run.WriteRune(row[c].r)
				c++
			}
			sb.WriteString(cellStyles[start].Render(run.String()))
		}
	}
	return sb.String()
}

// AgentGlyph is the marker of agent idx on the authoritative map
func AgentGlyph(idx int) rune {
	if idx < 10 {
		return rune('0' + idx)
	}
	return rune('a' + (idx-10)%26)
}

// WorldGrid draws the authoritative map with objects and every agent.
func WorldGrid(w *engine.World, agents []engine.AgentState) *Grid {
	g := newGrid(w.Tiles)
	g.placeObjects(w.Objects)
	for i, a := range agents {
		g.set(a.Location, AgentGlyph(i), styleAgent)
	}
	return g
}

// ObservationGrid draws what one agent knows, with the agent itself as '@'.
func ObservationGrid(obs engine.Observation) *Grid {
	g := newGrid(obs.Map)
	g.placeObjects(obs.Objects)
	g.set(obs.Location, GlyphSelf, styleAgent)
	return g
}

// World renders the authoritative map in a frame with a status line per agent.
func World(w *engine.World, agents []engine.AgentState) string {
	var lines []string
	for i, a := range agents {
		lines = append(lines, fmt.Sprintf("%c %-10s %s resource=%d", AgentGlyph(i), a.Name, a.Location, a.Resource))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		frame.Render(WorldGrid(w, agents).Styled()),
		strings.Join(lines, "\n"),
	)
}

// Observation renders an agent's private map in a frame.
func Observation(obs engine.Observation) string {
	return frame.Render(ObservationGrid(obs).Styled())
}

// Legend explains the glyphs used by the renderers
func Legend() string {
	return fmt.Sprintf("%c grass(1) %c sand(2) %c mountain(3) %c wall %c unknown %c power-up %c monster %c boss",
		engine.TileChar(engine.Grass), engine.TileChar(engine.Sand), engine.TileChar(engine.Mountain),
		engine.TileChar(engine.Wall), engine.TileChar(engine.Unknown), GlyphPowerUp, GlyphMonster, GlyphBoss)
}
