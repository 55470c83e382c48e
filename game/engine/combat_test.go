package engine

import (
	"math"
	"testing"
)

func TestWinChance(t *testing.T) {
	tests := []struct {
		resource, strength int
		want               float64
	}{
		{10, 10, 0.5},
		{3, 1, 0.75},
		{1, 3, 0.25},
		{0, 5, 0},
		{-2, 5, 0},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := WinChance(tt.resource, tt.strength); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WinChance(%d, %d) = %v, want %v", tt.resource, tt.strength, got, tt.want)
		}
	}
}

func TestAgentWinsFight(t *testing.T) {
	tests := []struct {
		name               string
		resource, strength int
		draw               float64
		want               bool
	}{
		{"draw above chance wins", 10, 10, 0.6, true},
		{"draw below chance loses", 10, 10, 0.4, false},
		{"draw equal to chance loses", 10, 10, 0.5, false},
		{"no resource always loses", 0, 3, 0.99, false},
		{"zero strength always wins", 4, 0, 0, true},
		{"zero draw loses", 1, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgentWinsFight(tt.resource, tt.strength, tt.draw); got != tt.want {
				t.Errorf("AgentWinsFight(%d, %d, %v) = %v, want %v", tt.resource, tt.strength, tt.draw, got, tt.want)
			}
		})
	}
}
