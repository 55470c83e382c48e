package engine

import "errors"

var (
	// Configuration errors, detected before any turn runs
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrTooManyObjects = errors.New("too many objects for the map size")
	ErrNoAgents       = errors.New("at least one agent is required")
	ErrNotEnoughSpace = errors.New("not enough passable cells to place objects and agents")
	ErrInvalidWorld   = errors.New("invalid world")

	// ErrInvalidDecision is returned when an agent answers with anything but the four directions.
	ErrInvalidDecision = errors.New("agent returned an invalid direction")

	ErrInvalidDirection = errors.New("invalid direction")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownAgent     = errors.New("unknown agent index")
)
