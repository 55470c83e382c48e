package agents

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/wricardo/fogquest/game/engine"
)

// Agent kinds accepted in scenario configs
const (
	KindRandom   = "random"
	KindExplorer = "explorer"
	KindQueued   = "queued"
	KindHuman    = "human"
)

// ErrUnknownKind is returned by New for a kind it cannot build
var ErrUnknownKind = errors.New("unknown agent kind")

// Kinds lists every agent kind New understands
func Kinds() []string {
	return []string{KindRandom, KindExplorer, KindQueued, KindHuman}
}

// New builds the agent named in a scenario config.
// rng seeds the random choices of random and explorer agents.
func New(kind, name string, rng *rand.Rand) (engine.Agent, error) {
	switch strings.ToLower(kind) {
	case KindRandom, "":
		return NewRandom(name, rng), nil
	case KindExplorer:
		return NewExplorer(name, rng), nil
	case KindQueued:
		return NewQueued(name), nil
	case KindHuman:
		return NewHuman(name, os.Stdin, os.Stdout), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
