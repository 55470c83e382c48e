package agents

import (
	"math/rand"

	"github.com/wricardo/fogquest/game/engine"
)

// Random moves in one of the four directions chosen uniformly at random
type Random struct {
	name string
	rng  *rand.Rand
}

// NewRandom creates a random agent; a nil rng falls back to a fixed seed.
func NewRandom(name string, rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Random{name: name, rng: rng}
}

func (a *Random) Name() string { return a.name }

func (a *Random) Decide(engine.Observation) engine.Direction {
	return engine.Directions[a.rng.Intn(len(engine.Directions))]
}
