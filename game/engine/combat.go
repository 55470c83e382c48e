package engine

// Rand is the source of the uniform draws used in combat.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// WinChance returns resource / (resource + strength).
// An agent with no resource has no chance; a zero-strength monster is always beaten.
func WinChance(resource, strength int) float64 {
	if resource <= 0 {
		return 0
	}
	if strength <= 0 {
		return 1
	}
	return float64(resource) / float64(resource+strength)
}

// AgentWinsFight decides a fight from a single uniform draw in [0, 1).
// The agent wins when the draw is strictly greater than the win chance,
// except that zero resource always loses and a zero-strength monster always loses.
func AgentWinsFight(resource, strength int, draw float64) bool {
	if resource <= 0 {
		return false
	}
	if strength <= 0 {
		return true
	}
	return draw > WinChance(resource, strength)
}
