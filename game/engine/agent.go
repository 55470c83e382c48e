package engine

// Agent is the decision contract every participant must satisfy.
// Decide receives only the agent's own knowledge and must return one of the four directions.
type Agent interface {
	Name() string
	Decide(obs Observation) Direction
}

// DecisionFunc is a function satisfying the decision part of the contract
type DecisionFunc func(obs Observation) Direction

type funcAgent struct {
	name   string
	decide DecisionFunc
}

// NewFuncAgent wraps a DecisionFunc into an Agent
func NewFuncAgent(name string, decide DecisionFunc) Agent {
	return &funcAgent{name: name, decide: decide}
}

func (a *funcAgent) Name() string { return a.name }

func (a *funcAgent) Decide(obs Observation) Direction { return a.decide(obs) }
