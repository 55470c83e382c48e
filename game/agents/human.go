package agents

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/fogquest/game/engine"
	"github.com/wricardo/fogquest/game/render"
)

// Human asks a person for every move, showing them the agent's private map first.
type Human struct {
	name string
	in   *bufio.Scanner
	out  io.Writer
}

// NewHuman creates an agent reading moves from in and writing prompts to out
func NewHuman(name string, in io.Reader, out io.Writer) *Human {
	return &Human{name: name, in: bufio.NewScanner(in), out: out}
}

func (a *Human) Name() string { return a.name }

// Decide prompts until a valid direction is entered. When the input ends it
// returns no direction, which the engine treats as a contract violation.
func (a *Human) Decide(obs engine.Observation) engine.Direction {
	fmt.Fprintln(a.out, render.Observation(obs))
	fmt.Fprintf(a.out, "%s at %s with %d resource\n", a.name, obs.Location, obs.Resource)

	for {
		fmt.Fprint(a.out, "Please enter a direction (N/S/E/W): ")
		if !a.in.Scan() {
			fmt.Fprintln(a.out)
			return ""
		}
		switch strings.ToUpper(strings.TrimSpace(a.in.Text())) {
		case "N":
			return engine.North
		case "S":
			return engine.South
		case "E":
			return engine.East
		case "W":
			return engine.West
		}
	}
}
