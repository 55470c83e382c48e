package engine

import "fmt"

// ObjectKind tags the closed set of objects that can sit on a map cell
type ObjectKind string

const (
	KindPowerUp ObjectKind = "power_up"
	KindMonster ObjectKind = "monster"
	KindBoss    ObjectKind = "boss"
)

// Object is a power-up, a static monster or the boss.
// Delta is only meaningful for power-ups and Strength only for monsters.
type Object struct {
	Kind     ObjectKind `json:"kind" yaml:"kind"`
	Delta    int        `json:"delta,omitempty" yaml:"delta,omitempty"`
	Strength int        `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// PowerUp returns a power-up granting delta resource on pickup
func PowerUp(delta int) Object {
	return Object{Kind: KindPowerUp, Delta: delta}
}

// StaticMonster returns a monster that fights agents entering its cell
func StaticMonster(strength int) Object {
	return Object{Kind: KindMonster, Strength: strength}
}

// Boss returns the object occupying the goal cell
func Boss() Object {
	return Object{Kind: KindBoss}
}

// Validate checks that the object is one of the known variants
func (o Object) Validate() error {
	switch o.Kind {
	case KindPowerUp, KindBoss:
		return nil
	case KindMonster:
		if o.Strength < 0 {
			return fmt.Errorf("monster strength must be non-negative, got %d", o.Strength)
		}
		return nil
	}
	return fmt.Errorf("unknown object kind %q", o.Kind)
}

func (o Object) String() string {
	switch o.Kind {
	case KindPowerUp:
		return fmt.Sprintf("power-up(+%d)", o.Delta)
	case KindMonster:
		return fmt.Sprintf("monster(%d)", o.Strength)
	case KindBoss:
		return "boss"
	}
	return string(o.Kind)
}

// ObjectMap places objects by location, at most one per cell
type ObjectMap map[Location]Object

// Clone returns an independent copy of the map
func (m ObjectMap) Clone() ObjectMap {
	out := make(ObjectMap, len(m))
	for loc, obj := range m {
		out[loc] = obj
	}
	return out
}

// Count returns how many objects of kind are placed
func (m ObjectMap) Count(kind ObjectKind) int {
	n := 0
	for _, obj := range m {
		if obj.Kind == kind {
			n++
		}
	}
	return n
}

// ObjectRemovedListener is notified whenever an object leaves the authoritative map
type ObjectRemovedListener interface {
	ObjectRemoved(loc Location)
}

// ObjectRemovedFunc adapts a plain function to ObjectRemovedListener
type ObjectRemovedFunc func(loc Location)

func (f ObjectRemovedFunc) ObjectRemoved(loc Location) { f(loc) }
