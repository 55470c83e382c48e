package engine

// Knowledge is one agent's private, partial view of the world
type Knowledge struct {
	Map     [][]Tile  `json:"map"`
	Objects ObjectMap `json:"objects"`
}

// NewKnowledge creates an all-unknown private map with no known objects
func NewKnowledge(height, width int) *Knowledge {
	m := make([][]Tile, height)
	for r := range m {
		m[r] = make([]Tile, width)
		for c := range m[r] {
			m[r][c] = Unknown
		}
	}
	return &Knowledge{Map: m, Objects: make(ObjectMap)}
}

// Reveal updates the knowledge with everything visible from at.
// Terrain only goes from Unknown to revealed; object snapshots are overwritten.
func (k *Knowledge) Reveal(world *World, at Location) {
	for _, n := range world.Neighbors(at) {
		if k.Map[n.Row][n.Col] == Unknown {
			k.Map[n.Row][n.Col] = world.TileAt(n)
		}
		if obj, ok := world.Objects[n]; ok {
			k.Objects[n] = obj
		}
	}
}

// Revealed counts cells that are no longer unknown
func (k *Knowledge) Revealed() int {
	n := 0
	for _, row := range k.Map {
		for _, t := range row {
			if t != Unknown {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy
func (k *Knowledge) Clone() *Knowledge {
	m := make([][]Tile, len(k.Map))
	for r := range k.Map {
		m[r] = append([]Tile(nil), k.Map[r]...)
	}
	return &Knowledge{Map: m, Objects: k.Objects.Clone()}
}

// KnowledgeStore owns the private knowledge of every agent, indexed by registration order.
// It subscribes to the world so consumed objects are retracted from every agent.
type KnowledgeStore struct {
	Agents []*Knowledge `json:"agents"`
}

// NewKnowledgeStore creates empty knowledge for n agents on a height x width map
func NewKnowledgeStore(n, height, width int) *KnowledgeStore {
	ks := &KnowledgeStore{Agents: make([]*Knowledge, n)}
	for i := range ks.Agents {
		ks.Agents[i] = NewKnowledge(height, width)
	}
	return ks
}

// Clone returns a deep copy of every agent's knowledge
func (ks *KnowledgeStore) Clone() *KnowledgeStore {
	out := &KnowledgeStore{Agents: make([]*Knowledge, len(ks.Agents))}
	for i, k := range ks.Agents {
		out.Agents[i] = k.Clone()
	}
	return out
}

// Refresh reveals the surroundings of at for agent idx only
func (ks *KnowledgeStore) Refresh(idx int, world *World, at Location) {
	ks.Agents[idx].Reveal(world, at)
}

// ObjectRemoved purges loc from every agent's object snapshots
func (ks *KnowledgeStore) ObjectRemoved(loc Location) {
	for _, k := range ks.Agents {
		delete(k.Objects, loc)
	}
}

// Get returns the knowledge of agent idx
func (ks *KnowledgeStore) Get(idx int) (*Knowledge, error) {
	if idx < 0 || idx >= len(ks.Agents) {
		return nil, ErrUnknownAgent
	}
	return ks.Agents[idx], nil
}

// Observation is the read-only input handed to an agent's decision function.
// Every field is a copy; mutating it has no effect on the game.
type Observation struct {
	AgentIndex int       `json:"agent_index"`
	Location   Location  `json:"location"`
	Resource   int       `json:"resource"`
	Map        [][]Tile  `json:"map"`
	Objects    ObjectMap `json:"objects"`
}

// Height of the observed map
func (o Observation) Height() int { return len(o.Map) }

// Width of the observed map
func (o Observation) Width() int {
	if len(o.Map) == 0 {
		return 0
	}
	return len(o.Map[0])
}

// TileAt returns the known terrain at loc, or Wall when loc is off the map.
func (o Observation) TileAt(loc Location) Tile {
	if loc.Row < 0 || loc.Row >= o.Height() || loc.Col < 0 || loc.Col >= o.Width() {
		return Wall
	}
	return o.Map[loc.Row][loc.Col]
}

// Observation builds the snapshot for agent idx standing at loc with resource
func (ks *KnowledgeStore) Observation(idx int, loc Location, resource int) Observation {
	snap := ks.Agents[idx].Clone()
	return Observation{
		AgentIndex: idx,
		Location:   loc,
		Resource:   resource,
		Map:        snap.Map,
		Objects:    snap.Objects,
	}
}
