package graph

// Delta describes the incremental change produced by one Merge call. Applied
// holds the well-formed assertions in the order they were applied; viewers
// replaying them with the same merge rules reach the same graph state.
type Delta struct {
	Applied []Assertion `json:"data"`

	NodesCreated int `json:"-"`
	EdgesCreated int `json:"-"`
	EdgesUpdated int `json:"-"`
	Recolored    int `json:"-"`
	Skipped      int `json:"-"`
}

// Empty reports whether the merge applied nothing.
func (d Delta) Empty() bool {
	return len(d.Applied) == 0
}

// Merge applies assertions in order. Later assertions touching the same node
// or edge override earlier ones. Relations auto-create missing endpoint nodes
// with the default color before the edge is written; recolors of unknown
// entities create the node with the given color. Merge never deletes, and
// re-applying an identical sequence produces no further change.
//
// Malformed assertions are skipped individually and never abort the rest of
// the batch.
func (s *Store) Merge(assertions []Assertion) Delta {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := Delta{}
	for _, a := range assertions {
		if err := a.Validate(); err != nil {
			delta.Skipped++
			continue
		}

		switch a.Kind {
		case KindRelation:
			s.ensureNode(a.Source, DefaultNodeColor, &delta)
			s.ensureNode(a.Target, DefaultNodeColor, &delta)

			key := edgeKey{source: a.Source, target: a.Target}
			if edge, ok := s.edges[key]; ok {
				if edge.Label != a.Relation {
					edge.Label = a.Relation
					delta.EdgesUpdated++
				}
			} else {
				s.edges[key] = &Edge{Source: a.Source, Target: a.Target, Label: a.Relation}
				s.edgeOrder = append(s.edgeOrder, key)
				delta.EdgesCreated++
			}

		case KindRecolor:
			if node, ok := s.nodes[a.Entity]; ok {
				if node.Color != a.Color {
					node.Color = a.Color
					delta.Recolored++
				}
			} else {
				s.ensureNode(a.Entity, a.Color, &delta)
			}
		}

		delta.Applied = append(delta.Applied, a)
	}
	return delta
}

// ensureNode creates the node if absent, using its own ID as display text.
func (s *Store) ensureNode(id, color string, delta *Delta) {
	if _, ok := s.nodes[id]; ok {
		return
	}
	s.nodes[id] = &Node{ID: id, Label: id, Color: color}
	s.nodeOrder = append(s.nodeOrder, id)
	delta.NodesCreated++
}
