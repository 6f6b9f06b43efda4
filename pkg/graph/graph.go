package graph

import "sync"

// DefaultNodeColor is the display color assigned to nodes created without an
// explicit color hint.
const DefaultNodeColor = "#ffffff"

// Node is an entity in the graph. The ID doubles as the node's identity key:
// two mentions of the same text are the same node.
type Node struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	Annotation string `json:"annotation,omitempty"`
}

// Edge is a directional relationship between two nodes. At most one edge
// exists per ordered (source, target) pair; newer assertions overwrite the
// label rather than accumulating.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Snapshot is a full value copy of the graph at one instant, with nodes and
// edges in insertion order. Mutating a snapshot never affects the store.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type edgeKey struct {
	source string
	target string
}

// Store holds the entity nodes and relationship edges for one session.
// All operations are safe for concurrent use; merge order is the caller's
// responsibility.
type Store struct {
	mu        sync.Mutex
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[edgeKey]*Edge
	edgeOrder []edgeKey
}

// NewStore creates an empty graph store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nodes = make(map[string]*Node)
	s.nodeOrder = nil
	s.edges = make(map[edgeKey]*Edge)
	s.edgeOrder = nil
}

// Snapshot returns a value copy of the full current graph.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Nodes: make([]Node, 0, len(s.nodeOrder)),
		Edges: make([]Edge, 0, len(s.edgeOrder)),
	}
	for _, id := range s.nodeOrder {
		snap.Nodes = append(snap.Nodes, *s.nodes[id])
	}
	for _, key := range s.edgeOrder {
		snap.Edges = append(snap.Edges, *s.edges[key])
	}
	return snap
}

// Clear empties all nodes and edges.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Counts returns the current number of nodes and edges.
func (s *Store) Counts() (nodes, edges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes), len(s.edges)
}
