package roadnet

// Builder accumulates nodes and edges keyed by their source ids and
// produces a Graph with dense indices.
type Builder struct {
	nodes       []Node
	edges       []Edge
	nodeIndexes map[int64]int
	edgeIndexes map[int64]int
}

func NewBuilder() *Builder {
	return &Builder{
		nodeIndexes: make(map[int64]int),
		edgeIndexes: make(map[int64]int),
	}
}

// AddNode returns the index of n, inserting it when its id is new.
func (b *Builder) AddNode(n Node) int {
	if idx, ok := b.nodeIndexes[n.ID]; ok {
		return idx
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, n)
	b.nodeIndexes[n.ID] = idx
	return idx
}

// NodeIndex returns -1 for unknown ids.
func (b *Builder) NodeIndex(id int64) int {
	if idx, ok := b.nodeIndexes[id]; ok {
		return idx
	}
	return -1
}

// AddEdge returns the index of e, inserting it when its id is new.
func (b *Builder) AddEdge(e Edge) int {
	if idx, ok := b.edgeIndexes[e.ID]; ok {
		return idx
	}
	idx := len(b.edges)
	b.edges = append(b.edges, e)
	b.edgeIndexes[e.ID] = idx
	return idx
}

func (b *Builder) Graph() *Graph {
	return New(b.nodes, b.edges)
}
