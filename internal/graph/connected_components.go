package graph

// ConnectedComponents groups nodes into connected components using a
// union-find structure. Structure-from-motion pipelines use this for
// building feature tracks from pairwise correspondences and for grouping
// views before pose estimation.
//
// An optional upper limit on component size is supported: large tracks are
// increasingly likely to contain outliers, so merges that would exceed the
// limit are refused and the edge's nodes stay in their current components.
type ConnectedComponents[T comparable] struct {
	maxSize int // 0 means unlimited
	nodes   map[T]root[T]
}

// root records the component a node belongs to. A node whose root id equals
// the node itself is the component's representative, and its size field is
// the component size.
type root[T comparable] struct {
	id   T
	size int
}

// New returns a ConnectedComponents with no limit on component size.
func New[T comparable]() *ConnectedComponents[T] {
	return &ConnectedComponents[T]{nodes: make(map[T]root[T])}
}

// NewWithMaxSize returns a ConnectedComponents that refuses merges which
// would grow a component beyond maxSize nodes. maxSize must be positive.
func NewWithMaxSize[T comparable](maxSize int) *ConnectedComponents[T] {
	if maxSize <= 0 {
		panic("graph: max component size must be positive")
	}
	return &ConnectedComponents[T]{maxSize: maxSize, nodes: make(map[T]root[T])}
}

// AddEdge connects two nodes. Unknown nodes are inserted as singleton
// components first. Nothing happens if the nodes already share a component,
// or if merging would exceed the configured size limit.
func (cc *ConnectedComponents[T]) AddEdge(node1, node2 T) {
	root1 := cc.findOrInsert(node1)
	root2 := cc.findOrInsert(node2)

	if root1.id == root2.id {
		return
	}
	if cc.maxSize > 0 && root1.size+root2.size > cc.maxSize {
		return
	}

	// Union by size: attach the smaller tree under the larger one.
	if root1.size < root2.size {
		root2.size += root1.size
		cc.nodes[root1.id] = root2
		cc.nodes[root2.id] = root2
	} else {
		root1.size += root2.size
		cc.nodes[root2.id] = root1
		cc.nodes[root1.id] = root1
	}
}

// Extract returns the disjoint components as a map from the component's
// representative node to all of its members (representative included).
func (cc *ConnectedComponents[T]) Extract() map[T][]T {
	components := make(map[T][]T)
	for node := range cc.nodes {
		r := cc.findRoot(node)
		components[r.id] = append(components[r.id], node)
	}
	return components
}

// Size returns the number of nodes seen so far.
func (cc *ConnectedComponents[T]) Size() int {
	return len(cc.nodes)
}

func (cc *ConnectedComponents[T]) findOrInsert(node T) root[T] {
	if _, ok := cc.nodes[node]; !ok {
		r := root[T]{id: node, size: 1}
		cc.nodes[node] = r
		return r
	}
	return cc.findRoot(node)
}

// findRoot walks up to the component representative, flattening the path so
// later lookups are near-constant.
func (cc *ConnectedComponents[T]) findRoot(node T) root[T] {
	parent := cc.nodes[node]
	if parent.id == node {
		return parent
	}

	r := cc.findRoot(parent.id)
	cc.nodes[node] = r
	return r
}
