package fasttree

// Node represents a single node in a regression tree.
// Internal nodes send a sample left when its feature value is <= Threshold.
type Node struct {
	LeftChild  int `json:"left"`  // -1 for leaves
	RightChild int `json:"right"` // -1 for leaves

	// Split information (internal nodes)
	SplitFeature int     `json:"feature"`
	Threshold    float64 `json:"threshold"`
	Gain         float64 `json:"gain,omitempty"`

	// Leaf information
	LeafValue float64 `json:"value"`
	Count     int     `json:"count"`
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// Tree represents a single decision tree in the ensemble
type Tree struct {
	ShrinkageRate float64 `json:"shrinkage"`
	Nodes         []Node  `json:"nodes"`
}

func newLeaf(value float64, count int) Node {
	return Node{LeftChild: -1, RightChild: -1, SplitFeature: -1, LeafValue: value, Count: count}
}

// Predict returns the shrunk leaf value reached by features.
func (t *Tree) Predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	nodeID := 0
	for {
		node := &t.Nodes[nodeID]
		if node.IsLeaf() {
			return node.LeafValue * t.ShrinkageRate
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeID = node.LeftChild
		} else {
			nodeID = node.RightChild
		}
	}
}

// NumLeaves counts the leaf nodes.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(id int) int
	walk = func(id int) int {
		node := &t.Nodes[id]
		if node.IsLeaf() {
			return 0
		}
		l, r := walk(node.LeftChild), walk(node.RightChild)
		if l > r {
			return l + 1
		}
		return r + 1
	}
	return walk(0)
}
