package scene

import "github.com/Carmen-Shannon/oxy-assets/common"

// NodeBuilderOption is a functional option for configuring a Node via NewNode.
type NodeBuilderOption func(*node)

// WithNodeName sets the name of the Node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithNodeName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithNodeScaling sets the initial local scale of the Node.
//
// Parameters:
//   - s: the scale along each axis
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithNodeScaling(s [3]float32) NodeBuilderOption {
	return func(n *node) {
		n.scaling = s
	}
}

// WithLocalBounds sets the geometry bounds carried by the Node. Nodes without geometry
// (pure transforms) keep an empty box.
//
// Parameters:
//   - b: the local-space bounds
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithLocalBounds(b common.BoundingBox) NodeBuilderOption {
	return func(n *node) {
		n.localBounds = b
		n.boundingInfo = b
	}
}

// WithChildren attaches child nodes at construction time.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, child := range children {
			if c, ok := child.(*node); ok && c != n {
				c.parent = n
				n.children = append(n.children, c)
			}
		}
	}
}
