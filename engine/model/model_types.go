package model

import (
	"github.com/Carmen-Shannon/oxy-assets/common"
)

// --- Import Types ---

// ImportedAsset represents a 3D asset loaded from an external format.
// This is the universal format that importers (glTF, GLB, etc.) produce, and the
// template every Container instance is cloned from.
type ImportedAsset struct {
	// Name is the asset identifier.
	Name string

	// Nodes is the flat node list. Hierarchy is expressed through ImportedNode.Children.
	Nodes []ImportedNode

	// RootNodes are indices into Nodes of the default scene's root nodes.
	RootNodes []int

	// Skins are the skeletons declared by the asset.
	Skins []ImportedSkin

	// Animations are the animation clips bundled with the asset.
	Animations []ImportedAnimation
}

// ImportedNode represents a single transform node within an imported asset.
type ImportedNode struct {
	// Name is the node identifier.
	Name string

	// Scale is the node's local scale. A zero value is treated as unit scale.
	Scale [3]float32

	// Bounds is the local-space geometry bounds of the node's mesh, empty for pure transforms.
	Bounds common.BoundingBox

	// Children are indices into ImportedAsset.Nodes.
	Children []int
}

// ImportedSkin represents a skeleton binding within an imported asset.
type ImportedSkin struct {
	// Name is the skin identifier.
	Name string

	// Joints are the joint node names in joint order.
	Joints []string
}

// ImportedAnimation represents a single animation clip within an imported asset.
type ImportedAnimation struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32
}
