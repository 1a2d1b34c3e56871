package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"
)

// ErrContainerDisposed is returned when an operation is attempted on a disposed Container.
var ErrContainerDisposed = errors.New("container has been disposed")

// rootMeshName is the name given to the synthetic parent created by CreateRootMesh.
const rootMeshName = "__root__"

// container is the implementation of the Container interface.
type container struct {
	mu sync.Mutex

	name   string
	target scene.Scene

	meshes          []scene.Node
	skeletons       []scene.Skeleton
	animationGroups []scene.AnimationGroup
	rootMesh        scene.Node

	addedToScene bool
	instances    int
	disposed     bool
}

// Container defines the interface for a parsed, scene-ready asset.
// A Container owns one template copy of the asset's nodes, skeletons, and animation
// groups. The template can be placed into the target Scene once (AddAllToScene) and
// cheaply copied any number of times (Instantiate). Instantiation never mutates the
// template, so a single Container may be shared by every holder of its instances.
type Container interface {
	// Name retrieves the asset name.
	//
	// Returns:
	//   - string: the asset name
	Name() string

	// Scene returns the Scene this Container places its objects into.
	Scene() scene.Scene

	// Meshes returns the template root nodes. After CreateRootMesh the synthetic root is
	// returned first, mirroring the order the scene sees them in.
	//
	// Returns:
	//   - []scene.Node: the primary visual nodes
	Meshes() []scene.Node

	// Skeletons returns the template skeletons.
	Skeletons() []scene.Skeleton

	// AnimationGroups returns the template animation groups.
	AnimationGroups() []scene.AnimationGroup

	// AddAllToScene registers the template nodes, skeletons, and animation groups with
	// the target Scene. Subsequent calls have no effect.
	AddAllToScene()

	// Instantiate clones every template root node, skeleton, and animation group and
	// registers the clones with the target Scene.
	//
	// Returns:
	//   - scene.InstanceSet: the newly created scene objects
	//   - error: ErrContainerDisposed if the container has been disposed
	Instantiate() (scene.InstanceSet, error)

	// InstanceCount returns the number of successful Instantiate calls.
	InstanceCount() int

	// CreateRootMesh parents every template root node under a single synthetic root node
	// and returns it. The root is created once; later calls return the same node.
	//
	// Returns:
	//   - scene.Node: the synthetic root node, or nil if the container has been disposed
	CreateRootMesh() scene.Node

	// DisableOriginal hides the primary visual nodes of the template placement without
	// destroying them.
	DisableOriginal()

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Dispose releases the template nodes, skeletons, and animation groups. Instances
	// created by Instantiate are owned by their holders and are not touched.
	//
	// Returns:
	//   - error: ErrContainerDisposed if the container was already disposed
	Dispose() error
}

var _ Container = &container{}

// NewContainer builds a Container from an imported asset. The template objects are created
// immediately but are not registered with the target Scene until AddAllToScene is called.
//
// Parameters:
//   - imported: the imported asset to build the template from (must not be nil)
//   - target: the scene instances are placed into (must not be nil)
//   - options: functional options to further configure the container
//
// Returns:
//   - Container: the new container
//   - error: error if the imported asset is malformed
func NewContainer(imported *ImportedAsset, target scene.Scene, options ...ContainerBuilderOption) (Container, error) {
	if imported == nil {
		return nil, fmt.Errorf("model: NewContainer requires an imported asset")
	}
	if target == nil {
		return nil, fmt.Errorf("model: NewContainer requires a target scene")
	}

	c := &container{
		name:   imported.Name,
		target: target,
	}

	for _, root := range imported.RootNodes {
		n, err := buildNode(imported, root, make(map[int]bool))
		if err != nil {
			return nil, err
		}
		c.meshes = append(c.meshes, n)
	}
	for _, skin := range imported.Skins {
		c.skeletons = append(c.skeletons, scene.NewSkeleton(skin.Name, skin.Joints))
	}
	for _, anim := range imported.Animations {
		c.animationGroups = append(c.animationGroups, scene.NewAnimationGroup(anim.Name, anim.Duration))
	}

	for _, option := range options {
		option(c)
	}
	return c, nil
}

// buildNode recursively converts an imported node into a scene node. visiting guards
// against cyclic hierarchies, which glTF forbids but malformed files can still contain.
func buildNode(imported *ImportedAsset, index int, visiting map[int]bool) (scene.Node, error) {
	if index < 0 || index >= len(imported.Nodes) {
		return nil, fmt.Errorf("model: node index %d out of range", index)
	}
	if visiting[index] {
		return nil, fmt.Errorf("model: node %d is part of a cycle", index)
	}
	visiting[index] = true
	defer delete(visiting, index)

	src := imported.Nodes[index]
	children := make([]scene.Node, 0, len(src.Children))
	for _, ci := range src.Children {
		child, err := buildNode(imported, ci, visiting)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	scale := src.Scale
	if scale == ([3]float32{}) {
		scale = common.UnitScale
	}

	return scene.NewNode(
		scene.WithNodeName(src.Name),
		scene.WithNodeScaling(scale),
		scene.WithLocalBounds(src.Bounds),
		scene.WithChildren(children...),
	), nil
}

func (c *container) Name() string {
	return c.name
}

func (c *container) Scene() scene.Scene {
	return c.target
}

func (c *container) Meshes() []scene.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]scene.Node, 0, len(c.meshes)+1)
	if c.rootMesh != nil {
		out = append(out, c.rootMesh)
	}
	return append(out, c.meshes...)
}

func (c *container) Skeletons() []scene.Skeleton {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]scene.Skeleton(nil), c.skeletons...)
}

func (c *container) AnimationGroups() []scene.AnimationGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]scene.AnimationGroup(nil), c.animationGroups...)
}

func (c *container) AddAllToScene() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.addedToScene {
		return
	}
	c.addedToScene = true

	if c.rootMesh != nil {
		c.target.AddNode(c.rootMesh)
	}
	for _, n := range c.meshes {
		c.target.AddNode(n)
	}
	for _, sk := range c.skeletons {
		c.target.AddSkeleton(sk)
	}
	for _, ag := range c.animationGroups {
		c.target.AddAnimationGroup(ag)
	}
}

func (c *container) Instantiate() (scene.InstanceSet, error) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return scene.InstanceSet{}, ErrContainerDisposed
	}
	meshes := append([]scene.Node(nil), c.meshes...)
	skeletons := append([]scene.Skeleton(nil), c.skeletons...)
	groups := append([]scene.AnimationGroup(nil), c.animationGroups...)
	c.instances++
	c.mu.Unlock()

	var set scene.InstanceSet
	for _, n := range meshes {
		clone := n.Clone()
		c.target.AddNode(clone)
		set.RootNodes = append(set.RootNodes, clone)
	}
	for _, sk := range skeletons {
		clone := sk.Clone()
		c.target.AddSkeleton(clone)
		set.Skeletons = append(set.Skeletons, clone)
	}
	for _, ag := range groups {
		clone := ag.Clone()
		c.target.AddAnimationGroup(clone)
		set.AnimationGroups = append(set.AnimationGroups, clone)
	}
	return set, nil
}

func (c *container) InstanceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instances
}

func (c *container) CreateRootMesh() scene.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return nil
	}
	if c.rootMesh != nil {
		return c.rootMesh
	}

	c.rootMesh = scene.NewNode(scene.WithNodeName(rootMeshName))
	for _, n := range c.meshes {
		c.rootMesh.AddChild(n)
	}
	if c.addedToScene {
		c.target.AddNode(c.rootMesh)
	}
	return c.rootMesh
}

func (c *container) DisableOriginal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rootMesh != nil {
		c.rootMesh.SetEnabled(false)
		return
	}
	for _, n := range c.meshes {
		n.SetEnabled(false)
	}
}

func (c *container) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

func (c *container) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrContainerDisposed
	}
	c.disposed = true
	rootMesh := c.rootMesh
	meshes := c.meshes
	skeletons := c.skeletons
	groups := c.animationGroups
	c.mu.Unlock()

	// Disposing the synthetic root also disposes the template roots parented under it.
	if rootMesh != nil {
		rootMesh.Dispose()
	}
	for _, n := range meshes {
		n.Dispose()
	}
	for _, sk := range skeletons {
		sk.Dispose()
	}
	for _, ag := range groups {
		ag.Dispose()
	}
	return nil
}
