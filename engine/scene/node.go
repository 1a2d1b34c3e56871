package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-assets/common"
)

// node is the implementation of the Node interface.
type node struct {
	mu sync.RWMutex

	id       uint64
	name     string
	tag      string
	enabled  bool
	disposed bool
	scaling  [3]float32
	object   any

	localBounds  common.BoundingBox
	boundingInfo common.BoundingBox

	parent   *node
	children []*node
	owner    *scene
}

// Node defines a transform node in the scene graph. A Node may carry mesh geometry
// (described by its local bounds) and any number of child nodes. Nodes are thread-safe.
type Node interface {
	// ID returns the scene-assigned identifier, or 0 if the node has never been added to a Scene.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the node name.
	Name() string

	// SetName sets the node name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Tag returns the identity tag assigned by the owning application (e.g. "Tree 42").
	Tag() string

	// SetTag sets the identity tag.
	//
	// Parameters:
	//   - tag: the new tag
	SetTag(tag string)

	// Enabled reports whether the node and all of its ancestors are enabled.
	//
	// Returns:
	//   - bool: true if the node is visible
	Enabled() bool

	// SetEnabled toggles the node's own enabled flag.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Scaling returns the node's local scale.
	Scaling() [3]float32

	// SetScaling sets the node's local scale. Call RefreshBoundingInfo afterwards to update
	// the derived bounding volume.
	//
	// Parameters:
	//   - s: the scale along each axis
	SetScaling(s [3]float32)

	// Object returns the application object bound to this node, or nil.
	Object() any

	// SetObject binds an application object to this node.
	//
	// Parameters:
	//   - obj: the object to bind
	SetObject(obj any)

	// Parent returns the parent node, or nil for a root node.
	Parent() Node

	// Children returns a snapshot of the node's children.
	//
	// Returns:
	//   - []Node: the child nodes
	Children() []Node

	// AddChild attaches a child node. The child is detached from its previous parent first.
	//
	// Parameters:
	//   - child: the node to attach
	AddChild(child Node)

	// LocalBounds returns the geometry bounds of this node alone, in its local space.
	LocalBounds() common.BoundingBox

	// BoundingInfo returns the most recently computed bounding volume of the subtree.
	BoundingInfo() common.BoundingBox

	// RefreshBoundingInfo recomputes the subtree bounding volume from the local bounds and
	// scaling of this node and all of its descendants.
	//
	// Returns:
	//   - common.BoundingBox: the refreshed bounding volume
	RefreshBoundingInfo() common.BoundingBox

	// Clone returns a deep copy of the node hierarchy. The copy is not attached to any Scene
	// and carries no ID, tag, or bound object.
	//
	// Returns:
	//   - Node: the cloned hierarchy
	Clone() Node

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Dispose removes the node and its descendants from their Scene and marks them disposed.
	// Calling Dispose more than once has no effect.
	Dispose()
}

var _ Node = &node{}

// NewNode creates a detached Node with the provided options applied. New nodes are enabled
// and have unit scale.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the new node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		enabled: true,
		scaling: common.UnitScale,
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *node) ID() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.id
}

func (n *node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Tag() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.tag
}

func (n *node) SetTag(tag string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tag = tag
}

func (n *node) Enabled() bool {
	n.mu.RLock()
	enabled, parent := n.enabled, n.parent
	n.mu.RUnlock()
	if !enabled {
		return false
	}
	if parent != nil {
		return parent.Enabled()
	}
	return true
}

func (n *node) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

func (n *node) Scaling() [3]float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.scaling
}

func (n *node) SetScaling(s [3]float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scaling = s
}

func (n *node) Object() any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.object
}

func (n *node) SetObject(obj any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.object = obj
}

func (n *node) Parent() Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) Children() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *node) AddChild(child Node) {
	c, ok := child.(*node)
	if !ok || c == n {
		return
	}

	c.mu.RLock()
	prev := c.parent
	c.mu.RUnlock()
	if prev != nil {
		prev.removeChild(c)
	}

	n.mu.Lock()
	n.children = append(n.children, c)
	n.mu.Unlock()

	c.mu.Lock()
	c.parent = n
	c.mu.Unlock()
}

func (n *node) LocalBounds() common.BoundingBox {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.localBounds
}

func (n *node) BoundingInfo() common.BoundingBox {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.boundingInfo
}

func (n *node) RefreshBoundingInfo() common.BoundingBox {
	n.mu.RLock()
	box := n.localBounds
	scaling := n.scaling
	children := append([]*node(nil), n.children...)
	n.mu.RUnlock()

	for _, c := range children {
		box = box.Union(c.RefreshBoundingInfo())
	}
	box = box.Scaled(scaling)

	n.mu.Lock()
	n.boundingInfo = box
	n.mu.Unlock()
	return box
}

func (n *node) Clone() Node {
	n.mu.RLock()
	cp := &node{
		name:         n.name,
		enabled:      n.enabled,
		scaling:      n.scaling,
		localBounds:  n.localBounds,
		boundingInfo: n.boundingInfo,
	}
	children := append([]*node(nil), n.children...)
	n.mu.RUnlock()

	for _, c := range children {
		cc := c.Clone().(*node)
		cc.parent = cp
		cp.children = append(cp.children, cc)
	}
	return cp
}

func (n *node) Disposed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.disposed
}

func (n *node) Dispose() {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return
	}
	n.disposed = true
	n.enabled = false
	children := n.children
	n.children = nil
	parent := n.parent
	n.parent = nil
	owner := n.owner
	n.owner = nil
	id := n.id
	n.mu.Unlock()

	if parent != nil {
		parent.removeChild(n)
	}
	if owner != nil {
		owner.forgetNode(id)
	}
	for _, c := range children {
		c.mu.Lock()
		c.parent = nil
		c.mu.Unlock()
		c.Dispose()
	}
}

// removeChild detaches c from n's child list without disposing it.
func (n *node) removeChild(c *node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
