package game_object

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/google/uuid"
)

type gameObject struct {
	mu sync.RWMutex

	id        string
	className string
	assetRef  string
	enabled   atomic.Bool

	// legacy is a container loaded outside the asset cache and owned by this object alone.
	legacy asset.Container

	// binding state recorded when the object is attached to a scene
	handle   asset.Handle
	node     scene.Node
	metadata asset.Metadata
}

// GameObject defines the interface for a logical scene entity backed by a shared asset.
// The asset reference selects the cached asset; the class name and ID form the entity's
// identity tag. Binding state (handle, placed node, metadata) is recorded by the binder on
// attach and cleared on detach.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - string: the object ID
	ID() string

	// ClassName returns the object's class, the first half of its identity tag.
	//
	// Returns:
	//   - string: the class name
	ClassName() string

	// Tag returns the identity tag "<class> <id>" applied to the object's scene node.
	//
	// Returns:
	//   - string: the identity tag
	Tag() string

	// AssetRef returns the identifier of the asset this object displays.
	//
	// Returns:
	//   - string: the asset identifier, or "" if the object has no asset
	AssetRef() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Container returns the container this object owns directly, or nil.
	// Only objects loaded outside the asset cache carry one.
	//
	// Returns:
	//   - asset.Container: the directly owned container or nil
	Container() asset.Container

	// Handle returns the cache handle recorded at attach time, or nil when unattached.
	//
	// Returns:
	//   - asset.Handle: the recorded handle or nil
	Handle() asset.Handle

	// Node returns the scene node the object was placed on, or nil when unattached.
	//
	// Returns:
	//   - scene.Node: the placed node or nil
	Node() scene.Node

	// Metadata returns the asset metadata captured at attach time.
	//
	// Returns:
	//   - asset.Metadata: the metadata or nil
	Metadata() asset.Metadata

	// Attached reports whether a cache handle is currently recorded.
	//
	// Returns:
	//   - bool: true if attached
	Attached() bool

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id string)

	// SetAssetRef changes the asset identifier. It has no effect on an existing binding.
	//
	// Parameters:
	//   - ref: the asset identifier
	SetAssetRef(ref string)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetContainer hands the object a container it owns directly. Pass nil to clear.
	//
	// Parameters:
	//   - c: the container
	SetContainer(c asset.Container)

	// Bind records the result of an attach.
	//
	// Parameters:
	//   - h: the cache handle
	//   - n: the scene node the object was placed on
	//   - md: the asset metadata
	Bind(h asset.Handle, n scene.Node, md asset.Metadata)

	// Unbind clears the binding state and returns the handle that was recorded.
	//
	// Returns:
	//   - asset.Handle: the previously recorded handle or nil
	Unbind() asset.Handle
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects are enabled by default and receive a random UUID when no ID is given.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	if obj.id == "" {
		obj.id = uuid.NewString()
	}
	return obj
}

func (g *gameObject) ID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

func (g *gameObject) ClassName() string {
	return g.className
}

func (g *gameObject) Tag() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("%s %s", g.className, g.id)
}

func (g *gameObject) AssetRef() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.assetRef
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Container() asset.Container {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.legacy
}

func (g *gameObject) Handle() asset.Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.handle
}

func (g *gameObject) Node() scene.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.node
}

func (g *gameObject) Metadata() asset.Metadata {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.metadata
}

func (g *gameObject) Attached() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.handle != nil
}

func (g *gameObject) SetID(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetAssetRef(ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.assetRef = ref
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetContainer(c asset.Container) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.legacy = c
}

func (g *gameObject) Bind(h asset.Handle, n scene.Node, md asset.Metadata) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handle = h
	g.node = n
	g.metadata = md
}

func (g *gameObject) Unbind() asset.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	h := g.handle
	g.handle = nil
	g.node = nil
	g.metadata = nil
	return h
}
