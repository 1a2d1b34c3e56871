package scene

import (
	"sort"
	"sync"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool

	nodes           map[uint64]*node
	skeletons       map[uint64]*skeleton
	animationGroups map[uint64]*animationGroup
	nextID          uint64
}

// Scene is the target scene graph that loaded assets are placed into. It keeps a registry
// of every node, skeleton, and animation group added to it, assigning each a unique ID.
// Disposing a registered object removes it from the registry.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// AddNode registers a node and all of its descendants with the scene. Nodes that are
	// already registered keep their IDs. Disposed nodes are ignored.
	//
	// Parameters:
	//   - n: the root of the subtree to register
	//
	// Returns:
	//   - uint64: the ID of n, or 0 if n could not be registered
	AddNode(n Node) uint64

	// Node retrieves a registered node by ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the node ID
	//
	// Returns:
	//   - Node: the node or nil
	Node(id uint64) Node

	// Nodes returns every registered node ordered by ID.
	Nodes() []Node

	// Count returns the number of registered nodes.
	Count() int

	// AddSkeleton registers a skeleton with the scene.
	//
	// Parameters:
	//   - s: the skeleton to register
	//
	// Returns:
	//   - uint64: the assigned ID, or 0 if s could not be registered
	AddSkeleton(s Skeleton) uint64

	// Skeletons returns every registered skeleton ordered by ID.
	Skeletons() []Skeleton

	// AddAnimationGroup registers an animation group with the scene.
	//
	// Parameters:
	//   - a: the animation group to register
	//
	// Returns:
	//   - uint64: the assigned ID, or 0 if a could not be registered
	AddAnimationGroup(a AnimationGroup) uint64

	// AnimationGroups returns every registered animation group ordered by ID.
	AnimationGroups() []AnimationGroup

	// Clear disposes every registered node, skeleton, and animation group.
	Clear()
}

var _ Scene = &scene{}

// NewScene creates a new empty Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:              &sync.RWMutex{},
		name:            name,
		nodes:           make(map[uint64]*node),
		skeletons:       make(map[uint64]*skeleton),
		animationGroups: make(map[uint64]*animationGroup),
		nextID:          1,
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) AddNode(n Node) uint64 {
	impl, ok := n.(*node)
	if !ok {
		return 0
	}
	return s.registerNode(impl)
}

// registerNode assigns IDs to n and its descendants depth-first.
func (s *scene) registerNode(n *node) uint64 {
	n.mu.Lock()
	if n.disposed {
		n.mu.Unlock()
		return 0
	}
	if n.owner == nil {
		s.mu.Lock()
		n.id = s.nextID
		s.nextID++
		s.nodes[n.id] = n
		s.mu.Unlock()
		n.owner = s
	}
	id := n.id
	children := append([]*node(nil), n.children...)
	n.mu.Unlock()

	for _, c := range children {
		s.registerNode(c)
	}
	return id
}

func (s *scene) Node(id uint64) Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n
	}
	return nil
}

func (s *scene) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedKeys(s.nodes)
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *scene) AddSkeleton(sk Skeleton) uint64 {
	impl, ok := sk.(*skeleton)
	if !ok {
		return 0
	}
	impl.mu.Lock()
	defer impl.mu.Unlock()
	if impl.disposed {
		return 0
	}
	if impl.owner == nil {
		s.mu.Lock()
		impl.id = s.nextID
		s.nextID++
		s.skeletons[impl.id] = impl
		s.mu.Unlock()
		impl.owner = s
	}
	return impl.id
}

func (s *scene) Skeletons() []Skeleton {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedKeys(s.skeletons)
	out := make([]Skeleton, len(ids))
	for i, id := range ids {
		out[i] = s.skeletons[id]
	}
	return out
}

func (s *scene) AddAnimationGroup(a AnimationGroup) uint64 {
	impl, ok := a.(*animationGroup)
	if !ok {
		return 0
	}
	impl.mu.Lock()
	defer impl.mu.Unlock()
	if impl.disposed {
		return 0
	}
	if impl.owner == nil {
		s.mu.Lock()
		impl.id = s.nextID
		s.nextID++
		s.animationGroups[impl.id] = impl
		s.mu.Unlock()
		impl.owner = s
	}
	return impl.id
}

func (s *scene) AnimationGroups() []AnimationGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := sortedKeys(s.animationGroups)
	out := make([]AnimationGroup, len(ids))
	for i, id := range ids {
		out[i] = s.animationGroups[id]
	}
	return out
}

func (s *scene) Clear() {
	s.mu.RLock()
	nodes := make([]*node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	skeletons := make([]*skeleton, 0, len(s.skeletons))
	for _, sk := range s.skeletons {
		skeletons = append(skeletons, sk)
	}
	groups := make([]*animationGroup, 0, len(s.animationGroups))
	for _, ag := range s.animationGroups {
		groups = append(groups, ag)
	}
	s.mu.RUnlock()

	// Dispose takes the scene lock through the forget* callbacks.
	for _, n := range nodes {
		n.Dispose()
	}
	for _, sk := range skeletons {
		sk.Dispose()
	}
	for _, ag := range groups {
		ag.Dispose()
	}
}

func (s *scene) forgetNode(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
}

func (s *scene) forgetSkeleton(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.skeletons, id)
}

func (s *scene) forgetAnimationGroup(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.animationGroups, id)
}

func sortedKeys[T any](m map[uint64]T) []uint64 {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
