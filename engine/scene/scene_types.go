package scene

import "sync"

// Skeleton is a named bone hierarchy registered with a Scene. Skeletons are shared by the
// nodes skinned against them and are released with Dispose.
type Skeleton interface {
	// Name returns the skeleton name.
	Name() string

	// Bones returns the bone names in joint order.
	Bones() []string

	// Clone returns an unregistered copy of the skeleton.
	Clone() Skeleton

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Dispose unregisters the skeleton from its Scene. Subsequent calls have no effect.
	Dispose()
}

// AnimationGroup is a named set of animation tracks registered with a Scene.
type AnimationGroup interface {
	// Name returns the animation group name.
	Name() string

	// Duration returns the length of the animation in seconds.
	Duration() float32

	// Clone returns an unregistered copy of the animation group.
	Clone() AnimationGroup

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Dispose unregisters the animation group from its Scene. Subsequent calls have no effect.
	Dispose()
}

// InstanceSet holds every scene sub-object created by a single instantiation of an asset.
// Disposing the set releases exactly those objects and nothing else.
type InstanceSet struct {
	// RootNodes are the cloned root transform nodes, in source order.
	RootNodes []Node

	// Skeletons are the cloned skeletons, in source order.
	Skeletons []Skeleton

	// AnimationGroups are the cloned animation groups, in source order.
	AnimationGroups []AnimationGroup
}

// Root returns the first root node of the set, or nil if the set has none.
func (s InstanceSet) Root() Node {
	if len(s.RootNodes) == 0 {
		return nil
	}
	return s.RootNodes[0]
}

// Dispose disposes every root node, skeleton, and animation group in the set.
func (s InstanceSet) Dispose() {
	for _, n := range s.RootNodes {
		n.Dispose()
	}
	for _, sk := range s.Skeletons {
		sk.Dispose()
	}
	for _, ag := range s.AnimationGroups {
		ag.Dispose()
	}
}

// sceneObject carries the bookkeeping shared by skeletons and animation groups.
type sceneObject struct {
	mu       sync.RWMutex
	id       uint64
	disposed bool
	owner    *scene
}

func (o *sceneObject) Disposed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.disposed
}

// markDisposed flips the disposed flag and returns the owning scene and ID if this call
// performed the transition.
func (o *sceneObject) markDisposed() (*scene, uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		return nil, 0, false
	}
	o.disposed = true
	owner := o.owner
	o.owner = nil
	return owner, o.id, true
}

// skeleton is the implementation of the Skeleton interface.
type skeleton struct {
	sceneObject
	name  string
	bones []string
}

var _ Skeleton = &skeleton{}

// NewSkeleton creates an unregistered Skeleton.
//
// Parameters:
//   - name: the skeleton name
//   - bones: the bone names in joint order
//
// Returns:
//   - Skeleton: the new skeleton
func NewSkeleton(name string, bones []string) Skeleton {
	return &skeleton{name: name, bones: append([]string(nil), bones...)}
}

func (s *skeleton) Name() string    { return s.name }
func (s *skeleton) Bones() []string { return append([]string(nil), s.bones...) }

func (s *skeleton) Clone() Skeleton {
	return NewSkeleton(s.name, s.bones)
}

func (s *skeleton) Dispose() {
	if owner, id, ok := s.markDisposed(); ok && owner != nil {
		owner.forgetSkeleton(id)
	}
}

// animationGroup is the implementation of the AnimationGroup interface.
type animationGroup struct {
	sceneObject
	name     string
	duration float32
}

var _ AnimationGroup = &animationGroup{}

// NewAnimationGroup creates an unregistered AnimationGroup.
//
// Parameters:
//   - name: the animation name
//   - duration: the animation length in seconds
//
// Returns:
//   - AnimationGroup: the new animation group
func NewAnimationGroup(name string, duration float32) AnimationGroup {
	return &animationGroup{name: name, duration: duration}
}

func (a *animationGroup) Name() string      { return a.name }
func (a *animationGroup) Duration() float32 { return a.duration }

func (a *animationGroup) Clone() AnimationGroup {
	return NewAnimationGroup(a.name, a.duration)
}

func (a *animationGroup) Dispose() {
	if owner, id, ok := a.markDisposed(); ok && owner != nil {
		owner.forgetAnimationGroup(id)
	}
}
