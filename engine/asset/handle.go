package asset

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-assets/engine/scene"
)

// Handle identifies one live instance obtained from Cache.Acquire. A Handle is either an
// *OriginalHandle or a *CloneHandle; the two are released differently, so callers should
// switch on the concrete type rather than inspect fields.
type Handle interface {
	// Identifier returns the asset the handle was issued for.
	Identifier() string

	// Released reports whether the handle has been passed to Cache.Release.
	Released() bool

	handle()
}

// handleState is the bookkeeping shared by both handle variants.
type handleState struct {
	identifier string
	owner      *entry
	released   atomic.Bool
}

func (h *handleState) Identifier() string { return h.identifier }
func (h *handleState) Released() bool     { return h.released.Load() }
func (h *handleState) handle()            {}

// OriginalHandle is issued to the acquirer that triggered the load. It refers to the
// container's own placement in the scene, reached through its synthetic root mesh.
// Releasing it hides that placement; the nodes are only destroyed with the container.
type OriginalHandle struct {
	handleState

	// Root is the container's root mesh.
	Root scene.Node
}

// CloneHandle is issued to every other acquirer. It owns a cloned instance set that is
// disposed on release without touching the shared container.
type CloneHandle struct {
	handleState

	// Instances are the scene objects created for this acquisition.
	Instances scene.InstanceSet
}

var (
	_ Handle = &OriginalHandle{}
	_ Handle = &CloneHandle{}
)

func newOriginalHandle(e *entry, root scene.Node) *OriginalHandle {
	return &OriginalHandle{
		handleState: handleState{identifier: e.identifier, owner: e},
		Root:        root,
	}
}

func newCloneHandle(e *entry, set scene.InstanceSet) *CloneHandle {
	return &CloneHandle{
		handleState: handleState{identifier: e.identifier, owner: e},
		Instances:   set,
	}
}

// state returns the shared bookkeeping of either variant.
func state(h Handle) *handleState {
	switch v := h.(type) {
	case *OriginalHandle:
		if v != nil {
			return &v.handleState
		}
	case *CloneHandle:
		if v != nil {
			return &v.handleState
		}
	}
	return nil
}

// Result is the outcome of a successful Cache.Acquire.
type Result struct {
	// Container is the shared container the instance was derived from.
	Container Container

	// Metadata is the out-of-band data captured when the container was loaded.
	Metadata Metadata

	// Handle is the instance handle that must be passed back to Cache.Release.
	Handle Handle
}
