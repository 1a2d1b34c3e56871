package binder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/game_object"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Common errors returned by the binder
var (
	ErrNoAssetRef      = errors.New("binder: object has no asset reference")
	ErrAlreadyAttached = errors.New("binder: object is already attached")
	ErrNotAttached     = errors.New("binder: object is not attached")
	ErrNoPlacement     = errors.New("binder: acquired instance has no root node")
)

// binder is the implementation of the Binder interface.
type binder struct {
	mu sync.Mutex

	cache asset.Cache
	log   *zap.Logger

	// pending holds objects whose acquisition is in flight; attached holds bound objects.
	pending  map[game_object.GameObject]struct{}
	attached map[game_object.GameObject]struct{}
}

// Binder places cached assets on game objects. Attach acquires the object's asset from the
// cache and decorates the resulting node with the object's identity; Detach hands the
// recorded handle back to the cache and disposes any container the object owns directly.
// Thread-safe for concurrent access.
type Binder interface {
	// Attach acquires the object's asset and places it in the scene on the object's behalf.
	// The placed node is named after the asset reference, tagged "<class> <id>", points back
	// at the object, and has unit scale with freshly computed bounds.
	//
	// Parameters:
	//   - ctx: context bounding the wait for the asset to load
	//   - obj: the object to attach
	//
	// Returns:
	//   - scene.Node: the placed node
	//   - error: ErrNoAssetRef, ErrAlreadyAttached, or the cache's acquisition error
	Attach(ctx context.Context, obj game_object.GameObject) (scene.Node, error)

	// Detach releases the object's binding. A handle recorded by Attach goes back to the cache;
	// a container the object owns directly is disposed on a best-effort basis, with failures
	// logged and not returned.
	//
	// Parameters:
	//   - obj: the object to detach
	//
	// Returns:
	//   - int: the instances of the object's asset still live, 0 for unbound objects
	//   - error: ErrNotAttached if the object holds neither a binding nor a container,
	//     or the cache's release error
	Detach(obj game_object.GameObject) (int, error)

	// DetachAll detaches every object currently attached through this binder.
	//
	// Returns:
	//   - error: the combined release errors
	DetachAll() error

	// Attached returns the number of objects currently attached through this binder.
	Attached() int
}

var _ Binder = &binder{}

// NewBinder creates a Binder that acquires assets from the given cache.
// It panics if cache is nil.
//
// Parameters:
//   - cache: the asset cache to acquire from
//   - options: functional options to further configure the binder
//
// Returns:
//   - Binder: the new binder
func NewBinder(cache asset.Cache, options ...BinderBuilderOption) Binder {
	if cache == nil {
		panic("binder: NewBinder requires a non-nil Cache")
	}

	b := &binder{
		cache:    cache,
		log:      asset.Logger(),
		pending:  make(map[game_object.GameObject]struct{}),
		attached: make(map[game_object.GameObject]struct{}),
	}

	for _, option := range options {
		option(b)
	}
	return b
}

func (b *binder) Attach(ctx context.Context, obj game_object.GameObject) (scene.Node, error) {
	ref := obj.AssetRef()
	if ref == "" {
		return nil, ErrNoAssetRef
	}

	b.mu.Lock()
	_, isPending := b.pending[obj]
	_, isAttached := b.attached[obj]
	if isPending || isAttached || obj.Attached() {
		b.mu.Unlock()
		return nil, ErrAlreadyAttached
	}
	b.pending[obj] = struct{}{}
	b.mu.Unlock()

	res, err := b.cache.Acquire(ctx, ref)
	if err != nil {
		b.mu.Lock()
		delete(b.pending, obj)
		b.mu.Unlock()
		return nil, err
	}

	node := placementOf(res.Handle)
	if node == nil {
		b.mu.Lock()
		delete(b.pending, obj)
		b.mu.Unlock()
		if _, rerr := b.cache.Release(ref, res.Handle); rerr != nil {
			return nil, multierr.Append(ErrNoPlacement, rerr)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoPlacement, ref)
	}

	node.SetName(ref)
	node.SetTag(obj.Tag())
	node.SetObject(obj)
	node.SetScaling(common.UnitScale)
	node.RefreshBoundingInfo()

	obj.Bind(res.Handle, node, res.Metadata)

	b.mu.Lock()
	delete(b.pending, obj)
	b.attached[obj] = struct{}{}
	b.mu.Unlock()

	switch res.Handle.(type) {
	case *asset.OriginalHandle:
		b.log.Debug("loaded object", zap.String("asset", ref), zap.String("object", obj.Tag()))
	case *asset.CloneHandle:
		b.log.Debug("instantiated object", zap.String("asset", ref), zap.String("object", obj.Tag()))
	}
	return node, nil
}

func (b *binder) Detach(obj game_object.GameObject) (int, error) {
	b.mu.Lock()
	_, bound := b.attached[obj]
	delete(b.attached, obj)
	b.mu.Unlock()

	var (
		remaining int
		err       error
	)
	if bound {
		if h := obj.Unbind(); h != nil {
			remaining, err = b.cache.Release(h.Identifier(), h)
			b.log.Debug("unloading object",
				zap.String("asset", h.Identifier()),
				zap.String("object", obj.Tag()),
				zap.Int("remaining", remaining))
		}
	}

	legacy := obj.Container()
	if legacy != nil {
		obj.SetContainer(nil)
		if derr := disposeLegacy(obj.Tag(), legacy); derr != nil {
			b.log.Warn("legacy container disposal failed", zap.Error(derr))
		} else {
			b.log.Debug("disposed legacy container", zap.String("object", obj.Tag()))
		}
	}

	if !bound && legacy == nil {
		return 0, ErrNotAttached
	}
	return remaining, err
}

func (b *binder) DetachAll() error {
	b.mu.Lock()
	objs := make([]game_object.GameObject, 0, len(b.attached))
	for obj := range b.attached {
		objs = append(objs, obj)
	}
	b.mu.Unlock()

	var err error
	for _, obj := range objs {
		if _, derr := b.Detach(obj); derr != nil && !errors.Is(derr, ErrNotAttached) {
			err = multierr.Append(err, fmt.Errorf("detach %s: %w", obj.Tag(), derr))
		}
	}
	return err
}

func (b *binder) Attached() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.attached)
}

// placementOf returns the node an acquisition placed in the scene.
func placementOf(h asset.Handle) scene.Node {
	switch v := h.(type) {
	case *asset.OriginalHandle:
		return v.Root
	case *asset.CloneHandle:
		return v.Instances.Root()
	default:
		return nil
	}
}

// disposeLegacy disposes a container owned directly by an object. Panics are reported as
// disposal failures.
func disposeLegacy(owner string, c asset.Container) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &asset.LegacyDisposalError{Owner: owner, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	if derr := c.Dispose(); derr != nil {
		return &asset.LegacyDisposalError{Owner: owner, Cause: derr}
	}
	return nil
}
