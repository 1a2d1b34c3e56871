package asset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/profiler"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cache is the implementation of the Cache interface.
type cache struct {
	mu sync.Mutex

	loader ContainerLoader
	target scene.Scene
	log    *zap.Logger

	entries map[string]*entry
	closed  bool

	// loadPool is a caller-owned pool set by WithWorkerPool. When nil each load runs on a
	// goroutine of its own. The cache never stops it.
	loadPool worker.DynamicWorkerPool
	taskID   atomic.Int64

	cloneFirstInstance bool
	profiler           *profiler.Profiler
}

// Cache is a shared store of loaded asset containers keyed by asset identifier.
// Each distinct identifier is loaded at most once no matter how many callers request it
// concurrently; additional callers receive cheap cloned instances of the same container.
// Every acquisition is counted, and the container is disposed exactly when the last
// instance is released. There is no other eviction trigger.
// Thread-safe for concurrent access.
type Cache interface {
	// Acquire returns an instance of the asset identified by identifier, loading it first if
	// no other caller has done so. Concurrent acquirers of an identifier that is still loading
	// wait for that single load instead of starting another. The caller that triggered the load
	// receives an *OriginalHandle; everyone else receives a *CloneHandle.
	//
	// If ctx ends while waiting, Acquire returns ctx.Err(). The load itself is never cancelled:
	// the abandoned claim is settled and released in the background once the load resolves.
	//
	// Parameters:
	//   - ctx: context bounding the wait
	//   - identifier: the asset path or URL
	//
	// Returns:
	//   - Result: the container, its metadata, and the instance handle
	//   - error: *LoadError if the load or instantiation fails, ErrCacheClosed after Close
	Acquire(ctx context.Context, identifier string) (Result, error)

	// Release gives back an instance obtained from Acquire. Clone handles have their instance
	// set disposed; the original handle has the container's placement hidden. When the last
	// instance is released the container is disposed and the entry is removed.
	//
	// Parameters:
	//   - identifier: the asset path or URL the handle was acquired for
	//   - h: the handle returned by Acquire
	//
	// Returns:
	//   - int: the number of instances still live for identifier
	//   - error: ErrUnknownIdentifier, ErrHandleMismatch, ErrHandleReleased, ErrNilHandle,
	//     or a disposal failure
	Release(identifier string, h Handle) (int, error)

	// Preload acquires every identifier concurrently. If any acquisition fails, the ones that
	// succeeded are released again and the first error is returned.
	//
	// Parameters:
	//   - ctx: context bounding the waits
	//   - identifiers: the assets to acquire
	//
	// Returns:
	//   - []Result: one result per identifier, in order
	//   - error: the first acquisition error
	Preload(ctx context.Context, identifiers ...string) ([]Result, error)

	// Instances reports the live instance count of an identifier.
	//
	// Parameters:
	//   - identifier: the asset path or URL
	//
	// Returns:
	//   - int: the instance count, including claims on a load in flight
	//   - bool: false if the cache holds no entry for identifier
	Instances(identifier string) (int, bool)

	// Len returns the number of entries currently held, loading or loaded.
	Len() int

	// Identifiers returns the identifiers of every entry, sorted.
	Identifiers() []string

	// Close disposes every loaded container regardless of its instance count and rejects
	// further acquisitions. Loads still in flight are disposed as soon as they complete.
	//
	// Returns:
	//   - error: the combined disposal errors
	Close() error
}

var _ Cache = &cache{}

// NewCache creates a new Cache backed by the given loader collaborator. Containers are built
// against the target scene. Both arguments are required and NewCache panics if either is nil.
//
// Parameters:
//   - loader: the collaborator that loads containers
//   - target: the scene containers place their instances into
//   - options: functional options to further configure the cache
//
// Returns:
//   - Cache: the new cache
func NewCache(loader ContainerLoader, target scene.Scene, options ...CacheBuilderOption) Cache {
	if loader == nil {
		panic("asset: NewCache requires a non-nil ContainerLoader")
	}
	if target == nil {
		panic("asset: NewCache requires a non-nil Scene")
	}

	c := &cache{
		loader:  loader,
		target:  target,
		log:     Logger(),
		entries: make(map[string]*entry),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

func (c *cache) Acquire(ctx context.Context, identifier string) (Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result{}, ErrCacheClosed
	}

	e, ok := c.entries[identifier]
	if !ok {
		e = newEntry(identifier)
		c.entries[identifier] = e
	}

	first := false
	switch e.state {
	case stateUnloaded:
		e.beginLoad()
		first = true
	case stateLoading:
		e.join()
	case stateLoaded:
		e.join()
		c.mu.Unlock()
		return c.settle(e, false)
	}
	c.mu.Unlock()

	if first {
		c.startLoad(e)
	}

	select {
	case <-e.done:
		return c.settle(e, first)
	case <-ctx.Done():
		go c.abandon(e, first)
		return Result{}, ctx.Err()
	}
}

// startLoad runs the collaborator load for e off the caller's goroutine.
func (c *cache) startLoad(e *entry) {
	c.log.Debug("loading asset", zap.String("identifier", e.identifier))
	if c.loadPool == nil {
		go c.load(e)
		return
	}

	pool := c.loadPool
	task := worker.Task{
		ID:      int(c.taskID.Add(1)),
		Payload: e.identifier,
		Do: func() (any, error) {
			defer releaseWorker(pool)
			c.load(e)
			return nil, nil
		},
	}
	// SubmitTask blocks while the queue is full, and the acquirer must stay free to honour its ctx.
	go submitLoad(pool, task)
}

// poolLoads counts the loads each shared pool is running or holding in its queue.
var (
	poolMu    sync.Mutex
	poolLoads = make(map[worker.DynamicWorkerPool]int)
)

// submitLoad grows pool until every outstanding load has a worker of its own, so a slow load
// never holds back the load of another identifier, then queues task.
func submitLoad(pool worker.DynamicWorkerPool, task worker.Task) {
	poolMu.Lock()
	defer poolMu.Unlock()
	poolLoads[pool]++
	if short := poolLoads[pool] - pool.GetMaxWorkers(); short > 0 {
		pool.IncreaseMaxWorkers(short)
	}
	pool.SubmitTask(task)
}

func releaseWorker(pool worker.DynamicWorkerPool) {
	poolMu.Lock()
	defer poolMu.Unlock()
	if poolLoads[pool]--; poolLoads[pool] <= 0 {
		delete(poolLoads, pool)
	}
}

// load runs the collaborator and resolves e. It is the only writer of e's load outcome.
func (c *cache) load(e *entry) {
	path, file := common.SplitAssetURL(e.identifier)
	start := time.Now()
	cont, meta, err := c.callLoader(path, file)
	if err == nil && cont == nil {
		err = errors.New("loader returned no container")
	}
	if c.profiler != nil {
		c.profiler.RecordLoad(e.identifier, time.Since(start), err)
	}
	if err == nil {
		cont.AddAllToScene()
	}

	c.mu.Lock()
	closed := c.closed
	waiters := e.instances
	switch {
	case err != nil:
		e.fail(newLoadError(e.identifier, err))
	case closed:
		e.fail(ErrCacheClosed)
	default:
		e.complete(cont, meta)
	}
	if e.err != nil && c.entries[e.identifier] == e {
		delete(c.entries, e.identifier)
	}
	c.mu.Unlock()
	close(e.done)

	switch {
	case err != nil:
		c.log.Warn("failed to load asset",
			zap.String("identifier", e.identifier),
			zap.Int("waiters", waiters),
			zap.Error(err))
	case closed:
		if derr := c.dispose(e.identifier, cont); derr != nil {
			c.log.Warn("failed to dispose asset loaded after close",
				zap.String("identifier", e.identifier),
				zap.Error(derr))
		}
	default:
		c.log.Info("loaded asset",
			zap.String("identifier", e.identifier),
			zap.Int("instances", waiters))
	}
}

// callLoader invokes the collaborator, converting a panic into an error so that waiters are
// always released.
func (c *cache) callLoader(path, file string) (cont Container, meta Metadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			cont, meta, err = nil, nil, fmt.Errorf("loader panicked: %v", r)
		}
	}()
	return c.loader.LoadContainer(context.Background(), path, file, c.target)
}

// settle turns a reserved claim on a resolved entry into a Result. first is true for the
// claim that triggered the load.
func (c *cache) settle(e *entry, first bool) (Result, error) {
	c.mu.Lock()
	err, cont, meta := e.err, e.container, e.metadata
	c.mu.Unlock()
	if err != nil {
		return Result{}, err
	}

	if first {
		root := cont.CreateRootMesh()
		if !c.cloneFirstInstance {
			return Result{Container: cont, Metadata: meta, Handle: newOriginalHandle(e, root)}, nil
		}
		// The placement stays in the scene, hidden, as the template for every clone.
		cont.DisableOriginal()
	}

	set, ierr := cont.Instantiate()
	if ierr != nil {
		c.rollback(e)
		return Result{}, &LoadError{Identifier: e.identifier, Message: "instantiate failed", Cause: ierr}
	}
	c.log.Debug("instantiated asset", zap.String("identifier", e.identifier))
	return Result{Container: cont, Metadata: meta, Handle: newCloneHandle(e, set)}, nil
}

// rollback drops a claim that never produced a handle.
func (c *cache) rollback(e *entry) {
	c.mu.Lock()
	remaining := e.drop()
	var cont Container
	if remaining == 0 && c.entries[e.identifier] == e {
		delete(c.entries, e.identifier)
		cont = e.container
	}
	c.mu.Unlock()

	if cont != nil {
		if err := c.dispose(e.identifier, cont); err != nil {
			c.log.Warn("failed to dispose asset", zap.String("identifier", e.identifier), zap.Error(err))
		}
	}
}

// dispose disposes cont and records the disposal with the profiler, if any.
func (c *cache) dispose(identifier string, cont Container) error {
	err := cont.Dispose()
	if c.profiler != nil {
		c.profiler.RecordDisposal(identifier)
	}
	return err
}

// abandon settles the claim of an acquirer whose context ended and releases it immediately.
func (c *cache) abandon(e *entry, first bool) {
	<-e.done
	res, err := c.settle(e, first)
	if err != nil {
		return
	}
	if _, err := c.Release(e.identifier, res.Handle); err != nil {
		c.log.Warn("failed to release abandoned instance",
			zap.String("identifier", e.identifier),
			zap.Error(err))
	}
}

func (c *cache) Release(identifier string, h Handle) (int, error) {
	hs := state(h)
	if hs == nil {
		return 0, ErrNilHandle
	}

	c.mu.Lock()
	e, ok := c.entries[identifier]
	// A handle stays released even after its entry is disposed and the identifier reloaded.
	if hs.released.Load() {
		remaining := 0
		if ok && hs.owner == e {
			remaining = e.instances
		}
		c.mu.Unlock()
		return remaining, ErrHandleReleased
	}
	if !ok {
		c.mu.Unlock()
		c.log.Warn("release of unknown asset", zap.String("identifier", identifier))
		return 0, ErrUnknownIdentifier
	}
	if hs.owner != e {
		c.mu.Unlock()
		return 0, ErrHandleMismatch
	}
	if !hs.released.CompareAndSwap(false, true) {
		remaining := e.instances
		c.mu.Unlock()
		return remaining, ErrHandleReleased
	}
	remaining := e.drop()
	cont := e.container
	if remaining == 0 {
		delete(c.entries, identifier)
	}
	c.mu.Unlock()

	switch v := h.(type) {
	case *CloneHandle:
		c.log.Debug("removing an instance",
			zap.String("identifier", identifier),
			zap.Int("remaining", remaining))
		v.Instances.Dispose()
	case *OriginalHandle:
		c.log.Debug("disabling main instance",
			zap.String("identifier", identifier),
			zap.Int("remaining", remaining))
		cont.DisableOriginal()
	}

	if remaining == 0 {
		if err := c.dispose(identifier, cont); err != nil {
			return 0, fmt.Errorf("asset: failed to dispose %q: %w", identifier, err)
		}
		c.log.Info("unloaded asset", zap.String("identifier", identifier))
	}
	return remaining, nil
}

func (c *cache) Preload(ctx context.Context, identifiers ...string) ([]Result, error) {
	results := make([]Result, len(identifiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range identifiers {
		g.Go(func() error {
			res, err := c.Acquire(gctx, id)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, res := range results {
			if res.Handle == nil {
				continue
			}
			if _, rerr := c.Release(identifiers[i], res.Handle); rerr != nil {
				c.log.Warn("failed to release preloaded instance",
					zap.String("identifier", identifiers[i]),
					zap.Error(rerr))
			}
		}
		return nil, err
	}
	return results, nil
}

func (c *cache) Instances(identifier string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identifier]
	if !ok {
		return 0, false
	}
	return e.instances, true
}

func (c *cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *cache) Identifiers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var loaded []*entry
	for id, e := range c.entries {
		if e.state == stateLoaded {
			loaded = append(loaded, e)
		}
		delete(c.entries, id)
	}
	c.mu.Unlock()

	var err error
	for _, e := range loaded {
		if derr := c.dispose(e.identifier, e.container); derr != nil {
			err = multierr.Append(err, fmt.Errorf("asset: failed to dispose %q: %w", e.identifier, derr))
		}
	}
	return err
}
