package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/binder"
	"github.com/Carmen-Shannon/oxy-assets/engine/game_object"
	"github.com/Carmen-Shannon/oxy-assets/engine/profiler"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	ErrSceneExists  = errors.New("engine: a scene is already registered at that key")
	ErrUnknownScene = errors.New("engine: no scene is registered at that key")
	ErrRunning      = errors.New("engine: already running")
)

// sceneSlot is a registered scene together with the cache and binder that serve it.
type sceneSlot struct {
	scene  scene.Scene
	cache  asset.Cache
	binder binder.Binder
}

// engine implements the Engine interface.
type engine struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	loader asset.ContainerLoader
	log    *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	cacheOptions []asset.CacheBuilderOption
	pending      map[int]scene.Scene
	scenes       map[int]*sceneSlot
}

// Engine is the main entry point for the engine.
// It owns the registered scenes, gives each one an asset cache and binder, and drives the
// game tick loop.
type Engine interface {
	// Loader returns the collaborator every scene's cache loads containers with.
	//
	// Returns:
	//   - asset.ContainerLoader: the loader
	Loader() asset.ContainerLoader

	// Profiler returns the profiler every scene's cache records loads to.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler instance
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic such as spawning and despawning objects.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given z-index key and creates its cache and binder.
	//
	// Parameters:
	//   - key: the z-index of the scene
	//   - s: the Scene to register
	//
	// Returns:
	//   - error: ErrSceneExists if the key is taken
	AddScene(key int, s scene.Scene) error

	// RemoveScene detaches every object bound in the scene at the given key, closes its cache,
	// and unregisters it.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	//
	// Returns:
	//   - error: ErrUnknownScene, or the combined detach and disposal errors
	RemoveScene(key int) error

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Cache returns the asset cache serving the scene at key, or nil if not found.
	Cache(key int) asset.Cache

	// Binder returns the binder serving the scene at key, or nil if not found.
	Binder(key int) binder.Binder

	// Spawn attaches obj to the scene at key through that scene's binder.
	//
	// Parameters:
	//   - ctx: context bounding the wait for the asset to load
	//   - key: the z-index of the scene
	//   - obj: the object to attach
	//
	// Returns:
	//   - scene.Node: the placed node
	//   - error: ErrUnknownScene, or the binder's attach error
	Spawn(ctx context.Context, key int, obj game_object.GameObject) (scene.Node, error)

	// Despawn detaches obj from the scene at key.
	//
	// Parameters:
	//   - key: the z-index of the scene
	//   - obj: the object to detach
	//
	// Returns:
	//   - int: the instances of the object's asset still live
	//   - error: ErrUnknownScene, or the binder's detach error
	Despawn(key int, obj game_object.GameObject) (int, error)

	// Run starts the engine tick loop and blocks until Quit is called or ctx ends.
	// On return every scene has been removed.
	//
	// Parameters:
	//   - ctx: context whose end stops the loop
	//
	// Returns:
	//   - error: ErrRunning if the loop is already running, or the combined shutdown errors
	Run(ctx context.Context) error

	// Quit signals the tick loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The loader is required and NewEngine panics if it is nil.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - loader: the collaborator every scene's cache loads containers with
//   - options: functional options for engine configuration (profiling, tick rate, scenes, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(loader asset.ContainerLoader, options ...EngineBuilderOption) Engine {
	if loader == nil {
		panic("engine: NewEngine requires a non-nil ContainerLoader")
	}

	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		loader:          loader,
		log:             asset.Logger(),
		engineTickRate:  time.Second / 60,
		pending:         make(map[int]scene.Scene),
		scenes:          make(map[int]*sceneSlot),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log))
	}

	// Scenes from WithScene get their caches once the logger and profiler are settled.
	for key, s := range e.pending {
		e.scenes[key] = e.newSlot(s)
	}
	e.pending = nil

	return e
}

// newSlot builds the cache and binder serving s.
func (e *engine) newSlot(s scene.Scene) *sceneSlot {
	opts := append([]asset.CacheBuilderOption{
		asset.WithLogger(e.log),
		asset.WithProfiler(e.profiler),
	}, e.cacheOptions...)
	c := asset.NewCache(e.loader, s, opts...)
	return &sceneSlot{
		scene:  s,
		cache:  c,
		binder: binder.NewBinder(c, binder.WithLogger(e.log)),
	}
}

// close detaches every object in the slot and closes its cache.
func (s *sceneSlot) close() error {
	return multierr.Combine(s.binder.DetachAll(), s.cache.Close())
}

func (e *engine) Loader() asset.ContainerLoader {
	return e.loader
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
		return
	}

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	e.tickCallback = callback
	e.mu.Unlock()
}

func (e *engine) AddScene(key int, s scene.Scene) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.scenes[key]; ok {
		return ErrSceneExists
	}
	e.scenes[key] = e.newSlot(s)
	e.log.Debug("added scene", zap.Int("key", key), zap.String("scene", s.Name()))
	return nil
}

func (e *engine) RemoveScene(key int) error {
	e.mu.Lock()
	slot, ok := e.scenes[key]
	delete(e.scenes, key)
	e.mu.Unlock()
	if !ok {
		return ErrUnknownScene
	}

	if err := slot.close(); err != nil {
		return fmt.Errorf("engine: failed to remove scene %d: %w", key, err)
	}
	e.log.Debug("removed scene", zap.Int("key", key), zap.String("scene", slot.scene.Name()))
	return nil
}

func (e *engine) slot(key int) *sceneSlot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scene(key int) scene.Scene {
	if s := e.slot(key); s != nil {
		return s.scene
	}
	return nil
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v.scene
	}
	return cp
}

func (e *engine) Cache(key int) asset.Cache {
	if s := e.slot(key); s != nil {
		return s.cache
	}
	return nil
}

func (e *engine) Binder(key int) binder.Binder {
	if s := e.slot(key); s != nil {
		return s.binder
	}
	return nil
}

func (e *engine) Spawn(ctx context.Context, key int, obj game_object.GameObject) (scene.Node, error) {
	s := e.slot(key)
	if s == nil {
		return nil, ErrUnknownScene
	}
	return s.binder.Attach(ctx, obj)
}

func (e *engine) Despawn(key int, obj game_object.GameObject) (int, error) {
	s := e.slot(key)
	if s == nil {
		return 0, ErrUnknownScene
	}
	return s.binder.Detach(obj)
}

// Run runs the fixed-rate engine tick loop on the calling goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed or ctx ends.
func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			e.Quit()
			return e.shutdown()
		case <-e.quitChannel:
			return e.shutdown()
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.RLock()
			callback := e.tickCallback
			e.mu.RUnlock()
			if callback != nil {
				callback(dt)
			}

			if e.profilingEnabled.Load() {
				e.profiler.Tick()
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// shutdown removes every scene in ascending z-index order.
func (e *engine) shutdown() error {
	e.mu.RLock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Ints(keys)

	var err error
	for _, k := range keys {
		if rerr := e.RemoveScene(k); rerr != nil && !errors.Is(rerr, ErrUnknownScene) {
			err = multierr.Append(err, rerr)
		}
	}
	return err
}

// Quit signals the tick loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}
