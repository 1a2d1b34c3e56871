package engine_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine"
	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/game_object"
	"github.com/Carmen-Shannon/oxy-assets/engine/model"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type rockLoader struct {
	calls atomic.Int32
}

func (l *rockLoader) LoadContainer(_ context.Context, path, filename string, target scene.Scene) (asset.Container, asset.Metadata, error) {
	l.calls.Add(1)
	if filename == "missing.glb" {
		return nil, nil, errors.New("404")
	}
	imported := &model.ImportedAsset{
		Name:      filename,
		Nodes:     []model.ImportedNode{{Name: "rock", Bounds: common.NewBoundingBox([]float32{-1, 0, -1}, []float32{1, 1, 1})}},
		RootNodes: []int{0},
	}
	c, err := model.NewContainer(imported, target)
	if err != nil {
		return nil, nil, err
	}
	return c, asset.Metadata{"path": path}, nil
}

func rock() game_object.GameObject {
	return game_object.NewGameObject(
		game_object.WithClassName("Rock"),
		game_object.WithAssetRef("props/rock.glb"),
	)
}

func TestNewEnginePanicsOnNilLoader(t *testing.T) {
	assert.Panics(t, func() { engine.NewEngine(nil) })
}

func TestSceneRegistry(t *testing.T) {
	l := &rockLoader{}
	world := scene.NewScene("world")
	e := engine.NewEngine(l, engine.WithScene(0, world))

	assert.Same(t, l, e.Loader())
	assert.NotNil(t, e.Profiler())
	assert.Equal(t, world, e.Scene(0))
	assert.NotNil(t, e.Cache(0))
	assert.NotNil(t, e.Binder(0))

	hud := scene.NewScene("hud")
	require.NoError(t, e.AddScene(10, hud))
	assert.ErrorIs(t, e.AddScene(10, scene.NewScene("other")), engine.ErrSceneExists)
	assert.Equal(t, map[int]scene.Scene{0: world, 10: hud}, e.Scenes())

	require.NoError(t, e.RemoveScene(10))
	assert.Nil(t, e.Scene(10))
	assert.Nil(t, e.Cache(10))
	assert.Nil(t, e.Binder(10))
	assert.ErrorIs(t, e.RemoveScene(10), engine.ErrUnknownScene)
}

func TestSpawnSharesOneLoadPerScene(t *testing.T) {
	l := &rockLoader{}
	e := engine.NewEngine(l,
		engine.WithScene(0, scene.NewScene("a")),
		engine.WithScene(1, scene.NewScene("b")),
	)

	first, second, other := rock(), rock(), rock()
	_, err := e.Spawn(context.Background(), 0, first)
	require.NoError(t, err)
	_, err = e.Spawn(context.Background(), 0, second)
	require.NoError(t, err)
	_, err = e.Spawn(context.Background(), 1, other)
	require.NoError(t, err)

	// Each scene has its own cache.
	assert.Equal(t, int32(2), l.calls.Load())
	n, ok := e.Cache(0).Instances("props/rock.glb")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	remaining, err := e.Despawn(0, first)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = e.Spawn(context.Background(), 5, rock())
	assert.ErrorIs(t, err, engine.ErrUnknownScene)
	_, err = e.Despawn(5, first)
	assert.ErrorIs(t, err, engine.ErrUnknownScene)

	// Removing a scene detaches what it still holds.
	require.NoError(t, e.RemoveScene(1))
	assert.False(t, other.Attached())
	assert.Equal(t, 1, e.Profiler().Snapshot().Disposals)
}

func TestRunTicksUntilQuit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := engine.NewEngine(&rockLoader{},
		engine.WithLogger(zap.New(core)),
		engine.WithTickRate(200),
		engine.WithProfiling(true),
		engine.WithScene(0, scene.NewScene("world")),
	)

	spawned := rock()
	var ticks atomic.Int32
	e.SetTickCallback(func(dt float32) {
		if ticks.Add(1) == 1 {
			_, err := e.Spawn(context.Background(), 0, spawned)
			assert.NoError(t, err)
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, time.Millisecond)
	assert.ErrorIs(t, e.Run(context.Background()), engine.ErrRunning)
	e.SetTickRate(500)
	e.Quit()
	e.Quit()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	assert.False(t, spawned.Attached())
	assert.Empty(t, e.Scenes())
	assert.NotZero(t, logs.FilterMessage("loaded asset").Len())
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	e := engine.NewEngine(&rockLoader{}, engine.WithScene(0, scene.NewScene("world")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	assert.Empty(t, e.Scenes())
}

func TestSpawnLoadFailure(t *testing.T) {
	e := engine.NewEngine(&rockLoader{}, engine.WithScene(0, scene.NewScene("world")))
	obj := game_object.NewGameObject(game_object.WithAssetRef("props/missing.glb"))

	_, err := e.Spawn(context.Background(), 0, obj)
	var le *asset.LoadError
	require.ErrorAs(t, err, &le)
	assert.False(t, obj.Attached())
	assert.Equal(t, 1, e.Profiler().Snapshot().Failures)
}
