package asset_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/model"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/stretchr/testify/require"
)

// treeAsset is a trunk node with a single leaves child, the smallest hierarchy that
// exercises recursive cloning and disposal.
func treeAsset(name string) *model.ImportedAsset {
	return &model.ImportedAsset{
		Name: name,
		Nodes: []model.ImportedNode{
			{Name: "trunk", Bounds: common.NewBoundingBox([]float32{-1, 0, -1}, []float32{1, 4, 1}), Children: []int{1}},
			{Name: "leaves", Scale: [3]float32{2, 2, 2}, Bounds: common.NewBoundingBox([]float32{-1, 3, -1}, []float32{1, 5, 1})},
		},
		RootNodes:  []int{0},
		Skins:      []model.ImportedSkin{{Name: "rig", Joints: []string{"trunk", "leaves"}}},
		Animations: []model.ImportedAnimation{{Name: "sway", Duration: 2}},
	}
}

// countingContainer records how often it is disposed.
type countingContainer struct {
	model.Container
	disposals      atomic.Int32
	disposeErr     error
	instantiateErr error
}

func (c *countingContainer) Instantiate() (scene.InstanceSet, error) {
	if c.instantiateErr != nil {
		return scene.InstanceSet{}, c.instantiateErr
	}
	return c.Container.Instantiate()
}

func (c *countingContainer) Dispose() error {
	c.disposals.Add(1)
	if err := c.Container.Dispose(); err != nil {
		return err
	}
	return c.disposeErr
}

// fakeLoader builds tree containers and records every call. Loads for gated identifiers
// block until the gate is opened.
type fakeLoader struct {
	mu         sync.Mutex
	calls      map[string]int
	args       [][2]string
	gates      map[string]chan struct{}
	failures   map[string]error
	disposeErr map[string]error
	instErr    map[string]error
	panics     map[string]bool
	nilResult  map[string]bool
	containers map[string][]*countingContainer
}

var _ asset.ContainerLoader = &fakeLoader{}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		calls:      make(map[string]int),
		gates:      make(map[string]chan struct{}),
		failures:   make(map[string]error),
		disposeErr: make(map[string]error),
		instErr:    make(map[string]error),
		panics:     make(map[string]bool),
		nilResult:  make(map[string]bool),
		containers: make(map[string][]*countingContainer),
	}
}

// gate makes loads of id block until the returned function is called.
func (f *fakeLoader) gate(id string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[id] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeLoader) failWith(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, id)
		return
	}
	f.failures[id] = err
}

func (f *fakeLoader) LoadContainer(_ context.Context, path, filename string, target scene.Scene) (asset.Container, asset.Metadata, error) {
	id := path + filename

	f.mu.Lock()
	f.calls[id]++
	f.args = append(f.args, [2]string{path, filename})
	gate := f.gates[id]
	err := f.failures[id]
	derr := f.disposeErr[id]
	ierr := f.instErr[id]
	shouldPanic := f.panics[id]
	nilResult := f.nilResult[id]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if shouldPanic {
		panic("corrupt asset")
	}
	if err != nil {
		return nil, nil, err
	}
	if nilResult {
		return nil, nil, nil
	}

	mc, err := model.NewContainer(treeAsset(filename), target)
	if err != nil {
		return nil, nil, err
	}
	c := &countingContainer{Container: mc, disposeErr: derr, instantiateErr: ierr}

	f.mu.Lock()
	f.containers[id] = append(f.containers[id], c)
	f.mu.Unlock()

	return c, asset.Metadata{"file": filename}, nil
}

func (f *fakeLoader) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeLoader) loaded(t *testing.T, id string, n int) *countingContainer {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.containers[id]), n, "container %d of %s was never loaded", n, id)
	return f.containers[id][n]
}
