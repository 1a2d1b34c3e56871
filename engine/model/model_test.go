package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-assets/common"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeAsset() *ImportedAsset {
	return &ImportedAsset{
		Name: "tree",
		Nodes: []ImportedNode{
			{Name: "trunk", Bounds: common.NewBoundingBox([]float32{-1, 0, -1}, []float32{1, 4, 1}), Children: []int{1}},
			{Name: "leaves", Scale: [3]float32{2, 2, 2}},
			{Name: "stone"},
		},
		RootNodes:  []int{0, 2},
		Skins:      []ImportedSkin{{Name: "rig", Joints: []string{"trunk", "leaves"}}},
		Animations: []ImportedAnimation{{Name: "sway", Duration: 3}},
	}
}

func TestNewContainerValidates(t *testing.T) {
	s := scene.NewScene("world")

	_, err := NewContainer(nil, s)
	assert.Error(t, err)
	_, err = NewContainer(treeAsset(), nil)
	assert.Error(t, err)

	bad := treeAsset()
	bad.RootNodes = []int{7}
	_, err = NewContainer(bad, s)
	assert.ErrorContains(t, err, "out of range")

	cyclic := treeAsset()
	cyclic.Nodes[1].Children = []int{0}
	_, err = NewContainer(cyclic, s)
	assert.ErrorContains(t, err, "cycle")
}

func TestNewContainerBuildsTemplate(t *testing.T) {
	s := scene.NewScene("world")
	c, err := NewContainer(treeAsset(), s, WithName("models/tree.glb"))
	require.NoError(t, err)

	assert.Equal(t, "models/tree.glb", c.Name())
	assert.Same(t, s, c.Scene())

	meshes := c.Meshes()
	require.Len(t, meshes, 2)
	assert.Equal(t, "trunk", meshes[0].Name())
	assert.Equal(t, "stone", meshes[1].Name())
	assert.Equal(t, common.UnitScale, meshes[1].Scaling(), "zero scale defaults to unit")
	leaves := meshes[0].Children()
	require.Len(t, leaves, 1)
	assert.Equal(t, [3]float32{2, 2, 2}, leaves[0].Scaling())

	require.Len(t, c.Skeletons(), 1)
	require.Len(t, c.AnimationGroups(), 1)
	assert.Equal(t, float32(3), c.AnimationGroups()[0].Duration())

	// Nothing is registered until AddAllToScene.
	assert.Zero(t, s.Count())
}

func TestAddAllToSceneIsIdempotent(t *testing.T) {
	s := scene.NewScene("world")
	c, err := NewContainer(treeAsset(), s)
	require.NoError(t, err)

	c.AddAllToScene()
	c.AddAllToScene()
	assert.Equal(t, 3, s.Count())
	assert.Len(t, s.Skeletons(), 1)
	assert.Len(t, s.AnimationGroups(), 1)

	added, err := NewContainer(treeAsset(), scene.NewScene("other"), WithAddedToScene(true))
	require.NoError(t, err)
	assert.Equal(t, 3, added.Scene().Count())
}

func TestCreateRootMesh(t *testing.T) {
	s := scene.NewScene("world")
	c, err := NewContainer(treeAsset(), s)
	require.NoError(t, err)
	c.AddAllToScene()

	root := c.CreateRootMesh()
	require.NotNil(t, root)
	assert.Same(t, root, c.CreateRootMesh())
	assert.Len(t, root.Children(), 2)
	assert.Equal(t, 4, s.Count())

	meshes := c.Meshes()
	require.Len(t, meshes, 3)
	assert.Same(t, root, meshes[0])

	c.DisableOriginal()
	assert.False(t, root.Enabled())
	assert.False(t, meshes[1].Enabled())
}

func TestDisableOriginalWithoutRootMesh(t *testing.T) {
	c, err := NewContainer(treeAsset(), scene.NewScene("world"))
	require.NoError(t, err)

	c.DisableOriginal()
	for _, m := range c.Meshes() {
		assert.False(t, m.Enabled())
	}
}

func TestInstantiate(t *testing.T) {
	s := scene.NewScene("world")
	c, err := NewContainer(treeAsset(), s)
	require.NoError(t, err)
	c.AddAllToScene()
	c.CreateRootMesh()
	c.DisableOriginal()

	set, err := c.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, 1, c.InstanceCount())

	require.Len(t, set.RootNodes, 2)
	require.Len(t, set.Skeletons, 1)
	require.Len(t, set.AnimationGroups, 1)
	assert.Equal(t, "trunk", set.Root().Name())
	assert.True(t, set.Root().Enabled(), "clones are not hidden with the original")
	assert.NotZero(t, set.Root().ID())
	assert.Equal(t, 7, s.Count())

	set.Dispose()
	assert.Equal(t, 4, s.Count())
	assert.False(t, c.Meshes()[1].Disposed())
}

func TestDispose(t *testing.T) {
	s := scene.NewScene("world")
	c, err := NewContainer(treeAsset(), s)
	require.NoError(t, err)
	c.AddAllToScene()
	c.CreateRootMesh()

	set, err := c.Instantiate()
	require.NoError(t, err)

	require.NoError(t, c.Dispose())
	assert.True(t, c.Disposed())
	assert.ErrorIs(t, c.Dispose(), ErrContainerDisposed)

	// Instances outlive the container until they are disposed themselves.
	assert.Equal(t, 3, s.Count())
	assert.False(t, set.Root().Disposed())
	assert.Len(t, s.Skeletons(), 1)

	_, err = c.Instantiate()
	assert.ErrorIs(t, err, ErrContainerDisposed)
	assert.Nil(t, c.CreateRootMesh())
}
