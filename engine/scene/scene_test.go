package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-assets/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float32) common.BoundingBox {
	return common.NewBoundingBox([]float32{minX, minY, minZ}, []float32{maxX, maxY, maxZ})
}

// hierarchy builds trunk -> [branch -> leaf].
func hierarchy() (trunk, branch, leaf Node) {
	leaf = NewNode(WithNodeName("leaf"), WithLocalBounds(box(0, 5, 0, 1, 6, 1)))
	branch = NewNode(WithNodeName("branch"), WithChildren(leaf))
	trunk = NewNode(WithNodeName("trunk"), WithLocalBounds(box(-1, 0, -1, 1, 4, 1)), WithChildren(branch))
	return trunk, branch, leaf
}

func TestAddNodeRegistersSubtree(t *testing.T) {
	s := NewScene("world", WithActive(true))
	trunk, branch, leaf := hierarchy()

	id := s.AddNode(trunk)
	assert.NotZero(t, id)
	assert.Equal(t, 3, s.Count())
	assert.Same(t, trunk, s.Node(id))
	assert.NotZero(t, branch.ID())
	assert.NotZero(t, leaf.ID())

	// Re-adding is a no-op.
	assert.Equal(t, id, s.AddNode(trunk))
	assert.Equal(t, 3, s.Count())

	nodes := s.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "trunk", nodes[0].Name())
	assert.True(t, s.Active())
	assert.Equal(t, "world", s.Name())
}

func TestEnabledFollowsAncestors(t *testing.T) {
	trunk, branch, leaf := hierarchy()
	assert.True(t, leaf.Enabled())

	trunk.SetEnabled(false)
	assert.False(t, branch.Enabled())
	assert.False(t, leaf.Enabled())

	trunk.SetEnabled(true)
	branch.SetEnabled(false)
	assert.True(t, trunk.Enabled())
	assert.False(t, leaf.Enabled())
}

func TestRefreshBoundingInfo(t *testing.T) {
	trunk, branch, _ := hierarchy()
	branch.SetScaling([3]float32{2, 2, 2})

	got := trunk.RefreshBoundingInfo()
	require.True(t, got.Valid)
	assert.Equal(t, [3]float32{-1, 0, -1}, got.Min)
	assert.Equal(t, [3]float32{2, 12, 2}, got.Max)
	assert.Equal(t, got, trunk.BoundingInfo())

	empty := NewNode()
	assert.False(t, empty.RefreshBoundingInfo().Valid)
}

func TestCloneIsDeepAndUnregistered(t *testing.T) {
	s := NewScene("world")
	trunk, _, _ := hierarchy()
	trunk.SetTag("Tree 1")
	trunk.SetObject("entity")
	s.AddNode(trunk)

	clone := trunk.Clone()
	assert.Zero(t, clone.ID())
	assert.Equal(t, "trunk", clone.Name())
	assert.Empty(t, clone.Tag())
	assert.Nil(t, clone.Object())
	assert.Nil(t, clone.Parent())

	children := clone.Children()
	require.Len(t, children, 1)
	assert.NotSame(t, trunk.Children()[0], children[0])
	assert.Same(t, clone, children[0].Parent())

	s.AddNode(clone)
	assert.Equal(t, 6, s.Count())

	clone.Dispose()
	assert.Equal(t, 3, s.Count())
	assert.False(t, trunk.Disposed())
}

func TestDisposeRemovesSubtree(t *testing.T) {
	s := NewScene("world")
	trunk, branch, leaf := hierarchy()
	s.AddNode(trunk)

	branch.Dispose()
	assert.True(t, branch.Disposed())
	assert.True(t, leaf.Disposed())
	assert.False(t, leaf.Enabled())
	assert.Empty(t, trunk.Children())
	assert.Equal(t, 1, s.Count())
	assert.Nil(t, s.Node(leaf.ID()))

	// Disposed nodes cannot be registered again.
	assert.Zero(t, s.AddNode(branch))

	branch.Dispose()
	assert.Equal(t, 1, s.Count())
}

func TestAddChildReparents(t *testing.T) {
	a := NewNode(WithNodeName("a"))
	b := NewNode(WithNodeName("b"))
	c := NewNode(WithNodeName("c"))

	a.AddChild(c)
	b.AddChild(c)
	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, c.Parent())

	b.AddChild(b)
	assert.Len(t, b.Children(), 1)
}

func TestSkeletonsAndAnimationGroups(t *testing.T) {
	s := NewScene("world")
	sk := NewSkeleton("rig", []string{"root", "spine"})
	ag := NewAnimationGroup("walk", 1.25)

	assert.NotZero(t, s.AddSkeleton(sk))
	assert.NotZero(t, s.AddAnimationGroup(ag))
	require.Len(t, s.Skeletons(), 1)
	require.Len(t, s.AnimationGroups(), 1)

	skClone := sk.Clone()
	assert.Equal(t, []string{"root", "spine"}, skClone.Bones())
	agClone := ag.Clone()
	assert.Equal(t, float32(1.25), agClone.Duration())
	s.AddSkeleton(skClone)
	s.AddAnimationGroup(agClone)
	assert.Len(t, s.Skeletons(), 2)

	sk.Dispose()
	ag.Dispose()
	assert.True(t, sk.Disposed())
	assert.Len(t, s.Skeletons(), 1)
	assert.Len(t, s.AnimationGroups(), 1)
	assert.Zero(t, s.AddSkeleton(sk))
}

func TestInstanceSetDispose(t *testing.T) {
	s := NewScene("world")
	trunk, _, _ := hierarchy()
	sk := NewSkeleton("rig", nil)
	ag := NewAnimationGroup("sway", 2)
	s.AddNode(trunk)
	s.AddSkeleton(sk)
	s.AddAnimationGroup(ag)

	set := InstanceSet{RootNodes: []Node{trunk}, Skeletons: []Skeleton{sk}, AnimationGroups: []AnimationGroup{ag}}
	assert.Same(t, trunk, set.Root())
	assert.Nil(t, InstanceSet{}.Root())

	set.Dispose()
	assert.Zero(t, s.Count())
	assert.Empty(t, s.Skeletons())
	assert.Empty(t, s.AnimationGroups())
}

func TestClear(t *testing.T) {
	trunk, _, _ := hierarchy()
	s := NewScene("world", WithNodes(trunk))
	s.AddSkeleton(NewSkeleton("rig", nil))
	s.AddAnimationGroup(NewAnimationGroup("sway", 1))

	s.Clear()
	assert.Zero(t, s.Count())
	assert.Empty(t, s.Skeletons())
	assert.Empty(t, s.AnimationGroups())
	assert.True(t, trunk.Disposed())
}
