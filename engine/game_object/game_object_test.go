package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObjectDefaults(t *testing.T) {
	a := NewGameObject(WithClassName("Tree"))
	b := NewGameObject(WithClassName("Tree"))

	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	assert.True(t, a.Enabled())
	assert.Empty(t, a.AssetRef())
	assert.Nil(t, a.Container())
	assert.False(t, a.Attached())
	assert.Equal(t, "Tree "+a.ID(), a.Tag())
}

func TestNewGameObjectOptions(t *testing.T) {
	obj := NewGameObject(
		WithID("42"),
		WithClassName("Avatar"),
		WithAssetRef("avatars/robot.glb"),
		WithEnabled(false),
	)

	assert.Equal(t, "42", obj.ID())
	assert.Equal(t, "Avatar", obj.ClassName())
	assert.Equal(t, "Avatar 42", obj.Tag())
	assert.Equal(t, "avatars/robot.glb", obj.AssetRef())
	assert.False(t, obj.Enabled())

	obj.SetID("43")
	obj.SetEnabled(true)
	assert.Equal(t, "Avatar 43", obj.Tag())
	assert.True(t, obj.Enabled())
}

func TestBindUnbind(t *testing.T) {
	obj := NewGameObject(WithAssetRef("tree.asset"))
	assert.Nil(t, obj.Unbind())

	var h asset.Handle = &asset.CloneHandle{}
	n := scene.NewNode(scene.WithNodeName("tree.asset"))
	obj.Bind(h, n, asset.Metadata{"lod": 1})

	assert.True(t, obj.Attached())
	assert.Same(t, h, obj.Handle())
	assert.Same(t, n, obj.Node())
	assert.Equal(t, 1, obj.Metadata()["lod"])

	assert.Same(t, h, obj.Unbind())
	assert.False(t, obj.Attached())
	assert.Nil(t, obj.Handle())
	assert.Nil(t, obj.Node())
	assert.Nil(t, obj.Metadata())
}
