package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAssetURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		path string
		file string
	}{
		{"url", "https://assets.example.com/models/tree.glb", "https://assets.example.com/models/", "tree.glb"},
		{"relative", "models/tree.glb", "models/", "tree.glb"},
		{"bare file", "tree.glb", "", "tree.glb"},
		{"trailing slash", "models/", "models/", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, file := SplitAssetURL(tt.url)
			assert.Equal(t, tt.path, path)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.url, path+file)
		})
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, "", Coalesce[string]())
	assert.Equal(t, 3, Coalesce(0, 0, 3))
}
