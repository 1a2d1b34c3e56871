package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-assets/engine/model"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for fetching, parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - f: the fetcher used for documents and external buffers
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(f *fetcher) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(f),
	}
}

func (b *gltfLoaderBackendImpl) Load(ctx context.Context, location string) (*model.ImportedAsset, map[string]any, error) {
	return b.importer.Import(ctx, location)
}

func (b *gltfLoaderBackendImpl) LoadBytes(ctx context.Context, location string, data []byte, isGLB bool) (*model.ImportedAsset, map[string]any, error) {
	return b.importer.ImportBytes(ctx, location, data, isGLB)
}
