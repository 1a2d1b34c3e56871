package loader

import (
	"context"

	"github.com/Carmen-Shannon/oxy-assets/engine/model"
)

// loaderBackend defines the generic interface for importing assets from files, URLs or memory.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full asset import from the given location.
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - location: the file path or URL to load
	//
	// Returns:
	//   - *model.ImportedAsset: the imported asset data
	//   - map[string]any: format-specific out-of-band data, or nil
	//   - error: error if loading fails
	Load(ctx context.Context, location string) (*model.ImportedAsset, map[string]any, error)

	// LoadBytes imports an asset from an in-memory document.
	//
	// Parameters:
	//   - ctx: context for fetching any external resources
	//   - location: the nominal location of the document, used for naming and relative references
	//   - data: the document bytes
	//   - isGLB: true if data is GLB binary data, false for text-based formats
	//
	// Returns:
	//   - *model.ImportedAsset: the imported asset data
	//   - map[string]any: format-specific out-of-band data, or nil
	//   - error: error if loading fails
	LoadBytes(ctx context.Context, location string, data []byte, isGLB bool) (*model.ImportedAsset, map[string]any, error)
}
