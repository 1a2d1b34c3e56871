package asset

import (
	"context"

	"github.com/Carmen-Shannon/oxy-assets/engine/scene"
)

// Metadata is out-of-band information captured while parsing an asset (for glTF files, the
// contents of asset.extras). It is set once when the load completes and must be treated as
// read-only by every holder.
type Metadata map[string]any

// Container is the capability the cache requires from a parsed asset. A Container is shared
// read-only by every instance derived from it and is disposed by the cache exactly once.
type Container interface {
	// AddAllToScene places the container's own objects into its target scene.
	AddAllToScene()

	// Instantiate produces a cheap, independently disposable copy of the asset.
	Instantiate() (scene.InstanceSet, error)

	// CreateRootMesh returns a single node parenting the container's own root nodes.
	CreateRootMesh() scene.Node

	// DisableOriginal hides the container's primary visual nodes without destroying them.
	DisableOriginal()

	// Dispose releases every underlying resource held by the container.
	Dispose() error
}

// ContainerLoader is the collaborator that turns an asset location into a Container.
// Implementations must report failure through the returned error and must not return a nil
// Container alongside a nil error.
type ContainerLoader interface {
	// LoadContainer fetches and parses the asset at path+filename and builds a Container
	// targeting the given scene.
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - path: the asset's directory, including the trailing slash (may be empty)
	//   - filename: the asset's file name
	//   - target: the scene instances will be placed into
	//
	// Returns:
	//   - Container: the loaded container
	//   - Metadata: out-of-band data captured during parsing, or nil
	//   - error: error if fetching or parsing fails
	LoadContainer(ctx context.Context, path, filename string, target scene.Scene) (Container, Metadata, error)
}

// LoaderFunc adapts an ordinary function to the ContainerLoader interface.
type LoaderFunc func(ctx context.Context, path, filename string, target scene.Scene) (Container, Metadata, error)

// LoadContainer calls f.
func (f LoaderFunc) LoadContainer(ctx context.Context, path, filename string, target scene.Scene) (Container, Metadata, error) {
	return f(ctx, path, filename, target)
}
