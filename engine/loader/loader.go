package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-assets/engine/asset"
	"github.com/Carmen-Shannon/oxy-assets/engine/model"
	"github.com/Carmen-Shannon/oxy-assets/engine/scene"

	"github.com/go-git/go-billy/v6/osfs"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	logger *zap.Logger

	fetcher *fetcher

	backend loaderBackend
}

// Loader turns asset locations into Containers. It abstracts the file format (glTF, GLB, etc.)
// behind a generic backend and reads documents from a filesystem or over HTTP.
// Loader holds no cache of its own; deduplication and lifetime are the asset.Cache's job.
type Loader interface {
	asset.ContainerLoader

	// Import fetches and parses an asset without building a Container.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - location: the file path or URL of the asset
	//
	// Returns:
	//   - *model.ImportedAsset: the imported asset
	//   - asset.Metadata: the asset's extras, or nil
	//   - error: error if fetching or parsing fails
	Import(ctx context.Context, location string) (*model.ImportedAsset, asset.Metadata, error)

	// LoadReader builds a Container from a reader stream.
	//
	// Parameters:
	//   - ctx: context for fetching external buffers
	//   - name: the nominal location of the document; relative buffer URIs resolve against it
	//   - r: the reader providing the document
	//   - isGLB: true if the reader provides GLB binary data
	//   - target: the scene instances will be placed into
	//
	// Returns:
	//   - asset.Container: the loaded container
	//   - asset.Metadata: the asset's extras, or nil
	//   - error: error if reading or parsing fails
	LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool, target scene.Scene) (asset.Container, asset.Metadata, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
// By default documents are read from the host filesystem and http(s) locations are fetched with
// http.DefaultClient.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		fetcher: &fetcher{
			fs:     osfs.Default,
			client: http.DefaultClient,
		},
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.fetcher)
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadContainer(ctx context.Context, dir, filename string, target scene.Scene) (asset.Container, asset.Metadata, error) {
	location := dir + filename

	imported, metadata, err := l.Import(ctx, location)
	if err != nil {
		return nil, nil, err
	}
	return l.build(location, imported, metadata, target)
}

func (l *loader) Import(ctx context.Context, location string) (*model.ImportedAsset, asset.Metadata, error) {
	backend, err := l.resolveBackend(location)
	if err != nil {
		return nil, nil, err
	}

	imported, extras, err := backend.Load(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", location, err)
	}
	return imported, asset.Metadata(extras), nil
}

func (l *loader) LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool, target scene.Scene) (asset.Container, asset.Metadata, error) {
	if l.backend == nil {
		return nil, nil, fmt.Errorf("no loader backend configured")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %q: %w", name, err)
	}

	imported, extras, err := l.backend.LoadBytes(ctx, name, data, isGLB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.build(name, imported, asset.Metadata(extras), target)
}

// build turns an imported asset into a Container targeting the given scene.
func (l *loader) build(location string, imported *model.ImportedAsset, metadata asset.Metadata, target scene.Scene) (asset.Container, asset.Metadata, error) {
	c, err := model.NewContainer(imported, target)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build container for %s: %w", location, err)
	}

	l.log().Debug("asset imported",
		zap.String("location", location),
		zap.String("name", imported.Name),
		zap.Int("nodes", len(imported.Nodes)),
		zap.Int("skins", len(imported.Skins)),
		zap.Int("animations", len(imported.Animations)),
		zap.Bool("has_metadata", metadata != nil),
	)
	return c, metadata, nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(location string) (loaderBackend, error) {
	if l.backend == nil {
		return nil, fmt.Errorf("no loader backend configured")
	}

	// Query strings and fragments never carry the extension.
	if i := strings.IndexAny(location, "?#"); i >= 0 && isRemote(location) {
		location = location[:i]
	}

	ext := strings.ToLower(path.Ext(location))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported asset format: %q", ext)
	}
}

func (l *loader) log() *zap.Logger {
	if l.logger != nil {
		return l.logger
	}
	return asset.Logger()
}
