package loader

import (
	"net/http"

	"github.com/go-git/go-billy/v6"
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithFilesystem is an option builder that sets the filesystem local asset paths are read from.
//
// Parameters:
//   - fs: the filesystem (e.g. osfs.New(root) or memfs.New())
//
// Returns:
//   - LoaderBuilderOption: a function that applies the filesystem option to a loader
func WithFilesystem(fs billy.Filesystem) LoaderBuilderOption {
	return func(l *loader) {
		if fs != nil {
			l.fetcher.fs = fs
		}
	}
}

// WithHTTPClient is an option builder that sets the client used for http(s) asset locations.
//
// Parameters:
//   - client: the HTTP client
//
// Returns:
//   - LoaderBuilderOption: a function that applies the client option to a loader
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if client != nil {
			l.fetcher.client = client
		}
	}
}

// WithLogger sets the logger used by the Loader. Defaults to asset.Logger().
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		l.logger = logger
	}
}
