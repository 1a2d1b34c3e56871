package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
)

// maxRemoteAssetSize caps the number of bytes read from a single remote response.
const maxRemoteAssetSize = 256 << 20

// fetcher reads asset documents and their external buffers.
// Locations with an http or https scheme go through the HTTP client; everything else is read
// from the filesystem.
type fetcher struct {
	fs     billy.Filesystem
	client *http.Client
}

// fetch reads the full contents of location.
func (f *fetcher) fetch(ctx context.Context, location string) ([]byte, error) {
	if isRemote(location) {
		return f.fetchRemote(ctx, location)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := util.ReadFile(f.fs, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

func (f *fetcher) fetchRemote(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", location, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", location, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", location, err)
	}
	if len(data) > maxRemoteAssetSize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", location, maxRemoteAssetSize)
	}
	return data, nil
}

// relativeTo returns a resolver for buffer URIs relative to the document at base.
func (f *fetcher) relativeTo(base string) bufferResolver {
	return func(ctx context.Context, uri string) ([]byte, error) {
		return f.fetch(ctx, resolveRelative(base, uri))
	}
}

// resolveRelative joins a buffer URI against the location of the document that references it.
func resolveRelative(base, uri string) string {
	if isRemote(uri) {
		return uri
	}
	if isRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return uri
		}
		ref, err := url.Parse(uri)
		if err != nil {
			return uri
		}
		return b.ResolveReference(ref).String()
	}
	if unescaped, err := url.PathUnescape(uri); err == nil {
		uri = unescaped
	}
	if strings.HasPrefix(uri, "/") {
		return uri
	}
	return path.Join(path.Dir(base), uri)
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
