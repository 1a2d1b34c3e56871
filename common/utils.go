// package common contains plain helper types and functions shared across the engine packages.
// They are not interface-wrapped structs, just small value types and generic utilities.
package common

import "strings"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SplitAssetURL splits an asset identifier into its directory part (including the trailing
// slash) and its file name, at the last '/'. An identifier without a slash yields an empty path.
//
// Parameters:
//   - url: the asset identifier (file path or URL)
//
// Returns:
//   - path: everything up to and including the last '/'
//   - file: everything after the last '/'
func SplitAssetURL(url string) (path, file string) {
	pos := strings.LastIndex(url, "/")
	return url[:pos+1], url[pos+1:]
}
