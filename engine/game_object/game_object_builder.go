package game_object

import "github.com/Carmen-Shannon/oxy-assets/engine/asset"

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithClassName sets the class of the GameObject.
//
// Parameters:
//   - className: the class name used in the identity tag
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the class name
func WithClassName(className string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.className = className
	}
}

// WithAssetRef sets the identifier of the asset the GameObject displays.
//
// Parameters:
//   - ref: the asset identifier, typically a path or URL
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the asset reference
func WithAssetRef(ref string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.assetRef = ref
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithContainer hands the GameObject a container it owns directly, for objects whose asset
// was loaded without the asset cache.
//
// Parameters:
//   - c: the container
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the owned container
func WithContainer(c asset.Container) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.legacy = c
	}
}
