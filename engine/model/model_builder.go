package model

// ContainerBuilderOption is a functional option for configuring a Container via NewContainer.
type ContainerBuilderOption func(*container)

// WithName is an option builder that overrides the name of the Container.
//
// Parameters:
//   - name: the container identifier
//
// Returns:
//   - ContainerBuilderOption: a function that applies the name option to a container
func WithName(name string) ContainerBuilderOption {
	return func(c *container) {
		if name != "" {
			c.name = name
		}
	}
}

// WithAddedToScene is an option builder that registers the template objects with the target
// Scene as soon as the Container is built, equivalent to calling AddAllToScene.
//
// Parameters:
//   - added: true to register immediately
//
// Returns:
//   - ContainerBuilderOption: a function that applies the option to a container
func WithAddedToScene(added bool) ContainerBuilderOption {
	return func(c *container) {
		if !added || c.addedToScene {
			return
		}
		c.addedToScene = true
		for _, n := range c.meshes {
			c.target.AddNode(n)
		}
		for _, sk := range c.skeletons {
			c.target.AddSkeleton(sk)
		}
		for _, ag := range c.animationGroups {
			c.target.AddAnimationGroup(ag)
		}
	}
}
