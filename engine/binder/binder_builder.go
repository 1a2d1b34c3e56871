package binder

import "go.uber.org/zap"

// BinderBuilderOption is a functional option for configuring a Binder via NewBinder.
type BinderBuilderOption func(*binder)

// WithLogger sets the logger used by the Binder. Defaults to asset.Logger().
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - BinderBuilderOption: option function to apply
func WithLogger(l *zap.Logger) BinderBuilderOption {
	return func(b *binder) {
		if l != nil {
			b.log = l
		}
	}
}
