package tool

import "context"

// UpdateFunc posts a progress message while a tool runs, so the user
// sees what the assistant is doing before the final answer arrives.
type UpdateFunc func(ctx context.Context, message string)

type updateFnKey struct{}

// WithUpdate stores fn in the context for tools to report through.
func WithUpdate(ctx context.Context, fn UpdateFunc) context.Context {
	return context.WithValue(ctx, updateFnKey{}, fn)
}

// Update reports a progress message via the UpdateFunc in ctx, if any.
func Update(ctx context.Context, message string) {
	fn, ok := ctx.Value(updateFnKey{}).(UpdateFunc)
	if !ok {
		return
	}
	fn(ctx, message)
}
