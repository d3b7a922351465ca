package instrument

import "context"

type correlationKey struct{}

// invalidCorrelationID is returned for contexts without a correlation ID.
const invalidCorrelationID = "[invalid_correlation_id]"

// SetCorrelationID stores id on the context. Empty ids leave ctx unchanged.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID or a placeholder.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return invalidCorrelationID
	}
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return invalidCorrelationID
}
