package pkglog

import "context"

type chainIDContextKey struct{}

type userIDContextKey struct{}

const invalidChainID = "[invalid_chain_id]"

// GetCorrelationID returns the correlation ID stored in the context.
//
// Middleware is expected to set this value early in the request lifecycle so
// it can be attached to logs and propagated to downstream calls.
func GetCorrelationID(ctx context.Context) string {
	clm, ok := ctx.Value(chainIDContextKey{}).(string)
	if !ok {
		return invalidChainID
	}
	return clm
}

// LookupCorrelationID returns the correlation ID and whether one was set.
func LookupCorrelationID(ctx context.Context) (string, bool) {
	cid, ok := ctx.Value(chainIDContextKey{}).(string)
	return cid, ok
}

// SetCorrelationID stores a correlation ID into the context.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, chainIDContextKey{}, cid)
}

// GetUserID returns the authenticated user ID stored in the context, or "".
func GetUserID(ctx context.Context) string {
	uid, _ := ctx.Value(userIDContextKey{}).(string)
	return uid
}

// SetUserID stores the authenticated user ID into the context.
func SetUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, uid)
}
