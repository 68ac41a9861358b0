package session

import "context"

type ctxKey struct{}

// WithID attaches the visitor session id to the context. The visitor cookie
// middleware calls this once per request.
func WithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sessionID)
}

// IDFromContext returns the visitor session id, or "" for anonymous requests.
func IDFromContext(ctx context.Context) string {
	if sid, ok := ctx.Value(ctxKey{}).(string); ok {
		return sid
	}
	return ""
}
