package session

import "context"

type contextKey string

const sessionKey contextKey = "session_id"

// ToContext marks id as the active session for the rest of the request.
func ToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// FromContext returns the active session set on ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}
