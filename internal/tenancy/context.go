package tenancy

import "context"

type ctxKey string

const userKey ctxKey = "wellness.user_id"

// DemoUserID owns data when authentication is disabled.
const DemoUserID = "demo"

// WithUserID stores the authenticated user id in context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserIDFromContext extracts the user id if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}

// UserIDOrDemo returns the user id from context, or DemoUserID when none is set.
func UserIDOrDemo(ctx context.Context) string {
	if id, ok := UserIDFromContext(ctx); ok {
		return id
	}
	return DemoUserID
}
