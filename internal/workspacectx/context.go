// Package workspacectx carries the active workspace through request contexts.
package workspacectx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

// ContextKey is the key under which the workspace ID is stored.
const ContextKey contextKey = "workspace_id"

// WithWorkspaceID returns a context carrying the given workspace ID.
func WithWorkspaceID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, ContextKey, id)
}

// WorkspaceIDFromContext extracts the workspace ID from ctx.
// It accepts snowflake.ID, int64 and string values for compatibility
// with middleware that stores raw path parameters.
func WorkspaceIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	v := ctx.Value(ContextKey)
	if v == nil {
		return 0, false
	}
	switch id := v.(type) {
	case snowflake.ID:
		return id, true
	case int64:
		return snowflake.ID(id), true
	case string:
		parsed, err := snowflake.ParseString(id)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
