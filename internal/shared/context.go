package shared

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const orgKey contextKey = "org"

// ContextWithOrg stores the resolved organization id on the context. The
// HTTP layer calls this once per request; core services never read ambient
// state and always take the org id as an explicit parameter.
func ContextWithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgKey, orgID)
}

// OrgFromContext returns the organization id stored on the context.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgKey).(uuid.UUID)
	return orgID, ok
}
