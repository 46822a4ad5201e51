package internal

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the acting account resolved from a verified token. Role and
// profile are re-read from storage on every request, so a stale token can
// never carry an old role.
type Identity struct {
	ID    string
	Email string
	Role  Role
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(*Identity)
	return id, ok && id != nil
}

func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
