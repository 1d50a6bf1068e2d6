package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        string
}

type contextKey string

const userContextKey contextKey = "userContext"

// Roles recognized by the API
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSales   = "sales"
	RoleViewer  = "viewer"
)

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if the user holds the given role
func (u *UserContext) HasRole(role string) bool {
	return u.Role == role
}

// HasAnyRole checks if the user holds any of the given roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// IsAdmin checks if the user is an administrator
func (u *UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanWrite reports whether the user may mutate CRM and financial data.
// Viewers are read-only; everyone else can write.
func (u *UserContext) CanWrite() bool {
	return u.Role != RoleViewer && u.Role != ""
}
