package auth

import (
	"context"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

// Identity is the outcome of resolving a request's session once, at request
// entry. It is a value: handlers receive it explicitly and cannot change it.
type Identity struct {
	user     models.User
	resolved bool
	token    SessionToken
	hasToken bool
}

// Anonymous is an identity without a user. A token may still be attached
// when the client presented one that did not resolve.
func Anonymous() Identity {
	return Identity{}
}

// NewIdentity is an identity resolved to user through token.
func NewIdentity(user models.User, token SessionToken) Identity {
	user.PasswordHash = ""
	return Identity{user: user, resolved: true, token: token, hasToken: true}
}

// WithToken returns a copy carrying the presented token.
func (i Identity) WithToken(t SessionToken) Identity {
	i.token, i.hasToken = t, true
	return i
}

// CurrentUser returns the resolved user, if any.
func (i Identity) CurrentUser() (models.User, bool) {
	return i.user, i.resolved
}

// Token returns the token the client presented, if any.
func (i Identity) Token() (SessionToken, bool) {
	return i.token, i.hasToken
}

type ctxKey struct{}

// WithIdentity stores id in ctx for transports whose handler signatures
// are fixed.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity, or Anonymous.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
