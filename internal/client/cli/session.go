package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointpool/internal/client/client"
	"github.com/dmitrijs2005/pointpool/internal/client/repositories/metadata"
)

// restoreSession loads a session saved by a previous run. The server still
// decides whether it is valid.
func (a *App) restoreSession(ctx context.Context) {
	token, err := a.meta.Get(ctx, metadata.KeySessionToken)
	if err != nil || len(token) == 0 {
		return
	}
	name, err := a.meta.Get(ctx, metadata.KeyUserName)
	if err != nil {
		return
	}
	a.api.SetSessionToken(string(token))
	a.userName = string(name)
}

func (a *App) saveSession(ctx context.Context) {
	token := a.api.SessionToken()
	if token == "" {
		return
	}
	if err := a.meta.Set(ctx, metadata.KeySessionToken, []byte(token)); err != nil {
		fmt.Fprintf(a.out, "Warning: session not saved: %v\n", err)
		return
	}
	if err := a.meta.Set(ctx, metadata.KeyUserName, []byte(a.userName)); err != nil {
		fmt.Fprintf(a.out, "Warning: session not saved: %v\n", err)
	}
}

func (a *App) forgetSession(ctx context.Context) {
	a.userName = ""
	if err := a.meta.Clear(ctx); err != nil {
		fmt.Fprintf(a.out, "Warning: saved session not removed: %v\n", err)
	}
}

// checkSession drops the saved session once the server rejects it.
func (a *App) checkSession(ctx context.Context, err error) {
	if errors.Is(err, client.ErrUnauthorized) && !a.api.LoggedIn() {
		a.forgetSession(ctx)
		fmt.Fprintln(a.out, "Session expired, please login again")
	}
}
