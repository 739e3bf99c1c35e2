package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

type authCall func(ctx context.Context, name, password string) (models.User, error)

func (a *App) authenticate(ctx context.Context, call authCall, op, verb string) error {
	name, err := GetSimpleText(a.reader, "Enter user name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	u, err := call(ctx, name, string(password))
	clear(password)
	if err != nil {
		fmt.Fprintf(a.out, "%s failed: %v\n", op, err)
		return err
	}

	a.userName = u.Name
	a.saveSession(ctx)
	fmt.Fprintf(a.out, "%s as %s (id %d)\n", verb, u.Name, u.ID)
	return nil
}

func (a *App) Signup(ctx context.Context) error {
	return a.authenticate(ctx, a.api.Signup, "Signup", "Signed up")
}

func (a *App) Login(ctx context.Context) error {
	return a.authenticate(ctx, a.api.Login, "Login", "Logged in")
}

func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.forgetSession(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Logout: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Collect(ctx context.Context) error {
	points, err := a.api.Collect(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Collect failed: %v\n", err)
		a.checkSession(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Collected 1 point, balance %d\n", points)
	return nil
}

// Assign takes the champion id from arg or, when empty, asks for it.
func (a *App) Assign(ctx context.Context, arg string) error {
	if arg == "" {
		var err error
		arg, err = GetSimpleText(a.reader, "Enter champion id", a.out)
		if err != nil {
			return err
		}
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid champion id %q\n", arg)
		return err
	}

	total, err := a.api.Assign(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Assign failed: %v\n", err)
		a.checkSession(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Champion %d now has %d points\n", id, total)
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	b, err := a.api.Balance(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Balance failed: %v\n", err)
		a.checkSession(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Points: %d, next collect: %s\n", b.Points, b.CanGetPointsTime.Local().Format(time.DateTime))
	return nil
}

func (a *App) Pool(ctx context.Context) error {
	p, open, err := a.api.PoolStatus(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Pool status failed: %v\n", err)
		return err
	}
	if open {
		fmt.Fprintf(a.out, "Pool open, %d points left\n", p.Points)
	} else {
		fmt.Fprintf(a.out, "Pool closed until %s (%d points)\n", p.OpenAt.Local().Format(time.DateTime), p.Points)
	}
	return nil
}

func (a *App) Champions(ctx context.Context) error {
	list, err := a.api.Champions(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Champions failed: %v\n", err)
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEAM\tNAME\tPOINTS")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", c.ID, c.TeamID, c.Name, c.Points)
	}
	return w.Flush()
}

func (a *App) Teams(ctx context.Context) error {
	list, err := a.api.Teams(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Teams failed: %v\n", err)
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range list {
		fmt.Fprintf(w, "%d\t%s\n", t.ID, t.Name)
	}
	return w.Flush()
}
