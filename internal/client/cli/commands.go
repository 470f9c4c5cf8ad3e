package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/bpay/bpay/internal/client/api"
	"github.com/bpay/bpay/internal/common"
)

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) fail(err error) error {
	a.println("Error:", err.Error())
	return err
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return a.fail(err)
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	pin, err := GetPIN(a.reader, a.out)
	if err != nil {
		return a.fail(err)
	}

	id, err := a.api.Register(ctx, name, email, pin, "")
	if err != nil {
		if errors.Is(err, api.ErrAlreadyRegistered) {
			a.println("User already exists")
			return err
		}
		return a.fail(err)
	}

	a.println("Registered, id:", id)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return a.fail(err)
	}
	pin, err := GetPIN(a.reader, a.out)
	if err != nil {
		return a.fail(err)
	}

	token, err := a.api.Login(ctx, email, pin)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUserNotFound):
			a.println("User not found")
		case errors.Is(err, common.ErrorInvalidCredentials):
			a.println("Invalid credentials")
		default:
			a.println("Login unsuccessful:", err.Error())
		}
		return err
	}

	a.email, a.token = email, token
	a.println("Login successful")
	return nil
}

// Users prints the account list; the server requires an admin session.
func (a *App) Users(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.println("Please login first")
		return common.ErrorUnauthorized
	}

	list, err := a.api.ListUsers(ctx, a.token)
	if err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			a.println("Your role may not list users")
			return err
		}
		return a.fail(err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// Token prints the current session token.
func (a *App) Token(context.Context) error {
	if !a.isLoggedIn() {
		a.println("Please login first")
		return common.ErrorUnauthorized
	}
	a.println(a.token)
	return nil
}

// IssueToken asks the direct issuance route for a token naming an email.
func (a *App) IssueToken(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email for the token", a.out)
	if err != nil {
		return a.fail(err)
	}

	token, err := a.api.IssueToken(ctx, map[string]any{"email": email})
	if err != nil {
		return a.fail(err)
	}
	a.println(token)
	return nil
}

func (a *App) Logout(context.Context) error {
	a.email, a.token = "", ""
	a.println("Logged out")
	return nil
}
