package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/models"
)

// credentials takes the username from args or prompts for it, then prompts
// for the password.
func (a *App) credentials(args []string) (string, string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := GetSimpleText(a.lines, "Enter username", a.stdout)
		if err != nil {
			return "", "", err
		}
		username = u
	}

	password, err := GetPassword(a.lines, "Enter password", a.stdout)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (a *App) startSession(sess *models.Session) {
	a.session = sess
	a.current = nil
}

func (a *App) Signup(ctx context.Context, args []string) error {
	username, password, err := a.credentials(args)
	if err != nil {
		return a.report(err)
	}

	sess, err := a.identity.Signup(ctx, username, password)
	if err != nil {
		return a.report(err)
	}
	a.startSession(sess)
	printlnFn("Account created. Logged in as", sess.Username)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	username, password, err := a.credentials(args)
	if err != nil {
		return a.report(err)
	}

	sess, err := a.identity.Login(ctx, username, password)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return a.report(errors.New("user not found"))
	case errors.Is(err, common.ErrorAuth):
		return a.report(errors.New("incorrect password"))
	case err != nil:
		return a.report(err)
	}

	a.startSession(sess)
	printlnFn("Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.identity.Logout(ctx); err != nil {
		return a.report(err)
	}
	a.session = nil
	a.current = nil
	printlnFn("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLogin)
	}
	printlnFn(a.session.Username)
	return nil
}
