package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/projectboard/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email and password, creates the
// account and signs in with the returned token.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Register(ctx, userName, email, string(password))
	if err != nil {
		return err
	}
	if err := a.startSession(s); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered and logged in as %s\n", s.User.UserName)
	return nil
}

// Login prompts for a username or email and a password. A failed login
// leaves any existing session untouched.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.api.Login(ctx, login, string(password))
	if err != nil {
		return err
	}
	if err := a.startSession(s); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", s.User.UserName)
	return nil
}

// Logout forgets the token locally. Tokens are stateless, so the server
// is not involved.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if err := a.endSession(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
