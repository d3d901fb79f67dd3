package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for a name, an email and a password and creates an account.
// On success the session is kept for subsequent cart commands.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
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
	defer clear(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.Signup(ctx, name, email, string(password)); err != nil {
		if errors.Is(err, client.ErrAlreadyExists) {
			return fmt.Errorf("an account with email %s already exists", email)
		}
		return err
	}

	a.email = email
	a.logger.Info(ctx, "signed up", "email", email)
	printlnFn("Success!")
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		a.logger.Debug(ctx, "login failed", "email", email, "error", err)
		return err
	}

	a.email = email
	printlnFn("Login successful")
	return nil
}

// Logout drops the session token.
func (a *App) Logout(_ context.Context) error {
	a.client.Logout()
	a.email = ""
	printlnFn("Logged out")
	return nil
}
