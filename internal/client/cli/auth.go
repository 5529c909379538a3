package cli

import (
	"context"
	"errors"
	"os"

	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates an account. The
// password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	printlnFn("Account created. You can now log in.")
	return nil
}

// Login prompts for credentials and authenticates. Online login is tried
// first; if the server is unreachable the cached verifier is used instead.
// The resulting connectivity mode is reflected in App.Mode.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	mode := ModeDisabled
	err = a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		mode = ModeOnline
		printlnFn("Login successful")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, trying offline login...")
		if err := a.authService.OfflineLogin(ctx, userName, password); err != nil {
			printlnFn("Offline login unsuccessful:", err.Error())
		} else {
			mode = ModeOffline
			printlnFn("Offline login successful")
		}
	default:
		printlnFn("Login unsuccessful:", err.Error())
	}

	if a.isLoggedIn() {
		a.userName = userName
	}
	a.setMode(mode)
	return nil
}

// Logout locks the session and forgets the cached token pair. Offline login
// data is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}
