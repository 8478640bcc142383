package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/newsmarks/internal/client/client"
	"github.com/dmitrijs2005/newsmarks/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate against
// the server.
//
// If the server is unreachable the client stays in offline mode: local
// highlights remain fully usable and only sync is deferred. On success the
// app switches to online mode. The password is securely wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Printf("Server unavailable, staying in offline mode")
			a.setMode(ModeOffline)
			return nil
		}
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}

	a.userName = userName
	a.loggedIn = true
	a.setMode(ModeOnline)
	log.Printf("Login successfull")
	return nil
}

// Logout drops the in-memory session. Local highlights are kept; they will
// sync on the next login.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	a.loggedIn = false
	return nil
}
