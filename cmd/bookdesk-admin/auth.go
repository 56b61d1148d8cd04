// ABOUTME: Account commands for the admin CLI: login, register, logout and status
// ABOUTME: Passwords are read without echo through an interactive line editor

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/2389/bookdesk/internal/session"
)

// prompter asks the user for input. The liner implementation is swapped in tests.
type prompter interface {
	Prompt(label string) (string, error)
	PasswordPrompt(label string) (string, error)
	Close() error
}

var newPrompter = func() prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

var errAborted = errors.New("aborted")

var timeNow = time.Now

// ask returns current when non-empty, otherwise prompts for a value.
func ask(p prompter, label, current string, secret bool) (string, error) {
	if current != "" {
		return current, nil
	}
	var (
		value string
		err   error
	)
	if secret {
		value, err = p.PasswordPrompt(label)
	} else {
		value, err = p.Prompt(label)
	}
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errAborted
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(value), nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	p, err := parseArgs(args, []string{"email", "password"}, nil, map[string]string{"-e": "email"})
	if err != nil {
		return err
	}

	in := newPrompter()
	defer func() { _ = in.Close() }()

	email, err := ask(in, "Email: ", p.value("email"), false)
	if err != nil {
		return err
	}
	password, err := ask(in, "Password: ", p.value("password"), true)
	if err != nil {
		return err
	}

	return a.signIn(ctx, email, func(ctx context.Context) (string, error) {
		return a.client.Login(ctx, email, password)
	})
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	p, err := parseArgs(args, []string{"name", "email", "password"}, nil, map[string]string{"-n": "name", "-e": "email"})
	if err != nil {
		return err
	}

	in := newPrompter()
	defer func() { _ = in.Close() }()

	name, err := ask(in, "Name: ", p.value("name"), false)
	if err != nil {
		return err
	}
	email, err := ask(in, "Email: ", p.value("email"), false)
	if err != nil {
		return err
	}
	password, err := ask(in, "Password: ", p.value("password"), true)
	if err != nil {
		return err
	}

	return a.signIn(ctx, email, func(ctx context.Context) (string, error) {
		return a.client.Register(ctx, name, email, password)
	})
}

// signIn runs the exchange and stores the returned token.
func (a *app) signIn(ctx context.Context, email string, exchange func(context.Context) (string, error)) error {
	token, err := exchange(ctx)
	if err != nil {
		return err
	}
	if err := a.session.SetToken(token); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Signed in as %s\n", email)
	if claims, err := session.Inspect(token); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("  Token expires %s\n", claims.ExpiresAt.Local().Format("Jan 02, 2006 15:04"))
	}
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	color.New(color.FgGreen).Println("✓ Signed out")
	return nil
}

func (a *app) cmdStatus(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()

	green.Printf("  Catalog:  ")
	fmt.Println(a.baseURL)

	if !a.session.SignedIn() {
		yellow.Printf("  Identity: ")
		fmt.Printf("(no token - run login or set %s)\n", EnvToken)
		fmt.Println()
		return nil
	}

	claims, err := session.Inspect(a.session.Token())
	switch {
	case err != nil:
		green.Printf("  Token:    ")
		fmt.Println("opaque (no expiry information)")
	case claims.Expired(timeNow()):
		yellow.Printf("  Token:    ")
		color.Red("expired %s\n", claims.ExpiresAt.Local().Format("Jan 02, 2006 15:04"))
	default:
		green.Printf("  Token:    ")
		if claims.Subject != "" {
			fmt.Printf("subject %s", claims.Subject)
		} else {
			fmt.Print("valid")
		}
		if !claims.ExpiresAt.IsZero() {
			fmt.Printf(", expires %s", claims.ExpiresAt.Local().Format("Jan 02, 2006 15:04"))
		}
		fmt.Println()
	}

	books, err := a.client.ListBooks(ctx)
	if err != nil {
		yellow.Printf("  Catalog:  ")
		color.Red("unreachable (%s)\n", describeError(err))
	} else {
		green.Printf("  Books:    ")
		fmt.Printf("%d visible\n", len(books))
	}

	fmt.Println()
	return nil
}
