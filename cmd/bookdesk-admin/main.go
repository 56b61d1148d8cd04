// ABOUTME: Admin CLI for the book catalog: sign in, list, inspect, create, edit and delete books
// ABOUTME: Talks to the catalog service directly with the token kept in BOOKDESK_TOKEN or the token file

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/bookdesk/internal/bookform"
	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/config"
	"github.com/2389/bookdesk/internal/session"
)

const banner = `
  _                 _       _           _                  _           _
 | |__   ___   ___ | | ____| | ___  ___| | __     __ _  __| |_ __ ___ (_)_ __
 | '_ \ / _ \ / _ \| |/ / _' |/ _ \/ __| |/ /____/ _' |/ _' | '_ ' _ \| | '_ \
 | |_) | (_) | (_) |   < (_| |  __/\__ \   <_____| (_| | (_| | | | | | | | | | |
 |_.__/ \___/ \___/|_|\_\__,_|\___||___/_|\_\     \__,_|\__,_|_| |_| |_|_|_| |_|
`

// EnvToken overrides the token file for one invocation.
const EnvToken = "BOOKDESK_TOKEN"

// app carries what every command needs.
type app struct {
	client  *catalog.Client
	session *session.Context
	baseURL string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		return
	}

	a, err := newApp()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "login":
		err = a.cmdLogin(ctx, args)
	case "register":
		err = a.cmdRegister(ctx, args)
	case "logout":
		err = a.cmdLogout()
	case "status":
		err = a.cmdStatus(ctx)
	case "books":
		err = a.cmdBooks(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: bookdesk-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  login [--email e]              Sign in and save the token")
	fmt.Println("  register [--name n --email e]  Create an account and save the token")
	fmt.Println("  logout                         Forget the saved token")
	fmt.Println("  status                         Show the catalog URL and who is signed in")
	fmt.Println("  books [list]                   List books (--search s, --page n)")
	fmt.Println("  books show <id>                Show one book")
	fmt.Println("  books create                   Create a book (--title --genre --cover <path> --file <path>)")
	fmt.Println("  books edit <id>                Update a book (--title --genre --cover --file, all optional)")
	fmt.Println("  books delete <id> [--yes]      Delete a book after confirmation")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  BOOKDESK_BACKEND_URL   Catalog service URL (overrides the config file)")
	fmt.Println("  BOOKDESK_TOKEN         Bearer token (overrides the token file)")
	fmt.Println("  BOOKDESK_CONFIG        Config file path")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  bookdesk-admin login --email ada@example.com")
	fmt.Println("  bookdesk-admin books --search dune")
	fmt.Println("  bookdesk-admin books create --title Dune --genre Sci-Fi --cover dune.png --file dune.pdf")
	fmt.Println()
}

func newApp() (*app, error) {
	cfg, err := config.LoadOptional(config.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	sess, err := openSession()
	if err != nil {
		return nil, err
	}

	client, err := catalog.New(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		UserAgent:         cfg.Catalog.UserAgent + "-admin",
	}, sess)
	if err != nil {
		return nil, err
	}

	return &app{client: client, session: sess, baseURL: cfg.Catalog.BaseURL}, nil
}

// openSession prefers BOOKDESK_TOKEN, which is never written back to disk.
func openSession() (*session.Context, error) {
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		return session.New(token), nil
	}
	return session.Open(&session.FileStore{Path: session.DefaultTokenPath()})
}

func (a *app) requireToken() error {
	if !a.session.SignedIn() {
		return fmt.Errorf("not signed in (run `bookdesk-admin login` or set %s)", EnvToken)
	}
	return nil
}

// describeError prefers the message the catalog service sent. Validation
// failures list every offending field.
func describeError(err error) string {
	if catalog.IsValidation(err) {
		fields := bookform.FieldMessages(err)
		if len(fields) > 1 {
			msgs := make([]string, 0, len(fields))
			for _, m := range fields {
				msgs = append(msgs, m)
			}
			sort.Strings(msgs)
			return strings.Join(msgs, "; ")
		}
	}

	msg := catalog.UserMessage(err)
	if msg == catalog.GenericMessage {
		return err.Error()
	}
	return msg
}
