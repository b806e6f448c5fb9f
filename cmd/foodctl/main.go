// Command foodctl is a terminal client for the ordering API: sign in, browse
// the menu, check out a cart, pay with mobile money and follow the delivery.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
	"github.com/chriskamgang/MyINSAM-Resto/internal/client"
	"github.com/chriskamgang/MyINSAM-Resto/internal/config"
	"github.com/chriskamgang/MyINSAM-Resto/internal/session"
	"github.com/chriskamgang/MyINSAM-Resto/pkg/logger"
)

// app carries what every command needs
type app struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Session
	log     *slog.Logger
	out     io.Writer
}

type command struct {
	summary string
	// auth commands run without a restored session
	public bool
	run    func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"register":      {summary: "create an account and sign in", public: true, run: runRegister},
	"login":         {summary: "sign in", public: true, run: runLogin},
	"logout":        {summary: "sign out", run: runLogout},
	"whoami":        {summary: "show the signed-in user", run: runWhoami},
	"menu":          {summary: "show the restaurant and its menu", public: true, run: runMenu},
	"addresses":     {summary: "list saved delivery addresses", run: runAddresses},
	"address-add":   {summary: "save a delivery address", run: runAddressAdd},
	"checkout":      {summary: "order items, pay and optionally track the delivery", run: runCheckout},
	"orders":        {summary: "list past orders", run: runOrders},
	"track":         {summary: "follow an order until it is delivered or cancelled", run: runTrack},
	"cancel":        {summary: "cancel a pending or confirmed order", run: runCancel},
	"rate":          {summary: "rate a delivered order", run: runRate},
	"notifications": {summary: "list notifications", run: runNotifications},
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) < 1 {
		usage(os.Stderr)
		return 2
	}
	name := argv[0]
	if name == "help" || name == "-h" || name == "--help" {
		usage(os.Stdout)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage(os.Stderr)
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := session.Open(cfg.Session.Store, cfg.Session.FilePath, cfg.Session.RedisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		return 1
	}
	defer closeStore()

	sess := session.New(store, log)
	if _, err := sess.Restore(ctx); err != nil {
		log.Warn("could not restore session", "error", err)
	}
	sess.OnExpire(func() {
		fmt.Fprintln(os.Stderr, "Your session has expired. Please log in again.")
	})

	a := &app{
		cfg:     cfg,
		client:  client.New(client.Config{BaseURL: cfg.Client.BaseURL, Timeout: cfg.Client.RequestTimeout}, sess, log),
		session: sess,
		log:     log,
		out:     os.Stdout,
	}

	if !cmd.public && !sess.Authenticated() {
		fmt.Fprintln(os.Stderr, "Not signed in. Run `foodctl login` first.")
		return 1
	}

	if err := cmd.run(ctx, a, argv[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(os.Stderr, apperr.UserMessage(err))
		log.Debug("command failed", "command", name, "error", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: foodctl <command> [flags]")
	fmt.Fprintln(w)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-14s %s\n", n, commands[n].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run `foodctl <command> -h` for the flags of a command.")
}
