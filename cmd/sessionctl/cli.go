package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonasv2/sessionkit"
	"github.com/jonasv2/sessionkit/core/apiclient"
	"github.com/jonasv2/sessionkit/core/logger"
	"github.com/jonasv2/sessionkit/core/session"
)

const usage = `usage: sessionctl [-v] [-json-log] <command> [flags]

commands:
  login     -email E [-password P]             sign in
  register  -email E -username U [-password P] create an account and sign in
  logout                                       end the session
  whoami                                       print the signed-in user
  level     beginner|intermediate|advanced     set the user level
  refresh                                      rotate the token pair
  get       PATH...                            authenticated GET, paths fetched concurrently
`

type cli struct {
	cfg    sessionkit.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	opts   []sessionkit.Option
}

func (c *cli) run(ctx context.Context, args []string) int {
	global := flag.NewFlagSet("sessionctl", flag.ContinueOnError)
	global.SetOutput(c.stderr)
	global.Usage = func() { fmt.Fprint(c.stderr, usage) }
	verbose := global.Bool("v", false, "debug logging")
	jsonLog := global.Bool("json-log", false, "log as JSON")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	logOpts := []logger.Option{logger.WithOutput(c.stderr), logger.WithLevel(slog.LevelWarn)}
	if *verbose {
		logOpts = append(logOpts, logger.WithDevelopment("sessionctl"))
	}
	if *jsonLog {
		logOpts = append(logOpts, logger.WithJSONFormatter())
	}
	log := logger.New(logOpts...)

	kit, err := sessionkit.New(ctx, c.cfg, append([]sessionkit.Option{sessionkit.WithLogger(log)}, c.opts...)...)
	if err != nil {
		return c.fail(err)
	}
	defer kit.Close()

	if err := kit.Session.Restore(ctx); err != nil {
		log.WarnContext(ctx, "Continuing without a restored session", logger.Error(err))
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "login":
		err = c.login(ctx, kit.Session, rest)
	case "register":
		err = c.register(ctx, kit.Session, rest)
	case "logout":
		err = kit.Session.Logout(ctx)
		if err == nil {
			fmt.Fprintln(c.stdout, "signed out")
		}
	case "whoami":
		err = c.whoami(kit.Session)
	case "level":
		err = c.level(ctx, kit.Session, rest)
	case "refresh":
		err = kit.Session.Refresh(ctx)
		if err == nil {
			err = c.whoami(kit.Session)
		}
	case "get":
		err = c.get(ctx, kit.Session, rest)
	default:
		fmt.Fprintf(c.stderr, "sessionctl: unknown command %q\n", cmd)
		global.Usage()
		return 2
	}
	if err != nil {
		return c.fail(err)
	}
	return 0
}

func (c *cli) login(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("login: -email is required")
	}
	pw, err := c.password(*password)
	if err != nil {
		return err
	}

	user, err := mgr.Login(ctx, session.Credentials{Email: *email, Password: pw})
	if err != nil {
		return err
	}
	return c.print(user)
}

func (c *cli) register(ctx context.Context, mgr *session.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *username == "" {
		return errors.New("register: -email and -username are required")
	}
	pw, err := c.password(*password)
	if err != nil {
		return err
	}

	user, err := mgr.Register(ctx, session.RegistrationData{Email: *email, Username: *username, Password: pw})
	if err != nil {
		return err
	}
	return c.print(user)
}

func (c *cli) whoami(mgr *session.Manager) error {
	user := mgr.CurrentUser()
	if user == nil {
		return session.ErrNotAuthenticated
	}
	return c.print(user)
}

func (c *cli) level(ctx context.Context, mgr *session.Manager, args []string) error {
	if len(args) != 1 {
		return errors.New("level: expected exactly one level")
	}
	user, err := mgr.UpdateLevel(ctx, session.Level(strings.ToLower(args[0])))
	if err != nil {
		return err
	}
	return c.print(user)
}

func (c *cli) get(ctx context.Context, mgr *session.Manager, paths []string) error {
	if len(paths) == 0 {
		return errors.New("get: at least one path is required")
	}

	results := make([]json.RawMessage, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := mgr.Do(gctx, http.MethodGet, path, nil, &results[i]); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if len(paths) == 1 {
		return c.print(results[0])
	}
	out := make(map[string]json.RawMessage, len(paths))
	for i, path := range paths {
		out[path] = results[i]
	}
	return c.print(out)
}

func (c *cli) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) fail(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionEnded), errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(c.stderr, "sessionctl: not signed in, run `sessionctl login`")
	default:
		if apiErr, ok := apiclient.AsError(err); ok && apiErr.Status != apiclient.StatusTransport {
			fmt.Fprintf(c.stderr, "sessionctl: %s (HTTP %d)\n", apiErr.Message, apiErr.Status)
		} else {
			fmt.Fprintln(c.stderr, "sessionctl:", err)
		}
	}
	return 1
}
