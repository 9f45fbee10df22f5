package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"prospect-engine/internal/config"
	"prospect-engine/internal/leads"
	"prospect-engine/internal/store"
)

type app struct {
	cfg     config.Config
	cfgPath string
	store   *leads.Store

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"claim":         {"claim a batch of new leads from one eligible list", cmdClaim},
	"revert":        {"move every processing lead back to new; run only when no batch is in flight", cmdRevert},
	"ingest":        {"append scanned leads (JSON array) to a list", cmdIngest},
	"summary":       {"lead counts per list and status", cmdSummary},
	"history":       {"recent claim/revert journal entries", cmdHistory},
	"notion-count":  {"count Notion pages by status", cmdNotionCount},
	"notion-import": {"create Notion pages from a CSV file", cmdNotionImport},
	"secret":        {"set|delete the Notion API key in the OS keychain", cmdSecret},
	"config":        {"init|validate|path", cmdConfig},
	"serve":         {"run the local HTTP engine", cmdServe},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	a, err := newApp(stdin, stdout, stderr)
	if err != nil {
		reportError(stderr, err)
		return 1
	}
	if err := cmd.run(ctx, a, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		reportError(stderr, err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: prospect <command> [flags]")
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
	fmt.Fprintln(w, "data dir: $PROSPECT_DATA_DIR (default .), config: <data dir>/config.yml")
}

// newApp loads <data dir>/config.yml when it exists and falls back to the
// defaults otherwise. Nothing is written here.
func newApp(stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	dataDir := strings.TrimSpace(os.Getenv("PROSPECT_DATA_DIR"))
	if dataDir == "" {
		dataDir = "."
	}
	cfgPath := filepath.Join(dataDir, "config.yml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
		}
		cfg = config.Defaults()
	}
	cfg.App.DataDir = dataDir
	config.OverlayEnv(&cfg)

	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return nil, fmt.Errorf("config validation failed:\n- %s", strings.Join(vr.Errors, "\n- "))
	}

	return &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   leads.NewFileStore(cfg.StorePath(), cfg.LockTimeout()),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}, nil
}

// openJournal opens the claim journal. A journal that fails to open is
// logged and skipped; it never blocks lead operations.
func (a *app) openJournal() *store.DB {
	if err := os.MkdirAll(filepath.Dir(a.cfg.JournalPath()), 0o755); err != nil {
		logf("level=warn msg=\"journal unavailable\" err=%v", err)
		return nil
	}
	db, err := store.Open(a.cfg.JournalPath())
	if err != nil {
		logf("level=warn msg=\"journal unavailable\" path=%s err=%v", a.cfg.JournalPath(), err)
		return nil
	}
	return db
}

// journal opens the claim journal on first use, so commands that end up
// writing nothing leave no database file behind.
type journal struct {
	a     *app
	db    *store.DB
	tried bool
}

func (a *app) lazyJournal() *journal { return &journal{a: a} }

var errNoJournal = errors.New("claim journal unavailable")

func (j *journal) get() (*store.DB, error) {
	if !j.tried {
		j.tried = true
		j.db = j.a.openJournal()
	}
	if j.db == nil {
		return nil, errNoJournal
	}
	return j.db, nil
}

func (j *journal) RecordClaim(ctx context.Context, batchID, listID string, keys []string) error {
	db, err := j.get()
	if err != nil {
		return err
	}
	return db.RecordClaim(ctx, batchID, listID, keys)
}

func (j *journal) RecordRevert(ctx context.Context, keys []string) error {
	db, err := j.get()
	if err != nil {
		return err
	}
	return db.RecordRevert(ctx, keys)
}

func (j *journal) Close() {
	if j.db != nil {
		_ = j.db.Close()
	}
}
