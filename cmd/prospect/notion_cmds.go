package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"prospect-engine/internal/importer"
	"prospect-engine/internal/notion"
	"prospect-engine/internal/secrets"
)

func (a *app) notionClient() (*notion.Client, error) {
	return newCounter(a.cfg)
}

func cmdNotionCount(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "notion-count")
	dbID := fs.String("db", a.cfg.Notion.DatabaseID, "Notion database id")
	status := fs.String("status", strings.Join(a.cfg.Notion.Statuses, ","), "status value(s), comma separated")
	all := fs.Bool("all", false, "follow pagination instead of counting the first 100 rows")
	if err := parse(fs, args); err != nil {
		return err
	}
	// positional form kept for old scripts: notion-count <db> <status>
	if rest := fs.Args(); len(rest) > 0 {
		*dbID = rest[0]
		if len(rest) > 1 {
			*status = rest[1]
		}
	}
	if strings.TrimSpace(*dbID) == "" {
		fmt.Fprintln(a.stderr, "notion-count: no database id (use -db or notion.database_id)")
		return errUsage
	}

	var statuses []string
	for _, s := range strings.Split(*status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			statuses = append(statuses, s)
		}
	}
	if len(statuses) == 0 {
		fmt.Fprintln(a.stderr, "notion-count: no status given")
		return errUsage
	}

	c, err := a.notionClient()
	if err != nil {
		return err
	}
	counts, err := c.CountStatuses(ctx, *dbID, statuses, *all)
	if err != nil {
		return err
	}
	if len(counts) == 1 {
		return writeJSON(a.stdout, counts[0])
	}
	return writeJSON(a.stdout, counts)
}

func cmdNotionImport(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "notion-import")
	dbID := fs.String("db", a.cfg.Notion.ImportDatabaseID, "destination Notion database id")
	csvPath := fs.String("csv", a.cfg.Import.CSVPath, "CSV file with Name, URL, Account, Geography columns")
	noLedger := fs.Bool("no-ledger", false, "create every row even if it was imported before")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*dbID) == "" {
		fmt.Fprintln(a.stderr, "notion-import: no database id (use -db or notion.import_database_id)")
		return errUsage
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := importer.Decode(bufio.NewReader(f))
	if err != nil {
		return err
	}

	c, err := a.notionClient()
	if err != nil {
		return err
	}
	im := &importer.Importer{Pages: c, DatabaseID: *dbID}
	if !*noLedger {
		db := a.openJournal()
		if db == nil {
			return fmt.Errorf("import ledger unavailable at %s (use -no-ledger to skip it)", a.cfg.JournalPath())
		}
		defer db.Close()
		im.Ledger = db
	}

	sum, err := im.Run(ctx, rows)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, sum)
}

func cmdSecret(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.stderr, "usage: prospect secret set|delete")
		return errUsage
	}
	switch args[0] {
	case "set":
		fmt.Fprint(a.stderr, "Notion API key: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return fmt.Errorf("read key: %w", err)
		}
		if err := secrets.SetNotionKey(line); err != nil {
			return err
		}
		return writeJSON(a.stdout, map[string]any{"ok": true, "service": secrets.KeyringService})
	case "delete":
		if err := secrets.DeleteNotionKey(); err != nil {
			return err
		}
		return writeJSON(a.stdout, map[string]any{"ok": true})
	default:
		fmt.Fprintf(a.stderr, "unknown secret action %q\n", args[0])
		return errUsage
	}
}
