package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"prospect-engine/internal/claim"
	"prospect-engine/internal/config"
	"prospect-engine/internal/domain"
	"prospect-engine/internal/leads"
)

func newFlags(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func cmdClaim(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "claim")
	batch := fs.Int("batch", a.cfg.Leads.BatchSize, "max leads to claim")
	minEligible := fs.Int("min", a.cfg.Leads.MinEligible, "min new leads for a list to be eligible")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *batch < 0 || *batch > config.MaxBatchSize {
		fmt.Fprintf(a.stderr, "claim: -batch must be 0..%d\n", config.MaxBatchSize)
		return errUsage
	}
	if *minEligible < 0 || *minEligible > config.MaxMinEligible {
		fmt.Fprintf(a.stderr, "claim: -min must be 0..%d\n", config.MaxMinEligible)
		return errUsage
	}

	j := a.lazyJournal()
	defer j.Close()

	res, err := claim.NewClaimer(a.store, j).ClaimBatch(ctx, *batch, *minEligible)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, res)
}

func cmdRevert(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "revert")
	if err := parse(fs, args); err != nil {
		return err
	}

	j := a.lazyJournal()
	defer j.Close()

	n, err := claim.NewReverter(a.store, j).RevertStuckClaims(ctx)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, map[string]int{"reverted": n})
}

func cmdIngest(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "ingest")
	listID := fs.String("list", "", "list id to append to (required)")
	file := fs.String("file", "-", "JSON array of leads; - reads stdin")
	if err := parse(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*listID) == "" {
		fmt.Fprintln(a.stderr, "ingest: -list is required")
		return errUsage
	}

	var r io.Reader = a.stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	var incoming []domain.Lead
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return fmt.Errorf("decode leads: %w", err)
	}

	if created, err := a.store.Init(ctx); err != nil {
		return err
	} else if created {
		logf("level=info msg=\"created lead store\" path=%s", a.store.Path())
	}

	var added, skipped int
	err := a.store.Update(ctx, func(d *leads.Data) (bool, error) {
		added, skipped = d.Append(*listID, incoming)
		return added > 0, nil
	})
	if err != nil {
		return err
	}
	logf("level=info msg=\"ingested leads\" list=%s added=%d skipped=%d", *listID, added, skipped)
	return writeJSON(a.stdout, map[string]any{"list": *listID, "added": added, "skipped": skipped})
}

func cmdSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "summary")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	return writeJSON(a.stdout, d.Summary())
}

func cmdHistory(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "history")
	limit := fs.Int("limit", 50, "entries to show")
	if err := parse(fs, args); err != nil {
		return err
	}
	db := a.openJournal()
	if db == nil {
		return fmt.Errorf("claim journal unavailable at %s", a.cfg.JournalPath())
	}
	defer db.Close()

	entries, err := db.RecentClaims(ctx, *limit)
	if err != nil {
		return err
	}
	if entries == nil {
		return writeJSON(a.stdout, []any{})
	}
	return writeJSON(a.stdout, entries)
}
