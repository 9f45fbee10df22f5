package store

import (
	"context"
	"fmt"
)

const (
	ActionClaim  = "claim"
	ActionRevert = "revert"
)

type ClaimEntry struct {
	ID      int64  `json:"id"`
	BatchID string `json:"batch_id,omitempty"`
	ListID  string `json:"list_id,omitempty"`
	LeadKey string `json:"lead_key"`
	Action  string `json:"action"`
	At      string `json:"at"`
}

func (d *DB) RecordClaim(ctx context.Context, batchID, listID string, keys []string) error {
	return d.record(ctx, ActionClaim, batchID, listID, keys)
}

func (d *DB) RecordRevert(ctx context.Context, keys []string) error {
	return d.record(ctx, ActionRevert, "", "", keys)
}

func (d *DB) record(ctx context.Context, action, batchID, listID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	at := d.stamp()
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO claims (batch_id, list_id, lead_key, action, at)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, batchID, listID, k, action, at); err != nil {
			return fmt.Errorf("record %s: %w", action, err)
		}
	}
	return tx.Commit()
}

// RecentClaims returns the newest journal entries first.
func (d *DB) RecentClaims(ctx context.Context, limit int) ([]ClaimEntry, error) {
	if limit <= 0 || limit > 5000 {
		limit = 100
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, batch_id, list_id, lead_key, action, at
FROM claims
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClaimEntry
	for rows.Next() {
		var e ClaimEntry
		if err := rows.Scan(&e.ID, &e.BatchID, &e.ListID, &e.LeadKey, &e.Action, &e.At); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
