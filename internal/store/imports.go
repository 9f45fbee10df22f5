package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
)

// ImportKey identifies one CSV row destined for one Notion database.
func ImportKey(databaseID, name, url string) string {
	h := sha256.Sum256([]byte(databaseID + "\x00" + strings.TrimSpace(name) + "\x00" + strings.TrimSpace(url)))
	return hex.EncodeToString(h[:])
}

func (d *DB) ImportSeen(ctx context.Context, key string) (bool, error) {
	var one int
	err := d.Pool.QueryRowContext(ctx, `SELECT 1 FROM imports WHERE key = ? LIMIT 1;`, key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkImported records a created page. Marking twice is a no-op.
func (d *DB) MarkImported(ctx context.Context, key, databaseID, name string) (added bool, err error) {
	res, err := d.Pool.ExecContext(ctx, `
INSERT OR IGNORE INTO imports (key, database_id, name, imported_at)
VALUES (?, ?, ?, ?);`,
		key, databaseID, name, d.stamp(),
	)
	if err != nil {
		return false, fmt.Errorf("mark imported: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return n > 0, nil
}
