package config

import (
	"os"
	"strings"
)

// OverlayEnv applies environment overrides on top of the file config.
// The data dir always follows PROSPECT_DATA_DIR when it is set.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PROSPECT_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PROSPECT_STORE_PATH")); v != "" {
		cfg.Leads.StorePath = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTION_DATABASE_ID")); v != "" {
		cfg.Notion.DatabaseID = v
	}
	if v := strings.TrimSpace(os.Getenv("NOTION_IMPORT_DATABASE_ID")); v != "" {
		cfg.Notion.ImportDatabaseID = v
	}
}
