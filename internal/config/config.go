package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Leads struct {
		StorePath     string `yaml:"store_path" json:"store_path"`
		BatchSize     int    `yaml:"batch_size" json:"batch_size"`
		MinEligible   int    `yaml:"min_eligible" json:"min_eligible"`
		LockTimeoutMS int    `yaml:"lock_timeout_ms" json:"lock_timeout_ms"`
	} `yaml:"leads" json:"leads"`

	Notion struct {
		DatabaseID        string   `yaml:"database_id" json:"database_id"`
		ImportDatabaseID  string   `yaml:"import_database_id" json:"import_database_id"`
		APIVersion        string   `yaml:"api_version" json:"api_version"`
		Statuses          []string `yaml:"statuses" json:"statuses"`
		PollSeconds       int      `yaml:"poll_seconds" json:"poll_seconds"`
		RequestIntervalMS int      `yaml:"request_interval_ms" json:"request_interval_ms"`
	} `yaml:"notion" json:"notion"`

	Import struct {
		CSVPath string `yaml:"csv_path" json:"csv_path"`
	} `yaml:"import" json:"import"`
}

func Defaults() Config {
	var cfg Config
	cfg.App.Port = 38472
	cfg.App.DataDir = "."

	cfg.Leads.StorePath = "sales_nav_data.json"
	cfg.Leads.BatchSize = 5
	cfg.Leads.MinEligible = 5
	cfg.Leads.LockTimeoutMS = 5000

	cfg.Notion.APIVersion = "2022-06-28"
	cfg.Notion.Statuses = []string{"start"}
	cfg.Notion.RequestIntervalMS = 350

	cfg.Import.CSVPath = "linkedin_leads.csv"
	return cfg
}

// Load reads a YAML config over the defaults, so a partial file is fine.
func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// StorePath resolves leads.store_path against app.data_dir.
func (c Config) StorePath() string {
	p := c.Leads.StorePath
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}

func (c Config) JournalPath() string {
	return filepath.Join(c.App.DataDir, "prospect.db")
}

func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.Leads.LockTimeoutMS) * time.Millisecond
}

func (c Config) RequestInterval() time.Duration {
	return time.Duration(c.Notion.RequestIntervalMS) * time.Millisecond
}
