package config

import (
	"fmt"
	"strings"
)

// Upper bounds for the claim parameters. A batch is handed to one outreach
// run, so anything near these is a typo.
const (
	MaxBatchSize   = 1000
	MaxMinEligible = 100000
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a trimmed copy of cfg plus what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			if seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Leads.StorePath = strings.TrimSpace(out.Leads.StorePath)
	out.Notion.DatabaseID = strings.TrimSpace(out.Notion.DatabaseID)
	out.Notion.ImportDatabaseID = strings.TrimSpace(out.Notion.ImportDatabaseID)
	out.Notion.Statuses = trimList(out.Notion.Statuses)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	// leads
	if out.Leads.StorePath == "" {
		res.addErr("leads.store_path is required")
	}
	if out.Leads.BatchSize <= 0 || out.Leads.BatchSize > MaxBatchSize {
		res.addErr("leads.batch_size must be 1..%d", MaxBatchSize)
	}
	if out.Leads.MinEligible <= 0 || out.Leads.MinEligible > MaxMinEligible {
		res.addErr("leads.min_eligible must be 1..%d", MaxMinEligible)
	}
	if out.Leads.BatchSize > 0 && out.Leads.MinEligible > 0 && out.Leads.BatchSize > out.Leads.MinEligible {
		res.addWarn("leads.batch_size (%d) > leads.min_eligible (%d); batches may come back short.", out.Leads.BatchSize, out.Leads.MinEligible)
	}
	if out.Leads.LockTimeoutMS < 0 {
		res.addErr("leads.lock_timeout_ms must be >= 0")
	}

	// notion
	if out.Notion.APIVersion == "" {
		res.addErr("notion.api_version is required")
	}
	if out.Notion.RequestIntervalMS < 0 {
		res.addErr("notion.request_interval_ms must be >= 0")
	} else if out.Notion.RequestIntervalMS < 334 {
		res.addWarn("notion.request_interval_ms is %d; Notion allows about 3 requests per second.", out.Notion.RequestIntervalMS)
	}
	if out.Notion.PollSeconds < 0 {
		res.addErr("notion.poll_seconds must be >= 0")
	} else if out.Notion.PollSeconds > 0 && out.Notion.PollSeconds < 30 {
		res.addWarn("notion.poll_seconds is very low (%d) and may cause rate limits.", out.Notion.PollSeconds)
	}
	if out.Notion.PollSeconds > 0 && out.Notion.DatabaseID == "" {
		res.addErr("notion.database_id is required when notion.poll_seconds > 0")
	}
	if len(out.Notion.Statuses) == 0 {
		res.addWarn("notion.statuses is empty; status counts will report nothing.")
	}

	return out, res
}
