package httpapi

import (
	"context"
	"sync/atomic"

	"prospect-engine/internal/claim"
	"prospect-engine/internal/config"
	"prospect-engine/internal/events"
	"prospect-engine/internal/leads"
	"prospect-engine/internal/notion"
	"prospect-engine/internal/store"
)

type BatchClaimer interface {
	ClaimBatch(ctx context.Context, batchSize, minEligible int) (claim.Result, error)
}

type ClaimReverter interface {
	RevertStuckClaims(ctx context.Context) (int, error)
}

type ClaimHistory interface {
	RecentClaims(ctx context.Context, limit int) ([]store.ClaimEntry, error)
}

type StatusCounter interface {
	CountStatuses(ctx context.Context, databaseID string, statuses []string, all bool) ([]notion.StatusCount, error)
}

type Deps struct {
	Store    *leads.Store
	Claimer  BatchClaimer
	Reverter ClaimReverter
	History  ClaimHistory // optional

	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Notion counter built per request so a key stored after startup is picked up.
	NewCounter func() (StatusCounter, error)

	SetNotionKey func(key string) error
}
