package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"prospect-engine/internal/claim"
	"prospect-engine/internal/config"
	"prospect-engine/internal/events"
	"prospect-engine/internal/httpapi"
	"prospect-engine/internal/leads"
	"prospect-engine/internal/notion"
	"prospect-engine/internal/scheduler"
	"prospect-engine/internal/secrets"
)

func cmdServe(ctx context.Context, a *app, args []string) error {
	fs := newFlags(a, "serve")
	port := fs.Int("port", a.cfg.App.Port, "listen port on 127.0.0.1")
	if err := parse(fs, args); err != nil {
		return err
	}

	dataDir := a.cfg.App.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg.App.DataDir = dataDir
		config.OverlayEnv(&cfg)
		cfg, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return config.Config{}, fmt.Errorf("config validation failed: %s", strings.Join(vr.Errors, "; "))
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	st := leads.NewFileStore(cfg.StorePath(), cfg.LockTimeout())
	hub := events.NewHub()

	deps := httpapi.Deps{
		Store:       st,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		NewCounter: func() (httpapi.StatusCounter, error) {
			return newCounter(cfgVal.Load().(config.Config))
		},
		SetNotionKey: secrets.SetNotionKey,
	}

	db := a.openJournal()
	if db != nil {
		defer db.Close()
		deps.History = db
		deps.Claimer = claim.NewClaimer(st, db)
		deps.Reverter = claim.NewReverter(st, db)
	} else {
		deps.Claimer = claim.NewClaimer(st, nil)
		deps.Reverter = claim.NewReverter(st, nil)
	}

	mux := httpapi.NewMux(deps)

	token := strings.TrimSpace(os.Getenv("PROSPECT_SHUTDOWN_TOKEN"))
	if token == "" {
		if token, err = randomToken(32); err != nil {
			return err
		}
	}
	tokenPath := filepath.Join(dataDir, "engine.token")
	if err := os.WriteFile(tokenPath, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write shutdown token: %w", err)
	}
	defer os.Remove(tokenPath)

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(token, srv))

	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()
	if cfg.Notion.PollSeconds > 0 && cfg.Notion.DatabaseID != "" {
		go scheduler.Every(pollCtx, time.Duration(cfg.Notion.PollSeconds)*time.Second, "notion", func(ctx context.Context) error {
			return pollNotionCounts(ctx, cfgVal.Load().(config.Config), hub)
		})
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Printf("level=info msg=\"engine listening\" addr=http://%s store=%s journal=%s", addr, cfg.StorePath(), cfg.JournalPath())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("level=info msg=\"engine stopped\"")
	return nil
}

func newCounter(cfg config.Config) (*notion.Client, error) {
	key, err := secrets.GetNotionKey()
	if err != nil {
		return nil, err
	}
	return notion.New(key, notion.Options{
		Version:  cfg.Notion.APIVersion,
		Interval: cfg.RequestInterval(),
	}), nil
}

func pollNotionCounts(ctx context.Context, cfg config.Config, hub *events.Hub) error {
	c, err := newCounter(cfg)
	if errors.Is(err, secrets.ErrNoNotionKey) {
		return nil
	}
	if err != nil {
		return err
	}
	counts, err := c.CountStatuses(ctx, cfg.Notion.DatabaseID, cfg.Notion.Statuses, false)
	if err != nil {
		return err
	}
	hub.Emit("", events.TypeNotionCounts, map[string]any{
		"database_id": cfg.Notion.DatabaseID,
		"counts":      counts,
	})
	return nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func shutdownHandler(token string, srv *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Respond first, then shut down asynchronously
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}
