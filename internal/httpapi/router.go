package httpapi

import "net/http"

// NewMux wires every route. main wraps it with the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{StorePath: d.Store.Path()}.Health,
	}))

	// Leads
	lh := LeadsHandler{
		Store:    d.Store,
		Claimer:  d.Claimer,
		Reverter: d.Reverter,
		Hub:      d.Hub,
		CfgVal:   d.CfgVal,
	}
	mux.HandleFunc("/leads/summary", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Summary,
	}))
	mux.HandleFunc("/leads/claim", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: lh.Claim,
	}))
	mux.HandleFunc("/leads/revert", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: lh.Revert,
	}))

	ch := ClaimsHandler{History: d.History}
	mux.HandleFunc("/claims/recent", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Recent,
	}))

	// Notion
	nh := NotionHandler{CfgVal: d.CfgVal, NewCounter: d.NewCounter}
	mux.HandleFunc("/notion/counts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: nh.Counts,
	}))

	// Config
	cfh := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfh.Get,
		http.MethodPut: cfh.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfh.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cfh.Validate,
	}))

	// Secrets
	if d.SetNotionKey != nil {
		sh := SecretsHandler{SetNotionKey: d.SetNotionKey}
		mux.HandleFunc("/api/secrets/notion", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: sh.SetNotion,
		}))
	}

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}

// Handler is the mux wrapped in the standard middleware chain.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Recover, AccessLog, Cors)
}
