package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	StorePath string
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":    true,
		"time":  time.Now().Format(time.RFC3339),
		"store": h.StorePath,
	})
}
