package httpapi

import (
	"encoding/json"
	"net/http"
)

type SecretsHandler struct {
	SetNotionKey func(key string) error
}

type setNotionKeyReq struct {
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetNotion(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	var req setNotionKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := h.SetNotionKey(req.APIKey); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_key_failed", "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
