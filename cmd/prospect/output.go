package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"prospect-engine/internal/leads"
)

var errUsage = errors.New("usage")

func logf(format string, args ...any) {
	log.Printf(format, args...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errorKind names the failure class so scripts can tell a missing store from
// a broken one without parsing the message.
func errorKind(err error) string {
	var (
		nf *leads.NotFoundError
		de *leads.DecodeError
		re *leads.ReadError
		we *leads.WriteError
	)
	switch {
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &re):
		return "read"
	case errors.As(err, &we):
		return "write"
	case errors.Is(err, leads.ErrLocked):
		return "locked"
	default:
		return "error"
	}
}

func reportError(w io.Writer, err error) {
	_ = writeJSON(w, map[string]string{"error": err.Error(), "kind": errorKind(err)})
}
