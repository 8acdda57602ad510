package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/adroste/nowte/safe"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a capped request body into v.
func decodeBody(r *http.Request, v any) error {
	data, err := safe.LimitedReadAll(r.Body, safe.MaxRequestBody)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse body: %w", err)
	}
	return nil
}
