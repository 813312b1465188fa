package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeMsgPack = "application/x-msgpack"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteResponse encodes v as MessagePack when the request carries
// format=msgpack, and as JSON otherwise. JSON field names are reused.
func WriteResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if r.URL.Query().Get("format") != "msgpack" {
		WriteJSON(w, status, v)
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgPack)
	w.WriteHeader(status)
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		slog.Error("failed to write msgpack", "error", err)
	}
}

// WriteError writes {"error": msg}. Error bodies are always JSON.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{
		"error": msg,
	})
}
