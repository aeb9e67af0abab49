package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/kostumi/internal/lifecycle"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// storeError writes the response for an error returned by the store.
// Rejections carry their reason and code to the client; anything else is
// logged and reported as an internal error.
func storeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if rej, ok := lifecycle.AsRejection(err); ok {
		status := http.StatusUnprocessableEntity
		if rej.Code == lifecycle.CodeNotFound {
			status = http.StatusNotFound
		}
		slog.Warn(action+" rejected", "user", username(r), "code", rej.Code, "reason", rej.Reason)
		jsonResponse(w, status, map[string]string{"error": rej.Reason, "code": rej.Code})
		return
	}
	slog.Error(action+" failed", "user", username(r), "error", err)
	jsonError(w, http.StatusInternalServerError, action+" failed")
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// pathTag parses the {tag} path parameter.
func pathTag(r *http.Request) (int, bool) {
	tag, err := strconv.Atoi(r.PathValue("tag"))
	return tag, err == nil
}

func username(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}

// orEmpty keeps JSON list responses from encoding as null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
