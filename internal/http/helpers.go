package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"tripmate/internal/auth"
	"tripmate/internal/blob"
	"tripmate/internal/core"
	"tripmate/internal/ledger"
	"tripmate/internal/storage"
)

const maxBodyBytes = 1 << 20 // request bodies are small JSON documents

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeDomainError maps service-layer errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrEmailNotVerified):
		writeError(w, http.StatusForbidden, auth.EmailNotVerifiedMessage)
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, auth.ErrEmailExists.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, auth.ErrWeakPassword.Error())
	case errors.Is(err, auth.ErrInvalidVerifyToken), errors.Is(err, auth.ErrInvalidResetToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrEmptyTitle,
		core.ErrEmptyName,
		core.ErrEmptyDestination,
		core.ErrInvalidCategory,
		core.ErrInvalidTripType,
		core.ErrInvalidDate,
		core.ErrDatesOutOfOrder,
		core.ErrInvalidSplitCount,
		ledger.ErrValidation,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// clientIP resolves the originating address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// bearerToken extracts the token from an Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
