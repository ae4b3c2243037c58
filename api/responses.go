package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/garrett9/servicerepo/core"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func ok(w http.ResponseWriter, body any) {
	writeJSON(w, http.StatusOK, body)
}

func created(w http.ResponseWriter, body any) {
	writeJSON(w, http.StatusCreated, body)
}

func badRequest(w http.ResponseWriter, message string, fieldErrors core.ValidationErrors) {
	body := map[string]any{"message": message}
	if !fieldErrors.Empty() {
		body["errors"] = fieldErrors
	}
	writeJSON(w, http.StatusBadRequest, body)
}

func notFound(w http.ResponseWriter, resource string) {
	writeJSON(w, http.StatusNotFound, map[string]any{"message": resource + " not found"})
}

// writeError maps the typed errors coming out of the service layer onto
// HTTP statuses. Anything untyped is a 500 with a generic body so internals
// never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	var validation *core.ValidationError
	if errors.As(err, &validation) {
		badRequest(w, validation.Message, validation.Errors)
		return
	}

	var missing *core.NotFoundError
	if errors.As(err, &missing) {
		notFound(w, missing.Resource)
		return
	}

	var ambiguous *core.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		badRequest(w, ambiguous.Error(), nil)
		return
	}

	var integrity *core.IntegrityViolationError
	if errors.As(err, &integrity) {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "The record conflicts with existing data."})
		return
	}

	var unauthorized *core.UnauthorizedError
	if errors.As(err, &unauthorized) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
		return
	}

	var forbidden *core.ForbiddenError
	if errors.As(err, &forbidden) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Forbidden"})
		return
	}

	log.Printf("request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Internal server error"})
}
