package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/buildtrack/internal/api/dto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, fieldErrs []dto.FieldError) {
	writeJSON(w, status, dto.ErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     fieldErrs,
	})
}
