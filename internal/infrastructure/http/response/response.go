package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// Envelope is the shape of every JSON response. Data is set on success,
// Error carries the raw cause of internal failures.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success sends message and data with the given status
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Message: message, Data: data})
}

// StatusFor maps an error to its HTTP status by class
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error sends an error response. Classified errors expose their own
// message; internal ones use fallback as the message and the raw error
// text in the error field.
func Error(w http.ResponseWriter, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		JSON(w, status, Envelope{Message: fallback, Error: err.Error()})
		return
	}
	JSON(w, status, Envelope{Message: err.Error()})
}
