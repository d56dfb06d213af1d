package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/spendtrack/internal/adapter/http/dto"
)

// ErrorHandler writes the response for an error raised inside a middleware.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.MessageResponse{Message: message})
}
