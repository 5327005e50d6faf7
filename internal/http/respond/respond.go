package respond

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/hongminglow/kalafo-api/internal/apperr"
)

// Envelope is the standard API response wrapper used across handlers.
// Error holds the stable machine-readable code on failures.
type Envelope struct {
	Code    int    `json:"code"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Envelope{Code: status, Error: code, Message: message})
}

// Fail maps err onto its HTTP status. Internal causes are logged, never sent.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.Status()
	if appErr.Kind == apperr.KindInternal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	Error(w, status, appErr.Code, appErr.Message)
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
