package respond

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// MessageBody is returned by operations that have no resource to echo back.
type MessageBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, ErrorBody{Error: message})
}

// Invalid reports a 400 with the individual rule violations.
func Invalid(w http.ResponseWriter, r *http.Request, message string, details []string) {
	JSON(w, r, http.StatusBadRequest, ErrorBody{Error: message, Details: details})
}

func Message(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, MessageBody{Message: message})
}
