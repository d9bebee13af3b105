// Package httpx carries the HTTP plumbing shared by the marketplace services:
// response envelopes, request ids, the API key and role guards, access logs,
// request metrics and request body validation.
package httpx

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Status string    `json:"status"`
	Error  errorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	WriteJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

// WriteError writes the error envelope and remembers the code so the access
// log can report it.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	if rec, ok := w.(interface{ setErrorCode(string) }); ok {
		rec.setErrorCode(code)
	}
	WriteJSON(w, statusCode, errorEnvelope{
		Status: "error",
		Error: errorBody{
			Code:      code,
			Message:   message,
			RequestID: RequestIDFromContext(r.Context()),
		},
	})
}
