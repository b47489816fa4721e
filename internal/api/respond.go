// Package api defines the response envelope shared by every endpoint.
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope wraps every API response. Success and Data are mutually exclusive
// with Error and ErrorCode; Stale and AgeSeconds are set when the payload was
// served from the last-known-good cache.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      *string     `json:"error,omitempty"`
	ErrorCode  *string     `json:"errorCode,omitempty"`
	Timestamp  int64       `json:"timestamp"`
	Stale      bool        `json:"stale,omitempty"`
	AgeSeconds int64       `json:"age_seconds,omitempty"`
}

// WriteSuccess writes a 200 success envelope
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// WriteStale writes a 200 success envelope flagged as served from cache
func WriteStale(w http.ResponseWriter, data interface{}, ageSeconds int64) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Timestamp:  time.Now().Unix(),
		Stale:      true,
		AgeSeconds: ageSeconds,
	})
}

// WriteError writes an error envelope. Code may be empty when the failure has
// no broker classification.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	env := Envelope{
		Success:   false,
		Error:     &message,
		Timestamp: time.Now().Unix(),
	}
	if code != "" {
		env.ErrorCode = &code
	}
	writeEnvelope(w, status, env)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
