package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the wire format shared by every endpoint: status is either
// "success" or "error", message is human-readable, data carries the payload
// and error carries the machine-readable code on failures.
type Envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains machine-readable error information.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

// Fail writes an error envelope from an HTTPError.
func Fail(w http.ResponseWriter, err HTTPError) {
	writeJSON(w, err.Status, Envelope{
		Status:  "error",
		Message: err.Error(),
		Error:   &ErrorDetail{Code: err.Code},
	})
}

// FailWithDetails writes an error envelope with per-field details, used for
// validation failures.
func FailWithDetails(w http.ResponseWriter, err HTTPError, details map[string][]string) {
	writeJSON(w, err.Status, Envelope{
		Status:  "error",
		Message: err.Error(),
		Error:   &ErrorDetail{Code: err.Code, Details: details},
	})
}

// FailFromError maps an arbitrary error onto the envelope. Known HTTPErrors
// keep their status and code; everything else becomes a generic 500 so
// internal detail never leaks to the client.
func FailFromError(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		Fail(w, httpErr)
		return
	}
	Fail(w, ErrInternal)
}
