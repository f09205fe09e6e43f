package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error payload every endpoint returns
type ErrorBody struct {
	Detail string      `json:"detail"`
	Errors interface{} `json:"errors,omitempty"`
}

// MessageBody carries a human readable message and an optional payload under its own key
type MessageBody map[string]interface{}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Message writes {"message": msg} plus any extra fields
func Message(w http.ResponseWriter, statusCode int, message string, extra MessageBody) {
	body := MessageBody{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, statusCode, body)
}

func Error(w http.ResponseWriter, statusCode int, detail string) {
	JSON(w, statusCode, ErrorBody{Detail: detail})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, ErrorBody{
		Detail: "Validation failed",
		Errors: errors,
	})
}

func BadRequest(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadRequest, detail)
}

func Unauthorized(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Resource not found"
	}
	Error(w, http.StatusNotFound, detail)
}

func Conflict(w http.ResponseWriter, detail string) {
	Error(w, http.StatusConflict, detail)
}

func TooManyRequests(w http.ResponseWriter, detail string) {
	Error(w, http.StatusTooManyRequests, detail)
}

func InternalServerError(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, detail)
}
