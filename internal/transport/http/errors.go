package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps a service error to an HTTP status and a stable code.
func statusOf(err error) (int, errorBody) {
	var ae *auth.Error
	if errors.As(err, &ae) {
		body := errorBody{Code: string(ae.Code), Message: auth.Message(ae.Code)}
		switch ae.Code {
		case auth.InvalidToken, auth.UserNotFound, auth.WrongPassword:
			return http.StatusUnauthorized, body
		case auth.TooManyRequests:
			return http.StatusTooManyRequests, body
		case auth.EmailAlreadyInUse:
			return http.StatusConflict, body
		case auth.InvalidEmail, auth.WeakPassword:
			return http.StatusBadRequest, body
		}
		return http.StatusInternalServerError, body
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorBody{Code: "invalid-input", Message: ve.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorBody{Code: "not-found", Message: err.Error()}
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusNotFound, errorBody{Code: "no-questions", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, errorBody{Code: "invalid-state", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidLabel),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownScoreField),
		errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest, errorBody{Code: "invalid-input", Message: err.Error()}
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorBody{Code: "unavailable", Message: "service temporarily unavailable"}
	}
	return http.StatusInternalServerError, errorBody{Code: string(auth.Unknown), Message: auth.Message(auth.Unknown)}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]errorBody{"error": body})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
