package auth

import (
	"context"
	"errors"
)

// Principal is the signed-in user carried through a request's context.
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal attached by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// Code enumerates the authentication failures surfaced to users.
type Code string

const (
	UserNotFound      Code = "user-not-found"
	WrongPassword     Code = "wrong-password"
	InvalidEmail      Code = "invalid-email"
	TooManyRequests   Code = "too-many-requests"
	EmailAlreadyInUse Code = "email-already-in-use"
	WeakPassword      Code = "weak-password"
	InvalidToken      Code = "invalid-token"
	Unknown           Code = "unknown"
)

var messages = map[Code]string{
	UserNotFound:      "No user exists with this email.",
	WrongPassword:     "Wrong password.",
	InvalidEmail:      "Invalid email address.",
	TooManyRequests:   "Too many failed attempts. Try again later.",
	EmailAlreadyInUse: "This email address is already in use.",
	WeakPassword:      "Password must be at least 6 characters.",
	InvalidToken:      "Your session has expired. Sign in again.",
}

// Message maps a failure code to user-facing text.
func Message(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "Something went wrong. Please try again."
}

// Error is an authentication failure with a stable code.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return "auth: " + string(e.Code)
}

// Fail builds an *Error for code.
func Fail(code Code) error {
	return &Error{Code: code}
}

// CodeOf extracts the failure code of err, or Unknown.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return Unknown
}
