package domain

import "errors"

// Error kinds. Every error returned by the services wraps exactly one of these,
// so handlers map them to transport status with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidCode     = errors.New("invalid code")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
)

// Error is a specific failure belonging to a kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrPostNotFound         = newError(ErrNotFound, "post not found")
	ErrCommentNotFound      = newError(ErrNotFound, "comment not found")
	ErrListNotFound         = newError(ErrNotFound, "list not found")
	ErrNotificationNotFound = newError(ErrNotFound, "notification not found")
	ErrCodeNotFound         = newError(ErrNotFound, "no verification code, request a code first")

	ErrEmailTaken    = newError(ErrConflict, "email already registered")
	ErrHandleTaken   = newError(ErrConflict, "handle already taken")
	ErrListNameTaken = newError(ErrConflict, "list name already taken")

	ErrSelfReference   = newError(ErrInvalidArgument, "cannot target yourself")
	ErrMalformedCode   = newError(ErrInvalidArgument, "verification code must be numeric")
	ErrWrongPassword   = newError(ErrInvalidArgument, "current password is incorrect")
	ErrParentMismatch  = newError(ErrInvalidArgument, "parent comment belongs to another post")
	ErrUnknownPurpose  = newError(ErrInvalidArgument, "unknown verification purpose")
	ErrInvalidImage    = newError(ErrInvalidArgument, "avatar must be a decodable image")
	ErrCodeMismatch    = newError(ErrInvalidCode, "verification code is incorrect")
	ErrBlocked         = newError(ErrForbidden, "blocked relationship")
	ErrNotOwner        = newError(ErrForbidden, "only the owner can modify this resource")
	ErrBadCredentials  = newError(ErrUnauthorized, "invalid email or password")
	ErrToggleContended = errors.New("toggle kept conflicting with concurrent writers")
)
