package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrReasonRequired     = errors.New("a rejection reason is required")
	ErrReferenceRequired  = errors.New("a bank transaction reference is required")
	ErrAmountOutOfRange   = errors.New("amount outside allowed limits")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrUserNotActive      = errors.New("user is not active")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("email or username already registered")
	ErrBankNameRequired   = errors.New("bank name is required")
	ErrUnknownBank        = errors.New("unknown bank")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfTransfer       = errors.New("cannot send money to yourself")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrEmptyMessage       = errors.New("message must not be empty")
	ErrMessageTooLong     = errors.New("message too long")
	ErrInvalidDocument    = errors.New("unsupported or oversized document")
	ErrFullNameRequired   = errors.New("full name must be at least 2 characters")
)
