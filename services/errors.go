// Package services holds the business operations behind the HTTP API: order
// placement and lifecycle, notifications, accounts, reviews and statistics.
package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUnprocessable      = errors.New("request cannot be processed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)
