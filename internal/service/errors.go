// Package service implements the parking session workflows: admitting a
// client into a lot and releasing them again.
package service

import "errors"

// Errors returned by SessionManager.  Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)
