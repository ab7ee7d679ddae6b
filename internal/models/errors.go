package models

import "errors"

// ErrInvalidInput marks requests rejected before any upstream call is made.
var ErrInvalidInput = errors.New("invalid input")
