// Package apperr holds sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrReadOnly         = errors.New("menu is read-only")
	ErrMalformedShare   = errors.New("malformed share payload")
	ErrMissingPhone     = errors.New("phone number is not set")
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrInvalidImport    = errors.New("invalid menu file")
)
