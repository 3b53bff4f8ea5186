package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidArgument signals a request parameter the engine cannot
	// safely clamp (e.g. an inverted range or unknown sort mode).
	ErrInvalidArgument = errors.New("invalid argument")
)
