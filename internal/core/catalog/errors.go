package catalog

import "errors"

var (
	ErrNotFound  = errors.New("catalog: not found")
	ErrInvalidID = errors.New("catalog: invalid id")
)
