package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
	ErrNotOwner        = errors.New("acting user is not the product owner")
	ErrMalformedKey    = errors.New("malformed product key")
	ErrWriteConflict   = errors.New("concurrent write conflict")
	ErrInvalidRecord   = errors.New("invalid product record")
)
