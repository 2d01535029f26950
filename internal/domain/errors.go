package domain

import "errors"

var (
	ErrInvalidPolicy    = errors.New("invalid time policy")
	ErrTagNotFound      = errors.New("tag not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrLocationNotFound = errors.New("location not found")
)
