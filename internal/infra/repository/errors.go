package repository

import "errors"

var ErrInvalidEventData = errors.New("invalid alert event data")
