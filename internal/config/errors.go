package config

import "errors"

var (
	ErrInvalidRedisDB      = errors.New("invalid REDIS_DB value")
	ErrRedisAddrMissing    = errors.New("redis address is required")
	ErrInvalidTickInterval = errors.New("alert tick interval must be a positive number of seconds")
)
