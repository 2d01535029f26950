package config

import (
	"os"
	"strconv"
	"time"
)

const (
	alertTickIntervalEnv = "ALERT_TICK_INTERVAL_SECONDS"

	defaultTickIntervalSeconds = 30
)

type AlertConfig struct {
	TickInterval time.Duration
}

func LoadAlertConfig() (*AlertConfig, error) {
	tickSeconds := defaultTickIntervalSeconds
	if raw := os.Getenv(alertTickIntervalEnv); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, ErrInvalidTickInterval
		}
		tickSeconds = parsed
	}

	return &AlertConfig{
		TickInterval: time.Duration(tickSeconds) * time.Second,
	}, nil
}

func (c *AlertConfig) Validate() error {
	if c == nil || c.TickInterval <= 0 {
		return ErrInvalidTickInterval
	}
	return nil
}
