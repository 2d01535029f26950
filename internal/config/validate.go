package config

import "errors"

func ValidateForRun(cfg *Config) error {
	if cfg.TagStoreURL == "" {
		return errors.New("TAG_STORE_URL environment variable is required")
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	if err := cfg.Alert.Validate(); err != nil {
		return err
	}
	return nil
}
