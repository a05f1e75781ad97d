package config

import (
	"errors"
	"fmt"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if err := validPort("port", c.Port); err != nil {
		errs = append(errs, err)
	}
	if err := validPort("http_port", c.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if c.Address == "" {
		errs = append(errs, errors.New("address is required"))
	}
	if c.Core.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("core.capacity must be positive, got %d", c.Core.Capacity))
	}
	if c.Core.HistoryDepth < 0 {
		errs = append(errs, fmt.Errorf("core.history_depth must not be negative, got %d", c.Core.HistoryDepth))
	}
	return errors.Join(errs...)
}

func validPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535, got %d", key, port)
	}
	return nil
}
