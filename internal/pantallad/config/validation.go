package config

import (
	"fmt"
)

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if (c.Server.TLSCert != "") != (c.Server.TLSKey != "") {
		return fmt.Errorf("both TLS cert and key must be provided")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 1 {
		return fmt.Errorf("invalid max idle connections: %d", c.Database.MaxIdleConns)
	}
	if c.RateLimit.ScreenFetchRate < 1 {
		return fmt.Errorf("invalid screen fetch rate: %d", c.RateLimit.ScreenFetchRate)
	}
	if c.RateLimit.Period <= 0 {
		return fmt.Errorf("invalid rate limit period: %s", c.RateLimit.Period)
	}
	if c.Jobs.RetentionSchedule == "" {
		return fmt.Errorf("retention schedule is required")
	}
	if c.Jobs.RetentionKeepFor <= 0 {
		return fmt.Errorf("invalid retention keep-for window: %s", c.Jobs.RetentionKeepFor)
	}
	return nil
}
