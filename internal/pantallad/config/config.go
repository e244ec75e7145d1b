// Package config provides configuration management for the signage server
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	TLSCert      string        `yaml:"tlsCert"`
	TLSKey       string        `yaml:"tlsKey"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// ConnectionString builds a lib/pq connection string
func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// RedisConfig holds settings for the rate limit store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig holds per-endpoint request limits
type RateLimitConfig struct {
	ScreenFetchRate  int           `yaml:"screenFetchRate"`
	ScreenFetchBurst int           `yaml:"screenFetchBurst"`
	Period           time.Duration `yaml:"period"`
}

// JobsConfig holds background job settings
type JobsConfig struct {
	RetentionSchedule string        `yaml:"retentionSchedule"`
	RetentionKeepFor  time.Duration `yaml:"retentionKeepFor"`
}

// Default returns the server configuration defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "pantalla",
			User:            "pantalla",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		RateLimit: RateLimitConfig{
			ScreenFetchRate:  60,
			ScreenFetchBurst: 20,
			Period:           time.Minute,
		},
		Jobs: JobsConfig{
			RetentionSchedule: "30 3 * * *",
			RetentionKeepFor:  30 * 24 * time.Hour,
		},
	}
}

// overlayEnv overlays environment variables on top of file-based config
func (c *Config) overlayEnv() {
	// Server config
	if host := getEnv("PANTALLA_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvAsInt("PANTALLA_SERVER_PORT", 0); port != 0 {
		c.Server.Port = port
	}
	if readTimeout := getEnvAsDuration("PANTALLA_SERVER_READ_TIMEOUT", 0); readTimeout != 0 {
		c.Server.ReadTimeout = readTimeout
	}
	if writeTimeout := getEnvAsDuration("PANTALLA_SERVER_WRITE_TIMEOUT", 0); writeTimeout != 0 {
		c.Server.WriteTimeout = writeTimeout
	}
	if idleTimeout := getEnvAsDuration("PANTALLA_SERVER_IDLE_TIMEOUT", 0); idleTimeout != 0 {
		c.Server.IdleTimeout = idleTimeout
	}
	if tlsCert := getEnv("PANTALLA_TLS_CERT", ""); tlsCert != "" {
		c.Server.TLSCert = tlsCert
	}
	if tlsKey := getEnv("PANTALLA_TLS_KEY", ""); tlsKey != "" {
		c.Server.TLSKey = tlsKey
	}

	// Database config - check multiple env var names
	if host := getEnvMulti([]string{"PANTALLA_DB_HOST", "DB_HOST", "POSTGRES_HOST"}, ""); host != "" {
		c.Database.Host = host
	}
	if port := getEnvAsIntMulti([]string{"PANTALLA_DB_PORT", "DB_PORT", "POSTGRES_PORT"}, 0); port != 0 {
		c.Database.Port = port
	}
	if name := getEnvMulti([]string{"PANTALLA_DB_NAME", "DB_NAME", "POSTGRES_DB"}, ""); name != "" {
		c.Database.Name = name
	}
	if user := getEnvMulti([]string{"PANTALLA_DB_USER", "DB_USER", "POSTGRES_USER"}, ""); user != "" {
		c.Database.User = user
	}
	if password := getEnvMulti([]string{"PANTALLA_DB_PASSWORD", "DB_PASSWORD", "POSTGRES_PASSWORD"}, ""); password != "" {
		c.Database.Password = password
	}
	if sslmode := getEnv("PANTALLA_DB_SSLMODE", ""); sslmode != "" {
		c.Database.SSLMode = sslmode
	}
	if maxOpenConns := getEnvAsInt("PANTALLA_DB_MAX_OPEN_CONNS", 0); maxOpenConns != 0 {
		c.Database.MaxOpenConns = maxOpenConns
	}
	if maxIdleConns := getEnvAsInt("PANTALLA_DB_MAX_IDLE_CONNS", 0); maxIdleConns != 0 {
		c.Database.MaxIdleConns = maxIdleConns
	}
	if connMaxLifetime := getEnvAsDuration("PANTALLA_DB_CONN_MAX_LIFETIME", 0); connMaxLifetime != 0 {
		c.Database.ConnMaxLifetime = connMaxLifetime
	}

	// Redis config
	if addr := getEnvMulti([]string{"PANTALLA_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.Redis.Addr = addr
	}
	if password := getEnvMulti([]string{"PANTALLA_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""); password != "" {
		c.Redis.Password = password
	}
	if db := getEnvAsInt("PANTALLA_REDIS_DB", -1); db >= 0 {
		c.Redis.DB = db
	}

	// Rate limit config
	if rate := getEnvAsInt("PANTALLA_RATELIMIT_SCREEN_RATE", 0); rate != 0 {
		c.RateLimit.ScreenFetchRate = rate
	}
	if burst := getEnvAsInt("PANTALLA_RATELIMIT_SCREEN_BURST", 0); burst != 0 {
		c.RateLimit.ScreenFetchBurst = burst
	}
	if period := getEnvAsDuration("PANTALLA_RATELIMIT_PERIOD", 0); period != 0 {
		c.RateLimit.Period = period
	}

	// Jobs config
	if schedule := getEnv("PANTALLA_JOBS_RETENTION_SCHEDULE", ""); schedule != "" {
		c.Jobs.RetentionSchedule = schedule
	}
	if keepFor := getEnvAsDuration("PANTALLA_JOBS_RETENTION_KEEP_FOR", 0); keepFor != 0 {
		c.Jobs.RetentionKeepFor = keepFor
	}
}
