package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"            validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours"  validate:"required,gt=0"`
}

// SchedulerConfig controls the background generation job that materializes
// recurring task instances ahead of time.
type SchedulerConfig struct {
	// CronSpec is the cron expression the generation job runs on.
	CronSpec string `mapstructure:"cron_spec" validate:"required"`

	// HorizonDays is how far ahead of now instances are generated.
	HorizonDays int `mapstructure:"horizon_days" validate:"required,gt=0"`
}

// HorizonWindow returns the scheduler's generation window as a duration.
func (c SchedulerConfig) HorizonWindow() time.Duration {
	return time.Duration(c.HorizonDays) * 24 * time.Hour
}
