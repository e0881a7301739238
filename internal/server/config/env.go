package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// malformed values leave the current value untouched.
//
// Recognized variables:
//
//	RUN_ADDRESS               HTTP bind address
//	DATABASE_DSN              PostgreSQL DSN
//	SECRET_KEY                token signing secret
//	ACCESS_TOKEN_VALIDITY     Go duration string, e.g. "1h"
//	CLOCK_SKEW_LEEWAY         Go duration string, e.g. "30s"
//	PASSWORD_MIN_LENGTH       integer
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("RUN_ADDRESS"); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("ACCESS_TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidity = d
		}
	}
	if v, ok := os.LookupEnv("CLOCK_SKEW_LEEWAY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.ClockSkewLeeway = d
		}
	}
	if v, ok := os.LookupEnv("PASSWORD_MIN_LENGTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.PasswordMinLength = n
		}
	}
}
