package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mpetrenko/hrauth/internal/flagx"
	"github.com/mpetrenko/hrauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr            string         `json:"endpoint_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	AccessTokenValidity     timex.Duration `json:"access_token_validity"`
	ClockSkewLeeway         timex.Duration `json:"clock_skew_leeway"`
	Argon2Time              uint32         `json:"argon2_time"`
	Argon2Memory            uint32         `json:"argon2_memory"`
	Argon2Threads           uint8          `json:"argon2_threads"`
	PasswordMinLength       int            `json:"password_min_length"`
	PasswordRequireMixed    *bool          `json:"password_require_mixed_case"`
	PasswordRequireDigit    *bool          `json:"password_require_digit"`
	RevocationPurgeInterval timex.Duration `json:"revocation_purge_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidity.Duration != 0 {
		config.AccessTokenValidity = time.Duration(c.AccessTokenValidity.Duration)
	}
	if c.ClockSkewLeeway.Duration != 0 {
		config.ClockSkewLeeway = time.Duration(c.ClockSkewLeeway.Duration)
	}
	if c.Argon2Time != 0 {
		config.Argon2Time = c.Argon2Time
	}
	if c.Argon2Memory != 0 {
		config.Argon2Memory = c.Argon2Memory
	}
	if c.Argon2Threads != 0 {
		config.Argon2Threads = c.Argon2Threads
	}
	if c.PasswordMinLength != 0 {
		config.PasswordMinLength = c.PasswordMinLength
	}
	if c.PasswordRequireMixed != nil {
		config.PasswordRequireMixed = *c.PasswordRequireMixed
	}
	if c.PasswordRequireDigit != nil {
		config.PasswordRequireDigit = *c.PasswordRequireDigit
	}
	if c.RevocationPurgeInterval.Duration != 0 {
		config.RevocationPurgeInterval = time.Duration(c.RevocationPurgeInterval.Duration)
	}
}
