// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	migrateOnly    = pflag.Bool("migrate-only", false, "Runs database migrations and exits")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBTypes   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// MigrateOnly reports whether the app should run migrations and exit
func MigrateOnly() bool {
	return *migrateOnly
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")

	v.BindEnv("db.type", "db_type")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("security.jwt_secret", "security_jwt_secret")
	v.BindEnv("security.access_ttl", "security_access_ttl")
	v.BindEnv("security.refresh_ttl", "security_refresh_ttl")

	v.BindEnv("otp.ttl", "otp_ttl")
	v.BindEnv("otp.resend_cooldown", "otp_resend_cooldown")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender", "mail_sender")
	v.BindEnv("mail.password", "mail_password")

	v.BindEnv("gemini.api_key", "gemini_api_key")
	v.BindEnv("gemini.model", "gemini_model")

	v.BindEnv("cors.allowed_origins", "cors_allowed_origins")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// Access tokens live for an hour, refresh tokens for 30 days
	v.SetDefault("security.access_ttl", 60)
	v.SetDefault("security.refresh_ttl", 60*24*30)

	// Minutes. One TTL covers both registration and reset codes
	v.SetDefault("otp.ttl", 10)
	// Seconds between resend requests for the same address
	v.SetDefault("otp.resend_cooldown", 60)

	v.SetDefault("gemini.model", "gemini-1.5-pro-latest")

	// Per-IP limit on the public auth endpoints
	v.SetDefault("rate.rps", 5)
	v.SetDefault("rate.burst", 10)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBTypes, v.GetString("db.type")) {
		return errors.New("invalid database type provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("security.jwt_secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("otp.ttl") <= 0 {
		return errors.New("otp.ttl must be bigger than 0")
	}

	if v.GetInt("otp.resend_cooldown") < 0 {
		return errors.New("otp.resend_cooldown can't be negative")
	}

	if v.GetString("mail.sender") == "" {
		return errors.New("mail.sender can't be empty")
	}

	if v.GetString("mail.host") == "" {
		return errors.New("mail.host can't be empty")
	}

	if v.GetInt("mail.port") <= 0 {
		return errors.New("invalid mail.port provided")
	}

	if v.GetString("gemini.api_key") == "" {
		fmt.Println("[WARNING]: No Gemini API key set. Roadmap generation will be unavailable")
	}

	return nil
}
