package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + optional .env file).
type Config struct {
	Env           string
	Port          string
	DatabaseURL   string  // empty = in-memory SQLite
	RedisURL      string  // empty = in-process sessions, no cross-instance fanout
	AllowedSuffix string  // CORS origin suffix, e.g. ".shamba.co.ke"
	AdminEmail    string  // bootstrap admin account
	AdminPassword string
	UnitCost      float64 // cost model, currency per kg
	SweepSpec     string  // cron spec for the contract expiry sweep
}

// Load reads config from env and an optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}
	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	sweep := viper.GetString("SWEEP_SPEC")
	if sweep == "" {
		sweep = "0 6 * * *"
	}

	return &Config{
		Env:           env,
		Port:          port,
		DatabaseURL:   viper.GetString("DATABASE_URL"),
		RedisURL:      viper.GetString("REDIS_URL"),
		AllowedSuffix: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		AdminEmail:    viper.GetString("ADMIN_EMAIL"),
		AdminPassword: viper.GetString("ADMIN_PASSWORD"),
		UnitCost:      viper.GetFloat64("UNIT_COST"),
		SweepSpec:     sweep,
	}, nil
}
