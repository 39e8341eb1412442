package config

// Package config loads the process-wide configuration for the three
// daemons (cmd/tp, cmd/ledgersync, cmd/server) via viper layered over a
// .env file, mirroring the teacher's pkg/config.Load shape: a fixed env
// name picks an overlay file, viper.AutomaticEnv() lets individual
// environment variables win over both, then the result unmarshals into a
// typed struct. See SPEC_FULL.md §10.

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"provenance-chain/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// insecureDemoPrivateKey and insecureDemoJWTSecret are the fallbacks used
// when PRIVATE_KEY/JWT_SECRET are unset, per spec.md §6. Never used unless
// the respective environment variable is empty.
const (
	insecureDemoPrivateKey = "0000000000000000000000000000000000000000000000000000000000000001"
	insecureDemoJWTSecret  = "insecure-demo-secret-do-not-use-in-production"
)

type PlatformConfig struct {
	ValidatorURL string `mapstructure:"validator_url" json:"validator_url"`
	// RetryWait is decoded by resolveRetryWait rather than viper's struct
	// unmarshal: spec.md §6 names RETRY_WAIT in milliseconds (e.g. "5000"),
	// but mapstructure's duration hook treats a bare integer as nanoseconds,
	// not milliseconds. A unit suffix ("5s") still works.
	RetryWait time.Duration `mapstructure:"-" json:"retry_wait"`
}

type StoreConfig struct {
	DBHost string `mapstructure:"db_host" json:"db_host"`
	DBName string `mapstructure:"db_name" json:"db_name"`
	DBPort int    `mapstructure:"db_port" json:"db_port"`
}

type BatcherConfig struct {
	PrivateKeyHex  string        `mapstructure:"private_key" json:"-"`
	SettleInterval time.Duration `mapstructure:"settle_interval" json:"settle_interval"`
	JWTSecret      string        `mapstructure:"jwt_secret" json:"-"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
	File  string `mapstructure:"file" json:"file"`
}

// Config is the unified configuration for every daemon in this module.
type Config struct {
	Platform PlatformConfig `mapstructure:"platform" json:"platform"`
	Store    StoreConfig    `mapstructure:"store" json:"store"`
	Batcher  BatcherConfig  `mapstructure:"batcher" json:"batcher"`
	Logging  LoggingConfig  `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

func setDefaults() {
	viper.SetDefault("platform.validator_url", "localhost:8800")
	viper.SetDefault("platform.retry_wait", 5*time.Second)
	viper.SetDefault("store.db_host", "localhost")
	viper.SetDefault("store.db_name", "provenance")
	viper.SetDefault("store.db_port", 27017)
	viper.SetDefault("batcher.settle_interval", time.Second)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}

// Load reads .env (if present), applies defaults, then lets the named
// environment variables override them via viper.AutomaticEnv(). env
// selects an optional ".env.<env>" overlay loaded first, so its keys win
// over a plain .env (godotenv.Load does not overwrite already-set keys).
func Load(env string) (*Config, error) {
	if env != "" {
		_ = godotenv.Load(".env." + env)
	}
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("config: no .env file found, relying on the process environment")
	}

	setDefaults()
	viper.AutomaticEnv()
	bindEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	retryWait, err := resolveRetryWait()
	if err != nil {
		return nil, utils.Wrap(err, "parse RETRY_WAIT")
	}
	AppConfig.Platform.RetryWait = retryWait

	if AppConfig.Batcher.PrivateKeyHex == "" {
		logrus.Warn("config: PRIVATE_KEY unset, falling back to the insecure demo key")
		AppConfig.Batcher.PrivateKeyHex = insecureDemoPrivateKey
	}
	if AppConfig.Batcher.JWTSecret == "" {
		logrus.Warn("config: JWT_SECRET unset, falling back to the insecure demo secret")
		AppConfig.Batcher.JWTSecret = insecureDemoJWTSecret
	}
	return &AppConfig, nil
}

// bindEnv maps the spec's named environment variables onto their
// mapstructure keys; AutomaticEnv alone only matches keys whose upper-cased
// dotted form equals the env var name (e.g. PLATFORM.VALIDATOR_URL), which
// is not how spec.md §6 names them.
func bindEnv() {
	_ = viper.BindEnv("platform.validator_url", "VALIDATOR_URL")
	_ = viper.BindEnv("platform.retry_wait", "RETRY_WAIT")
	_ = viper.BindEnv("store.db_host", "DB_HOST")
	_ = viper.BindEnv("store.db_port", "DB_PORT")
	_ = viper.BindEnv("store.db_name", "DB_NAME")
	_ = viper.BindEnv("batcher.private_key", "PRIVATE_KEY")
	_ = viper.BindEnv("batcher.jwt_secret", "JWT_SECRET")
}

// resolveRetryWait reads platform.retry_wait directly rather than through
// viper's struct-unmarshal duration hook: RETRY_WAIT is a bare millisecond
// count per spec.md §6, and that hook's fallback for a unit-less string
// reinterprets it as nanoseconds. A value carrying an explicit unit (e.g.
// "5s") is still honored via time.ParseDuration.
func resolveRetryWait() (time.Duration, error) {
	switch v := viper.Get("platform.retry_wait").(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		ms := viper.GetInt64("platform.retry_wait")
		if ms == 0 && v != "0" {
			return 0, fmt.Errorf("invalid RETRY_WAIT %q: must be a millisecond count or a duration with a unit (e.g. 5s)", v)
		}
		return time.Duration(ms) * time.Millisecond, nil
	default:
		return 5 * time.Second, nil
	}
}

// LoadFromEnv loads configuration using the PROV_ENV environment variable
// to select an optional overlay file.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("PROV_ENV", ""))
}
