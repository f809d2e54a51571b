package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goUmroh "github.com/MrEthical07/goUmroh"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "UMROH"
	defaultBackendURL = "http://localhost:8080"
	configName        = "umroh"
)

// fileConfig mirrors goUmroh.Config for viper decoding. Keys are the
// snake_case YAML names; env vars are UMROH_<SECTION>_<KEY>.
type fileConfig struct {
	API struct {
		BackendURL string        `mapstructure:"backend_url"`
		Timeout    time.Duration `mapstructure:"timeout"`
		UserAgent  string        `mapstructure:"user_agent"`
	} `mapstructure:"api"`
	Auth struct {
		AuthURL     string `mapstructure:"auth_url"`
		CallbackURL string `mapstructure:"callback_url"`
		InstallID   string `mapstructure:"install_id"`
		// Listen is the loopback address the login command receives the
		// redirect on.
		Listen string `mapstructure:"listen"`
	} `mapstructure:"auth"`
	Storage struct {
		Kind          string `mapstructure:"kind"`
		Path          string `mapstructure:"path"`
		RedisAddr     string `mapstructure:"redis_addr"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`
		RedisPrefix   string `mapstructure:"redis_prefix"`
	} `mapstructure:"storage"`
	Audit struct {
		Enabled    bool `mapstructure:"enabled"`
		BufferSize int  `mapstructure:"buffer_size"`
		DropIfFull bool `mapstructure:"drop_if_full"`
	} `mapstructure:"audit"`
	Metrics struct {
		Enabled           bool `mapstructure:"enabled"`
		LatencyHistograms bool `mapstructure:"latency_histograms"`
	} `mapstructure:"metrics"`
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// cliConfig is the loaded configuration plus CLI-only settings.
type cliConfig struct {
	Client goUmroh.Config
	Listen string
	// Source is the config file used, or "" when none was found.
	Source string
}

// loadConfig layers defaults, an optional YAML file and UMROH_* env vars.
// An explicit path must exist; otherwise umroh.yaml is looked up in the
// working directory and the user config directory.
func loadConfig(path string) (cliConfig, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cliConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return cliConfig{}, fmt.Errorf("decode config: %w", err)
	}

	cfg := goUmroh.DefaultConfig()
	cfg.API.BackendURL = fc.API.BackendURL
	cfg.API.Timeout = fc.API.Timeout
	cfg.API.UserAgent = fc.API.UserAgent
	cfg.Auth.AuthURL = fc.Auth.AuthURL
	cfg.Auth.CallbackURL = fc.Auth.CallbackURL
	cfg.Auth.InstallID = fc.Auth.InstallID
	cfg.Storage.Kind = goUmroh.StorageKind(strings.ToLower(fc.Storage.Kind))
	cfg.Storage.Path = fc.Storage.Path
	cfg.Storage.RedisAddr = fc.Storage.RedisAddr
	cfg.Storage.RedisPassword = fc.Storage.RedisPassword
	cfg.Storage.RedisDB = fc.Storage.RedisDB
	cfg.Storage.RedisPrefix = fc.Storage.RedisPrefix
	cfg.Audit.Enabled = fc.Audit.Enabled
	cfg.Audit.BufferSize = fc.Audit.BufferSize
	cfg.Audit.DropIfFull = fc.Audit.DropIfFull
	cfg.Metrics.Enabled = fc.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = fc.Metrics.LatencyHistograms
	cfg.Logging.Level = fc.Logging.Level
	cfg.Logging.Format = fc.Logging.Format

	if err := cfg.Validate(); err != nil {
		return cliConfig{}, err
	}

	return cliConfig{
		Client: cfg,
		Listen: fc.Auth.Listen,
		Source: v.ConfigFileUsed(),
	}, nil
}

func setDefaults(v *viper.Viper) {
	def := goUmroh.DefaultConfig()

	v.SetDefault("api.backend_url", defaultBackendURL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("api.user_agent", "umroh-cli/1.0")

	v.SetDefault("auth.auth_url", def.Auth.AuthURL)
	v.SetDefault("auth.callback_url", def.Auth.CallbackURL)
	v.SetDefault("auth.install_id", "")
	v.SetDefault("auth.listen", "127.0.0.1:0")

	v.SetDefault("storage.kind", string(goUmroh.StorageFile))
	v.SetDefault("storage.path", defaultStorageDir())
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", def.Storage.RedisPrefix)

	v.SetDefault("audit.enabled", def.Audit.Enabled)
	v.SetDefault("audit.buffer_size", def.Audit.BufferSize)
	v.SetDefault("audit.drop_if_full", def.Audit.DropIfFull)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.latency_histograms", def.Metrics.EnableLatencyHistograms)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", def.Logging.Format)
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, configName)
	}
	return filepath.Join(os.TempDir(), configName)
}
