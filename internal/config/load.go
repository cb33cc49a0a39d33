package config

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/flakeradar/flakeradar/internal/constants"
	"github.com/flakeradar/flakeradar/internal/domain"
	"github.com/flakeradar/flakeradar/internal/errors"
)

// newViperInstance creates a new Viper instance with standard flakeradar
// configuration: environment variable prefix (FLAKERADAR_), key replacer,
// and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not
// found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// viperDecoderOption returns the decode hooks needed to unmarshal string
// durations ("30s") and string report formats from YAML/env sources.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	)
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (FLAKERADAR_* prefix)
//  2. Config file at configPath (when non-empty)
//  3. Built-in defaults
//
// A missing config file is only an error when configPath was given
// explicitly; an empty configPath loads defaults plus environment.
//
// The returned config is unmarshaled but NOT validated: Repository and
// Artifacts normally come from the caller (webhook payload or manifest), so
// validation happens once the batch is assembled, via Validate.
func Load(configPath string) (*IngestionConfig, error) {
	v := newViperInstance()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if isConfigNotFoundError(err) {
				return nil, errors.Wrapf(errors.ErrConfigNotFound, "%s", configPath)
			}
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg IngestionConfig
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields of cfg from DefaultConfig. Used by
// callers that assemble an IngestionConfig programmatically rather than
// through viper.
func ApplyDefaults(cfg *IngestionConfig) {
	def := DefaultConfig()
	if cfg.MaxFileSizeBytes == 0 {
		cfg.MaxFileSizeBytes = def.MaxFileSizeBytes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = def.Retry
	}
}

// knownFormatNames renders the recognized dialect names for error messages.
func knownFormatNames() string {
	formats := domain.KnownFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
