// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strata CMS Contributors

package main

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the daemon configuration, loaded from a YAML file with flag
// overrides.
type Config struct {
	ListenAddr  string `koanf:"listen_addr"`
	DatabaseURL string `koanf:"database_url"`
	LogFormat   string `koanf:"log_format"`

	List struct {
		Key           string `koanf:"key"`
		Table         string `koanf:"table"`
		IdentityField string `koanf:"identity_field"`
		SecretField   string `koanf:"secret_field"`
	} `koanf:"list"`

	ProtectIdentities bool `koanf:"protect_identities"`

	PasswordReset struct {
		Enabled        bool          `koanf:"enabled"`
		TokensValidFor time.Duration `koanf:"tokens_valid_for"`
	} `koanf:"password_reset"`

	MagicAuth struct {
		Enabled        bool          `koanf:"enabled"`
		TokensValidFor time.Duration `koanf:"tokens_valid_for"`
	} `koanf:"magic_auth"`

	SessionLifetime time.Duration `koanf:"session_lifetime"`
}

// defaultConfig returns the config used when a key is absent from both the
// file and the flags.
func defaultConfig() Config {
	cfg := Config{
		ListenAddr:      ":8465",
		LogFormat:       "json",
		SessionLifetime: 24 * time.Hour,
	}
	cfg.List.Key = "User"
	cfg.List.Table = "users"
	cfg.List.IdentityField = "email"
	cfg.List.SecretField = "password"
	return cfg
}

// LoadConfig builds the daemon config from an optional YAML file and the
// command's flag set. Precedence is flags over file over defaults. Defaults
// are loaded first so posflag skips unchanged flags whose keys already exist.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "load defaults").
			Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded config for required fields.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if c.List.Key == "" {
		return oops.Code("CONFIG_INVALID").Errorf("list.key is required")
	}
	if c.List.Table == "" {
		return oops.Code("CONFIG_INVALID").Errorf("list.table is required")
	}
	if c.SessionLifetime <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session_lifetime must be positive")
	}
	return nil
}
