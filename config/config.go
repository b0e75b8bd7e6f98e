// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"fmt"
	"strings"

	"github.com/reelmark-cli/reelmark/constant"
	"github.com/reelmark-cli/reelmark/filesystem"
	"github.com/reelmark-cli/reelmark/key"
	"github.com/reelmark-cli/reelmark/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// HistoryBackends lists the accepted values of the history.backend key.
var HistoryBackends = []string{"file", "sqlite"}

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Reelmark)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Reelmark)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return Validate()
}

// Validate rejects values the playback session cannot run with.
func Validate() error {
	if backend := viper.GetString(key.HistoryBackend); !lo.Contains(HistoryBackends, backend) {
		return fmt.Errorf("%s: unknown backend %q (supported: %s)", key.HistoryBackend, backend, strings.Join(HistoryBackends, ", "))
	}

	if viper.GetInt(key.HistoryFlushTimeout) <= 0 {
		return fmt.Errorf("%s: must be positive", key.HistoryFlushTimeout)
	}

	if strings.TrimSpace(viper.GetString(key.ProfileID)) == "" {
		return fmt.Errorf("%s: must not be empty", key.ProfileID)
	}

	return nil
}
