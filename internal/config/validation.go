package config

import (
	"fmt"
	"time"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func validate(cfg *Config) error {
	loc, err := time.LoadLocation(cfg.Globals.Timezone)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, fmt.Sprintf("invalid globals.timezone %q", cfg.Globals.Timezone)).
			Fatal().WithContextMap(cfg.errorContext()).Build()
	}
	cfg.location = loc

	if _, ok := cfg.Site["base_url"].(string); !ok {
		return ferrors.ConfigError("site.base_url must be a string").WithContextMap(cfg.errorContext()).Build()
	}
	if _, ok := cfg.Site["static_url"].(string); !ok {
		return ferrors.ConfigError("site.static_url must be a string").WithContextMap(cfg.errorContext()).Build()
	}
	if iv := cfg.Serve.RebuildInterval; iv != "" {
		d, err := time.ParseDuration(iv)
		if err != nil || d <= 0 {
			return ferrors.ConfigError(fmt.Sprintf("invalid serve.rebuild_interval %q", iv)).WithContextMap(cfg.errorContext()).Build()
		}
	}
	return nil
}

// RebuildInterval returns the parsed serve.rebuild_interval, zero when unset.
func (c *Config) RebuildInterval() time.Duration {
	d, _ := time.ParseDuration(c.Serve.RebuildInterval)
	return d
}

// errorContext identifies the loaded file and selected env in config errors.
func (c *Config) errorContext() ferrors.ErrorContext {
	ctx := ferrors.ErrorContext{"file": c.Path}
	if c.Env != "" {
		ctx["env"] = c.Env
	}
	return ctx
}
