package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/normalization"
)

// AssetNaming selects how extracted page asset files are named.
type AssetNaming string

const (
	AssetNamingRandom      AssetNaming = "random"
	AssetNamingContentHash AssetNaming = "content_hash"
)

var assetNamingNormalizer = normalization.NewEnum("asset_naming", map[string]AssetNaming{
	"random":       AssetNamingRandom,
	"random_token": AssetNamingRandom,
	"content_hash": AssetNamingContentHash,
	"contenthash":  AssetNamingContentHash,
	"hash":         AssetNamingContentHash,
}, AssetNamingRandom)

// NormalizeAssetNaming maps free-form input onto a known AssetNaming.
func NormalizeAssetNaming(raw string) AssetNaming {
	return assetNamingNormalizer.Normalize(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewEnum("log_level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewEnum("log_format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

func normalize(cfg *Config) error {
	for name, mc := range map[string]*ModeConfig{"build": &cfg.Build, "serve": &cfg.Serve} {
		mc.Env = strings.TrimSpace(mc.Env)
		if mc.AssetNaming == "" {
			mc.AssetNaming = AssetNamingRandom
			continue
		}
		naming, err := assetNamingNormalizer.Parse(string(mc.AssetNaming))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, name+".asset_naming is invalid").
				Fatal().WithContextMap(cfg.errorContext()).Build()
		}
		mc.AssetNaming = naming
	}
	cfg.Globals.Layout = strings.TrimSpace(cfg.Globals.Layout)
	cfg.Globals.Timezone = strings.TrimSpace(cfg.Globals.Timezone)
	return nil
}
