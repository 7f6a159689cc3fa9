package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/dotpath"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// FileName is the configuration file looked up in the project root.
const FileName = "pagesmith.yml"

const (
	DefaultLayout    = "layouts/default.html"
	DefaultTimezone  = "America/New_York"
	DefaultBaseURL   = "/"
	DefaultStaticURL = "/static"
	DefaultPort      = 8000
)

// Mode selects which section (build or serve) drives a build invocation.
type Mode string

const (
	ModeBuild Mode = "build"
	ModeServe Mode = "serve"
)

// Config is the loaded, environment-resolved project configuration.
type Config struct {
	// Root is the absolute project root directory.
	Root string
	// Path is the configuration file that was loaded.
	Path string
	// Mode is the section that was selected for this invocation.
	Mode Mode
	// Env is the selected environment overlay, empty when none.
	Env string

	Build   ModeConfig
	Serve   ModeConfig
	Globals GlobalsConfig
	// Site is the base site mapping with the selected environment merged in.
	Site map[string]any

	raw      map[string]any
	location *time.Location
}

// ModeConfig is shared by the build and serve sections; the serve section
// additionally honors the port/livereload keys.
type ModeConfig struct {
	Env             string       `yaml:"env"`
	GenerateSitemap bool         `yaml:"generate_sitemap"`
	MinifyHTML      bool         `yaml:"minify_html"`
	WriteManifest   bool         `yaml:"write_manifest"`
	AssetNaming     AssetNaming  `yaml:"asset_naming"`
	HistoryDB       string       `yaml:"history_db"`
	Notify          NotifyConfig `yaml:"notify"`

	Port            int    `yaml:"port"`
	Livereload      *bool  `yaml:"livereload"`
	RebuildInterval string `yaml:"rebuild_interval"`
}

// NotifyConfig configures build-completion notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// GlobalsConfig holds settings shared by every page.
type GlobalsConfig struct {
	Layout   string         `yaml:"layout"`
	Timezone string         `yaml:"timezone"`
	Sitemap  map[string]any `yaml:"sitemap"`
	Assets   GlobalAssets   `yaml:"assets"`
}

// GlobalAssets lists scripts and stylesheets added to every page. Entries are
// either plain URLs or {url, attributes} mappings.
type GlobalAssets struct {
	Scripts     []any `yaml:"scripts"`
	Stylesheets []any `yaml:"stylesheets"`
}

type fileSchema struct {
	Env     map[string]map[string]any `yaml:"env"`
	Serve   ModeConfig                `yaml:"serve"`
	Build   ModeConfig                `yaml:"build"`
	Globals GlobalsConfig             `yaml:"globals"`
	Site    map[string]any            `yaml:"site"`
}

// LoadOptions selects the configuration file, section and environment.
type LoadOptions struct {
	// File overrides the configuration path; relative paths resolve against root.
	File string
	Mode Mode
	// Env overrides the selected section's env key when non-empty.
	Env string
}

// Load reads, expands, decodes and validates the project configuration.
func Load(root string, opts LoadOptions) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve project root").Fatal().Build()
	}

	loadEnvFile(absRoot)

	path := opts.File
	if path == "" {
		path = FileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("file", path).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration").Fatal().WithContext("file", path).Build()
	}
	return parse(absRoot, path, []byte(os.ExpandEnv(string(data))), opts)
}

func parse(root, path string, data []byte, opts LoadOptions) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration YAML").Fatal().WithContext("file", path).Build()
	}
	if raw == nil {
		raw = map[string]any{}
	}
	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration structure").Fatal().WithContext("file", path).Build()
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeBuild
	}

	cfg := &Config{
		Root:    root,
		Path:    path,
		Mode:    mode,
		Build:   schema.Build,
		Serve:   schema.Serve,
		Globals: schema.Globals,
		raw:     raw,
	}

	env := cfg.Active().Env
	if opts.Env != "" {
		env = opts.Env
	}
	site := deepCopyMap(schema.Site)
	if env != "" {
		overlay, ok := schema.Env[env]
		if !ok {
			return nil, ferrors.ConfigError(fmt.Sprintf("environment %q not found in env@%s", env, mode)).
				WithContext("file", path).Build()
		}
		site = mergeMaps(site, deepCopyMap(overlay))
	}
	cfg.Env = env
	cfg.Site = site

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(root string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", logfields.Path(p), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(p))
	}
}

// Active returns the section selected by Mode.
func (c *Config) Active() ModeConfig {
	if c.Mode == ModeServe {
		return c.Serve
	}
	return c.Build
}

// Lookup resolves a dot-path key against the raw configuration file.
func (c *Config) Lookup(key string, def any) any {
	return dotpath.Get(c.raw, key, def)
}

// BaseURL returns site.base_url.
func (c *Config) BaseURL() string {
	return dotpath.String(c.Site, "base_url", DefaultBaseURL)
}

// StaticURL returns site.static_url.
func (c *Config) StaticURL() string {
	return dotpath.String(c.Site, "static_url", DefaultStaticURL)
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Project directory layout, relative to Root.
func (c *Config) BuildDir() string     { return filepath.Join(c.Root, ".build") }
func (c *Config) StaticDir() string    { return filepath.Join(c.Root, "static") }
func (c *Config) ContentDir() string   { return filepath.Join(c.Root, "content") }
func (c *Config) DataDir() string      { return filepath.Join(c.Root, "data") }
func (c *Config) PagesDir() string     { return filepath.Join(c.Root, "pages") }
func (c *Config) TemplatesDir() string { return filepath.Join(c.Root, "templates") }

// LivereloadEnabled reports whether the serve watcher should run.
func (c *Config) LivereloadEnabled() bool {
	return c.Serve.Livereload == nil || *c.Serve.Livereload
}
