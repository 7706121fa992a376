package tripengine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/tripengine/geocode"
	"github.com/eringen/tripengine/views"
)

// EnvPrefix prefixes every environment variable read by LoadConfig, e.g.
// TRIPENGINE_NAME or TRIPENGINE_GEOCODER_BASE_URL.
const EnvPrefix = "TRIPENGINE"

// ConfigName is the base name of the config file looked up in the working
// directory (tripengine.yaml).
const ConfigName = "tripengine"

// SiteConfig holds all configuration for a tripengine site.
type SiteConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	URL         string `mapstructure:"url" validate:"required,url"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`
	MapStyle    string `mapstructure:"map_style" validate:"omitempty,url"`

	DataDir   string `mapstructure:"data_dir" validate:"required"`   // post files and index.json
	StaticDir string `mapstructure:"static_dir"`                     // user assets copied under public/
	OutputDir string `mapstructure:"output_dir" validate:"required"` // static build target

	Addr    string `mapstructure:"addr" validate:"required"` // preview server, loopback by default
	SaveDir string `mapstructure:"save_dir"`                 // optional copy of saved post files

	CatalogCacheTTL time.Duration `mapstructure:"catalog_cache_ttl"`
	BuildWorkers    int           `mapstructure:"build_workers" validate:"gte=1"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`

	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Log      LogConfig      `mapstructure:"log"`
}

// GeocoderConfig configures the place search used by the location picker.
type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// Hint is appended to a query that found nothing; empty means
	// geocode.DefaultHint unless DisableHint is set.
	Hint        string `mapstructure:"hint"`
	DisableHint bool   `mapstructure:"disable_hint"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Travel Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data/posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.Addr == "" {
		c.Addr = "127.0.0.1:3000"
	}
	if c.CatalogCacheTTL == 0 {
		c.CatalogCacheTTL = 30 * time.Second
	}
	if c.BuildWorkers == 0 {
		c.BuildWorkers = 4
	}
	if c.Geocoder.BaseURL == "" {
		c.Geocoder.BaseURL = geocode.DefaultBaseURL
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = geocode.DefaultUserAgent
	}
	if c.Geocoder.Timeout == 0 {
		c.Geocoder.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// View returns the subset of the config that pages render.
func (c SiteConfig) View() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		MapStyle:    c.MapStyle,
	}
}

// Validate checks the config against its validate tags.
func (c SiteConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig reads .env, then the config file at path (or tripengine.yaml in
// the working directory when path is empty), then TRIPENGINE_* variables.
// A missing default config file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setViperDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// setViperDefaults registers every key so AutomaticEnv can override it.
func setViperDefaults(v *viper.Viper) {
	var d SiteConfig
	d.setDefaults()

	v.SetDefault("name", d.Name)
	v.SetDefault("url", d.URL)
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("map_style", "")
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("static_dir", d.StaticDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("save_dir", "")
	v.SetDefault("catalog_cache_ttl", d.CatalogCacheTTL)
	v.SetDefault("build_workers", d.BuildWorkers)
	v.SetDefault("metrics_enabled", false)

	v.SetDefault("geocoder.base_url", d.Geocoder.BaseURL)
	v.SetDefault("geocoder.user_agent", d.Geocoder.UserAgent)
	v.SetDefault("geocoder.hint", "")
	v.SetDefault("geocoder.disable_hint", false)
	v.SetDefault("geocoder.timeout", d.Geocoder.Timeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
