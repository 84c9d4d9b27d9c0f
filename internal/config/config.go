package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. SKINCARE_LANG.
const EnvPrefix = "SKINCARE"

// BuiltinLangs are the languages of the embedded label table.
var BuiltinLangs = []string{"en", "ja"}

// Config is the application configuration
type Config struct {
	DataDir      string          `mapstructure:"data_dir"`
	DBPath       string          `mapstructure:"db_path"`
	CatalogPath  string          `mapstructure:"catalog_path"`
	KeywordsPath string          `mapstructure:"keywords_path"`
	LabelsPath   string          `mapstructure:"labels_path"`
	Lang         string          `mapstructure:"lang"`
	FallbackLang string          `mapstructure:"fallback_lang"`
	Log          LogConfig       `mapstructure:"log"`
	Server       ServerConfig    `mapstructure:"server"`
	Recommend    RecommendConfig `mapstructure:"recommend"`
	Fetch        FetchConfig     `mapstructure:"fetch"`
	Profile      ProfileConfig   `mapstructure:"profile"`
}

// LogConfig selects the log level and encoder
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Debug        bool          `mapstructure:"debug"`
}

// RecommendConfig tunes the recommender
type RecommendConfig struct {
	Limit  int            `mapstructure:"limit"`
	Quotas map[string]int `mapstructure:"quotas"`
}

// FetchConfig configures the product-page fetcher
type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProfileConfig is the default profile used when no flags override it.
type ProfileConfig struct {
	SkinType      string   `mapstructure:"skin_type"`
	Concerns      []string `mapstructure:"concerns"`
	Fragrance     string   `mapstructure:"fragrance"`
	MonthlyBudget int      `mapstructure:"monthly_budget"`
	AMMinutes     int      `mapstructure:"am_minutes"`
	PMMinutes     int      `mapstructure:"pm_minutes"`
	Allergies     []string `mapstructure:"allergies"`
}

// Load reads configuration from defaults, an optional config file, an
// optional .env file and SKINCARE_* environment variables, in increasing
// precedence. An empty configFile looks for config.yaml in the working
// directory and the data directory.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(v.GetString("data_dir"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.resolvePaths()

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	cfg.resolvePaths()
	return &cfg
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skincare"
	}
	return filepath.Join(home, ".skincare")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("db_path", "")
	v.SetDefault("catalog_path", "")
	v.SetDefault("keywords_path", "")
	v.SetDefault("labels_path", "")
	v.SetDefault("lang", "en")
	v.SetDefault("fallback_lang", "en")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.debug", false)

	v.SetDefault("recommend.limit", 8)
	v.SetDefault("recommend.quotas", map[string]int{
		"cleanser":       1,
		"toner":          2,
		"serum":          2,
		"moisturizer":    2,
		"sunscreen":      1,
		"spot_treatment": 1,
	})

	v.SetDefault("fetch.timeout", "30s")

	v.SetDefault("profile.skin_type", "unknown")
	v.SetDefault("profile.concerns", []string{})
	v.SetDefault("profile.fragrance", "unset")
	v.SetDefault("profile.monthly_budget", 5000)
	v.SetDefault("profile.am_minutes", 3)
	v.SetDefault("profile.pm_minutes", 10)
	v.SetDefault("profile.allergies", []string{})
}

func (c *Config) resolvePaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "diary.db")
	}
	if c.CatalogPath == "" {
		c.CatalogPath = filepath.Join(c.DataDir, "products.json")
	}
}

func validateConfig(c *Config) error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Recommend.Limit <= 0 {
		return fmt.Errorf("recommend.limit must be > 0")
	}
	for t, n := range c.Recommend.Quotas {
		if n < 0 {
			return fmt.Errorf("recommend.quotas.%s must be >= 0", t)
		}
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("invalid fetch timeout")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	// A custom label file may carry any language; only the built-in table
	// is checked here.
	if c.LabelsPath == "" {
		if !isBuiltinLang(c.Lang) {
			return fmt.Errorf("unsupported lang %q", c.Lang)
		}
		if !isBuiltinLang(c.FallbackLang) {
			return fmt.Errorf("unsupported fallback_lang %q", c.FallbackLang)
		}
	}
	return nil
}

func isBuiltinLang(lang string) bool {
	for _, l := range BuiltinLangs {
		if l == lang {
			return true
		}
	}
	return false
}
