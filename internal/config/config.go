package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("image-feed version %s, commit %s, built at %s", version, commit, date)
}

const (
	// EnvPrefix is the prefix of every environment variable read by viper
	EnvPrefix = "IMAGE_FEED"

	appDirName = "image-feed"
)

type Config struct {
	Unsplash UnsplashConfig `mapstructure:"unsplash"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Storage  StorageConfig  `mapstructure:"storage"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone     AuthType = "none"
	AuthTypeBearer   AuthType = "bearer"
	AuthTypeClientID AuthType = "client_id"
	// AuthTypePublic sends the bearer token when one is stored and falls back to Client-ID
	AuthTypePublic AuthType = "public"
)

// UnsplashConfig holds the application credentials and endpoints
type UnsplashConfig struct {
	AccessKey    string   `mapstructure:"access_key" validate:"required"`
	SecretKey    string   `mapstructure:"secret_key" validate:"required"`
	RedirectURI  string   `mapstructure:"redirect_uri" validate:"required"`
	Scopes       []string `mapstructure:"scopes" validate:"min=1"`
	BaseURL      string   `mapstructure:"base_url" validate:"required,url"`     // OAuth host
	APIBaseURL   string   `mapstructure:"api_base_url" validate:"required,url"` // REST API host
	CallbackAddr string   `mapstructure:"callback_addr"`                        // optional loopback listener, e.g. 127.0.0.1:8765
}

type FeedConfig struct {
	PerPage        int           `mapstructure:"per_page" validate:"min=1,max=30"`
	DetailCache    int           `mapstructure:"detail_cache_size" validate:"min=1"`
	DetailCacheTTL time.Duration `mapstructure:"detail_cache_ttl"`
	// PrefetchThreshold is how close to the end of the list the cursor gets before the next page is requested
	PrefetchThreshold int `mapstructure:"prefetch_threshold" validate:"min=0"`
}

type ProfileConfig struct {
	AvatarSize string `mapstructure:"avatar_size" validate:"oneof=small medium large"`
}

type StorageConfig struct {
	TokenFile string `mapstructure:"token_file"`
	Ephemeral bool   `mapstructure:"ephemeral"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gt=0"` // requests per second
	Burst     int           `mapstructure:"burst" validate:"min=1"`
	UserAgent string        `mapstructure:"user_agent"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// DefaultDir returns the per-user directory holding config and token files
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(dir, appDirName)
}

func setDefaults(v *viper.Viper) {
	// Keys without a meaningful default still need registering so that
	// Unmarshal picks them up from the environment.
	v.SetDefault("unsplash.access_key", "")
	v.SetDefault("unsplash.secret_key", "")
	v.SetDefault("unsplash.callback_addr", "")
	v.SetDefault("unsplash.redirect_uri", "urn:ietf:wg:oauth:2.0:oob")
	v.SetDefault("unsplash.scopes", []string{"public", "read_user", "write_likes"})
	v.SetDefault("unsplash.base_url", "https://unsplash.com")
	v.SetDefault("unsplash.api_base_url", "https://api.unsplash.com")

	v.SetDefault("feed.per_page", 10)
	v.SetDefault("feed.detail_cache_size", 128)
	v.SetDefault("feed.detail_cache_ttl", 10*time.Minute)
	v.SetDefault("feed.prefetch_threshold", 2)

	v.SetDefault("profile.avatar_size", "small")

	v.SetDefault("storage.token_file", filepath.Join(DefaultDir(), "token.yaml"))
	v.SetDefault("storage.ephemeral", false)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.rate_limit", 5.0)
	v.SetDefault("http.burst", 5)
	v.SetDefault("http.user_agent", "image-feed/"+version)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_path", filepath.Join(DefaultDir(), "image-feed.log"))
	v.SetDefault("logging.append_to_file", true)
	v.SetDefault("logging.disable_console", true)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
}

// InitFlags registers the configuration flags on the given flag set (without parsing)
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a config file")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.Bool("ephemeral", false, "Keep the access token in memory only")
}

// Load reads configuration from defaults, config files, .env, environment and flags.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	configFile := ""
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
		configFile, _ = flags.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if level := v.GetString("log-level"); level != "" {
		config.Logging.Level = level
	}
	if addr := v.GetString("metrics-addr"); addr != "" {
		config.Metrics.Addr = addr
	}
	if v.GetBool("ephemeral") {
		config.Storage.Ephemeral = true
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the struct tags of the configuration
func Validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, describeField(e))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describeField(e validator.FieldError) string {
	key := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required, set it in config.yaml or %s_%s", key, EnvPrefix, envKey(key))
	case "min", "max", "gt":
		return fmt.Sprintf("%s must satisfy %s=%s", key, e.Tag(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", key, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", key)
	default:
		return fmt.Sprintf("%s is invalid", key)
	}
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
