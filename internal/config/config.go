// Package config loads waypoint settings from a YAML file, .env files and
// WAYPOINT_* environment variables, and validates them.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/waypoint/pkg/constants"
	"github.com/agentstation/waypoint/pkg/errors"
)

// EnvPrefix prefixes every environment variable, so server.port is read
// from WAYPOINT_SERVER_PORT.
const EnvPrefix = "WAYPOINT"

// Config is the complete configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	ViewManager ViewManagerConfig `mapstructure:"view_manager"`
	Log         LogConfig         `mapstructure:"log"`
	HTTPMethods HTTPMethodsConfig `mapstructure:"http_methods"`

	// Routes is an optional routes file (see router.Load).
	Routes string `mapstructure:"routes"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	CORS            bool          `mapstructure:"cors"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	RateLimit       int           `mapstructure:"rate_limit" validate:"min=0"`
	Cache           bool          `mapstructure:"cache"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl" validate:"min=0"`
	Monitor         bool          `mapstructure:"monitor"`
	MonitorToken    string        `mapstructure:"monitor_token"`
}

// ViewManagerConfig configures rendering and the error strategies.
type ViewManagerConfig struct {
	DisplayExceptions       bool              `mapstructure:"display_exceptions"`
	DisplayNotFoundReason   bool              `mapstructure:"display_not_found_reason"`
	ExceptionMessage        string            `mapstructure:"exception_message"`
	ExceptionTemplate       string            `mapstructure:"exception_template" validate:"required"`
	NotFoundTemplate        string            `mapstructure:"not_found_template" validate:"required"`
	Layout                  string            `mapstructure:"layout" validate:"required"`
	TemplatePathStack       []string          `mapstructure:"template_path_stack"`
	PrefixTemplatePathStack map[string]string `mapstructure:"prefix_template_path_stack"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `mapstructure:"format" validate:"oneof=auto json console pretty"`
	Output string `mapstructure:"output" validate:"required"`
}

// HTTPMethodsConfig configures the method check before routing.
type HTTPMethodsConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Allowed []string `mapstructure:"allowed" validate:"dive,required"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. Without it Load searches the working
	// directory for waypoint.yaml.
	File string

	// EnvFiles are loaded in order; later files do not override earlier
	// ones or the process environment. Defaults to .env.local then .env.
	EnvFiles []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", constants.DefaultReadTimeout)
	v.SetDefault("server.write_timeout", constants.DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", constants.DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", constants.DefaultShutdownTimeout)
	v.SetDefault("server.cors", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.cache", false)
	v.SetDefault("server.cache_ttl", constants.DefaultCacheTTL)
	v.SetDefault("server.monitor", true)
	v.SetDefault("server.monitor_token", "")

	v.SetDefault("view_manager.display_exceptions", false)
	v.SetDefault("view_manager.display_not_found_reason", true)
	v.SetDefault("view_manager.exception_message", "")
	v.SetDefault("view_manager.exception_template", constants.DefaultErrorTemplate)
	v.SetDefault("view_manager.not_found_template", constants.DefaultNotFoundTemplate)
	v.SetDefault("view_manager.layout", constants.DefaultLayoutTemplate)
	v.SetDefault("view_manager.template_path_stack", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("http_methods.enabled", true)
	v.SetDefault("http_methods.allowed", []string{})

	v.SetDefault("routes", "")
}

// Load reads the configuration. Precedence, highest first: environment,
// .env files, config file, defaults. Command-line flags are applied by
// the caller afterwards.
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env.local", ".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, errors.WrapParse("env", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", "cannot read "+opts.File, err)
		}
	} else {
		v.SetConfigName("waypoint")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("file", "cannot read waypoint.yaml", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("", "cannot decode configuration", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Routes != "" && cfg.File != "" && !filepath.IsAbs(cfg.Routes) {
		cfg.Routes = filepath.Join(filepath.Dir(cfg.File), cfg.Routes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags and reports the first violation as an
// errors.ValidationError.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errors.NewValidationError(fieldPath(fe.Namespace()), fe.Value(), "failed "+fe.Tag()+" check")
	}
	return errors.WrapValidation("", err)
}

// fieldPath turns "Config.Server.Port" into "Server.Port".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}
