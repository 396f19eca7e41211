package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TRACKER"

// Errors
var (
	ErrIMEINotProvided    = errors.New("imei is not provided")
	ErrPlatformURLMissing = errors.New("platform.base_url is not provided")
	ErrPushURLMissing     = errors.New("push.url is not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		ServiceName string `mapstructure:"service_name"`
		LogLevel    string `mapstructure:"log_level"`
		IMEI        string `mapstructure:"imei"`

		HTTP     HTTPConfig     `mapstructure:"http"`
		Platform PlatformConfig `mapstructure:"platform"`
		Push     PushConfig     `mapstructure:"push"`
		Route    RouteConfig    `mapstructure:"route"`
		Geocode  GeocodeConfig  `mapstructure:"geocode"`
		RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`

		v *viper.Viper
	}

	HTTPConfig struct {
		Port            string        `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	}

	// PlatformConfig is the tracking REST API and the session token used for it and the push socket
	PlatformConfig struct {
		BaseURL string        `mapstructure:"base_url"`
		Token   string        `mapstructure:"token"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	PushConfig struct {
		URL              string        `mapstructure:"url"`
		InitialDelay     time.Duration `mapstructure:"initial_delay"`
		MaxDelay         time.Duration `mapstructure:"max_delay"`
		Multiplier       float64       `mapstructure:"multiplier"`
		MaxRetries       int           `mapstructure:"max_retries"`
		PingInterval     time.Duration `mapstructure:"ping_interval"`
		HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	}

	RouteConfig struct {
		Capacity          int           `mapstructure:"capacity"`
		MinDistanceMeters float64       `mapstructure:"min_distance_meters"`
		MovingSpeed       float64       `mapstructure:"moving_speed"`
		SnapToRoads       bool          `mapstructure:"snap_to_roads"`
		OSRMBaseURL       string        `mapstructure:"osrm_base_url"`
		Timeout           time.Duration `mapstructure:"timeout"`
	}

	GeocodeConfig struct {
		LocationIQKey   string        `mapstructure:"locationiq_key"`
		LocationIQURL   string        `mapstructure:"locationiq_url"`
		NominatimURL    string        `mapstructure:"nominatim_url"`
		UserAgent       string        `mapstructure:"user_agent"`
		Timeout         time.Duration `mapstructure:"timeout"`
		RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Exchange string `mapstructure:"exchange"`
		Buffer   int    `mapstructure:"buffer"`
	}
)

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "vehicle-tracker")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("imei", "")

	v.SetDefault("http.port", "8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("platform.base_url", "")
	v.SetDefault("platform.token", "")
	v.SetDefault("platform.timeout", 10*time.Second)

	v.SetDefault("push.url", "")
	v.SetDefault("push.initial_delay", time.Second)
	v.SetDefault("push.max_delay", 30*time.Second)
	v.SetDefault("push.multiplier", 2.0)
	v.SetDefault("push.max_retries", 10)
	v.SetDefault("push.ping_interval", 30*time.Second)
	v.SetDefault("push.handshake_timeout", 10*time.Second)

	v.SetDefault("route.capacity", 200)
	v.SetDefault("route.min_distance_meters", 1.0)
	v.SetDefault("route.moving_speed", 5.0)
	v.SetDefault("route.snap_to_roads", true)
	v.SetDefault("route.osrm_base_url", "https://router.project-osrm.org")
	v.SetDefault("route.timeout", 5*time.Second)

	v.SetDefault("geocode.locationiq_key", "")
	v.SetDefault("geocode.locationiq_url", "https://us1.locationiq.com")
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "vehicle-tracker/1.0")
	v.SetDefault("geocode.timeout", 5*time.Second)
	v.SetDefault("geocode.refresh_interval", 60*time.Second)

	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.exchange", "tracker_map_fanout")
	v.SetDefault("rabbitmq.buffer", 64)
}

// NewConfig loads configuration. Priority, highest first: flags, TRACKER_*
// environment variables, the yaml file, defaults. An empty filepath skips the file.
func NewConfig(filepath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filepath != "" {
		v.SetConfigFile(filepath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// flag name -> config key
var flagKeys = map[string]string{
	"imei":      "imei",
	"log-level": "log_level",
	"port":      "http.port",
	"token":     "platform.token",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.v = v
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if strings.TrimSpace(c.IMEI) == "" {
		errs = append(errs, ErrIMEINotProvided)
	}
	if c.Platform.BaseURL == "" {
		errs = append(errs, ErrPlatformURLMissing)
	}
	if c.Push.URL == "" {
		errs = append(errs, ErrPushURLMissing)
	}
	return errors.Join(errs...)
}

// OnChange watches the config file and calls fn with the reloaded config.
// Only settings read at runtime (the log level and the platform token) take
// effect without a restart.
func (c *Config) OnChange(fn func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshal(c.v)
		if err != nil {
			return
		}
		fn(cfg)
	})
	c.v.WatchConfig()
}
