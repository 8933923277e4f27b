package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/model"
)

// Store backends for session markers.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config contains console client configuration parameters.
type Config struct {
	LogLevel    int       `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat   string    `env:"LOG_FORMAT" envDefault:"text"`
	MetricsAddr string    `env:"METRICS_ADDR"`
	API         API       `envPrefix:"API_"`
	Session     Session   `envPrefix:"SESSION_"`
	Primary     Route     `envPrefix:"PRIMARY_"`
	Secondary   Route     `envPrefix:"SECONDARY_"`
	Redis       Redis     `envPrefix:"REDIS_"`
	DevServer   DevServer `envPrefix:"DEVSERVER_"`
}

// API contains REST backend parameters.
type API struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Session contains credential renewal parameters.
type Session struct {
	AccessTTL    time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	TickRatio    float64       `env:"TICK_RATIO" envDefault:"0.45"`
	RenewTimeout time.Duration `env:"RENEW_TIMEOUT" envDefault:"10s"`
	Store        string        `env:"STORE" envDefault:"file"`
	FilePath     string        `env:"FILE_PATH" envDefault:".console/session.json"`
}

// Route contains the marker key and paths of one principal kind.
type Route struct {
	Marker      string `env:"MARKER"`
	RefreshPath string `env:"REFRESH_PATH"`
	LoginPath   string `env:"LOGIN_PATH"`
}

// Redis contains marker store connection parameters.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"console:session"`
}

// DevServer contains parameters of the development REST backend.
type DevServer struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"devsecret"`
	AccessTTL          time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	EnableHTTPS        bool          `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string        `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string        `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

var defaultRoutes = model.Routes{
	Primary:   model.Route{Marker: "admin", RefreshPath: "/admin/refresh", LoginPath: "/admin/login"},
	Secondary: model.Route{Marker: "store", RefreshPath: "/store/refresh", LoginPath: "/store/login"},
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{
		Primary:   Route(defaultRoutes.Primary),
		Secondary: Route(defaultRoutes.Secondary),
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.API.BaseURL)
	}
	if c.TickInterval() <= 0 {
		return errors.New("SESSION_ACCESS_TTL and SESSION_TICK_RATIO must give a positive tick interval")
	}
	if c.Session.TickRatio >= 1 {
		return errors.New("SESSION_TICK_RATIO must be below 1")
	}
	switch c.Session.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	if c.Primary.Marker == "" || c.Secondary.Marker == "" || c.Primary.Marker == c.Secondary.Marker {
		return errors.New("PRIMARY_MARKER and SECONDARY_MARKER must be set and distinct")
	}

	return nil
}

// TickInterval is the background renewal period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(float64(c.Session.AccessTTL) * c.Session.TickRatio)
}

// Routes returns the per-kind routes as the model type.
func (c *Config) Routes() model.Routes {
	return model.Routes{
		Primary:   model.Route(c.Primary),
		Secondary: model.Route(c.Secondary),
	}
}
