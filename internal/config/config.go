package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var; see SetDefault calls for the defaults.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"` // comma separated, "*" allows all

	// Remote comercio API
	APIBaseURL          string        `mapstructure:"API_BASE_URL"`
	APITimeout          time.Duration `mapstructure:"API_TIMEOUT"`
	APIFailThreshold    int           `mapstructure:"API_CB_FAILURES"`
	APIOpenTimeout      time.Duration `mapstructure:"API_CB_OPEN_TIMEOUT"`
	CatalogoCacheTTL    time.Duration `mapstructure:"CATALOGO_CACHE_TTL"`
	TokenTTL            time.Duration `mapstructure:"TOKEN_TTL"`
	ServicioProductoID  int64         `mapstructure:"SERVICIO_PRODUCTO_ID"`
	ServicioComisionPct float64       `mapstructure:"SERVICIO_COMISION_PCT"`

	// Outbox (movimientos pendientes)
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	OutboxRetryInterval time.Duration `mapstructure:"OUTBOX_RETRY_INTERVAL"`
	OutboxMaxRetries    int           `mapstructure:"OUTBOX_MAX_RETRIES"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Business
	NombreComercio    string `mapstructure:"NOMBRE_COMERCIO"`
	ReciboStoragePath string `mapstructure:"RECIBO_STORAGE_PATH"`
	ReciboQRBaseURL   string `mapstructure:"RECIBO_QR_BASE_URL"`

	// Discovery / observability
	MDNSEnabled    bool `mapstructure:"MDNS_ENABLED"`
	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("WORKER_POOL_SIZE", 3)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	viper.SetDefault("API_BASE_URL", "http://localhost:3000/api")
	viper.SetDefault("API_TIMEOUT", 15*time.Second)
	viper.SetDefault("API_CB_FAILURES", 5)
	viper.SetDefault("API_CB_OPEN_TIMEOUT", 30*time.Second)
	viper.SetDefault("CATALOGO_CACHE_TTL", 5*time.Minute)
	viper.SetDefault("TOKEN_TTL", 12*time.Hour)
	viper.SetDefault("SERVICIO_PRODUCTO_ID", 214)
	viper.SetDefault("SERVICIO_COMISION_PCT", 10)
	viper.SetDefault("DATABASE_URL", "file:comercioapp.db")
	viper.SetDefault("OUTBOX_RETRY_INTERVAL", 30*time.Second)
	viper.SetDefault("OUTBOX_MAX_RETRIES", 10)
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("NOMBRE_COMERCIO", "Mi Comercio")
	viper.SetDefault("RECIBO_STORAGE_PATH", "/tmp/comercioapp/recibos")
	viper.SetDefault("MDNS_ENABLED", false)
	viper.SetDefault("METRICS_ENABLED", true)

	// Optional .env file for local development; missing file is not an error
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// WriteTimeout bounds a response that may wait on two sequential API calls
// (a checkout posts the venta and then its movimiento), plus margin for the outbox.
func (c *Config) WriteTimeout() time.Duration {
	api := c.APITimeout
	if api <= 0 {
		api = 15 * time.Second
	}
	return 2*api + 10*time.Second
}

// Origenes splits CORS_ORIGINS; nil means any origin.
func (c *Config) Origenes() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			if o == "*" {
				return nil
			}
			out = append(out, o)
		}
	}
	return out
}
