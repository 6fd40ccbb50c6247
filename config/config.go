package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the loaded configuration
type Config struct {
	Addr           string        `envconfig:"DASHBOARD_ADDR" default:":3000"`
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	Env            string        `envconfig:"APP_ENV" default:"development"`

	RedisURL   string        `envconfig:"REDIS_URL"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	AllowedOrigins     string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	LoginRatePerMinute int    `envconfig:"LOGIN_RATE_PER_MINUTE" default:"20"`

	CloudWatchEnabled   bool   `envconfig:"CLOUDWATCH_ENABLED" default:"false"`
	CloudWatchNamespace string `envconfig:"CLOUDWATCH_NAMESPACE" default:"StorefrontDashboard"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	cfg.APIBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/")
	if cfg.LoginRatePerMinute < 1 {
		cfg.LoginRatePerMinute = 1
	}
	return cfg, nil
}

// Origins splits ALLOWED_ORIGINS into a clean list.
func (c Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(strings.TrimSuffix(o, "/"))
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
