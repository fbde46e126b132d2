package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const minAuthSecretLength = 32

// Config holds the process configuration parsed from the environment.
type Config struct {
	// Server
	Environment string `env:"APP_ENV" envDefault:"development"`
	Host        string `env:"HOST" envDefault:""`
	Port        int    `env:"PORT" envDefault:"8080"`

	// Reverse proxies whose X-Forwarded-For is believed; empty trusts no one
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Relational database
	DatabaseURL       string        `env:"DATABASE_URL,required"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`

	// Auth provider
	AuthSecret         string `env:"AUTH_SECRET,required"`
	AuthBaseURL        string `env:"AUTH_BASE_URL"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	SignupPolicy       string `env:"SIGNUP_POLICY"`

	// Session policy
	SessionExpiresIn   time.Duration `env:"SESSION_EXPIRES_IN" envDefault:"168h"`
	SessionUpdateAge   time.Duration `env:"SESSION_UPDATE_AGE" envDefault:"24h"`
	SessionCacheMaxAge time.Duration `env:"SESSION_CACHE_MAX_AGE" envDefault:"5m"`

	// Browser client
	FrontendURL      string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSExtraOrigins []string `env:"CORS_EXTRA_ORIGINS" envSeparator:","`

	// Optional backing services
	RedisURL      string `env:"REDIS_URL"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"lifeops"`

	// Rate limiting
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"10"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	// Logging
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT"`
	LogBackend string `env:"LOG_BACKEND" envDefault:"logrus"`
}

// ValidationError lists every configuration problem found
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration:\n  - " + strings.Join(e.Problems, "\n  - ")
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; real environments inject variables directly.
	_ = godotenv.Load()
	return parse(env.Options{})
}

// LoadFrom parses configuration from an explicit variable map.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.FrontendURL = strings.TrimRight(strings.TrimSpace(c.FrontendURL), "/")
	if c.AuthBaseURL == "" {
		c.AuthBaseURL = "http://localhost:" + strconv.Itoa(c.Port)
	}
	c.AuthBaseURL = strings.TrimRight(c.AuthBaseURL, "/")

	extra := make([]string, 0, len(c.CORSExtraOrigins))
	for _, origin := range c.CORSExtraOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			extra = append(extra, origin)
		}
	}
	c.CORSExtraOrigins = extra

	proxies := make([]string, 0, len(c.TrustedProxies))
	for _, proxy := range c.TrustedProxies {
		if proxy = strings.TrimSpace(proxy); proxy != "" {
			proxies = append(proxies, proxy)
		}
	}
	c.TrustedProxies = proxies
}

// Validate checks every rule and reports all violations at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		add("APP_ENV must be one of development, production, test (got %q)", c.Environment)
	}
	if c.Port < 1 || c.Port > 65535 {
		add("PORT must be between 1 and 65535 (got %d)", c.Port)
	}
	if !isURL(c.DatabaseURL) {
		add("DATABASE_URL must be a valid URL")
	}
	if len(c.AuthSecret) < minAuthSecretLength {
		add("AUTH_SECRET must be at least %d characters", minAuthSecretLength)
	}
	if !isURL(c.AuthBaseURL) {
		add("AUTH_BASE_URL must be a valid URL")
	}
	if !isURL(c.FrontendURL) {
		add("FRONTEND_URL must be a valid URL")
	}
	for _, origin := range c.CORSExtraOrigins {
		if !isURL(origin) {
			add("CORS_EXTRA_ORIGINS entry %q must be a valid URL", origin)
		}
	}
	for _, proxy := range c.TrustedProxies {
		if !isIPOrCIDR(proxy) {
			add("TRUSTED_PROXIES entry %q must be an IP address or CIDR range", proxy)
		}
	}
	if (c.GoogleClientID == "") != (c.GoogleClientSecret == "") {
		add("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together")
	}
	if c.RedisURL != "" && !isURL(c.RedisURL) {
		add("REDIS_URL must be a valid URL")
	}
	if c.SessionExpiresIn <= 0 {
		add("SESSION_EXPIRES_IN must be positive")
	}
	if c.SessionUpdateAge <= 0 {
		add("SESSION_UPDATE_AGE must be positive")
	}
	if c.SessionCacheMaxAge <= 0 {
		add("SESSION_CACHE_MAX_AGE must be positive")
	}
	if c.RateLimitMax <= 0 {
		add("RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimitWindow <= 0 {
		add("RATE_LIMIT_WINDOW must be positive")
	}
	if c.DBMaxOpenConns <= 0 {
		add("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 {
		add("DB_MAX_IDLE_CONNS must not be negative")
	}
	switch strings.ToLower(c.LogBackend) {
	case "logrus", "zap":
	default:
		add("LOG_BACKEND must be logrus or zap (got %q)", c.LogBackend)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsDevelopment reports whether detailed errors may be exposed
func (c *Config) IsDevelopment() bool { return c.Environment == EnvDevelopment }

// IsProduction reports whether the process runs in production
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GoogleEnabled reports whether Google sign-in is configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// TrustedOrigins returns the browser origins allowed to make credentialed requests
func (c *Config) TrustedOrigins() []string {
	candidates := append([]string{c.FrontendURL, "http://127.0.0.1:3000", "http://localhost:3000"}, c.CORSExtraOrigins...)
	seen := make(map[string]struct{}, len(candidates))
	origins := make([]string, 0, len(candidates))
	for _, origin := range candidates {
		if _, ok := seen[origin]; ok {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

// Problems returns the individual messages of a configuration error
func Problems(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	if err == nil {
		return nil
	}
	return []string{err.Error()}
}

func isIPOrCIDR(raw string) bool {
	if net.ParseIP(raw) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(raw)
	return err == nil
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}
