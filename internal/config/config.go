package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or a .env file loaded before Load).
// No business logic should depend on raw environment variables.
type Config struct {
	App         AppConfig
	RingCentral RingCentralConfig
	Store       StoreConfig
	Redis       RedisConfig
	Analytics   AnalyticsConfig
	CORS        CORSConfig
	Report      ReportConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type RingCentralConfig struct {
	ServerURL    string
	ClientID     string
	ClientSecret string
	UserJWT      string

	// TimeZone is sent with every analytics query.
	TimeZone    string
	HTTPTimeout time.Duration

	// ExtensionConcurrency bounds the per-extension message-store walk.
	ExtensionConcurrency int
	// WalkLimit caps concurrent walks across processes (needs Redis).
	WalkLimit int

	// WebhookVerificationToken, when set, must match the Verification-Token header.
	WebhookVerificationToken string
}

type StoreConfig struct {
	// Driver accepts: mongo, postgres, memory
	Driver string

	MongoURI      string
	MongoDatabase string

	PostgresURL string
}

type RedisConfig struct {
	Addr string
}

type AnalyticsConfig struct {
	CacheTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ReportConfig struct {
	CompanyName string
}

const (
	DefaultTimeZone             = "America/Los_Angeles"
	DefaultHTTPTimeout          = 30 * time.Second
	DefaultExtensionConcurrency = 4
	DefaultWalkLimit            = 2
	DefaultCompanyName          = "DKC Lending LLC"
)

// Load reads the API process configuration from env and validates all of it.
func Load() (Config, error) {
	c, err := parse()
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadVendor is Load for offline tools: only the RingCentral and report settings
// are validated. Store, Redis and port settings are parsed but not required.
func LoadVendor() (Config, error) {
	c, err := parse()
	if err != nil {
		return Config{}, err
	}
	if err := joinErrors(c.validateVendor(nil)); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parse() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := optInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.RingCentral.ServerURL = strings.TrimRight(strings.TrimSpace(os.Getenv("RC_SERVER_URL")), "/")
	c.RingCentral.ClientID = strings.TrimSpace(os.Getenv("RC_APP_CLIENT_ID"))
	c.RingCentral.ClientSecret = os.Getenv("RC_APP_CLIENT_SECRET")
	c.RingCentral.UserJWT = strings.TrimSpace(os.Getenv("RC_USER_JWT"))
	c.RingCentral.TimeZone = strings.TrimSpace(os.Getenv("RC_TIME_ZONE"))
	{
		d, err := optDuration("RC_HTTP_TIMEOUT")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.RingCentral.HTTPTimeout = d
	}
	{
		n, err := optInt("RC_EXTENSION_CONCURRENCY")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.RingCentral.ExtensionConcurrency = n
	}
	{
		n, err := optInt("RC_WALK_LIMIT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.RingCentral.WalkLimit = n
	}
	c.RingCentral.WebhookVerificationToken = os.Getenv("RC_WEBHOOK_VERIFICATION_TOKEN")

	c.Store.Driver = strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER")))
	c.Store.MongoURI = strings.TrimSpace(os.Getenv("MONGO_URI"))
	c.Store.MongoDatabase = strings.TrimSpace(os.Getenv("MONGO_DATABASE"))
	c.Store.PostgresURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	c.Redis.Addr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	{
		d, err := optDuration("ANALYTICS_CACHE_TTL")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Analytics.CacheTTL = d
	}

	c.CORS.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	c.Report.CompanyName = strings.TrimSpace(os.Getenv("REPORT_COMPANY_NAME"))

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks required values and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port == 0 {
		errs = append(errs, errors.New("APP_PORT is required"))
	} else if c.App.Port < 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	errs = c.validateVendor(errs)

	if c.Store.Driver == "" {
		c.Store.Driver = "mongo"
	}
	switch c.Store.Driver {
	case "mongo":
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE_DRIVER=mongo"))
		}
		if c.Store.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required when STORE_DRIVER=mongo"))
		}
	case "postgres":
		if c.Store.PostgresURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	case "memory":
		if c.IsProduction() {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of mongo, postgres, memory, got %q", c.Store.Driver))
	}

	if c.Analytics.CacheTTL < 0 {
		errs = append(errs, errors.New("ANALYTICS_CACHE_TTL must not be negative"))
	}
	if c.Analytics.CacheTTL > 0 && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required when ANALYTICS_CACHE_TTL is set"))
	}

	return joinErrors(errs)
}

// validateVendor checks the RingCentral settings and fills vendor and report defaults.
func (c *Config) validateVendor(errs []error) []error {
	rc := &c.RingCentral
	if rc.ServerURL == "" {
		errs = append(errs, errors.New("RC_SERVER_URL is required"))
	} else if !strings.HasPrefix(rc.ServerURL, "https://") && !strings.HasPrefix(rc.ServerURL, "http://") {
		errs = append(errs, fmt.Errorf("RC_SERVER_URL must be an http(s) URL, got %q", rc.ServerURL))
	}
	if rc.ClientID == "" {
		errs = append(errs, errors.New("RC_APP_CLIENT_ID is required"))
	}
	if rc.ClientSecret == "" {
		errs = append(errs, errors.New("RC_APP_CLIENT_SECRET is required"))
	}
	if rc.UserJWT == "" {
		errs = append(errs, errors.New("RC_USER_JWT is required"))
	}
	if rc.TimeZone == "" {
		rc.TimeZone = DefaultTimeZone
	}
	if _, err := time.LoadLocation(rc.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("RC_TIME_ZONE is not a known zone: %q", rc.TimeZone))
	}
	if rc.HTTPTimeout <= 0 {
		rc.HTTPTimeout = DefaultHTTPTimeout
	}
	if rc.ExtensionConcurrency <= 0 {
		rc.ExtensionConcurrency = DefaultExtensionConcurrency
	}
	if rc.WalkLimit <= 0 {
		rc.WalkLimit = DefaultWalkLimit
	}
	if c.Report.CompanyName == "" {
		c.Report.CompanyName = DefaultCompanyName
	}
	return errs
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func optInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optDuration(key string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
