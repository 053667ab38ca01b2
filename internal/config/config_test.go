package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App: AppConfig{Env: "local", Port: 8080},
		RingCentral: RingCentralConfig{
			ServerURL:    "https://platform.ringcentral.com",
			ClientID:     "id",
			ClientSecret: "secret",
			UserJWT:      "jwt",
		},
		Store: StoreConfig{Driver: "mongo", MongoURI: "mongodb://localhost:27017", MongoDatabase: "rc"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"APP_ENV", "RC_SERVER_URL", "RC_USER_JWT", "MONGO_URI"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.RingCentral.TimeZone != DefaultTimeZone {
		t.Fatalf("expected default time zone, got %q", c.RingCentral.TimeZone)
	}
	if c.RingCentral.HTTPTimeout != DefaultHTTPTimeout {
		t.Fatalf("expected default timeout, got %v", c.RingCentral.HTTPTimeout)
	}
	if c.RingCentral.ExtensionConcurrency != DefaultExtensionConcurrency || c.RingCentral.WalkLimit != DefaultWalkLimit {
		t.Fatalf("unexpected concurrency defaults: %+v", c.RingCentral)
	}
	if c.Report.CompanyName != DefaultCompanyName {
		t.Fatalf("expected default company, got %q", c.Report.CompanyName)
	}
}

func TestValidate_StoreDriverDefaultsToMongo(t *testing.T) {
	c := validConfig()
	c.Store.Driver = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.Store.Driver != "mongo" {
		t.Fatalf("expected mongo, got %q", c.Store.Driver)
	}
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	c := validConfig()
	c.Store = StoreConfig{Driver: "postgres"}
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidate_MemoryStoreRejectedInProduction(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.Store = StoreConfig{Driver: "memory"}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for memory store in production")
	}
}

func TestValidate_CacheNeedsRedis(t *testing.T) {
	c := validConfig()
	c.Analytics.CacheTTL = time.Minute
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR error, got %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "3000")
	t.Setenv("RC_SERVER_URL", "https://platform.devtest.ringcentral.com/")
	t.Setenv("RC_APP_CLIENT_ID", "id")
	t.Setenv("RC_APP_CLIENT_SECRET", "secret")
	t.Setenv("RC_USER_JWT", "jwt")
	t.Setenv("RC_HTTP_TIMEOUT", "5s")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://*.ngrok-free.app")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.RingCentral.ServerURL != "https://platform.devtest.ringcentral.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.RingCentral.ServerURL)
	}
	if c.RingCentral.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", c.RingCentral.HTTPTimeout)
	}
	if len(c.CORS.AllowedOrigins) != 2 || c.CORS.AllowedOrigins[1] != "https://*.ngrok-free.app" {
		t.Fatalf("unexpected origins %v", c.CORS.AllowedOrigins)
	}
	if c.HTTPAddr() != ":3000" {
		t.Fatalf("unexpected addr %q", c.HTTPAddr())
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "3000")
	t.Setenv("RC_HTTP_TIMEOUT", "soon")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RC_HTTP_TIMEOUT") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestLoadVendor_IgnoresServerSettings(t *testing.T) {
	t.Setenv("RC_SERVER_URL", "https://platform.ringcentral.com")
	t.Setenv("RC_APP_CLIENT_ID", "id")
	t.Setenv("RC_APP_CLIENT_SECRET", "secret")
	t.Setenv("RC_USER_JWT", "jwt")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("RC_TIME_ZONE", "")
	t.Setenv("REPORT_COMPANY_NAME", "")

	c, err := LoadVendor()
	if err != nil {
		t.Fatalf("load vendor: %v", err)
	}
	if c.RingCentral.TimeZone != DefaultTimeZone || c.Report.CompanyName != DefaultCompanyName {
		t.Fatalf("expected defaults, got %q %q", c.RingCentral.TimeZone, c.Report.CompanyName)
	}
}

func TestLoadVendor_RequiresCredentials(t *testing.T) {
	t.Setenv("RC_SERVER_URL", "")
	t.Setenv("RC_USER_JWT", "")
	if _, err := LoadVendor(); err == nil || !strings.Contains(err.Error(), "RC_USER_JWT") {
		t.Fatalf("expected credential error, got %v", err)
	}
}
