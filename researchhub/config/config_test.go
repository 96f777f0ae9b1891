package config

import (
	"testing"
	"time"
)

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":  7 * 24 * time.Hour,
		"1d":  24 * time.Hour,
		"12h": 12 * time.Hour,
		"30m": 30 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseTTL(in)
		if err != nil {
			t.Fatalf("ParseTTL(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseTTL(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseTTL("xd"); err == nil {
		t.Error("expected error for xd")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := LoadConfig()
	if cfg.Port != "8001" {
		t.Errorf("expected port 8001, got %s", cfg.Port)
	}
	if cfg.StoreDriver != DriverMongo {
		t.Errorf("expected mongo driver, got %s", cfg.StoreDriver)
	}
	if cfg.JWTExpiresIn != 7*24*time.Hour {
		t.Errorf("expected 7 day ttl, got %v", cfg.JWTExpiresIn)
	}
	if len(cfg.CORSOrigins) != 3 {
		t.Errorf("expected 3 default origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.StoreDriver = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown driver to fail")
	}

	cfg.StoreDriver = DriverMemory
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected default secret to fail in production")
	}
	cfg.JWTSecret = "something-else"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("ORIGINS_X", " http://a.test , ,http://b.test")
	got := getEnvList("ORIGINS_X", nil)
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Errorf("unexpected list %v", got)
	}
}
