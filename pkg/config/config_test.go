package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	vars := map[string]string{
		"MYSQL_DSN":      "root:pass@tcp(localhost:3306)/stanza?parseTime=true",
		"MONGO_URI":      "mongodb://localhost:27017",
		"SESSION_SECRET": "test-secret",
	}

	for k, v := range vars {
		old, had := os.LookupEnv(k)
		os.Setenv(k, v)
		if had {
			t.Cleanup(func() { os.Setenv(k, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
	}
}

func TestParseDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if cfg.Addr != "127.0.0.1:8000" {
		t.Errorf("unexpected default addr %q", cfg.Addr)
	}
	if cfg.RateLimit != 5 || cfg.RateWindow != 15*time.Minute {
		t.Errorf("unexpected rate limit defaults: %d per %v", cfg.RateLimit, cfg.RateWindow)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("unexpected default origins %v", cfg.AllowedOrigins)
	}
	if cfg.SecureCookies {
		t.Error("cookies must not require https outside production")
	}
}

func TestParseFlagsWin(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Parse([]string{"-addr", "0.0.0.0:9000", "-origins", "https://stanza.app, https://www.stanza.app"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("flag should win over default, got %q", cfg.Addr)
	}

	expected := []string{"https://stanza.app", "https://www.stanza.app"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, expected) {
		t.Errorf("expected %v but was %v", expected, cfg.AllowedOrigins)
	}
}

func TestParseMissingSecret(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("SESSION_SECRET")

	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for missing SESSION_SECRET")
	}
}

func TestParseMissingDSN(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("MYSQL_DSN")

	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}
