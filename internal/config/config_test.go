package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":5000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":5000")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.RateLimitRequests != 100 {
		t.Errorf("RateLimitRequests = %d, want 100", cfg.RateLimitRequests)
	}
	if cfg.RateWindow() != 15*time.Minute {
		t.Errorf("RateWindow = %v, want 15m", cfg.RateWindow())
	}
	if cfg.LockTTL() != 30*time.Second {
		t.Errorf("LockTTL = %v, want 30s", cfg.LockTTL())
	}
	if cfg.OTelServiceName != "event-raffle" {
		t.Errorf("OTelServiceName = %q, want event-raffle", cfg.OTelServiceName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Production() {
		t.Error("Production should default to false")
	}
	if cfg.TrustProxy {
		t.Error("TrustProxy should default to false")
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "http://localhost:5173" || origins[1] != "http://localhost:5174" {
		t.Errorf("AllowedOrigins = %v", origins)
	}
}

func TestLoad_JWTSecretRequired(t *testing.T) {
	for _, v := range []string{"", "   "} {
		os.Clearenv()
		os.Setenv("JWT_SECRET", v)

		cfg, err := Load()
		if err == nil {
			t.Fatalf("JWT_SECRET=%q: Load should return error", v)
		}
		if cfg != nil {
			t.Error("Load should return nil config on error")
		}
		if err.Error() != "config: JWT_SECRET must be set" {
			t.Errorf("error = %q", err.Error())
		}
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("BCRYPT_COST", "14")
	os.Setenv("APP_ENV", "production")
	os.Setenv("CORS_ALLOWED_ORIGINS", " https://raffle.example.com , ,https://admin.example.com")
	os.Setenv("RATE_LIMIT_WINDOW", "1m")
	os.Setenv("DRAW_LOCK_TTL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
	if !cfg.Production() {
		t.Error("Production should be true")
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://raffle.example.com" || origins[1] != "https://admin.example.com" {
		t.Errorf("AllowedOrigins = %v", origins)
	}
	if cfg.RateWindow() != time.Minute {
		t.Errorf("RateWindow = %v, want 1m", cfg.RateWindow())
	}
	if cfg.LockTTL() != 5*time.Second {
		t.Errorf("LockTTL = %v, want 5s", cfg.LockTTL())
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // Should default to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("JWT_SECRET", "test-secret")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_NegativeRateLimit(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("RATE_LIMIT_REQUESTS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should return error")
	}
}

func TestDurations_InvalidFallBack(t *testing.T) {
	cases := []string{"invalid", "0", "-5m"}
	for _, v := range cases {
		cfg := &Config{RateLimitWindow: v, DrawLockTTL: v}
		if got := cfg.RateWindow(); got != 15*time.Minute {
			t.Errorf("RateWindow(%q) = %v, want 15m", v, got)
		}
		if got := cfg.LockTTL(); got != 30*time.Second {
			t.Errorf("LockTTL(%q) = %v, want 30s", v, got)
		}
	}
}

func TestDatabaseURL_NoSecretNeeded(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", " postgres://localhost/raffle ")

	if got := DatabaseURL(); got != "postgres://localhost/raffle" {
		t.Errorf("DatabaseURL = %q", got)
	}
}

func TestBcryptCostOrDefault(t *testing.T) {
	testCases := map[string]int{"": 12, "3": 12, "32": 12, "10": 10}
	for value, want := range testCases {
		os.Clearenv()
		if value != "" {
			os.Setenv("BCRYPT_COST", value)
		}
		if got := BcryptCostOrDefault(); got != want {
			t.Errorf("BCRYPT_COST=%q: got %d, want %d", value, got, want)
		}
	}
}

func TestLoad_BootstrapCredentials(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("BOOTSTRAP_USERNAME", "root")
	os.Setenv("BOOTSTRAP_PASSWORD", "rootpass1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BootstrapUsername != "root" || cfg.BootstrapPassword != "rootpass1" {
		t.Errorf("bootstrap = %q/%q", cfg.BootstrapUsername, cfg.BootstrapPassword)
	}
}
