package config

import (
	"strings"
	"testing"
)

const testSecret = "Abc123!xyz-long-enough-secret-key-42"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TYPELY_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.DBPath != "./data/typely.db" {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if !cfg.DoSeed {
		t.Error("expected seeding enabled by default")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("TYPELY_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing session secret")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("TYPELY_SESSION_SECRET", "short")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for short session secret")
	}
	if !strings.Contains(err.Error(), "32 bytes") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestLoad_KnownWeakSecret(t *testing.T) {
	t.Setenv("TYPELY_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for known weak secret")
	}
}

func TestServerAddr(t *testing.T) {
	cfg := Config{ServerHost: "localhost", ServerPort: 9090}
	if got := cfg.ServerAddr(); got != "localhost:9090" {
		t.Errorf("ServerAddr = %q, want localhost:9090", got)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"Abc123!secret", true},
		{"abc123!secret", true},
		{"aaaaaaaaaaaaaaaa", false},
		{"abc123abc123", false},
	}

	for _, tc := range tests {
		if got := hasMinimumEntropy(tc.secret); got != tc.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tc.secret, got, tc.want)
		}
	}
}
