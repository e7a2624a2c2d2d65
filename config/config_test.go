package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  sessionTTL: 1h
database:
  url: postgres://db:5432/homebase
auth:
  jwtSecret: file-secret
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL != time.Hour {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.URL != "postgres://db:5432/homebase" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
	// Untouched fields keep defaults.
	if cfg.Files.Root != "./data/files" || cfg.Server.AuthRateLimit != 10 {
		t.Errorf("defaults lost: files=%q rate=%d", cfg.Files.Root, cfg.Server.AuthRateLimit)
	}
}

func TestEnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: file-secret
`)
	t.Setenv("HOMEBASE_JWT_SECRET", "env-secret")
	t.Setenv("HOMEBASE_DATABASE_URL", "postgres://env:5432/homebase")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	if cfg.Database.URL != "postgres://env:5432/homebase" {
		t.Errorf("database url = %q", cfg.Database.URL)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("expected error without jwt secret")
	}

	t.Setenv("HOMEBASE_JWT_SECRET", "s")
	if _, err := Load(""); err != nil {
		t.Errorf("Load with env secret: %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
