package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverFile || cfg.Storage.FilePath != "data/guests.json" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Auth.Enabled {
		t.Error("auth should be disabled by default")
	}
	if cfg.Event.Duration != 5*time.Hour {
		t.Errorf("event duration = %v", cfg.Event.Duration)
	}
	if len(cfg.Server.CORS.AllowOrigins) != 1 || cfg.Server.CORS.AllowOrigins[0] != "*" {
		t.Errorf("cors = %v", cfg.Server.CORS.AllowOrigins)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8080
storage:
  driver: memory
event:
  name: "Festa"
  starts_at: "2026-01-10T20:00:00Z"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GUESTS_SERVER_PORT", "9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env should override file, port = %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverMemory || cfg.Event.Name != "Festa" {
		t.Errorf("file values not applied: %+v %+v", cfg.Storage, cfg.Event)
	}
	start, _ := cfg.Event.Start()
	if !start.Equal(time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 3001},
			Storage: StorageConfig{Driver: DriverFile, FilePath: "g.json"},
			Event:   EventConfig{StartsAt: "2025-07-15T19:00:00-03:00"},
		}
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "unknown storage.driver"},
		{"file without path", func(c *Config) { c.Storage.FilePath = "" }, "file_path"},
		{"redis without addr", func(c *Config) { c.Storage.Driver = DriverRedis }, "redis.addr"},
		{"auth short secret", func(c *Config) {
			c.Auth = AuthConfig{Enabled: true, JWTSecret: "short", AdminPasswordHash: "h"}
		}, "jwt_secret"},
		{"auth without hash", func(c *Config) {
			c.Auth = AuthConfig{Enabled: true, JWTSecret: "0123456789abcdef"}
		}, "admin_password_hash"},
		{"bad event start", func(c *Config) { c.Event.StartsAt = "15/07/2025" }, "event.starts_at"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(c)
			err := c.Validate()
			if tc.errSub == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errSub) {
				t.Errorf("expected error containing %q, got %v", tc.errSub, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := &DatabaseConfig{Host: "db", Port: 5432, Name: "guests", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	if got := c.PostgresDSN(); !strings.Contains(got, "host=db") || !strings.Contains(got, "dbname=guests") {
		t.Errorf("postgres dsn = %q", got)
	}
	c.Port = 3306
	if got := c.MySQLDSN(); !strings.HasPrefix(got, "u:p@tcp(db:3306)/guests?") || !strings.Contains(got, "parseTime=true") {
		t.Errorf("mysql dsn = %q", got)
	}
}
