package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"sqlite with path", func(c *Config) {}, false},
		{"memory without path", func(c *Config) { c.Storage = StorageConfig{Backend: BackendMemory} }, false},
		{"leveldb without path", func(c *Config) { c.Storage = StorageConfig{Backend: BackendLevelDB} }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		Storage: StorageConfig{Backend: BackendLevelDB, Path: "/var/lib/todo"},
		Server:  ServerConfig{Addr: "0.0.0.0:9000"},
	}
	if err := SaveConfig(tmpDir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", *cfg, *loaded)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	todoDir := filepath.Join(tmpDir, ".todo")
	if err := os.MkdirAll(todoDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(todoDir, "config.yaml"), []byte("storage:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("expected default addr to survive, got %q", cfg.Server.Addr)
	}
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	tmpDir := t.TempDir()
	todoDir := filepath.Join(tmpDir, ".todo")
	os.MkdirAll(todoDir, 0755)
	os.WriteFile(filepath.Join(todoDir, "config.yaml"), []byte("storage:\n  backend: redis\n"), 0644)

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestResolve(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("defaults when nothing found", func(t *testing.T) {
		cfg, source, err := Resolve("", t.TempDir())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if source != "" {
			t.Errorf("expected no source, got %q", source)
		}
		if cfg.Storage.Backend != BackendSQLite {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("cwd config wins over defaults", func(t *testing.T) {
		cwd := t.TempDir()
		if err := SaveConfig(cwd, &Config{Storage: StorageConfig{Backend: BackendMemory}, Server: ServerConfig{Addr: ":1"}}); err != nil {
			t.Fatal(err)
		}
		cfg, source, err := Resolve("", cwd)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if source != filepath.Join(cwd, ".todo", "config.yaml") {
			t.Errorf("unexpected source %q", source)
		}
		if cfg.Storage.Backend != BackendMemory {
			t.Errorf("expected memory backend, got %q", cfg.Storage.Backend)
		}
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		if _, _, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir()); err == nil {
			t.Fatal("expected error for missing explicit config")
		}
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in, want string
	}{
		{"~/.todo/todo.db", filepath.Join(home, ".todo", "todo.db")},
		{"~", home},
		{"/abs/path", "/abs/path"},
		{"rel/~path", "rel/~path"},
	}
	for _, tt := range tests {
		got, err := ExpandHome(tt.in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
