package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/broady/taskmaster/internal/taskcache"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("", envFrom(nil))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port: got %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Addr() != ":3001" {
		t.Errorf("Addr: got %q", cfg.Server.Addr())
	}
	if !cfg.Server.Seed {
		t.Error("Seed: want true by default")
	}
	if cfg.Client.URL != DefaultURL || cfg.Client.Timeout != DefaultTimeout {
		t.Errorf("Client: got %+v", cfg.Client)
	}
	policy, err := cfg.Client.ToggleFailurePolicy()
	if err != nil || policy != taskcache.Refetch {
		t.Errorf("ToggleFailurePolicy: got %q, %v", policy, err)
	}
	if cfg.Path != "" {
		t.Errorf("Path: got %q, want empty", cfg.Path)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "127.0.0.1"
port = 8080
log_format = "json"
cors_origins = ["http://localhost:5173"]
mask_internal_errors = true
seed = false

[client]
url = "http://tasks.internal:8080"
timeout = "3s"
toggle_failure = "rollback"
`)

	cfg, err := Load(path, envFrom(nil))
	if err != nil {
		t.Fatal(err)
	}

	want := ServerConfig{
		Host:               "127.0.0.1",
		Port:               8080,
		LogLevel:           DefaultLogLevel,
		LogFormat:          "json",
		CORSOrigins:        []string{"http://localhost:5173"},
		MaskInternalErrors: true,
		Seed:               false,
	}
	if !reflect.DeepEqual(cfg.Server, want) {
		t.Errorf("Server: got %+v, want %+v", cfg.Server, want)
	}
	if cfg.Client.Timeout != 3*time.Second || cfg.Client.ToggleFailure != "rollback" {
		t.Errorf("Client: got %+v", cfg.Client)
	}
	if cfg.Path != path {
		t.Errorf("Path: got %q", cfg.Path)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 8080\nhost = \"0.0.0.0\"\n")

	cfg, err := Load(path, envFrom(map[string]string{
		"PORT":                    "9090",
		"TASKMASTER_URL":          "http://example.test:9090",
		"TASKMASTER_LOG_LEVEL":    "debug",
		"TASKMASTER_CORS_ORIGINS": "http://a.test, http://b.test",
	}))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host: got %q, file value should survive", cfg.Server.Host)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q", cfg.Server.LogLevel)
	}
	if cfg.Client.URL != "http://example.test:9090" {
		t.Errorf("URL: got %q", cfg.Client.URL)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("CORSOrigins: got %v", cfg.Server.CORSOrigins)
	}
}

func TestDefaultPathDiscovery(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "taskmaster"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "taskmaster", "config.toml"), []byte("[server]\nport = 4000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", envFrom(map[string]string{"XDG_CONFIG_HOME": dir}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Port: got %d, want 4000", cfg.Server.Port)
	}

	// No file under the default path is fine.
	cfg, err = Load("", envFrom(map[string]string{"XDG_CONFIG_HOME": t.TempDir()}))
	if err != nil || cfg.Server.Port != DefaultPort {
		t.Errorf("missing default file: got %v, %v", cfg, err)
	}
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"xdg", map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"}, filepath.Join("/xdg", "taskmaster", "config.toml")},
		{"home", map[string]string{"HOME": "/home/u"}, filepath.Join("/home/u", ".config", "taskmaster", "config.toml")},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultPath(envFrom(tt.env)); got != tt.want {
				t.Errorf("DefaultPath: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		env  map[string]string
	}{
		{"explicit missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") }, nil},
		{"bad toml", func(t *testing.T) string { return writeConfig(t, "[server\n") }, nil},
		{"unknown key", func(t *testing.T) string { return writeConfig(t, "[server]\nprot = 1\n") }, nil},
		{"bad port env", func(t *testing.T) string { return "" }, map[string]string{"PORT": "abc"}},
		{"port out of range", func(t *testing.T) string { return writeConfig(t, "[server]\nport = 70000\n") }, nil},
		{"bad log format", func(t *testing.T) string { return "" }, map[string]string{"TASKMASTER_LOG_FORMAT": "xml"}},
		{"bad toggle policy", func(t *testing.T) string { return writeConfig(t, "[client]\ntoggle_failure = \"ignore\"\n") }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env
			if env == nil {
				env = map[string]string{}
			}
			// Keep the real user config out of the test.
			env["XDG_CONFIG_HOME"] = t.TempDir()
			if _, err := Load(tt.path(t), envFrom(env)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
