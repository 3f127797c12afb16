package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Render.MaxBins != 10 || cfg.Render.Width != 300 || cfg.Render.Height != 300 {
		t.Errorf("default render = %+v", cfg.Render)
	}
	if !cfg.Render.Interactive {
		t.Error("default render is not interactive")
	}
	if cfg.Render.ForExport {
		t.Error("default render is marked for export")
	}
	if !cfg.Preview.Watch || !cfg.Preview.NormalizeLineEnds {
		t.Errorf("default preview = %+v", cfg.Preview)
	}
	if got := cfg.Runtime.Timeout(); got != DefaultTimeout {
		t.Errorf("default timeout = %v, want %v", got, DefaultTimeout)
	}
	if got := cfg.Preview.Debounce(); got != DefaultWatchDebounce {
		t.Errorf("default debounce = %v, want %v", got, DefaultWatchDebounce)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Render.MaxBins != 10 {
		t.Errorf("Load(\"\") did not return defaults: %+v", cfg.Render)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
workspace: ws.yaml
runtime:
  sandboxModule: https://cdn.example/sandbox.js
  hostModule: ./host.js
  timeoutSeconds: 5
render:
  maxBins: 20
  width: 640
  height: 480
preview:
  watch: false
  debounceMillis: 50
snapshot:
  outputDir: out
  workers: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workspace != "ws.yaml" {
		t.Errorf("workspace = %q", cfg.Workspace)
	}
	if cfg.Runtime.SandboxModule != "https://cdn.example/sandbox.js" || cfg.Runtime.HostModule != "./host.js" {
		t.Errorf("runtime = %+v", cfg.Runtime)
	}
	if got := cfg.Runtime.Timeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
	if cfg.Render.MaxBins != 20 || cfg.Render.Width != 640 || cfg.Render.Height != 480 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Preview.Watch {
		t.Error("watch override lost")
	}
	if got := cfg.Preview.Debounce(); got != 50*time.Millisecond {
		t.Errorf("debounce = %v, want 50ms", got)
	}
	if cfg.Snapshot.OutputDir != "out" || cfg.Snapshot.Workers != 4 {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "workspace: ws.yaml\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Render.MaxBins != 10 || !cfg.Render.Interactive {
		t.Errorf("partial config lost render defaults: %+v", cfg.Render)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "malformed yaml", data: "runtime: [oops\n", want: ErrConfigParse},
		{name: "unknown key rejected", data: "wrokspace: typo.yaml\n", want: ErrConfigParse},
		{name: "negative timeout", data: "runtime:\n  timeoutSeconds: -1\n", want: ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, tt.data)
			if _, err := Load(path); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadNotFound(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(path); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}

func TestValidateRuntime(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.ValidateRuntime(); !errors.Is(err, ErrMissingRuntime) {
		t.Errorf("ValidateRuntime() on empty runtime = %v, want ErrMissingRuntime", err)
	}

	cfg.Runtime.SandboxModule = "sandbox.js"
	if err := cfg.ValidateRuntime(); !errors.Is(err, ErrMissingRuntime) {
		t.Errorf("ValidateRuntime() with missing host = %v, want ErrMissingRuntime", err)
	}

	cfg.Runtime.HostModule = "host.js"
	if err := cfg.ValidateRuntime(); err != nil {
		t.Errorf("ValidateRuntime() = %v, want nil", err)
	}
}
