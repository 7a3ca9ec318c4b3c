package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Config{
		ProcessName:       "TOEM",
		TickInterval:      5 * time.Millisecond,
		HookRetryDelay:    10 * time.Second,
		HookRetryMaxDelay: time.Minute,
		ScannerViewSize:   262144,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MEMSPLIT_PROCESS_NAME", "TOEM-Demo")
	t.Setenv("MEMSPLIT_TICK_INTERVAL", "16ms")
	t.Setenv("MEMSPLIT_REGION_BY_SIGNATURE", "true")
	t.Setenv("MEMSPLIT_RUNLOG_PATH", "/tmp/runs.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProcessName != "TOEM-Demo" || cfg.TickInterval != 16*time.Millisecond {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.RegionBySignature || cfg.RunLogPath != "/tmp/runs.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("MEMSPLIT_SCANNER_VIEW_SIZE", "big")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero tick", map[string]string{"MEMSPLIT_TICK_INTERVAL": "0s"}},
		{"max below initial", map[string]string{"MEMSPLIT_HOOK_RETRY_MAX_DELAY": "1s"}},
		{"empty view", map[string]string{"MEMSPLIT_SCANNER_VIEW_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
