package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/source"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launchdash.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if cfg.Server.Addr != ":8050" || cfg.Source.Path != source.DefaultPath {
		t.Errorf("defaults = %+v / %+v", cfg.Server, cfg.Source)
	}
	want := dashboard.Options{Title: dashboard.DefaultTitle, SliderMax: 10000, SliderStep: 1000}
	if diff := cmp.Diff(want, cfg.Dashboard.Options()); diff != "" {
		t.Errorf("dashboard options (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  read_timeout: 5s
source:
  type: sqlite
  dsn: launches.db
  query: SELECT * FROM launches
  columns:
    site: launch_site
dashboard:
  initial_site: CCAFS LC-40
  slider_max: 20000
result_log:
  enabled: true
  address: localhost:6379
log:
  level: debug
  format: json
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Незаданные поля сохраняют значения по умолчанию
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("write_timeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	wantCols := source.DefaultColumns()
	wantCols.Site = "launch_site"
	if diff := cmp.Diff(wantCols, cfg.Source.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if cfg.Dashboard.InitialSite != "CCAFS LC-40" || cfg.Dashboard.SliderMax != 20000 || cfg.Dashboard.SliderStep != 1000 {
		t.Errorf("dashboard = %+v", cfg.Dashboard)
	}
	if cfg.ResultLog.Name != "launches" || cfg.ResultLog.TTL != 3600 {
		t.Errorf("result_log = %+v", cfg.ResultLog)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"sql without query", "source:\n  type: postgres\n  dsn: postgres://x\n", "query is required"},
		{"slider bounds", "dashboard:\n  slider_min: 5000\n  slider_max: 100\n", "slider_min"},
		{"result log without address", "result_log:\n  enabled: true\n", "result_log.address"},
		{"log format", "log:\n  format: xml\n", "log.format"},
		{"unknown extension", "source:\n  path: launches.parquet\n", "cannot infer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, tt.body))
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			err = cfg.validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("loadConfig() expected error for missing file")
	}
}
