package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if len(cfg.Venues) != 3 || cfg.Venues[0].Code != "EVK" || cfg.Venues[2].DataColor != "#DEEAF6" {
		t.Errorf("Venues = %+v", cfg.Venues)
	}
	if cfg.VarianceAlertThreshold != -0.10 || cfg.CoercionPolicy != CoercionZeroFill {
		t.Errorf("threshold = %v, policy = %q", cfg.VarianceAlertThreshold, cfg.CoercionPolicy)
	}
	if v, ok := cfg.Venue("irc"); !ok || v.Code != "IRC" {
		t.Errorf("Venue(irc) = %+v, %v", v, ok)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		env          map[string]string
		wantErr      bool
		validateFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "file overrides defaults",
			file: `
coercion_policy: strict
week_label: Week 3
venues:
  - code: NORTH
    title: North Breakdown
  - code: SOUTH
`,
			validateFunc: func(t *testing.T, cfg *Config) {
				if cfg.CoercionPolicy != CoercionStrict || cfg.WeekLabel != "Week 3" {
					t.Errorf("cfg = %+v", cfg)
				}
				if len(cfg.Venues) != 2 || cfg.Venues[1].SheetName() != "SOUTH" || cfg.Venues[1].BlockTitle() != "SOUTH Breakdown" {
					t.Errorf("Venues = %+v", cfg.Venues)
				}
				if cfg.MonthlyFileName != "Over_Production_Summary.xlsx" {
					t.Errorf("MonthlyFileName = %q", cfg.MonthlyFileName)
				}
			},
		},
		{
			name: "environment overrides file",
			file: "log_level: warn\n",
			env: map[string]string{
				"FOODWASTE_LOG_LEVEL":       "debug",
				"FOODWASTE_EXCLUDE_COURSES": "Bars,Grill",
				"FOODWASTE_SERVER_PORT":     "9090",
			},
			validateFunc: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != "debug" || cfg.Server.Port != 9090 {
					t.Errorf("LogLevel = %q, Port = %d", cfg.LogLevel, cfg.Server.Port)
				}
				if len(cfg.ExcludeCourses) != 2 || cfg.ExcludeCourses[1] != "Grill" {
					t.Errorf("ExcludeCourses = %v", cfg.ExcludeCourses)
				}
			},
		},
		{
			name:    "unknown coercion policy",
			file:    "coercion_policy: lenient\n",
			wantErr: true,
		},
		{
			name:    "cloud output without bucket",
			file:    "output_destination: cloud\n",
			wantErr: true,
		},
		{
			name:    "duplicate venue",
			file:    "venues:\n  - code: EVK\n  - code: EVK\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "foodwaste.yaml")
			if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
				t.Fatal(err)
			}

			cfg, err := LoadConfig(viper.New(), path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadConfig() = %+v, want error", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			tt.validateFunc(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("explicit missing config file accepted")
	}
}
