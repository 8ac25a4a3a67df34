package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "non positive map radius",
			mutate: func(cfg *Config) {
				cfg.Map.Radius = 0
			},
			wantErr: "map.radius must be positive",
		},
		{
			name: "spawn radius larger than map",
			mutate: func(cfg *Config) {
				cfg.Map.SpawnRadius = cfg.Map.Radius + 1
			},
			wantErr: "map.spawnRadius cannot exceed map.radius",
		},
		{
			name: "floor above water",
			mutate: func(cfg *Config) {
				cfg.Map.FloorDepth = cfg.Map.WaterLevel + 5
			},
			wantErr: "map.floorDepth must sit below map.waterLevel",
		},
		{
			name: "non positive height scale",
			mutate: func(cfg *Config) {
				cfg.Terrain.HeightScale = 0
			},
			wantErr: "terrain.heightScale must be positive",
		},
		{
			name: "edge bias out of range",
			mutate: func(cfg *Config) {
				cfg.Props.EdgeBias = 1.5
			},
			wantErr: "props.edgeBias must be within [0,1]",
		},
		{
			name: "non positive poll interval",
			mutate: func(cfg *Config) {
				cfg.Effects.PollInterval = 0
			},
			wantErr: "effects.pollInterval must be positive",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with empty path: %v", err)
	}
	if cfg.Map.Name != "primal-isle" {
		t.Fatalf("expected default map name, got %q", cfg.Map.Name)
	}
}

func TestLoadAppliesJSONOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	body := `{"map":{"name":"test-isle","radius":500,"cellResolution":8,"spawnRadius":40,"spawnHeight":10,"waterLevel":1,"floorDepth":-20},"generation":{"yieldTick":"25ms"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load json config: %v", err)
	}
	if cfg.Map.Name != "test-isle" {
		t.Fatalf("map name not applied: %q", cfg.Map.Name)
	}
	if cfg.Map.Radius != 500 {
		t.Fatalf("map radius not applied: %v", cfg.Map.Radius)
	}
	if got := cfg.Generation.YieldTick.Duration(); got != 25*time.Millisecond {
		t.Fatalf("yield tick not parsed from string: %v", got)
	}
	if cfg.Generation.ColumnWorkers != Default().Generation.ColumnWorkers {
		t.Fatalf("untouched fields should keep defaults")
	}
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	body := "map:\n  name: yaml-isle\n  radius: 800\ngeneration:\n  regionPause: 100ms\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load yaml config: %v", err)
	}
	if cfg.Map.Name != "yaml-isle" {
		t.Fatalf("yaml map name not applied: %q", cfg.Map.Name)
	}
	if got := cfg.Generation.RegionPause.Duration(); got != 100*time.Millisecond {
		t.Fatalf("region pause not parsed: %v", got)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"map":{"radius":-1}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation failure for negative radius")
	}
}

func TestDurationRoundTripsThroughJSON(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal duration: %v", err)
	}
	var back Duration
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal duration: %v", err)
	}
	if back != d {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}
