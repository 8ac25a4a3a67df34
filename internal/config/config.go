package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a config-friendly wrapper around time.Duration that accepts
// human readable strings such as "150ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.fromString(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// UnmarshalYAML decodes a duration from a YAML scalar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := value.Decode(&s); err == nil {
		return d.fromString(s)
	}
	return fmt.Errorf("duration: invalid yaml value %q", value.Value)
}

func (d *Duration) fromString(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters needed to build one match map.
type Config struct {
	Map        MapConfig        `json:"map" yaml:"map"`
	Terrain    TerrainConfig    `json:"terrain" yaml:"terrain"`
	Flora      FloraConfig      `json:"flora" yaml:"flora"`
	Props      PropsConfig      `json:"props" yaml:"props"`
	Loot       LootConfig       `json:"loot" yaml:"loot"`
	Effects    EffectsConfig    `json:"effects" yaml:"effects"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}

type MapConfig struct {
	Name           string  `json:"name" yaml:"name"`
	Radius         float64 `json:"radius" yaml:"radius"`
	CellResolution float64 `json:"cellResolution" yaml:"cellResolution"`
	SpawnCenterX   float64 `json:"spawnCenterX" yaml:"spawnCenterX"`
	SpawnCenterZ   float64 `json:"spawnCenterZ" yaml:"spawnCenterZ"`
	SpawnRadius    float64 `json:"spawnRadius" yaml:"spawnRadius"`
	SpawnHeight    float64 `json:"spawnHeight" yaml:"spawnHeight"`
	WaterLevel     float64 `json:"waterLevel" yaml:"waterLevel"`
	FloorDepth     float64 `json:"floorDepth" yaml:"floorDepth"`
}

type TerrainConfig struct {
	Seed        int64   `json:"seed" yaml:"seed"`
	HeightScale float64 `json:"heightScale" yaml:"heightScale"`
}

type FloraConfig struct {
	Seed         int64   `json:"seed" yaml:"seed"`
	DensityScale float64 `json:"densityScale" yaml:"densityScale"`
}

type PropsConfig struct {
	Seed            int64   `json:"seed" yaml:"seed"`
	CoverDensity    float64 `json:"coverDensity" yaml:"coverDensity"`       // cover props per square world unit
	DecorDensity    float64 `json:"decorDensity" yaml:"decorDensity"`       // decorative clutter per square world unit
	DebrisDensity   float64 `json:"debrisDensity" yaml:"debrisDensity"`     // ground debris per square world unit
	MinCoverSpacing float64 `json:"minCoverSpacing" yaml:"minCoverSpacing"` // world units between cover pieces
	EdgeBias        float64 `json:"edgeBias" yaml:"edgeBias"`               // chance a cover prop hugs the region edge
	ClusterChance   float64 `json:"clusterChance" yaml:"clusterChance"`     // chance a cover prop becomes a cluster
}

type LootConfig struct {
	Seed int64 `json:"seed" yaml:"seed"`
}

type EffectsConfig struct {
	PollInterval      Duration `json:"pollInterval" yaml:"pollInterval"`           // biome occupancy scan rate
	DefaultHazardTick Duration `json:"defaultHazardTick" yaml:"defaultHazardTick"` // hazard damage interval fallback
}

type GenerationConfig struct {
	TerrainBatchCells    int      `json:"terrainBatchCells" yaml:"terrainBatchCells"`
	FloraBatchPrimitives int      `json:"floraBatchPrimitives" yaml:"floraBatchPrimitives"`
	PropBatchPlacements  int      `json:"propBatchPlacements" yaml:"propBatchPlacements"`
	YieldTick            Duration `json:"yieldTick" yaml:"yieldTick"`
	RegionPause          Duration `json:"regionPause" yaml:"regionPause"` // wait between biome regions
	ColumnWorkers        int      `json:"columnWorkers" yaml:"columnWorkers"`
}

// Load reads configuration from a JSON or YAML file depending on extension.
// An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Map: MapConfig{
			Name:           "primal-isle",
			Radius:         2000,
			CellResolution: 16,
			SpawnCenterX:   0,
			SpawnCenterZ:   0,
			SpawnRadius:    120,
			SpawnHeight:    24,
			WaterLevel:     2,
			FloorDepth:     -40,
		},
		Terrain: TerrainConfig{
			Seed:        1337,
			HeightScale: 1.0,
		},
		Flora: FloraConfig{
			Seed:         2024,
			DensityScale: 1.0,
		},
		Props: PropsConfig{
			Seed:            907,
			CoverDensity:    0.00022,
			DecorDensity:    0.00035,
			DebrisDensity:   0.00050,
			MinCoverSpacing: 15,
			EdgeBias:        0.6,
			ClusterChance:   0.25,
		},
		Loot: LootConfig{
			Seed: 4451,
		},
		Effects: EffectsConfig{
			PollInterval:      Duration(time.Second),
			DefaultHazardTick: Duration(2 * time.Second),
		},
		Generation: GenerationConfig{
			TerrainBatchCells:    400,
			FloraBatchPrimitives: 40,
			PropBatchPlacements:  60,
			YieldTick:            Duration(15 * time.Millisecond),
			RegionPause:          Duration(50 * time.Millisecond),
			ColumnWorkers:        4,
		},
	}
}

func (c *Config) Validate() error {
	if c.Map.Radius <= 0 {
		return errors.New("map.radius must be positive")
	}
	if c.Map.CellResolution <= 0 {
		return errors.New("map.cellResolution must be positive")
	}
	if c.Map.SpawnRadius < 0 {
		return errors.New("map.spawnRadius cannot be negative")
	}
	if c.Map.SpawnRadius > c.Map.Radius {
		return errors.New("map.spawnRadius cannot exceed map.radius")
	}
	if c.Map.FloorDepth >= c.Map.WaterLevel {
		return errors.New("map.floorDepth must sit below map.waterLevel")
	}
	if c.Terrain.HeightScale <= 0 {
		return errors.New("terrain.heightScale must be positive")
	}
	if c.Flora.DensityScale < 0 {
		return errors.New("flora.densityScale cannot be negative")
	}
	if c.Props.MinCoverSpacing < 0 {
		return errors.New("props.minCoverSpacing cannot be negative")
	}
	if c.Props.EdgeBias < 0 || c.Props.EdgeBias > 1 {
		return errors.New("props.edgeBias must be within [0,1]")
	}
	if c.Props.ClusterChance < 0 || c.Props.ClusterChance > 1 {
		return errors.New("props.clusterChance must be within [0,1]")
	}
	if c.Effects.PollInterval <= 0 {
		return errors.New("effects.pollInterval must be positive")
	}
	if c.Generation.TerrainBatchCells <= 0 ||
		c.Generation.FloraBatchPrimitives <= 0 ||
		c.Generation.PropBatchPlacements <= 0 {
		return errors.New("generation batch sizes must be positive")
	}
	if c.Generation.ColumnWorkers < 0 {
		return errors.New("generation.columnWorkers cannot be negative")
	}
	return nil
}
