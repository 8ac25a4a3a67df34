// Package poi owns the stateful points of interest: their loot, vehicle and
// dinosaur spawn tables, depletion tracking and special events.
package poi

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
)

// Config is the immutable definition of one named POI.
type Config struct {
	Name                string
	Position            mgl64.Vec2
	Radius              float64
	Biome               biome.ID
	DangerRating        float64 // 0..10; >= HotDropThreshold marks a hot drop
	ChestCountMin       int
	ChestCountMax       int
	FloorLootSpawns     int
	GuaranteedDinosaurs []string
	VehicleTypes        []string
}

// HotDropThreshold is the danger rating at or above which a POI is surfaced
// to the deployment UI.
const HotDropThreshold = 7.0

// LootRecord is one chest or floor loot spawn.
type LootRecord struct {
	ID       uuid.UUID
	POI      string
	Kind     string // "chest" or "floor"
	Position mgl64.Vec3
	Opened   bool
	PickedUp bool
}

// VehicleRecord is one spawned vehicle.
type VehicleRecord struct {
	ID       uuid.UUID
	POI      string
	Type     string
	Position mgl64.Vec3
	Fuel     float64
	Health   float64
	Claimed  bool
}

// DinosaurSpawnRecord is one guaranteed dinosaur spawn.
type DinosaurSpawnRecord struct {
	ID         uuid.UUID
	POI        string
	Species    string
	Position   mgl64.Vec3
	Aggression float64
}

// EventRecord is one timestamped special event stored under the POI.
type EventRecord struct {
	Type string
	Data map[string]any
	At   time.Time
}

// State is the mutable per-match state of one POI.
type State struct {
	TotalChests  int
	LootedChests int
	IsLooted     bool
	Loot         []*LootRecord
	Vehicles     []*VehicleRecord
	Dinosaurs    []*DinosaurSpawnRecord
	Special      map[string]EventRecord
}

func newState() *State {
	return &State{Special: make(map[string]EventRecord)}
}

var vehicleDefaults = map[string]struct {
	fuel   float64
	health float64
}{
	"buggy":      {fuel: 0.8, health: 400},
	"quad":       {fuel: 0.7, health: 250},
	"truck":      {fuel: 0.6, health: 700},
	"hoverboard": {fuel: 1.0, health: 120},
}

var aggressionBySpecies = map[string]float64{
	"rex":           1.0,
	"carnotaurus":   0.9,
	"raptor":        0.8,
	"spitter":       0.7,
	"sarcosuchus":   0.75,
	"dilophosaurus": 0.6,
	"stegosaurus":   0.35,
	"triceratops":   0.3,
	"gallimimus":    0.1,
	"pteranodon":    0.2,
	"compy":         0.15,
}

// DefaultPOIs is the stock POI layout for the island, positioned inside
// their biome regions.
func DefaultPOIs(mapRadius float64) []Config {
	r := mapRadius
	return []Config{
		{
			Name:                "Raptor Pens",
			Position:            mgl64.Vec2{0.40 * r, 0.18 * r},
			Radius:              110,
			Biome:               biome.Jungle,
			DangerRating:        5,
			ChestCountMin:       4,
			ChestCountMax:       7,
			FloorLootSpawns:     10,
			GuaranteedDinosaurs: []string{"raptor", "raptor"},
			VehicleTypes:        []string{"quad", "buggy"},
		},
		{
			Name:                "Overgrown Temple",
			Position:            mgl64.Vec2{0.12 * r, 0.52 * r},
			Radius:              90,
			Biome:               biome.DeepJungle,
			DangerRating:        7,
			ChestCountMin:       6,
			ChestCountMax:       9,
			FloorLootSpawns:     14,
			GuaranteedDinosaurs: []string{"carnotaurus"},
			VehicleTypes:        []string{"quad"},
		},
		{
			Name:                "Caldera Research Lab",
			Position:            mgl64.Vec2{-0.52 * r, 0.28 * r},
			Radius:              130,
			Biome:               biome.Volcanic,
			DangerRating:        9,
			ChestCountMin:       8,
			ChestCountMax:       12,
			FloorLootSpawns:     18,
			GuaranteedDinosaurs: []string{"rex"},
			VehicleTypes:        []string{"truck", "buggy"},
		},
		{
			Name:                "Drowned Village",
			Position:            mgl64.Vec2{-0.28 * r, -0.46 * r},
			Radius:              100,
			Biome:               biome.Swamp,
			DangerRating:        6,
			ChestCountMin:       5,
			ChestCountMax:       8,
			FloorLootSpawns:     12,
			GuaranteedDinosaurs: []string{"sarcosuchus"},
			VehicleTypes:        []string{"hoverboard"},
		},
		{
			Name:                "Ranger Station",
			Position:            mgl64.Vec2{0.22 * r, -0.50 * r},
			Radius:              85,
			Biome:               biome.Highlands,
			DangerRating:        4,
			ChestCountMin:       3,
			ChestCountMax:       6,
			FloorLootSpawns:     8,
			GuaranteedDinosaurs: []string{"triceratops"},
			VehicleTypes:        []string{"truck"},
		},
		{
			Name:                "Beached Freighter",
			Position:            mgl64.Vec2{0.68 * r, -0.12 * r},
			Radius:              95,
			Biome:               biome.Coastal,
			DangerRating:        8,
			ChestCountMin:       7,
			ChestCountMax:       10,
			FloorLootSpawns:     16,
			GuaranteedDinosaurs: nil,
			VehicleTypes:        []string{"buggy", "quad"},
		},
		{
			Name:                "Lagoon Docks",
			Position:            mgl64.Vec2{-0.60 * r, -0.18 * r},
			Radius:              70,
			Biome:               biome.Lagoon,
			DangerRating:        2,
			ChestCountMin:       2,
			ChestCountMax:       4,
			FloorLootSpawns:     6,
			GuaranteedDinosaurs: nil,
			VehicleTypes:        []string{"hoverboard"},
		},
	}
}
