package biome

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ID names one biome. IDs are stable across matches and safe to send to
// clients.
type ID string

const (
	Jungle     ID = "jungle"
	DeepJungle ID = "deep_jungle"
	Volcanic   ID = "volcanic"
	Swamp      ID = "swamp"
	Highlands  ID = "highlands"
	Coastal    ID = "coastal_plains"
	Lagoon     ID = "lagoon"
)

// Archetype selects the height-field character of a biome.
type Archetype string

const (
	ArchetypeRolling  Archetype = "rolling" // forested hills
	ArchetypeDunes    Archetype = "dunes"   // low arid undulation
	ArchetypeRidged   Archetype = "ridged"  // dramatic peaks with ridge noise
	ArchetypeLowlands Archetype = "lowlands"
)

// Palette carries the colors every generated structure in the biome draws
// from.
type Palette struct {
	Ground string
	Bark   string
	Leaf   string
	Flower string
	Accent string
}

// DinosaurEntry is one species with a selection weight.
type DinosaurEntry struct {
	Species string
	Weight  float64
}

// DinosaurTable describes ambient dinosaur spawning for a biome.
type DinosaurTable struct {
	Entries []DinosaurEntry
	Density float64 // spawns per square kilometre
}

// HazardSpec describes a periodic damage effect applied while a player stays
// in the biome.
type HazardSpec struct {
	Name          string
	DamagePerTick float64
	Interval      time.Duration
}

// MovementSpec is a named multiplicative speed factor active inside the
// biome.
type MovementSpec struct {
	Name   string
	Factor float64
}

// Descriptor is the immutable definition of one biome. Built once at load and
// never mutated afterwards.
type Descriptor struct {
	ID             ID
	Name           string
	Center         mgl64.Vec2
	Radius         float64
	Weight         float64 // enlarges the region in the weighted-nearest test
	Danger         float64 // baseline danger rating, 0..10
	LootMultiplier float64
	Dinosaurs      DinosaurTable
	Palette        Palette
	Archetype      Archetype
	TreeTypes      []string
	TreeDensity    float64 // trees per square kilometre before density scaling
	RockDensity    float64
	GrassDensity   float64
	PropModifier   float64 // scales prop category densities
	Hazard         *HazardSpec
	Movement       *MovementSpec
}

// DefaultIsland returns the stock biome layout: seven regions arranged
// around the island center. Centers are expressed in world units on the XZ
// plane.
func DefaultIsland(mapRadius float64) []Descriptor {
	r := mapRadius
	return []Descriptor{
		{
			ID:             Jungle,
			Name:           "Emerald Jungle",
			Center:         mgl64.Vec2{0.45 * r, 0.10 * r},
			Radius:         0.42 * r,
			Weight:         1.0,
			Danger:         3,
			LootMultiplier: 1.0,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "raptor", Weight: 5},
					{Species: "dilophosaurus", Weight: 3},
					{Species: "compy", Weight: 6},
				},
				Density: 14,
			},
			Palette: Palette{
				Ground: "#3a6b2d", Bark: "#6b4a2c", Leaf: "#2f8f3f",
				Flower: "#d4548a", Accent: "#7fd65f",
			},
			Archetype:    ArchetypeRolling,
			TreeTypes:    []string{"kapok", "palm", "fern_tree"},
			TreeDensity:  220,
			RockDensity:  35,
			GrassDensity: 400,
			PropModifier: 1.0,
		},
		{
			ID:             DeepJungle,
			Name:           "Deep Jungle",
			Center:         mgl64.Vec2{0.15 * r, 0.55 * r},
			Radius:         0.35 * r,
			Weight:         0.9,
			Danger:         6,
			LootMultiplier: 1.4,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "raptor", Weight: 6},
					{Species: "carnotaurus", Weight: 3},
					{Species: "spitter", Weight: 4},
				},
				Density: 22,
			},
			Palette: Palette{
				Ground: "#274d21", Bark: "#4e3620", Leaf: "#1f6e33",
				Flower: "#b03a75", Accent: "#56c44e",
			},
			Archetype:    ArchetypeRolling,
			TreeTypes:    []string{"kapok", "strangler_fig", "fern_tree"},
			TreeDensity:  340,
			RockDensity:  25,
			GrassDensity: 300,
			PropModifier: 0.8,
			Movement:     &MovementSpec{Name: "dense_undergrowth", Factor: 0.85},
		},
		{
			ID:             Volcanic,
			Name:           "Ashfall Ridge",
			Center:         mgl64.Vec2{-0.55 * r, 0.30 * r},
			Radius:         0.33 * r,
			Weight:         0.85,
			Danger:         9,
			LootMultiplier: 2.0,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "rex", Weight: 2},
					{Species: "carnotaurus", Weight: 5},
				},
				Density: 8,
			},
			Palette: Palette{
				Ground: "#4a3b38", Bark: "#2e2220", Leaf: "#7a4a28",
				Flower: "#e2622b", Accent: "#ff8c42",
			},
			Archetype:    ArchetypeRidged,
			TreeTypes:    []string{"charred_pine"},
			TreeDensity:  60,
			RockDensity:  120,
			GrassDensity: 40,
			PropModifier: 1.2,
			Hazard: &HazardSpec{
				Name:          "volcanic_heat",
				DamagePerTick: 4,
				Interval:      2 * time.Second,
			},
		},
		{
			ID:             Swamp,
			Name:           "Sunken Mire",
			Center:         mgl64.Vec2{-0.30 * r, -0.50 * r},
			Radius:         0.30 * r,
			Weight:         0.9,
			Danger:         5,
			LootMultiplier: 1.2,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "sarcosuchus", Weight: 4},
					{Species: "dilophosaurus", Weight: 4},
				},
				Density: 12,
			},
			Palette: Palette{
				Ground: "#44502d", Bark: "#3f3a26", Leaf: "#5a6e35",
				Flower: "#8a7ab0", Accent: "#97a65a",
			},
			Archetype:    ArchetypeLowlands,
			TreeTypes:    []string{"mangrove", "dead_oak"},
			TreeDensity:  180,
			RockDensity:  20,
			GrassDensity: 260,
			PropModifier: 0.9,
			Movement:     &MovementSpec{Name: "waterlogged_ground", Factor: 0.75},
		},
		{
			ID:             Highlands,
			Name:           "Thunder Highlands",
			Center:         mgl64.Vec2{0.20 * r, -0.55 * r},
			Radius:         0.36 * r,
			Weight:         1.0,
			Danger:         4,
			LootMultiplier: 1.1,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "triceratops", Weight: 5},
					{Species: "stegosaurus", Weight: 4},
					{Species: "raptor", Weight: 2},
				},
				Density: 10,
			},
			Palette: Palette{
				Ground: "#5d7042", Bark: "#55402a", Leaf: "#46793d",
				Flower: "#e7d258", Accent: "#90b06a",
			},
			Archetype:    ArchetypeRidged,
			TreeTypes:    []string{"mountain_pine", "dead_oak"},
			TreeDensity:  110,
			RockDensity:  90,
			GrassDensity: 320,
			PropModifier: 1.1,
		},
		{
			ID:             Coastal,
			Name:           "Shellline Plains",
			Center:         mgl64.Vec2{0.70 * r, -0.15 * r},
			Radius:         0.28 * r,
			Weight:         1.1,
			Danger:         2,
			LootMultiplier: 0.9,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "gallimimus", Weight: 6},
					{Species: "compy", Weight: 5},
				},
				Density: 9,
			},
			Palette: Palette{
				Ground: "#b7a678", Bark: "#8a6a43", Leaf: "#6fae58",
				Flower: "#f0e3a0", Accent: "#d6c892",
			},
			Archetype:    ArchetypeDunes,
			TreeTypes:    []string{"palm"},
			TreeDensity:  70,
			RockDensity:  30,
			GrassDensity: 180,
			PropModifier: 0.7,
		},
		{
			ID:             Lagoon,
			Name:           "Mirror Lagoon",
			Center:         mgl64.Vec2{-0.65 * r, -0.20 * r},
			Radius:         0.24 * r,
			Weight:         0.8,
			Danger:         1,
			LootMultiplier: 0.8,
			Dinosaurs: DinosaurTable{
				Entries: []DinosaurEntry{
					{Species: "pteranodon", Weight: 4},
					{Species: "compy", Weight: 3},
				},
				Density: 6,
			},
			Palette: Palette{
				Ground: "#c9bd8f", Bark: "#97724a", Leaf: "#79c06d",
				Flower: "#f2b5cf", Accent: "#9adbc9",
			},
			Archetype:    ArchetypeLowlands,
			TreeTypes:    []string{"palm"},
			TreeDensity:  55,
			RockDensity:  25,
			GrassDensity: 140,
			PropModifier: 0.6,
		},
	}
}
