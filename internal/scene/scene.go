// Package scene is the boundary to the rendering/physics backend. The map
// core never draws anything itself; it describes shapes and asks the backend
// to instantiate them.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
)

// Handle identifies one instantiated shape. Zero is never a valid handle.
type Handle int64

// Kind selects the primitive a shape is built from.
type Kind string

const (
	KindBox      Kind = "box"
	KindCylinder Kind = "cylinder"
	KindSphere   Kind = "sphere"
	KindWedge    Kind = "wedge"
)

// Material names the surface applied to a shape.
type Material string

const (
	MaterialGrass    Material = "grass"
	MaterialDirt     Material = "dirt"
	MaterialSand     Material = "sand"
	MaterialRock     Material = "rock"
	MaterialSnow     Material = "snow"
	MaterialMud      Material = "mud"
	MaterialAsh      Material = "ash"
	MaterialBasalt   Material = "basalt"
	MaterialWater    Material = "water"
	MaterialSpawnPad Material = "spawn_pad"
	MaterialBark     Material = "bark"
	MaterialLeaf     Material = "leaf"
	MaterialStone    Material = "stone"
	MaterialMetal    Material = "metal"
	MaterialNeon     Material = "neon"
)

// ShapeDesc fully describes one primitive to instantiate.
type ShapeDesc struct {
	Kind      Kind
	Size      mgl64.Vec3 // box: extents; cylinder: X=diameter, Y=length; sphere: X=diameter
	Transform geom.Transform
	Material  Material
	Color     string // hex, e.g. "#2f8f3f"
	Anchored  bool
	CanTouch  bool // false for decorative overlays like moss
}

// EmitterConfig describes one particle emitter inside an ambient zone.
type EmitterConfig struct {
	Name     string
	Rate     float64
	Lifetime float64
	Color    string
	Spread   float64
}

// Backend instantiates and destroys primitives and answers ground queries.
// Implemented by the real engine adapter outside this module and by Recorder
// in tests.
type Backend interface {
	CreateShape(desc ShapeDesc) (Handle, error)
	DestroyShape(h Handle)
	// RaycastGround reports the terrain height under (x, z). ok is false when
	// nothing was hit; callers must fall back to their own default height.
	RaycastGround(x, z float64) (height float64, ok bool)
	CreateParticleZone(pos mgl64.Vec3, emitters []EmitterConfig) (Handle, error)
}

// PlacedObject is the persistent record for a generated prop. It replaces
// free-form attribute bags with explicit fields.
type PlacedObject struct {
	ID           uuid.UUID
	Kind         string
	Biome        biome.ID
	Position     mgl64.Vec3
	Destructible bool
	Health       float64
	MaxHealth    float64
	Destroyed    bool
	Handles      []Handle // every primitive belonging to this prop
}

// Damage reduces health and flips the destroyed flag when it empties. It does
// not destroy shapes; the owner decides when to tear handles down.
func (p *PlacedObject) Damage(amount float64) {
	if !p.Destructible || p.Destroyed || amount <= 0 {
		return
	}
	p.Health -= amount
	if p.Health <= 0 {
		p.Health = 0
		p.Destroyed = true
	}
}

// Restore returns the object to full health.
func (p *PlacedObject) Restore() {
	p.Health = p.MaxHealth
	p.Destroyed = false
}
