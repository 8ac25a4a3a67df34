package flora

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

// GenerateRockCluster builds one main rock sized from the radius parameter
// plus count-1 smaller satellites scattered at 0.3 to 0.8 of the radius from
// its center. Count clamps to a minimum of one.
func (g *Generator) GenerateRockCluster(ctx context.Context, at mgl64.Vec3, radius float64, count int, d *biome.Descriptor, budget *sched.Budget) (*Structure, error) {
	if count < 1 {
		count = 1
	}
	if radius <= 0 {
		radius = 1
	}
	rng := g.rngFor(at)
	st := &Structure{
		Kind:  "rock_cluster",
		Biome: d.ID,
		Root:  geom.At(at),
	}

	if err := g.createRock(ctx, st, at, radius, rng.Float64()*2*math.Pi, d, budget); err != nil {
		return st, err
	}

	for i := 1; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		distance := radius * randRange(rng, 0.3, 0.8)
		satPos := at.Add(mgl64.Vec3{math.Cos(angle) * distance, 0, math.Sin(angle) * distance})
		satRadius := radius * randRange(rng, 0.3, 0.55)
		if err := g.createRock(ctx, st, satPos, satRadius, rng.Float64()*2*math.Pi, d, budget); err != nil {
			return st, err
		}
	}
	return st, nil
}

// createRock adds one randomly skewed box colored from the biome palette.
func (g *Generator) createRock(ctx context.Context, st *Structure, at mgl64.Vec3, radius, yaw float64, d *biome.Descriptor, budget *sched.Budget) error {
	rng := g.rngFor(at)
	size := mgl64.Vec3{
		radius * randRange(rng, 1.2, 1.8),
		radius * randRange(rng, 0.8, 1.4),
		radius * randRange(rng, 1.2, 1.8),
	}
	h, err := g.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindBox,
		Size:      size,
		Transform: geom.At(at.Add(mgl64.Vec3{0, size.Y() * 0.35, 0})).Yawed(yaw).Pitched(randRange(rng, -0.15, 0.15)),
		Material:  scene.MaterialStone,
		Color:     d.Palette.Ground,
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, h)
	return budget.Spend(ctx, 1)
}

// GenerateGrassCluster scatters count blades, or stem+head flowers, uniformly
// inside a disk. Placement is Monte-Carlo (random angle times random radius)
// rather than rejection sampled; the count, not exact density, sets how full
// the disk looks.
func (g *Generator) GenerateGrassCluster(ctx context.Context, at mgl64.Vec3, radius float64, count int, flowerChance float64, d *biome.Descriptor, budget *sched.Budget) (*Structure, error) {
	if count < 1 {
		count = 1
	}
	rng := g.rngFor(at)
	st := &Structure{
		Kind:  "grass_cluster",
		Biome: d.ID,
		Root:  geom.At(at),
	}

	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * radius
		pos := at.Add(mgl64.Vec3{math.Cos(angle) * dist, 0, math.Sin(angle) * dist})

		if rng.Float64() < flowerChance {
			if err := g.createFlower(ctx, st, pos, rng.Float64(), d, budget); err != nil {
				return st, err
			}
			continue
		}
		height := randRange(rng, 0.6, 1.4)
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindBox,
			Size:      mgl64.Vec3{0.08, height, 0.08},
			Transform: geom.At(pos.Add(mgl64.Vec3{0, height / 2, 0})).Yawed(angle),
			Material:  scene.MaterialLeaf,
			Color:     d.Palette.Accent,
			Anchored:  true,
			CanTouch:  false,
		})
		if err != nil {
			return st, err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return st, err
		}
	}
	return st, nil
}

// createFlower is a thin stem topped with a sphere head.
func (g *Generator) createFlower(ctx context.Context, st *Structure, pos mgl64.Vec3, roll float64, d *biome.Descriptor, budget *sched.Budget) error {
	height := 0.8 + roll*0.6
	stem, err := g.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindCylinder,
		Size:      mgl64.Vec3{0.06, height, 0.06},
		Transform: geom.At(pos.Add(mgl64.Vec3{0, height / 2, 0})),
		Material:  scene.MaterialLeaf,
		Color:     d.Palette.Leaf,
		Anchored:  true,
		CanTouch:  false,
	})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, stem)
	head, err := g.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindSphere,
		Size:      uniform(0.35),
		Transform: geom.At(pos.Add(mgl64.Vec3{0, height, 0})),
		Material:  scene.MaterialLeaf,
		Color:     d.Palette.Flower,
		Anchored:  true,
		CanTouch:  false,
	})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, head)
	return budget.Spend(ctx, 2)
}
