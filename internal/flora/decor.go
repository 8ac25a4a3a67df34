package flora

import (
	"context"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

// decorate runs the optional feature passes over a completed tree. Each pass
// is additive and independent; none of them changes the structural segments.
func (g *Generator) decorate(ctx context.Context, st *Structure, rng *rand.Rand, profile TreeTypeProfile, d *biome.Descriptor, crown geom.Transform, crownRadius, height float64, budget *sched.Budget) error {
	if profile.HasButtressRoots {
		if err := g.addButtressRoots(ctx, st, rng, d, height, budget); err != nil {
			return err
		}
	}
	if profile.HasVines {
		if err := g.addVines(ctx, st, rng, d, crown, height, budget); err != nil {
			return err
		}
	}
	if profile.HasMoss {
		if err := g.addMoss(ctx, st, rng, budget); err != nil {
			return err
		}
	}
	if profile.HasFronds {
		if err := g.addFronds(ctx, st, rng, d, crown, height, budget); err != nil {
			return err
		}
	}
	if profile.HasCoconuts {
		if err := g.addCoconuts(ctx, st, rng, crown, crownRadius, budget); err != nil {
			return err
		}
	}
	if profile.HasEmbers {
		if err := g.addEmbers(ctx, st, crown, budget); err != nil {
			return err
		}
	}
	return nil
}

// addButtressRoots fans wedges out from the base of the trunk.
func (g *Generator) addButtressRoots(ctx context.Context, st *Structure, rng *rand.Rand, d *biome.Descriptor, height float64, budget *sched.Budget) error {
	count := randIntRange(rng, 3, 5)
	reach := height * 0.12
	for i := 0; i < count; i++ {
		angle := float64(i)/float64(count)*2*math.Pi + rng.Float64()*0.5
		offset := mgl64.Vec3{math.Cos(angle) * reach * 0.5, reach * 0.2, math.Sin(angle) * reach * 0.5}
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindWedge,
			Size:      mgl64.Vec3{reach * 0.3, reach * 0.8, reach},
			Transform: geom.At(st.Root.Pos.Add(offset)).Yawed(angle),
			Material:  scene.MaterialBark,
			Color:     d.Palette.Bark,
			Anchored:  true,
			CanTouch:  true,
		})
		if err != nil {
			return err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

// addVines hangs thin cylinders from the crown.
func (g *Generator) addVines(ctx context.Context, st *Structure, rng *rand.Rand, d *biome.Descriptor, crown geom.Transform, height float64, budget *sched.Budget) error {
	count := randIntRange(rng, 2, 5)
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		radius := height * randRange(rng, 0.08, 0.18)
		length := height * randRange(rng, 0.25, 0.5)
		pos := crown.Pos.Add(mgl64.Vec3{
			math.Cos(angle) * radius,
			-length / 2,
			math.Sin(angle) * radius,
		})
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindCylinder,
			Size:      mgl64.Vec3{0.15, length, 0.15},
			Transform: geom.At(pos),
			Material:  scene.MaterialLeaf,
			Color:     d.Palette.Accent,
			Anchored:  true,
			CanTouch:  false,
		})
		if err != nil {
			return err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

// addMoss overlays flattened boxes on a random subset of trunk segments.
func (g *Generator) addMoss(ctx context.Context, st *Structure, rng *rand.Rand, budget *sched.Budget) error {
	// Only the trunk chain carries moss: the leading run of segments where
	// each one's parent is its predecessor.
	for i := range st.Segments {
		seg := st.Segments[i]
		if seg.Parent != i-1 {
			break
		}
		if rng.Float64() > 0.4 {
			continue
		}
		mid := seg.Start.Pos.Add(seg.End.Pos).Mul(0.5)
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindBox,
			Size:      mgl64.Vec3{seg.Radius * 2.2, seg.Radius * 1.5, 0.1},
			Transform: geom.Transform{Pos: mid, Rot: seg.Start.Rot},
			Material:  scene.MaterialLeaf,
			Color:     "#4c6b3c",
			Anchored:  true,
			CanTouch:  false,
		})
		if err != nil {
			return err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

// addFronds splays long flattened leaves out of the crown, palm style.
func (g *Generator) addFronds(ctx context.Context, st *Structure, rng *rand.Rand, d *biome.Descriptor, crown geom.Transform, height float64, budget *sched.Budget) error {
	count := randIntRange(rng, 5, 8)
	length := height * 0.35
	for i := 0; i < count; i++ {
		angle := float64(i)/float64(count)*2*math.Pi + rng.Float64()*0.3
		droop := randRange(rng, 0.25, 0.5)
		offset := mgl64.Vec3{
			math.Cos(angle) * length * 0.5,
			length * 0.15 * (1 - droop),
			math.Sin(angle) * length * 0.5,
		}
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindBox,
			Size:      mgl64.Vec3{length, 0.12, length * 0.22},
			Transform: geom.At(crown.Pos.Add(offset)).Yawed(angle).Pitched(droop),
			Material:  scene.MaterialLeaf,
			Color:     d.Palette.Leaf,
			Anchored:  true,
			CanTouch:  false,
		})
		if err != nil {
			return err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

// addCoconuts tucks a few small spheres under the crown.
func (g *Generator) addCoconuts(ctx context.Context, st *Structure, rng *rand.Rand, crown geom.Transform, crownRadius float64, budget *sched.Budget) error {
	count := randIntRange(rng, 2, 4)
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		offset := mgl64.Vec3{
			math.Cos(angle) * crownRadius * 2,
			-0.4,
			math.Sin(angle) * crownRadius * 2,
		}
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindSphere,
			Size:      uniform(0.5),
			Transform: geom.At(crown.Pos.Add(offset)),
			Material:  scene.MaterialBark,
			Color:     "#5b4426",
			Anchored:  true,
			CanTouch:  true,
		})
		if err != nil {
			return err
		}
		st.Handles = append(st.Handles, h)
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
	}
	return nil
}

// addEmbers attaches a single ambient emitter at the crown.
func (g *Generator) addEmbers(ctx context.Context, st *Structure, crown geom.Transform, budget *sched.Budget) error {
	h, err := g.backend.CreateParticleZone(crown.Pos, []scene.EmitterConfig{{
		Name:     "embers",
		Rate:     6,
		Lifetime: 2.5,
		Color:    "#ff8c42",
		Spread:   1.2,
	}})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, h)
	return budget.Spend(ctx, 1)
}
