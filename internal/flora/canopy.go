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

type canopyCluster struct {
	offset mgl64.Vec3 // relative to the crown
	size   mgl64.Vec3
}

// buildCanopy places the crown leaf mass according to the profile's shape.
func (g *Generator) buildCanopy(ctx context.Context, st *Structure, rng *rand.Rand, profile TreeTypeProfile, d *biome.Descriptor, crown geom.Transform, height float64, budget *sched.Budget) error {
	clusters := canopyClusters(rng, profile, height)
	for _, c := range clusters {
		h, err := g.backend.CreateShape(scene.ShapeDesc{
			Kind:      scene.KindSphere,
			Size:      c.size,
			Transform: geom.At(crown.Pos.Add(c.offset)),
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

func canopyClusters(rng *rand.Rand, profile TreeTypeProfile, height float64) []canopyCluster {
	switch profile.CanopyShape {
	case CanopySpreading:
		return spreadingClusters(rng, height)
	case CanopyConical:
		return conicalClusters(profile, height)
	case CanopyColumnar:
		return columnarClusters(height)
	default:
		return roundClusters(rng, height)
	}
}

// spreadingClusters is a wide ring of large offset clusters, oak-like.
func spreadingClusters(rng *rand.Rand, height float64) []canopyCluster {
	ring := 6
	radius := height * 0.2
	size := height * 0.32
	out := make([]canopyCluster, 0, ring+1)
	out = append(out, canopyCluster{size: uniform(size * 0.9)})
	for i := 0; i < ring; i++ {
		angle := float64(i)/float64(ring)*2*math.Pi + rng.Float64()*0.3
		out = append(out, canopyCluster{
			offset: mgl64.Vec3{
				math.Cos(angle) * radius,
				randRange(rng, -0.05, 0.08) * height,
				math.Sin(angle) * radius,
			},
			size: uniform(size),
		})
	}
	return out
}

// conicalClusters stacks shrinking rings, conifer-like.
func conicalClusters(profile TreeTypeProfile, height float64) []canopyCluster {
	layers := profile.CanopyLayers
	if layers < 2 {
		layers = 2
	}
	out := make([]canopyCluster, 0, layers*4+1)
	baseRadius := height * 0.16
	layerGap := height * 0.1
	for layer := 0; layer < layers; layer++ {
		shrink := 1 - float64(layer)/float64(layers)
		radius := baseRadius * shrink
		size := height * 0.18 * (0.6 + 0.4*shrink)
		y := float64(layer)*layerGap - height*0.12
		for i := 0; i < 4; i++ {
			angle := float64(i) / 4 * 2 * math.Pi
			out = append(out, canopyCluster{
				offset: mgl64.Vec3{math.Cos(angle) * radius, y, math.Sin(angle) * radius},
				size:   uniform(size),
			})
		}
	}
	out = append(out, canopyCluster{
		offset: mgl64.Vec3{0, float64(layers) * layerGap * 0.9, 0},
		size:   uniform(height * 0.12),
	})
	return out
}

// columnarClusters is a single narrow vertical mass for tall-narrow trees.
func columnarClusters(height float64) []canopyCluster {
	return []canopyCluster{{
		offset: mgl64.Vec3{0, height * 0.08, 0},
		size:   mgl64.Vec3{height * 0.16, height * 0.42, height * 0.16},
	}}
}

// roundClusters is one large central cluster with four small satellites for
// fullness. The default shape.
func roundClusters(rng *rand.Rand, height float64) []canopyCluster {
	central := height * 0.38
	satellite := central * 0.45
	radius := height * 0.16
	out := make([]canopyCluster, 0, 5)
	out = append(out, canopyCluster{size: uniform(central)})
	for i := 0; i < 4; i++ {
		angle := float64(i)/4*2*math.Pi + rng.Float64()*0.4
		out = append(out, canopyCluster{
			offset: mgl64.Vec3{
				math.Cos(angle) * radius,
				randRange(rng, -0.04, 0.06) * height,
				math.Sin(angle) * radius,
			},
			size: uniform(satellite),
		})
	}
	return out
}

func uniform(v float64) mgl64.Vec3 {
	return mgl64.Vec3{v, v, v}
}
