package flora

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

const (
	// taperRatio shrinks the branch radius every segment.
	taperRatio = 0.85
	// jitterMax bounds the per-segment random rotation, radians (~8 degrees).
	jitterMax = 8 * math.Pi / 180
	// curveStrength scales how hard a branch sweeps toward its bias vector.
	curveStrength = 0.14
	minRadius     = 0.05
)

// Generator synthesizes trees, rock clusters and grass clusters against the
// scene backend. Structure layout is deterministic per (seed, position).
type Generator struct {
	seed     int64
	backend  scene.Backend
	profiles map[string]TreeTypeProfile
	log      *slog.Logger
}

func NewGenerator(cfg config.FloraConfig, backend scene.Backend, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		seed:     cfg.Seed,
		backend:  backend,
		profiles: DefaultProfiles(),
		log:      log,
	}
}

// rngFor derives a reproducible stream for one structure position.
func (g *Generator) rngFor(at mgl64.Vec3) *rand.Rand {
	h := posHash(int(math.Floor(at.X())), int(math.Floor(at.Z())), int(g.seed))
	return rand.New(rand.NewSource(int64(h)<<1 | 1))
}

func posHash(x, z, seed int) uint32 {
	h := uint32(x*374761393 + z*668265263 + seed*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// RegisterProfile adds or replaces a tree type under its Name, so callers
// can grow trees beyond the stock table.
func (g *Generator) RegisterProfile(p TreeTypeProfile) {
	g.profiles[p.Name] = p
}

// Profile resolves a tree type name, falling back to the default archetype
// for unknown ids.
func (g *Generator) Profile(name string) TreeTypeProfile {
	if p, ok := g.profiles[name]; ok {
		return p
	}
	g.log.Warn("unknown tree type, using fallback", "type", name)
	return fallbackProfile
}

// growBranch constructs one segmented branch chain: per segment a bounded
// random perturbation, a progress-scaled sweep toward curveBias, an advance
// along the local forward axis, and a radius taper. Returns the tip transform
// and tip radius so canopies and child branches attach continuously.
func (g *Generator) growBranch(ctx context.Context, st *Structure, rng *rand.Rand, start geom.Transform, length, radius float64, segments int, curveBias mgl64.Vec3, color string, budget *sched.Budget) (geom.Transform, float64, int, error) {
	if segments < 1 {
		segments = 1
	}
	segLen := length / float64(segments)
	t := start
	parent := -1
	lastIdx := -1
	for i := 0; i < segments; i++ {
		t = t.Pitched(randRange(rng, -jitterMax, jitterMax))
		t = t.Rolled(randRange(rng, -jitterMax, jitterMax))
		progress := float64(i+1) / float64(segments)
		t = t.TiltedToward(curveBias, curveStrength*progress)

		end := t.Advance(segLen)
		seg := Segment{Parent: parent, Start: t, End: end, Radius: radius}
		st.Segments = append(st.Segments, seg)
		idx := len(st.Segments) - 1

		if err := g.createSegmentShape(ctx, st, seg, segLen, color, budget); err != nil {
			return t, radius, idx, err
		}

		parent = idx
		lastIdx = idx
		t = geom.Transform{Pos: end.Pos, Rot: end.Rot}
		radius *= taperRatio
		if radius < minRadius {
			radius = minRadius
		}
	}
	return t, radius, lastIdx, nil
}

func (g *Generator) createSegmentShape(ctx context.Context, st *Structure, seg Segment, segLen float64, color string, budget *sched.Budget) error {
	mid := seg.Start.Pos.Add(seg.End.Pos).Mul(0.5)
	h, err := g.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindCylinder,
		Size:      mgl64.Vec3{seg.Radius * 2, segLen, seg.Radius * 2},
		Transform: geom.Transform{Pos: mid, Rot: seg.Start.Rot},
		Material:  scene.MaterialBark,
		Color:     color,
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, h)
	return budget.Spend(ctx, 1)
}

// GenerateTree builds a complete tree of the named type at the position.
// Unknown type names degrade to the fallback archetype.
func (g *Generator) GenerateTree(ctx context.Context, typeName string, at mgl64.Vec3, d *biome.Descriptor, budget *sched.Budget) (*Structure, error) {
	profile := g.Profile(typeName)
	rng := g.rngFor(at)

	height := randRange(rng, profile.HeightMin, profile.HeightMax)
	if height <= 0 {
		height = fallbackProfile.HeightMin
	}
	trunkRadius := math.Max(height*profile.TrunkWidthRatio, 0.15)

	st := &Structure{
		Kind:     "tree",
		TypeName: profile.Name,
		Biome:    d.ID,
		Root:     geom.At(at),
	}

	barkColor := d.Palette.Bark
	if profile.IsDead {
		barkColor = shade(barkColor)
	}

	// Trunk sweeps gently toward a random horizontal lean.
	lean := mgl64.Vec3{randRange(rng, -0.25, 0.25), 1, randRange(rng, -0.25, 0.25)}
	trunkSegments := 6
	crown, crownRadius, _, err := g.growBranch(ctx, st, rng, st.Root, height, trunkRadius, trunkSegments, lean, barkColor, budget)
	if err != nil {
		return st, err
	}
	trunkSegCount := len(st.Segments)

	branchCount := randIntRange(rng, profile.BranchCountMin, profile.BranchCountMax)
	if branchCount < 1 {
		branchCount = 1
	}
	for i := 0; i < branchCount; i++ {
		if err := g.growChildBranch(ctx, st, rng, profile, d, trunkSegCount, height, budget); err != nil {
			return st, err
		}
	}

	if !profile.IsDead {
		if err := g.buildCanopy(ctx, st, rng, profile, d, crown, height, budget); err != nil {
			return st, err
		}
	}

	if err := g.decorate(ctx, st, rng, profile, d, crown, crownRadius, height, budget); err != nil {
		return st, err
	}
	return st, nil
}

// growChildBranch attaches one branch at a random height along the upper
// portion of the trunk, angled outward, with a leaf cluster at its tip unless
// the profile is a dead variant.
func (g *Generator) growChildBranch(ctx context.Context, st *Structure, rng *rand.Rand, profile TreeTypeProfile, d *biome.Descriptor, trunkSegCount int, height float64, budget *sched.Budget) error {
	frac := randRange(rng, 0.55, 0.95)
	segIdx := int(frac * float64(trunkSegCount))
	if segIdx >= trunkSegCount {
		segIdx = trunkSegCount - 1
	}
	attach := st.Segments[segIdx]

	angle := rng.Float64() * 2 * math.Pi
	outwardTilt := randRange(rng, 0.7, 1.2) // radians off the trunk axis
	start := geom.Transform{Pos: attach.End.Pos, Rot: attach.End.Rot}.
		Yawed(angle).
		Pitched(outwardTilt)

	length := height * randRange(rng, 0.25, 0.4)
	radius := attach.Radius * 0.6
	// Branches droop slightly: bias blends outward direction with a downward pull.
	bias := start.Forward().Add(mgl64.Vec3{0, -0.3, 0})

	first := len(st.Segments)
	tip, tipRadius, last, err := g.growBranch(ctx, st, rng, start, length, radius, 4, bias, d.Palette.Bark, budget)
	if err != nil {
		return err
	}

	branch := Branch{FirstSegment: first, LastSegment: last}
	if !profile.IsDead {
		size := math.Max(tipRadius*6, length*0.45)
		if err := g.createLeafCluster(ctx, st, tip.Pos, size, d.Palette.Leaf, budget); err != nil {
			return err
		}
		branch.HasCanopy = true
	}
	st.Branches = append(st.Branches, branch)
	return nil
}

func (g *Generator) createLeafCluster(ctx context.Context, st *Structure, pos mgl64.Vec3, size float64, color string, budget *sched.Budget) error {
	h, err := g.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindSphere,
		Size:      mgl64.Vec3{size, size, size},
		Transform: geom.At(pos),
		Material:  scene.MaterialLeaf,
		Color:     color,
		Anchored:  true,
		CanTouch:  false,
	})
	if err != nil {
		return err
	}
	st.Handles = append(st.Handles, h)
	return budget.Spend(ctx, 1)
}

func randRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func randIntRange(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// shade darkens a hex color by halving each channel. Used for dead variants.
func shade(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return hex
	}
	out := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i := 0; i < 3; i++ {
		v := hexByte(hex[1+i*2], hex[2+i*2]) / 2
		const digits = "0123456789abcdef"
		out[1+i*2] = digits[v>>4]
		out[2+i*2] = digits[v&0xf]
	}
	return string(out)
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return 0
	}
}
