// Package props distributes discrete placed objects (cover, clutter, debris,
// landmarks) across biome regions. Placement is tuned for PvP: cover hugs
// region edges and keeps a tactical minimum spacing.
package props

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

// Region is one circular area to populate for a single biome.
type Region struct {
	Center        mgl64.Vec2
	Radius        float64
	Biome         *biome.Descriptor
	DefaultHeight float64 // used when the ground raycast misses
}

// Placement reports one placed cover prop and the cluster it belongs to.
// Props sharing a nonzero ClusterID are siblings and exempt from the spacing
// invariant against each other.
type Placement struct {
	Object    *scene.PlacedObject
	ClusterID int
}

// Placer owns every generated prop. All prop registries live on the instance
// so multiple match instances can run in one process.
type Placer struct {
	cfg     config.PropsConfig
	backend scene.Backend
	log     *slog.Logger

	mu      sync.Mutex
	objects map[uuid.UUID]*scene.PlacedObject
}

func NewPlacer(cfg config.PropsConfig, backend scene.Backend, log *slog.Logger) *Placer {
	if log == nil {
		log = slog.Default()
	}
	return &Placer{
		cfg:     cfg,
		backend: backend,
		log:     log,
		objects: make(map[uuid.UUID]*scene.PlacedObject),
	}
}

func (p *Placer) rngFor(region Region) *rand.Rand {
	seed := p.cfg.Seed ^ int64(math.Float64bits(region.Center.X())) ^ int64(math.Float64bits(region.Center.Y()))<<17
	return rand.New(rand.NewSource(seed | 1))
}

// GenerateCoverProps fills a region with strategic cover. Every prop either
// hugs the edge (weighted coin flip) or lands on an even-density uniform
// sample; candidates closer than the minimum spacing to any accepted prop are
// rejected and retried. Accepted candidates sometimes expand into clusters of
// one full-size prop plus one to three smaller satellites.
func (p *Placer) GenerateCoverProps(ctx context.Context, region Region, budget *sched.Budget) ([]Placement, error) {
	rng := p.rngFor(region)
	count := p.scaledCount(region, p.cfg.CoverDensity)
	placements := make([]Placement, 0, count)
	accepted := make([]mgl64.Vec2, 0, count)
	clusterSeq := 0

	for i := 0; i < count; i++ {
		pos, ok := p.sampleWithSpacing(rng, region, accepted)
		if !ok {
			continue // region too crowded for more cover at this spacing
		}
		accepted = append(accepted, pos)

		if rng.Float64() < p.cfg.ClusterChance {
			clusterSeq++
			cluster, err := p.placeCluster(ctx, rng, region, pos, clusterSeq, budget)
			if err != nil {
				return placements, err
			}
			placements = append(placements, cluster...)
			continue
		}

		obj, err := p.placeCover(ctx, rng, region, pos, 1.0, budget)
		if err != nil {
			return placements, err
		}
		placements = append(placements, Placement{Object: obj})
	}

	p.log.Info("cover props placed",
		"biome", region.Biome.ID,
		"requested", count,
		"placed", len(placements))
	return placements, nil
}

// sampleWithSpacing draws candidates until one clears the minimum spacing
// against the accepted set, or the attempt cap runs out.
func (p *Placer) sampleWithSpacing(rng *rand.Rand, region Region, accepted []mgl64.Vec2) (mgl64.Vec2, bool) {
	const maxAttempts = 16
	for attempt := 0; attempt < maxAttempts; attempt++ {
		pos := p.samplePosition(rng, region)
		if p.clearsSpacing(pos, accepted) {
			return pos, true
		}
	}
	return mgl64.Vec2{}, false
}

func (p *Placer) clearsSpacing(pos mgl64.Vec2, accepted []mgl64.Vec2) bool {
	for _, other := range accepted {
		if pos.Sub(other).Len() < p.cfg.MinCoverSpacing {
			return false
		}
	}
	return true
}

// samplePosition biases toward the region edge with probability EdgeBias;
// otherwise it uses the square-root radius trick for even area density.
func (p *Placer) samplePosition(rng *rand.Rand, region Region) mgl64.Vec2 {
	angle := rng.Float64() * 2 * math.Pi
	var dist float64
	if rng.Float64() < p.cfg.EdgeBias {
		dist = region.Radius * (0.72 + 0.26*rng.Float64())
	} else {
		dist = region.Radius * math.Sqrt(rng.Float64())
	}
	return region.Center.Add(mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist})
}

// placeCluster drops one full-size prop plus satellites scattered within a
// small sub-radius.
func (p *Placer) placeCluster(ctx context.Context, rng *rand.Rand, region Region, at mgl64.Vec2, clusterID int, budget *sched.Budget) ([]Placement, error) {
	out := make([]Placement, 0, 4)
	main, err := p.placeCover(ctx, rng, region, at, 1.0, budget)
	if err != nil {
		return out, err
	}
	out = append(out, Placement{Object: main, ClusterID: clusterID})

	satellites := 1 + rng.Intn(3)
	subRadius := p.cfg.MinCoverSpacing * 0.4
	if subRadius <= 0 {
		subRadius = 3
	}
	for i := 0; i < satellites; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := subRadius * (0.4 + 0.6*rng.Float64())
		satPos := at.Add(mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist})
		sat, err := p.placeCover(ctx, rng, region, satPos, 0.45+0.2*rng.Float64(), budget)
		if err != nil {
			return out, err
		}
		out = append(out, Placement{Object: sat, ClusterID: clusterID})
	}
	return out, nil
}

var coverKinds = []struct {
	kind     string
	shape    scene.Kind
	size     mgl64.Vec3
	material scene.Material
	health   float64
}{
	{kind: "boulder", shape: scene.KindBox, size: mgl64.Vec3{4, 3, 4}, material: scene.MaterialStone, health: 300},
	{kind: "fallen_log", shape: scene.KindCylinder, size: mgl64.Vec3{1.4, 7, 1.4}, material: scene.MaterialBark, health: 150},
	{kind: "supply_crate", shape: scene.KindBox, size: mgl64.Vec3{2.5, 2.5, 2.5}, material: scene.MaterialMetal, health: 120},
}

func (p *Placer) placeCover(ctx context.Context, rng *rand.Rand, region Region, at mgl64.Vec2, scale float64, budget *sched.Budget) (*scene.PlacedObject, error) {
	kind := coverKinds[rng.Intn(len(coverKinds))]
	size := kind.size.Mul(scale)
	pos := p.groundPosition(at, region, size.Y()/2)

	h, err := p.backend.CreateShape(scene.ShapeDesc{
		Kind:      kind.shape,
		Size:      size,
		Transform: geom.At(pos).Yawed(rng.Float64() * 2 * math.Pi),
		Material:  kind.material,
		Color:     region.Biome.Palette.Ground,
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("place %s: %w", kind.kind, err)
	}
	obj := &scene.PlacedObject{
		ID:           uuid.New(),
		Kind:         kind.kind,
		Biome:        region.Biome.ID,
		Position:     pos,
		Destructible: true,
		Health:       kind.health * scale,
		MaxHealth:    kind.health * scale,
		Handles:      []scene.Handle{h},
	}
	p.register(obj)
	return obj, budget.Spend(ctx, 1)
}

// groundPosition resolves the ground height under the point, falling back to
// the region's default height when the raycast misses.
func (p *Placer) groundPosition(at mgl64.Vec2, region Region, lift float64) mgl64.Vec3 {
	y, ok := p.backend.RaycastGround(at.X(), at.Y())
	if !ok {
		y = region.DefaultHeight
	}
	return mgl64.Vec3{at.X(), y + lift, at.Y()}
}

func (p *Placer) register(obj *scene.PlacedObject) {
	p.mu.Lock()
	p.objects[obj.ID] = obj
	p.mu.Unlock()
}

// GenerateDecor fills decorative clutter at uniform density with no spacing
// or clustering logic.
func (p *Placer) GenerateDecor(ctx context.Context, region Region, budget *sched.Budget) (int, error) {
	return p.fillUniform(ctx, region, p.cfg.DecorDensity, "shrub", scene.KindSphere, mgl64.Vec3{1.6, 1.2, 1.6}, region.Biome.Palette.Accent, false, budget)
}

// GenerateDebris scatters small ground debris the same way.
func (p *Placer) GenerateDebris(ctx context.Context, region Region, budget *sched.Budget) (int, error) {
	return p.fillUniform(ctx, region, p.cfg.DebrisDensity, "debris", scene.KindBox, mgl64.Vec3{0.8, 0.4, 0.8}, region.Biome.Palette.Ground, false, budget)
}

func (p *Placer) fillUniform(ctx context.Context, region Region, density float64, kind string, shape scene.Kind, size mgl64.Vec3, color string, destructible bool, budget *sched.Budget) (int, error) {
	rng := p.rngFor(region)
	count := p.scaledCount(region, density)
	placed := 0
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := region.Radius * math.Sqrt(rng.Float64())
		at := region.Center.Add(mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist})
		pos := p.groundPosition(at, region, size.Y()/2)

		h, err := p.backend.CreateShape(scene.ShapeDesc{
			Kind:      shape,
			Size:      size,
			Transform: geom.At(pos).Yawed(rng.Float64() * 2 * math.Pi),
			Material:  scene.MaterialStone,
			Color:     color,
			Anchored:  true,
			CanTouch:  false,
		})
		if err != nil {
			return placed, fmt.Errorf("place %s: %w", kind, err)
		}
		p.register(&scene.PlacedObject{
			ID:           uuid.New(),
			Kind:         kind,
			Biome:        region.Biome.ID,
			Position:     pos,
			Destructible: destructible,
			Handles:      []scene.Handle{h},
		})
		placed++
		if err := budget.Spend(ctx, 1); err != nil {
			return placed, err
		}
	}
	return placed, nil
}

func (p *Placer) scaledCount(region Region, density float64) int {
	area := math.Pi * region.Radius * region.Radius
	modifier := region.Biome.PropModifier
	if modifier <= 0 {
		modifier = 1
	}
	return int(area * density * modifier)
}

// Object looks up a placed object by id.
func (p *Placer) Object(id uuid.UUID) (*scene.PlacedObject, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.objects[id]
	return obj, ok
}

// Count reports how many props are registered.
func (p *Placer) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}

// DamageObject applies damage to one prop. Destroyed props keep their record
// until Reset or ClearAll; a destroyed record loses its shapes immediately.
func (p *Placer) DamageObject(id uuid.UUID, amount float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	obj, ok := p.objects[id]
	if !ok {
		return
	}
	obj.Damage(amount)
	if obj.Destroyed {
		for _, h := range obj.Handles {
			p.backend.DestroyShape(h)
		}
		obj.Handles = nil
	}
}

// ClearAll destroys every generated prop and empties the registry. Used when
// tearing the whole map down.
func (p *Placer) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, obj := range p.objects {
		for _, h := range obj.Handles {
			p.backend.DestroyShape(h)
		}
	}
	p.objects = make(map[uuid.UUID]*scene.PlacedObject)
}

// Reset is the between-round contract: props destroyed during play are
// discarded, everything else goes back to full health. It is not a ClearAll.
func (p *Placer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, obj := range p.objects {
		if obj.Destroyed {
			for _, h := range obj.Handles {
				p.backend.DestroyShape(h)
			}
			delete(p.objects, id)
			continue
		}
		obj.Restore()
	}
}
