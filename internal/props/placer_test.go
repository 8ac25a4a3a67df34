package props

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

func testRegion() Region {
	return Region{
		Center: mgl64.Vec2{0, 0},
		Radius: 100,
		Biome: &biome.Descriptor{
			ID:           biome.Jungle,
			PropModifier: 1,
			Palette:      biome.Palette{Ground: "#3f6b2f", Accent: "#ffb300"},
		},
		DefaultHeight: 5,
	}
}

func testPlacer(backend scene.Backend, mutate func(*config.PropsConfig)) *Placer {
	cfg := config.Default().Props
	cfg.CoverDensity = 0.0016 // ~50 props over a 100-unit region
	if mutate != nil {
		mutate(&cfg)
	}
	return NewPlacer(cfg, backend, nil)
}

func noBudget() *sched.Budget {
	return sched.NewBudget(1000000, sched.NoYield)
}

func TestCoverPropsKeepMinimumSpacing(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.MinCoverSpacing = 15
	})

	placements, err := p.GenerateCoverProps(context.Background(), testRegion(), noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) == 0 {
		t.Fatalf("expected cover props")
	}

	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			a, b := placements[i], placements[j]
			// Cluster siblings are exempt from the spacing invariant.
			if a.ClusterID != 0 && a.ClusterID == b.ClusterID {
				continue
			}
			// Satellites of different clusters sit near their own anchor,
			// which itself cleared spacing; only compare anchor-to-anchor.
			if a.ClusterID != 0 || b.ClusterID != 0 {
				continue
			}
			da := a.Object.Position
			db := b.Object.Position
			dx := da.X() - db.X()
			dz := da.Z() - db.Z()
			if dx*dx+dz*dz < 15*15 {
				t.Fatalf("props %d and %d violate spacing: %v vs %v", i, j, da, db)
			}
		}
	}
}

func TestCoverPropsStayInsideRegion(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, nil)
	region := testRegion()

	placements, err := p.GenerateCoverProps(context.Background(), region, noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	margin := region.Radius + p.cfg.MinCoverSpacing // satellites can poke past a little
	for _, pl := range placements {
		dx := pl.Object.Position.X() - region.Center.X()
		dz := pl.Object.Position.Z() - region.Center.Y()
		if dx*dx+dz*dz > margin*margin {
			t.Fatalf("prop far outside region at %v", pl.Object.Position)
		}
	}
}

func TestClustersShareAnIDAndHaveSatellites(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.ClusterChance = 1 // force every accept to expand
	})

	placements, err := p.GenerateCoverProps(context.Background(), testRegion(), noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	byCluster := make(map[int]int)
	for _, pl := range placements {
		if pl.ClusterID == 0 {
			t.Fatalf("forced clustering should tag every placement")
		}
		byCluster[pl.ClusterID]++
	}
	for id, n := range byCluster {
		if n < 2 || n > 4 {
			t.Fatalf("cluster %d has %d members, want a main prop plus 1-3 satellites", id, n)
		}
	}
}

func TestGroundPositionFallsBackToDefaultHeight(t *testing.T) {
	rec := scene.NewRecorder() // HeightAt nil: every raycast misses
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.ClusterChance = 0
	})
	region := testRegion()

	placements, err := p.GenerateCoverProps(context.Background(), region, noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, pl := range placements {
		if pl.Object.Position.Y() < region.DefaultHeight {
			t.Fatalf("missed raycast should rest on the default height, got %v", pl.Object.Position.Y())
		}
	}
}

func TestGroundPositionUsesRaycastHit(t *testing.T) {
	rec := scene.NewRecorder()
	rec.HeightAt = func(x, z float64) (float64, bool) { return 42, true }
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.ClusterChance = 0
	})

	placements, err := p.GenerateCoverProps(context.Background(), testRegion(), noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, pl := range placements {
		if pl.Object.Position.Y() < 42 {
			t.Fatalf("raycast hit ignored, y=%v", pl.Object.Position.Y())
		}
	}
}

func TestDamageObjectDestroysOnZeroHealth(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, nil)

	placements, err := p.GenerateCoverProps(context.Background(), testRegion(), noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	obj := placements[0].Object

	p.DamageObject(obj.ID, obj.MaxHealth/2)
	if obj.Destroyed {
		t.Fatalf("half damage should not destroy")
	}
	p.DamageObject(obj.ID, obj.MaxHealth)
	if !obj.Destroyed {
		t.Fatalf("lethal damage should destroy")
	}
	if len(obj.Handles) != 0 {
		t.Fatalf("destroyed prop should release its shapes")
	}
	if _, ok := p.Object(obj.ID); !ok {
		t.Fatalf("destroyed record should survive until Reset")
	}
}

func TestResetDiscardsDestroyedAndHealsSurvivors(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.ClusterChance = 0
	})

	placements, err := p.GenerateCoverProps(context.Background(), testRegion(), noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(placements) < 2 {
		t.Fatalf("need at least two props for this scenario")
	}
	dead := placements[0].Object
	hurt := placements[1].Object
	p.DamageObject(dead.ID, dead.MaxHealth*2)
	p.DamageObject(hurt.ID, hurt.MaxHealth/2)

	before := p.Count()
	p.Reset()

	if _, ok := p.Object(dead.ID); ok {
		t.Fatalf("reset should discard destroyed props")
	}
	if p.Count() != before-1 {
		t.Fatalf("reset removed the wrong number of props: %d -> %d", before, p.Count())
	}
	got, _ := p.Object(hurt.ID)
	if got.Health != got.MaxHealth {
		t.Fatalf("survivor not healed: %v/%v", got.Health, got.MaxHealth)
	}
}

func TestClearAllEmptiesRegistryAndScene(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, nil)
	region := testRegion()

	if _, err := p.GenerateCoverProps(context.Background(), region, noBudget()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := p.GenerateDecor(context.Background(), region, noBudget()); err != nil {
		t.Fatalf("decor: %v", err)
	}
	if p.Count() == 0 || rec.ShapeCount() == 0 {
		t.Fatalf("expected live props before clear")
	}

	p.ClearAll()
	if p.Count() != 0 {
		t.Fatalf("registry not emptied: %d", p.Count())
	}
	if rec.ShapeCount() != 0 {
		t.Fatalf("scene not emptied: %d", rec.ShapeCount())
	}
}

func TestDamageUnknownObjectIsNoOp(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, nil)
	p.DamageObject(uuid.UUID{1, 2, 3}, 100)
	if p.Count() != 0 {
		t.Fatalf("damaging a missing id should change nothing")
	}
}

func TestPropModifierScalesCounts(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, func(cfg *config.PropsConfig) {
		cfg.ClusterChance = 0
		cfg.MinCoverSpacing = 1 // keep rejection out of the comparison
	})

	sparse := testRegion()
	sparse.Biome = &biome.Descriptor{ID: biome.Lagoon, PropModifier: 0.3, Palette: biome.Palette{Ground: "#888888"}}
	dense := testRegion()
	dense.Biome = &biome.Descriptor{ID: biome.Volcanic, PropModifier: 2, Palette: biome.Palette{Ground: "#444444"}}

	few, err := p.GenerateCoverProps(context.Background(), sparse, noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	many, err := p.GenerateCoverProps(context.Background(), dense, noBudget())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(few) >= len(many) {
		t.Fatalf("prop modifier should scale counts: %d vs %d", len(few), len(many))
	}
}

func TestPlaceLandmarkIsIndestructibleAndScalesWithVisibility(t *testing.T) {
	rec := scene.NewRecorder()
	p := testPlacer(rec, nil)
	region := testRegion()

	obj, err := p.PlaceLandmark(context.Background(), region, 1.0, noBudget())
	if err != nil {
		t.Fatalf("landmark: %v", err)
	}
	if obj.Destructible {
		t.Fatalf("landmarks must not be destructible")
	}
	if len(obj.Handles) < 3 {
		t.Fatalf("landmark should be base, spire and beacon, got %d shapes", len(obj.Handles))
	}
}
