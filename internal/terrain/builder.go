package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

// Builder writes the match terrain into the scene backend: a flat spawn
// zone, one ground column per grid cell, and a single water slab. The fill
// pass yields to the scheduler in cell batches so generation never starves
// the rest of the game loop.
type Builder struct {
	mapCfg     config.MapConfig
	genCfg     config.GenerationConfig
	classifier *biome.Classifier
	synth      *Synthesizer
	backend    scene.Backend
	log        *slog.Logger

	handles []scene.Handle
}

func NewBuilder(mapCfg config.MapConfig, genCfg config.GenerationConfig, classifier *biome.Classifier, synth *Synthesizer, backend scene.Backend, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		mapCfg:     mapCfg,
		genCfg:     genCfg,
		classifier: classifier,
		synth:      synth,
		backend:    backend,
		log:        log,
	}
}

type cell struct {
	x, z     float64
	height   float64
	material scene.Material
	color    string
}

// Build generates the full terrain. The spawn zone is carved first so the
// grid pass can skip every cell inside it.
func (b *Builder) Build(ctx context.Context, budget *sched.Budget) error {
	if err := b.buildSpawnZone(); err != nil {
		return err
	}

	cells, err := b.synthesizeCells(ctx)
	if err != nil {
		return err
	}

	total := len(cells)
	b.log.Info("terrain fill started", "cells", total)
	nextLogPercent := 10
	for i, c := range cells {
		if err := b.fillColumn(c); err != nil {
			return err
		}
		if err := budget.Spend(ctx, 1); err != nil {
			return err
		}
		progress := (i + 1) * 100 / total
		if progress >= nextLogPercent {
			b.log.Info("terrain fill progress", "percent", progress)
			nextLogPercent = ((progress / 10) + 1) * 10
		}
	}

	if err := b.buildWaterLayer(); err != nil {
		return err
	}
	b.log.Info("terrain fill complete", "cells", total)
	return nil
}

// synthesizeCells classifies and heights every grid cell. Synthesis is pure,
// so it fans out across workers; results come back in grid order.
func (b *Builder) synthesizeCells(ctx context.Context) ([]cell, error) {
	res := b.mapCfg.CellResolution
	radius := b.mapCfg.Radius
	steps := int(math.Ceil(2*radius/res)) + 1

	coords := make([][2]float64, 0, steps*steps)
	for ix := 0; ix < steps; ix++ {
		for iz := 0; iz < steps; iz++ {
			x := -radius + float64(ix)*res
			z := -radius + float64(iz)*res
			if math.Hypot(x, z) > radius {
				continue
			}
			if b.insideSpawnZone(x, z) {
				continue
			}
			coords = append(coords, [2]float64{x, z})
		}
	}

	cells := make([]cell, len(coords))
	g, ctx := errgroup.WithContext(ctx)
	workers := b.genCfg.ColumnWorkers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range coords {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			x, z := coords[i][0], coords[i][1]
			d := b.classifier.At(x, z)
			h := b.synth.Height(x, z, d)
			cells[i] = cell{
				x:        x,
				z:        z,
				height:   h,
				material: MaterialFor(d, h),
				color:    d.Palette.Ground,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cells, nil
}

func (b *Builder) insideSpawnZone(x, z float64) bool {
	if b.mapCfg.SpawnRadius <= 0 {
		return false
	}
	dx := x - b.mapCfg.SpawnCenterX
	dz := z - b.mapCfg.SpawnCenterZ
	return math.Hypot(dx, dz) <= b.mapCfg.SpawnRadius
}

// buildSpawnZone carves the guaranteed flat, safe deployment disk. One
// cylinder of uniform material at a fixed height; later passes treat its
// footprint as off limits.
func (b *Builder) buildSpawnZone() error {
	if b.mapCfg.SpawnRadius <= 0 {
		return nil
	}
	thickness := b.mapCfg.SpawnHeight - b.mapCfg.FloorDepth
	center := mgl64.Vec3{
		b.mapCfg.SpawnCenterX,
		b.mapCfg.FloorDepth + thickness/2,
		b.mapCfg.SpawnCenterZ,
	}
	h, err := b.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindCylinder,
		Size:      mgl64.Vec3{b.mapCfg.SpawnRadius * 2, thickness, b.mapCfg.SpawnRadius * 2},
		Transform: geom.At(center),
		Material:  scene.MaterialSpawnPad,
		Color:     "#9aa3ad",
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return fmt.Errorf("spawn zone: %w", err)
	}
	b.handles = append(b.handles, h)
	b.log.Info("spawn zone carved",
		"centerX", b.mapCfg.SpawnCenterX,
		"centerZ", b.mapCfg.SpawnCenterZ,
		"radius", b.mapCfg.SpawnRadius)
	return nil
}

func (b *Builder) fillColumn(c cell) error {
	floor := b.mapCfg.FloorDepth
	top := c.height
	if top < floor+1 {
		top = floor + 1
	}
	size := mgl64.Vec3{b.mapCfg.CellResolution, top - floor, b.mapCfg.CellResolution}
	center := mgl64.Vec3{c.x, floor + (top-floor)/2, c.z}
	h, err := b.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindBox,
		Size:      size,
		Transform: geom.At(center),
		Material:  c.material,
		Color:     c.color,
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return fmt.Errorf("fill column at (%.0f,%.0f): %w", c.x, c.z, err)
	}
	b.handles = append(b.handles, h)
	return nil
}

func (b *Builder) buildWaterLayer() error {
	diameter := b.mapCfg.Radius * 2
	depth := b.mapCfg.WaterLevel - b.mapCfg.FloorDepth
	h, err := b.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindBox,
		Size:      mgl64.Vec3{diameter, depth, diameter},
		Transform: geom.At(mgl64.Vec3{0, b.mapCfg.FloorDepth + depth/2, 0}),
		Material:  scene.MaterialWater,
		Color:     "#3a7ca5",
		Anchored:  true,
		CanTouch:  false,
	})
	if err != nil {
		return fmt.Errorf("water layer: %w", err)
	}
	b.handles = append(b.handles, h)
	return nil
}

// ShapeCount reports how many terrain shapes were instantiated.
func (b *Builder) ShapeCount() int {
	return len(b.handles)
}
