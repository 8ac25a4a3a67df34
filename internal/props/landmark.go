package props

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
)

// PlaceLandmark raises one unique orientation structure in the region: a
// tower sized from the visibility parameter with a glowing beacon on top.
// Landmarks skip the density and spacing logic entirely.
func (p *Placer) PlaceLandmark(ctx context.Context, region Region, visibility float64, budget *sched.Budget) (*scene.PlacedObject, error) {
	if visibility <= 0 {
		visibility = 1
	}
	baseWidth := 6 * visibility
	towerHeight := 24 * visibility
	at := region.Center
	ground := p.groundPosition(at, region, 0)

	obj := &scene.PlacedObject{
		ID:           uuid.New(),
		Kind:         "landmark",
		Biome:        region.Biome.ID,
		Position:     ground,
		Destructible: false,
	}

	base, err := p.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindBox,
		Size:      mgl64.Vec3{baseWidth, towerHeight * 0.25, baseWidth},
		Transform: geom.At(ground.Add(mgl64.Vec3{0, towerHeight * 0.125, 0})),
		Material:  scene.MaterialStone,
		Color:     "#6e6a5e",
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("landmark base: %w", err)
	}
	obj.Handles = append(obj.Handles, base)

	spire, err := p.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindCylinder,
		Size:      mgl64.Vec3{baseWidth * 0.4, towerHeight, baseWidth * 0.4},
		Transform: geom.At(ground.Add(mgl64.Vec3{0, towerHeight * 0.5, 0})),
		Material:  scene.MaterialStone,
		Color:     "#7d786a",
		Anchored:  true,
		CanTouch:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("landmark spire: %w", err)
	}
	obj.Handles = append(obj.Handles, spire)

	beacon, err := p.backend.CreateShape(scene.ShapeDesc{
		Kind:      scene.KindSphere,
		Size:      mgl64.Vec3{baseWidth * 0.5, baseWidth * 0.5, baseWidth * 0.5},
		Transform: geom.At(ground.Add(mgl64.Vec3{0, towerHeight + baseWidth*0.25, 0})),
		Material:  scene.MaterialNeon,
		Color:     region.Biome.Palette.Accent,
		Anchored:  true,
		CanTouch:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("landmark beacon: %w", err)
	}
	obj.Handles = append(obj.Handles, beacon)

	p.register(obj)
	if err := budget.Spend(ctx, 3); err != nil {
		return obj, err
	}
	p.log.Info("landmark placed", "biome", region.Biome.ID, "visibility", visibility)
	return obj, nil
}
