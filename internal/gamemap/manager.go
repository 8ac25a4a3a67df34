// Package gamemap is the façade the rest of the server talks to: it owns the
// full build pipeline and answers every positional map query.
package gamemap

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/effects"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/flora"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/poi"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/props"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/sched"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/terrain"
)

const (
	minTreeSpacing  = 6.0
	gunfireWindow   = 30 * time.Second
	gunfireRange    = 150.0
	maxDanger       = 10.0
	landmarkMinRank = 7.0
)

type gunfireEvent struct {
	pos mgl64.Vec2
	at  time.Time
}

// MapManager builds the island once and serves queries against it.
type MapManager struct {
	cfg        *config.Config
	backend    scene.Backend
	notify     notify.Notifier
	log        *slog.Logger
	classifier *biome.Classifier
	synth      *terrain.Synthesizer
	terrain    *terrain.Builder
	flora      *flora.Generator
	props      *props.Placer
	pois       *poi.Manager
	effects    *effects.BiomeEffectManager

	mu          sync.RWMutex
	initialized bool
	building    bool
	trees       []*flora.Structure
	gunfire     []gunfireEvent
	now         func() time.Time
}

func NewMapManager(cfg *config.Config, backend scene.Backend, players effects.PlayerSource, n notify.Notifier, log *slog.Logger) *MapManager {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	classifier := biome.NewClassifier(biome.DefaultIsland(cfg.Map.Radius), cfg.Map.Radius)
	synth := terrain.NewSynthesizer(cfg.Terrain)
	m := &MapManager{
		cfg:        cfg,
		backend:    backend,
		notify:     n,
		log:        log,
		classifier: classifier,
		synth:      synth,
		now:        time.Now,
	}
	m.terrain = terrain.NewBuilder(cfg.Map, cfg.Generation, classifier, synth, backend, log)
	m.flora = flora.NewGenerator(cfg.Flora, backend, log)
	m.props = props.NewPlacer(cfg.Props, backend, log)
	m.pois = poi.NewManager(cfg.Loot.Seed, poi.DefaultPOIs(cfg.Map.Radius), m.GroundHeight, n, log)
	m.effects = effects.NewBiomeEffectManager(cfg.Effects, classifier, players, n, log)
	return m
}

// GroundHeight reports the synthesized terrain height at a horizontal
// position. Outside the island it reports false.
func (m *MapManager) GroundHeight(x, z float64) (float64, bool) {
	if x*x+z*z > m.cfg.Map.Radius*m.cfg.Map.Radius {
		return 0, false
	}
	return m.synth.Height(x, z, m.classifier.At(x, z)), true
}

// Initialize builds terrain, then populates flora and props one biome at a
// time. Calling it again, whether a build is in flight or already done, is a
// no-op. POI content is rolled separately by StartMatch.
func (m *MapManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.initialized || m.building {
		m.mu.Unlock()
		m.log.Warn("initialize called twice, ignoring")
		return nil
	}
	m.building = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.building = false
		m.mu.Unlock()
	}()

	start := m.now()
	tick := m.cfg.Generation.YieldTick.Duration()

	terrainBudget := sched.NewBudget(m.cfg.Generation.TerrainBatchCells, sched.Sleep(tick))
	if err := m.terrain.Build(ctx, terrainBudget); err != nil {
		return fmt.Errorf("build terrain: %w", err)
	}

	for _, d := range m.classifier.All() {
		region := d
		if err := m.populateRegion(ctx, &region); err != nil {
			return fmt.Errorf("populate %s: %w", region.ID, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.Generation.RegionPause.Duration()):
		}
	}

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	m.log.Info("map initialized",
		"name", m.cfg.Map.Name,
		"terrainShapes", m.terrain.ShapeCount(),
		"trees", len(m.trees),
		"props", m.props.Count(),
		"elapsed", m.now().Sub(start))
	return nil
}

// populateRegion grows flora and scatters props for one biome region.
func (m *MapManager) populateRegion(ctx context.Context, d *biome.Descriptor) error {
	tick := m.cfg.Generation.YieldTick.Duration()
	floraBudget := sched.NewBudget(m.cfg.Generation.FloraBatchPrimitives, sched.Sleep(tick))
	propBudget := sched.NewBudget(m.cfg.Generation.PropBatchPlacements, sched.Sleep(tick))

	if err := m.growFlora(ctx, d, floraBudget); err != nil {
		return err
	}

	region := props.Region{
		Center:        d.Center,
		Radius:        d.Radius,
		Biome:         d,
		DefaultHeight: m.synth.Height(d.Center.X(), d.Center.Y(), d),
	}
	if _, err := m.props.GenerateCoverProps(ctx, region, propBudget); err != nil {
		return err
	}
	if _, err := m.props.GenerateDecor(ctx, region, propBudget); err != nil {
		return err
	}
	if _, err := m.props.GenerateDebris(ctx, region, propBudget); err != nil {
		return err
	}
	if d.Danger >= landmarkMinRank {
		if _, err := m.props.PlaceLandmark(ctx, region, d.Danger/maxDanger, propBudget); err != nil {
			return err
		}
	}
	m.log.Info("region populated", "biome", d.ID)
	return nil
}

func (m *MapManager) growFlora(ctx context.Context, d *biome.Descriptor, budget *sched.Budget) error {
	rng := rand.New(rand.NewSource(m.cfg.Flora.Seed ^ int64(len(d.ID))<<16 ^ int64(d.Center.X())))
	area := math.Pi * d.Radius * d.Radius / 1e6 // square kilometres
	scale := m.cfg.Flora.DensityScale

	treeCount := int(area * d.TreeDensity * scale)
	var accepted []mgl64.Vec2
	for i := 0; i < treeCount; i++ {
		at, ok := m.sampleFloraSpot(rng, d, accepted)
		if !ok {
			continue
		}
		accepted = append(accepted, mgl64.Vec2{at.X(), at.Z()})
		typeName := d.TreeTypes[rng.Intn(len(d.TreeTypes))]
		st, err := m.flora.GenerateTree(ctx, typeName, at, d, budget)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.trees = append(m.trees, st)
		m.mu.Unlock()
	}

	rockCount := int(area * d.RockDensity * scale)
	for i := 0; i < rockCount; i++ {
		at, ok := m.sampleFloraSpot(rng, d, nil)
		if !ok {
			continue
		}
		if _, err := m.flora.GenerateRockCluster(ctx, at, 3+rng.Float64()*4, 1+rng.Intn(4), d, budget); err != nil {
			return err
		}
	}

	grassCount := int(area * d.GrassDensity * scale)
	for i := 0; i < grassCount; i++ {
		at, ok := m.sampleFloraSpot(rng, d, nil)
		if !ok {
			continue
		}
		if _, err := m.flora.GenerateGrassCluster(ctx, at, 2+rng.Float64()*3, 6+rng.Intn(10), 0.15, d, budget); err != nil {
			return err
		}
	}
	return nil
}

// sampleFloraSpot picks a ground-snapped point inside the region that stays
// on the island, out of the spawn zone, above water and clear of prior
// accepts.
func (m *MapManager) sampleFloraSpot(rng *rand.Rand, d *biome.Descriptor, accepted []mgl64.Vec2) (mgl64.Vec3, bool) {
	for attempt := 0; attempt < 8; attempt++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := math.Sqrt(rng.Float64()) * d.Radius
		x := d.Center.X() + math.Cos(angle)*dist
		z := d.Center.Y() + math.Sin(angle)*dist
		h, ok := m.GroundHeight(x, z)
		if !ok || h <= m.cfg.Map.WaterLevel {
			continue
		}
		if m.insideSpawn(x, z) {
			continue
		}
		clear := true
		for _, a := range accepted {
			dx, dz := x-a.X(), z-a.Y()
			if dx*dx+dz*dz < minTreeSpacing*minTreeSpacing {
				clear = false
				break
			}
		}
		if !clear {
			continue
		}
		return mgl64.Vec3{x, h, z}, true
	}
	return mgl64.Vec3{}, false
}

func (m *MapManager) insideSpawn(x, z float64) bool {
	dx := x - m.cfg.Map.SpawnCenterX
	dz := z - m.cfg.Map.SpawnCenterZ
	return dx*dx+dz*dz <= m.cfg.Map.SpawnRadius*m.cfg.Map.SpawnRadius
}

// StartMatch rolls POI content and starts the biome effect loop. The map
// must be initialized first.
func (m *MapManager) StartMatch(ctx context.Context) error {
	m.mu.RLock()
	ready := m.initialized
	m.mu.RUnlock()
	if !ready {
		return fmt.Errorf("start match: map not initialized")
	}
	m.pois.InitializeAllPOIs()
	m.effects.Start(ctx)
	m.notify.Broadcast(notify.Message{
		Channel: "match",
		Action:  "started",
		Payload: map[string]any{"map": m.cfg.Map.Name},
	})
	return nil
}

// Reset prepares the built map for a fresh match: effects stop, destroyed
// props are discarded, survivors restored, POI state re-rolled on the next
// StartMatch. Terrain and flora stay.
func (m *MapManager) Reset() {
	m.effects.Stop()
	m.props.Reset()
	m.pois.Reset()
	m.mu.Lock()
	m.gunfire = nil
	m.mu.Unlock()
	m.log.Info("map reset for next match")
}

// Effects exposes the biome effect manager for player lifecycle hooks.
func (m *MapManager) Effects() *effects.BiomeEffectManager { return m.effects }

// POIs exposes the POI manager for loot and vehicle interactions.
func (m *MapManager) POIs() *poi.Manager { return m.pois }

// Props exposes the prop placer for damage routing.
func (m *MapManager) Props() *props.Placer { return m.props }

// GetBiomeAtPosition returns the biome descriptor under the point.
func (m *MapManager) GetBiomeAtPosition(x, z float64) *biome.Descriptor {
	return m.classifier.At(x, z)
}

// GetPOIAtPosition returns the POI containing the point, or nil.
func (m *MapManager) GetPOIAtPosition(x, z float64) *poi.Config {
	return m.pois.GetPOIAtPosition(x, z)
}

// GetDangerLevelAtPosition combines the biome baseline, any containing
// POI's rating and recent nearby gunfire into one 0..10 score.
func (m *MapManager) GetDangerLevelAtPosition(x, z float64) float64 {
	danger := m.classifier.At(x, z).Danger
	if p := m.pois.GetPOIAtPosition(x, z); p != nil && p.DangerRating > danger {
		danger = p.DangerRating
	}
	danger += float64(m.recentGunfireNear(x, z))
	if danger > maxDanger {
		danger = maxDanger
	}
	return danger
}

// GetLootMultiplierAtPosition returns the biome loot multiplier under the
// point.
func (m *MapManager) GetLootMultiplierAtPosition(x, z float64) float64 {
	return m.classifier.At(x, z).LootMultiplier
}

// GetDinosaurConfigAtPosition returns the spawn table for the biome under
// the point.
func (m *MapManager) GetDinosaurConfigAtPosition(x, z float64) biome.DinosaurTable {
	return m.classifier.At(x, z).Dinosaurs
}

// GetHotDropLocations lists high-danger POIs for the deployment screen.
func (m *MapManager) GetHotDropLocations() []poi.Config {
	return m.pois.GetHotDropLocations()
}

// RecordGunfire notes a shot fired for the danger heat map. Old records age
// out of the window.
func (m *MapManager) RecordGunfire(x, z float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	cutoff := now.Add(-gunfireWindow)
	kept := m.gunfire[:0]
	for _, g := range m.gunfire {
		if g.at.After(cutoff) {
			kept = append(kept, g)
		}
	}
	m.gunfire = append(kept, gunfireEvent{pos: mgl64.Vec2{x, z}, at: now})
}

func (m *MapManager) recentGunfireNear(x, z float64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := m.now().Add(-gunfireWindow)
	n := 0
	for _, g := range m.gunfire {
		if !g.at.After(cutoff) {
			continue
		}
		dx, dz := x-g.pos.X(), z-g.pos.Y()
		if dx*dx+dz*dz <= gunfireRange*gunfireRange {
			n++
		}
	}
	return n
}

// TriggerEnvironmentalEvent records a map-wide special event at a POI and
// pushes it to clients. It reports whether the event reached a live POI.
func (m *MapManager) TriggerEnvironmentalEvent(poiName, eventType string, data map[string]any) bool {
	return m.pois.TriggerPOIEvent(poiName, eventType, data)
}

// ClientBiome is the wire summary of one biome region.
type ClientBiome struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CenterX     float64 `json:"centerX"`
	CenterZ     float64 `json:"centerZ"`
	Radius      float64 `json:"radius"`
	Danger      float64 `json:"danger"`
	GroundColor string  `json:"groundColor"`
}

// ClientPOI is the wire summary of one POI.
type ClientPOI struct {
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Z       float64 `json:"z"`
	Radius  float64 `json:"radius"`
	Danger  float64 `json:"danger"`
	HotDrop bool    `json:"hotDrop"`
}

// ClientMapData is the full map summary sent to joining clients.
type ClientMapData struct {
	Name       string        `json:"name"`
	Radius     float64       `json:"radius"`
	WaterLevel float64       `json:"waterLevel"`
	SpawnX     float64       `json:"spawnX"`
	SpawnZ     float64       `json:"spawnZ"`
	Biomes     []ClientBiome `json:"biomes"`
	POIs       []ClientPOI   `json:"pois"`
	HotDrops   []ClientPOI   `json:"hotDrops"`
}

// GetMapDataForClient builds the summary a joining client needs to render
// its map screen.
func (m *MapManager) GetMapDataForClient() ClientMapData {
	data := ClientMapData{
		Name:       m.cfg.Map.Name,
		Radius:     m.cfg.Map.Radius,
		WaterLevel: m.cfg.Map.WaterLevel,
		SpawnX:     m.cfg.Map.SpawnCenterX,
		SpawnZ:     m.cfg.Map.SpawnCenterZ,
	}
	for _, d := range m.classifier.All() {
		data.Biomes = append(data.Biomes, ClientBiome{
			ID:          string(d.ID),
			Name:        d.Name,
			CenterX:     d.Center.X(),
			CenterZ:     d.Center.Y(),
			Radius:      d.Radius,
			Danger:      d.Danger,
			GroundColor: d.Palette.Ground,
		})
	}
	for _, p := range m.pois.All() {
		cp := ClientPOI{
			Name:    p.Name,
			X:       p.Position.X(),
			Z:       p.Position.Y(),
			Radius:  p.Radius,
			Danger:  p.DangerRating,
			HotDrop: p.DangerRating >= poi.HotDropThreshold,
		}
		data.POIs = append(data.POIs, cp)
		if cp.HotDrop {
			data.HotDrops = append(data.HotDrops, cp)
		}
	}
	return data
}

// TreeCount reports how many trees survived generation.
func (m *MapManager) TreeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trees)
}
