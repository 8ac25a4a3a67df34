package gamemap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/effects"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/poi"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
)

type emptyRoster struct{}

func (emptyRoster) Players() map[string]effects.Character { return nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Map.Radius = 240
	cfg.Map.CellResolution = 32
	cfg.Map.SpawnRadius = 40
	cfg.Flora.DensityScale = 0.2
	cfg.Props.CoverDensity = 0.0004
	cfg.Props.DecorDensity = 0.0002
	cfg.Props.DebrisDensity = 0.0002
	cfg.Generation.RegionPause = config.Duration(time.Millisecond)
	cfg.Generation.YieldTick = config.Duration(0)
	return cfg
}

func builtManager(t *testing.T, rec *notify.Recorder) (*MapManager, *scene.Recorder) {
	t.Helper()
	backend := scene.NewRecorder()
	m := NewMapManager(testConfig(), backend, emptyRoster{}, rec, nil)
	backend.HeightAt = func(x, z float64) (float64, bool) { return m.GroundHeight(x, z) }
	require.NoError(t, m.Initialize(context.Background()))
	return m, backend
}

func TestInitializeBuildsTerrainFloraAndProps(t *testing.T) {
	m, backend := builtManager(t, notify.NewRecorder())

	assert.Greater(t, backend.ShapeCount(), 0)
	assert.Greater(t, m.props.Count(), 0, "regions should receive props")

	var pads int
	for _, s := range backend.Shapes() {
		if s.Material == scene.MaterialSpawnPad {
			pads++
		}
	}
	assert.Equal(t, 1, pads)
}

func TestInitializeTwiceIsGuarded(t *testing.T) {
	m, backend := builtManager(t, notify.NewRecorder())
	before := backend.ShapeCount()

	require.NoError(t, m.Initialize(context.Background()))
	assert.Equal(t, before, backend.ShapeCount(), "second initialize must not rebuild")
}

func TestConcurrentInitializeBuildsOnce(t *testing.T) {
	backend := scene.NewRecorder()
	m := NewMapManager(testConfig(), backend, emptyRoster{}, nil, nil)
	backend.HeightAt = func(x, z float64) (float64, bool) { return m.GroundHeight(x, z) }

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.Initialize(context.Background()))
		}()
	}
	wg.Wait()

	var pads int
	for _, s := range backend.Shapes() {
		if s.Material == scene.MaterialSpawnPad {
			pads++
		}
	}
	assert.Equal(t, 1, pads, "racing initializers must not double-build the island")
}

func TestStartMatchRequiresInitialize(t *testing.T) {
	backend := scene.NewRecorder()
	m := NewMapManager(testConfig(), backend, emptyRoster{}, nil, nil)
	assert.Error(t, m.StartMatch(context.Background()))
}

func TestStartMatchRollsPOIContentAndBroadcasts(t *testing.T) {
	rec := notify.NewRecorder()
	m, _ := builtManager(t, rec)
	require.NoError(t, m.StartMatch(context.Background()))
	defer m.Reset()

	pois := m.POIs().All()
	require.NotEmpty(t, pois)
	assert.NotNil(t, m.POIs().State(pois[0].Name), "match start must roll loot tables")

	found := false
	for _, msg := range rec.Broadcasts() {
		if msg.Channel == "match" && msg.Action == "started" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGroundHeightOutsideIslandMisses(t *testing.T) {
	m, _ := builtManager(t, notify.NewRecorder())
	_, ok := m.GroundHeight(10000, 0)
	assert.False(t, ok)
	_, ok = m.GroundHeight(0, 0)
	assert.True(t, ok)
}

func TestPositionalQueries(t *testing.T) {
	m, _ := builtManager(t, notify.NewRecorder())

	d := m.GetBiomeAtPosition(50, 50)
	require.NotNil(t, d)
	assert.Equal(t, d.LootMultiplier, m.GetLootMultiplierAtPosition(50, 50))
	assert.Equal(t, d.Dinosaurs, m.GetDinosaurConfigAtPosition(50, 50))

	danger := m.GetDangerLevelAtPosition(50, 50)
	assert.GreaterOrEqual(t, danger, d.Danger)
	assert.LessOrEqual(t, danger, 10.0)
}

func TestGunfireRaisesLocalDanger(t *testing.T) {
	m, _ := builtManager(t, notify.NewRecorder())

	quiet := m.GetDangerLevelAtPosition(0, 0)
	farBefore := m.GetDangerLevelAtPosition(200, -200)

	m.RecordGunfire(10, 10)
	m.RecordGunfire(-10, 5)

	loud := m.GetDangerLevelAtPosition(0, 0)
	assert.Greater(t, loud, quiet, "recent gunfire should raise danger")
	assert.Equal(t, farBefore, m.GetDangerLevelAtPosition(200, -200), "gunfire is local")
}

func TestGunfireAgesOut(t *testing.T) {
	m, _ := builtManager(t, notify.NewRecorder())
	base := time.Now()
	m.now = func() time.Time { return base }

	m.RecordGunfire(0, 0)
	require.Greater(t, m.recentGunfireNear(0, 0), 0)

	m.now = func() time.Time { return base.Add(gunfireWindow + time.Second) }
	assert.Zero(t, m.recentGunfireNear(0, 0))
}

func TestResetPreparesNextMatch(t *testing.T) {
	rec := notify.NewRecorder()
	m, backend := builtManager(t, rec)
	require.NoError(t, m.StartMatch(context.Background()))

	terrainShapes := backend.ShapeCount()
	m.RecordGunfire(0, 0)
	m.Reset()

	assert.Zero(t, m.recentGunfireNear(0, 0))
	pois := m.POIs().All()
	st := m.POIs().State(pois[0].Name)
	require.NotNil(t, st, "reset rebuilds poi state for the next match")
	assert.Zero(t, st.LootedChests)
	assert.False(t, st.IsLooted)
	assert.GreaterOrEqual(t, backend.ShapeCount(), terrainShapes-m.props.Count(),
		"terrain and flora survive a reset")

	// A fresh match can start straight away.
	require.NoError(t, m.StartMatch(context.Background()))
	m.Reset()
}

func TestGetMapDataForClient(t *testing.T) {
	m, _ := builtManager(t, notify.NewRecorder())

	data := m.GetMapDataForClient()
	assert.Equal(t, m.cfg.Map.Name, data.Name)
	assert.Len(t, data.Biomes, len(m.classifier.All()))
	assert.Len(t, data.POIs, len(m.POIs().All()))

	hotFromData := 0
	for _, p := range data.POIs {
		if p.HotDrop {
			hotFromData++
		}
	}
	assert.Equal(t, len(m.GetHotDropLocations()), hotFromData)

	require.Len(t, data.HotDrops, hotFromData, "summary carries its own hot drop list")
	for _, p := range data.HotDrops {
		assert.True(t, p.HotDrop)
		assert.GreaterOrEqual(t, p.Danger, poi.HotDropThreshold)
	}
}

func TestTriggerEnvironmentalEventReachesClients(t *testing.T) {
	rec := notify.NewRecorder()
	m, _ := builtManager(t, rec)
	require.NoError(t, m.StartMatch(context.Background()))
	defer m.Reset()

	name := m.POIs().All()[0].Name
	assert.True(t, m.TriggerEnvironmentalEvent(name, "meteor_shower", map[string]any{"count": 5}))
	assert.False(t, m.TriggerEnvironmentalEvent("Nowhere Gulch", "meteor_shower", nil))

	found := false
	for _, msg := range rec.Broadcasts() {
		if msg.Action == "event" && msg.Payload["poi"] == name {
			found = true
		}
	}
	assert.True(t, found)
}
