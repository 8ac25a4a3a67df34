package poi

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
)

func flatGround(x, z float64) (float64, bool) { return 10, true }

func testManager(t *testing.T, rec *notify.Recorder) *Manager {
	t.Helper()
	return NewManager(99, DefaultPOIs(2000), flatGround, rec, nil)
}

func chestIDs(m *Manager, poiName string) []LootRecord {
	var chests []LootRecord
	for _, l := range m.GetLootAtPOI(poiName) {
		if l.Kind == "chest" {
			chests = append(chests, *l)
		}
	}
	return chests
}

func TestInitializeRollsTablesForEveryPOI(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	for _, cfg := range m.All() {
		st := m.State(cfg.Name)
		require.NotNil(t, st, "poi %s has no state", cfg.Name)

		assert.GreaterOrEqual(t, st.TotalChests, cfg.ChestCountMin, cfg.Name)
		assert.LessOrEqual(t, st.TotalChests, cfg.ChestCountMax, cfg.Name)
		assert.Len(t, st.Loot, st.TotalChests+cfg.FloorLootSpawns, cfg.Name)
		assert.Len(t, st.Vehicles, len(cfg.VehicleTypes), cfg.Name)
		assert.Len(t, st.Dinosaurs, len(cfg.GuaranteedDinosaurs), cfg.Name)
		assert.False(t, st.IsLooted)
		assert.Zero(t, st.LootedChests)
	}
}

func TestChestRangeCollapsesWhenMinEqualsMax(t *testing.T) {
	cfgs := []Config{{
		Name:          "Fixed Camp",
		Radius:        50,
		ChestCountMin: 3,
		ChestCountMax: 3,
	}}
	m := NewManager(1, cfgs, flatGround, nil, nil)
	m.InitializeAllPOIs()

	require.Equal(t, 3, m.State("Fixed Camp").TotalChests)
}

func TestLootRecordsSnapToGroundInsideFootprint(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	for _, cfg := range m.All() {
		for _, l := range m.GetLootAtPOI(cfg.Name) {
			assert.Equal(t, 10.0, l.Position.Y(), "loot should sit on the ground")
			dx := l.Position.X() - cfg.Position.X()
			dz := l.Position.Z() - cfg.Position.Y()
			assert.LessOrEqual(t, dx*dx+dz*dz, cfg.Radius*cfg.Radius*1.01)
		}
	}
}

func TestMarkChestLootedCountsAndBroadcastsOnce(t *testing.T) {
	rec := notify.NewRecorder()
	m := testManager(t, rec)
	m.InitializeAllPOIs()

	name := "Lagoon Docks"
	chests := chestIDs(m, name)
	require.NotEmpty(t, chests)

	for _, c := range chests {
		m.MarkChestLooted(name, c.ID)
	}
	st := m.State(name)
	assert.Equal(t, st.TotalChests, st.LootedChests)
	assert.True(t, st.IsLooted)

	var depleted int
	for _, msg := range rec.Broadcasts() {
		if msg.Channel == "poi" && msg.Action == "looted" && msg.Payload["poi"] == name {
			depleted++
		}
	}
	assert.Equal(t, 1, depleted, "depletion broadcast must fire exactly once")
}

func TestMarkChestLootedIsIdempotentPerChest(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Raptor Pens"
	chests := chestIDs(m, name)
	require.NotEmpty(t, chests)

	for i := 0; i < 5; i++ {
		m.MarkChestLooted(name, chests[0].ID)
	}
	assert.Equal(t, 1, m.State(name).LootedChests, "repeat claims on one chest must not inflate the counter")
}

func TestMarkChestLootedIgnoresOverClaim(t *testing.T) {
	rec := notify.NewRecorder()
	m := testManager(t, rec)
	m.InitializeAllPOIs()

	name := "Lagoon Docks"
	for _, c := range chestIDs(m, name) {
		m.MarkChestLooted(name, c.ID)
	}
	st := m.State(name)
	total := st.TotalChests

	// A phantom chest id past depletion changes nothing.
	m.MarkChestLooted(name, uuid.UUID{0xff})
	assert.Equal(t, total, m.State(name).LootedChests)

	var depleted int
	for _, msg := range rec.Broadcasts() {
		if msg.Action == "looted" {
			depleted++
		}
	}
	assert.Equal(t, 1, depleted)
}

func TestMarkChestLootedRejectsUnknownChestID(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Drowned Village"
	m.MarkChestLooted(name, uuid.UUID{0xab})

	st := m.State(name)
	assert.Zero(t, st.LootedChests, "an id matching no chest record must not move the counter")
	assert.False(t, st.IsLooted)
}

func TestMarkChestLootedRejectsFloorLootID(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Ranger Station"
	var floor *LootRecord
	for _, l := range m.GetLootAtPOI(name) {
		if l.Kind == "floor" {
			floor = l
			break
		}
	}
	require.NotNil(t, floor)

	m.MarkChestLooted(name, floor.ID)

	assert.Zero(t, m.State(name).LootedChests, "floor loot ids must never count as chests")
	assert.False(t, floor.Opened)
}

func TestMarkChestLootedUnknownPOIIsNoOp(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()
	m.MarkChestLooted("Atlantis", uuid.UUID{1})
}

func TestMarkLootPickedUpOnlyFlagsFloorLoot(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Ranger Station"
	var floor *LootRecord
	for _, l := range m.GetLootAtPOI(name) {
		if l.Kind == "floor" {
			floor = l
			break
		}
	}
	require.NotNil(t, floor)

	m.MarkLootPickedUp(name, floor.ID)
	assert.True(t, floor.PickedUp)
	assert.Zero(t, m.State(name).LootedChests, "floor pickups never touch the chest counter")
}

func TestResetAllLootRefillsChestsButKeepsVehicles(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Raptor Pens"
	vehiclesBefore := m.GetVehiclesAtPOI(name)
	for _, c := range chestIDs(m, name) {
		m.MarkChestLooted(name, c.ID)
	}
	require.True(t, m.State(name).IsLooted)

	m.ResetAllLoot()

	st := m.State(name)
	assert.False(t, st.IsLooted)
	assert.Zero(t, st.LootedChests)
	assert.NotEmpty(t, st.Loot)
	assert.Equal(t, len(vehiclesBefore), len(m.GetVehiclesAtPOI(name)), "loot reset must not touch vehicles")
	assert.Equal(t, len(m.GetDinosaursAtPOI(name)), len(st.Dinosaurs))
}

func TestResetRebuildsAllTables(t *testing.T) {
	m := testManager(t, notify.NewRecorder())
	m.InitializeAllPOIs()

	name := "Raptor Pens"
	for _, c := range chestIDs(m, name) {
		m.MarkChestLooted(name, c.ID)
	}
	require.True(t, m.State(name).IsLooted)

	m.Reset()

	for _, cfg := range m.All() {
		st := m.State(cfg.Name)
		require.NotNil(t, st, "reset must leave %s ready for the next match", cfg.Name)
		assert.Zero(t, st.LootedChests, cfg.Name)
		assert.False(t, st.IsLooted, cfg.Name)
		assert.Len(t, st.Loot, st.TotalChests+cfg.FloorLootSpawns, cfg.Name)
		assert.Len(t, st.Vehicles, len(cfg.VehicleTypes), cfg.Name)
		assert.Len(t, st.Dinosaurs, len(cfg.GuaranteedDinosaurs), cfg.Name)
	}
	for _, l := range m.GetLootAtPOI(name) {
		assert.False(t, l.Opened, "reset must replace opened chests with fresh ones")
	}
}

func TestGetPOIAtPosition(t *testing.T) {
	m := testManager(t, notify.NewRecorder())

	for _, cfg := range m.All() {
		got := m.GetPOIAtPosition(cfg.Position.X(), cfg.Position.Y())
		require.NotNil(t, got, cfg.Name)
		assert.Equal(t, cfg.Name, got.Name)
	}
	assert.Nil(t, m.GetPOIAtPosition(1e6, 1e6))
}

func TestGetHotDropLocations(t *testing.T) {
	m := testManager(t, notify.NewRecorder())

	hot := m.GetHotDropLocations()
	require.NotEmpty(t, hot)
	for _, cfg := range hot {
		assert.GreaterOrEqual(t, cfg.DangerRating, HotDropThreshold)
	}

	// The quiet lagoon must never be a hot drop.
	for _, cfg := range hot {
		assert.NotEqual(t, "Lagoon Docks", cfg.Name)
	}
}

func TestTriggerPOIEventRecordsAndBroadcasts(t *testing.T) {
	rec := notify.NewRecorder()
	m := testManager(t, rec)
	m.InitializeAllPOIs()

	name := "Caldera Research Lab"
	lootBefore := len(m.GetLootAtPOI(name))

	assert.True(t, m.TriggerPOIEvent(name, "eruption", map[string]any{"severity": 3}))
	assert.False(t, m.TriggerPOIEvent("Atlantis", "eruption", nil), "unknown poi must report the event did not fire")

	st := m.State(name)
	ev, ok := st.Special["eruption"]
	require.True(t, ok)
	assert.Equal(t, "eruption", ev.Type)
	assert.False(t, ev.At.IsZero())
	assert.Equal(t, lootBefore, len(m.GetLootAtPOI(name)), "events must not mutate loot")

	found := false
	for _, msg := range rec.Broadcasts() {
		if msg.Action == "event" && msg.Payload["poi"] == name {
			found = true
		}
	}
	assert.True(t, found)
}

func TestInitializeIsDeterministicPerSeed(t *testing.T) {
	a := NewManager(7, DefaultPOIs(2000), flatGround, nil, nil)
	b := NewManager(7, DefaultPOIs(2000), flatGround, nil, nil)
	a.InitializeAllPOIs()
	b.InitializeAllPOIs()

	for _, cfg := range a.All() {
		assert.Equal(t, a.State(cfg.Name).TotalChests, b.State(cfg.Name).TotalChests, cfg.Name)
	}
}
