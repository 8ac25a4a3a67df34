package poi

import (
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
)

// GroundFunc resolves terrain height at a horizontal position.
type GroundFunc func(x, z float64) (float64, bool)

// Manager owns every POI's live state for the current match.
type Manager struct {
	mu     sync.RWMutex
	seed   int64
	pois   []Config
	states map[string]*State
	ground GroundFunc
	notify notify.Notifier
	log    *slog.Logger
}

func NewManager(seed int64, pois []Config, ground GroundFunc, n notify.Notifier, log *slog.Logger) *Manager {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		seed:   seed,
		pois:   pois,
		states: make(map[string]*State),
		ground: ground,
		notify: n,
		log:    log,
	}
}

// InitializeAllPOIs rolls loot, vehicle and dinosaur tables for every POI,
// replacing any previous match state.
func (m *Manager) InitializeAllPOIs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildLocked()
}

func (m *Manager) rebuildLocked() {
	m.states = make(map[string]*State)
	for i := range m.pois {
		cfg := &m.pois[i]
		rng := rand.New(rand.NewSource(m.seed ^ int64(hashName(cfg.Name))))
		st := newState()
		m.rollLoot(cfg, st, rng)
		m.rollVehicles(cfg, st, rng)
		m.rollDinosaurs(cfg, st, rng)
		m.states[cfg.Name] = st
		m.log.Info("poi initialized",
			"poi", cfg.Name,
			"chests", st.TotalChests,
			"floorLoot", len(st.Loot)-st.TotalChests,
			"vehicles", len(st.Vehicles),
			"dinosaurs", len(st.Dinosaurs))
	}
}

func (m *Manager) rollLoot(cfg *Config, st *State, rng *rand.Rand) {
	chests := cfg.ChestCountMin
	if cfg.ChestCountMax > cfg.ChestCountMin {
		chests += rng.Intn(cfg.ChestCountMax - cfg.ChestCountMin + 1)
	}
	st.TotalChests = chests
	for i := 0; i < chests; i++ {
		st.Loot = append(st.Loot, &LootRecord{
			ID:       uuid.New(),
			POI:      cfg.Name,
			Kind:     "chest",
			Position: m.scatter(cfg, rng, 0.85),
		})
	}
	for i := 0; i < cfg.FloorLootSpawns; i++ {
		st.Loot = append(st.Loot, &LootRecord{
			ID:       uuid.New(),
			POI:      cfg.Name,
			Kind:     "floor",
			Position: m.scatter(cfg, rng, 1.0),
		})
	}
}

func (m *Manager) rollVehicles(cfg *Config, st *State, rng *rand.Rand) {
	for _, vt := range cfg.VehicleTypes {
		def := vehicleDefaults[vt]
		fuel, health := def.fuel, def.health
		if health == 0 {
			fuel, health = 0.5, 200
		}
		st.Vehicles = append(st.Vehicles, &VehicleRecord{
			ID:       uuid.New(),
			POI:      cfg.Name,
			Type:     vt,
			Position: m.scatter(cfg, rng, 1.0),
			Fuel:     fuel * (0.8 + 0.4*rng.Float64()),
			Health:   health,
		})
	}
}

func (m *Manager) rollDinosaurs(cfg *Config, st *State, rng *rand.Rand) {
	for _, sp := range cfg.GuaranteedDinosaurs {
		aggr, ok := aggressionBySpecies[sp]
		if !ok {
			aggr = 0.5
		}
		st.Dinosaurs = append(st.Dinosaurs, &DinosaurSpawnRecord{
			ID:         uuid.New(),
			POI:        cfg.Name,
			Species:    sp,
			Position:   m.scatter(cfg, rng, 1.0),
			Aggression: aggr,
		})
	}
}

// scatter picks a ground-snapped point inside the POI footprint.
func (m *Manager) scatter(cfg *Config, rng *rand.Rand, edge float64) mgl64.Vec3 {
	angle := rng.Float64() * 2 * math.Pi
	dist := math.Sqrt(rng.Float64()) * cfg.Radius * edge
	x := cfg.Position.X() + math.Cos(angle)*dist
	z := cfg.Position.Y() + math.Sin(angle)*dist
	y := 0.0
	if m.ground != nil {
		if h, ok := m.ground(x, z); ok {
			y = h
		}
	}
	return mgl64.Vec3{x, y, z}
}

// MarkChestLooted records one opened chest. Ids that match no chest record,
// and repeat claims on an opened chest, are silent no-ops; the counter only
// ever moves in step with a record flipping to Opened. The first time it
// reaches the total, a one-time depletion broadcast goes out.
func (m *Manager) MarkChestLooted(poiName string, chestID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[poiName]
	if !ok {
		return
	}
	var chest *LootRecord
	for _, l := range st.Loot {
		if l.ID == chestID && l.Kind == "chest" {
			chest = l
			break
		}
	}
	if chest == nil || chest.Opened {
		return
	}
	chest.Opened = true
	st.LootedChests++
	if st.LootedChests == st.TotalChests && !st.IsLooted {
		st.IsLooted = true
		m.notify.Broadcast(notify.Message{
			Channel: "poi",
			Action:  "looted",
			Payload: map[string]any{"poi": poiName},
		})
		m.log.Info("poi fully looted", "poi", poiName)
	}
}

// MarkLootPickedUp flags a floor loot spawn as taken. It never affects the
// chest counter.
func (m *Manager) MarkLootPickedUp(poiName string, lootID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[poiName]
	if !ok {
		return
	}
	for _, l := range st.Loot {
		if l.ID == lootID {
			l.PickedUp = true
			return
		}
	}
}

// ResetAllLoot re-rolls loot tables and clears depletion counters on every
// POI. Vehicles and dinosaur spawns are left untouched.
func (m *Manager) ResetAllLoot() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pois {
		cfg := &m.pois[i]
		st, ok := m.states[cfg.Name]
		if !ok {
			continue
		}
		rng := rand.New(rand.NewSource(m.seed ^ int64(hashName(cfg.Name)) ^ time.Now().UnixNano()))
		st.Loot = nil
		st.LootedChests = 0
		st.IsLooted = false
		m.rollLoot(cfg, st, rng)
	}
	m.log.Info("poi loot reset", "pois", len(m.pois))
}

// Reset discards all POI state and rolls fresh loot, vehicle and dinosaur
// tables, leaving every POI ready for the next match.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildLocked()
	m.log.Info("poi state reset", "pois", len(m.pois))
}

// GetPOIAtPosition returns the POI whose circular footprint contains the
// point, or nil.
func (m *Manager) GetPOIAtPosition(x, z float64) *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.pois {
		cfg := &m.pois[i]
		dx := x - cfg.Position.X()
		dz := z - cfg.Position.Y()
		if dx*dx+dz*dz <= cfg.Radius*cfg.Radius {
			return cfg
		}
	}
	return nil
}

// GetLootAtPOI returns the live loot records at a POI.
func (m *Manager) GetLootAtPOI(poiName string) []*LootRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[poiName]
	if !ok {
		return nil
	}
	out := make([]*LootRecord, len(st.Loot))
	copy(out, st.Loot)
	return out
}

// GetVehiclesAtPOI returns the vehicle records at a POI.
func (m *Manager) GetVehiclesAtPOI(poiName string) []*VehicleRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[poiName]
	if !ok {
		return nil
	}
	out := make([]*VehicleRecord, len(st.Vehicles))
	copy(out, st.Vehicles)
	return out
}

// GetDinosaursAtPOI returns the guaranteed dinosaur spawn records at a POI.
func (m *Manager) GetDinosaursAtPOI(poiName string) []*DinosaurSpawnRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[poiName]
	if !ok {
		return nil
	}
	out := make([]*DinosaurSpawnRecord, len(st.Dinosaurs))
	copy(out, st.Dinosaurs)
	return out
}

// State returns the live state for a POI, or nil.
func (m *Manager) State(poiName string) *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[poiName]
}

// GetHotDropLocations lists POIs whose danger rating meets the hot drop
// threshold.
func (m *Manager) GetHotDropLocations() []Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Config
	for _, cfg := range m.pois {
		if cfg.DangerRating >= HotDropThreshold {
			out = append(out, cfg)
		}
	}
	return out
}

// All returns the static POI configs.
func (m *Manager) All() []Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Config, len(m.pois))
	copy(out, m.pois)
	return out
}

// TriggerPOIEvent records a timestamped special event under the POI and
// broadcasts it. Loot state is not affected. It reports whether the POI had
// live state to attach the event to.
func (m *Manager) TriggerPOIEvent(poiName, eventType string, data map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[poiName]
	if !ok {
		m.log.Warn("poi event for unknown poi", "poi", poiName, "type", eventType)
		return false
	}
	st.Special[eventType] = EventRecord{Type: eventType, Data: data, At: time.Now()}
	m.notify.Broadcast(notify.Message{
		Channel: "poi",
		Action:  "event",
		Payload: map[string]any{"poi": poiName, "type": eventType, "data": data},
	})
	m.log.Info("poi event", "poi", poiName, "type", eventType)
	return true
}

func hashName(name string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}
