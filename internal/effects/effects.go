// Package effects applies per-player biome hazards and movement modifiers,
// tracking biome transitions as players roam the island.
package effects

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/notify"
)

// Character is the per-player surface the effect manager drives.
type Character interface {
	Position() mgl64.Vec3
	BaseSpeed() float64
	SetEffectiveSpeed(speed float64)
	ApplyDamage(amount float64, source string)
}

// PlayerSource enumerates the currently tracked players.
type PlayerSource interface {
	Players() map[string]Character
}

const (
	defaultPollInterval = time.Second
	defaultHazardTick   = 2 * time.Second
)

type playerState struct {
	biome     biome.ID
	modifiers map[string]float64
	hazards   map[string]context.CancelFunc
}

// BiomeEffectManager polls player positions and keeps each player's hazard
// ticks and movement modifiers in sync with the biome under their feet.
type BiomeEffectManager struct {
	mu           sync.Mutex
	classifier   *biome.Classifier
	players      PlayerSource
	notify       notify.Notifier
	log          *slog.Logger
	pollInterval time.Duration
	hazardTick   time.Duration
	states       map[string]*playerState
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewBiomeEffectManager(cfg config.EffectsConfig, c *biome.Classifier, players PlayerSource, n notify.Notifier, log *slog.Logger) *BiomeEffectManager {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	poll := cfg.PollInterval.Duration()
	if poll <= 0 {
		poll = defaultPollInterval
	}
	hazardTick := cfg.DefaultHazardTick.Duration()
	if hazardTick <= 0 {
		hazardTick = defaultHazardTick
	}
	return &BiomeEffectManager{
		classifier:   c,
		players:      players,
		notify:       n,
		log:          log,
		pollInterval: poll,
		hazardTick:   hazardTick,
		states:       make(map[string]*playerState),
	}
}

// Start launches the poll loop. Stop with Stop.
func (m *BiomeEffectManager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx)
}

// Stop halts polling and tears down every active hazard.
func (m *BiomeEffectManager) Stop() {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return
	}
	m.cancel()
	m.cancel = nil
	done := m.done
	m.mu.Unlock()
	<-done
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.states {
		m.dropPlayerLocked(id)
	}
}

func (m *BiomeEffectManager) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll runs one pass over the tracked players. Exposed so callers without a
// running loop can step the manager deterministically.
func (m *BiomeEffectManager) Poll(ctx context.Context) {
	players := m.players.Players()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.states {
		if _, ok := players[id]; !ok {
			m.dropPlayerLocked(id)
		}
	}

	for id, ch := range players {
		pos := ch.Position()
		d := m.classifier.At(pos.X(), pos.Z())
		st, tracked := m.states[id]
		if !tracked {
			st = &playerState{biome: "", modifiers: make(map[string]float64), hazards: make(map[string]context.CancelFunc)}
			m.states[id] = st
		}
		if st.biome == d.ID {
			continue
		}
		m.transitionLocked(ctx, id, ch, st, d)
	}
}

func (m *BiomeEffectManager) transitionLocked(ctx context.Context, id string, ch Character, st *playerState, d *biome.Descriptor) {
	prev := st.biome
	for name, cancel := range st.hazards {
		cancel()
		delete(st.hazards, name)
	}
	for name := range st.modifiers {
		delete(st.modifiers, name)
	}
	st.biome = d.ID
	m.applySpeedLocked(ch, st)

	if d.Movement != nil {
		st.modifiers[d.Movement.Name] = d.Movement.Factor
		m.applySpeedLocked(ch, st)
	}
	if d.Hazard != nil {
		hctx, cancel := context.WithCancel(ctx)
		st.hazards[d.Hazard.Name] = cancel
		go m.runHazard(hctx, id, ch, d.ID, *d.Hazard)
	}

	m.notify.Send(id, notify.Message{
		Channel: "biome",
		Action:  "entered",
		Payload: map[string]any{"biome": string(d.ID), "from": string(prev)},
	})
	m.log.Debug("biome transition", "player", id, "from", prev, "to", d.ID)
}

// runHazard ticks damage while the player stays inside the hazard's biome.
// The biome is re-checked every tick so a player who has stepped out between
// polls takes no stray damage. Hazards that do not name an interval fall back
// to the configured default tick.
func (m *BiomeEffectManager) runHazard(ctx context.Context, id string, ch Character, in biome.ID, spec biome.HazardSpec) {
	interval := spec.Interval
	if interval <= 0 {
		interval = m.hazardTick
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pos := ch.Position()
			if m.classifier.At(pos.X(), pos.Z()).ID != in {
				continue
			}
			ch.ApplyDamage(spec.DamagePerTick, spec.Name)
		}
	}
}

// AddMovementModifier registers a named speed multiplier on a player and
// recomputes their effective speed.
func (m *BiomeEffectManager) AddMovementModifier(playerID, name string, factor float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return
	}
	ch, ok := m.players.Players()[playerID]
	if !ok {
		return
	}
	st.modifiers[name] = factor
	m.applySpeedLocked(ch, st)
}

// RemoveMovementModifier drops a named modifier. Removing a modifier that
// was never applied is a no-op.
func (m *BiomeEffectManager) RemoveMovementModifier(playerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return
	}
	ch, ok := m.players.Players()[playerID]
	if !ok {
		return
	}
	delete(st.modifiers, name)
	m.applySpeedLocked(ch, st)
}

// applySpeedLocked recomputes effective speed as base times the product of
// every active modifier.
func (m *BiomeEffectManager) applySpeedLocked(ch Character, st *playerState) {
	speed := ch.BaseSpeed()
	for _, f := range st.modifiers {
		speed *= f
	}
	ch.SetEffectiveSpeed(speed)
}

// RemovePlayer cancels all effects for a departing player immediately.
func (m *BiomeEffectManager) RemovePlayer(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropPlayerLocked(playerID)
}

func (m *BiomeEffectManager) dropPlayerLocked(id string) {
	st, ok := m.states[id]
	if !ok {
		return
	}
	for _, cancel := range st.hazards {
		cancel()
	}
	delete(m.states, id)
}

// CurrentBiome reports the last biome the manager observed for a player.
func (m *BiomeEffectManager) CurrentBiome(playerID string) (biome.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return "", false
	}
	return st.biome, true
}

// Modifiers returns a copy of a player's active movement modifiers.
func (m *BiomeEffectManager) Modifiers(playerID string) map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(st.modifiers))
	for k, v := range st.modifiers {
		out[k] = v
	}
	return out
}
