package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
)

// Recorder is an in-memory Backend. It records every call so generation
// logic can be exercised without an engine, and answers ground raycasts from
// an injected height function.
type Recorder struct {
	mu       sync.Mutex
	next     Handle
	shapes   map[Handle]ShapeDesc
	zones    map[Handle][]EmitterConfig
	HeightAt func(x, z float64) (float64, bool)
}

func NewRecorder() *Recorder {
	return &Recorder{
		shapes: make(map[Handle]ShapeDesc),
		zones:  make(map[Handle][]EmitterConfig),
	}
}

func (r *Recorder) CreateShape(desc ShapeDesc) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.shapes[r.next] = desc
	return r.next, nil
}

func (r *Recorder) DestroyShape(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.shapes, h)
	delete(r.zones, h)
}

func (r *Recorder) RaycastGround(x, z float64) (float64, bool) {
	if r.HeightAt == nil {
		return 0, false
	}
	return r.HeightAt(x, z)
}

func (r *Recorder) CreateParticleZone(pos mgl64.Vec3, emitters []EmitterConfig) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.zones[r.next] = append([]EmitterConfig(nil), emitters...)
	r.shapes[r.next] = ShapeDesc{Kind: "particle_zone", Transform: geom.At(pos)}
	return r.next, nil
}

// ShapeCount reports how many shapes are alive.
func (r *Recorder) ShapeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shapes)
}

// Shapes returns a snapshot of every live shape.
func (r *Recorder) Shapes() []ShapeDesc {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ShapeDesc, 0, len(r.shapes))
	for _, s := range r.shapes {
		out = append(out, s)
	}
	return out
}

// Shape returns the description recorded for a handle.
func (r *Recorder) Shape(h Handle) (ShapeDesc, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shapes[h]
	return s, ok
}

// ZoneCount reports how many particle zones are alive.
func (r *Recorder) ZoneCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.zones)
}
