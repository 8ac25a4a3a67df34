package flora

import (
	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/geom"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
)

// Segment is one straight primitive piece of a branch. Chained segments with
// small rotations approximate a curve. The start transform of every non-root
// segment equals its parent's end transform.
type Segment struct {
	Parent int // index into Structure.Segments, -1 for a chain root
	Start  geom.Transform
	End    geom.Transform
	Radius float64
}

// Branch groups the segment chain of one child branch and the canopy cluster
// at its tip, if any.
type Branch struct {
	FirstSegment int
	LastSegment  int
	HasCanopy    bool
}

// Structure is one generated organic structure. The root exclusively owns
// every segment and handle; Destroy tears the whole thing down together.
type Structure struct {
	Kind     string // "tree", "rock_cluster", "grass_cluster"
	TypeName string
	Biome    biome.ID
	Root     geom.Transform
	Segments []Segment
	Branches []Branch
	Handles  []scene.Handle
}

// Destroy releases every primitive belonging to the structure.
func (s *Structure) Destroy(backend scene.Backend) {
	for _, h := range s.Handles {
		backend.DestroyShape(h)
	}
	s.Handles = nil
}
