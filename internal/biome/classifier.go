package biome

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Classifier answers "which biome is this position in". It is the single
// source of truth: the sector view used by the coarse terrain pass is derived
// from the same center table, so the two can never disagree.
//
// Classification is weighted-nearest-center: each descriptor's distance is
// divided by its weight, and the smallest score wins. Positions beyond the
// map radius are not an error; they resolve to the nearest biome.
type Classifier struct {
	descriptors []Descriptor
	byID        map[ID]int
	sectors     []sector
	mapRadius   float64
}

type sector struct {
	fromAngle float64 // [0, 2π), inclusive lower bound
	id        ID
}

// NewClassifier builds a classifier over the given descriptor table. The
// table must be non-empty; classification never returns "no biome".
func NewClassifier(descriptors []Descriptor, mapRadius float64) *Classifier {
	c := &Classifier{
		descriptors: append([]Descriptor(nil), descriptors...),
		byID:        make(map[ID]int, len(descriptors)),
		mapRadius:   mapRadius,
	}
	for i, d := range c.descriptors {
		c.byID[d.ID] = i
	}
	c.buildSectors()
	return c
}

// Classify returns the biome id at (x, z).
func (c *Classifier) Classify(x, z float64) ID {
	return c.At(x, z).ID
}

// At returns the full descriptor at (x, z).
func (c *Classifier) At(x, z float64) *Descriptor {
	best := 0
	bestScore := math.MaxFloat64
	p := mgl64.Vec2{x, z}
	for i := range c.descriptors {
		d := &c.descriptors[i]
		weight := d.Weight
		if weight <= 0 {
			weight = 1
		}
		score := p.Sub(d.Center).Len() / weight
		if score < bestScore {
			bestScore = score
			best = i
		}
	}
	return &c.descriptors[best]
}

// Get looks a descriptor up by id.
func (c *Classifier) Get(id ID) (*Descriptor, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.descriptors[idx], true
}

// All returns the descriptor table in declaration order.
func (c *Classifier) All() []Descriptor {
	return c.descriptors
}

// MapRadius reports the world radius the classifier was built for.
func (c *Classifier) MapRadius() float64 {
	return c.mapRadius
}

// SectorClassify is the low-fidelity angular view used by the first terrain
// pass: the polar angle of (x, z) is bucketed into sectors whose boundaries
// are derived from the biome centers. Positions at the exact origin resolve
// through the canonical classifier.
func (c *Classifier) SectorClassify(x, z float64) ID {
	if len(c.sectors) == 0 || (x == 0 && z == 0) {
		return c.Classify(x, z)
	}
	angle := math.Atan2(z, x)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	// Sectors are sorted by fromAngle; the match is the last boundary at or
	// below the angle, wrapping to the final sector below the first boundary.
	chosen := c.sectors[len(c.sectors)-1].id
	for _, s := range c.sectors {
		if angle >= s.fromAngle {
			chosen = s.id
		}
	}
	return chosen
}

func (c *Classifier) buildSectors() {
	type centerAngle struct {
		angle float64
		id    ID
	}
	angles := make([]centerAngle, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		if d.Center.Len() == 0 {
			continue
		}
		a := math.Atan2(d.Center.Y(), d.Center.X())
		if a < 0 {
			a += 2 * math.Pi
		}
		angles = append(angles, centerAngle{angle: a, id: d.ID})
	}
	if len(angles) == 0 {
		return
	}
	sort.Slice(angles, func(i, j int) bool { return angles[i].angle < angles[j].angle })

	// Sector boundaries sit halfway between adjacent centers.
	c.sectors = make([]sector, len(angles))
	for i := range angles {
		prev := angles[(i+len(angles)-1)%len(angles)]
		gap := angles[i].angle - prev.angle
		if gap < 0 {
			gap += 2 * math.Pi
		}
		from := angles[i].angle - gap/2
		if from < 0 {
			from += 2 * math.Pi
		}
		c.sectors[i] = sector{fromAngle: from, id: angles[i].id}
	}
	sort.Slice(c.sectors, func(i, j int) bool { return c.sectors[i].fromAngle < c.sectors[j].fromAngle })
}
