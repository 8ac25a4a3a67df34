package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/nicodemis2-web/dino-royale-sub000/internal/biome"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/config"
	"github.com/nicodemis2-web/dino-royale-sub000/internal/scene"
)

// Synthesizer turns a world position and biome into a terrain height and a
// ground material. It is pure: the same (x, z, biome, seed) always produces
// the same height, so regeneration is deterministic.
type Synthesizer struct {
	seed   int64
	scale  float64
	base   opensimplex.Noise
	detail opensimplex.Noise
	ridge  opensimplex.Noise
}

func NewSynthesizer(cfg config.TerrainConfig) *Synthesizer {
	scale := cfg.HeightScale
	if scale <= 0 {
		scale = 1
	}
	return &Synthesizer{
		seed:   cfg.Seed,
		scale:  scale,
		base:   opensimplex.New(cfg.Seed),
		detail: opensimplex.New(cfg.Seed + 1),
		ridge:  opensimplex.New(cfg.Seed + 2),
	}
}

type octave struct {
	frequency float64
	amplitude float64
}

type archetypeParams struct {
	baseOffset float64
	octaves    []octave
	ridged     bool
	ridgeFreq  float64
	ridgeAmp   float64
}

var archetypes = map[biome.Archetype]archetypeParams{
	biome.ArchetypeRolling: {
		baseOffset: 14,
		octaves: []octave{
			{frequency: 0.0016, amplitude: 18},
			{frequency: 0.006, amplitude: 6},
			{frequency: 0.02, amplitude: 1.5},
		},
	},
	biome.ArchetypeDunes: {
		baseOffset: 6,
		octaves: []octave{
			{frequency: 0.004, amplitude: 4},
			{frequency: 0.013, amplitude: 1.8},
		},
	},
	biome.ArchetypeRidged: {
		baseOffset: 30,
		octaves: []octave{
			{frequency: 0.0013, amplitude: 26},
			{frequency: 0.005, amplitude: 8},
		},
		ridged:    true,
		ridgeFreq: 0.0022,
		ridgeAmp:  38,
	},
	biome.ArchetypeLowlands: {
		baseOffset: 4,
		octaves: []octave{
			{frequency: 0.0021, amplitude: 5},
			{frequency: 0.009, amplitude: 2},
			{frequency: 0.03, amplitude: 0.6},
		},
	},
}

func paramsFor(arch biome.Archetype) archetypeParams {
	if p, ok := archetypes[arch]; ok {
		return p
	}
	return archetypes[biome.ArchetypeRolling]
}

// Height synthesizes the terrain height at (x, z) for the given biome.
func (s *Synthesizer) Height(x, z float64, d *biome.Descriptor) float64 {
	p := paramsFor(d.Archetype)
	h := p.baseOffset
	for i, oct := range p.octaves {
		var n float64
		if i == 0 {
			n = s.base.Eval2(x*oct.frequency, z*oct.frequency)
		} else {
			n = s.detail.Eval2(x*oct.frequency, z*oct.frequency)
		}
		h += n * oct.amplitude
	}
	if p.ridged {
		// Ridge noise folds the field around zero so crests become sharp.
		n := s.ridge.Eval2(x*p.ridgeFreq, z*p.ridgeFreq)
		h += (1 - math.Abs(n)) * p.ridgeAmp
	}
	return h * s.scale
}

// MaterialFor maps a biome and a synthesized height onto a ground material.
// Thresholds step per biome: high ground turns to rock or snow, low ground to
// the biome's wet or sandy base.
func MaterialFor(d *biome.Descriptor, height float64) scene.Material {
	switch d.ID {
	case biome.Volcanic:
		switch {
		case height > 70:
			return scene.MaterialBasalt
		case height > 28:
			return scene.MaterialRock
		default:
			return scene.MaterialAsh
		}
	case biome.Highlands:
		switch {
		case height > 85:
			return scene.MaterialSnow
		case height > 48:
			return scene.MaterialRock
		default:
			return scene.MaterialGrass
		}
	case biome.Coastal, biome.Lagoon:
		if height > 14 {
			return scene.MaterialGrass
		}
		return scene.MaterialSand
	case biome.Swamp:
		if height > 10 {
			return scene.MaterialGrass
		}
		return scene.MaterialMud
	default:
		switch {
		case height > 60:
			return scene.MaterialRock
		case height > 4:
			return scene.MaterialGrass
		default:
			return scene.MaterialDirt
		}
	}
}
