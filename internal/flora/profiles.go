package flora

// CanopyShape selects how leaf clusters distribute around a crown.
type CanopyShape string

const (
	// CanopySpreading is a wide ring of large offset clusters, oak-like.
	CanopySpreading CanopyShape = "spreading"
	// CanopyConical stacks shrinking rings, conifer-like.
	CanopyConical CanopyShape = "conical"
	// CanopyColumnar is a single narrow vertical cluster.
	CanopyColumnar CanopyShape = "columnar"
	// CanopyRound is one central mass with small satellites. The default.
	CanopyRound CanopyShape = "round"
)

// TreeTypeProfile parameterizes one tree archetype. Profiles are immutable;
// the generator only reads them.
type TreeTypeProfile struct {
	Name            string
	HeightMin       float64
	HeightMax       float64
	TrunkWidthRatio float64 // trunk radius as a fraction of height
	BranchCountMin  int
	BranchCountMax  int
	CanopyShape     CanopyShape
	CanopyLayers    int

	HasVines         bool
	HasButtressRoots bool
	HasFronds        bool
	HasMoss          bool
	IsDead           bool
	HasCoconuts      bool
	HasEmbers        bool
}

// DefaultProfiles is the stock tree table, keyed by type name. Biome
// descriptors reference these names.
func DefaultProfiles() map[string]TreeTypeProfile {
	profiles := []TreeTypeProfile{
		{
			Name:             "kapok",
			HeightMin:        22,
			HeightMax:        34,
			TrunkWidthRatio:  0.035,
			BranchCountMin:   4,
			BranchCountMax:   7,
			CanopyShape:      CanopySpreading,
			CanopyLayers:     2,
			HasVines:         true,
			HasButtressRoots: true,
			HasMoss:          true,
		},
		{
			Name:            "strangler_fig",
			HeightMin:       18,
			HeightMax:       26,
			TrunkWidthRatio: 0.045,
			BranchCountMin:  5,
			BranchCountMax:  8,
			CanopyShape:     CanopyRound,
			CanopyLayers:    2,
			HasVines:        true,
			HasMoss:         true,
		},
		{
			Name:            "palm",
			HeightMin:       10,
			HeightMax:       16,
			TrunkWidthRatio: 0.03,
			BranchCountMin:  1,
			BranchCountMax:  2,
			CanopyShape:     CanopyColumnar,
			CanopyLayers:    1,
			HasFronds:       true,
			HasCoconuts:     true,
		},
		{
			Name:            "fern_tree",
			HeightMin:       6,
			HeightMax:       10,
			TrunkWidthRatio: 0.04,
			BranchCountMin:  2,
			BranchCountMax:  4,
			CanopyShape:     CanopyColumnar,
			CanopyLayers:    1,
			HasFronds:       true,
		},
		{
			Name:             "mangrove",
			HeightMin:        8,
			HeightMax:        14,
			TrunkWidthRatio:  0.045,
			BranchCountMin:   3,
			BranchCountMax:   6,
			CanopyShape:      CanopyRound,
			CanopyLayers:     1,
			HasButtressRoots: true,
			HasMoss:          true,
		},
		{
			Name:            "mountain_pine",
			HeightMin:       16,
			HeightMax:       28,
			TrunkWidthRatio: 0.028,
			BranchCountMin:  4,
			BranchCountMax:  6,
			CanopyShape:     CanopyConical,
			CanopyLayers:    4,
		},
		{
			Name:            "dead_oak",
			HeightMin:       12,
			HeightMax:       20,
			TrunkWidthRatio: 0.04,
			BranchCountMin:  4,
			BranchCountMax:  7,
			CanopyShape:     CanopyRound,
			IsDead:          true,
		},
		{
			Name:            "charred_pine",
			HeightMin:       10,
			HeightMax:       18,
			TrunkWidthRatio: 0.03,
			BranchCountMin:  3,
			BranchCountMax:  5,
			CanopyShape:     CanopyConical,
			IsDead:          true,
			HasEmbers:       true,
		},
	}

	table := make(map[string]TreeTypeProfile, len(profiles))
	for _, p := range profiles {
		table[p.Name] = p
	}
	return table
}

// fallbackProfile is used when an unknown tree type id is requested;
// generation degrades to a plain round-canopy tree rather than failing.
var fallbackProfile = TreeTypeProfile{
	Name:            "broadleaf",
	HeightMin:       12,
	HeightMax:       20,
	TrunkWidthRatio: 0.035,
	BranchCountMin:  3,
	BranchCountMax:  6,
	CanopyShape:     CanopyRound,
	CanopyLayers:    1,
}
