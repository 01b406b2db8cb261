package agent

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// milestoneLadder is the fixed set of cumulative water-savings tiers,
// in liters. A user's custom threshold from preferences is considered
// alongside these.
var milestoneLadder = []float64{1000, 5000, 10000, 25000}

type milestoneKey struct {
	fieldID uuid.UUID
	tier    float64
}

// MilestoneTracker remembers which savings tiers each field has already
// been congratulated for, so a milestone alert fires once per tier.
// State is process local and resets on restart, which at worst repeats
// a congratulation.
type MilestoneTracker struct {
	mu    sync.Mutex
	fired map[milestoneKey]bool
}

// NewMilestoneTracker builds an empty tracker.
func NewMilestoneTracker() *MilestoneTracker {
	return &MilestoneTracker{fired: map[milestoneKey]bool{}}
}

// Crossed reports the highest tier that savedLiters has newly crossed
// for the field, marking it fired. Lower tiers crossed in the same call
// are marked too so they never fire later.
func (m *MilestoneTracker) Crossed(fieldID uuid.UUID, savedLiters, customTier float64) (float64, bool) {
	tiers := append([]float64(nil), milestoneLadder...)
	if customTier > 0 {
		tiers = append(tiers, customTier)
	}
	sort.Float64s(tiers)

	m.mu.Lock()
	defer m.mu.Unlock()

	best := 0.0
	for _, tier := range tiers {
		if savedLiters < tier {
			break
		}
		key := milestoneKey{fieldID: fieldID, tier: tier}
		if m.fired[key] {
			continue
		}
		m.fired[key] = true
		best = tier
	}
	return best, best > 0
}
