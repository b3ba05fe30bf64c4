package voice

import "math/rand"

// CollectionMode selects how Scheduler.Next picks the next item.
type CollectionMode int

const (
	Random CollectionMode = iota
	Sequence
)

// schedulerState is per-scope scheduling state: one world-scoped
// scheduler lives on the Collection itself, plus a map of entity-scoped
// schedulers created on demand the first time that scope plays.
type schedulerState struct {
	seqIndex  int
	reverse   bool
}

// Collection is a scheduled set of item ids, either Random (uniform,
// optionally skipping a don't-repeat set) or Sequence (cyclic index per
// scope with an optional reverse-on-boundary flag).
type Collection struct {
	Mode           CollectionMode
	Items          []uint64
	ReverseOnBoundary bool

	world    *schedulerState
	byEntity map[uint64]*schedulerState

	rng *rand.Rand
}

// NewCollection constructs a collection over items in the given mode.
func NewCollection(mode CollectionMode, items []uint64, reverseOnBoundary bool) *Collection {
	return &Collection{
		Mode: mode, Items: items, ReverseOnBoundary: reverseOnBoundary,
		world:    &schedulerState{},
		byEntity: make(map[uint64]*schedulerState),
		rng:      rand.New(rand.NewSource(1)),
	}
}

func (c *Collection) scopeState(entityID uint64, entityScoped bool) *schedulerState {
	if !entityScoped {
		return c.world
	}
	st, ok := c.byEntity[entityID]
	if !ok {
		st = &schedulerState{}
		c.byEntity[entityID] = st
	}
	return st
}

// Next selects the next item id for the given scope. dontRepeat is only
// consulted in Random mode.
func (c *Collection) Next(entityID uint64, entityScoped bool, dontRepeat map[uint64]struct{}) uint64 {
	if len(c.Items) == 0 {
		return 0
	}
	switch c.Mode {
	case Random:
		return c.nextRandom(dontRepeat)
	default:
		return c.nextSequence(c.scopeState(entityID, entityScoped))
	}
}

func (c *Collection) nextRandom(dontRepeat map[uint64]struct{}) uint64 {
	candidates := c.Items
	if len(dontRepeat) > 0 && len(dontRepeat) < len(c.Items) {
		filtered := make([]uint64, 0, len(c.Items))
		for _, id := range c.Items {
			if _, skip := dontRepeat[id]; !skip {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	return candidates[c.rng.Intn(len(candidates))]
}

func (c *Collection) nextSequence(st *schedulerState) uint64 {
	n := len(c.Items)
	idx := st.seqIndex
	item := c.Items[idx]

	if st.reverse {
		st.seqIndex--
		if st.seqIndex < 0 {
			if c.ReverseOnBoundary {
				st.seqIndex = 1
				st.reverse = false
			} else {
				st.seqIndex = n - 1
			}
		}
	} else {
		st.seqIndex++
		if st.seqIndex >= n {
			if c.ReverseOnBoundary {
				st.seqIndex = n - 2
				if st.seqIndex < 0 {
					st.seqIndex = 0
				}
				st.reverse = true
			} else {
				st.seqIndex = 0
			}
		}
	}
	return item
}

// ResetScope clears a single entity scope's scheduler state, e.g. when
// the bound entity is destroyed.
func (c *Collection) ResetScope(entityID uint64) {
	delete(c.byEntity, entityID)
}
