package slot

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kasuganosora/slotgrid/game/item"
	"go.uber.org/zap"
)

// ErrDuplicateSlotID is returned when a different slot tries to register an ID
// that is already taken.
var ErrDuplicateSlotID = errors.New("slot: duplicate slot id")

// Registry holds every known slot in registration order.
type Registry struct {
	mu     sync.RWMutex
	slots  []*Slot
	byID   map[ID]*Slot
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		byID:   make(map[ID]*Slot),
		logger: logger,
	}
}

// Register adds s. Registering the same slot again only logs a warning.
func (r *Registry) Register(s *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[s.id]; ok {
		if existing == s {
			r.logger.Warn("slot registered multiple times", zap.String("slot", string(s.id)))
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateSlotID, s.id)
	}
	r.slots = append(r.slots, s)
	r.byID[s.id] = s
	return nil
}

// Lookup returns the slot with the given ID.
func (r *Registry) Lookup(id ID) (*Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// All returns the slots in registration order.
func (r *Registry) All() []*Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// Len returns the number of registered slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// NearestSlots returns every slot ordered by squared distance to p.
// Equal distances keep registration order.
func (r *Registry) NearestSlots(p mgl32.Vec3) []*Slot {
	out := r.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].distSqr(p) < out[j].distSqr(p)
	})
	return out
}

// Closest returns the single nearest slot to p, the earliest registered on ties.
func (r *Registry) Closest(p mgl32.Vec3) (*Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var closest *Slot
	var best float32
	for _, s := range r.slots {
		d := s.distSqr(p)
		if closest == nil || d < best {
			closest, best = s, d
		}
	}
	return closest, closest != nil
}

// SlotWithStack returns the slot currently holding st.
func (r *Registry) SlotWithStack(st *item.Stack) (*Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.slots {
		if s.Holds(st) {
			return s, true
		}
	}
	return nil, false
}

// FirstEmpty returns the earliest registered empty slot.
func (r *Registry) FirstEmpty() (*Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.slots {
		if s.Empty() {
			return s, true
		}
	}
	return nil, false
}
