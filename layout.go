package pipecache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// LayoutCache deduplicates bind group layouts by the structural
// signature of their entries. Two entry lists that declare the same
// bindings, types, minimum sizes, and dimensions share one device
// layout regardless of entry order or names.
//
// Thread Safety: same double-checked locking discipline as Cache.
// Creation runs outside the lock; one insertion wins a race.
type LayoutCache struct {
	device Device

	mu      sync.RWMutex
	layouts map[string]BindGroupLayoutID

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewLayoutCache creates an empty layout cache backed by the device.
func NewLayoutCache(device Device) (*LayoutCache, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &LayoutCache{
		device:  device,
		layouts: make(map[string]BindGroupLayoutID),
	}, nil
}

// GetOrCreate returns the cached layout for the entry list, creating
// it on the device on a miss. Failures are not cached.
func (lc *LayoutCache) GetOrCreate(entries []BindingLayoutEntry, label string) (BindGroupLayoutID, error) {
	signature := layoutSignature(entries)

	lc.mu.RLock()
	if id, ok := lc.layouts[signature]; ok {
		lc.mu.RUnlock()
		lc.hits.Add(1)
		return id, nil
	}
	lc.mu.RUnlock()

	id, err := lc.device.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return InvalidID, wrapf(ErrBindGroupLayoutCreation, label, err)
	}

	lc.misses.Add(1)

	lc.mu.Lock()
	if winner, ok := lc.layouts[signature]; ok {
		lc.mu.Unlock()
		return winner, nil
	}
	lc.layouts[signature] = id
	lc.mu.Unlock()

	Logger().Debug("bind group layout created",
		"label", label,
		"entries", len(entries))

	return id, nil
}

// Stats returns the hit and miss counters.
func (lc *LayoutCache) Stats() (hits, misses uint64) {
	return lc.hits.Load(), lc.misses.Load()
}

// Size returns the number of cached layouts.
func (lc *LayoutCache) Size() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.layouts)
}

// Clear removes all cached layouts and resets statistics. The device
// layouts themselves are not destroyed.
func (lc *LayoutCache) Clear() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.layouts = make(map[string]BindGroupLayoutID)
	lc.hits.Store(0)
	lc.misses.Store(0)
}

// layoutSignature derives a stable structural key for an entry list.
// Names and groups are excluded: only binding-visible structure counts.
func layoutSignature(entries []BindingLayoutEntry) string {
	sorted := make([]BindingLayoutEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Binding < sorted[j].Binding
	})

	var b strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&b, "%d:%d:%d:%d;", e.Binding, uint32(e.Type), e.MinBindingSize, uint32(e.Dimension))
	}
	return b.String()
}
