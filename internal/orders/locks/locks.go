package locks

import (
	"hash/fnv"
	"sort"
	"sync"
)

const stripeCount = 64

// Keyed serializes logical operations that touch the same orders or
// products. The order and product stores have no transaction spanning
// them, so a single mutation (create, update, cancel, delete) acquires
// every key it will write before touching either store. Keys hash onto
// a fixed set of stripes; stripes are always locked in index order, so
// overlapping acquisitions cannot deadlock. Each operation must acquire
// all of its keys in one call.
type Keyed struct {
	stripes [stripeCount]sync.Mutex
}

// NewKeyed constructs the lock set.
func NewKeyed() *Keyed {
	return &Keyed{}
}

// Lock acquires the stripes covering the given keys and returns the
// release function. Duplicate keys and stripe collisions are collapsed.
func (k *Keyed) Lock(keys ...string) (unlock func()) {
	if len(keys) == 0 {
		return func() {}
	}

	seen := make(map[int]struct{}, len(keys))
	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		idx := stripeFor(key)
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		k.stripes[idx].Lock()
	}

	return func() {
		for i := len(indices) - 1; i >= 0; i-- {
			k.stripes[indices[i]].Unlock()
		}
	}
}

func stripeFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % stripeCount)
}

// OrderKey names the lock covering one order aggregate.
func OrderKey(id string) string {
	return "order:" + id
}

// ProductKey names the lock covering one product's quantity counter.
func ProductKey(id string) string {
	return "product:" + id
}

// ProductKeys maps a set of product ids to their lock keys.
func ProductKeys(ids []string) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ProductKey(id))
	}
	return keys
}
