// Public domain.

// Package memo provides a scoped memoization cache for the calibration
// pipeline.
//
// Entries are keyed by a function identity plus its float64 arguments,
// compared by value: two calls with numerically identical arguments are
// guaranteed the same entry regardless of how the values were produced.
// Invalidation is wholesale per scope.  There is no eviction; an entry
// never expires while its scope is live.
package memo

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Scope names used by the pipeline.  Clear accepts any scope name;
// ScopeAll clears every table.
const (
	ScopeAirmass      = "airmass"
	ScopeAtmosphere   = "atmosphere"
	ScopeInstrumental = "instrumental"
	ScopeAll          = "all"
)

type entry struct {
	raw    string // full key bytes, checked on fingerprint hits
	scalar float64
	vec    []float64
}

// Cache is a scoped read-through memoization table.  It is safe for
// concurrent use: a lost insert race only causes redundant recomputation,
// never a wrong value, because both racers store a value derived from the
// same key.
type Cache struct {
	mu     sync.RWMutex
	scopes map[string]map[uint64]entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{scopes: make(map[string]map[uint64]entry)}
}

// key builds the fingerprint and the raw key bytes for fnID and args.
// Negative zero is normalized so +0 and -0 share an entry.
func key(fnID string, args []float64) (uint64, string) {
	raw := make([]byte, 0, len(fnID)+1+9*len(args))
	raw = append(raw, fnID...)
	raw = append(raw, 0)
	var b [8]byte
	for _, a := range args {
		if a == 0 {
			a = 0 // normalize -0
		}
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(a))
		raw = append(raw, b[:]...)
		raw = append(raw, 0)
	}
	return xxhash.Sum64(raw), string(raw)
}

func (c *Cache) lookup(scope string, fp uint64, raw string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tab, ok := c.scopes[scope]
	if !ok {
		return entry{}, false
	}
	e, ok := tab[fp]
	if !ok || e.raw != raw {
		// a fingerprint collision with different key bytes is a miss
		return entry{}, false
	}
	return e, true
}

func (c *Cache) store(scope string, fp uint64, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tab, ok := c.scopes[scope]
	if !ok {
		tab = make(map[uint64]entry)
		c.scopes[scope] = tab
	}
	tab[fp] = e
}

// Get returns the cached scalar for (fnID, args) in scope.
// A miss is never an error; the caller recomputes and calls Put.
func (c *Cache) Get(scope, fnID string, args ...float64) (float64, bool) {
	fp, raw := key(fnID, args)
	e, ok := c.lookup(scope, fp, raw)
	if !ok || e.vec != nil {
		return 0, false
	}
	return e.scalar, true
}

// Put stores a scalar value for (fnID, args) in scope.
func (c *Cache) Put(scope, fnID string, args []float64, v float64) {
	fp, raw := key(fnID, args)
	c.store(scope, fp, entry{raw: raw, scalar: v})
}

// GetVec returns the cached curve for (fnID, args) in scope.  The returned
// slice is shared; callers must not modify it.
func (c *Cache) GetVec(scope, fnID string, args ...float64) ([]float64, bool) {
	fp, raw := key(fnID, args)
	e, ok := c.lookup(scope, fp, raw)
	if !ok || e.vec == nil {
		return nil, false
	}
	return e.vec, true
}

// PutVec stores a copy of curve for (fnID, args) in scope.
func (c *Cache) PutVec(scope, fnID string, args []float64, curve []float64) {
	fp, raw := key(fnID, args)
	v := make([]float64, len(curve))
	copy(v, curve)
	c.store(scope, fp, entry{raw: raw, vec: v})
}

// Clear drops every entry in scope.  ScopeAll drops every scope.
// Invalidation is all-or-nothing per scope; there is no partial eviction.
func (c *Cache) Clear(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scope == ScopeAll {
		c.scopes = make(map[string]map[uint64]entry)
		return
	}
	delete(c.scopes, scope)
}

// Len reports the number of entries in scope.
func (c *Cache) Len(scope string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scopes[scope])
}
