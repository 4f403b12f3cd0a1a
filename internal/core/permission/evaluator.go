package permission

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

const defaultCacheSize = 1024

// Evaluator answers the same questions as the package functions but memoizes
// the derived feature set per identity. Identities are replaced wholesale on
// every fetch, so the pointer is a sufficient cache key.
type Evaluator struct {
	cache *lru.Cache[*domain.Identity, Set]
}

// NewEvaluator returns an Evaluator holding up to size identities.
// If size <= 0, defaultCacheSize is used.
func NewEvaluator(size int) (*Evaluator, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[*domain.Identity, Set](size)
	if err != nil {
		return nil, fmt.Errorf("permission cache: %w", err)
	}
	return &Evaluator{cache: cache}, nil
}

// Permissions returns the memoized feature set of u. Callers must not modify it.
func (e *Evaluator) Permissions(u *domain.Identity) Set {
	if u == nil {
		return Set{}
	}
	if set, ok := e.cache.Get(u); ok {
		return set
	}
	set := AllPermissions(u)
	e.cache.Add(u, set)
	return set
}

func (e *Evaluator) HasPermission(u *domain.Identity, f domain.Feature) bool {
	return e.Permissions(u).Has(f)
}

func (e *Evaluator) HasAllPermissions(u *domain.Identity, required []domain.Feature) bool {
	return hasAll(e.Permissions(u), required)
}

func (e *Evaluator) HasAnyPermission(u *domain.Identity, required []domain.Feature) bool {
	return hasAny(e.Permissions(u), required)
}

// InvalidateRole drops the memoized sets of every identity holding roleID.
// Returns the number of entries removed.
func (e *Evaluator) InvalidateRole(roleID int64) int {
	removed := 0
	for _, u := range e.cache.Keys() {
		if u.HoldsRole(roleID) {
			if e.cache.Remove(u) {
				removed++
			}
		}
	}
	return removed
}

// Forget drops the memoized set of a single identity.
func (e *Evaluator) Forget(u *domain.Identity) {
	if u != nil {
		e.cache.Remove(u)
	}
}

// Purge empties the cache.
func (e *Evaluator) Purge() {
	e.cache.Purge()
}

// Len returns the number of memoized identities.
func (e *Evaluator) Len() int {
	return e.cache.Len()
}
