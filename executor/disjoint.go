package executor

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// debugScope threads the active Parallel node's field-ownership tracker
// and the index of the child currently executing through the recursive
// descent, so executeFetch can record which child wrote which field on
// which entity. It is nil whenever debug assertions are off or the
// current node isn't under a Parallel.
type debugScope struct {
	tracker  *fieldOwnership
	childIdx int
}

func (d *debugScope) claim(log *zap.Logger, entity ResultMap, field string) {
	d.tracker.claim(log, entity, field, d.childIdx)
}

// fieldOwnership records, for one Parallel node's execution, which child
// index first wrote each (entity, field) pair, and logs a warning if a
// different child later claims the same pair — a violation of the
// planner's disjoint-field-coverage contract (see plan interpreter design
// notes).
type fieldOwnership struct {
	mu    sync.Mutex
	owner map[uint64]int
}

func newFieldOwnership() *fieldOwnership {
	return &fieldOwnership{owner: make(map[uint64]int)}
}

func (f *fieldOwnership) claim(log *zap.Logger, entity ResultMap, field string, childIdx int) {
	key := ownershipKey(entity, field)

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, seen := f.owner[key]
	if !seen {
		f.owner[key] = childIdx
		return
	}
	if existing != childIdx {
		log.Warn("parallel plan children wrote the same field on the same entity",
			zap.String("field", field),
			zap.Int("firstChild", existing),
			zap.Int("secondChild", childIdx),
		)
	}
}

// ownershipKey hashes the entity's identity together with the field
// name. A pointer-keyed map would pin the entity in a way that defeats
// the point of a lightweight debug check, so this just hashes its
// formatted address.
func ownershipKey(entity ResultMap, field string) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%p|%s", entity, field)
	return h.Sum64()
}
