package relief

import (
	"sync"

	"relief-go/internal/model"
)

// Check inspects a record before it is written. prev is nil on create.
// A non-nil error rejects the write.
type Check[T any] func(next, prev *T) error

// Repository is the typed accessor for one entity collection. Every call
// reads or rewrites the whole collection through the Layer.
//
// Mutations are serialized within the process. Repositories do not cascade;
// cross-collection rules live in Registry and are attached as checks.
type Repository[T any, P interface {
	*T
	model.Record
}] struct {
	key    string
	layer  *Layer
	clock  Clock
	idgen  IDGenerator
	checks []Check[T]
	mu     sync.Mutex
}

// NewRepository creates a repository for the collection stored under key.
func NewRepository[T any, P interface {
	*T
	model.Record
}](key string, layer *Layer, clock Clock, idgen IDGenerator, checks ...Check[T]) *Repository[T, P] {
	return &Repository[T, P]{
		key:    key,
		layer:  layer,
		clock:  clock,
		idgen:  idgen,
		checks: checks,
	}
}

// Key returns the store key of the collection.
func (r *Repository[T, P]) Key() string { return r.key }

func (r *Repository[T, P]) addCheck(c Check[T]) {
	r.checks = append(r.checks, c)
}

// List returns a snapshot of every record in insertion order.
func (r *Repository[T, P]) List() []T {
	return Read(r.layer, r.key, []T{})
}

// Load is List for callers that must not act on a collection they could not
// read. A backend failure yields a *ReadError.
func (r *Repository[T, P]) Load() ([]T, error) {
	return Load(r.layer, r.key, []T{})
}

// Get returns the record with the given id.
func (r *Repository[T, P]) Get(id string) (T, bool) {
	return r.Find(func(item *T) bool { return P(item).RecordID() == id })
}

// Find returns the first record matching pred.
func (r *Repository[T, P]) Find(pred func(*T) bool) (T, bool) {
	items := r.List()
	for i := range items {
		if pred(&items[i]) {
			return items[i], true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every record matching pred.
func (r *Repository[T, P]) Filter(pred func(*T) bool) []T {
	var out []T
	items := r.List()
	for i := range items {
		if pred(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// Count returns the number of records matching pred.
func (r *Repository[T, P]) Count(pred func(*T) bool) int {
	n := 0
	items := r.List()
	for i := range items {
		if pred(&items[i]) {
			n++
		}
	}
	return n
}

// Create stores fields as a new record with a fresh identifier and
// timestamps. Identifier and timestamp values in fields are ignored.
// On a *PersistenceError the returned record is still live in memory.
func (r *Repository[T, P]) Create(fields T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	items, err := r.Load()
	if err != nil {
		return zero, err
	}

	rec := fields
	now := r.clock.Now()
	P(&rec).Stamp(r.idgen.New(), now, now)

	if err := r.check(&rec, nil); err != nil {
		return zero, err
	}

	items = append(items, rec)
	return rec, r.layer.Write(r.key, items)
}

// Update applies mutate to the record with the given id. It is a no-op
// returning found=false if no such record exists. The identifier and
// creation time survive mutate; the update time is refreshed.
func (r *Repository[T, P]) Update(id string, mutate func(*T)) (rec T, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.Load()
	if err != nil {
		return rec, false, err
	}
	idx := indexOf[T, P](items, id)
	if idx < 0 {
		return rec, false, nil
	}

	prev := items[idx]
	next := prev
	mutate(&next)
	P(&next).Stamp(P(&prev).RecordID(), P(&prev).Created(), r.clock.Now())

	if err := r.check(&next, &prev); err != nil {
		return rec, true, err
	}

	items[idx] = next
	return next, true, r.layer.Write(r.key, items)
}

// Remove deletes the record with the given id. Dependents are not touched.
func (r *Repository[T, P]) Remove(id string) (bool, error) {
	n, err := r.RemoveWhere(func(item *T) bool { return P(item).RecordID() == id })
	return n > 0, err
}

// RemoveWhere deletes every record matching pred and returns how many went.
func (r *Repository[T, P]) RemoveWhere(pred func(*T) bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.Load()
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	for i := range items {
		if !pred(&items[i]) {
			kept = append(kept, items[i])
		}
	}
	removed := len(items) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.layer.Write(r.key, kept)
}

// rewrite applies fn to every record in place, skipping checks. fn reports
// whether it changed the record; the collection is written only if one did.
func (r *Repository[T, P]) rewrite(fn func(*T) bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.Load()
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range items {
		if fn(&items[i]) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, r.layer.Write(r.key, items)
}

func (r *Repository[T, P]) check(next, prev *T) error {
	for _, c := range r.checks {
		if err := c(next, prev); err != nil {
			return err
		}
	}
	return nil
}

func indexOf[T any, P interface {
	*T
	model.Record
}](items []T, id string) int {
	for i := range items {
		if P(&items[i]).RecordID() == id {
			return i
		}
	}
	return -1
}
