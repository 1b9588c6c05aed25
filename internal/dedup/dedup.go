package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khanhvu/jobradar/internal/domain"
)

// Decision is the outcome of deduplicating one normalized listing.
type Decision string

const (
	DecisionNew       Decision = "new"
	DecisionUpdated   Decision = "updated"
	DecisionUnchanged Decision = "unchanged"
	DecisionDuplicate Decision = "duplicate"
)

// ListingStore is the persistence port the deduplicator reads and writes
// through. FindByIdentity returns (nil, nil) when no listing exists for the
// identity; Upsert must be atomic per identity.
type ListingStore interface {
	FindByIdentity(ctx context.Context, identityHash string) (*domain.Listing, error)
	Upsert(ctx context.Context, listing *domain.Listing) error
}

// StoreError reports a persistence failure, as opposed to a problem with the
// listing itself. Callers treat it as the store being unavailable: the
// listing was not persisted and further writes are unlikely to fare better.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("listing store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Deduper decides whether a normalized listing is new, an update, unchanged,
// or a within-run duplicate. One Deduper instance is scoped to a single run:
// the seen set that catches pagination overlap resets with the run.
type Deduper struct {
	store ListingStore
	now   func() time.Time

	mu   sync.Mutex
	seen map[string]struct{}
	// locks serializes decisions per identity so two adapters discovering the
	// same posting concurrently cannot both persist it as new.
	locks sync.Map // identityHash -> *sync.Mutex
}

// New creates a Deduper for a single run.
func New(store ListingStore) *Deduper {
	return &Deduper{
		store: store,
		now:   time.Now,
		seen:  make(map[string]struct{}),
	}
}

// SetClock overrides the time source. Test use only.
func (d *Deduper) SetClock(now func() time.Time) {
	d.now = now
}

// Apply resolves the listing's identity and applies the decision table.
// The listing is mutated with identity, ID, and seen timestamps as persisted.
// Correct regardless of source interleaving: only identity matters, never
// arrival order.
func (d *Deduper) Apply(ctx context.Context, listing *domain.Listing) (Decision, error) {
	identity := domain.ComputeIdentity(
		listing.Source, listing.ExternalID, listing.URL, listing.Title, companyName(listing))
	listing.IdentityHash = identity

	// Same identity observed earlier in this run (pagination overlap or a
	// second search query finding the same posting): count, don't persist.
	d.mu.Lock()
	if _, dup := d.seen[identity]; dup {
		d.mu.Unlock()
		return DecisionDuplicate, nil
	}
	d.seen[identity] = struct{}{}
	d.mu.Unlock()

	lock := d.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()

	existing, err := d.store.FindByIdentity(ctx, identity)
	if err != nil {
		return "", &StoreError{Op: "find by identity", Err: err}
	}

	now := d.now()
	listing.LastSeenAt = now

	if existing == nil {
		listing.ID = uuid.New().String()
		listing.FirstSeenAt = now
		if err := d.store.Upsert(ctx, listing); err != nil {
			return "", &StoreError{Op: "persist new listing", Err: err}
		}
		return DecisionNew, nil
	}

	// Carry identity-stable bookkeeping forward from the stored row.
	listing.ID = existing.ID
	listing.FirstSeenAt = existing.FirstSeenAt
	if listing.PostedInferred && existing.PostedDate != nil {
		// An inferred "now" date must not overwrite a real one, nor count as
		// a content change on every run.
		listing.PostedDate = existing.PostedDate
		listing.PostedInferred = existing.PostedInferred
	}

	if existing.ContentEquals(listing) {
		existing.LastSeenAt = now
		if err := d.store.Upsert(ctx, existing); err != nil {
			return "", &StoreError{Op: "refresh last_seen", Err: err}
		}
		return DecisionUnchanged, nil
	}

	if err := d.store.Upsert(ctx, listing); err != nil {
		return "", &StoreError{Op: "persist updated listing", Err: err}
	}
	return DecisionUpdated, nil
}

func (d *Deduper) identityLock(identity string) *sync.Mutex {
	v, _ := d.locks.LoadOrStore(identity, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func companyName(l *domain.Listing) string {
	if l.Company != nil {
		return l.Company.Name
	}
	return ""
}
