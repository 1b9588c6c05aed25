package dedup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/khanhvu/jobradar/internal/domain"
)

// memStore is an in-memory ListingStore keyed by identity hash.
type memStore struct {
	mu         sync.Mutex
	rows       map[string]domain.Listing
	failFind   error
	failUpsert error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]domain.Listing)}
}

func (s *memStore) FindByIdentity(_ context.Context, identityHash string) (*domain.Listing, error) {
	if s.failFind != nil {
		return nil, s.failFind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[identityHash]
	if !ok {
		return nil, nil
	}
	copied := row
	return &copied, nil
}

func (s *memStore) Upsert(_ context.Context, listing *domain.Listing) error {
	if s.failUpsert != nil {
		return s.failUpsert
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[listing.IdentityHash] = *listing
	return nil
}

func testListing(title string) *domain.Listing {
	return &domain.Listing{
		Source:     "indeed",
		ExternalID: "jk-1",
		Title:      title,
		URL:        "https://vn.indeed.com/viewjob?jk=jk-1",
		IsActive:   true,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestApplyDecisionTable(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	store := newMemStore()

	// First run: unseen identity persists as new.
	run1 := New(store)
	run1.SetClock(fixedClock(t0))
	decision, err := run1.Apply(context.Background(), testListing("A"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if decision != DecisionNew {
		t.Fatalf("decision = %q, want new", decision)
	}
	if len(store.rows) != 1 {
		t.Fatalf("store has %d rows, want 1", len(store.rows))
	}
	for _, row := range store.rows {
		if !row.FirstSeenAt.Equal(t0) || !row.LastSeenAt.Equal(t0) {
			t.Errorf("first/last seen = %v/%v, want both %v", row.FirstSeenAt, row.LastSeenAt, t0)
		}
	}

	// Second run, changed title: updated, title persisted, first_seen kept.
	run2 := New(store)
	run2.SetClock(fixedClock(t1))
	decision, err = run2.Apply(context.Background(), testListing("B"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if decision != DecisionUpdated {
		t.Fatalf("decision = %q, want updated", decision)
	}
	for _, row := range store.rows {
		if row.Title != "B" {
			t.Errorf("persisted title = %q, want B", row.Title)
		}
		if !row.FirstSeenAt.Equal(t0) {
			t.Errorf("FirstSeenAt = %v, want preserved %v", row.FirstSeenAt, t0)
		}
		if !row.LastSeenAt.Equal(t1) {
			t.Errorf("LastSeenAt = %v, want %v", row.LastSeenAt, t1)
		}
	}

	// Third run, identical content: unchanged, only last_seen moves.
	t2 := t1.Add(time.Hour)
	run3 := New(store)
	run3.SetClock(fixedClock(t2))
	decision, err = run3.Apply(context.Background(), testListing("B"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if decision != DecisionUnchanged {
		t.Fatalf("decision = %q, want unchanged", decision)
	}
	for _, row := range store.rows {
		if !row.LastSeenAt.Equal(t2) {
			t.Errorf("LastSeenAt = %v, want refreshed %v", row.LastSeenAt, t2)
		}
	}
}

func TestApplySameRunDuplicate(t *testing.T) {
	store := newMemStore()
	d := New(store)

	first, err := d.Apply(context.Background(), testListing("A"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if first != DecisionNew {
		t.Fatalf("first decision = %q, want new", first)
	}

	// Identical raw record re-ingested within the same run: exactly one
	// persisted row, second occurrence counted as duplicate.
	second, err := d.Apply(context.Background(), testListing("A"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if second != DecisionDuplicate {
		t.Fatalf("second decision = %q, want duplicate", second)
	}
	if len(store.rows) != 1 {
		t.Errorf("store has %d rows, want exactly 1", len(store.rows))
	}
}

func TestApplyWhitespaceCaseNoiseIsDuplicate(t *testing.T) {
	store := newMemStore()
	d := New(store)

	a := &domain.Listing{
		Source: "linkedin",
		Title:  "Digital Marketing Specialist",
		URL:    "https://linkedin.com/jobs/view/1",
	}
	b := &domain.Listing{
		Source: "linkedin",
		Title:  "digital   MARKETING specialist",
		URL:    "https://linkedin.com/jobs/view/1",
	}

	if decision, _ := d.Apply(context.Background(), a); decision != DecisionNew {
		t.Fatalf("first = %q, want new", decision)
	}
	decision, err := d.Apply(context.Background(), b)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if decision != DecisionDuplicate {
		t.Errorf("decision = %q, want duplicate despite case/whitespace noise", decision)
	}
}

func TestApplyInferredDateDoesNotForceUpdate(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	store := newMemStore()

	posted := t0.AddDate(0, 0, -3)
	first := testListing("A")
	first.PostedDate = &posted

	run1 := New(store)
	run1.SetClock(fixedClock(t0))
	if _, err := run1.Apply(context.Background(), first); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Next run the board hid the date, so the normalizer inferred "now".
	t1 := t0.Add(24 * time.Hour)
	second := testListing("A")
	inferredNow := t1
	second.PostedDate = &inferredNow
	second.PostedInferred = true

	run2 := New(store)
	run2.SetClock(fixedClock(t1))
	decision, err := run2.Apply(context.Background(), second)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if decision != DecisionUnchanged {
		t.Errorf("decision = %q, want unchanged when only an inferred date moved", decision)
	}
	for _, row := range store.rows {
		if row.PostedDate == nil || !row.PostedDate.Equal(posted) {
			t.Errorf("PostedDate = %v, want original %v preserved", row.PostedDate, posted)
		}
	}
}

func TestApplyStoreFailuresAreTyped(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*memStore)
	}{
		{"find fails", func(s *memStore) { s.failFind = errors.New("connection refused") }},
		{"upsert fails", func(s *memStore) { s.failUpsert = errors.New("database is locked") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			tc.setup(store)
			d := New(store)

			_, err := d.Apply(context.Background(), testListing("A"))
			if err == nil {
				t.Fatal("expected an error from the failing store")
			}
			var storeErr *StoreError
			if !errors.As(err, &storeErr) {
				t.Errorf("error %v is not a StoreError", err)
			}
		})
	}
}

func TestApplyConcurrentSameIdentity(t *testing.T) {
	store := newMemStore()
	d := New(store)

	const workers = 8
	decisions := make(chan Decision, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := d.Apply(context.Background(), testListing("A"))
			if err != nil {
				t.Errorf("Apply: %v", err)
				return
			}
			decisions <- decision
		}()
	}
	wg.Wait()
	close(decisions)

	newCount := 0
	for decision := range decisions {
		if decision == DecisionNew {
			newCount++
		}
	}
	if newCount != 1 {
		t.Errorf("got %d new decisions, want exactly 1", newCount)
	}
	if len(store.rows) != 1 {
		t.Errorf("store has %d rows, want 1", len(store.rows))
	}
}
