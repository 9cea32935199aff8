package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/entity"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/shared/types"
)

// nopConsole satisfies ConsoleInterface without producing output.
type nopConsole struct{}

func (nopConsole) Print(a ...interface{})                      {}
func (nopConsole) Printf(format string, a ...interface{})      {}
func (nopConsole) Println(a ...interface{})                    {}
func (nopConsole) LogInfo(format string, a ...interface{})     {}
func (nopConsole) LogWarning(format string, a ...interface{})  {}
func (nopConsole) LogError(format string, a ...interface{})    {}
func (nopConsole) LogSuccess(format string, a ...interface{})  {}
func (nopConsole) Status(message string) types.StatusHandle    { return nopHandle{} }
func (nopConsole) ProgressWithTotal(title string, total int) types.ProgressHandle {
	return nopHandle{}
}
func (nopConsole) CreateTable() types.TableInterface { return nil }

type nopHandle struct{}

func (nopHandle) Update(message string) {}
func (nopHandle) Increment()            {}
func (nopHandle) Stop()                 {}

// fakeStore is an in-memory RecordStore keyed the way Notion pages are.
type fakeStore struct {
	pages     map[string][]storedRecord // databaseID -> pages in insertion order
	nextID    int
	queryErr  error
	createErr error
	updateErr error

	creates int
	updates int
	queries int
}

type storedRecord struct {
	id  string
	rec entity.UsageRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: make(map[string][]storedRecord)}
}

func (s *fakeStore) DatabaseExists(ctx context.Context, databaseID string) (bool, error) {
	return true, nil
}

func (s *fakeStore) QueryByDate(ctx context.Context, databaseID, date string) ([]entity.StoredPage, error) {
	s.queries++
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []entity.StoredPage
	for _, p := range s.pages[databaseID] {
		if p.rec.Date != date {
			continue
		}
		cost := p.rec.Cost
		out = append(out, entity.StoredPage{
			ID:         p.id,
			Model:      p.rec.Model,
			AuthMethod: p.rec.AuthMethod,
			Time:       p.rec.Time,
			Cost:       &cost,
		})
	}
	return out, nil
}

func (s *fakeStore) CreatePage(ctx context.Context, databaseID string, rec entity.UsageRecord) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.creates++
	s.nextID++
	id := fmt.Sprintf("page-%d", s.nextID)
	s.pages[databaseID] = append(s.pages[databaseID], storedRecord{id: id, rec: rec})
	return id, nil
}

func (s *fakeStore) UpdatePage(ctx context.Context, pageID string, rec entity.UsageRecord, timeOnly bool) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	for db, pages := range s.pages {
		for i, p := range pages {
			if p.id != pageID {
				continue
			}
			if timeOnly {
				p.rec.Time = rec.Time
			} else {
				p.rec.Requests = rec.Requests
				p.rec.Quantity = rec.Quantity
				p.rec.Cost = rec.Cost
				p.rec.UnitPrice = rec.UnitPrice
				if rec.Time != "" {
					p.rec.Time = rec.Time
				}
			}
			s.pages[db][i] = p
			return nil
		}
	}
	return errors.New("page not found")
}

func testRecords(n int) []entity.UsageRecord {
	recs := make([]entity.UsageRecord, n)
	for i := range recs {
		recs[i] = entity.UsageRecord{
			Date:       "2024-03-05",
			Model:      fmt.Sprintf("model-%d", i),
			Requests:   10,
			Quantity:   10,
			Cost:       float64(i) + 0.5,
			UnitPrice:  0.05,
			AuthMethod: "k1",
		}
	}
	return recs
}

func TestSaveRecordsIdempotent(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	ctx := context.Background()
	records := testRecords(3)

	first := r.SaveRecords(ctx, "db", records, false)
	if first.Created != 3 || first.Updated != 0 || first.Skipped != 0 {
		t.Fatalf("first run = %+v, want 3 created", first)
	}

	second := r.SaveRecords(ctx, "db", records, false)
	if second.Created != 0 || second.Updated != 0 || second.Skipped != 3 {
		t.Fatalf("second run = %+v, want 3 skipped", second)
	}
}

func TestDuplicateWithinSameRunIsSeen(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	rec := testRecords(1)[0]

	stats := r.SaveRecords(context.Background(), "db", []entity.UsageRecord{rec, rec}, false)
	if stats.Created != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want the second copy to see the first one's page", stats)
	}
}

func TestTimeBackfill(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	ctx := context.Background()

	rec := testRecords(1)[0]
	if got := r.SaveRecords(ctx, "db", []entity.UsageRecord{rec}, false); got.Created != 1 {
		t.Fatalf("setup create failed: %+v", got)
	}

	// Same key, now carrying a time-of-day and changed usage numbers.
	withTime := rec
	withTime.Time = "14:00:00"
	withTime.Requests = 999

	stats := r.SaveRecords(ctx, "db", []entity.UsageRecord{withTime}, false)
	if stats.Updated != 1 || stats.Created != 0 {
		t.Fatalf("stats = %+v, want exactly one update and no create", stats)
	}

	page := store.pages["db"][0].rec
	if page.Time != "14:00:00" {
		t.Errorf("Time = %q, want backfilled 14:00:00", page.Time)
	}
	if page.Requests != 10 {
		t.Errorf("Requests = %v, want untouched 10 (time-only backfill)", page.Requests)
	}
}

func TestDifferingTimeIsDistinctRecord(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	ctx := context.Background()

	rec := testRecords(1)[0]
	rec.Time = "14:00:00"
	r.SaveRecords(ctx, "db", []entity.UsageRecord{rec}, false)

	other := rec
	other.Time = "15:00:00"
	stats := r.SaveRecords(ctx, "db", []entity.UsageRecord{other}, false)
	if stats.Created != 1 {
		t.Fatalf("stats = %+v, want a new page for the differing time", stats)
	}
}

func TestDifferingCostIsDistinctRecord(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	ctx := context.Background()

	rec := testRecords(1)[0]
	r.SaveRecords(ctx, "db", []entity.UsageRecord{rec}, false)

	changed := rec
	changed.Cost += 0.01
	stats := r.SaveRecords(ctx, "db", []entity.UsageRecord{changed}, false)
	if stats.Created != 1 {
		t.Fatalf("stats = %+v, want a cost change to create a distinct page", stats)
	}

	// Within the tolerance the page still matches.
	close := rec
	close.Cost += 0.00005
	stats = r.SaveRecords(ctx, "db", []entity.UsageRecord{close}, false)
	if stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want a near-equal cost to match", stats)
	}
}

func TestUpdateExistingMode(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})
	ctx := context.Background()

	rec := testRecords(1)[0]
	r.SaveRecords(ctx, "db", []entity.UsageRecord{rec}, false)

	rec.Requests = 42
	stats := r.SaveRecords(ctx, "db", []entity.UsageRecord{rec}, true)
	if stats.Updated != 1 {
		t.Fatalf("stats = %+v, want full update", stats)
	}
	if got := store.pages["db"][0].rec.Requests; got != 42 {
		t.Errorf("Requests = %v, want 42 after full update", got)
	}
}

func TestStoreFailuresAreSkippedNotFatal(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errors.New("boom")
	r := NewReconciler(store, nopConsole{})

	stats := r.SaveRecords(context.Background(), "db", testRecords(2), false)
	if stats.Skipped != 2 || stats.Created != 0 {
		t.Fatalf("stats = %+v, want both records skipped after query failures", stats)
	}

	store.queryErr = nil
	store.createErr = errors.New("create failed")
	stats = r.SaveRecords(context.Background(), "db", testRecords(1), false)
	if stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want create failure counted as skipped", stats)
	}
}

func TestRecordMissingKeyFieldsSkipped(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store, nopConsole{})

	stats := r.SaveRecords(context.Background(), "db", []entity.UsageRecord{
		{Model: "m"}, {Date: "2024-03-05"},
	}, false)
	if stats.Skipped != 2 {
		t.Fatalf("stats = %+v, want records without date or model skipped", stats)
	}
	if store.queries != 0 {
		t.Errorf("no store query should be issued for unkeyable records")
	}
}
