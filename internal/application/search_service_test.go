package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

func searchDirectory() []persistence.Employee {
	return []persistence.Employee{
		hanSolo(),
		{ID: 2, FirstName: "Hannah", LastName: "Solomon", Email: "hannah@example.com", Role: "Copilot"},
		{ID: 3, FirstName: "Ben", LastName: "Solo", Email: "ben@example.com", Role: "Apprentice"},
		{ID: 4, FirstName: "Leia", LastName: "Organa", Email: "leia@example.com", Role: "General"},
	}
}

func TestSearchService_RanksAndAttachesHistory(t *testing.T) {
	stores := newMemoryStores(t, searchDirectory()...)
	ctx := context.Background()

	day := time.Date(2024, time.March, 4, 9, 0, 0, 0, kioskLocation)
	var latestID int64
	for i := 0; i < 3; i++ {
		in := day.AddDate(0, 0, i)
		opened, err := stores.ledger.OpenShift(ctx, 11111111, latestID, in, in)
		if err != nil {
			t.Fatalf("OpenShift failed: %v", err)
		}
		latestID = opened.ID
		if i < 2 {
			if _, err := stores.ledger.CloseShift(ctx, 11111111, opened.ID, in.Add(7*time.Hour+30*time.Minute)); err != nil {
				t.Fatalf("CloseShift failed: %v", err)
			}
		}
	}

	svc := NewSearchService(stores.directory, stores.ledger, SearchOptions{Location: kioskLocation, HistoryLimit: 2}, quietLogger())

	matches, err := svc.Search(ctx, SearchParams{Query: "han solo", Field: "name"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Employee.ID != 11111111 || matches[0].Score != 4 {
		t.Fatalf("expected Han Solo first with score 4, got %+v", matches[0])
	}
	for _, m := range matches[1:] {
		if m.Score >= matches[0].Score {
			t.Errorf("partial match %d scored %d", m.Employee.ID, m.Score)
		}
	}

	shifts := matches[0].Shifts
	if len(shifts) != 2 {
		t.Fatalf("expected history limited to 2, got %d", len(shifts))
	}
	if !shifts[0].Open || shifts[0].ClockOut != OpenShiftPlaceholder || shifts[0].Duration != OpenShiftPlaceholder {
		t.Errorf("expected open placeholder first, got %+v", shifts[0])
	}
	if shifts[1].Duration != "7h 30m" || shifts[1].WorkDate != "2024-03-05" || shifts[1].ClockIn != "09:00 AM" {
		t.Errorf("unexpected closed summary %+v", shifts[1])
	}

	full, err := svc.Search(ctx, SearchParams{Query: "11111111", Field: "id", HistoryLimit: 10})
	if err != nil {
		t.Fatalf("Search by id failed: %v", err)
	}
	if len(full) != 1 || len(full[0].Shifts) != 3 || full[0].Score != 1 {
		t.Fatalf("expected id match with full history, got %+v", full)
	}
}

func TestSearchService_UnknownField(t *testing.T) {
	stores := newMemoryStores(t, searchDirectory()...)
	svc := NewSearchService(stores.directory, stores.ledger, SearchOptions{}, quietLogger())

	_, err := svc.Search(context.Background(), SearchParams{Query: "x", Field: "salary"})
	if !errors.Is(err, ErrUnknownSearchField) {
		t.Fatalf("expected ErrUnknownSearchField, got %v", err)
	}
	if ErrorKind(err) != "unknown_search_field" {
		t.Errorf("unexpected error kind %q", ErrorKind(err))
	}
}

func TestSearchService_Cache(t *testing.T) {
	stores := newMemoryStores(t, searchDirectory()...)
	directory := &directoryStub{EmployeeDirectory: stores.directory}
	svc := NewSearchService(directory, stores.ledger, SearchOptions{CacheTTL: time.Minute}, quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(ctx, SearchParams{Query: "Solo", Field: "name"}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}
	if directory.listCalls != 1 {
		t.Fatalf("expected cached rankings, directory listed %d times", directory.listCalls)
	}

	svc.InvalidateCache()
	if _, err := svc.Search(ctx, SearchParams{Query: "solo", Field: "name"}); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if directory.listCalls != 2 {
		t.Fatalf("expected directory reread after invalidation, got %d", directory.listCalls)
	}
}

func TestSearchService_CachedPhoneIsCaseSensitive(t *testing.T) {
	stores := newMemoryStores(t, persistence.Employee{ID: 9, FirstName: "Lando", LastName: "Calrissian", Phone: "CLOUD-9"})
	svc := NewSearchService(stores.directory, stores.ledger, SearchOptions{CacheTTL: time.Minute}, quietLogger())
	ctx := context.Background()

	miss, err := svc.Search(ctx, SearchParams{Query: "cloud-9", Field: "phone"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(miss) != 0 {
		t.Fatalf("expected phone match to be exact, got %+v", miss)
	}

	hit, err := svc.Search(ctx, SearchParams{Query: "CLOUD-9", Field: "phone"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hit) != 1 || hit[0].Employee.ID != 9 || hit[0].Score != 0 {
		t.Fatalf("expected exact phone match, got %+v", hit)
	}
}

func TestSearchService_StorageFailure(t *testing.T) {
	stores := newMemoryStores(t, searchDirectory()...)
	directory := &directoryStub{EmployeeDirectory: stores.directory, listErr: errors.New("locked")}
	svc := NewSearchService(directory, stores.ledger, SearchOptions{}, quietLogger())

	if _, err := svc.Search(context.Background(), SearchParams{Query: "solo"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}

	ledger := &ledgerStub{ShiftLedger: stores.ledger, historyErr: errors.New("locked")}
	svc = NewSearchService(stores.directory, ledger, SearchOptions{}, quietLogger())
	if _, err := svc.Search(context.Background(), SearchParams{Query: "solo"}); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable from history, got %v", err)
	}
}
