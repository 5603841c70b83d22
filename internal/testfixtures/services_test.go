package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/application"
)

func TestServiceFactoryKioskScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	factory := NewServiceFactory()
	stores := factory.MemoryStores()

	han := NewEmployeeFixture(WithEmployeeName("Han", "Solo"))
	if err := stores.Directory.UpsertEmployee(ctx, han.Application()); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}

	kiosk := factory.NewKioskService(KioskServiceDeps{Stores: stores})

	presentation, feed, err := kiosk.Scan(ctx, han.Badge(), nil)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if presentation.Kind != application.PresentationRecorded || presentation.Outcome == nil {
		t.Fatalf("unexpected presentation %+v", presentation)
	}
	if presentation.Outcome.Direction != application.DirectionIn {
		t.Fatalf("expected IN, got %s", presentation.Outcome.Direction)
	}
	if presentation.CorrelationID != "scan-1" {
		t.Fatalf("expected generated correlation id scan-1, got %q", presentation.CorrelationID)
	}
	if len(feed) != 1 {
		t.Fatalf("expected one feed entry, got %d", len(feed))
	}

	factory.Clock.Advance(10 * time.Second)
	presentation, _, err = kiosk.Scan(ctx, han.Badge(), feed)
	if err != nil {
		t.Fatalf("second Scan returned error: %v", err)
	}
	if presentation.Outcome == nil || presentation.Outcome.Direction != application.DirectionOut {
		t.Fatalf("expected OUT on second scan, got %+v", presentation)
	}
}

func TestServiceFactorySQLiteStores(t *testing.T) {
	ctx := context.Background()
	factory := NewServiceFactory()
	harness := NewSQLiteHarness(t, factory.Location)
	stores := AdaptStores(harness.Employees, harness.Shifts)

	leia := NewEmployeeFixture(WithEmployeeName("Leia", "Organa"))
	directory := factory.NewDirectoryService(stores, nil)
	if _, err := directory.UpsertEmployee(ctx, leia.Input()); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}

	if _, err := NewShiftFixture(leia.ID).Seed(ctx, harness.Shifts); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	detail, err := directory.GetEmployee(ctx, leia.ID, 0)
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if len(detail.Shifts) != 1 || detail.Shifts[0].Duration != "8h 0m" {
		t.Fatalf("unexpected history %+v", detail.Shifts)
	}
}

func TestServiceFactorySQLiteStoresSearch(t *testing.T) {
	ctx := context.Background()
	factory := NewServiceFactory()
	stores := factory.SQLiteStores(t)

	han := NewEmployeeFixture(WithEmployeeName("Han", "Solo"))
	if err := stores.Directory.UpsertEmployee(ctx, han.Application()); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}

	matches, err := factory.NewSearchService(stores, 0, 0).Search(ctx, application.SearchParams{Query: "Han Solo"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Employee.ID != han.ID || matches[0].Score != 4 {
		t.Fatalf("unexpected matches %+v", matches)
	}
}

func TestEmployeeFixtureDefaultsAreUnique(t *testing.T) {
	first := NewEmployeeFixture()
	second := NewEmployeeFixture()
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids, got %d twice", first.ID)
	}
	if first.ID < 1000 {
		t.Fatalf("expected fixture ids above the reserved range, got %d", first.ID)
	}
	if first.Persistence().ID != first.ID || first.Application().ID != first.ID {
		t.Fatal("conversion lost the id")
	}
}
