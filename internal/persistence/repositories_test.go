package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
	"github.com/example/timeclock-kiosk/internal/persistence/memory"
	"github.com/example/timeclock-kiosk/internal/testfixtures"
)

type store interface {
	persistence.EmployeeDirectory
	persistence.ShiftLedger
}

type storeFactory func(t *testing.T, location *time.Location) store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, location *time.Location) store {
			return memory.New(location)
		},
		"sqlite": func(t *testing.T, location *time.Location) store {
			harness := testfixtures.NewSQLiteHarness(t, location)
			return struct {
				persistence.EmployeeDirectory
				persistence.ShiftLedger
			}{harness.Employees, harness.Shifts}
		},
	}
}

func TestShiftLedgerContract(t *testing.T) {
	t.Parallel()

	for name, factory := range factories() {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			location := time.FixedZone("kiosk", 2*60*60)
			s := factory(t, location)

			han := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeID(11111111), testfixtures.WithEmployeeName("Han", "Solo")).Persistence()
			leia := testfixtures.NewEmployeeFixture(testfixtures.WithEmployeeName("Leia", "Organa")).Persistence()
			for _, employee := range []persistence.Employee{han, leia} {
				if err := s.UpsertEmployee(ctx, employee); err != nil {
					t.Fatalf("UpsertEmployee failed: %v", err)
				}
			}

			got, err := s.GetEmployee(ctx, han.ID)
			if err != nil || got.LastName != "Solo" {
				t.Fatalf("GetEmployee = %+v, %v", got, err)
			}
			if _, err := s.GetEmployee(ctx, 1); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			listed, err := s.ListEmployees(ctx)
			if err != nil || len(listed) != 2 || listed[0].LastName != "Organa" {
				t.Fatalf("ListEmployees = %+v, %v", listed, err)
			}

			if _, err := s.LatestShift(ctx, han.ID); !errors.Is(err, persistence.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for empty ledger, got %v", err)
			}

			// 23:30 UTC is already the next day in the kiosk location.
			clockIn := time.Date(2024, time.March, 4, 23, 30, 0, 0, time.UTC)
			opened, err := s.OpenShift(ctx, han.ID, 0, clockIn, clockIn)
			if err != nil {
				t.Fatalf("OpenShift failed: %v", err)
			}
			if got := opened.WorkDate.In(location).Format("2006-01-02"); got != "2024-03-05" {
				t.Errorf("expected work date in kiosk location, got %s", got)
			}
			if _, err := s.OpenShift(ctx, han.ID, opened.ID, clockIn.Add(time.Minute), clockIn); !errors.Is(err, persistence.ErrOpenShiftExists) {
				t.Fatalf("expected ErrOpenShiftExists, got %v", err)
			}
			if _, err := s.CloseShift(ctx, leia.ID, opened.ID, clockIn); !errors.Is(err, persistence.ErrNoOpenShift) {
				t.Fatalf("expected ErrNoOpenShift, got %v", err)
			}

			if _, err := s.CloseShift(ctx, han.ID, opened.ID, clockIn.Add(-time.Minute)); !errors.Is(err, persistence.ErrNoOpenShift) {
				t.Fatalf("expected ErrNoOpenShift for clock out before clock in, got %v", err)
			}

			closed, err := s.CloseShift(ctx, han.ID, opened.ID, clockIn.Add(8*time.Hour))
			if err != nil {
				t.Fatalf("CloseShift failed: %v", err)
			}
			if closed.ID != opened.ID || closed.Open() {
				t.Fatalf("unexpected closed shift %+v", closed)
			}

			if _, err := s.CloseShift(ctx, han.ID, opened.ID, clockIn.Add(9*time.Hour)); !errors.Is(err, persistence.ErrNoOpenShift) {
				t.Fatalf("expected ErrNoOpenShift for a closed shift, got %v", err)
			}
			if _, err := s.OpenShift(ctx, han.ID, 0, clockIn.Add(24*time.Hour), clockIn); !errors.Is(err, persistence.ErrOpenShiftExists) {
				t.Fatalf("expected ErrOpenShiftExists for a caller that saw no shifts, got %v", err)
			}
			if _, err := s.OpenShift(ctx, han.ID, opened.ID, clockIn.Add(4*time.Hour), clockIn); !errors.Is(err, persistence.ErrOpenShiftExists) {
				t.Fatalf("expected ErrOpenShiftExists for a clock in before the last clock out, got %v", err)
			}

			second, err := s.OpenShift(ctx, han.ID, opened.ID, clockIn.Add(24*time.Hour), clockIn.Add(24*time.Hour))
			if err != nil {
				t.Fatalf("second OpenShift failed: %v", err)
			}

			latest, err := s.LatestShift(ctx, han.ID)
			if err != nil || latest.ID != second.ID || !latest.Open() {
				t.Fatalf("LatestShift = %+v, %v", latest, err)
			}
			if _, err := s.CloseShift(ctx, han.ID, opened.ID, clockIn.Add(25*time.Hour)); !errors.Is(err, persistence.ErrNoOpenShift) {
				t.Fatalf("expected ErrNoOpenShift when closing a replaced shift, got %v", err)
			}

			history, err := s.ShiftHistory(ctx, han.ID, 1)
			if err != nil || len(history) != 1 || history[0].ID != second.ID {
				t.Fatalf("ShiftHistory = %+v, %v", history, err)
			}

			open, err := s.ListOpenShifts(ctx)
			if err != nil || len(open) != 1 || open[0].Employee.ID != han.ID {
				t.Fatalf("ListOpenShifts = %+v, %v", open, err)
			}

			swept, err := s.CloseOpenShifts(ctx, clockIn.Add(72*time.Hour), "no clock out")
			if err != nil || swept != 1 {
				t.Fatalf("CloseOpenShifts = %d, %v", swept, err)
			}
			latest, err = s.LatestShift(ctx, han.ID)
			if err != nil {
				t.Fatalf("LatestShift failed: %v", err)
			}
			if latest.ClockOut == nil || !latest.ClockOut.Equal(latest.WorkDate) {
				t.Fatalf("expected clock out at midnight of the work date, got %+v", latest)
			}
			if latest.Notes == nil || *latest.Notes != "no clock out" {
				t.Fatalf("expected sweep note, got %v", latest.Notes)
			}
		})
	}
}
