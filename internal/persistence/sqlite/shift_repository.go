package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/timeclock-kiosk/internal/persistence"
)

// ShiftRepository implements persistence.ShiftLedger using SQLite. Work dates
// are calendar dates in the repository's location; timestamps are stored in UTC.
type ShiftRepository struct {
	pool     *ConnectionPool
	helper   *QueryHelper
	mapper   *ErrorMapper
	retry    *RetryHelper
	location *time.Location
}

// NewShiftRepository creates a new SQLite shift ledger. A nil location means time.Local.
func NewShiftRepository(pool *ConnectionPool, location *time.Location) *ShiftRepository {
	if location == nil {
		location = time.Local
	}
	return &ShiftRepository{
		pool:     pool,
		helper:   NewQueryHelper(pool),
		mapper:   NewErrorMapper(),
		retry:    NewRetryHelper(DefaultRetryConfig()),
		location: location,
	}
}

const shiftColumns = `id, employee_id, clock_in, clock_out, work_date, notes`

// LatestShift returns the employee's most recent shift by clock-in time.
func (r *ShiftRepository) LatestShift(ctx context.Context, employeeID int64) (persistence.ShiftRecord, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE employee_id = ?
		ORDER BY clock_in DESC, id DESC
		LIMIT 1
	`

	shift, err := r.scanShift(r.helper.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ShiftRecord{}, persistence.ErrNotFound
		}
		return persistence.ShiftRecord{}, r.mapper.MapError(err)
	}
	return shift, nil
}

// OpenShift inserts an open shift unless the employee already has one, has a
// shift newer than afterShiftID, or has a boundary at or after clockIn. The
// check and the insert are a single statement.
func (r *ShiftRepository) OpenShift(ctx context.Context, employeeID, afterShiftID int64, clockIn time.Time, workDate time.Time) (persistence.ShiftRecord, error) {
	query := `
		INSERT INTO shifts (employee_id, clock_in, clock_out, work_date, notes)
		SELECT ?, ?, NULL, ?, NULL
		WHERE NOT EXISTS (
			SELECT 1 FROM shifts
			WHERE employee_id = ?
				AND (clock_out IS NULL OR id > ? OR clock_in >= ? OR clock_out >= ?)
		)
		RETURNING ` + shiftColumns

	at := formatTimestamp(clockIn)
	var shift persistence.ShiftRecord
	err := r.retry.WithRetry(ctx, func() error {
		var scanErr error
		shift, scanErr = r.scanShift(r.helper.QueryRow(ctx, query,
			employeeID,
			at,
			r.formatDate(workDate),
			employeeID,
			afterShiftID,
			at,
			at,
		))
		return scanErr
	})

	switch {
	case err == nil:
		return shift, nil
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, persistence.ErrDuplicate):
		// No row inserted, or the open-shift index rejected a concurrent insert.
		return persistence.ShiftRecord{}, persistence.ErrOpenShiftExists
	default:
		return persistence.ShiftRecord{}, err
	}
}

// CloseShift stamps clock_out on shiftID while it is still the employee's open
// shift and clockOut is not before its clock_in.
func (r *ShiftRepository) CloseShift(ctx context.Context, employeeID, shiftID int64, clockOut time.Time) (persistence.ShiftRecord, error) {
	query := `
		UPDATE shifts
		SET clock_out = ?
		WHERE id = ? AND employee_id = ? AND clock_out IS NULL AND clock_in <= ?
		RETURNING ` + shiftColumns

	at := formatTimestamp(clockOut)
	var shift persistence.ShiftRecord
	err := r.retry.WithRetry(ctx, func() error {
		var scanErr error
		shift, scanErr = r.scanShift(r.helper.QueryRow(ctx, query, at, shiftID, employeeID, at))
		return scanErr
	})

	switch {
	case err == nil:
		return shift, nil
	case errors.Is(err, persistence.ErrNotFound):
		return persistence.ShiftRecord{}, persistence.ErrNoOpenShift
	default:
		return persistence.ShiftRecord{}, err
	}
}

// ShiftHistory returns up to limit shifts, newest first. A non-positive limit
// returns every shift.
func (r *ShiftRepository) ShiftHistory(ctx context.Context, employeeID int64, limit int) ([]persistence.ShiftRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE employee_id = ?
		ORDER BY clock_in DESC, id DESC
		LIMIT ?
	`

	rows, err := r.helper.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var shifts []persistence.ShiftRecord
	for rows.Next() {
		shift, err := r.scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return shifts, nil
}

// ListOpenShifts returns every open shift with its employee, oldest clock-in first.
func (r *ShiftRepository) ListOpenShifts(ctx context.Context) ([]persistence.OpenShift, error) {
	query := `
		SELECT s.id, s.employee_id, s.clock_in, s.clock_out, s.work_date, s.notes,
			e.employee_id, e.first_name, e.last_name, e.email, e.phone, e.pic_path,
			e.employee_role, e.position, e.department
		FROM shifts s
		JOIN employees e ON e.employee_id = s.employee_id
		WHERE s.clock_out IS NULL
		ORDER BY s.clock_in ASC, s.id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var open []persistence.OpenShift
	for rows.Next() {
		var (
			raw      shiftRow
			employee persistence.Employee
		)
		if err := rows.Scan(
			&raw.id, &raw.employeeID, &raw.clockIn, &raw.clockOut, &raw.workDate, &raw.notes,
			&employee.ID, &employee.FirstName, &employee.LastName, &employee.Email, &employee.Phone,
			&employee.PhotoPath, &employee.Role, &employee.Position, &employee.Department,
		); err != nil {
			return nil, fmt.Errorf("failed to scan open shift: %w", err)
		}
		shift, err := r.toRecord(raw)
		if err != nil {
			return nil, err
		}
		open = append(open, persistence.OpenShift{Shift: shift, Employee: employee})
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return open, nil
}

// CloseOpenShifts closes every open shift with a work date before
// workDateBefore. Each closed shift gets clock_out at midnight of its work date.
func (r *ShiftRepository) CloseOpenShifts(ctx context.Context, workDateBefore time.Time, notes string) (int64, error) {
	var closed int64

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, work_date FROM shifts WHERE clock_out IS NULL AND work_date < ? ORDER BY id`,
			r.formatDate(workDateBefore),
		)
		if err != nil {
			return err
		}

		type pending struct {
			id       int64
			workDate string
		}
		var targets []pending
		for rows.Next() {
			var p pending
			if err := rows.Scan(&p.id, &p.workDate); err != nil {
				rows.Close()
				return err
			}
			targets = append(targets, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, target := range targets {
			midnight, err := r.parseDate(target.workDate)
			if err != nil {
				return err
			}
			result, err := tx.ExecContext(ctx,
				`UPDATE shifts SET clock_out = ?, notes = ? WHERE id = ? AND clock_out IS NULL`,
				formatTimestamp(midnight), notes, target.id,
			)
			if err != nil {
				return err
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			closed += affected
		}
		return nil
	})
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return closed, nil
}

type shiftRow struct {
	id         int64
	employeeID int64
	clockIn    string
	clockOut   sql.NullString
	workDate   string
	notes      sql.NullString
}

func (r *ShiftRepository) scanShift(row rowScanner) (persistence.ShiftRecord, error) {
	var raw shiftRow
	if err := row.Scan(&raw.id, &raw.employeeID, &raw.clockIn, &raw.clockOut, &raw.workDate, &raw.notes); err != nil {
		return persistence.ShiftRecord{}, err
	}
	return r.toRecord(raw)
}

func (r *ShiftRepository) toRecord(raw shiftRow) (persistence.ShiftRecord, error) {
	clockIn, err := parseTimestamp(raw.clockIn)
	if err != nil {
		return persistence.ShiftRecord{}, err
	}
	workDate, err := r.parseDate(raw.workDate)
	if err != nil {
		return persistence.ShiftRecord{}, err
	}

	shift := persistence.ShiftRecord{
		ID:         raw.id,
		EmployeeID: raw.employeeID,
		ClockIn:    clockIn,
		WorkDate:   workDate,
	}
	if raw.clockOut.Valid {
		clockOut, err := parseTimestamp(raw.clockOut.String)
		if err != nil {
			return persistence.ShiftRecord{}, err
		}
		shift.ClockOut = &clockOut
	}
	if raw.notes.Valid {
		notes := raw.notes.String
		shift.Notes = &notes
	}
	return shift, nil
}

func (r *ShiftRepository) formatDate(t time.Time) string {
	return t.In(r.location).Format(dateLayout)
}

func (r *ShiftRepository) parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, r.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse work date %q: %w", value, err)
	}
	return t, nil
}
