package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/example/timeclock-kiosk/internal/search"
)

// DefaultHistoryLimit is the number of shifts attached to each search hit.
const DefaultHistoryLimit = 10

const searchCacheSize = 256

// SearchService ranks employees and attaches their recent shifts. Ranked
// candidates are cached per field and query for CacheTTL; shift history is
// always read fresh.
type SearchService struct {
	directory    EmployeeDirectory
	ledger       ShiftLedger
	historyLimit int
	location     *time.Location
	cache        *expirable.LRU[string, []rankedEmployee]
	logger       *slog.Logger
}

// SearchOptions configures a SearchService. A non-positive CacheTTL disables caching.
type SearchOptions struct {
	HistoryLimit int
	CacheTTL     time.Duration
	Location     *time.Location
}

type rankedEmployee struct {
	employee Employee
	score    int
}

// NewSearchService constructs the search engine.
func NewSearchService(directory EmployeeDirectory, ledger ShiftLedger, opts SearchOptions, logger *slog.Logger) *SearchService {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	service := &SearchService{
		directory:    directory,
		ledger:       ledger,
		historyLimit: opts.HistoryLimit,
		location:     opts.Location,
		logger:       defaultLogger(logger),
	}
	if opts.CacheTTL > 0 {
		service.cache = expirable.NewLRU[string, []rankedEmployee](searchCacheSize, nil, opts.CacheTTL)
	}
	return service
}

func (s *SearchService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SearchService", operation, attrs...)
}

// Search ranks the directory against params.Query on params.Field and returns
// the matches with up to params.HistoryLimit recent shifts each.
func (s *SearchService) Search(ctx context.Context, params SearchParams) (matches []MatchedEmployee, err error) {
	if s == nil {
		err = fmt.Errorf("SearchService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Search", "field", params.Field)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "search failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(matches)).InfoContext(ctx, "search completed")
	}()

	field, parseErr := search.ParseField(params.Field)
	if parseErr != nil {
		err = fmt.Errorf("%w: %q", ErrUnknownSearchField, params.Field)
		return
	}

	if s.directory == nil || s.ledger == nil {
		err = storageError(errors.New("search dependencies not configured"))
		return
	}

	limit := params.HistoryLimit
	if limit <= 0 {
		limit = s.historyLimit
	}

	var ranked []rankedEmployee
	ranked, err = s.rank(ctx, params.Query, field)
	if err != nil {
		return
	}

	matches = make([]MatchedEmployee, 0, len(ranked))
	for _, candidate := range ranked {
		var history []ShiftRecord
		history, err = s.ledger.ShiftHistory(ctx, candidate.employee.ID, limit)
		if err != nil {
			err = storageError(err)
			matches = nil
			return
		}
		matches = append(matches, MatchedEmployee{
			Employee: candidate.employee,
			Score:    candidate.score,
			Shifts:   summarizeShifts(history, s.location),
		})
	}
	return
}

// InvalidateCache drops cached rankings after a directory change.
// DirectoryService calls it on every upsert; edits that bypass the service,
// such as direct writes to the database, show up once cached entries expire.
func (s *SearchService) InvalidateCache() {
	if s != nil && s.cache != nil {
		s.cache.Purge()
	}
}

// cacheKey folds case only for fields that rank case-insensitively; phone and
// id queries match exactly.
func cacheKey(query string, field search.Field) string {
	query = strings.TrimSpace(query)
	switch field {
	case search.FieldPhone, search.FieldID:
	default:
		query = strings.ToLower(query)
	}
	return string(field) + "|" + query
}

func (s *SearchService) rank(ctx context.Context, query string, field search.Field) ([]rankedEmployee, error) {
	key := cacheKey(query, field)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	employees, err := s.directory.ListEmployees(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	byID := make(map[int64]Employee, len(employees))
	records := make([]search.Record, 0, len(employees))
	for _, employee := range employees {
		byID[employee.ID] = employee
		records = append(records, search.Record{
			ID:         employee.ID,
			FirstName:  employee.FirstName,
			LastName:   employee.LastName,
			Email:      employee.Email,
			Phone:      employee.Phone,
			Role:       employee.Role,
			Position:   employee.Position,
			Department: employee.Department,
		})
	}

	hits, err := search.Rank(query, field, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownSearchField, err)
	}

	ranked := make([]rankedEmployee, 0, len(hits))
	for _, hit := range hits {
		ranked = append(ranked, rankedEmployee{employee: byID[hit.Record.ID], score: hit.Score})
	}

	if s.cache != nil {
		s.cache.Add(key, ranked)
	}
	return ranked, nil
}
