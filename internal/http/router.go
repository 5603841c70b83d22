package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Scans     *ScanHandler
	Search    *SearchHandler
	Employees *EmployeeHandler
	Shifts    *ShiftHandler
	Health    *HealthHandler
	Activity  http.Handler
	// Operator guards PUT /employees/{id} and POST /shifts/sweep. When nil
	// those routes answer 403.
	Operator   func(http.Handler) http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	operator := cfg.Operator
	if operator == nil {
		operator = RequireOperator(OperatorCredentials{}, nil)
	}

	if cfg.Health != nil {
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Health.Check(w, r)
		})
	}

	if cfg.Scans != nil {
		mux.HandleFunc("/scans", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Scans.Create(w, r)
		})
	}

	if cfg.Search != nil {
		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Search.Search(w, r)
		})
	}

	if cfg.Employees != nil {
		put := operator(http.HandlerFunc(cfg.Employees.Put))
		mux.HandleFunc("/employees/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/employees/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithEmployeeID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Employees.Get(w, r)
			case http.MethodPut:
				put.ServeHTTP(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Shifts != nil {
		sweep := operator(http.HandlerFunc(cfg.Shifts.Sweep))
		mux.HandleFunc("/shifts/open", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Shifts.Open(w, r)
		})
		mux.HandleFunc("/shifts/sweep", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			sweep.ServeHTTP(w, r)
		})
	}

	if cfg.Activity != nil {
		mux.Handle("/activity/stream", cfg.Activity)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
