package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/timeclock-kiosk/internal/testfixtures"
)

const (
	testOperator = "supervisor"
	testPassword = "correct horse"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func operatorCredentials(t *testing.T) OperatorCredentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}
	return OperatorCredentials{User: testOperator, PasswordHash: string(hash)}
}

type kioskServer struct {
	handler http.Handler
	factory *testfixtures.ServiceFactory
	stores  testfixtures.Stores
	hub     *ActivityHub
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newKioskServer(t *testing.T) *kioskServer {
	t.Helper()

	logger := quietLogger()
	factory := testfixtures.NewServiceFactory(testfixtures.WithLogger(logger))
	stores := factory.MemoryStores()
	hub := NewActivityHub(0, logger)
	t.Cleanup(hub.Close)

	search := factory.NewSearchService(stores, 0, 0)
	router := NewRouter(RouterConfig{
		Scans:     NewScanHandler(factory.NewKioskService(testfixtures.KioskServiceDeps{Stores: stores, Publisher: hub}), logger),
		Search:    NewSearchHandler(search, logger),
		Employees: NewEmployeeHandler(factory.NewDirectoryService(stores, search.InvalidateCache), logger),
		Shifts:    NewShiftHandler(factory.NewReportService(stores), factory.Location, logger),
		Health:    NewHealthHandler(nil, logger),
		Activity:  hub,
		Operator:  RequireOperator(operatorCredentials(t), logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
		},
	})

	return &kioskServer{handler: router, factory: factory, stores: stores, hub: hub}
}

func (s *kioskServer) seed(t *testing.T, opts ...testfixtures.EmployeeOption) testfixtures.EmployeeFixture {
	t.Helper()
	fixture := testfixtures.NewEmployeeFixture(opts...)
	if err := s.stores.Directory.UpsertEmployee(context.Background(), fixture.Application()); err != nil {
		t.Fatalf("UpsertEmployee failed: %v", err)
	}
	return fixture
}

func (s *kioskServer) do(t *testing.T, method, target string, body any, authenticate bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if authenticate {
		req.SetBasicAuth(testOperator, testPassword)
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, req)
	return recorder
}

func (s *kioskServer) scan(t *testing.T, raw string, feed []activityEntryDTO) scanResponse {
	t.Helper()
	recorder := s.do(t, http.MethodPost, "/scans", scanRequest{RawID: raw, Feed: feed}, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("POST /scans returned %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp scanResponse
	decodeJSON(t, recorder, &resp)
	return resp
}

func decodeJSON(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
}
