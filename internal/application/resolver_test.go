package application

import (
	"context"
	"errors"
	"testing"
)

func TestParseEmployeeID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"11111111", 11111111, true},
		{" 0042\n", 42, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"12a", 0, false},
		{"1 2", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseEmployeeID(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseEmployeeID(%q) = %d, %v; want %d, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIdentityResolver_Resolve(t *testing.T) {
	stores := newMemoryStores(t, hanSolo())
	directory := &directoryStub{EmployeeDirectory: stores.directory}
	resolver := NewIdentityResolver(directory, quietLogger())
	ctx := context.Background()

	employee, err := resolver.Resolve(ctx, "11111111")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if employee.DisplayName() != "Han Solo" {
		t.Errorf("unexpected employee %+v", employee)
	}

	for _, raw := range []string{"", "abc", "-3", "404"} {
		if _, err := resolver.Resolve(ctx, raw); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q): expected ErrNotFound, got %v", raw, err)
		}
	}

	directory.getErr = errors.New("connection reset")
	if _, err := resolver.Resolve(ctx, "11111111"); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected storage unavailable, got %v", err)
	}
}
