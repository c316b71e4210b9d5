// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package permission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/wneessen/waybar-location/internal/logger"
)

type mockBackend struct {
	mu       sync.Mutex
	present  bool
	grant    bool
	checkErr error
	reqErr   error
	checks   int
	requests int
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Check(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	return m.present, m.checkErr
}

func (m *mockBackend) Request(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	return m.grant, m.reqErr
}

func TestNewGate(t *testing.T) {
	t.Run("new gate succeeds", func(t *testing.T) {
		gate, err := NewGate(&mockBackend{}, testLogger())
		if err != nil {
			t.Fatalf("failed to create gate: %s", err)
		}
		if gate.State() != StateUnknown {
			t.Errorf("expected initial state to be unknown, got %s", gate.State())
		}
	})
	t.Run("gate without backend fails", func(t *testing.T) {
		if _, err := NewGate(nil, testLogger()); err == nil {
			t.Error("expected gate without backend to fail")
		}
	})
	t.Run("gate without logger fails", func(t *testing.T) {
		if _, err := NewGate(&mockBackend{}, nil); err == nil {
			t.Error("expected gate without logger to fail")
		}
	})
}

func TestGate_Activate(t *testing.T) {
	t.Run("present permission is granted without a request", func(t *testing.T) {
		backend := &mockBackend{present: true}
		gate := testGate(t, backend)
		if state := gate.Activate(t.Context()); state != StateGranted {
			t.Errorf("expected state to be granted, got %s", state)
		}
		if backend.requests != 0 {
			t.Errorf("expected no permission request, got %d", backend.requests)
		}
	})
	t.Run("absent permission is requested once and granted", func(t *testing.T) {
		backend := &mockBackend{grant: true}
		gate := testGate(t, backend)
		if state := gate.Activate(t.Context()); state != StateGranted {
			t.Errorf("expected state to be granted, got %s", state)
		}
		if backend.requests != 1 {
			t.Errorf("expected exactly one permission request, got %d", backend.requests)
		}
	})
	t.Run("denied permission is never requested again", func(t *testing.T) {
		backend := &mockBackend{}
		gate := testGate(t, backend)
		for range 3 {
			if state := gate.Activate(t.Context()); state != StateDenied {
				t.Errorf("expected state to be denied, got %s", state)
			}
		}
		if backend.requests != 1 {
			t.Errorf("expected exactly one permission request, got %d", backend.requests)
		}
		if backend.checks != 1 {
			t.Errorf("expected exactly one permission check, got %d", backend.checks)
		}
	})
	t.Run("granted permission never reverts", func(t *testing.T) {
		backend := &mockBackend{grant: true}
		gate := testGate(t, backend)
		gate.Activate(t.Context())
		backend.present, backend.grant = false, false
		if state := gate.Activate(t.Context()); state != StateGranted {
			t.Errorf("expected state to stay granted, got %s", state)
		}
	})
	t.Run("failing request counts as denial", func(t *testing.T) {
		backend := &mockBackend{reqErr: errors.New("agent vanished")}
		gate := testGate(t, backend)
		if state := gate.Activate(t.Context()); state != StateDenied {
			t.Errorf("expected state to be denied, got %s", state)
		}
	})
	t.Run("failing check still requests the permission", func(t *testing.T) {
		backend := &mockBackend{checkErr: errors.New("bus unavailable"), grant: true}
		gate := testGate(t, backend)
		if state := gate.Activate(t.Context()); state != StateGranted {
			t.Errorf("expected state to be granted, got %s", state)
		}
	})
	t.Run("concurrent activation requests once", func(t *testing.T) {
		backend := &mockBackend{grant: true}
		gate := testGate(t, backend)
		var wg sync.WaitGroup
		for range 10 {
			wg.Go(func() {
				if state := gate.Activate(t.Context()); state != StateGranted {
					t.Errorf("expected state to be granted, got %s", state)
				}
			})
		}
		wg.Wait()
		if backend.requests != 1 {
			t.Errorf("expected exactly one permission request, got %d", backend.requests)
		}
	})
}

func TestStatic(t *testing.T) {
	tests := []struct {
		name    string
		granted bool
		want    State
	}{
		{"static granted", true, StateGranted},
		{"static denied", false, StateDenied},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := NewStatic(tc.granted)
			if backend.Name() != "static" {
				t.Errorf("expected backend name to be static, got %s", backend.Name())
			}
			gate := testGate(t, backend)
			if state := gate.Activate(t.Context()); state != tc.want {
				t.Errorf("expected state to be %s, got %s", tc.want, state)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnknown, "unknown"},
		{StateDenied, "denied"},
		{StateGranted, "granted"},
		{State(42), "unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.state.String(); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func testGate(t *testing.T, backend Backend) *Gate {
	t.Helper()
	gate, err := NewGate(backend, testLogger())
	if err != nil {
		t.Fatalf("failed to create gate: %s", err)
	}
	return gate
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, io.Discard)
}
