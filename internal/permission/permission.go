// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package permission

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/wneessen/waybar-location/internal/logger"
)

// State is the location permission state of the session.
type State int

const (
	StateUnknown State = iota
	StateDenied
	StateGranted
)

func (s State) String() string {
	switch s {
	case StateDenied:
		return "denied"
	case StateGranted:
		return "granted"
	default:
		return "unknown"
	}
}

// Checker reports whether the location permission is already present.
type Checker interface {
	Check(ctx context.Context) (bool, error)
}

// Requester asks the user for the location permission and reports the outcome.
type Requester interface {
	Request(ctx context.Context) (bool, error)
}

// Backend is a permission source that can be checked and requested.
type Backend interface {
	Checker
	Requester
	Name() string
}

// Gate tracks the location permission of a session. The permission is requested at most once and
// a granted permission never reverts.
type Gate struct {
	backend Backend
	logger  *logger.Logger

	mu        sync.Mutex
	state     State
	requested bool
}

func NewGate(backend Backend, log *logger.Logger) (*Gate, error) {
	if backend == nil {
		return nil, errors.New("permission backend is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &Gate{backend: backend, logger: log}, nil
}

// Activate resolves the permission state. On the first call the backend is checked and, if the
// permission is absent, a single request is issued. Later calls return the recorded outcome.
func (g *Gate) Activate(ctx context.Context) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateUnknown {
		return g.state
	}

	ok, err := g.backend.Check(ctx)
	if err != nil {
		g.logger.Debug("failed to check location permission", slog.String("backend", g.backend.Name()),
			logger.Err(err))
	}
	if ok {
		g.state = StateGranted
		g.logger.Debug("location permission already present", slog.String("backend", g.backend.Name()))
		return g.state
	}

	if g.requested {
		return g.state
	}
	g.requested = true
	ok, err = g.backend.Request(ctx)
	if err != nil {
		g.logger.Error("failed to request location permission", slog.String("backend", g.backend.Name()),
			logger.Err(err))
	}
	g.state = StateDenied
	if ok {
		g.state = StateGranted
	}
	g.logger.Debug("location permission requested", slog.String("backend", g.backend.Name()),
		slog.String("state", g.state.String()))

	return g.state
}

// State returns the recorded permission state without touching the backend.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Static is a permission backend with a fixed answer.
type Static struct {
	granted bool
}

func NewStatic(granted bool) *Static {
	return &Static{granted: granted}
}

func (s *Static) Name() string {
	return "static"
}

func (s *Static) Check(context.Context) (bool, error) {
	return s.granted, nil
}

func (s *Static) Request(context.Context) (bool, error) {
	return s.granted, nil
}
