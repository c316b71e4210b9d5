// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/vartype"
)

const (
	WaitingText            = "Waiting for location..."
	PermissionRequiredText = "Location permission required"
	TitleText              = "Location Information"
	HomeMarkerTitle        = "You are here"
	UserMarkerTitle        = "Custom Marker"

	DefaultZoom = 15
)

var ErrMapHidden = errors.New("map is not shown")

// Camera is the position the map widget is centered on.
type Camera struct {
	Center location.Coordinate
	Zoom   float64
}

// Marker is a titled pin on the map.
type Marker struct {
	ID       uuid.UUID
	Position location.Coordinate
	Title    string
	Created  time.Time
}

// Screen holds the state cells of the location screen. Each cell has exactly one producer: the
// permission gate, the location fetch, the geocode completion or the tap handler.
type Screen struct {
	mu         sync.RWMutex
	zoom       float64
	now        func() time.Time
	permission vartype.VarBool
	fix        vartype.Variable[location.Fix]
	camera     vartype.Variable[Camera]
	home       vartype.Variable[Marker]
	address    string
	generation uint64
	markers    []Marker
}

func NewScreen(zoom float64) *Screen {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Screen{
		zoom:    zoom,
		now:     time.Now,
		address: WaitingText,
	}
}

// SetPermission records the permission outcome. A granted permission is never revoked.
func (s *Screen) SetPermission(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permission.Value() {
		return
	}
	s.permission.Set(granted)
}

// SetLocation stores the fix, places the home marker and centers the camera on the first fix. It
// returns the fetch generation that a following SetAddress has to present.
func (s *Screen) SetLocation(fix location.Fix) (uint64, error) {
	if !fix.Valid() {
		return 0, fmt.Errorf("%w: %s", location.ErrInvalidCoordinate, fix.Coordinate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix.Set(fix)
	s.home.Set(Marker{
		ID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("home:"+fix.String())),
		Position: fix.Coordinate,
		Title:    HomeMarkerTitle,
		Created:  s.now(),
	})
	s.camera.SetOnce(Camera{Center: fix.Coordinate, Zoom: s.zoom})
	s.generation++

	return s.generation, nil
}

// SetAddress sets the address text for the given fetch generation. Results of older fetches are
// dropped and false is returned.
func (s *Screen) SetAddress(generation uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation == 0 || generation != s.generation {
		return false
	}
	s.address = text
	return true
}

// Tap appends a marker at coord. Taps are only accepted while the map is shown.
func (s *Screen) Tap(coord location.Coordinate) (Marker, error) {
	if !coord.Valid() {
		return Marker{}, fmt.Errorf("%w: %s", location.ErrInvalidCoordinate, coord)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.showMap() {
		return Marker{}, ErrMapHidden
	}
	marker := Marker{
		ID:       uuid.New(),
		Position: coord,
		Title:    UserMarkerTitle,
		Created:  s.now(),
	}
	s.markers = append(s.markers, marker)

	return marker, nil
}

// View returns a snapshot of the screen.
func (s *Screen) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := View{
		Title:             TitleText,
		Address:           s.address,
		PermissionKnown:   s.permission.IsSet(),
		PermissionGranted: s.permission.Value(),
		ShowMap:           s.showMap(),
		Markers:           slices.Clone(s.markers),
	}
	if fix, ok := s.fix.Get(); ok {
		view.Located = true
		view.Fix = fix
	}
	if camera, ok := s.camera.Get(); ok {
		view.Camera = &camera
	}
	if home, ok := s.home.Get(); ok {
		view.Home = &home
	}
	if !view.ShowMap {
		view.Message = PermissionRequiredText
	}

	return view
}

func (s *Screen) showMap() bool {
	return s.permission.Value() && s.fix.IsSet()
}
