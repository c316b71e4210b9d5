// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/wneessen/waybar-location/internal/location"
)

const (
	ClassWaiting = "waiting"
	ClassDenied  = "denied"
	ClassLocated = "located"
)

// View is a snapshot of the screen state. Strings are stored untranslated and localized when
// rendered.
type View struct {
	Title             string
	Address           string
	Message           string
	PermissionKnown   bool
	PermissionGranted bool
	Located           bool
	ShowMap           bool
	Fix               location.Fix
	Camera            *Camera
	Home              *Marker
	Markers           []Marker
}

// Class returns the CSS class of the view.
func (v View) Class() string {
	switch {
	case v.PermissionKnown && !v.PermissionGranted:
		return ClassDenied
	case v.ShowMap:
		return ClassLocated
	default:
		return ClassWaiting
	}
}
