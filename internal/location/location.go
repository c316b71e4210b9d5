// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package location

import (
	"context"
	"errors"
	"time"
)

const (
	accuracyEpsilon = 1e-6
)

// Accuracy radii in meters for sources that only know an administrative area.
const (
	AccuracyCountry = 300000
	AccuracyRegion  = 100000
	AccuracyCity    = 15000
	AccuracyZip     = 3000
	AccuracyUnknown = 1000000
)

var (
	// ErrNoFix is returned by a Provider that has no last known location to hand out.
	ErrNoFix = errors.New("no location fix available")

	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Provider hands out the last known location of the device. Implementations perform a single
// lookup per call and never stream updates.
type Provider interface {
	Name() string
	LastKnown(ctx context.Context) (Fix, error)
}

// Fix is a single location reading with its metadata.
type Fix struct {
	Coordinate
	Alt            float64
	AccuracyMeters float64
	Source         string
	At             time.Time
}

// BetterThan reports whether f should be preferred over prev. A smaller accuracy radius wins,
// on equal accuracy the more recent fix wins.
func (f Fix) BetterThan(prev Fix) bool {
	if prev.Source == "" {
		return true
	}
	if f.AccuracyMeters < prev.AccuracyMeters-accuracyEpsilon {
		return true
	}
	if prev.AccuracyMeters < f.AccuracyMeters-accuracyEpsilon {
		return false
	}
	return f.At.After(prev.At)
}
