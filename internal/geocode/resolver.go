// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/logger"
)

// AddressNotFound is the address text shown for any failed lookup.
const AddressNotFound = "Address not found"

// Resolver turns a coordinate into a single display line.
type Resolver struct {
	coder  Geocoder
	logger *logger.Logger
}

func NewResolver(coder Geocoder, log *logger.Logger) (*Resolver, error) {
	if coder == nil {
		return nil, errors.New("geocoder is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	return &Resolver{coder: coder, logger: log}, nil
}

// Resolve starts the lookup on its own goroutine and returns a channel that receives exactly
// one address line before it is closed. Failures of any kind yield AddressNotFound.
func (r *Resolver) Resolve(ctx context.Context, coords location.Coordinate) <-chan string {
	out := make(chan string, 1)
	go func() {
		defer close(out)
		out <- r.ResolveLine(ctx, coords)
	}()
	return out
}

// ResolveLine performs the lookup on the calling goroutine.
func (r *Resolver) ResolveLine(ctx context.Context, coords location.Coordinate) string {
	addr, err := r.safeReverse(ctx, coords)
	if err != nil {
		r.logger.Debug("reverse geocoding failed", slog.String("geocoder", r.coder.Name()),
			slog.String("coordinate", coords.String()), logger.Err(err))
		return AddressNotFound
	}
	line := addr.Line()
	if !addr.AddressFound || line == "" {
		r.logger.Debug("no address found for coordinate", slog.String("geocoder", r.coder.Name()),
			slog.String("coordinate", coords.String()))
		return AddressNotFound
	}
	r.logger.Debug("address successfully resolved", slog.String("address", line),
		slog.Bool("cache_hit", addr.CacheHit))
	return line
}

func (r *Resolver) safeReverse(ctx context.Context, coords location.Coordinate) (addr Address, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("geocoder %s panicked: %v", r.coder.Name(), p)
		}
	}()
	return r.coder.Reverse(ctx, coords)
}
