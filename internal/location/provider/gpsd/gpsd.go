// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/waybar-location/internal/gpspoll"
	"github.com/wneessen/waybar-location/internal/location"
)

const (
	DefaultHost = "localhost"
	DefaultPort = "2947"
	pollTimeout = time.Second * 5
	name        = "gpsd"
)

type GeolocationGPSDProvider struct {
	name   string
	client *gpspoll.Client
}

func NewGeolocationGPSDProvider(host, port string) *GeolocationGPSDProvider {
	if host == "" {
		host = DefaultHost
	}
	if port == "" {
		port = DefaultPort
	}
	return &GeolocationGPSDProvider{
		name:   name,
		client: gpspoll.New(host, port),
	}
}

func (p *GeolocationGPSDProvider) Name() string {
	return p.name
}

// LastKnown polls gpsd once. A report without at least a 2D fix is reported as
// location.ErrNoFix.
func (p *GeolocationGPSDProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	ctxPoll, cancelPoll := context.WithTimeout(ctx, pollTimeout)
	defer cancelPoll()

	fix, err := p.client.Poll(ctxPoll)
	if err != nil {
		return location.Fix{}, fmt.Errorf("failed to poll gpsd: %w", err)
	}
	if !fix.Has2DFix() {
		return location.Fix{}, location.ErrNoFix
	}

	at := fix.Time
	if at.IsZero() {
		at = time.Now()
	}
	return location.Fix{
		Coordinate: location.Coordinate{
			Lat: location.Truncate(fix.Lat, location.TruncPrecision),
			Lon: location.Truncate(fix.Lon, location.TruncPrecision),
		},
		Alt:            location.Truncate(fix.Alt, location.TruncPrecision),
		AccuracyMeters: fix.Acc,
		Source:         p.name,
		At:             at,
	}, nil
}
