// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geolocation_file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/waybar-location/internal/location"
)

const (
	name = "geolocation_file"

	// Accuracy is the accuracy we assume for a user maintained geolocation file. The user
	// knows best where they are.
	Accuracy = 5
)

var ErrNoCoordinates = errors.New("no valid coordinates found in geolocation file")

// GeolocationFileProvider reads the last known location from a user maintained file. The first
// line in the form "latitude,longitude" that is not a comment is used.
type GeolocationFileProvider struct {
	name string
	path string
}

// NewGeolocationFileProvider initializes a GeolocationFileProvider for the given file path.
func NewGeolocationFileProvider(path string) *GeolocationFileProvider {
	return &GeolocationFileProvider{
		name: name,
		path: path,
	}
}

// Name returns the name of the GeolocationFileProvider instance.
func (p *GeolocationFileProvider) Name() string {
	return p.name
}

// LastKnown reads the geolocation file. A missing file means that the user has not stored a
// location, which is reported as location.ErrNoFix.
func (p *GeolocationFileProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	if err := ctx.Err(); err != nil {
		return location.Fix{}, err
	}

	coord, modTime, err := p.readFile()
	if errors.Is(err, fs.ErrNotExist) {
		return location.Fix{}, location.ErrNoFix
	}
	if err != nil {
		return location.Fix{}, err
	}

	return location.Fix{
		Coordinate:     coord,
		AccuracyMeters: Accuracy,
		Source:         p.name,
		At:             modTime,
	}, nil
}

// readFile reads the coordinates and the modification time from the file at the configured path.
func (p *GeolocationFileProvider) readFile() (location.Coordinate, time.Time, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return location.Coordinate{}, time.Time{}, fmt.Errorf("failed to stat geolocation file %q: %w", p.path, err)
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return location.Coordinate{}, time.Time{}, fmt.Errorf("failed to read geolocation file %q: %w", p.path, err)
	}
	coord, err := ParseCoordinates(string(data))
	if err != nil {
		return location.Coordinate{}, time.Time{}, fmt.Errorf("geolocation file %q: %w", p.path, err)
	}
	return coord, info.ModTime(), nil
}

// ParseCoordinates returns the first valid "latitude,longitude" pair found in data. Empty lines
// and lines starting with # are skipped.
func ParseCoordinates(data string) (location.Coordinate, error) {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		coord, err := ParseCoordinate(line)
		if err != nil {
			continue
		}
		return coord, nil
	}
	return location.Coordinate{}, ErrNoCoordinates
}

// ParseCoordinate parses a single "latitude,longitude" pair.
func ParseCoordinate(val string) (location.Coordinate, error) {
	coords := strings.Split(val, ",")
	if len(coords) != 2 {
		return location.Coordinate{}, fmt.Errorf("%w: %q", location.ErrInvalidCoordinate, val)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
	if err != nil {
		return location.Coordinate{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
	if err != nil {
		return location.Coordinate{}, fmt.Errorf("failed to parse longitude: %w", err)
	}
	return location.NewCoordinate(lat, lon)
}
