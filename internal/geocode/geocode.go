// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"strings"

	"github.com/wneessen/waybar-location/internal/location"
)

type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
	Street       string
	HouseNumber  string
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords location.Coordinate) (Address, error)
}

// Line returns the first address line of the address. Providers deliver a formatted display
// name, if that is missing the line is composed from the street and city parts.
func (a Address) Line() string {
	if line, _, _ := strings.Cut(a.DisplayName, "\n"); strings.TrimSpace(line) != "" {
		return strings.TrimSpace(line)
	}

	street := strings.TrimSpace(strings.Join([]string{a.Street, a.HouseNumber}, " "))
	city := strings.TrimSpace(strings.Join([]string{a.Postcode, a.City}, " "))
	var parts []string
	for _, part := range []string{street, city, a.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
