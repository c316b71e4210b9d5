// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
)

const (
	APIEndpoint   = "https://reallyfreegeoip.org/json/"
	LookupTimeout = time.Second * 5
	name          = "geoip"
)

type GeolocationGeoIPProvider struct {
	name string
	http *http.Client
}

type APIResult struct {
	IP          string  `json:"ip"`
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country_name"`
	RegionCode  string  `json:"region_code,omitempty"`
	Region      string  `json:"region_name,omitempty"`
	City        string  `json:"city,omitempty"`
	ZipCode     string  `json:"zip_code,omitempty"`
	TimeZone    string  `json:"time_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MetroCode   int     `json:"metro_code"`
}

func NewGeolocationGeoIPProvider(http *http.Client) (*GeolocationGeoIPProvider, error) {
	if http == nil {
		return nil, errors.New("http client is required")
	}
	return &GeolocationGeoIPProvider{
		name: name,
		http: http,
	}, nil
}

func (p *GeolocationGeoIPProvider) Name() string {
	return p.name
}

// LastKnown looks up the location of the public IP address. The accuracy depends on how much
// of the address hierarchy the API was able to resolve.
func (p *GeolocationGeoIPProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	result := new(APIResult)
	if _, err := p.http.GetWithTimeout(ctx, APIEndpoint, result, nil, nil, LookupTimeout); err != nil {
		return location.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if result.CountryCode == "" && result.Latitude == 0 && result.Longitude == 0 {
		return location.Fix{}, location.ErrNoFix
	}

	acc := float64(location.AccuracyUnknown)
	switch {
	case result.ZipCode != "":
		acc = location.AccuracyZip
	case result.City != "":
		acc = location.AccuracyCity
	case result.RegionCode != "":
		acc = location.AccuracyRegion
	case result.CountryCode != "":
		acc = location.AccuracyCountry
	}

	return location.Fix{
		Coordinate: location.Coordinate{
			Lat: location.Truncate(result.Latitude, location.TruncPrecision),
			Lon: location.Truncate(result.Longitude, location.TruncPrecision),
		},
		AccuracyMeters: acc,
		Source:         p.name,
		At:             time.Now(),
	}, nil
}
