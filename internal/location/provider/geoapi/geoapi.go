// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geoapi

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
)

const (
	apiEndpoint   = "https://geoapi.info/api/geo"
	lookupTimeout = time.Second * 5
	name          = "geoapi"
)

type GeolocationGeoAPIProvider struct {
	name string
	http *http.Client
}

type APIResult struct {
	IP       string `json:"ip"`
	Location struct {
		CountryCode string `json:"country,omitempty"`
		Country     string `json:"countryName,omitempty"`
		Region      string `json:"region,omitempty"`
		City        string `json:"city,omitempty"`
		ZipCode     string `json:"postalCode,omitempty"`
		TimeZone    string `json:"timezone"`
		Coordinates struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

func NewGeolocationGeoAPIProvider(http *http.Client) (*GeolocationGeoAPIProvider, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}
	return &GeolocationGeoAPIProvider{
		name: name,
		http: http,
	}, nil
}

func (p *GeolocationGeoAPIProvider) Name() string {
	return p.name
}

func (p *GeolocationGeoAPIProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	result := new(APIResult)
	if _, err := p.http.GetWithTimeout(ctx, apiEndpoint, result, nil, nil, lookupTimeout); err != nil {
		return location.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if result.Location.Coordinates.Latitude == "" || result.Location.Coordinates.Longitude == "" {
		return location.Fix{}, location.ErrNoFix
	}

	acc := float64(location.AccuracyUnknown)
	switch {
	case result.Location.ZipCode != "":
		acc = location.AccuracyZip
	case result.Location.City != "":
		acc = location.AccuracyCity
	case result.Location.Region != "":
		acc = location.AccuracyRegion
	case result.Location.CountryCode != "":
		acc = location.AccuracyCountry
	}

	lat, err := strconv.ParseFloat(result.Location.Coordinates.Latitude, 64)
	if err != nil {
		return location.Fix{}, fmt.Errorf("failed to parse latitude from API response: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Location.Coordinates.Longitude, 64)
	if err != nil {
		return location.Fix{}, fmt.Errorf("failed to parse longitude from API response: %w", err)
	}

	return location.Fix{
		Coordinate: location.Coordinate{
			Lat: location.Truncate(lat, location.TruncPrecision),
			Lon: location.Truncate(lon, location.TruncPrecision),
		},
		AccuracyMeters: acc,
		Source:         p.name,
		At:             time.Now(),
	}, nil
}
