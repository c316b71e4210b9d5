// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
)

const (
	APIEndpoint   = "https://api.beacondb.net/v1/geolocate"
	LookupTimeout = time.Second * 5
	name          = "ichnaea"
)

// GeolocationICHNAEAProvider locates the device by sending the nearby WiFi access points to an
// Ichnaea compatible geolocation API.
type GeolocationICHNAEAProvider struct {
	name   string
	http   *http.Client
	scanFn func() ([]WirelessNetwork, error)
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

type request struct {
	ConsiderIP   bool              `json:"considerIp"`
	Accesspoints []WirelessNetwork `json:"wifiAccessPoints"`
}

func NewGeolocationICHNAEAProvider(http *http.Client) (*GeolocationICHNAEAProvider, error) {
	if http == nil {
		return nil, errors.New("http client is required")
	}
	wlan, err := wifi.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create wifi client: %w", err)
	}
	return &GeolocationICHNAEAProvider{
		name:   name,
		http:   http,
		scanFn: func() ([]WirelessNetwork, error) { return scanAccessPoints(wlan) },
	}, nil
}

func (p *GeolocationICHNAEAProvider) Name() string {
	return p.name
}

// LastKnown scans for WiFi access points and asks the API for the matching location. Without
// visible access points there is nothing to look up and location.ErrNoFix is returned.
func (p *GeolocationICHNAEAProvider) LastKnown(ctx context.Context) (location.Fix, error) {
	networks, err := p.scanFn()
	if err != nil {
		return location.Fix{}, fmt.Errorf("failed to retrieve wifi list: %w", err)
	}
	if len(networks) == 0 {
		return location.Fix{}, location.ErrNoFix
	}

	body := bytes.NewBuffer(nil)
	if err = json.NewEncoder(body).Encode(request{ConsiderIP: false, Accesspoints: networks}); err != nil {
		return location.Fix{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	code, err := p.http.PostWithTimeout(ctx, APIEndpoint, result, body,
		map[string]string{"Content-Type": "application/json"}, LookupTimeout)
	if err != nil {
		return location.Fix{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	// Ichnaea answers 404 if the access points are unknown
	if code == 404 || result.Accuracy == 0 {
		return location.Fix{}, location.ErrNoFix
	}

	return location.Fix{
		Coordinate: location.Coordinate{
			Lat: location.Truncate(result.Location.Latitude, location.TruncPrecision),
			Lon: location.Truncate(result.Location.Longitude, location.TruncPrecision),
		},
		AccuracyMeters: result.Accuracy,
		Source:         p.name,
		At:             time.Now(),
	}, nil
}

func scanAccessPoints(wlan *wifi.Client) ([]WirelessNetwork, error) {
	var list []WirelessNetwork

	ifaces, err := wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		aps, err := wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			if skipSSID(ap.SSID) {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}

// skipSSID reports whether an access point must not be sent to the API. Hidden networks and
// networks that opted out with the _nomap suffix are skipped.
func skipSSID(ssid string) bool {
	return ssid == "" || ssid[0] == '\x00' || strings.HasSuffix(ssid, "_nomap")
}
