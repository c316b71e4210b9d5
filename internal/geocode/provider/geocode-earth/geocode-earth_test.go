// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-location/internal/geocode"
	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/logger"
	"github.com/wneessen/waybar-location/internal/testhelper"
)

const (
	cityExpected = "Friedrichstraße 67, Berlin, Germany"
	cityFile     = "../../../../testdata/geocodeearth_berlin.json"
	emptyFile    = "../../../../testdata/geocodeearth_empty.json"
	testAPIKey   = "ge-0123456789abcdef"
)

var cityCoords = location.Coordinate{Lat: 52.5129, Lon: 13.3910}

func TestNew(t *testing.T) {
	coder := testCoderWithRoundtripFunc(t, nil)
	if coder == nil {
		t.Fatal("expected a non-nil geocoder")
	}
	if coder.Name() != name {
		t.Errorf("expected provider name to be %q, got %q", name, coder.Name())
	}
}

func TestGeocodeEarth_Reverse(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		var query string
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			query = req.URL.RawQuery
			return testhelper.FileResponse(t, cityFile, 200)(req)
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if !strings.EqualFold(addr.DisplayName, cityExpected) {
			t.Errorf("expected address to be %q, got %q", cityExpected, addr.DisplayName)
		}
		if addr.Latitude != cityCoords.Lat || addr.Longitude != cityCoords.Lon {
			t.Errorf("expected address coordinates to match the request, got %f,%f", addr.Latitude,
				addr.Longitude)
		}
		for _, want := range []string{"api_key=" + testAPIKey, "point.lat=52.512900", "point.lon=13.391000"} {
			if !strings.Contains(query, want) {
				t.Errorf("expected query %q to contain %q", query, want)
			}
		}
	})
	t.Run("reverse geocoding without features is not found", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, emptyFile, 200))
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if addr.AddressFound {
			t.Error("expected address not to be found")
		}
	})
	t.Run("non-200 response fails", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, emptyFile, 401))
		_, err := coder.Reverse(t.Context(), cityCoords)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		if !strings.Contains(err.Error(), "non-positive response code") {
			t.Errorf("expected error to contain 'non-positive response code', got %s", err)
		}
	})
	t.Run("reverse geocoding fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}
		coder := testCoderWithRoundtripFunc(t, rtFn)
		if _, err := coder.Reverse(t.Context(), cityCoords); err == nil {
			t.Fatal("expected API request to fail")
		}
	})
}

func TestGeocodeEarth_Reverse_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	apikey := os.Getenv("GEOCODEEARTH_APIKEY")
	if apikey == "" {
		t.Skip("no geocode.earth API key set, skipping tests")
	}
	coder := New(http.New(logger.New(slog.LevelDebug)), language.English, apikey)
	addr, err := coder.Reverse(t.Context(), cityCoords)
	if err != nil {
		t.Fatal(err)
	}
	if !addr.AddressFound {
		t.Fatal("expected address to be found")
	}
}

func testCoderWithRoundtripFunc(_ *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) geocode.Geocoder {
	testHttpClient := http.New(logger.New(slog.LevelDebug))
	testHttpClient.Transport = testhelper.MockRoundTripper{Fn: fn}
	return New(testHttpClient, language.English, testAPIKey)
}
