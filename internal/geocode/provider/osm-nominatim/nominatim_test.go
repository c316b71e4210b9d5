// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"errors"
	"log/slog"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-location/internal/geocode"
	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/logger"
	"github.com/wneessen/waybar-location/internal/testhelper"
)

const (
	cityExpected      = "Quartier 205, 67, Friedrichstraße, Friedrichstadt, Mitte, Berlin, 10117, Germany"
	cityFile          = "../../../../testdata/nominatim_berlin.json"
	cityFileBrokenLat = "../../../../testdata/nominatim_berlin_brokenlat.json"
	cityFileBrokenLon = "../../../../testdata/nominatim_berlin_brokenlon.json"
	oceanFile         = "../../../../testdata/nominatim_ocean.json"
	testHitTTL        = 1 * time.Second
	testMissTTL       = 1 * time.Second

	villageExpected = "Marshfield"
	villageFile     = "../../../../testdata/nominatim_marshfield.json"

	townExpected = "Otley"
	townFile     = "../../../../testdata/nominatim_otley.json"
)

var (
	cityCoords    = location.Coordinate{Lat: 52.5129, Lon: 13.3910}
	villageCoords = location.Coordinate{Lat: 51.46292, Lon: -2.31850}
	townCoords    = location.Coordinate{Lat: 53.90712, Lon: -1.69404}
	oceanCoords   = location.Coordinate{Lat: 0, Lon: -30}
)

func TestNew(t *testing.T) {
	t.Run("creating a new provider succeeds", func(t *testing.T) {
		coder := testCoder(t)
		if coder == nil {
			t.Fatal("expected a non-nil geocoder")
		}
	})
	t.Run("provider name is correct", func(t *testing.T) {
		coder := testCoder(t)
		if coder.Name() != name {
			t.Errorf("expected provider name to be %q, got %q", name, coder.Name())
		}
	})
}

func TestNominatim_Reverse(t *testing.T) {
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
		if addr.Line() != cityExpected {
			t.Errorf("expected address line to be %q, got %q", cityExpected, addr.Line())
		}
		if addr.Street != "Friedrichstraße" || addr.HouseNumber != "67" {
			t.Errorf("expected street to be Friedrichstraße 67, got %s %s", addr.Street, addr.HouseNumber)
		}
		for _, want := range []string{"lat=52.512900", "lon=13.391000", "accept-language=en", "format=jsonv2"} {
			if !strings.Contains(query, want) {
				t.Errorf("expected query %q to contain %q", query, want)
			}
		}
	})
	t.Run("reverse cached geocoding succeeds", func(t *testing.T) {
		coder := geocode.NewCachedGeocoder(testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, cityFile, 200)),
			testHitTTL, testMissTTL)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		addr, err = coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.CacheHit {
			t.Error("expected cache hit")
		}
	})
	t.Run("reverse geocoding with town set should return the correct city", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, townFile, 200))
		addr, err := coder.Reverse(t.Context(), townCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.EqualFold(addr.City, townExpected) {
			t.Errorf("expected city to be %q, got %q", townExpected, addr.City)
		}
	})
	t.Run("reverse geocoding with village set should return the correct city", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, villageFile, 200))
		addr, err := coder.Reverse(t.Context(), villageCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.EqualFold(addr.City, villageExpected) {
			t.Errorf("expected city to be %q, got %q", villageExpected, addr.City)
		}
	})
	t.Run("reverse geocoding without address is not found", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, oceanFile, 200))
		addr, err := coder.Reverse(t.Context(), oceanCoords)
		if err != nil {
			t.Fatal(err)
		}
		if addr.AddressFound {
			t.Error("expected address not to be found")
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
	t.Run("reverse geocoding fails on NaN latitude response", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, cityFileBrokenLat, 200))
		_, err := coder.Reverse(t.Context(), cityCoords)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse latitude") {
			t.Errorf("expected error to contain 'failed to parse latitude', got %s", err)
		}
	})
	t.Run("reverse geocoding fails on NaN longitude response", func(t *testing.T) {
		coder := testCoderWithRoundtripFunc(t, testhelper.FileResponse(t, cityFileBrokenLon, 200))
		_, err := coder.Reverse(t.Context(), cityCoords)
		if err == nil {
			t.Fatal("expected API request to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse longitude") {
			t.Errorf("expected error to contain 'failed to parse longitude', got %s", err)
		}
	})
}

func TestNominatim_Reverse_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		coder := testCoder(t)
		addr, err := coder.Reverse(t.Context(), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if !addr.AddressFound {
			t.Fatal("expected address to be found")
		}
		if addr.Line() == "" {
			t.Error("expected a non-empty address line")
		}
	})
}

func testCoder(_ *testing.T) geocode.Geocoder {
	testHttpClient := http.New(logger.New(slog.LevelDebug))
	return New(testHttpClient, language.English)
}

func testCoderWithRoundtripFunc(_ *testing.T, fn func(req *stdhttp.Request) (*stdhttp.Response, error)) geocode.Geocoder {
	testHttpClient := http.New(logger.New(slog.LevelDebug))
	testHttpClient.Transport = testhelper.MockRoundTripper{Fn: fn}
	return New(testHttpClient, language.English)
}
