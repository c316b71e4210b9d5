// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/wneessen/waybar-location/internal/config"
	"github.com/wneessen/waybar-location/internal/geocode"
	geocodeearth "github.com/wneessen/waybar-location/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/waybar-location/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/waybar-location/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/waybar-location/internal/http"
	"github.com/wneessen/waybar-location/internal/location"
	"github.com/wneessen/waybar-location/internal/location/provider/geoapi"
	"github.com/wneessen/waybar-location/internal/location/provider/geoip"
	"github.com/wneessen/waybar-location/internal/location/provider/geolocation_file"
	"github.com/wneessen/waybar-location/internal/location/provider/gpsd"
	"github.com/wneessen/waybar-location/internal/location/provider/ichnaea"
	"github.com/wneessen/waybar-location/internal/logger"
	"github.com/wneessen/waybar-location/internal/permission"
)

const (
	cacheHitTTL  = time.Hour * 12
	cacheMissTTL = time.Minute * 10
)

func (s *Service) selectLocationProviders() ([]location.Provider, error) {
	httpClient := http.New(s.logger)
	var provider []location.Provider

	if !s.config.GeoLocation.DisableGeolocationFile {
		provider = append(provider, geolocation_file.NewGeolocationFileProvider(s.config.GeoLocation.File))
	}

	if !s.config.GeoLocation.DisableGPSD {
		provider = append(provider, gpsd.NewGeolocationGPSDProvider(s.config.GeoLocation.GPSDHost,
			strconv.Itoa(s.config.GeoLocation.GPSDPort)))
	}

	if !s.config.GeoLocation.DisableGeoIP {
		gip, err := geoip.NewGeolocationGeoIPProvider(httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoIP provider: %w", err)
		}
		provider = append(provider, gip)
	}

	if !s.config.GeoLocation.DisableGeoAPI {
		gap, err := geoapi.NewGeolocationGeoAPIProvider(httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create GeoAPI provider: %w", err)
		}
		provider = append(provider, gap)
	}

	if !s.config.GeoLocation.DisableICHNAEA {
		mls, err := ichnaea.NewGeolocationICHNAEAProvider(httpClient)
		if err != nil {
			s.logger.Error("failed to create ICHNAEA provider", logger.Err(err))
		} else {
			provider = append(provider, mls)
		}
	}
	if len(provider) == 0 {
		return nil, fmt.Errorf("no geolocation providers enabled")
	}

	return provider, nil
}

func (s *Service) selectGeocodeProvider(conf *config.Config, log *logger.Logger, lang language.Tag) (geocode.Geocoder, error) {
	var geocoder geocode.Geocoder

	switch strings.ToLower(conf.GeoCoder.Provider) {
	case "nominatim":
		geocoder = geocode.NewCachedGeocoder(nominatim.New(http.New(log), lang), cacheHitTTL, cacheMissTTL)
	case "opencage":
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("opencage geocoder requires an API key")
		}
		geocoder = geocode.NewCachedGeocoder(opencage.New(http.New(log), lang, conf.GeoCoder.APIKey),
			cacheHitTTL, cacheMissTTL)
	case "geocode-earth":
		if conf.GeoCoder.APIKey == "" {
			return nil, fmt.Errorf("geocode-earth geocoder requires an API key")
		}
		geocoder = geocode.NewCachedGeocoder(geocodeearth.New(http.New(log), lang, conf.GeoCoder.APIKey),
			cacheHitTTL, cacheMissTTL)
	default:
		return nil, fmt.Errorf("unsupported geocoder type: %s", conf.GeoCoder.Provider)
	}

	return geocoder, nil
}

func (s *Service) selectPermissionBackend() (permission.Backend, error) {
	switch strings.ToLower(s.config.Permission.Mode) {
	case config.PermissionGeoClue:
		return permission.NewGeoClue(s.config.Permission.Agent), nil
	case config.PermissionGranted:
		return permission.NewStatic(true), nil
	case config.PermissionDenied:
		return permission.NewStatic(false), nil
	default:
		return nil, fmt.Errorf("unsupported permission mode: %s", s.config.Permission.Mode)
	}
}
