// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

const (
	configEnv = "WAYBARLOCATION"

	DefaultTextTpl    = `{{if .ShowMap}}{{emoji "📍"}}{{loc .Address}}{{else}}{{loc .Message}}{{end}}`
	DefaultAltTextTpl = `{{if .Located}}{{emoji "📍"}}{{floatFormat .Latitude 4}}, ` +
		`{{floatFormat .Longitude 4}}{{else}}{{loc .Message}}{{end}}`
	DefaultTooltipTpl = `{{loc .Title}}
{{loc .Address}}{{if .ShowMap}}
{{loc "position"}}: {{floatFormat .Latitude 4}}, {{floatFormat .Longitude 4}} (± {{distance .Accuracy}})
{{loc "source"}}: {{.Source}}

🌅 {{localizedTime .SunriseTime}} • 🌇 {{localizedTime .SunsetTime}}{{range .MarkerViews}}
{{dirIcon .Direction}} {{loc .Title}}: {{distance .Distance}} {{.Direction}}{{end}}{{else}}
{{loc .Message}}{{end}}`
	DefaultAltTooltipTpl = `{{loc .Title}}{{if .ShowMap}}
{{loc "you are here"}}: {{floatFormat .Latitude 4}}, {{floatFormat .Longitude 4}}{{range .MarkerViews}}
{{loc .Title}}: {{floatFormat .Position.Lat 4}}, {{floatFormat .Position.Lon 4}}{{end}}{{else}}
{{loc .Message}}{{end}}`

	PermissionGeoClue = "geoclue"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"

	// MaxZoom is the highest zoom level of common web map tile sets.
	MaxZoom = 22
)

// Config represents the application's configuration structure.
type Config struct {
	Locale   string     `fig:"locale"`
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	Intervals struct {
		Output time.Duration `fig:"output" default:"30s"`
	} `fig:"intervals"`

	Templates struct {
		Text       string `fig:"text"`
		AltText    string `fig:"alt_text"`
		Tooltip    string `fig:"tooltip"`
		AltTooltip string `fig:"alt_tooltip"`
	} `fig:"templates"`

	Permission struct {
		// Allowed values: geoclue, granted, denied
		Mode  string `fig:"mode" default:"geoclue"`
		Agent string `fig:"agent"`
	} `fig:"permission"`

	GeoLocation struct {
		File                   string `fig:"file"`
		GPSDHost               string `fig:"gpsd_host" default:"localhost"`
		GPSDPort               int    `fig:"gpsd_port" default:"2947"`
		DisableGeoIP           bool   `fig:"disable_geoip"`
		DisableGeoAPI          bool   `fig:"disable_geoapi"`
		DisableGeolocationFile bool   `fig:"disable_geolocation_file"`
		DisableGPSD            bool   `fig:"disable_gpsd"`
		DisableICHNAEA         bool   `fig:"disable_ichnaea"`
	} `fig:"geolocation"`

	GeoCoder struct {
		// Allowed values: nominatim, opencage, geocode-earth
		Provider string `fig:"provider" default:"nominatim"`
		APIKey   string `fig:"apikey"`
	} `fig:"geocoder"`

	Map struct {
		Zoom        float64 `fig:"zoom" default:"15"`
		EmitGeoJSON bool    `fig:"emit_geojson"`
	} `fig:"map"`
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	if c.Locale == "" {
		c.Locale = getLocale()
	}
	if c.Intervals.Output <= 0 {
		return fmt.Errorf("invalid output interval: %s", c.Intervals.Output)
	}
	if c.Templates.Text == "" {
		c.Templates.Text = DefaultTextTpl
	}
	if c.Templates.AltText == "" {
		c.Templates.AltText = DefaultAltTextTpl
	}
	if c.Templates.Tooltip == "" {
		c.Templates.Tooltip = DefaultTooltipTpl
	}
	if c.Templates.AltTooltip == "" {
		c.Templates.AltTooltip = DefaultAltTooltipTpl
	}

	c.Permission.Mode = strings.ToLower(c.Permission.Mode)
	switch c.Permission.Mode {
	case PermissionGeoClue, PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("invalid permission mode: %s", c.Permission.Mode)
	}

	if c.GeoLocation.File == "" {
		home, _ := os.UserHomeDir()
		c.GeoLocation.File = filepath.Join(home, ".config", "waybar-location", "geolocation")
	}
	if c.GeoLocation.GPSDPort < 1 || c.GeoLocation.GPSDPort > 65535 {
		return fmt.Errorf("invalid gpsd port: %d", c.GeoLocation.GPSDPort)
	}

	c.GeoCoder.Provider = strings.ToLower(c.GeoCoder.Provider)
	switch c.GeoCoder.Provider {
	case "nominatim":
	case "opencage", "geocode-earth":
		if c.GeoCoder.APIKey == "" {
			return fmt.Errorf("%s geocoder requires an API key", c.GeoCoder.Provider)
		}
	default:
		return fmt.Errorf("unsupported geocoder: %s", c.GeoCoder.Provider)
	}

	if c.Map.Zoom < 1 || c.Map.Zoom > MaxZoom {
		return fmt.Errorf("invalid map zoom level: %.1f", c.Map.Zoom)
	}

	return nil
}

func getLocale() string {
	locale := os.Getenv("LC_MESSAGES")
	if idx := strings.Index(locale, "."); idx != -1 {
		lang := locale[:idx]
		return strings.ReplaceAll(lang, "_", "-")
	}
	return locale
}
