// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/vorlif/humanize"
	"github.com/vorlif/humanize/locale/de"
	"github.com/vorlif/spreak"

	"github.com/wneessen/waybar-location/internal/config"
	"github.com/wneessen/waybar-location/internal/location"
)

// MarkerView wraps a Marker with its position relative to the home marker.
type MarkerView struct {
	Marker

	Distance  float64
	Direction string
}

type TemplateContext struct {
	View

	Latitude    float64
	Longitude   float64
	Accuracy    float64
	Source      string
	FixTime     time.Time
	UpdateTime  time.Time
	SunriseTime time.Time
	SunsetTime  time.Time
	MarkerCount int
	MarkerViews []MarkerView
}

type Presenter struct {
	TextTemplate       *template.Template
	AltTextTemplate    *template.Template
	TooltipTemplate    *template.Template
	AltTooltipTemplate *template.Template

	humanizer *humanize.Humanizer
	localizer *spreak.Localizer
}

func New(conf *config.Config, loc *spreak.Localizer) (*Presenter, error) {
	if conf == nil {
		return nil, fmt.Errorf("config is required")
	}
	if loc == nil {
		return nil, fmt.Errorf("localizer is required")
	}
	collection, err := humanize.New(humanize.WithLocale(de.New()))
	if err != nil {
		return nil, fmt.Errorf("failed to create humanizer: %w", err)
	}
	pres := &Presenter{
		localizer: loc,
		humanizer: collection.CreateHumanizer(loc.Language()),
	}

	templates := []struct {
		name   string
		source string
		target **template.Template
	}{
		{"text", conf.Templates.Text, &pres.TextTemplate},
		{"alt_text", conf.Templates.AltText, &pres.AltTextTemplate},
		{"tooltip", conf.Templates.Tooltip, &pres.TooltipTemplate},
		{"alt_tooltip", conf.Templates.AltTooltip, &pres.AltTooltipTemplate},
	}
	for _, tpl := range templates {
		parsed, err := template.New(tpl.name).Funcs(pres.templateFuncMap()).Parse(tpl.source)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", tpl.name, err)
		}
		*tpl.target = parsed
	}

	// Execute all templates once against both screen states so that broken templates are
	// reported at startup and not on the first location fix.
	for _, view := range []View{sampleWaitingView(), sampleLocatedView()} {
		if _, err = pres.Render(pres.BuildContext(view, time.Time{}, time.Time{})); err != nil {
			return nil, err
		}
	}

	return pres, nil
}

// BuildContext turns a view into the data that is handed to the templates.
func (p *Presenter) BuildContext(view View, sunrise, sunset time.Time) TemplateContext {
	tplCtx := TemplateContext{
		View:        view,
		UpdateTime:  time.Now(),
		SunriseTime: sunrise,
		SunsetTime:  sunset,
		MarkerCount: len(view.Markers),
		MarkerViews: make([]MarkerView, 0, len(view.Markers)),
	}
	if view.Located {
		tplCtx.Latitude = view.Fix.Lat
		tplCtx.Longitude = view.Fix.Lon
		tplCtx.Accuracy = view.Fix.AccuracyMeters
		tplCtx.Source = view.Fix.Source
		tplCtx.FixTime = view.Fix.At
	}
	for _, marker := range view.Markers {
		mv := MarkerView{Marker: marker}
		if view.Home != nil {
			mv.Distance = view.Home.Position.Distance(marker.Position)
			mv.Direction = p.degToString(view.Home.Position.Bearing(marker.Position))
		}
		tplCtx.MarkerViews = append(tplCtx.MarkerViews, mv)
	}

	return tplCtx
}

// Render executes all templates and returns the results keyed by template name.
func (p *Presenter) Render(tplCtx TemplateContext) (map[string]string, error) {
	templates := []struct {
		name string
		tpl  *template.Template
	}{
		{"text", p.TextTemplate},
		{"alt_text", p.AltTextTemplate},
		{"tooltip", p.TooltipTemplate},
		{"alt_tooltip", p.AltTooltipTemplate},
	}

	output := make(map[string]string, len(templates))
	for _, t := range templates {
		buf := bytes.NewBuffer(nil)
		if err := t.tpl.Execute(buf, tplCtx); err != nil {
			return nil, fmt.Errorf("failed to render %s template: %w", t.name, err)
		}
		output[t.name] = buf.String()
	}
	return output, nil
}

func sampleWaitingView() View {
	return NewScreen(DefaultZoom).View()
}

func sampleLocatedView() View {
	screen := NewScreen(DefaultZoom)
	screen.SetPermission(true)
	gen, _ := screen.SetLocation(location.Fix{
		Coordinate:     location.Coordinate{Lat: 52.5129, Lon: 13.3910},
		AccuracyMeters: 10,
		Source:         "sample",
		At:             time.Now(),
	})
	screen.SetAddress(gen, "Friedrichstraße 67, 10117 Berlin")
	_, _ = screen.Tap(location.Coordinate{Lat: 52.5163, Lon: 13.3777})
	return screen.View()
}
