// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
)

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    p.timeFormat,
		"localizedTime": p.localizedTime,
		"naturalTime":   p.naturalTime,
		"floatFormat":   p.floatFormat,
		"distance":      p.distance,
		"dirIcon":       p.dirIcon,
		"emoji":         emojiWithSpace,
		"loc":           p.loc,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

func (p *Presenter) loc(val string) string {
	if raw, ok := i18nVars[strings.ToLower(val)]; ok {
		return p.localizer.Get(raw)
	}
	return val
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

func (p *Presenter) naturalTime(val time.Time) string {
	if val.IsZero() {
		return ""
	}
	return p.humanizer.NaturalTime(val)
}

func (p *Presenter) timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func (p *Presenter) floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}

// distance formats meters as m below one kilometer and as km with one decimal above.
func (p *Presenter) distance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// degToString converts a bearing in degrees to one of the eight compass points.
func (p *Presenter) degToString(deg float64) string {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int((deg+22.5)/45) % len(compassPoints)
	return compassPoints[idx]
}

func (p *Presenter) dirIcon(dir string) string {
	switch strings.ToUpper(dir) {
	case "N":
		return "↑"
	case "NE":
		return "↗"
	case "E":
		return "→"
	case "SE":
		return "↘"
	case "S":
		return "↓"
	case "SW":
		return "↙"
	case "W":
		return "←"
	case "NW":
		return "↖"
	default:
		return ""
	}
}

// emojiWithSpace pads an emoji so that wide glyphs do not overlap the following text.
func emojiWithSpace(emoji string) string {
	width := runewidth.StringWidth(emoji)
	if width < 2 {
		return emoji + " "
	}
	return emoji + strings.Repeat(" ", width-1)
}
