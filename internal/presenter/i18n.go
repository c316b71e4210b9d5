// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/vorlif/spreak/localize"

	"github.com/wneessen/waybar-location/internal/geocode"
)

// i18nVars maps lowercased template keys and screen texts to their translatable messages.
var i18nVars = map[string]localize.MsgID{
	"waiting for location...":      WaitingText,
	"location permission required": PermissionRequiredText,
	"location information":         TitleText,
	"you are here":                 HomeMarkerTitle,
	"custom marker":                UserMarkerTitle,
	"address not found":            geocode.AddressNotFound,
	"position":                     "Position",
	"accuracy":                     "Accuracy",
	"source":                       "Source",
	"markers":                      "Markers",
	"sunrise":                      "Sunrise",
	"sunset":                       "Sunset",
	"located":                      "Located",
}
