// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	FeatureKindCamera = "camera"
	FeatureKindHome   = "home"
	FeatureKindMarker = "marker"
)

// Map returns the map payload for the external map widget: the camera, the home marker and the
// user markers in insertion order. It returns nil while the map is hidden.
func (p *Presenter) Map(view View) *geojson.FeatureCollection {
	if !view.ShowMap {
		return nil
	}

	fc := geojson.NewFeatureCollection()
	var points orb.MultiPoint

	if view.Camera != nil {
		camera := geojson.NewFeature(orb.Point{view.Camera.Center.Lon, view.Camera.Center.Lat})
		camera.Properties["kind"] = FeatureKindCamera
		camera.Properties["zoom"] = view.Camera.Zoom
		fc.Append(camera)
	}
	if view.Home != nil {
		fc.Append(p.markerFeature(*view.Home, FeatureKindHome))
		points = append(points, orb.Point{view.Home.Position.Lon, view.Home.Position.Lat})
	}
	for _, marker := range view.Markers {
		fc.Append(p.markerFeature(marker, FeatureKindMarker))
		points = append(points, orb.Point{marker.Position.Lon, marker.Position.Lat})
	}
	if len(points) > 0 {
		fc.BBox = geojson.NewBBox(points.Bound())
	}

	return fc
}

func (p *Presenter) markerFeature(marker Marker, kind string) *geojson.Feature {
	feature := geojson.NewFeature(orb.Point{marker.Position.Lon, marker.Position.Lat})
	feature.ID = marker.ID.String()
	feature.Properties["kind"] = kind
	feature.Properties["title"] = p.loc(marker.Title)
	return feature
}
