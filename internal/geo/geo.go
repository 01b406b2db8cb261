// Package geo answers the point-in-footprint questions the PSPS sweep
// asks: does a shutoff event's de-energized area cover a field?
package geo

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"

	"github.com/sagebrush-ag/fireline/internal/model"
)

// ContainsPoint reports whether the GeoJSON geometry contains the
// given coordinate. Polygon holes are respected; only Polygon and
// MultiPolygon geometries are supported.
func ContainsPoint(raw json.RawMessage, lat, lon float64) (bool, error) {
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return false, eris.Wrap(err, "geo: decode geojson")
	}

	// GeoJSON coordinates are lon, lat.
	point := geom.Coord{lon, lat}

	switch t := g.(type) {
	case *geom.Polygon:
		return polygonContains(t, point), nil
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			if polygonContains(t.Polygon(i), point) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, eris.Errorf("geo: unsupported geometry type %T", g)
}

func polygonContains(p *geom.Polygon, point geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), point, p.LinearRing(0).FlatCoords()) {
		return false
	}
	// Any interior ring containing the point is a hole.
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), point, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// EventCoversField decides whether a shutoff event affects a field at
// the given coordinate. When the event carries a polygon footprint the
// answer is geometric; malformed geometry and county-only events fall
// back to treating any event with listed counties as covering the
// field. An event with neither footprint covers nothing.
func EventCoversField(ev *model.PSPSEvent, lat, lon float64) bool {
	if len(ev.Geometry) > 0 {
		inside, err := ContainsPoint(ev.Geometry, lat, lon)
		if err == nil {
			return inside
		}
	}
	return len(ev.Counties) > 0
}
