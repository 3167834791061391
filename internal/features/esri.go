package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sitecompare/internal/format"
	"sitecompare/pkg/types"
)

// Layer field names.
const (
	FieldOID         = "OBJECTID"
	FieldName        = "Location_Name"
	FieldSiteType    = "SiteType"
	FieldStatus      = "Status"
	FieldAddress     = "Address"
	FieldParking     = "Parking"
	FieldSQFT        = "SQFT"
	FieldPerformance = "Performance"
)

// OutFields is the attribute list requested from the layer.
var OutFields = []string{
	FieldOID, FieldName, FieldSiteType, FieldStatus,
	FieldAddress, FieldParking, FieldSQFT, FieldPerformance,
}

// featureSet is the Esri JSON FeatureSet shape shared by layer query
// responses and exported files.
type featureSet struct {
	SpatialReference *struct {
		WKID       int `json:"wkid"`
		LatestWKID int `json:"latestWkid"`
	} `json:"spatialReference"`
	Features []struct {
		Attributes map[string]any `json:"attributes"`
		Geometry   *struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		} `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeFeatureSet(b []byte) ([]types.SiteFeature, error) {
	var fs featureSet
	if err := json.Unmarshal(b, &fs); err != nil {
		return nil, fmt.Errorf("decode feature set: %w", err)
	}
	if fs.Error != nil {
		return nil, fmt.Errorf("feature layer error %d: %s", fs.Error.Code, fs.Error.Message)
	}
	mercator := false
	if sr := fs.SpatialReference; sr != nil {
		mercator = sr.WKID == 102100 || sr.WKID == 3857 || sr.LatestWKID == 3857
	}
	out := make([]types.SiteFeature, 0, len(fs.Features))
	for i, f := range fs.Features {
		a := f.Attributes
		oid, ok := format.ToFloat(a[FieldOID])
		if !ok {
			return nil, fmt.Errorf("feature %d: missing %s", i, FieldOID)
		}
		sf := types.SiteFeature{
			OID:         int64(oid),
			Name:        attrString(a[FieldName]),
			SiteType:    attrString(a[FieldSiteType]),
			Status:      attrString(a[FieldStatus]),
			Address:     attrString(a[FieldAddress]),
			Parking:     attrString(a[FieldParking]),
			Performance: attrString(a[FieldPerformance]),
		}
		if v, ok := format.ToFloat(a[FieldSQFT]); ok {
			sf.SQFT = v
		}
		if g := f.Geometry; g != nil && g.X != nil && g.Y != nil {
			sf.Location = types.Point{Longitude: *g.X, Latitude: *g.Y}
			if mercator {
				sf.Location = fromWebMercator(*g.X, *g.Y)
			}
		}
		out = append(out, sf)
	}
	return out, nil
}

func attrString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

const earthRadius = 6378137.0

func fromWebMercator(x, y float64) types.Point {
	lon := x / earthRadius * 180 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180 / math.Pi
	return types.Point{Longitude: lon, Latitude: lat}
}
