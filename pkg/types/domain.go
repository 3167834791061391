package types

import "time"

// Point is a WGS84 location.
type Point struct {
	// example: -117.1956
	Longitude float64 `json:"longitude" example:"-117.1956"`
	// example: 34.0572
	Latitude float64 `json:"latitude" example:"34.0572"`
}

// Polygon is an Esri-style polygon: a list of rings of [x, y] vertices.
type Polygon struct {
	Rings [][][2]float64 `json:"rings"`
}

// Extent is an axis-aligned bounding box.
type Extent struct {
	XMin float64 `json:"xmin"`
	YMin float64 `json:"ymin"`
	XMax float64 `json:"xmax"`
	YMax float64 `json:"ymax"`
}

// SiteFeature is one candidate site from the feature layer.
type SiteFeature struct {
	// Object id of the feature in its layer.
	// example: 12
	OID int64 `json:"oid" example:"12"`
	// example: Redlands Plaza
	Name string `json:"name" example:"Redlands Plaza"`
	// One of the configured site types; empty means Retail.
	// example: Retail
	SiteType string `json:"site_type" example:"Retail"`
	Status   string `json:"status,omitempty"`
	// Comma separated "street, place".
	// example: 380 New York St, Redlands CA
	Address     string  `json:"address" example:"380 New York St, Redlands CA"`
	Parking     string  `json:"parking,omitempty"`
	SQFT        float64 `json:"sqft"`
	Performance string  `json:"performance,omitempty"`
	Location    Point   `json:"location"`
}

// FeatureItem is the list entry shown for a candidate site.
type FeatureItem struct {
	OID         int64  `json:"oid"`
	Label       string `json:"label"`
	Description string `json:"description"`
	SiteType    string `json:"site_type"`
}

// GoToTarget tells a map view where to navigate.
type GoToTarget struct {
	Point  *Point  `json:"point,omitempty"`
	Extent *Extent `json:"extent,omitempty"`
	Zoom   int     `json:"zoom,omitempty"`
}

// StudyAreaOptions are the enrichment study-area parameters of a site type.
type StudyAreaOptions struct {
	// NetworkServiceArea or RingBuffer.
	AreaType    string    `json:"areaType" yaml:"area_type"`
	TravelMode  string    `json:"travel_mode,omitempty" yaml:"travel_mode,omitempty"`
	BufferUnits string    `json:"bufferUnits" yaml:"buffer_units"`
	BufferRadii []float64 `json:"bufferRadii" yaml:"buffer_radii"`
}

// AnalysisVariable describes one demographic statistic.
type AnalysisVariable struct {
	Label       string   `json:"label" yaml:"label"`
	Field       string   `json:"field" yaml:"field"`
	Description string   `json:"description" yaml:"description"`
	Group       string   `json:"group" yaml:"group"`
	Format      string   `json:"format" yaml:"format"`
	CompareTo   string   `json:"compare_to,omitempty" yaml:"compare_to,omitempty"`
	Types       []string `json:"types" yaml:"types"`
}

// SiteTypeInfo is the wire view of a site type.
type SiteTypeInfo struct {
	Name      string             `json:"name"`
	StudyArea StudyAreaOptions   `json:"study_area"`
	Variables []AnalysisVariable `json:"variables"`
}

// DataRow is a labelled value with an optional change direction.
type DataRow struct {
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Value       string   `json:"value"`
	Change      *float64 `json:"change,omitempty"`
	// up, down or flat; empty when the row has no change.
	Direction string `json:"direction,omitempty"`
}

// StatGroup is a titled group of statistic rows.
type StatGroup struct {
	Label string    `json:"label"`
	Rows  []DataRow `json:"rows"`
}

// SiteResults is the enriched display of a site.
type SiteResults struct {
	Title    string      `json:"title"`
	Icon     string      `json:"icon"`
	Groups   []StatGroup `json:"groups"`
	Geometry Polygon     `json:"geometry"`
	Extent   *Extent     `json:"extent,omitempty"`
}

// SiteError is the error payload rendered into a site's own display.
type SiteError struct {
	// not_authenticated, no_data, service or canceled.
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SiteView is the read-only projection of a candidate site.
type SiteView struct {
	ID        string       `json:"id"`
	State     string       `json:"state"`
	Feature   SiteFeature  `json:"feature"`
	SiteType  string       `json:"site_type"`
	Info      []DataRow    `json:"info"`
	Results   *SiteResults `json:"results,omitempty"`
	Error     *SiteError   `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
