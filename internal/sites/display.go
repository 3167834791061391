package sites

import (
	"math"
	"strings"

	"sitecompare/internal/enrich"
	"sitecompare/internal/format"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

// Change directions of a statistic row.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// InfoRows builds the site information rows shown before enrichment.
func InfoRows(f types.SiteFeature, siteType string) []types.DataRow {
	parts := strings.Split(f.Address, ",")
	part := func(i int) string {
		if i < len(parts) {
			if p := strings.TrimSpace(parts[i]); p != "" {
				return p
			}
		}
		return format.NotAvailable
	}
	orNA := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return format.NotAvailable
		}
		return s
	}
	size := format.NotAvailable
	if f.SQFT > 0 {
		size = format.SquareFeet(f.SQFT)
	}
	return []types.DataRow{
		{Label: "Address", Description: "location address", Value: part(0)},
		{Label: "Place", Description: "location place", Value: part(1)},
		{Label: "Site Type", Description: "type of commercial site", Value: orNA(siteType)},
		{Label: "Size", Description: "available area", Value: size},
		{Label: "Parking", Description: "available parking spots", Value: orNA(f.Parking)},
	}
}

// BuildResults renders an enrichment result for profile p.
func BuildResults(p sitetype.Profile, r enrich.Result) types.SiteResults {
	title, icon := format.StudyArea(p.StudyArea)
	out := types.SiteResults{Title: title, Icon: icon, Geometry: r.Geometry, Extent: ExtentOf(r.Geometry)}

	index := map[string]int{}
	for _, v := range p.Variables {
		gi, ok := index[v.Group]
		if !ok {
			gi = len(out.Groups)
			index[v.Group] = gi
			out.Groups = append(out.Groups, types.StatGroup{Label: v.Group})
		}
		out.Groups[gi].Rows = append(out.Groups[gi].Rows, statRow(v, r.Attributes))
	}
	return out
}

func statRow(v types.AnalysisVariable, attrs map[string]any) types.DataRow {
	row := types.DataRow{Label: v.Label, Description: v.Description}
	raw, ok := attrs[fieldName(v.Field)]
	if !ok || raw == nil {
		row.Value = format.NotAvailable
		return row
	}
	value, numeric := format.ToFloat(raw)
	if !numeric {
		row.Value = format.Value(v.Format, raw)
		return row
	}
	if v.Format == format.Rate {
		value /= 100
	}
	row.Value = format.Value(v.Format, value)

	if v.CompareTo != "" {
		change := 0.0
		if cv, ok := format.ToFloat(attrs[v.CompareTo]); ok && cv != 0 {
			change = value - cv
		}
		row.Change = &change
		row.Direction = direction(change)
	}
	return row
}

// fieldName strips the data collection prefix from a variable id.
func fieldName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}

func direction(change float64) string {
	switch {
	case change > 0:
		return DirectionUp
	case change < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// ExtentOf returns the bounding box of every vertex of g, or nil when g has
// none.
func ExtentOf(g types.Polygon) *types.Extent {
	e := types.Extent{XMin: math.Inf(1), YMin: math.Inf(1), XMax: math.Inf(-1), YMax: math.Inf(-1)}
	n := 0
	for _, ring := range g.Rings {
		for _, pt := range ring {
			e.XMin = math.Min(e.XMin, pt[0])
			e.YMin = math.Min(e.YMin, pt[1])
			e.XMax = math.Max(e.XMax, pt[0])
			e.YMax = math.Max(e.YMax, pt[1])
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &e
}
