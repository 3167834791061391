package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecompare/internal/enrich"
	"sitecompare/internal/format"
	"sitecompare/internal/sitetype"
	"sitecompare/pkg/types"
)

func TestInfoRows_MissingValuesAreNA(t *testing.T) {
	rows := InfoRows(types.SiteFeature{Address: "1 Main St"}, "")
	require.Len(t, rows, 5)
	assert.Equal(t, "1 Main St", rows[0].Value)
	for _, r := range rows[1:] {
		assert.Equal(t, format.NotAvailable, r.Value, r.Label)
	}

	rows = InfoRows(types.SiteFeature{Address: "380 New York St, Redlands CA", SQFT: 12000, Parking: "Street"}, "Office")
	assert.Equal(t, []string{"380 New York St", "Redlands CA", "Office", "12,000 sq/ft", "Street"},
		[]string{rows[0].Value, rows[1].Value, rows[2].Value, rows[3].Value, rows[4].Value})
}

func TestBuildResults_GroupsRatesAndChanges(t *testing.T) {
	p := sitetype.Profile{
		SiteType:  "Retail",
		StudyArea: types.StudyAreaOptions{AreaType: sitetype.AreaNetworkService, TravelMode: "Walking", BufferUnits: "Minutes", BufferRadii: []float64{10}},
		Variables: []types.AnalysisVariable{
			{Label: "Pop", Field: "a.POP", Group: "Population", Format: format.Count},
			{Label: "Income", Field: "b.INC_FY", Group: "Income", Format: format.Money, CompareTo: "INC_CY"},
			{Label: "Unemployment", Field: "c.UNEMP", Group: "Population", Format: format.Rate},
			{Label: "Value", Field: "d.VAL_FY", Group: "Income", Format: format.Money, CompareTo: "VAL_CY"},
			{Label: "Missing", Field: "e.NOPE", Group: "Other", Format: format.Count},
		},
	}
	r := BuildResults(p, enrich.Result{
		Geometry: types.Polygon{Rings: [][][2]float64{{{1, 5}, {3, 2}, {2, 7}, {1, 5}}}},
		Attributes: map[string]any{
			"POP": float64(1234), "INC_FY": float64(60000), "INC_CY": float64(65000),
			"UNEMP": float64(5.6), "VAL_FY": float64(300000),
		},
	})

	assert.Equal(t, "Search Area: 10 Minutes Walking", r.Title)
	assert.Equal(t, "walking", r.Icon)
	require.Len(t, r.Groups, 3)
	assert.Equal(t, []string{"Population", "Income", "Other"}, []string{r.Groups[0].Label, r.Groups[1].Label, r.Groups[2].Label})

	pop := r.Groups[0].Rows
	require.Len(t, pop, 2)
	assert.Equal(t, "1,234", pop[0].Value)
	assert.Nil(t, pop[0].Change)
	assert.Equal(t, "5.6%", pop[1].Value)

	inc := r.Groups[1].Rows
	require.Len(t, inc, 2)
	assert.Equal(t, "$60,000", inc[0].Value)
	require.NotNil(t, inc[0].Change)
	assert.Equal(t, -5000.0, *inc[0].Change)
	assert.Equal(t, DirectionDown, inc[0].Direction)
	require.NotNil(t, inc[1].Change, "missing compare value yields a zero change")
	assert.Equal(t, 0.0, *inc[1].Change)
	assert.Equal(t, DirectionFlat, inc[1].Direction)

	assert.Equal(t, format.NotAvailable, r.Groups[2].Rows[0].Value)
	assert.Equal(t, &types.Extent{XMin: 1, YMin: 2, XMax: 3, YMax: 7}, r.Extent)
}

func TestBuildResults_RetailProfileGroups(t *testing.T) {
	p, err := sitetype.Default().Profile("Retail")
	require.NoError(t, err)
	r := BuildResults(p, sampleResult())
	var labels []string
	n := 0
	for _, g := range r.Groups {
		labels = append(labels, g.Label)
		n += len(g.Rows)
	}
	assert.Equal(t, []string{"Population", "Businesses", "Housing", "Income", "Education"}, labels)
	assert.Equal(t, len(p.Variables), n)
	assert.Equal(t, "12,345", r.Groups[0].Rows[0].Value)
	housing := r.Groups[2].Rows
	require.NotNil(t, housing[2].Change)
	assert.Equal(t, DirectionUp, housing[2].Direction)
}

func TestExtentOfEmpty(t *testing.T) {
	assert.Nil(t, ExtentOf(types.Polygon{}))
	assert.Nil(t, ExtentOf(types.Polygon{Rings: [][][2]float64{{}}}))
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "TOTPOP_CY", fieldName("KeyGlobalFacts.TOTPOP_CY"))
	assert.Equal(t, "RAW", fieldName("RAW"))
}
