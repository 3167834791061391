package format

import (
	"testing"

	"sitecompare/pkg/types"
)

func TestValue(t *testing.T) {
	cases := []struct {
		kind string
		in   any
		want string
	}{
		{Count, 1234.4, "1,234"},
		{Count, 98765, "98,765"},
		{Money, 12345.2, "$12,345"},
		{Money, -250.0, "-$250"},
		{Rate, 0.056, "5.6%"},
		{None, "Urban Chic", "Urban Chic"},
		{None, 3.5, "3.5"},
		{Count, nil, NotAvailable},
		{Count, "n/a", "n/a"},
	}
	for _, c := range cases {
		if got := Value(c.kind, c.in); got != c.want {
			t.Fatalf("Value(%q, %v) = %q, want %q", c.kind, c.in, got, c.want)
		}
	}
}

func TestSquareFeet(t *testing.T) {
	if got := SquareFeet(12000); got != "12,000 sq/ft" {
		t.Fatalf("got %q", got)
	}
}

func TestStudyArea(t *testing.T) {
	title, icon := StudyArea(types.StudyAreaOptions{AreaType: "NetworkServiceArea", TravelMode: "Walking", BufferUnits: "Minutes", BufferRadii: []float64{10}})
	if title != "Search Area: 10 Minutes Walking" || icon != "walking" {
		t.Fatalf("walking: %q %q", title, icon)
	}
	title, icon = StudyArea(types.StudyAreaOptions{AreaType: "NetworkServiceArea", TravelMode: "Driving", BufferUnits: "Minutes", BufferRadii: []float64{15}})
	if title != "Search Area: 15 Minutes Driving" || icon != "car" {
		t.Fatalf("driving: %q %q", title, icon)
	}
	title, icon = StudyArea(types.StudyAreaOptions{AreaType: "RingBuffer", BufferUnits: "esriMiles", BufferRadii: []float64{1}})
	if title != "Search Area: 1 Miles" || icon != "rings" {
		t.Fatalf("ring: %q %q", title, icon)
	}
}
