// Package format renders statistic values and study-area labels for display.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"sitecompare/pkg/types"
)

// Value formats understood by Value.
const (
	Count = "count"
	Rate  = "rate"
	Money = "money"
	None  = "none"
)

// NotAvailable is shown for missing values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.AmericanEnglish)

// Value formats v according to kind. Rate values are fractions (0.05 is 5.0%).
// Unknown kinds behave like None.
func Value(kind string, v any) string {
	if v == nil {
		return NotAvailable
	}
	f, isNum := ToFloat(v)
	switch kind {
	case Count:
		if !isNum {
			return fmt.Sprint(v)
		}
		return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(0)))
	case Rate:
		if !isNum {
			return fmt.Sprint(v)
		}
		return printer.Sprint(number.Percent(f, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	case Money:
		if !isNum {
			return fmt.Sprint(v)
		}
		sign := ""
		if f < 0 {
			sign = "-"
			f = -f
		}
		return sign + "$" + printer.Sprint(number.Decimal(f, number.MaxFractionDigits(0)))
	default:
		if isNum {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprint(v)
	}
}

// SquareFeet renders an area like "12,000 sq/ft".
func SquareFeet(v float64) string {
	return Value(Count, v) + " sq/ft"
}

// ToFloat converts JSON-decoded numbers to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// StudyArea returns the results title and icon for a study area.
// Network service areas use a walking or car icon, ring buffers use rings.
func StudyArea(sa types.StudyAreaOptions) (title, icon string) {
	radius := "?"
	if len(sa.BufferRadii) > 0 {
		radius = strconv.FormatFloat(sa.BufferRadii[0], 'f', -1, 64)
	}
	if sa.AreaType == "NetworkServiceArea" {
		icon = "car"
		if sa.TravelMode == "Walking" {
			icon = "walking"
		}
		return fmt.Sprintf("Search Area: %s %s %s", radius, sa.BufferUnits, sa.TravelMode), icon
	}
	return fmt.Sprintf("Search Area: %s %s", radius, strings.TrimPrefix(sa.BufferUnits, "esri")), "rings"
}
