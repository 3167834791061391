package sitetype

import "sitecompare/pkg/types"

var (
	allTypes   = []string{"Retail", "Office", "Industrial", "Mixed-Use"}
	retailish  = []string{"Retail", "Mixed-Use"}
	workforce  = []string{"Retail", "Office", "Industrial"}
	officeOnly = []string{"Office"}
	industrial = []string{"Industrial"}
	mixedUse   = []string{"Mixed-Use"}
)

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Order: append([]string(nil), allTypes...),
		StudyAreas: map[string]types.StudyAreaOptions{
			"Retail":     {AreaType: AreaNetworkService, TravelMode: "Walking", BufferUnits: "Minutes", BufferRadii: []float64{10}},
			"Office":     {AreaType: AreaNetworkService, TravelMode: "Driving", BufferUnits: "Minutes", BufferRadii: []float64{15}},
			"Industrial": {AreaType: AreaNetworkService, TravelMode: "Driving", BufferUnits: "Minutes", BufferRadii: []float64{10}},
			"Mixed-Use":  {AreaType: AreaRingBuffer, BufferUnits: "esriMiles", BufferRadii: []float64{1}},
		},
		Variables: defaultVariables(),
	}
}

func defaultVariables() []types.AnalysisVariable {
	return []types.AnalysisVariable{
		{Label: "Daytime Population", Field: "DaytimePopulation.DPOP_CY", Description: "2021 Total Daytime Population (Esri)", Group: "Population", Format: "count", Types: allTypes},
		{Label: "Unemployment Rate", Field: "EmploymentUnemployment.UNEMPRT_CY", Description: "Current-year estimate of the rate of unemployed persons aged 16 and older as a percentage of the civilian labor force (Esri)", Group: "Population", Format: "rate", Types: allTypes},
		{Label: "Total Businesses", Field: "businesses.N01_BUS", Description: "Total Businesses (NAICS)", Group: "Businesses", Format: "count", Types: allTypes},
		{Label: "Total Housing Units", Field: "HistoricalHousing.TOTHU_CY", Description: "2021 Total Housing Units (Esri)", Group: "Housing", Format: "count", Types: allTypes},
		{Label: "Median Home Value 2021", Field: "KeyUSFacts.MEDVAL_CY", Description: "Current-year estimate of median home value (Esri)", Group: "Housing", Format: "money", Types: allTypes},
		{Label: "Median Home Value 2026", Field: "KeyUSFacts.MEDVAL_FY", Description: "Five-year forecast of median home value (Esri)", Group: "Housing", Format: "money", CompareTo: "MEDVAL_CY", Types: allTypes},
		{Label: "Median Household Income 2021", Field: "Health.MEDHINC_CY", Description: "Current-year estimate of median household income (Esri)", Group: "Income", Format: "money", Types: allTypes},
		{Label: "Median Household Income 2026", Field: "KeyUSFacts.MEDHINC_FY", Description: "Five-year forecast of median household income (Esri)", Group: "Income", Format: "money", CompareTo: "MEDHINC_CY", Types: allTypes},
		{Label: "Annual Budget Expenditures", Field: "SpendingTotal.X1001_X", Description: "Expenses annually (Esri & Bureau of Labor Statistics)", Group: "Income", Format: "money", Types: retailish},
		{Label: "Median Disposable Income", Field: "Wealth.MEDDI_CY", Description: "Current-year estimate of median disposable income (Esri)", Group: "Income", Format: "money", Types: retailish},
		{Label: "Retail Goods (Monthly)", Field: "spendingFactsForMobileApps.X15001_X_A_calc", Description: "Total expenditures on retail goods per month (Esri & Bureau of Labor Statistics)", Group: "Income", Format: "money", Types: retailish},
		{Label: "Restaurant (Monthly)", Field: "spendingFactsForMobileApps.X1131_X_A_calc", Description: "Total expenditures on restaurants per month (Esri & Bureau of Labor Statistics)", Group: "Income", Format: "money", Types: retailish},
		{Label: "High School", Field: "educationalattainment.HSGRAD_CY", Description: "Population age 25+: High School Diploma", Group: "Education", Format: "count", Types: workforce},
		{Label: "Bachelors", Field: "educationalattainment.BACHDEG_CY", Description: "Population age 25+: Bachelors Degree (Esri)", Group: "Education", Format: "count", Types: workforce},
		{Label: "Graduate", Field: "educationalattainment.GRADDEG_CY", Description: "Population age 25+: Graduate/Professional Degree (Esri)", Group: "Education", Format: "count", Types: workforce},
		{Label: "Dominant Tapestry Segment", Field: "AtRisk.TSEGNAME", Description: "2021 Dominant Tapestry Segment Name (Esri)", Group: "Population", Format: "none", Types: mixedUse},
		{Label: "Construction Employees", Field: "employees.N05_EMP", Description: "Construction Employees (NAICS)", Group: "Employees", Format: "count", Types: industrial},
		{Label: "Finance & Insurance Employees", Field: "employees.N23_EMP", Description: "Finance & Insurance Employees (NAICS)", Group: "Employees", Format: "count", Types: officeOnly},
		{Label: "Insurance Employees", Field: "employees.N26_EMP", Description: "Insur/Funds/Trusts/Other Employees (NAICS)", Group: "Employees", Format: "count", Types: officeOnly},
		{Label: "Manufacturing Employees", Field: "employees.N06_EMP", Description: "Manufacturing Employees (NAICS)", Group: "Employees", Format: "count", Types: industrial},
		{Label: "Management Employees", Field: "employees.N30_EMP", Description: "Mgmt of Companies/Enterprises Employees (NAICS)", Group: "Employees", Format: "count", Types: officeOnly},
		{Label: "Real Estate Employees", Field: "employees.N27_EMP", Description: "Real Estate/Rental/Leasing Employees (NAICS)", Group: "Employees", Format: "count", Types: officeOnly},
		{Label: "Transportation/Warehouse Employees", Field: "employees.N21_EMP", Description: "Transportation/Warehouse Employees (NAICS)", Group: "Employees", Format: "count", Types: industrial},
		{Label: "Food Away From Home (2026)", Field: "food.X1130FY_X", Description: "Consumer Spending, Food Away from Home (Esri & Bureau of Labor Statistics)", Group: "Income", Format: "money", Types: mixedUse},
		{Label: "Retail Goods (2026)", Field: "SpendingTotal.X15001FY_X", Description: "Consumer Spending, Retail Goods (Esri & Bureau of Labor Statistics)", Group: "Income", Format: "money", Types: retailish},
	}
}
