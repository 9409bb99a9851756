package models

const (
	// OverProductionMarker prefixes course names of over-production line items.
	OverProductionMarker = "**"
	// RevenueItemPrefix marks the item rows that carry a day's revenue in sold_prtncount.
	RevenueItemPrefix = "RES _REVENUE_"

	CategoryReused         = "Reused"
	CategoryWaste          = "Waste"
	CategoryDonated        = "Donated"
	CategoryOverProduction = "Over Production"

	// CategoryThrown is the export's label for waste; it is renamed on pivot.
	CategoryThrown = "Thrown"

	TotalsLabel = "Totals"

	CadenceMonthly = "monthly"
	CadenceWeekly  = "weekly"

	SpreadsheetMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	CoercionZeroFill = "zero-fill"
	CoercionStrict   = "strict"
)

// CategoryOrder is the fixed row order of every pivot and of the executive summary.
var CategoryOrder = []string{CategoryReused, CategoryWaste, CategoryDonated, CategoryOverProduction}

// DispositionCategories are the categories that add up to Over Production.
var DispositionCategories = []string{CategoryReused, CategoryWaste, CategoryDonated}

// WeeklyExcludedCourses are the monthly disposition rows, which the weekly
// service-cost report leaves out.
var WeeklyExcludedCourses = []string{"**Donated", "**Reused", "**Thrown"}

// Export column headers.
const (
	ColumnEventDate             = "eventdate"
	ColumnCourseName            = "srvcrsname"
	ColumnItemName              = "itemname"
	ColumnForecastPortionCount  = "fcst_prtncount"
	ColumnServedPortionCount    = "served_prtncount"
	ColumnSoldPortionCount      = "sold_prtncount"
	ColumnForecastCustomerCount = "fcst_custcount"
	ColumnSoldCustomerCount     = "sold_custcount"
	ColumnCostPrice             = "costprice"
	ColumnTotalCost             = "Total_Cost"
)

// ExportColumns lists the export headers in their canonical order.
var ExportColumns = []string{
	ColumnEventDate,
	ColumnCourseName,
	ColumnItemName,
	ColumnForecastPortionCount,
	ColumnServedPortionCount,
	ColumnSoldPortionCount,
	ColumnForecastCustomerCount,
	ColumnSoldCustomerCount,
	ColumnCostPrice,
	ColumnTotalCost,
}
