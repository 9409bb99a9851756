package models

// TransactionRow is one line of a venue export, kept as the text the export
// carried. Numbers and dates are coerced by the pipelines that read them.
type TransactionRow struct {
	Line                  int    `json:"line"` // 1-based source row, header excluded
	EventDate             string `json:"eventdate"`
	CourseName            string `json:"srvcrsname"`
	ItemName              string `json:"itemname"`
	ForecastPortionCount  string `json:"fcst_prtncount"`
	ServedPortionCount    string `json:"served_prtncount"`
	SoldPortionCount      string `json:"sold_prtncount"`
	ForecastCustomerCount string `json:"fcst_custcount"`
	SoldCustomerCount     string `json:"sold_custcount"`
	CostPrice             string `json:"costprice"`
	TotalCost             string `json:"Total_Cost"`
}

// Field returns the cell held under an export column header.
func (r TransactionRow) Field(column string) string {
	switch column {
	case ColumnEventDate:
		return r.EventDate
	case ColumnCourseName:
		return r.CourseName
	case ColumnItemName:
		return r.ItemName
	case ColumnForecastPortionCount:
		return r.ForecastPortionCount
	case ColumnServedPortionCount:
		return r.ServedPortionCount
	case ColumnSoldPortionCount:
		return r.SoldPortionCount
	case ColumnForecastCustomerCount:
		return r.ForecastCustomerCount
	case ColumnSoldCustomerCount:
		return r.SoldCustomerCount
	case ColumnCostPrice:
		return r.CostPrice
	case ColumnTotalCost:
		return r.TotalCost
	}
	return ""
}

// SetField stores value under an export column header. Unknown headers are ignored.
func (r *TransactionRow) SetField(column, value string) {
	switch column {
	case ColumnEventDate:
		r.EventDate = value
	case ColumnCourseName:
		r.CourseName = value
	case ColumnItemName:
		r.ItemName = value
	case ColumnForecastPortionCount:
		r.ForecastPortionCount = value
	case ColumnServedPortionCount:
		r.ServedPortionCount = value
	case ColumnSoldPortionCount:
		r.SoldPortionCount = value
	case ColumnForecastCustomerCount:
		r.ForecastCustomerCount = value
	case ColumnSoldCustomerCount:
		r.SoldCustomerCount = value
	case ColumnCostPrice:
		r.CostPrice = value
	case ColumnTotalCost:
		r.TotalCost = value
	}
}

// Values returns the row's cells in ExportColumns order.
func (r TransactionRow) Values() []string {
	values := make([]string, len(ExportColumns))
	for i, column := range ExportColumns {
		values[i] = r.Field(column)
	}
	return values
}

// VenueRows pairs a venue with the rows exported for it.
type VenueRows struct {
	Venue Venue
	Rows  []TransactionRow
}
