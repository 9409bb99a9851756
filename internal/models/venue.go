package models

// Venue is a residential dining hall that exports its own transactions.
type Venue struct {
	Code        string `mapstructure:"code" json:"code" validate:"required"`
	Sheet       string `mapstructure:"sheet" json:"sheet"`
	Title       string `mapstructure:"title" json:"title"`
	BandColor   string `mapstructure:"band_color" json:"band_color"`
	HeaderColor string `mapstructure:"header_color" json:"header_color"`
	DataColor   string `mapstructure:"data_color" json:"data_color"`
}

// SheetName is the monthly workbook sheet holding the venue's rows.
func (v Venue) SheetName() string {
	if v.Sheet != "" {
		return v.Sheet
	}
	return v.Code
}

// BlockTitle is the band heading of the venue's block in the monthly report.
func (v Venue) BlockTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.Code + " Breakdown"
}

// DefaultVenues are the three halls the reports were built for.
func DefaultVenues() []Venue {
	return []Venue{
		{Code: "EVK", Sheet: "EVK", Title: "EVK Breakdown", BandColor: "#D9D9D9", HeaderColor: "#FFD965", DataColor: "#FFF2CC"},
		{Code: "IRC", Sheet: "IRC", Title: "IRC Breakdown", BandColor: "#FDEADA", HeaderColor: "#F4B183", DataColor: "#FCE4D6"},
		{Code: "UV", Sheet: "UV", Title: "UV Breakdown", BandColor: "#E4F4EA", HeaderColor: "#9DC3E6", DataColor: "#DEEAF6"},
	}
}
