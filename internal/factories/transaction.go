package factories

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/jaswdr/faker"

	"github.com/chrisdamba/foodwaste/internal/models"
)

var courses = map[string][]string{
	"Entrees":  {"Grilled Chicken", "Beef Stir Fry", "Vegetable Lasagna", "Salmon Fillet", "Tofu Curry"},
	"Sides":    {"Steamed Rice", "Roasted Potatoes", "Garden Salad", "Seasonal Vegetables"},
	"Soups":    {"Tomato Basil", "Chicken Noodle", "Minestrone", "Lentil"},
	"Desserts": {"Chocolate Cake", "Fruit Cup", "Rice Pudding", "Oatmeal Cookie"},
	"Grill":    {"Cheeseburger", "Veggie Burger", "Chicken Tenders", "Fries"},
	"Bars":     {"Granola Bar", "Protein Bar"},
}

var courseOrder = []string{"Entrees", "Sides", "Soups", "Desserts", "Grill", "Bars"}

var dispositions = []string{"**Reused", "**Thrown", "**Donated"}

var mealPeriods = []string{"BREAKFAST", "LUNCH", "DINNER"}

// TransactionFactory generates venue exports that look like the dining
// system's. Output is fully determined by the seed.
type TransactionFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewTransactionFactory(seed int64) *TransactionFactory {
	return &TransactionFactory{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		rng:  rand.New(rand.NewSource(seed + 1)),
	}
}

// CreateVenueExport returns days consecutive days of rows starting at from.
func (tf *TransactionFactory) CreateVenueExport(from time.Time, days int) []models.TransactionRow {
	var rows []models.TransactionRow
	for d := 0; d < days; d++ {
		rows = append(rows, tf.CreateDay(from.AddDate(0, 0, d))...)
	}
	for i := range rows {
		rows[i].Line = i + 1
	}
	return rows
}

// CreateDay returns one service day: the menu items of every meal period,
// the over-production disposition rows and a revenue row per period.
func (tf *TransactionFactory) CreateDay(date time.Time) []models.TransactionRow {
	var rows []models.TransactionRow
	eventDate := date.Format("2006-01-02")
	for _, period := range mealPeriods {
		forecastCustomers := tf.fake.IntBetween(150, 900)
		soldCustomers := forecastCustomers - tf.fake.IntBetween(0, forecastCustomers/5)
		var leftoverCost float64
		var revenue float64

		for _, course := range courseOrder {
			items := courses[course]
			for n := tf.fake.IntBetween(1, 3); n > 0; n-- {
				forecast := tf.fake.IntBetween(20, 240)
				served := forecast - tf.rng.Intn(forecast/3+1)
				if tf.rng.Float64() < 0.15 {
					served += tf.fake.IntBetween(1, 20)
				}
				sold := served - tf.rng.Intn(served/10+1)
				costPrice := tf.fake.Float64(2, 1, 6)

				rows = append(rows, models.TransactionRow{
					EventDate:             eventDate,
					CourseName:            course,
					ItemName:              tf.fake.RandomStringElement(items),
					ForecastPortionCount:  strconv.Itoa(forecast),
					ServedPortionCount:    strconv.Itoa(served),
					SoldPortionCount:      strconv.Itoa(sold),
					ForecastCustomerCount: strconv.Itoa(forecastCustomers),
					SoldCustomerCount:     strconv.Itoa(soldCustomers),
					CostPrice:             money(costPrice),
					TotalCost:             money(float64(forecast) * costPrice),
				})
				if served < forecast {
					leftoverCost += float64(forecast-served) * costPrice
				}
				revenue += float64(sold) * costPrice * (1.8 + tf.rng.Float64())
			}
		}

		rows = append(rows, tf.dispositionRows(eventDate, leftoverCost)...)
		rows = append(rows, models.TransactionRow{
			EventDate:             eventDate,
			CourseName:            "Revenue",
			ItemName:              models.RevenueItemPrefix + period,
			ForecastPortionCount:  "0",
			ServedPortionCount:    "0",
			SoldPortionCount:      money(revenue),
			ForecastCustomerCount: strconv.Itoa(forecastCustomers),
			SoldCustomerCount:     strconv.Itoa(soldCustomers),
			CostPrice:             "0",
			TotalCost:             "0",
		})
	}
	return rows
}

// dispositionRows splits a period's leftover cost between the three
// dispositions. Thrown always gets a share; Reused and Donated may be absent.
func (tf *TransactionFactory) dispositionRows(eventDate string, leftover float64) []models.TransactionRow {
	if leftover <= 0 {
		return nil
	}
	weights := []float64{tf.rng.Float64(), 0.2 + tf.rng.Float64(), tf.rng.Float64()}
	if tf.rng.Float64() < 0.3 {
		weights[2] = 0
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	var rows []models.TransactionRow
	for i, course := range dispositions {
		if weights[i] == 0 {
			continue
		}
		rows = append(rows, models.TransactionRow{
			EventDate:  eventDate,
			CourseName: course,
			ItemName:   fmt.Sprintf("%s %s", course[2:], tf.fake.RandomStringElement(courses["Entrees"])),
			TotalCost:  money(leftover * weights[i] / sum),
		})
	}
	return rows
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
