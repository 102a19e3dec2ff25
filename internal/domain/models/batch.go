package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Batch is a stocked production batch. Its starting population and average body
// weight seed the KPI walk.
type Batch struct {
	BatchID           string    `bson:"_id" json:"batch_id"`
	FarmerID          int64     `bson:"farmer_id" json:"farmer_id"`
	Name              string    `bson:"batch_name" json:"batch_name"`
	FishType          string    `bson:"fish_type,omitempty" json:"fish_type,omitempty"`
	NumberOfFishes    int       `bson:"number_of_fishes" json:"number_of_fishes"`
	AverageBodyWeight float64   `bson:"average_body_weight" json:"average_body_weight"`
	AgeAtStock        int       `bson:"age_at_stock,omitempty" json:"age_at_stock,omitempty"`
	IsCompleted       bool      `bson:"is_completed" json:"is_completed"`
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// DailyLogEntry captures one feeding/mortality submission for a batch.
type DailyLogEntry struct {
	ID        string    `bson:"_id" json:"id"`
	BatchID   string    `bson:"batch_id" json:"batch_id"`
	UnitID    string    `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	Date      time.Time `bson:"date" json:"date"`
	FeedName  string    `bson:"feed_name,omitempty" json:"feed_name,omitempty"`
	FeedSize  string    `bson:"feed_size,omitempty" json:"feed_size,omitempty"`
	FeedKg    float64   `bson:"feed_quantity" json:"feed_quantity"`
	Mortality int       `bson:"mortality" json:"mortality"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// WeightSample captures one weighing event.
type WeightSample struct {
	ID            string    `bson:"_id" json:"id"`
	BatchID       string    `bson:"batch_id" json:"batch_id"`
	UnitID        string    `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	SampleName    string    `bson:"sample_name,omitempty" json:"sample_name,omitempty"`
	Date          time.Time `bson:"date" json:"date"`
	FishWeighed   int       `bson:"fish_numbers" json:"fish_numbers"`
	TotalWeightKg float64   `bson:"total_weight" json:"total_weight"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// ABW returns the sample's average body weight in grams. The second value is false
// when the sample cannot produce a weight.
func (w WeightSample) ABW() (float64, bool) {
	if w.FishWeighed <= 0 || w.TotalWeightKg <= 0 {
		return 0, false
	}
	return (w.TotalWeightKg * 1000) / float64(w.FishWeighed), true
}

// HarvestEvent captures fish removed from a batch by harvesting.
type HarvestEvent struct {
	ID            string    `bson:"_id" json:"id"`
	BatchID       string    `bson:"batch_id" json:"batch_id"`
	UnitID        string    `bson:"unit_id,omitempty" json:"unit_id,omitempty"`
	Date          time.Time `bson:"date" json:"date"`
	Quantity      int       `bson:"quantity_harvest" json:"quantity_harvest"`
	TotalWeightKg float64   `bson:"total_weight,omitempty" json:"total_weight,omitempty"`
	PricePerKg    float64   `bson:"price_per_kg,omitempty" json:"price_per_kg,omitempty"`
	TotalSales    float64   `bson:"total_sales,omitempty" json:"total_sales,omitempty"`
	InvoiceNumber string    `bson:"sales_invoice_number,omitempty" json:"sales_invoice_number,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
