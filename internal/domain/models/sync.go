package models

// BatchSyncRequest is the payload used by field devices to push a batch together
// with every record collected offline.
type BatchSyncRequest struct {
	BatchID           string              `json:"batch_id"`
	FarmerID          int64               `json:"farmer_id"`
	Name              string              `json:"batch_name" binding:"required"`
	FishType          string              `json:"fish_type"`
	NumberOfFishes    int                 `json:"number_of_fishes"`
	AverageBodyWeight float64             `json:"average_body_weight"`
	AgeAtStock        int                 `json:"age_at_stock"`
	IsCompleted       bool                `json:"is_completed"`
	DailyRecords      []DailyLogInput     `json:"daily_records"`
	WeightSamplings   []WeightSampleInput `json:"weight_samplings"`
	Harvests          []HarvestInput      `json:"harvests"`
}

// DailyLogInput is a feeding/mortality submission.
type DailyLogInput struct {
	ID        string       `json:"id"`
	UnitID    string       `json:"unit_id"`
	Date      CalendarDate `json:"date"`
	FeedName  string       `json:"feed_name"`
	FeedSize  string       `json:"feed_size"`
	FeedKg    float64      `json:"feed_quantity"`
	Mortality int          `json:"mortality"`
}

// WeightSampleInput is a weighing submission.
type WeightSampleInput struct {
	ID            string       `json:"id"`
	UnitID        string       `json:"unit_id"`
	SampleName    string       `json:"sample_name"`
	Date          CalendarDate `json:"date"`
	FishWeighed   int          `json:"fish_numbers"`
	TotalWeightKg float64      `json:"total_weight"`
}

// HarvestInput is a harvest submission.
type HarvestInput struct {
	ID            string       `json:"id"`
	UnitID        string       `json:"unit_id"`
	Date          CalendarDate `json:"date"`
	Quantity      int          `json:"quantity_harvest"`
	TotalWeightKg float64      `json:"total_weight"`
	PricePerKg    float64      `json:"price_per_kg"`
	TotalSales    float64      `json:"total_sales"`
	InvoiceNumber string       `json:"sales_invoice_number"`
}
