package models

// DailyKPIRow is one day of a batch's production performance series.
// FCR and AccumulatedFCR are nil when the corresponding growth is not positive.
type DailyKPIRow struct {
	Date      string `bson:"date" json:"date"`
	Month     int    `bson:"month" json:"month"`
	MonthName string `bson:"month_name" json:"month_name"`
	BatchID   string `bson:"batch_id" json:"batch_id"`

	PopulationStart  int     `bson:"population_start" json:"population_start"`
	PopulationEnd    int     `bson:"population_end" json:"population_end"`
	MortalityCount   int     `bson:"recorded_mortality_no" json:"recorded_mortality_no"`
	MortalityPercent float64 `bson:"recorded_mortality_percent" json:"recorded_mortality_percent"`
	HarvestCount     int     `bson:"harvest_no" json:"harvest_no"`

	ABWStartG         float64 `bson:"abw_start_g" json:"abw_start_g"`
	ABWEndG           float64 `bson:"abw_end_g" json:"abw_end_g"`
	GrowthRateGPerDay float64 `bson:"growth_rate_g_per_day" json:"growth_rate_g_per_day"`
	SGRPercent        float64 `bson:"sgr_percent" json:"SGR_percent"`
	ADGG              float64 `bson:"adg_g" json:"ADG_g"`

	BiomassStartKg      float64 `bson:"biomass_start_kg" json:"biomass_start_kg"`
	BiomassEndKg        float64 `bson:"biomass_end_kg" json:"biomass_end_kg"`
	GrowthKg            float64 `bson:"growth_kg" json:"growth_kg"`
	AccumulatedGrowthKg float64 `bson:"accumulated_growth_kg" json:"accumulated_growth_kg"`

	FeedKg            float64  `bson:"feed_recorded_kg" json:"feed_recorded_kg"`
	AccumulatedFeedKg float64  `bson:"accumulated_feed_kg" json:"accumulated_feed_kg"`
	FCR               *float64 `bson:"fcr" json:"FCR"`
	AccumulatedFCR    *float64 `bson:"accumulated_fcr" json:"accumulated_FCR"`
}
