package insights

import (
	"math"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Seed is the state of a batch before its first observed day.
type Seed struct {
	BatchID    string
	Population int
	ABW        float64
}

// SeedFromBatch takes the starting population and body weight recorded on the batch.
func SeedFromBatch(batch models.Batch) Seed {
	return Seed{
		BatchID:    batch.BatchID,
		Population: batch.NumberOfFishes,
		ABW:        batch.AverageBodyWeight,
	}
}

// Walk emits one row per calendar day from the first to the last day of ix, carrying
// population and body weight forward. Days without a sample keep the previous ABW,
// days without logs or harvests have zero deltas. An empty index yields no rows.
func Walk(seed Seed, ix Index) []models.DailyKPIRow {
	first, last, ok := ix.Span()
	if !ok {
		return []models.DailyKPIRow{}
	}

	days := int(last.Sub(first).Hours()/24) + 1
	rows := make([]models.DailyKPIRow, 0, days)

	population := max(seed.Population, 0)
	previousABW := seed.ABW
	var accumulatedFeedKg, accumulatedGrowthKg float64

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		totals := ix.Daily[day]
		harvestCount := ix.Harvests[day]

		populationStart := population
		populationEnd := max(populationStart-totals.Mortality-harvestCount, 0)

		abwStart := previousABW
		abwEnd := abwStart
		if sampled, found := ix.Samples[day]; found {
			abwEnd = sampled
		}

		adg := abwEnd - abwStart
		biomassStartKg := float64(populationStart) * abwStart / 1000
		biomassEndKg := float64(populationEnd) * abwEnd / 1000
		growthKg := biomassEndKg - biomassStartKg

		accumulatedFeedKg += totals.FeedKg
		accumulatedGrowthKg += growthKg

		var mortalityPercent float64
		if populationStart > 0 {
			mortalityPercent = float64(totals.Mortality) / float64(populationStart) * 100
		}

		rows = append(rows, models.DailyKPIRow{
			Date:      day.Format(dateLayout),
			Month:     int(day.Month()),
			MonthName: day.Month().String(),
			BatchID:   seed.BatchID,

			PopulationStart:  populationStart,
			PopulationEnd:    populationEnd,
			MortalityCount:   totals.Mortality,
			MortalityPercent: mortalityPercent,
			HarvestCount:     harvestCount,

			ABWStartG:         abwStart,
			ABWEndG:           abwEnd,
			GrowthRateGPerDay: adg,
			SGRPercent:        specificGrowthRate(abwStart, abwEnd),
			ADGG:              adg,

			BiomassStartKg:      biomassStartKg,
			BiomassEndKg:        biomassEndKg,
			GrowthKg:            growthKg,
			AccumulatedGrowthKg: accumulatedGrowthKg,

			FeedKg:            totals.FeedKg,
			AccumulatedFeedKg: accumulatedFeedKg,
			FCR:               ratio(totals.FeedKg, growthKg),
			AccumulatedFCR:    ratio(accumulatedFeedKg, accumulatedGrowthKg),
		})

		population = populationEnd
		previousABW = abwEnd
	}

	return rows
}

// specificGrowthRate is the one-day SGR in percent. It is zero unless the weight
// increased from a positive starting weight.
func specificGrowthRate(abwStart, abwEnd float64) float64 {
	if abwStart <= 0 || abwEnd <= abwStart {
		return 0
	}
	return (math.Log(abwEnd) - math.Log(abwStart)) * 100
}

// ratio returns feed/growth, or nil when growth is not positive.
func ratio(feed, growth float64) *float64 {
	if growth <= 0 {
		return nil
	}
	v := feed / growth
	return &v
}
