package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

var insightsHeader = []interface{}{
	"Date", "Month", "Population start", "Population end", "Mortality", "Mortality %",
	"Harvested", "ABW start (g)", "ABW end (g)", "ADG (g)", "SGR %",
	"Biomass start (kg)", "Biomass end (kg)", "Growth (kg)", "Accumulated growth (kg)",
	"Feed (kg)", "Accumulated feed (kg)", "FCR", "Accumulated FCR",
}

// InsightsExporter writes a batch's KPI series to a tab named after the batch.
type InsightsExporter struct {
	repo Repository
}

// NewInsightsExporter wires an exporter on top of repo.
func NewInsightsExporter(repo Repository) *InsightsExporter {
	return &InsightsExporter{repo: repo}
}

// Export replaces the batch tab content with a header and one line per row.
func (e *InsightsExporter) Export(ctx context.Context, batchID string, rows []models.DailyKPIRow) error {
	title := sheetTitle(batchID)
	if err := e.repo.EnsureSheet(ctx, title); err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, insightsHeader)
	for _, row := range rows {
		values = append(values, rowValues(row))
	}

	return e.repo.ReplaceValues(ctx, fmt.Sprintf("'%s'!A:S", title), values)
}

func rowValues(row models.DailyKPIRow) []interface{} {
	return []interface{}{
		row.Date,
		row.MonthName,
		row.PopulationStart,
		row.PopulationEnd,
		row.MortalityCount,
		row.MortalityPercent,
		row.HarvestCount,
		row.ABWStartG,
		row.ABWEndG,
		row.ADGG,
		row.SGRPercent,
		row.BiomassStartKg,
		row.BiomassEndKg,
		row.GrowthKg,
		row.AccumulatedGrowthKg,
		row.FeedKg,
		row.AccumulatedFeedKg,
		optional(row.FCR),
		optional(row.AccumulatedFCR),
	}
}

// optional renders an absent ratio as an empty cell.
func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

const maxTitleRunes = 100

// sheetTitle strips characters Sheets does not accept in tab names.
func sheetTitle(batchID string) string {
	title := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', '/', '\\', ':', '\'':
			return '-'
		}
		return r
	}, batchID)
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	return title
}
