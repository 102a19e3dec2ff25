package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/insights"
)

type stubInsights struct {
	rows []models.DailyKPIRow
	err  error
}

func (s stubInsights) Compute(context.Context, string) ([]models.DailyKPIRow, error) {
	return s.rows, s.err
}

func TestHandleCommandKPI(t *testing.T) {
	fcr := 1.25
	svc := NewService(stubInsights{rows: []models.DailyKPIRow{
		{BatchID: "b1", Date: "2025-03-01"},
		{BatchID: "b1", Date: "2025-03-02", PopulationEnd: 990, MortalityCount: 10, ABWEndG: 60, BiomassEndKg: 59.4, AccumulatedFeedKg: 12, AccumulatedFCR: &fcr},
	}}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/kpi b1"), "2246")
	require.NoError(t, err)
	assert.Contains(t, reply, "Batch b1 on 2025-03-02")
	assert.Contains(t, reply, "Population: 990 (mortality 10, harvested 0)")
	assert.Contains(t, reply, "ABW: 60.0 g, biomass 59.4 kg")
	assert.Contains(t, reply, "FCR to date: 1.25")
}

func TestHandleCommandKPIWithoutRecords(t *testing.T) {
	svc := NewService(stubInsights{rows: []models.DailyKPIRow{}}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/kpi b1"), "2246")
	require.NoError(t, err)
	assert.Equal(t, "Batch b1 has no records yet.", reply)
}

func TestHandleCommandErrors(t *testing.T) {
	svc := NewService(stubInsights{}, nil)

	_, err := svc.HandleCommand(context.Background(), models.ParseCommand("/kpi"), "2246")
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("/feed 3"), "2246")
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestReply(t *testing.T) {
	tests := []struct {
		name  string
		stub  stubInsights
		input string
		want  string
	}{
		{name: "help", input: "/help", want: usage},
		{name: "unknown batch", stub: stubInsights{err: fmt.Errorf("%w: b9", insights.ErrBatchNotFound)}, input: "/kpi b9", want: "Batch not found. Check the batch id and try again."},
		{name: "missing argument", input: "/kpi", want: "Usage: /kpi <batch id>"},
		{name: "unknown command", input: "hello", want: "Unknown command.\n" + usage},
		{name: "store failure", stub: stubInsights{err: errors.New("timeout")}, input: "/kpi b1", want: "Something went wrong, please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.stub, nil)
			assert.Equal(t, tt.want, svc.Reply(context.Background(), models.ParseCommand(tt.input), "2246"))
		})
	}
}

func TestFormatSummaryWithoutFCR(t *testing.T) {
	assert.Contains(t, FormatSummary(models.DailyKPIRow{BatchID: "b1"}), "FCR to date: n/a")
}
