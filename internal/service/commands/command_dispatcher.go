package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/insights"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const usage = "Commands:\n/kpi <batch id> - latest performance of a batch\n/help - this message"

// InsightsAdapter defines the insights functions required by the dispatcher.
type InsightsAdapter interface {
	Compute(ctx context.Context, batchID string) ([]models.DailyKPIRow, error)
}

// Service answers chat commands.
type Service struct {
	insights InsightsAdapter
	logger   *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(insights InsightsAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{insights: insights, logger: logger}
}

// HandleCommand returns the reply text for cmd.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandKPI:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		batchID := cmd.Args[0]

		rows, err := s.insights.Compute(ctx, batchID)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return fmt.Sprintf("Batch %s has no records yet.", batchID), nil
		}
		return FormatSummary(rows[len(rows)-1]), nil
	case models.CommandHelp:
		return usage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// Reply converts a dispatch outcome into the text sent back to the farmer.
func (s *Service) Reply(ctx context.Context, cmd models.Command, sender string) string {
	reply, err := s.HandleCommand(ctx, cmd, sender)
	switch {
	case err == nil:
		return reply
	case errors.Is(err, insights.ErrBatchNotFound):
		return "Batch not found. Check the batch id and try again."
	case errors.Is(err, ErrInvalidArguments):
		return "Usage: /kpi <batch id>"
	case errors.Is(err, ErrUnsupportedCommand):
		return "Unknown command.\n" + usage
	default:
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		return "Something went wrong, please try again later."
	}
}

// FormatSummary renders the headline figures of a KPI row.
func FormatSummary(row models.DailyKPIRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s on %s\n", row.BatchID, row.Date)
	fmt.Fprintf(&b, "Population: %d (mortality %d, harvested %d)\n", row.PopulationEnd, row.MortalityCount, row.HarvestCount)
	fmt.Fprintf(&b, "ABW: %.1f g, biomass %.1f kg\n", row.ABWEndG, row.BiomassEndKg)
	fmt.Fprintf(&b, "Feed to date: %.1f kg, FCR to date: %s", row.AccumulatedFeedKg, formatRatio(row.AccumulatedFCR))
	return b.String()
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
