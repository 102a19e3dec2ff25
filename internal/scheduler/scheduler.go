package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/config"
	"github.com/mamadbah2/aquafarm/internal/domain/models"
	"github.com/mamadbah2/aquafarm/internal/service/insights"
)

const refreshTimeout = 5 * time.Minute

// Refresher regenerates the insights of every active batch.
type Refresher interface {
	RefreshActive(ctx context.Context) (insights.RefreshSummary, error)
}

// Notifier delivers the nightly digest.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	notifier  Notifier
	cfg       config.Config
	logger    *zap.Logger
}

// NewScheduler creates a scheduler running in the configured time zone. notifier may
// be nil, in which case no digest is sent.
func NewScheduler(cfg config.Config, refresher Refresher, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		refresher: refresher,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Start registers the insights refresh job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Insights.CronSchedule, s.refreshInsights); err != nil {
		return fmt.Errorf("schedule insights refresh %q: %w", s.cfg.Insights.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.Insights.CronSchedule),
		zap.String("timezone", s.cfg.Insights.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshInsights() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	s.runRefresh(ctx)
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	s.logger.Info("refreshing batch insights")

	summary, err := s.refresher.RefreshActive(ctx)
	if err != nil {
		s.logger.Error("insights refresh failed", zap.Error(err), zap.Int("refreshed", summary.Refreshed))
		return
	}

	s.logger.Info("insights refresh finished",
		zap.Int("refreshed", summary.Refreshed),
		zap.Int("failed", len(summary.Failures)))

	if s.notifier == nil || s.cfg.WhatsApp.ManagerID == "" {
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ManagerID,
		Message: Digest(summary),
	}
	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send insights digest", zap.Error(err))
		return
	}
	s.logger.Info("insights digest sent")
}

// Digest renders one line per refreshed batch followed by any failures.
func Digest(summary insights.RefreshSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch performance (%d refreshed)", summary.Refreshed)

	for _, row := range summary.Latest {
		fmt.Fprintf(&b, "\n%s %s: %d fish, ABW %.1f g, biomass %.1f kg, FCR %s",
			row.BatchID, row.Date, row.PopulationEnd, row.ABWEndG, row.BiomassEndKg, formatRatio(row.AccumulatedFCR))
	}

	failed := make([]string, 0, len(summary.Failures))
	for batchID := range summary.Failures {
		failed = append(failed, batchID)
	}
	sort.Strings(failed)
	for _, batchID := range failed {
		fmt.Fprintf(&b, "\n%s: refresh failed", batchID)
	}

	return b.String()
}

func formatRatio(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}
