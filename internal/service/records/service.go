package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

// ErrInvalidRecord indicates a submitted record failed validation.
var ErrInvalidRecord = errors.New("invalid record")

// Store persists batches and their recorded events.
type Store interface {
	FindBatch(ctx context.Context, batchID string) (models.Batch, error)
	SaveBatch(ctx context.Context, batch models.Batch) error
	SaveDailyLogs(ctx context.Context, entries []models.DailyLogEntry) error
	SaveWeightSamples(ctx context.Context, samples []models.WeightSample) error
	SaveHarvests(ctx context.Context, harvests []models.HarvestEvent) error
}

// Service validates submissions and writes them to the store.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService constructs the ingestion service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// SyncBatch stores a batch with all of its nested records. Records carrying an id
// replace the stored copy, so pushing the same payload twice is harmless.
func (s *Service) SyncBatch(ctx context.Context, req models.BatchSyncRequest) (models.Batch, error) {
	if req.NumberOfFishes < 0 || req.AverageBodyWeight < 0 {
		return models.Batch{}, fmt.Errorf("%w: starting population and weight must not be negative", ErrInvalidRecord)
	}

	now := s.now().UTC()
	batch := models.Batch{
		BatchID:           req.BatchID,
		FarmerID:          req.FarmerID,
		Name:              req.Name,
		FishType:          req.FishType,
		NumberOfFishes:    req.NumberOfFishes,
		AverageBodyWeight: req.AverageBodyWeight,
		AgeAtStock:        req.AgeAtStock,
		IsCompleted:       req.IsCompleted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if batch.BatchID == "" {
		batch.BatchID = s.newID()
	} else if existing, err := s.store.FindBatch(ctx, batch.BatchID); err == nil {
		batch.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.Batch{}, fmt.Errorf("find batch %s: %w", batch.BatchID, err)
	}

	// Nested records get creation times one millisecond apart in payload order, the
	// resolution MongoDB keeps, so same-day records load back in the order sent.
	logs := make([]models.DailyLogEntry, 0, len(req.DailyRecords))
	for i, in := range req.DailyRecords {
		entry, err := s.dailyLog(batch.BatchID, in, sequenced(now, i))
		if err != nil {
			return models.Batch{}, err
		}
		logs = append(logs, entry)
	}

	samples := make([]models.WeightSample, 0, len(req.WeightSamplings))
	for i, in := range req.WeightSamplings {
		sample, err := s.weightSample(batch.BatchID, in, sequenced(now, i))
		if err != nil {
			return models.Batch{}, err
		}
		samples = append(samples, sample)
	}

	harvests := make([]models.HarvestEvent, 0, len(req.Harvests))
	for i, in := range req.Harvests {
		harvest, err := s.harvest(batch.BatchID, in, sequenced(now, i))
		if err != nil {
			return models.Batch{}, err
		}
		harvests = append(harvests, harvest)
	}

	if err := s.store.SaveBatch(ctx, batch); err != nil {
		return models.Batch{}, err
	}
	if err := s.store.SaveDailyLogs(ctx, logs); err != nil {
		return models.Batch{}, err
	}
	if err := s.store.SaveWeightSamples(ctx, samples); err != nil {
		return models.Batch{}, err
	}
	if err := s.store.SaveHarvests(ctx, harvests); err != nil {
		return models.Batch{}, err
	}

	s.logger.Info("batch synced",
		zap.String("batch_id", batch.BatchID),
		zap.Int("daily_records", len(logs)),
		zap.Int("weight_samplings", len(samples)),
		zap.Int("harvests", len(harvests)))

	return batch, nil
}

// AddDailyLog records a feeding/mortality submission for an existing batch.
func (s *Service) AddDailyLog(ctx context.Context, batchID string, in models.DailyLogInput) (models.DailyLogEntry, error) {
	if err := s.requireBatch(ctx, batchID); err != nil {
		return models.DailyLogEntry{}, err
	}
	entry, err := s.dailyLog(batchID, in, s.now().UTC())
	if err != nil {
		return models.DailyLogEntry{}, err
	}
	if err := s.store.SaveDailyLogs(ctx, []models.DailyLogEntry{entry}); err != nil {
		return models.DailyLogEntry{}, err
	}
	return entry, nil
}

// AddWeightSample records a weighing for an existing batch.
func (s *Service) AddWeightSample(ctx context.Context, batchID string, in models.WeightSampleInput) (models.WeightSample, error) {
	if err := s.requireBatch(ctx, batchID); err != nil {
		return models.WeightSample{}, err
	}
	sample, err := s.weightSample(batchID, in, s.now().UTC())
	if err != nil {
		return models.WeightSample{}, err
	}
	if err := s.store.SaveWeightSamples(ctx, []models.WeightSample{sample}); err != nil {
		return models.WeightSample{}, err
	}
	return sample, nil
}

// AddHarvest records a harvest for an existing batch.
func (s *Service) AddHarvest(ctx context.Context, batchID string, in models.HarvestInput) (models.HarvestEvent, error) {
	if err := s.requireBatch(ctx, batchID); err != nil {
		return models.HarvestEvent{}, err
	}
	harvest, err := s.harvest(batchID, in, s.now().UTC())
	if err != nil {
		return models.HarvestEvent{}, err
	}
	if err := s.store.SaveHarvests(ctx, []models.HarvestEvent{harvest}); err != nil {
		return models.HarvestEvent{}, err
	}
	return harvest, nil
}

func (s *Service) requireBatch(ctx context.Context, batchID string) error {
	if _, err := s.store.FindBatch(ctx, batchID); err != nil {
		return err
	}
	return nil
}

func (s *Service) dailyLog(batchID string, in models.DailyLogInput, now time.Time) (models.DailyLogEntry, error) {
	switch {
	case in.Date.IsZero():
		return models.DailyLogEntry{}, fmt.Errorf("%w: daily record date is required", ErrInvalidRecord)
	case in.FeedKg < 0:
		return models.DailyLogEntry{}, fmt.Errorf("%w: feed quantity must not be negative", ErrInvalidRecord)
	case in.Mortality < 0:
		return models.DailyLogEntry{}, fmt.Errorf("%w: mortality must not be negative", ErrInvalidRecord)
	}

	return models.DailyLogEntry{
		ID:        s.idOr(in.ID),
		BatchID:   batchID,
		UnitID:    in.UnitID,
		Date:      in.Date.Day(),
		FeedName:  in.FeedName,
		FeedSize:  in.FeedSize,
		FeedKg:    in.FeedKg,
		Mortality: in.Mortality,
		CreatedAt: now,
	}, nil
}

func (s *Service) weightSample(batchID string, in models.WeightSampleInput, now time.Time) (models.WeightSample, error) {
	switch {
	case in.Date.IsZero():
		return models.WeightSample{}, fmt.Errorf("%w: weight sampling date is required", ErrInvalidRecord)
	case in.FishWeighed <= 0:
		return models.WeightSample{}, fmt.Errorf("%w: number of fish weighed must be positive", ErrInvalidRecord)
	case in.TotalWeightKg <= 0:
		return models.WeightSample{}, fmt.Errorf("%w: total weight must be positive", ErrInvalidRecord)
	}

	return models.WeightSample{
		ID:            s.idOr(in.ID),
		BatchID:       batchID,
		UnitID:        in.UnitID,
		SampleName:    in.SampleName,
		Date:          in.Date.Day(),
		FishWeighed:   in.FishWeighed,
		TotalWeightKg: in.TotalWeightKg,
		CreatedAt:     now,
	}, nil
}

func (s *Service) harvest(batchID string, in models.HarvestInput, now time.Time) (models.HarvestEvent, error) {
	switch {
	case in.Date.IsZero():
		return models.HarvestEvent{}, fmt.Errorf("%w: harvest date is required", ErrInvalidRecord)
	case in.Quantity < 0:
		return models.HarvestEvent{}, fmt.Errorf("%w: harvested quantity must not be negative", ErrInvalidRecord)
	}

	return models.HarvestEvent{
		ID:            s.idOr(in.ID),
		BatchID:       batchID,
		UnitID:        in.UnitID,
		Date:          in.Date.Day(),
		Quantity:      in.Quantity,
		TotalWeightKg: in.TotalWeightKg,
		PricePerKg:    in.PricePerKg,
		TotalSales:    in.TotalSales,
		InvoiceNumber: in.InvoiceNumber,
		CreatedAt:     now,
	}, nil
}

func sequenced(now time.Time, i int) time.Time {
	return now.Truncate(time.Millisecond).Add(time.Duration(i) * time.Millisecond)
}

func (s *Service) idOr(id string) string {
	if id != "" {
		return id
	}
	return s.newID()
}
