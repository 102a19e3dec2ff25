package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquafarm/internal/domain/models"
)

const (
	batchesCollection  = "batches"
	dailyCollection    = "daily_records"
	samplesCollection  = "weight_samplings"
	harvestsCollection = "harvests"
	insightsCollection = "batch_insights"
)

// MongoDBRepository stores batches, their recorded events and the computed KPI rows.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewFromClient(client, dbName, logger), nil
}

// NewFromClient wraps an already connected client.
func NewFromClient(client *mongo.Client, dbName string, logger *zap.Logger) *MongoDBRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}
}

// EnsureIndexes creates the indexes the queries below rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	byBatchDate := bson.D{{Key: "batch_id", Value: 1}, {Key: "date", Value: 1}}

	for _, name := range []string{dailyCollection, samplesCollection, harvestsCollection} {
		if _, err := r.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: byBatchDate}); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}

	_, err := r.db.Collection(insightsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    byBatchDate,
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", insightsCollection, err)
	}
	return nil
}

// FindBatch returns the batch with the given key or models.ErrNotFound.
func (r *MongoDBRepository) FindBatch(ctx context.Context, batchID string) (models.Batch, error) {
	var batch models.Batch
	err := r.db.Collection(batchesCollection).FindOne(ctx, bson.M{"_id": batchID}).Decode(&batch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Batch{}, fmt.Errorf("batch %s: %w", batchID, models.ErrNotFound)
	}
	if err != nil {
		return models.Batch{}, fmt.Errorf("find batch %s: %w", batchID, err)
	}
	return batch, nil
}

// ListActiveBatches returns the batches that are not completed.
func (r *MongoDBRepository) ListActiveBatches(ctx context.Context) ([]models.Batch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.Batch](ctx, r.db.Collection(batchesCollection), bson.M{"is_completed": false}, opts)
}

// SaveBatch inserts or replaces a batch.
func (r *MongoDBRepository) SaveBatch(ctx context.Context, batch models.Batch) error {
	_, err := r.db.Collection(batchesCollection).ReplaceOne(ctx, bson.M{"_id": batch.BatchID}, batch, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save batch %s: %w", batch.BatchID, err)
	}
	return nil
}

// ListDailyLogs returns the batch's daily logs by date, then submission time.
func (r *MongoDBRepository) ListDailyLogs(ctx context.Context, batchID string) ([]models.DailyLogEntry, error) {
	return findAll[models.DailyLogEntry](ctx, r.db.Collection(dailyCollection), bson.M{"batch_id": batchID}, eventOrder())
}

// ListWeightSamples returns the batch's weight samples by date, then submission time.
func (r *MongoDBRepository) ListWeightSamples(ctx context.Context, batchID string) ([]models.WeightSample, error) {
	return findAll[models.WeightSample](ctx, r.db.Collection(samplesCollection), bson.M{"batch_id": batchID}, eventOrder())
}

// ListHarvests returns the batch's harvests by date, then submission time.
func (r *MongoDBRepository) ListHarvests(ctx context.Context, batchID string) ([]models.HarvestEvent, error) {
	return findAll[models.HarvestEvent](ctx, r.db.Collection(harvestsCollection), bson.M{"batch_id": batchID}, eventOrder())
}

// SaveDailyLogs upserts daily logs by id.
func (r *MongoDBRepository) SaveDailyLogs(ctx context.Context, entries []models.DailyLogEntry) error {
	return upsertByID(ctx, r.db.Collection(dailyCollection), entries, func(e models.DailyLogEntry) string { return e.ID })
}

// SaveWeightSamples upserts weight samples by id.
func (r *MongoDBRepository) SaveWeightSamples(ctx context.Context, samples []models.WeightSample) error {
	return upsertByID(ctx, r.db.Collection(samplesCollection), samples, func(s models.WeightSample) string { return s.ID })
}

// SaveHarvests upserts harvests by id.
func (r *MongoDBRepository) SaveHarvests(ctx context.Context, harvests []models.HarvestEvent) error {
	return upsertByID(ctx, r.db.Collection(harvestsCollection), harvests, func(h models.HarvestEvent) string { return h.ID })
}

// UpsertInsights replaces the stored series of a batch: rows are upserted by
// (batch_id, date) and rows outside the new span are removed.
func (r *MongoDBRepository) UpsertInsights(ctx context.Context, batchID string, rows []models.DailyKPIRow) error {
	coll := r.db.Collection(insightsCollection)

	dates := make([]string, 0, len(rows))
	if len(rows) > 0 {
		writes := make([]mongo.WriteModel, 0, len(rows))
		for _, row := range rows {
			dates = append(dates, row.Date)
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"batch_id": batchID, "date": row.Date}).
				SetReplacement(row).
				SetUpsert(true))
		}

		res, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
		if err != nil {
			return fmt.Errorf("upsert insights for batch %s: %w", batchID, err)
		}
		r.logger.Debug("insights upserted",
			zap.String("batch_id", batchID),
			zap.Int64("upserted", res.UpsertedCount),
			zap.Int64("modified", res.ModifiedCount))
	}

	res, err := coll.DeleteMany(ctx, bson.M{"batch_id": batchID, "date": bson.M{"$nin": dates}})
	if err != nil {
		return fmt.Errorf("prune insights for batch %s: %w", batchID, err)
	}
	if res.DeletedCount > 0 {
		r.logger.Info("stale insights removed", zap.String("batch_id", batchID), zap.Int64("deleted", res.DeletedCount))
	}
	return nil
}

// ListInsights returns the stored rows of a batch by date.
func (r *MongoDBRepository) ListInsights(ctx context.Context, batchID string) ([]models.DailyKPIRow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	return findAll[models.DailyKPIRow](ctx, r.db.Collection(insightsCollection), bson.M{"batch_id": batchID}, opts)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func eventOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func upsertByID[T any](ctx context.Context, coll *mongo.Collection, docs []T, id func(T) string) error {
	if len(docs) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id(doc)}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if _, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("upsert into %s: %w", coll.Name(), err)
	}
	return nil
}
