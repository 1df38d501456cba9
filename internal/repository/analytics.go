package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/models"
)

type AnalyticsRepository struct {
	*Base[models.AnalyticsEvent, *models.AnalyticsEvent]
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{
		Base: NewBase[models.AnalyticsEvent, *models.AnalyticsEvent](db.Collection("analytics")),
	}
}

// Record appends one event. Events are never updated after insert; the TTL
// index on timestamp retires them after the retention window.
func (r *AnalyticsRepository) Record(ctx context.Context, e *models.AnalyticsEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return r.Insert(ctx, e)
}

func (r *AnalyticsRepository) CountByType(ctx context.Context, eventType models.EventType, from, to time.Time) (int64, error) {
	return r.Count(ctx, bson.M{
		"event_type": eventType,
		"timestamp":  bson.M{"$gte": from, "$lt": to},
	})
}

func (r *AnalyticsRepository) ListByContent(ctx context.Context, contentID string, opts ...Option) ([]models.AnalyticsEvent, error) {
	return r.List(ctx, bson.M{"content_id": contentID}, opts...)
}

func (r *AnalyticsRepository) ListRange(ctx context.Context, from, to time.Time, opts ...Option) ([]models.AnalyticsEvent, error) {
	opts = append(opts, WithSort(bson.D{{Key: "timestamp", Value: -1}}))
	return r.List(ctx, bson.M{"timestamp": bson.M{"$gte": from, "$lt": to}}, opts...)
}

// PathCount is one row of the top-paths rollup.
type PathCount struct {
	Path  string `bson:"_id" json:"path"`
	Count int64  `bson:"count" json:"count"`
}

// TopPaths groups page views by path over the window, most visited first.
func (r *AnalyticsRepository) TopPaths(ctx context.Context, from, to time.Time, limit int64) ([]PathCount, error) {
	const op = "analytics.topPaths"

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"event_type": models.EventTypePageView,
			"timestamp":  bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$path",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	rows, err := r.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	out := make([]PathCount, 0, len(rows))
	for _, row := range rows {
		pc := PathCount{}
		if p, ok := row["_id"].(string); ok {
			pc.Path = p
		}
		pc.Count = toInt64(row["count"])
		out = append(out, pc)
	}
	return out, nil
}

// DeviceCount is one row of the device breakdown rollup.
type DeviceCount struct {
	DeviceType string `bson:"_id" json:"device_type"`
	Count      int64  `bson:"count" json:"count"`
}

func (r *AnalyticsRepository) DeviceBreakdown(ctx context.Context, from, to time.Time) ([]DeviceCount, error) {
	const op = "analytics.deviceBreakdown"

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": from, "$lt": to},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$device.type",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	rows, err := r.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	out := make([]DeviceCount, 0, len(rows))
	for _, row := range rows {
		dc := DeviceCount{}
		if d, ok := row["_id"].(string); ok {
			dc.DeviceType = d
		}
		dc.Count = toInt64(row["count"])
		out = append(out, dc)
	}
	return out, nil
}

// PruneOlderThan removes events past the retention cutoff. Redundant with
// the TTL index; kept so retention also holds on deployments where the
// index was never created.
func (r *AnalyticsRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const op = "analytics.prune"
	res, err := r.Collection().DeleteMany(ctx, bson.M{
		"timestamp": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	return res.DeletedCount, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
