package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/ids"
	"inkwell/cms/internal/models"
)

type SessionRepository struct {
	*Base[models.Session, *models.Session]
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{
		Base: NewBase[models.Session, *models.Session](db.Collection("sessions")),
	}
}

// Create persists a new session. The expiry is clamped to at most 30 days
// from creation regardless of what the caller requested; the TTL index
// sweeps the document at the same instant.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	const op = "sessions.create"

	if s.UserID == "" {
		return apperr.Validationf(op, "user_id is required")
	}
	if s.SessionID == "" {
		s.SessionID = ids.NewSessionID()
	}

	now := time.Now().UTC()
	s.ExpiresAt = models.CapExpiry(now, s.ExpiresAt)
	s.IsActive = true
	if s.LastAccessed.IsZero() {
		s.LastAccessed = now
	}

	return r.Insert(ctx, s)
}

// FindActive returns the session only while it is active and unexpired.
// The TTL sweep lags real time, so the expiry is re-checked here.
func (r *SessionRepository) FindActive(ctx context.Context, sessionID string) (*models.Session, error) {
	return r.FindOne(ctx, bson.M{
		"session_id": sessionID,
		"is_active":  true,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	})
}

// Touch stamps the last-access instant.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string) error {
	const op = "sessions.touch"
	res, err := r.Collection().UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"last_accessed": time.Now().UTC(),
			"updated_at":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "session %s not found", sessionID)
	}
	return nil
}

// Deactivate soft-disables the session without waiting for the TTL sweep.
func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	const op = "sessions.deactivate"
	res, err := r.Collection().UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "session %s not found", sessionID)
	}
	return nil
}

func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID string) (int64, error) {
	const op = "sessions.deactivateAllForUser"
	res, err := r.Collection().UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	return res.ModifiedCount, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string, opts ...Option) ([]models.Session, error) {
	return r.List(ctx, bson.M{"user_id": userID}, opts...)
}

// DeactivateExpired flags sessions past their expiry that the TTL sweep
// has not yet removed. Used by the maintenance job.
func (r *SessionRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	const op = "sessions.deactivateExpired"
	res, err := r.Collection().UpdateMany(ctx,
		bson.M{
			"is_active":  true,
			"expires_at": bson.M{"$lte": time.Now().UTC()},
		},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	return res.ModifiedCount, nil
}
