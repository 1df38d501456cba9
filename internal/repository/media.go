package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/models"
)

type MediaRepository struct {
	*Base[models.Media, *models.Media]
}

func NewMediaRepository(db *mongo.Database) *MediaRepository {
	return &MediaRepository{
		Base: NewBase[models.Media, *models.Media](db.Collection("media")),
	}
}

// Create registers a media record. The media type is derived from the mime
// type; the unique index on file_path rejects duplicate registrations.
func (r *MediaRepository) Create(ctx context.Context, m *models.Media) error {
	const op = "media.create"

	if m.MediaType == "" {
		m.MediaType = models.MediaTypeFromMIME(m.MimeType)
	}
	if m.Processing.Status == "" {
		m.Processing.Status = models.ProcessingStatusPending
	}

	if err := r.Insert(ctx, m); err != nil {
		if apperr.IsConflict(err) {
			return apperr.Conflictf(op, "file path %q is already registered", m.FilePath)
		}
		return err
	}
	return nil
}

func (r *MediaRepository) FindByPath(ctx context.Context, filePath string) (*models.Media, error) {
	return r.FindOne(ctx, bson.M{"file_path": filePath})
}

func (r *MediaRepository) ListByType(ctx context.Context, mediaType models.MediaType, opts ...Option) ([]models.Media, error) {
	return r.List(ctx, bson.M{"media_type": mediaType}, opts...)
}

func (r *MediaRepository) ListByUploader(ctx context.Context, userID string, opts ...Option) ([]models.Media, error) {
	return r.List(ctx, bson.M{"uploaded_by": userID}, opts...)
}

// AttachUsage records that a piece of content embeds this file. The same
// (content, usage) pair is stored once.
func (r *MediaRepository) AttachUsage(ctx context.Context, id primitive.ObjectID, usage models.MediaUsage) error {
	const op = "media.attachUsage"
	if usage.ContentID == "" {
		return apperr.Validationf(op, "content_id is required")
	}
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"used_in": usage},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "media %s not found", id.Hex())
	}
	return nil
}

func (r *MediaRepository) DetachUsage(ctx context.Context, id primitive.ObjectID, contentID string) error {
	const op = "media.detachUsage"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"used_in": bson.M{"content_id": contentID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "media %s not found", id.Hex())
	}
	return nil
}

// SetProcessingStatus advances the processing state machine. Transitions
// outside pending -> processing -> completed|failed are rejected.
func (r *MediaRepository) SetProcessingStatus(ctx context.Context, id primitive.ObjectID, next models.ProcessingStatus, processingErr string) (*models.Media, error) {
	const op = "media.setProcessingStatus"

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if current == nil {
		return nil, apperr.NotFoundf(op, "media %s not found", id.Hex())
	}
	if !current.Processing.Status.CanTransitionTo(next) {
		return nil, apperr.Validationf(op, "cannot transition processing from %s to %s", current.Processing.Status, next)
	}

	fields := bson.M{"processing.status": next}
	if next == models.ProcessingStatusFailed {
		fields["processing.error"] = processingErr
	} else {
		fields["processing.error"] = ""
	}
	return r.Update(ctx, id, fields)
}

func (r *MediaRepository) AddThumbnail(ctx context.Context, id primitive.ObjectID, thumb models.MediaThumbnail) error {
	const op = "media.addThumbnail"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"thumbnails": thumb},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "media %s not found", id.Hex())
	}
	return nil
}

// ListUnused returns files no content references, candidates for cleanup.
func (r *MediaRepository) ListUnused(ctx context.Context, opts ...Option) ([]models.Media, error) {
	return r.List(ctx, bson.M{"$or": bson.A{
		bson.M{"used_in": bson.M{"$exists": false}},
		bson.M{"used_in": bson.M{"$size": 0}},
	}}, opts...)
}
