package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/models"
	"inkwell/cms/internal/slug"
)

type ContentRepository struct {
	*Base[models.Content, *models.Content]
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{
		Base: NewBase[models.Content, *models.Content](db.Collection("contents")),
	}
}

// Create applies insert defaults, derives a unique slug from the title when
// none is supplied, and persists the document.
func (r *ContentRepository) Create(ctx context.Context, c *models.Content) error {
	const op = "contents.create"

	if c.Type == "" {
		c.Type = models.ContentTypePage
	}
	if c.Status == "" {
		c.Status = models.ContentStatusDraft
	}
	if c.Visibility == "" {
		c.Visibility = models.ContentVisibilityPublic
	}
	if c.Title == "" {
		return apperr.Validationf(op, "title is required")
	}

	if c.Slug == "" {
		c.Slug = slug.Generate(c.Title)
		if c.Slug == "" {
			return apperr.Validationf(op, "cannot derive a slug from title %q", c.Title)
		}
	}
	resolved, err := r.ensureUniqueSlug(ctx, c.Slug, primitive.NilObjectID)
	if err != nil {
		return apperr.Storage(op, err)
	}
	c.Slug = resolved

	return r.Insert(ctx, c)
}

// UpdateFields merges a partial update. A supplied slug is re-resolved for
// uniqueness excluding this document; a title change on a document that
// never had a slug derives one.
func (r *ContentRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Content, error) {
	const op = "contents.update"

	if rawSlug, ok := fields["slug"].(string); ok && rawSlug != "" {
		resolved, err := r.ensureUniqueSlug(ctx, rawSlug, id)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		fields["slug"] = resolved
	} else if title, ok := fields["title"].(string); ok && title != "" {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		if current == nil {
			return nil, apperr.NotFoundf(op, "content %s not found", id.Hex())
		}
		if current.Slug == "" {
			derived := slug.Generate(title)
			if derived == "" {
				return nil, apperr.Validationf(op, "cannot derive a slug from title %q", title)
			}
			resolved, err := r.ensureUniqueSlug(ctx, derived, id)
			if err != nil {
				return nil, apperr.Storage(op, err)
			}
			fields["slug"] = resolved
		}
	}

	return r.Update(ctx, id, fields)
}

// Publish flips the content live, stamping published_at only the first time.
func (r *ContentRepository) Publish(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	const op = "contents.publish"

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if current == nil {
		return nil, apperr.NotFoundf(op, "content %s not found", id.Hex())
	}
	if current.Body == "" {
		return nil, apperr.Validationf(op, "content body is required to publish")
	}

	fields := bson.M{"status": models.ContentStatusPublished}
	if current.PublishedAt == nil {
		fields["published_at"] = time.Now().UTC()
	}
	return r.Update(ctx, id, fields)
}

func (r *ContentRepository) Archive(ctx context.Context, id primitive.ObjectID) (*models.Content, error) {
	return r.Update(ctx, id, bson.M{"status": models.ContentStatusArchived})
}

// IncrementViews bumps the view counter atomically and stamps the last
// viewed instant.
func (r *ContentRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	const op = "contents.incrementViews"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"metrics.view_count": 1},
		"$set": bson.M{"metrics.last_viewed": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "content %s not found", id.Hex())
	}
	return nil
}

func (r *ContentRepository) FindByType(ctx context.Context, t models.ContentType, opts ...Option) ([]models.Content, error) {
	return r.List(ctx, bson.M{"type": t, "status": models.ContentStatusPublished}, opts...)
}

// FindBySlug looks up by slug regardless of status; routing decides what to
// do with drafts.
func (r *ContentRepository) FindBySlug(ctx context.Context, s string) (*models.Content, error) {
	return r.FindOne(ctx, bson.M{"slug": s})
}

func (r *ContentRepository) FindByAuthor(ctx context.Context, authorID string, opts ...Option) ([]models.Content, error) {
	return r.List(ctx, bson.M{"author.id": authorID}, opts...)
}

func (r *ContentRepository) FindByTags(ctx context.Context, tags []string, opts ...Option) ([]models.Content, error) {
	return r.List(ctx, bson.M{
		"tags":   bson.M{"$in": tags},
		"status": models.ContentStatusPublished,
	}, opts...)
}

func (r *ContentRepository) FindByCategories(ctx context.Context, categories []string, opts ...Option) ([]models.Content, error) {
	return r.List(ctx, bson.M{
		"categories": bson.M{"$in": categories},
		"status":     models.ContentStatusPublished,
	}, opts...)
}

func (r *ContentRepository) FindFeatured(ctx context.Context, opts ...Option) ([]models.Content, error) {
	return r.List(ctx, bson.M{
		"featured": true,
		"status":   models.ContentStatusPublished,
	}, opts...)
}

// ensureUniqueSlug probes base, base-1, base-2, ... until a free slug is
// found, skipping the document being updated. The unique index backstops
// the probe-then-claim gap.
func (r *ContentRepository) ensureUniqueSlug(ctx context.Context, base string, exclude primitive.ObjectID) (string, error) {
	return slug.Ensure(base, func(candidate string) (bool, error) {
		filter := bson.M{"slug": candidate}
		if !exclude.IsZero() {
			filter["_id"] = bson.M{"$ne": exclude}
		}
		return r.Exists(ctx, filter)
	})
}
