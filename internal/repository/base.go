// Package repository layers the entity repositories over a generic CRUD
// base. Every method is one round trip (or a short fixed sequence) against
// the database; there is no locking or retry at this layer.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/cms/internal/apperr"
)

// document constrains the entity pointers Base manages: anything that can
// stamp itself for insert and check its own invariants.
type document[T any] interface {
	*T
	PrepareInsert(now time.Time)
	Validate() error
}

// Base wraps a single collection with uniform CRUD primitives. Entity
// repositories embed or hold a Base and add their own queries on top.
type Base[T any, P document[T]] struct {
	coll *mongo.Collection
	name string
}

func NewBase[T any, P document[T]](coll *mongo.Collection) *Base[T, P] {
	return &Base[T, P]{coll: coll, name: coll.Name()}
}

func (b *Base[T, P]) Collection() *mongo.Collection { return b.coll }

func (b *Base[T, P]) op(action string) string { return b.name + "." + action }

// Insert stamps and persists one document. Validation failures surface as
// a single wrapped error; unique-index collisions map to a conflict.
func (b *Base[T, P]) Insert(ctx context.Context, doc P) error {
	op := b.op("insert")
	doc.PrepareInsert(time.Now().UTC())
	if err := doc.Validate(); err != nil {
		return apperr.Annotate(op, err)
	}
	if _, err := b.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &apperr.Error{Kind: apperr.KindConflict, Op: op, Message: "duplicate key", Err: err}
		}
		return apperr.Storage(op, err)
	}
	return nil
}

// Update merges a partial field set into the document with the given id and
// returns the post-update document. The merge is validated against the
// current document before anything is written, so a rejected update leaves
// the stored document untouched. Fails with not-found when no document
// matches.
func (b *Base[T, P]) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*T, error) {
	op := b.op("update")

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}

	var current bson.M
	if err := b.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf(op, "document %s not found", id.Hex())
		}
		return nil, apperr.Storage(op, err)
	}
	preview, err := mergeDocument[T](current, set)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if err := P(preview).Validate(); err != nil {
		return nil, apperr.Annotate(op, err)
	}

	res := b.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var out T
	if err := res.Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf(op, "document %s not found", id.Hex())
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &apperr.Error{Kind: apperr.KindConflict, Op: op, Message: "duplicate key", Err: err}
		}
		return nil, apperr.Storage(op, err)
	}
	return &out, nil
}

// mergeDocument applies $set-style dotted paths to a raw document and
// decodes the result, mirroring the server-side merge for a preview the
// caller can validate without writing.
func mergeDocument[T any](current bson.M, set bson.M) (*T, error) {
	for path, value := range set {
		parts := strings.Split(path, ".")
		node := current
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(bson.M)
			if !ok {
				child = bson.M{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	raw, err := bson.Marshal(current)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindOne returns at most one match; a miss is (nil, nil), not an error.
func (b *Base[T, P]) FindOne(ctx context.Context, filter bson.M, opts ...Option) (*T, error) {
	op := b.op("findOne")
	q := collectOptions(opts)

	fo := options.FindOne()
	if q.projection != nil {
		fo.SetProjection(q.projection)
	}
	if q.sort != nil {
		fo.SetSort(q.sort)
	}

	var out T
	if err := b.coll.FindOne(ctx, filter, fo).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperr.Storage(op, err)
	}
	return &out, nil
}

func (b *Base[T, P]) FindByID(ctx context.Context, id primitive.ObjectID, opts ...Option) (*T, error) {
	return b.FindOne(ctx, bson.M{"_id": id}, opts...)
}

// List returns ordered matches, newest created first unless the caller
// supplies a sort.
func (b *Base[T, P]) List(ctx context.Context, filter bson.M, opts ...Option) ([]T, error) {
	op := b.op("list")
	q := collectOptions(opts)

	fo := options.Find()
	if q.projection != nil {
		fo.SetProjection(q.projection)
	}
	if q.sort != nil {
		fo.SetSort(q.sort)
	} else {
		fo.SetSort(bson.D{{Key: "created_at", Value: -1}})
	}
	if q.skip > 0 {
		fo.SetSkip(q.skip)
	}
	if q.limit > 0 {
		fo.SetLimit(q.limit)
	}

	cursor, err := b.coll.Find(ctx, filter, fo)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}

type PageMeta struct {
	CurrentPage int64 `json:"current_page"`
	TotalPages  int64 `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PerPage     int64 `json:"per_page"`
	HasNextPage bool  `json:"has_next_page"`
	HasPrevPage bool  `json:"has_prev_page"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"pagination"`
}

// Paginate fetches one page of matches plus page metadata. The count and
// the data are two independent reads; no snapshot isolation between them.
func (b *Base[T, P]) Paginate(ctx context.Context, filter bson.M, page, perPage int64, opts ...Option) (*Page[T], error) {
	op := b.op("paginate")
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	total, err := b.Count(ctx, filter)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	data, err := b.List(ctx, filter, append(opts,
		WithSkip((page-1)*perPage),
		WithLimit(perPage),
	)...)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	return &Page[T]{
		Data: data,
		Meta: PageMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			PerPage:     perPage,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// Remove deletes by primary key; not-found when nothing matched.
func (b *Base[T, P]) Remove(ctx context.Context, id primitive.ObjectID) error {
	op := b.op("remove")
	res, err := b.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf(op, "document %s not found", id.Hex())
	}
	return nil
}

func (b *Base[T, P]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := b.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperr.Storage(b.op("count"), err)
	}
	return n, nil
}

func (b *Base[T, P]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := b.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, apperr.Storage(b.op("exists"), err)
	}
	return n > 0, nil
}

// BulkInsert persists a batch in one call. Failures are batch-wide; there
// is no per-document success reporting at this layer.
func (b *Base[T, P]) BulkInsert(ctx context.Context, docs []P) error {
	op := b.op("bulkInsert")
	if len(docs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	payload := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		doc.PrepareInsert(now)
		if err := doc.Validate(); err != nil {
			return apperr.Annotate(op, err)
		}
		payload = append(payload, doc)
	}
	if _, err := b.coll.InsertMany(ctx, payload); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &apperr.Error{Kind: apperr.KindConflict, Op: op, Message: "duplicate key", Err: err}
		}
		return apperr.Storage(op, err)
	}
	return nil
}

type BulkUpdateOp struct {
	Filter bson.M
	Update bson.M
}

func (b *Base[T, P]) BulkUpdate(ctx context.Context, ops []BulkUpdateOp) error {
	op := b.op("bulkUpdate")
	if len(ops) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, u := range ops {
		models = append(models, mongo.NewUpdateOneModel().SetFilter(u.Filter).SetUpdate(u.Update))
	}
	if _, err := b.coll.BulkWrite(ctx, models); err != nil {
		return apperr.Storage(op, err)
	}
	return nil
}

// Search runs a full-text match against the collection's text index,
// ranked by relevance score, best first.
func (b *Base[T, P]) Search(ctx context.Context, term string, opts ...Option) ([]T, error) {
	op := b.op("search")
	q := collectOptions(opts)

	projection := bson.M{"score": bson.M{"$meta": "textScore"}}
	for k, v := range q.projection {
		projection[k] = v
	}

	fo := options.Find().
		SetProjection(projection).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}})
	if q.skip > 0 {
		fo.SetSkip(q.skip)
	}
	if q.limit > 0 {
		fo.SetLimit(q.limit)
	}

	cursor, err := b.coll.Find(ctx, bson.M{"$text": bson.M{"$search": term}}, fo)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}

// Aggregate is a passthrough for multi-stage pipelines.
func (b *Base[T, P]) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	op := b.op("aggregate")
	cursor, err := b.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	var out []bson.M
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.Storage(op, err)
	}
	return out, nil
}
