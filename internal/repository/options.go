package repository

import (
	"go.mongodb.org/mongo-driver/bson"
)

type queryOptions struct {
	projection bson.M
	sort       bson.D
	skip       int64
	limit      int64
}

// Option tweaks one read operation. Defaults: no projection, newest
// created first, no skip, no limit.
type Option func(*queryOptions)

func WithProjection(fields bson.M) Option {
	return func(o *queryOptions) { o.projection = fields }
}

func WithSort(sort bson.D) Option {
	return func(o *queryOptions) { o.sort = sort }
}

func WithSkip(n int64) Option {
	return func(o *queryOptions) { o.skip = n }
}

func WithLimit(n int64) Option {
	return func(o *queryOptions) { o.limit = n }
}

func collectOptions(opts []Option) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
