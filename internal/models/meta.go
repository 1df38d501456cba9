package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meta carries the fields every stored document has. Entities embed it
// inline so the bson shape stays flat.
type Meta struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PrepareInsert assigns an ID and creation timestamps when they are missing.
func (m *Meta) PrepareInsert(now time.Time) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
