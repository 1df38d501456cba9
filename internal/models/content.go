package models

import (
	"time"
)

type ContentType string

const (
	ContentTypePage    ContentType = "page"
	ContentTypeBlog    ContentType = "blog"
	ContentTypeService ContentType = "service"
	ContentTypeProduct ContentType = "product"
	ContentTypeCustom  ContentType = "custom"
)

type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
	ContentStatusScheduled ContentStatus = "scheduled"
)

type ContentVisibility string

const (
	ContentVisibilityPublic   ContentVisibility = "public"
	ContentVisibilityPrivate  ContentVisibility = "private"
	ContentVisibilityPassword ContentVisibility = "password"
)

// ContentAuthor is denormalized onto the document; consistency with the
// users collection is the caller's responsibility.
type ContentAuthor struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

type ContentSEO struct {
	Title       string   `bson:"title,omitempty" json:"title,omitempty"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Keywords    []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
}

type ContentMetrics struct {
	ViewCount  int64      `bson:"view_count" json:"view_count"`
	ShareCount int64      `bson:"share_count" json:"share_count"`
	LastViewed *time.Time `bson:"last_viewed,omitempty" json:"last_viewed,omitempty"`
}

type Content struct {
	Meta       `bson:",inline"`
	Title      string            `bson:"title" json:"title"`
	Slug       string            `bson:"slug" json:"slug"`
	Type       ContentType       `bson:"type" json:"type"`
	Status     ContentStatus     `bson:"status" json:"status"`
	Visibility ContentVisibility `bson:"visibility" json:"visibility"`
	Body       string            `bson:"content,omitempty" json:"content,omitempty"`
	Excerpt    string            `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	Author     ContentAuthor     `bson:"author" json:"author"`
	SEO        ContentSEO        `bson:"seo,omitempty" json:"seo,omitempty"`
	Metadata   map[string]any    `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Tags       []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	Categories []string          `bson:"categories,omitempty" json:"categories,omitempty"`
	Featured   bool              `bson:"featured" json:"featured"`
	Template   string            `bson:"template,omitempty" json:"template,omitempty"`
	ParentID   string            `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	SortOrder  int               `bson:"sort_order" json:"sort_order"`
	Metrics    ContentMetrics    `bson:"metrics" json:"metrics"`

	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ScheduledAt *time.Time `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`
}

// URLPath derives the public path for a piece of content. Blog entries live
// under /blog, everything else at the root.
func (c Content) URLPath() string {
	if c.Type == ContentTypeBlog {
		return "/blog/" + c.Slug
	}
	return "/" + c.Slug
}

// Validate checks the invariants that must hold before the document is
// persisted. The body is only mandatory once the content goes live.
func (c Content) Validate() error {
	if c.Title == "" {
		return errRequired("title")
	}
	if c.Status == ContentStatusPublished && c.Body == "" {
		return errRequired("content")
	}
	return nil
}
