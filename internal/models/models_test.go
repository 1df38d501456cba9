package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/models"
)

func TestContentURLPath(t *testing.T) {
	blog := models.Content{Type: models.ContentTypeBlog, Slug: "first-post"}
	page := models.Content{Type: models.ContentTypePage, Slug: "about"}

	assert.Equal(t, "/blog/first-post", blog.URLPath())
	assert.Equal(t, "/about", page.URLPath())
}

func TestContentValidate(t *testing.T) {
	c := models.Content{Title: "Draft", Status: models.ContentStatusDraft}
	assert.NoError(t, c.Validate())

	c.Status = models.ContentStatusPublished
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	c.Body = "now it has a body"
	assert.NoError(t, c.Validate())

	c.Title = ""
	assert.Error(t, c.Validate())
}

func TestCapExpiry(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 40 days requested clamps to 30.
	requested := created.Add(40 * 24 * time.Hour)
	assert.Equal(t, created.Add(models.MaxSessionAge), models.CapExpiry(created, requested))

	// Under the cap passes through.
	short := created.Add(2 * time.Hour)
	assert.Equal(t, short, models.CapExpiry(created, short))

	// Zero expiry defaults to the cap.
	assert.Equal(t, created.Add(models.MaxSessionAge), models.CapExpiry(created, time.Time{}))
}

func TestMediaTypeFromMIME(t *testing.T) {
	cases := map[string]models.MediaType{
		"image/png":       models.MediaTypeImage,
		"image/jpeg":      models.MediaTypeImage,
		"video/mp4":       models.MediaTypeVideo,
		"audio/mpeg":      models.MediaTypeAudio,
		"application/pdf": models.MediaTypeDocument,
		"text/plain":      models.MediaTypeDocument,
		"":                models.MediaTypeDocument,
	}
	for mime, want := range cases {
		assert.Equal(t, want, models.MediaTypeFromMIME(mime), "mime %q", mime)
	}
}

func TestProcessingTransitions(t *testing.T) {
	assert.True(t, models.ProcessingStatusPending.CanTransitionTo(models.ProcessingStatusProcessing))
	assert.True(t, models.ProcessingStatusProcessing.CanTransitionTo(models.ProcessingStatusCompleted))
	assert.True(t, models.ProcessingStatusProcessing.CanTransitionTo(models.ProcessingStatusFailed))

	assert.False(t, models.ProcessingStatusPending.CanTransitionTo(models.ProcessingStatusCompleted))
	assert.False(t, models.ProcessingStatusCompleted.CanTransitionTo(models.ProcessingStatusProcessing))
	assert.False(t, models.ProcessingStatusFailed.CanTransitionTo(models.ProcessingStatusPending))
}

func TestVisibleAccessLevels(t *testing.T) {
	assert.Equal(t,
		[]models.AccessLevel{models.AccessLevelPublic},
		models.VisibleAccessLevels(models.AccessLevelPublic))

	assert.Equal(t,
		[]models.AccessLevel{models.AccessLevelPublic, models.AccessLevelAdmin},
		models.VisibleAccessLevels(models.AccessLevelAdmin))

	assert.Equal(t,
		[]models.AccessLevel{models.AccessLevelPublic, models.AccessLevelAdmin, models.AccessLevelSuperAdmin},
		models.VisibleAccessLevels(models.AccessLevelSuperAdmin))

	// Unrecognized levels degrade to public.
	assert.Equal(t,
		[]models.AccessLevel{models.AccessLevelPublic},
		models.VisibleAccessLevels(models.AccessLevel("editor")))
}

func TestSettingValueBranches(t *testing.T) {
	assert.Equal(t, "hi", models.StringValue("hi").Interface())
	assert.Equal(t, 3.0, models.NumberValue(3).Interface())
	assert.Equal(t, true, models.BoolValue(true).Interface())

	assert.True(t, models.StringValue("").IsEmpty())
	assert.False(t, models.StringValue("x").IsEmpty())
	assert.False(t, models.NumberValue(0).IsEmpty())
	assert.False(t, models.BoolValue(false).IsEmpty())
	assert.True(t, models.ObjectValue(nil).IsEmpty())
	assert.True(t, models.SettingValue{}.IsEmpty())
}

func TestCoerceSettingValue(t *testing.T) {
	v, err := models.CoerceSettingValue("hello")
	require.NoError(t, err)
	assert.Equal(t, models.SettingTypeString, v.Type)

	v, err = models.CoerceSettingValue(float64(12))
	require.NoError(t, err)
	assert.Equal(t, models.SettingTypeNumber, v.Type)
	assert.Equal(t, 12.0, v.Num)

	v, err = models.CoerceSettingValue(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, models.SettingTypeObject, v.Type)

	// Driver-native container types coerce like their plain counterparts.
	v, err = models.CoerceSettingValue(bson.M{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, models.SettingTypeObject, v.Type)

	v, err = models.CoerceSettingValue(bson.A{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, models.SettingTypeArray, v.Type)

	_, err = models.CoerceSettingValue(struct{}{})
	assert.Error(t, err)
}

func TestMetaPrepareInsert(t *testing.T) {
	now := time.Now().UTC()

	var m models.Meta
	m.PrepareInsert(now)
	assert.False(t, m.ID.IsZero())
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, now, m.UpdatedAt)

	// A second stamp keeps the identity and creation time.
	id, created := m.ID, m.CreatedAt
	later := now.Add(time.Minute)
	m.PrepareInsert(later)
	assert.Equal(t, id, m.ID)
	assert.Equal(t, created, m.CreatedAt)
	assert.Equal(t, later, m.UpdatedAt)
}
