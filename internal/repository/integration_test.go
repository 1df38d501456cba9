package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/database"
	"inkwell/cms/internal/models"
	"inkwell/cms/internal/repository"
)

// Integration tests run against a real database when INKWELL_MONGO_URL is
// set and skip otherwise. Each test gets a throwaway database.
func setupDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("INKWELL_MONGO_URL")
	if uri == "" {
		t.Skip("INKWELL_MONGO_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("inkwell_test_%s", ksuid.New().String()))
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	require.NoError(t, database.EnsureIndexes(ctx, db))
	return db
}

func TestContentSlugDerivation(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	first := &models.Content{Title: "Hello World!", Type: models.ContentTypeBlog}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, "hello-world", first.Slug)

	second := &models.Content{Title: "Hello World!", Type: models.ContentTypeBlog}
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "hello-world-1", second.Slug)

	third := &models.Content{Title: "Hello World!", Type: models.ContentTypeBlog}
	require.NoError(t, repo.Create(ctx, third))
	assert.Equal(t, "hello-world-2", third.Slug)
}

func TestContentInsertDefaultsAndRoundTrip(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	c := &models.Content{Title: "About Us"}
	require.NoError(t, repo.Create(ctx, c))

	assert.Equal(t, models.ContentTypePage, c.Type)
	assert.Equal(t, models.ContentStatusDraft, c.Status)
	assert.Equal(t, models.ContentVisibilityPublic, c.Visibility)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "About Us", got.Title)
	assert.Equal(t, "about-us", got.Slug)
	assert.False(t, got.ID.IsZero())
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestContentPublishStampsOnce(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	c := &models.Content{Title: "Launch Post", Body: "We are live."}
	require.NoError(t, repo.Create(ctx, c))

	published, err := repo.Publish(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstStamp := *published.PublishedAt

	// Re-publishing keeps the original stamp.
	republished, err := repo.Publish(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, republished.PublishedAt.Equal(firstStamp))

	archived, err := repo.Archive(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusArchived, archived.Status)
	assert.True(t, archived.PublishedAt.Equal(firstStamp))
}

func TestContentIncrementViews(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	c := &models.Content{Title: "Counted"}
	require.NoError(t, repo.Create(ctx, c))

	require.NoError(t, repo.IncrementViews(ctx, c.ID))
	require.NoError(t, repo.IncrementViews(ctx, c.ID))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Metrics.ViewCount)
	assert.NotNil(t, got.Metrics.LastViewed)
}

func TestContentPublishedOnlyFinders(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	draft := &models.Content{Title: "Hidden Draft", Type: models.ContentTypeBlog, Tags: []string{"news"}}
	require.NoError(t, repo.Create(ctx, draft))

	live := &models.Content{
		Title:  "Visible Post",
		Type:   models.ContentTypeBlog,
		Status: models.ContentStatusPublished,
		Body:   "body",
		Tags:   []string{"news"},
	}
	require.NoError(t, repo.Create(ctx, live))

	byType, err := repo.FindByType(ctx, models.ContentTypeBlog)
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Visible Post", byType[0].Title)

	byTag, err := repo.FindByTags(ctx, []string{"news"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)

	// Slug lookup sees drafts.
	bySlug, err := repo.FindBySlug(ctx, "hidden-draft")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
}

func TestPaginateMeta(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c := &models.Content{Title: fmt.Sprintf("Post %d", i)}
		require.NoError(t, repo.Create(ctx, c))
	}

	page, err := repo.Paginate(ctx, bson.M{}, 2, 2)
	require.NoError(t, err)

	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(2), page.Meta.CurrentPage)
	assert.Equal(t, int64(3), page.Meta.TotalPages)
	assert.Equal(t, int64(5), page.Meta.TotalItems)
	assert.True(t, page.Meta.HasNextPage)
	assert.True(t, page.Meta.HasPrevPage)

	last, err := repo.Paginate(ctx, bson.M{}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Data, 1)
	assert.False(t, last.Meta.HasNextPage)
}

func TestUserDuplicateChecks(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h", Salt: "s"}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, models.UserRoleContributor, first.Role)
	assert.Equal(t, models.UserStatusPending, first.Status)

	sameEmail := &models.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "h", Salt: "s"}
	err := repo.Create(ctx, sameEmail)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "Email already exists")

	sameUsername := &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h", Salt: "s"}
	err = repo.Create(ctx, sameUsername)
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Contains(t, err.Error(), "Username already exists")
}

func TestUserHiddenFieldsAndAuthLookup(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "bob", Email: "bob@example.com", PasswordHash: "secret-hash", Salt: "salty"}
	require.NoError(t, repo.Create(ctx, u))

	plain, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, plain)
	assert.Empty(t, plain.PasswordHash)
	assert.Empty(t, plain.Salt)

	auth, err := repo.FindForAuthentication(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, "secret-hash", auth.PasswordHash)
	assert.Equal(t, "salty", auth.Salt)
}

func TestUserVerifyEmailPromotesPending(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{
		Username:          "carol",
		Email:             "carol@example.com",
		PasswordHash:      "h",
		Salt:              "s",
		VerificationToken: "tok-123",
	}
	require.NoError(t, repo.Create(ctx, u))

	verified, err := repo.VerifyEmail(ctx, "tok-123")
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)
	assert.Equal(t, models.UserStatusActive, verified.Status)
	assert.NotNil(t, verified.VerifiedAt)

	_, err = repo.VerifyEmail(ctx, "tok-123")
	assert.True(t, apperr.IsNotFound(err))
}

func TestUserProfileAllowList(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "dave", Email: "dave@example.com", PasswordHash: "h", Salt: "s",
		Profile: models.UserProfile{DisplayName: "Dave", Bio: "old bio"}}
	require.NoError(t, repo.Create(ctx, u))

	updated, err := repo.UpdateProfile(ctx, u.ID, map[string]any{"bio": "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Profile.Bio)
	// Sibling sub-fields stay untouched.
	assert.Equal(t, "Dave", updated.Profile.DisplayName)

	_, err = repo.UpdateProfile(ctx, u.ID, map[string]any{"role": "super_admin"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSessionExpiryClamp(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewSessionRepository(db)
	ctx := context.Background()

	s := &models.Session{
		UserID:    "user-1",
		ExpiresAt: time.Now().UTC().Add(40 * 24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, s))

	assert.NotEmpty(t, s.SessionID)
	maxExpiry := s.CreatedAt.Add(models.MaxSessionAge)
	assert.WithinDuration(t, maxExpiry, s.ExpiresAt, 2*time.Second)

	active, err := repo.FindActive(ctx, s.SessionID)
	require.NoError(t, err)
	require.NotNil(t, active)

	require.NoError(t, repo.Deactivate(ctx, s.SessionID))
	gone, err := repo.FindActive(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSettingsLifecycle(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewSettingsRepository(db, nil, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.InitializeDefaults(ctx))

	// Seeding twice never overwrites a changed value.
	_, err := repo.SetSetting(ctx, "site_title", models.StringValue("My Site"), "tester")
	require.NoError(t, err)
	require.NoError(t, repo.InitializeDefaults(ctx))

	got, err := repo.GetSetting(ctx, "site_title")
	require.NoError(t, err)
	assert.Equal(t, "My Site", got.Value.Str)

	// Undeclared keys are rejected.
	_, err = repo.SetSetting(ctx, "no_such_key", models.StringValue("x"), "tester")
	assert.True(t, apperr.IsNotFound(err))

	// Validation gate: options allow-list.
	_, err = repo.SetSetting(ctx, "default_content_status", models.StringValue("bogus"), "tester")
	assert.True(t, apperr.IsValidation(err))

	// Required numeric setting accepts -1: no numeric bound checks exist.
	_, err = repo.SetSetting(ctx, "posts_per_page", models.NumberValue(-1), "tester")
	assert.NoError(t, err)

	// Reset to default restores the seeded value.
	reset, err := repo.ResetSettingToDefault(ctx, "site_title", "tester")
	require.NoError(t, err)
	assert.Equal(t, "Inkwell", reset.Value.Str)
}

func TestSettingsAccessLevels(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewSettingsRepository(db, nil, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.InitializeDefaults(ctx))

	adminView, err := repo.GetSettingsByAccessLevel(ctx, models.AccessLevelAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, adminView)
	for _, s := range adminView {
		assert.NotEqual(t, models.AccessLevelSuperAdmin, s.AccessLevel, "admin view leaked %q", s.Key)
	}

	publicView, err := repo.GetSettingsByAccessLevel(ctx, models.AccessLevel("unknown"))
	require.NoError(t, err)
	for _, s := range publicView {
		assert.Equal(t, models.AccessLevelPublic, s.AccessLevel)
	}

	flat, err := repo.GetPublicSettings(ctx)
	require.NoError(t, err)
	assert.Contains(t, flat, "site_title")
	assert.NotContains(t, flat, "maintenance_mode")
	assert.Equal(t, "Inkwell", flat["site_title"])
}

func TestSettingsBulkUpdateReportsPerKey(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewSettingsRepository(db, nil, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.InitializeDefaults(ctx))

	results := repo.BulkUpdateSettings(ctx, map[string]models.SettingValue{
		"site_title": models.StringValue("Bulk Site"),
		"missing":    models.StringValue("x"),
	}, "tester")

	require.Len(t, results, 2)
	byKey := map[string]repository.KeyResult{}
	for _, r := range results {
		byKey[r.Key] = r
	}
	assert.True(t, byKey["site_title"].Success)
	assert.False(t, byKey["missing"].Success)
	assert.NotEmpty(t, byKey["missing"].Error)

	// The failure did not block the other key.
	got, err := repo.GetSetting(ctx, "site_title")
	require.NoError(t, err)
	assert.Equal(t, "Bulk Site", got.Value.Str)
}

func TestMediaUsageAndProcessing(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewMediaRepository(db)
	ctx := context.Background()

	m := &models.Media{
		FileName: "hero.png",
		FilePath: "/uploads/2026/hero.png",
		MimeType: "image/png",
	}
	require.NoError(t, repo.Create(ctx, m))
	assert.Equal(t, models.MediaTypeImage, m.MediaType)
	assert.Equal(t, models.ProcessingStatusPending, m.Processing.Status)

	dup := &models.Media{FileName: "hero2.png", FilePath: "/uploads/2026/hero.png", MimeType: "image/png"}
	err := repo.Create(ctx, dup)
	assert.True(t, apperr.IsConflict(err))

	require.NoError(t, repo.AttachUsage(ctx, m.ID, models.MediaUsage{ContentID: "c1", UsageType: "featured"}))
	require.NoError(t, repo.AttachUsage(ctx, m.ID, models.MediaUsage{ContentID: "c1", UsageType: "featured"}))

	got, err := repo.FindByPath(ctx, "/uploads/2026/hero.png")
	require.NoError(t, err)
	require.Len(t, got.UsedIn, 1)

	// Invalid transition rejected, valid chain accepted.
	_, err = repo.SetProcessingStatus(ctx, m.ID, models.ProcessingStatusCompleted, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = repo.SetProcessingStatus(ctx, m.ID, models.ProcessingStatusProcessing, "")
	require.NoError(t, err)
	done, err := repo.SetProcessingStatus(ctx, m.ID, models.ProcessingStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, models.ProcessingStatusCompleted, done.Processing.Status)

	require.NoError(t, repo.DetachUsage(ctx, m.ID, "c1"))
	unused, err := repo.ListUnused(ctx)
	require.NoError(t, err)
	require.Len(t, unused, 1)
}

func TestAnalyticsRollups(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewAnalyticsRepository(db)
	ctx := context.Background()

	paths := []string{"/blog/a", "/blog/a", "/blog/a", "/blog/b", "/about"}
	for _, p := range paths {
		e := &models.AnalyticsEvent{
			EventType: models.EventTypePageView,
			Path:      p,
			Device:    models.Device{Type: "mobile"},
		}
		require.NoError(t, repo.Record(ctx, e))
	}

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)

	n, err := repo.CountByType(ctx, models.EventTypePageView, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	top, err := repo.TopPaths(ctx, from, to, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "/blog/a", top[0].Path)
	assert.Equal(t, int64(3), top[0].Count)

	devices, err := repo.DeviceBreakdown(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "mobile", devices[0].DeviceType)

	pruned, err := repo.PruneOlderThan(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(5), pruned)
}

func TestUpdateLeavesDocumentUntouchedOnInvalidMerge(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	draft := &models.Content{Title: "No Body Yet"}
	require.NoError(t, repo.Create(ctx, draft))

	// Flipping the status through the generic merge path must be rejected
	// before anything is written: published content needs a body.
	_, err := repo.UpdateFields(ctx, draft.ID, bson.M{"status": models.ContentStatusPublished})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "contents.update")

	stored, err := repo.FindByID(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, models.ContentStatusDraft, stored.Status)
}

func TestUserDefaultReadsHideCredentials(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "erin", Email: "erin@example.com", PasswordHash: "secret-hash", Salt: "salty"}
	require.NoError(t, repo.Create(ctx, u))

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Empty(t, byID.PasswordHash)
	assert.Empty(t, byID.Salt)

	listed, err := repo.List(ctx, bson.M{"username": "erin"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].PasswordHash)
	assert.Empty(t, listed[0].Salt)

	page, err := repo.Paginate(ctx, bson.M{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Empty(t, page.Data[0].PasswordHash)
	assert.Empty(t, page.Data[0].Salt)
}

func TestContentCreateRejectsUnsluggableTitle(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Content{Title: "!!! ???"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// A supplied slug sidesteps derivation entirely.
	explicit := &models.Content{Title: "!!! ???", Slug: "punctuation-post"}
	require.NoError(t, repo.Create(ctx, explicit))
	assert.Equal(t, "punctuation-post", explicit.Slug)
}

func TestBaseRemoveAndUpdateNotFound(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewContentRepository(db)
	ctx := context.Background()

	c := &models.Content{Title: "Ephemeral"}
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Remove(ctx, c.ID))

	err := repo.Remove(ctx, c.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = repo.UpdateFields(ctx, c.ID, bson.M{"excerpt": "x"})
	assert.True(t, apperr.IsNotFound(err))
}
