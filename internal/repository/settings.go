package repository

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/cache"
	"inkwell/cms/internal/models"
)

type SettingsRepository struct {
	*Base[models.Setting, *models.Setting]
	cache *cache.SettingsCache
	log   zerolog.Logger
}

// NewSettingsRepository wraps the settings collection. The cache is
// optional; nil disables public-settings caching entirely.
func NewSettingsRepository(db *mongo.Database, settingsCache *cache.SettingsCache, log zerolog.Logger) *SettingsRepository {
	return &SettingsRepository{
		Base:  NewBase[models.Setting, *models.Setting](db.Collection("settings")),
		cache: settingsCache,
		log:   log,
	}
}

// GetSetting returns the full record for one key, or not-found.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	const op = "settings.get"
	setting, err := r.FindOne(ctx, bson.M{"key": key})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if setting == nil {
		return nil, apperr.NotFoundf(op, "setting %q not found", key)
	}
	return setting, nil
}

// SetSetting writes a new value for a declared key. Undeclared keys are
// not created here; the value must pass the key's validation rules.
func (r *SettingsRepository) SetSetting(ctx context.Context, key string, value models.SettingValue, userID string) (*models.Setting, error) {
	const op = "settings.set"

	setting, err := r.GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := ValidateValue(*setting, value); err != nil {
		return nil, err
	}

	updated, err := r.Update(ctx, setting.ID, bson.M{
		"value":      value,
		"updated_by": userID,
	})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	r.invalidateCache(ctx)
	return updated, nil
}

// ValidateValue applies a setting's validation rules to a candidate value.
// All checks are AND-combined; the first failure rejects. Length and
// pattern rules only constrain string-typed settings.
func ValidateValue(setting models.Setting, value models.SettingValue) error {
	const op = "settings.validateValue"

	rules := setting.Validation
	if rules == nil {
		return nil
	}
	if rules.Required && value.IsEmpty() {
		return apperr.Validationf(op, "setting %q requires a value", setting.Key)
	}
	if setting.Type == models.SettingTypeString {
		if rules.MinLength != nil && len(value.Str) < *rules.MinLength {
			return apperr.Validationf(op, "setting %q must be at least %d characters", setting.Key, *rules.MinLength)
		}
		if rules.MaxLength != nil && len(value.Str) > *rules.MaxLength {
			return apperr.Validationf(op, "setting %q must be at most %d characters", setting.Key, *rules.MaxLength)
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return apperr.Validationf(op, "setting %q has an invalid pattern: %v", setting.Key, err)
			}
			if !re.MatchString(value.Str) {
				return apperr.Validationf(op, "setting %q does not match pattern %s", setting.Key, rules.Pattern)
			}
		}
	}
	if len(rules.Options) > 0 {
		// Options read back from storage carry driver-native scalar types
		// (int32, int64); coerce both sides so 10 matches int32(10).
		candidate := value.Interface()
		for _, option := range rules.Options {
			normalized, err := models.CoerceSettingValue(option)
			if err != nil {
				continue
			}
			if reflect.DeepEqual(candidate, normalized.Interface()) {
				return nil
			}
		}
		return apperr.Validationf(op, "setting %q value is not an allowed option", setting.Key)
	}
	return nil
}

// GetPublicSettings collapses all public settings into a flat key to value
// map for unauthenticated consumption. Record metadata is deliberately lost.
func (r *SettingsRepository) GetPublicSettings(ctx context.Context) (map[string]any, error) {
	const op = "settings.getPublic"

	if r.cache != nil {
		if cached, ok := r.cache.Get(ctx); ok {
			return cached, nil
		}
	}

	settings, err := r.List(ctx, bson.M{"access_level": models.AccessLevelPublic})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	flat := make(map[string]any, len(settings))
	for _, s := range settings {
		flat[s.Key] = s.Value.Interface()
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, flat); err != nil {
			r.log.Warn().Err(err).Msg("public settings cache write failed")
		}
	}
	return flat, nil
}

// GetSettingsByAccessLevel returns every setting the given level may read.
// The hierarchy is cumulative; unrecognized levels degrade to public.
func (r *SettingsRepository) GetSettingsByAccessLevel(ctx context.Context, level models.AccessLevel, opts ...Option) ([]models.Setting, error) {
	visible := models.VisibleAccessLevels(level)
	return r.List(ctx, bson.M{"access_level": bson.M{"$in": visible}}, opts...)
}

func (r *SettingsRepository) GetSettingsByCategory(ctx context.Context, category string, opts ...Option) ([]models.Setting, error) {
	return r.List(ctx, bson.M{"category": category}, opts...)
}

// KeyResult reports one key's outcome inside a bulk operation.
type KeyResult struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkUpdateSettings attempts each key independently. A failure on one key
// is recorded in its result and never aborts the rest.
func (r *SettingsRepository) BulkUpdateSettings(ctx context.Context, values map[string]models.SettingValue, userID string) []KeyResult {
	results := make([]KeyResult, 0, len(values))
	for key, value := range values {
		res := KeyResult{Key: key, Success: true}
		if _, err := r.SetSetting(ctx, key, value, userID); err != nil {
			res.Success = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// ImportSettings upserts full setting records, one independent attempt per
// key. Existing records are replaced; new keys are declared.
func (r *SettingsRepository) ImportSettings(ctx context.Context, settings []models.Setting, userID string) []KeyResult {
	results := make([]KeyResult, 0, len(settings))
	for i := range settings {
		s := settings[i]
		res := KeyResult{Key: s.Key, Success: true}
		if err := r.importOne(ctx, s, userID); err != nil {
			res.Success = false
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	r.invalidateCache(ctx)
	return results
}

func (r *SettingsRepository) importOne(ctx context.Context, s models.Setting, userID string) error {
	const op = "settings.import"

	if s.Key == "" {
		return apperr.Validationf(op, "key is required")
	}
	if err := ValidateValue(s, s.Value); err != nil {
		return err
	}

	existing, err := r.FindOne(ctx, bson.M{"key": s.Key})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if existing == nil {
		s.UpdatedBy = userID
		return r.Insert(ctx, &s)
	}
	_, err = r.Update(ctx, existing.ID, bson.M{
		"value":        s.Value,
		"type":         s.Type,
		"category":     s.Category,
		"label":        s.Label,
		"description":  s.Description,
		"access_level": s.AccessLevel,
		"editable":     s.Editable,
		"validation":   s.Validation,
		"updated_by":   userID,
	})
	return err
}

// ExportSettings dumps the records visible at the given access level.
func (r *SettingsRepository) ExportSettings(ctx context.Context, level models.AccessLevel) ([]models.Setting, error) {
	return r.GetSettingsByAccessLevel(ctx, level, WithSort(bson.D{{Key: "key", Value: 1}}))
}

// ResetSettingToDefault restores a key to its declared default. Keys
// without a default cannot be reset.
func (r *SettingsRepository) ResetSettingToDefault(ctx context.Context, key string, userID string) (*models.Setting, error) {
	const op = "settings.reset"

	setting, err := r.GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting.DefaultValue == nil {
		return nil, apperr.Validationf(op, "setting %q has no default value", key)
	}

	updated, err := r.Update(ctx, setting.ID, bson.M{
		"value":      *setting.DefaultValue,
		"updated_by": userID,
	})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	r.invalidateCache(ctx)
	return updated, nil
}

// InitializeDefaults seeds the baseline settings, inserting each key only
// if it is absent. Existing values are never overwritten, so the call is
// idempotent.
func (r *SettingsRepository) InitializeDefaults(ctx context.Context) error {
	const op = "settings.initializeDefaults"

	now := time.Now().UTC()
	for i := range defaultSettings {
		seed := defaultSettings[i]
		seed.PrepareInsert(now)

		res, err := r.Collection().UpdateOne(ctx,
			bson.M{"key": seed.Key},
			bson.M{"$setOnInsert": seed},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return apperr.Storage(op, fmt.Errorf("seed %q: %w", seed.Key, err))
		}
		if res.UpsertedCount > 0 {
			r.log.Debug().Str("key", seed.Key).Msg("seeded default setting")
		}
	}
	r.invalidateCache(ctx)
	return nil
}

func (r *SettingsRepository) invalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.log.Warn().Err(err).Msg("public settings cache invalidation failed")
	}
}
