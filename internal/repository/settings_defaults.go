package repository

import (
	"inkwell/cms/internal/models"
)

func intPtr(n int) *int { return &n }

func valuePtr(v models.SettingValue) *models.SettingValue { return &v }

// defaultSettings is the baseline configuration seeded on first start.
var defaultSettings = []models.Setting{
	{
		Key:          "site_title",
		Value:        models.StringValue("Inkwell"),
		Type:         models.SettingTypeString,
		DefaultValue: valuePtr(models.StringValue("Inkwell")),
		Category:     "general",
		Label:        "Site title",
		AccessLevel:  models.AccessLevelPublic,
		Editable:     true,
		Validation: &models.SettingValidation{
			Required:  true,
			MinLength: intPtr(1),
			MaxLength: intPtr(120),
		},
	},
	{
		Key:          "site_description",
		Value:        models.StringValue(""),
		Type:         models.SettingTypeString,
		DefaultValue: valuePtr(models.StringValue("")),
		Category:     "general",
		Label:        "Site description",
		AccessLevel:  models.AccessLevelPublic,
		Editable:     true,
		Validation: &models.SettingValidation{
			MaxLength: intPtr(300),
		},
	},
	{
		Key:          "posts_per_page",
		Value:        models.NumberValue(10),
		Type:         models.SettingTypeNumber,
		DefaultValue: valuePtr(models.NumberValue(10)),
		Category:     "content",
		Label:        "Posts per page",
		AccessLevel:  models.AccessLevelPublic,
		Editable:     true,
		Validation: &models.SettingValidation{
			Required: true,
		},
	},
	{
		Key:          "default_content_status",
		Value:        models.StringValue("draft"),
		Type:         models.SettingTypeString,
		DefaultValue: valuePtr(models.StringValue("draft")),
		Category:     "content",
		Label:        "Default content status",
		AccessLevel:  models.AccessLevelAdmin,
		Editable:     true,
		Validation: &models.SettingValidation{
			Required: true,
			Options:  []any{"draft", "published"},
		},
	},
	{
		Key:          "comments_enabled",
		Value:        models.BoolValue(true),
		Type:         models.SettingTypeBoolean,
		DefaultValue: valuePtr(models.BoolValue(true)),
		Category:     "content",
		Label:        "Comments enabled",
		AccessLevel:  models.AccessLevelPublic,
		Editable:     true,
	},
	{
		Key:          "contact_email",
		Value:        models.StringValue(""),
		Type:         models.SettingTypeString,
		DefaultValue: valuePtr(models.StringValue("")),
		Category:     "general",
		Label:        "Contact email",
		AccessLevel:  models.AccessLevelAdmin,
		Editable:     true,
		Validation: &models.SettingValidation{
			Pattern: `^$|^[^@\s]+@[^@\s]+\.[^@\s]+$`,
		},
	},
	{
		Key:          "maintenance_mode",
		Value:        models.BoolValue(false),
		Type:         models.SettingTypeBoolean,
		DefaultValue: valuePtr(models.BoolValue(false)),
		Category:     "system",
		Label:        "Maintenance mode",
		AccessLevel:  models.AccessLevelSuperAdmin,
		Editable:     true,
	},
	{
		Key:          "allowed_upload_types",
		Value:        models.ArrayValue([]any{"image/jpeg", "image/png", "image/gif", "application/pdf"}),
		Type:         models.SettingTypeArray,
		DefaultValue: valuePtr(models.ArrayValue([]any{"image/jpeg", "image/png", "image/gif", "application/pdf"})),
		Category:     "media",
		Label:        "Allowed upload types",
		AccessLevel:  models.AccessLevelAdmin,
		Editable:     true,
	},
	{
		Key:          "social_links",
		Value:        models.ObjectValue(map[string]any{}),
		Type:         models.SettingTypeObject,
		DefaultValue: valuePtr(models.ObjectValue(map[string]any{})),
		Category:     "general",
		Label:        "Social links",
		AccessLevel:  models.AccessLevelPublic,
		Editable:     true,
	},
	{
		Key:          "analytics_tracking_id",
		Value:        models.StringValue(""),
		Type:         models.SettingTypeString,
		DefaultValue: valuePtr(models.StringValue("")),
		Category:     "system",
		Label:        "Analytics tracking id",
		AccessLevel:  models.AccessLevelSuperAdmin,
		Editable:     false,
	},
}
