package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type SettingType string

const (
	SettingTypeString  SettingType = "string"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeObject  SettingType = "object"
	SettingTypeArray   SettingType = "array"
)

type AccessLevel string

const (
	AccessLevelPublic     AccessLevel = "public"
	AccessLevelAdmin      AccessLevel = "admin"
	AccessLevelSuperAdmin AccessLevel = "super_admin"
)

// SettingValue is a tagged union over the value shapes a setting may hold.
// The stored bson stays flat: a string setting persists as a plain string,
// the discriminator lives in the sibling `type` field of the Setting.
type SettingValue struct {
	Type   SettingType
	Str    string
	Num    float64
	Bool   bool
	Object map[string]any
	Array  []any
}

func StringValue(s string) SettingValue  { return SettingValue{Type: SettingTypeString, Str: s} }
func NumberValue(n float64) SettingValue { return SettingValue{Type: SettingTypeNumber, Num: n} }
func BoolValue(b bool) SettingValue      { return SettingValue{Type: SettingTypeBoolean, Bool: b} }
func ObjectValue(m map[string]any) SettingValue {
	return SettingValue{Type: SettingTypeObject, Object: m}
}
func ArrayValue(a []any) SettingValue { return SettingValue{Type: SettingTypeArray, Array: a} }

// Interface returns the active branch as a plain Go value.
func (v SettingValue) Interface() any {
	switch v.Type {
	case SettingTypeString:
		return v.Str
	case SettingTypeNumber:
		return v.Num
	case SettingTypeBoolean:
		return v.Bool
	case SettingTypeObject:
		return v.Object
	case SettingTypeArray:
		return v.Array
	}
	return nil
}

// IsEmpty reports whether the value counts as absent for required-field
// checks. Zero numbers and false booleans are present values.
func (v SettingValue) IsEmpty() bool {
	switch v.Type {
	case SettingTypeString:
		return v.Str == ""
	case SettingTypeObject:
		return len(v.Object) == 0
	case SettingTypeArray:
		return len(v.Array) == 0
	case SettingTypeNumber, SettingTypeBoolean:
		return false
	}
	return true
}

func (v SettingValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(v.Interface())
}

func (v *SettingValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*v = StringValue(raw.StringValue())
	case bsontype.Double:
		*v = NumberValue(raw.Double())
	case bsontype.Int32:
		*v = NumberValue(float64(raw.Int32()))
	case bsontype.Int64:
		*v = NumberValue(float64(raw.Int64()))
	case bsontype.Boolean:
		*v = BoolValue(raw.Boolean())
	case bsontype.EmbeddedDocument:
		var m map[string]any
		if err := raw.Unmarshal(&m); err != nil {
			return err
		}
		*v = ObjectValue(m)
	case bsontype.Array:
		var a []any
		if err := raw.Unmarshal(&a); err != nil {
			return err
		}
		*v = ArrayValue(a)
	case bsontype.Null, bsontype.Undefined:
		*v = SettingValue{}
	default:
		return fmt.Errorf("unsupported setting value type %s", t)
	}
	return nil
}

func (v SettingValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *SettingValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	got, err := CoerceSettingValue(raw)
	if err != nil {
		return err
	}
	*v = got
	return nil
}

// CoerceSettingValue lifts a decoded JSON/bson value into the union,
// inferring the branch from the Go dynamic type.
func CoerceSettingValue(raw any) (SettingValue, error) {
	switch val := raw.(type) {
	case nil:
		return SettingValue{}, nil
	case string:
		return StringValue(val), nil
	case float64:
		return NumberValue(val), nil
	case int:
		return NumberValue(float64(val)), nil
	case int32:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case bool:
		return BoolValue(val), nil
	case map[string]any:
		return ObjectValue(val), nil
	case bson.M:
		return ObjectValue(map[string]any(val)), nil
	case []any:
		return ArrayValue(val), nil
	case bson.A:
		return ArrayValue([]any(val)), nil
	case SettingValue:
		return val, nil
	}
	return SettingValue{}, fmt.Errorf("unsupported setting value %T", raw)
}

// SettingValidation constrains candidate values for one setting key.
// Length and pattern rules only apply to string-typed settings.
type SettingValidation struct {
	Required  bool   `bson:"required,omitempty" json:"required,omitempty"`
	MinLength *int   `bson:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength *int   `bson:"max_length,omitempty" json:"max_length,omitempty"`
	Pattern   string `bson:"pattern,omitempty" json:"pattern,omitempty"`
	Options   []any  `bson:"options,omitempty" json:"options,omitempty"`
}

type Setting struct {
	Meta         `bson:",inline"`
	Key          string             `bson:"key" json:"key"`
	Value        SettingValue       `bson:"value" json:"value"`
	Type         SettingType        `bson:"type" json:"type"`
	DefaultValue *SettingValue      `bson:"default_value,omitempty" json:"default_value,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	Label        string             `bson:"label,omitempty" json:"label,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	AccessLevel  AccessLevel        `bson:"access_level" json:"access_level"`
	Editable     bool               `bson:"editable" json:"editable"`
	Validation   *SettingValidation `bson:"validation,omitempty" json:"validation,omitempty"`
	UpdatedBy    string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

func (s Setting) Validate() error {
	if s.Key == "" {
		return errRequired("key")
	}
	return nil
}

// VisibleAccessLevels expands one caller level into the set of setting
// levels it may read. The hierarchy is cumulative; anything unrecognized
// degrades to public.
func VisibleAccessLevels(level AccessLevel) []AccessLevel {
	switch level {
	case AccessLevelSuperAdmin:
		return []AccessLevel{AccessLevelPublic, AccessLevelAdmin, AccessLevelSuperAdmin}
	case AccessLevelAdmin:
		return []AccessLevel{AccessLevelPublic, AccessLevelAdmin}
	default:
		return []AccessLevel{AccessLevelPublic}
	}
}
