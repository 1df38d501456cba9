package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/apperr"
	"inkwell/cms/internal/models"
)

// hiddenUserFields is the default projection for user reads. Credential
// material only comes back through FindForAuthentication.
var hiddenUserFields = bson.M{
	"password_hash":      0,
	"salt":               0,
	"verification_token": 0,
}

// Sub-fields that profile and settings updates may address. Anything else
// is rejected rather than written through a dynamic path.
var (
	allowedProfileFields = map[string]bool{
		"display_name": true,
		"first_name":   true,
		"last_name":    true,
		"bio":          true,
		"avatar_url":   true,
		"website":      true,
		"location":     true,
	}
	allowedSettingsFields = map[string]bool{
		"language":            true,
		"timezone":            true,
		"email_notifications": true,
		"two_factor_enabled":  true,
	}
)

type UserRepository struct {
	*Base[models.User, *models.User]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		Base: NewBase[models.User, *models.User](db.Collection("users")),
	}
}

// Create inserts a new user after a single disjunctive duplicate lookup on
// username and email. The unique indexes catch the lookup-then-insert race.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	const op = "users.create"

	if u.Username == "" || u.Email == "" || u.PasswordHash == "" {
		return apperr.Validationf(op, "username, email and password_hash are required")
	}
	if u.Role == "" {
		u.Role = models.UserRoleContributor
	}
	if u.Status == "" {
		u.Status = models.UserStatusPending
	}

	existing, err := r.Base.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": u.Username},
		bson.M{"email": u.Email},
	}}, WithProjection(bson.M{"username": 1, "email": 1}))
	if err != nil {
		return apperr.Storage(op, err)
	}
	if existing != nil {
		if existing.Email == u.Email {
			return apperr.Conflictf(op, "Email already exists")
		}
		return apperr.Conflictf(op, "Username already exists")
	}

	return r.Insert(ctx, u)
}

// FindForAuthentication returns the user with the normally hidden
// credential fields included. It is the only read that bypasses the
// default projection.
func (r *UserRepository) FindForAuthentication(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	return r.Base.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": usernameOrEmail},
		bson.M{"email": usernameOrEmail},
	}})
}

// The inherited reads are shadowed so hiding credential fields is the
// default; a caller-supplied projection still wins because options apply
// in order.
func (r *UserRepository) FindOne(ctx context.Context, filter bson.M, opts ...Option) (*models.User, error) {
	return r.Base.FindOne(ctx, filter, withHiddenFields(opts)...)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID, opts ...Option) (*models.User, error) {
	return r.Base.FindByID(ctx, id, withHiddenFields(opts)...)
}

func (r *UserRepository) List(ctx context.Context, filter bson.M, opts ...Option) ([]models.User, error) {
	return r.Base.List(ctx, filter, withHiddenFields(opts)...)
}

func (r *UserRepository) Paginate(ctx context.Context, filter bson.M, page, perPage int64, opts ...Option) (*Page[models.User], error) {
	return r.Base.Paginate(ctx, filter, page, perPage, withHiddenFields(opts)...)
}

func (r *UserRepository) Search(ctx context.Context, term string, opts ...Option) ([]models.User, error) {
	return r.Base.Search(ctx, term, withHiddenFields(opts)...)
}

func withHiddenFields(opts []Option) []Option {
	return append([]Option{WithProjection(hiddenUserFields)}, opts...)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByRole(ctx context.Context, role models.UserRole, opts ...Option) ([]models.User, error) {
	return r.List(ctx, bson.M{"role": role}, opts...)
}

// VerifyEmail clears the verification token, stamps the verification time,
// and promotes a pending account to active.
func (r *UserRepository) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	const op = "users.verifyEmail"

	user, err := r.FindOne(ctx, bson.M{"verification_token": token})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if user == nil {
		return nil, apperr.NotFoundf(op, "invalid verification token")
	}

	fields := bson.M{
		"email_verified":     true,
		"verification_token": nil,
		"verified_at":        time.Now().UTC(),
	}
	if user.Status == models.UserStatusPending {
		fields["status"] = models.UserStatusActive
	}
	return r.Update(ctx, user.ID, fields)
}

func (r *UserRepository) SuspendUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.Update(ctx, id, bson.M{"status": models.UserStatusSuspended})
}

func (r *UserRepository) ActivateUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.Update(ctx, id, bson.M{"status": models.UserStatusActive})
}

func (r *UserRepository) RecordFailedLogin(ctx context.Context, id primitive.ObjectID) error {
	const op = "users.recordFailedLogin"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"activity.failed_logins": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "user %s not found", id.Hex())
	}
	return nil
}

func (r *UserRepository) ResetFailedLogins(ctx context.Context, id primitive.ObjectID) error {
	const op = "users.resetFailedLogins"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"activity.failed_logins": 0,
			"activity.locked_until":  nil,
			"updated_at":             time.Now().UTC(),
		},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "user %s not found", id.Hex())
	}
	return nil
}

// UpdateLastLogin stamps the login instant and bumps the login counter.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	const op = "users.updateLastLogin"
	res, err := r.Collection().UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"activity.login_count": 1},
		"$set": bson.M{
			"activity.last_login": time.Now().UTC(),
			"updated_at":          time.Now().UTC(),
		},
	})
	if err != nil {
		return apperr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf(op, "user %s not found", id.Hex())
	}
	return nil
}

// UpdateProfile rewrites only the addressed profile sub-fields, leaving
// siblings untouched. Unknown keys are rejected.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.User, error) {
	return r.updateSubFields(ctx, "users.updateProfile", id, "profile", allowedProfileFields, fields)
}

func (r *UserRepository) UpdateSettings(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.User, error) {
	return r.updateSubFields(ctx, "users.updateSettings", id, "settings", allowedSettingsFields, fields)
}

func (r *UserRepository) updateSubFields(ctx context.Context, op string, id primitive.ObjectID, prefix string, allowed map[string]bool, fields map[string]any) (*models.User, error) {
	if len(fields) == 0 {
		return nil, apperr.Validationf(op, "no fields to update")
	}
	set := bson.M{}
	for key, value := range fields {
		if !allowed[key] {
			return nil, apperr.Validationf(op, "field %q is not updatable", key)
		}
		set[prefix+"."+key] = value
	}
	return r.Update(ctx, id, set)
}
