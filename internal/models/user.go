package models

import (
	"time"
)

type UserRole string

const (
	UserRoleSuperAdmin  UserRole = "super_admin"
	UserRoleAdmin       UserRole = "admin"
	UserRoleEditor      UserRole = "editor"
	UserRoleAuthor      UserRole = "author"
	UserRoleContributor UserRole = "contributor"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

type UserProfile struct {
	DisplayName string `bson:"display_name,omitempty" json:"display_name,omitempty"`
	FirstName   string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName    string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Bio         string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL   string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Website     string `bson:"website,omitempty" json:"website,omitempty"`
	Location    string `bson:"location,omitempty" json:"location,omitempty"`
}

type UserSettings struct {
	Language           string `bson:"language,omitempty" json:"language,omitempty"`
	Timezone           string `bson:"timezone,omitempty" json:"timezone,omitempty"`
	EmailNotifications bool   `bson:"email_notifications" json:"email_notifications"`
	TwoFactorEnabled   bool   `bson:"two_factor_enabled" json:"two_factor_enabled"`
}

type UserActivity struct {
	LastLogin    *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	LoginCount   int64      `bson:"login_count" json:"login_count"`
	FailedLogins int64      `bson:"failed_logins" json:"failed_logins"`
	LockedUntil  *time.Time `bson:"locked_until,omitempty" json:"locked_until,omitempty"`
}

type User struct {
	Meta     `bson:",inline"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`

	// Hidden from every read unless the caller explicitly re-includes them.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	Salt         string `bson:"salt,omitempty" json:"-"`

	Role     UserRole     `bson:"role" json:"role"`
	Status   UserStatus   `bson:"status" json:"status"`
	Profile  UserProfile  `bson:"profile,omitempty" json:"profile,omitempty"`
	Settings UserSettings `bson:"settings,omitempty" json:"settings,omitempty"`
	Activity UserActivity `bson:"activity" json:"activity"`

	EmailVerified     bool       `bson:"email_verified" json:"email_verified"`
	VerificationToken string     `bson:"verification_token,omitempty" json:"-"`
	VerifiedAt        *time.Time `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}

func (u User) Validate() error {
	if u.Username == "" {
		return errRequired("username")
	}
	if u.Email == "" {
		return errRequired("email")
	}
	if u.PasswordHash == "" {
		return errRequired("password_hash")
	}
	return nil
}
