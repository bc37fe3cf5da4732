package users

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Role represents a role claim supplied by the identity provider
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func IsValidRole(role string) bool {
	switch role {
	case string(RoleUser), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// StringList is a JSONB-backed list of strings
type StringList []string

// Value implements driver.Valuer for JSONB storage
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// User mirrors an identity-provider account. The provider owns the account
// and its credentials; rows here exist so bookings can reference a stable
// user id and notifications can resolve an email address. The primary key is
// the provider's user id, not a locally generated UUID.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;size:64"`
	Name      string     `json:"name" gorm:"size:255"`
	Email     string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Image     string     `json:"image" gorm:"size:500"`
	Role      Role       `json:"role" gorm:"not null;default:'USER'"`
	Favorites StringList `json:"favorites" gorm:"type:jsonb;default:'[]'"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IdentityEvent is the payload of the identity provider's user-sync webhook
type IdentityEvent struct {
	Type string           `json:"type"` // user.created, user.updated, user.deleted
	Data IdentityUserData `json:"data"`
}

// IdentityUserData carries the user attributes inside an IdentityEvent
type IdentityUserData struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ImageURL  string `json:"image_url"`
	Role      string `json:"role"`
}

// ToggleFavoriteRequest marks or unmarks a movie as a favorite
type ToggleFavoriteRequest struct {
	MovieID string `json:"movie_id" binding:"required"`
}
