// Package user defines the account record and its mutation shapes.
package user

import (
	"strings"
	"time"

	"github.com/topbestgames/platform/internal/core"
)

// User is a registered account. Password holds the bcrypt hash, never the
// plaintext, and is excluded from JSON output.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to create an account.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return core.RequiredError("username")
	}
	if u.Password == "" {
		return core.RequiredError("password")
	}
	if strings.TrimSpace(u.Email) == "" {
		return core.RequiredError("email")
	}
	if !strings.Contains(u.Email, "@") {
		return core.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"fullName,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}

// Validate checks the fields the patch supplies.
func (p Patch) Validate() error {
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		return core.RequiredError("username")
	}
	if p.Password != nil && *p.Password == "" {
		return core.RequiredError("password")
	}
	if p.Email != nil {
		if strings.TrimSpace(*p.Email) == "" {
			return core.RequiredError("email")
		}
		if !strings.Contains(*p.Email, "@") {
			return core.NewValidationError("email", "must be a valid email address")
		}
	}
	return nil
}

// Apply copies the supplied fields onto u.
func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
