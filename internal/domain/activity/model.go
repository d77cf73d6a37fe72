// Package activity defines the append-only audit trail entry.
package activity

import (
	"strings"
	"time"

	"github.com/topbestgames/platform/internal/core"
)

// Entry records an administrative or user action, such as "Game Added" or
// "Review Approved". UserID is zero when no account is attached.
type Entry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	UserID    int64     `json:"userId,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to append an entry.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Action) == "" {
		return core.RequiredError("action")
	}
	return nil
}
