// Package review defines the review record and its mutation shape.
package review

import (
	"strings"
	"time"

	"github.com/topbestgames/platform/internal/core"
)

// Review is a user review of a game. New reviews always start unapproved
// and enter the catalog's rating only once moderation approves them.
type Review struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	GameID     int64     `json:"gameId"`
	UserID     int64     `json:"userId"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the fields required to create a review.
func (r Review) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return core.RequiredError("content")
	}
	if r.Rating < 1 || r.Rating > 5 {
		return core.NewValidationError("rating", "must be between 1 and 5")
	}
	if r.GameID == 0 {
		return core.RequiredError("gameId")
	}
	if r.UserID == 0 {
		return core.RequiredError("userId")
	}
	return nil
}

// Patch is a partial update. Supplying Rating or IsApproved triggers a
// recomputation of the game's aggregate rating in the storage layer.
type Patch struct {
	Content    *string `json:"content,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	IsApproved *bool   `json:"isApproved,omitempty"`
}

// Validate checks the fields the patch supplies.
func (p Patch) Validate() error {
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		return core.RequiredError("content")
	}
	if p.Rating != nil && (*p.Rating < 1 || *p.Rating > 5) {
		return core.NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

// TouchesRating reports whether applying the patch requires the game's
// aggregate rating to be recomputed.
func (p Patch) TouchesRating() bool {
	return p.Rating != nil || p.IsApproved != nil
}

// Apply copies the supplied fields onto r.
func (p Patch) Apply(r *Review) {
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.IsApproved != nil {
		r.IsApproved = *p.IsApproved
	}
}
