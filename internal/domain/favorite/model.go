// Package favorite defines the user-game bookmark record.
package favorite

import (
	"time"

	"github.com/topbestgames/platform/internal/core"
)

// Favorite marks a game as bookmarked by a user. The (UserID, GameID) pair
// is unique; storage rejects duplicates with a conflict error.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	GameID    int64     `json:"gameId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to create a favorite.
func (f Favorite) Validate() error {
	if f.UserID == 0 {
		return core.RequiredError("userId")
	}
	if f.GameID == 0 {
		return core.RequiredError("gameId")
	}
	return nil
}
