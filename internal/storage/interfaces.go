// Package storage defines the persistence contract shared by the ephemeral
// in-memory backend and the relational backend. Both implement Store with
// identical observable behavior; callers never branch on the backend.
//
// Lookup operations signal absence with a nil result and a nil error.
// Errors are reserved for validation failures, uniqueness conflicts and
// infrastructure faults.
package storage

import (
	"context"
	"time"

	"github.com/topbestgames/platform/internal/domain/activity"
	"github.com/topbestgames/platform/internal/domain/analytics"
	"github.com/topbestgames/platform/internal/domain/favorite"
	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/review"
	"github.com/topbestgames/platform/internal/domain/user"
)

// UserStore persists accounts. Username and email lookups and uniqueness
// checks are case-insensitive.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// GameStore persists catalog entries. CreateGame always stores rating 0;
// ratings change only through review mutations.
type GameStore interface {
	GetGame(ctx context.Context, id int64) (*game.Game, error)
	GetGameByTitle(ctx context.Context, title string) (*game.Game, error)
	ListGames(ctx context.Context) ([]game.Game, error)
	ListFeaturedGames(ctx context.Context) ([]game.Game, error)
	ListTrendingGames(ctx context.Context) ([]game.Game, error)
	ListGamesByGenre(ctx context.Context, genre game.Genre) ([]game.Game, error)
	CreateGame(ctx context.Context, g game.Game) (game.Game, error)
	UpdateGame(ctx context.Context, id int64, patch game.Patch) (*game.Game, error)
	DeleteGame(ctx context.Context, id int64) (bool, error)
}

// ReviewStore persists reviews and keeps each game's aggregate rating
// consistent: every create, delete, and any update supplying a rating or
// approval flag recomputes the affected game's rating before returning.
type ReviewStore interface {
	GetReview(ctx context.Context, id int64) (*review.Review, error)
	// ListReviewsByGame returns approved reviews only, newest first.
	ListReviewsByGame(ctx context.Context, gameID int64) ([]review.Review, error)
	ListReviewsByUser(ctx context.Context, userID int64) ([]review.Review, error)
	ListPendingReviews(ctx context.Context) ([]review.Review, error)
	ListAllReviews(ctx context.Context) ([]review.Review, error)
	CreateReview(ctx context.Context, r review.Review) (review.Review, error)
	UpdateReview(ctx context.Context, id int64, patch review.Patch) (*review.Review, error)
	DeleteReview(ctx context.Context, id int64) (bool, error)
}

// FavoriteStore persists user-game bookmarks with a unique (user, game)
// pair.
type FavoriteStore interface {
	GetFavoriteByID(ctx context.Context, id int64) (*favorite.Favorite, error)
	GetFavorite(ctx context.Context, userID, gameID int64) (*favorite.Favorite, error)
	ListFavoritesByUser(ctx context.Context, userID int64) ([]favorite.Favorite, error)
	CreateFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error)
	DeleteFavorite(ctx context.Context, userID, gameID int64) (bool, error)
	IsFavorite(ctx context.Context, userID, gameID int64) (bool, error)
}

// ActivityLogStore is an append-only audit trail.
type ActivityLogStore interface {
	AppendActivity(ctx context.Context, e activity.Entry) (activity.Entry, error)
	// ListRecentActivity returns the newest entries first, at most limit.
	ListRecentActivity(ctx context.Context, limit int) ([]activity.Entry, error)
}

// AnalyticsStore persists daily metric buckets keyed by calendar day.
type AnalyticsStore interface {
	// ListAnalytics returns buckets for the last days days, newest first.
	ListAnalytics(ctx context.Context, days int) ([]analytics.Analytics, error)
	// UpsertDailyAnalytics accumulates delta into date's bucket, creating
	// the bucket if the day has none yet.
	UpsertDailyAnalytics(ctx context.Context, date time.Time, delta analytics.Delta) (analytics.Analytics, error)
}

// Session is an opaque server-side login token.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionStore persists login sessions through whichever backend is active.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) (Session, error)
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) (bool, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Store is the full persistence contract a backend satisfies.
type Store interface {
	UserStore
	GameStore
	ReviewStore
	FavoriteStore
	ActivityLogStore
	AnalyticsStore

	// Sessions returns the backend's session store.
	Sessions() SessionStore
}
