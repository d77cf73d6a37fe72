// Package postgres is the relational backend. It mirrors the in-memory
// backend's observable behavior exactly: nil results for absent rows,
// conflict errors for duplicates, and synchronous rating recomputation on
// review mutations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/activity"
	"github.com/topbestgames/platform/internal/domain/analytics"
	"github.com/topbestgames/platform/internal/domain/favorite"
	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/review"
	"github.com/topbestgames/platform/internal/domain/user"
	"github.com/topbestgames/platform/internal/rating"
	"github.com/topbestgames/platform/internal/storage"
	"github.com/topbestgames/platform/pkg/logger"
	"github.com/topbestgames/platform/pkg/metrics"
)

// Store is the durable backend over database/sql with the pq driver.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New wraps an open database handle. The schema must already be applied.
func New(db *sql.DB, log *logger.Logger) *Store {
	return &Store{db: db, log: log, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func toNullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func toNullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// --- UserStore ---

const userColumns = `id, username, password, email, full_name, avatar, is_admin, created_at`

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Email, &u.FullName, &u.Avatar, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	if existing, err := s.GetUserByUsername(ctx, u.Username); err != nil {
		return user.User{}, err
	} else if existing != nil {
		return user.User{}, core.NewConflictError("user", u.Username, "username already taken")
	}
	if existing, err := s.GetUserByEmail(ctx, u.Email); err != nil {
		return user.User{}, err
	} else if existing != nil {
		return user.User{}, core.NewConflictError("user", u.Email, "email already registered")
	}

	u.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password, email, full_name, avatar, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		u.Username, u.Password, u.Email, u.FullName, u.Avatar, u.IsAdmin, u.CreatedAt,
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return user.User{}, core.NewConflictError("user", u.Username, "username or email already taken")
	}
	if err != nil {
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch user.Patch) (*user.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	u, err := s.GetUser(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	if patch.Username != nil {
		if other, err := s.GetUserByUsername(ctx, *patch.Username); err != nil {
			return nil, err
		} else if other != nil && other.ID != id {
			return nil, core.NewConflictError("user", *patch.Username, "username already taken")
		}
	}
	if patch.Email != nil {
		if other, err := s.GetUserByEmail(ctx, *patch.Email); err != nil {
			return nil, err
		} else if other != nil && other.ID != id {
			return nil, core.NewConflictError("user", *patch.Email, "email already registered")
		}
	}

	patch.Apply(u)
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET username = $2, password = $3, email = $4, full_name = $5, avatar = $6, is_admin = $7 WHERE id = $1`,
		id, u.Username, u.Password, u.Email, u.FullName, u.Avatar, u.IsAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	// Remember which games lose a reviewer before the cascade fires.
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT game_id FROM reviews WHERE user_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("list reviewed games: %w", err)
	}
	var touched []int64
	for rows.Next() {
		var gameID int64
		if err := rows.Scan(&gameID); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan game id: %w", err)
		}
		touched = append(touched, gameID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	for _, gameID := range touched {
		if err := s.recomputeGameRating(ctx, gameID); err != nil {
			return false, err
		}
	}
	return true, nil
}

// --- GameStore ---

const gameColumns = `id, title, description, genre, developer, image_url, rating, release_date, is_featured, is_trending, created_at, updated_at`

func scanGame(row rowScanner) (*game.Game, error) {
	var g game.Game
	var release sql.NullTime
	err := row.Scan(&g.ID, &g.Title, &g.Description, &g.Genre, &g.Developer, &g.ImageURL,
		&g.Rating, &release, &g.IsFeatured, &g.IsTrending, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	if release.Valid {
		g.ReleaseDate = release.Time
	}
	return &g, nil
}

func (s *Store) GetGame(ctx context.Context, id int64) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

func (s *Store) GetGameByTitle(ctx context.Context, title string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE lower(title) = lower($1)`, title)
	return scanGame(row)
}

func (s *Store) listGames(ctx context.Context, query string, args ...interface{}) ([]game.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (s *Store) ListGames(ctx context.Context) ([]game.Game, error) {
	return s.listGames(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id`)
}

func (s *Store) ListFeaturedGames(ctx context.Context) ([]game.Game, error) {
	return s.listGames(ctx, `SELECT `+gameColumns+` FROM games WHERE is_featured = TRUE ORDER BY rating DESC, id`)
}

func (s *Store) ListTrendingGames(ctx context.Context) ([]game.Game, error) {
	return s.listGames(ctx, `SELECT `+gameColumns+` FROM games WHERE is_trending = TRUE ORDER BY rating DESC, id`)
}

func (s *Store) ListGamesByGenre(ctx context.Context, genre game.Genre) ([]game.Game, error) {
	return s.listGames(ctx, `SELECT `+gameColumns+` FROM games WHERE genre = $1 ORDER BY rating DESC, id`, string(genre))
}

// insertGame writes a full game row. CreateGame zeroes the rating first;
// seeding keeps the catalog's editorial scores.
func (s *Store) insertGame(ctx context.Context, g game.Game) (game.Game, error) {
	now := s.now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO games (title, description, genre, developer, image_url, rating, release_date, is_featured, is_trending, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		g.Title, g.Description, string(g.Genre), g.Developer, g.ImageURL, g.Rating,
		toNullTime(g.ReleaseDate), g.IsFeatured, g.IsTrending, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		return game.Game{}, fmt.Errorf("insert game: %w", err)
	}
	return g, nil
}

func (s *Store) CreateGame(ctx context.Context, g game.Game) (game.Game, error) {
	if err := g.Validate(); err != nil {
		return game.Game{}, err
	}
	g.Rating = 0
	return s.insertGame(ctx, g)
}

func (s *Store) UpdateGame(ctx context.Context, id int64, patch game.Patch) (*game.Game, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	g, err := s.GetGame(ctx, id)
	if err != nil || g == nil {
		return nil, err
	}

	patch.Apply(g)
	g.UpdatedAt = s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`UPDATE games SET title = $2, description = $3, genre = $4, developer = $5, image_url = $6, release_date = $7, is_featured = $8, is_trending = $9, updated_at = $10 WHERE id = $1`,
		id, g.Title, g.Description, string(g.Genre), g.Developer, g.ImageURL,
		toNullTime(g.ReleaseDate), g.IsFeatured, g.IsTrending, g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update game %d: %w", id, err)
	}
	return g, nil
}

func (s *Store) DeleteGame(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete game %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- ReviewStore ---

const reviewColumns = `id, content, rating, game_id, user_id, is_approved, created_at`

func scanReview(row rowScanner) (*review.Review, error) {
	var r review.Review
	err := row.Scan(&r.ID, &r.Content, &r.Rating, &r.GameID, &r.UserID, &r.IsApproved, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &r, nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (*review.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	return scanReview(row)
}

func (s *Store) listReviews(ctx context.Context, query string, args ...interface{}) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []review.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) ListReviewsByGame(ctx context.Context, gameID int64) ([]review.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE game_id = $1 AND is_approved = TRUE ORDER BY created_at DESC, id DESC`, gameID)
}

func (s *Store) ListReviewsByUser(ctx context.Context, userID int64) ([]review.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (s *Store) ListPendingReviews(ctx context.Context) ([]review.Review, error) {
	return s.listReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE is_approved = FALSE ORDER BY created_at DESC, id DESC`)
}

func (s *Store) ListAllReviews(ctx context.Context) ([]review.Review, error) {
	return s.listReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC, id DESC`)
}

func (s *Store) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	if err := r.Validate(); err != nil {
		return review.Review{}, err
	}
	r.IsApproved = false
	r.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO reviews (content, rating, game_id, user_id, is_approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		r.Content, r.Rating, r.GameID, r.UserID, r.IsApproved, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return review.Review{}, fmt.Errorf("insert review: %w", err)
	}
	if err := s.recomputeGameRating(ctx, r.GameID); err != nil {
		return review.Review{}, err
	}
	return r, nil
}

func (s *Store) UpdateReview(ctx context.Context, id int64, patch review.Patch) (*review.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	r, err := s.GetReview(ctx, id)
	if err != nil || r == nil {
		return nil, err
	}

	patch.Apply(r)
	_, err = s.db.ExecContext(ctx,
		`UPDATE reviews SET content = $2, rating = $3, is_approved = $4 WHERE id = $1`,
		id, r.Content, r.Rating, r.IsApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("update review %d: %w", id, err)
	}
	if patch.TouchesRating() {
		if err := s.recomputeGameRating(ctx, r.GameID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id int64) (bool, error) {
	r, err := s.GetReview(ctx, id)
	if err != nil || r == nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete review %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := s.recomputeGameRating(ctx, r.GameID); err != nil {
		return false, err
	}
	return true, nil
}

// recomputeGameRating re-derives a game's rating from its approved reviews.
func (s *Store) recomputeGameRating(ctx context.Context, gameID int64) error {
	rows, err := s.db.QueryContext(ctx, `SELECT rating FROM reviews WHERE game_id = $1 AND is_approved = TRUE`, gameID)
	if err != nil {
		return fmt.Errorf("load ratings for game %d: %w", gameID, err)
	}
	var ratings []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE games SET rating = $2, updated_at = $3 WHERE id = $1`,
		gameID, rating.Aggregate(ratings), s.now().UTC())
	if err != nil {
		return fmt.Errorf("store rating for game %d: %w", gameID, err)
	}
	metrics.RecordRatingRecompute()
	return nil
}

// --- FavoriteStore ---

const favoriteColumns = `id, user_id, game_id, created_at`

func scanFavorite(row rowScanner) (*favorite.Favorite, error) {
	var f favorite.Favorite
	err := row.Scan(&f.ID, &f.UserID, &f.GameID, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan favorite: %w", err)
	}
	return &f, nil
}

func (s *Store) GetFavoriteByID(ctx context.Context, id int64) (*favorite.Favorite, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE id = $1`, id)
	return scanFavorite(row)
}

func (s *Store) GetFavorite(ctx context.Context, userID, gameID int64) (*favorite.Favorite, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = $1 AND game_id = $2`, userID, gameID)
	return scanFavorite(row)
}

func (s *Store) ListFavoritesByUser(ctx context.Context, userID int64) ([]favorite.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var out []favorite.Favorite
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFavorite(ctx context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	if err := f.Validate(); err != nil {
		return favorite.Favorite{}, err
	}
	if existing, err := s.GetFavorite(ctx, f.UserID, f.GameID); err != nil {
		return favorite.Favorite{}, err
	} else if existing != nil {
		return favorite.Favorite{}, core.NewConflictError("favorite", "", "game already in favorites")
	}

	f.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO favorites (user_id, game_id, created_at) VALUES ($1, $2, $3) RETURNING id`,
		f.UserID, f.GameID, f.CreatedAt,
	).Scan(&f.ID)
	if isUniqueViolation(err) {
		return favorite.Favorite{}, core.NewConflictError("favorite", "", "game already in favorites")
	}
	if err != nil {
		return favorite.Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}
	return f, nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, gameID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND game_id = $2`, userID, gameID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsFavorite(ctx context.Context, userID, gameID int64) (bool, error) {
	f, err := s.GetFavorite(ctx, userID, gameID)
	return f != nil, err
}

// --- ActivityLogStore ---

func (s *Store) AppendActivity(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	if err := e.Validate(); err != nil {
		return activity.Entry{}, err
	}
	e.CreatedAt = s.now().UTC()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO activity_logs (action, user_id, details, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		e.Action, toNullInt64(e.UserID), e.Details, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return activity.Entry{}, fmt.Errorf("insert activity: %w", err)
	}
	return e, nil
}

func (s *Store) ListRecentActivity(ctx context.Context, limit int) ([]activity.Entry, error) {
	query := `SELECT id, action, user_id, details, created_at FROM activity_logs ORDER BY created_at DESC, id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []activity.Entry
	for rows.Next() {
		var e activity.Entry
		var userID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Action, &userID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if userID.Valid {
			e.UserID = userID.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// --- AnalyticsStore ---

func (s *Store) ListAnalytics(ctx context.Context, days int) ([]analytics.Analytics, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, total_visits, new_users, active_users, created_at FROM analytics WHERE date >= $1 ORDER BY date DESC`,
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	defer rows.Close()

	var out []analytics.Analytics
	for rows.Next() {
		var a analytics.Analytics
		if err := rows.Scan(&a.ID, &a.Date, &a.TotalVisits, &a.NewUsers, &a.ActiveUsers, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analytics: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpsertDailyAnalytics(ctx context.Context, date time.Time, delta analytics.Delta) (analytics.Analytics, error) {
	key := analytics.DayKey(date)
	var a analytics.Analytics
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO analytics (date, total_visits, new_users, active_users, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (date) DO UPDATE SET
		   total_visits = analytics.total_visits + EXCLUDED.total_visits,
		   new_users = analytics.new_users + EXCLUDED.new_users,
		   active_users = analytics.active_users + EXCLUDED.active_users
		 RETURNING id, date, total_visits, new_users, active_users, created_at`,
		key, delta.TotalVisits, delta.NewUsers, delta.ActiveUsers, s.now().UTC(),
	).Scan(&a.ID, &a.Date, &a.TotalVisits, &a.NewUsers, &a.ActiveUsers, &a.CreatedAt)
	if err != nil {
		return analytics.Analytics{}, fmt.Errorf("upsert analytics: %w", err)
	}
	return a, nil
}

// --- SessionStore ---

// Sessions returns the backend's session store.
func (s *Store) Sessions() storage.SessionStore { return s }

func (s *Store) CreateSession(ctx context.Context, sess storage.Session) (storage.Session, error) {
	if sess.Token == "" {
		return storage.Session{}, core.RequiredError("token")
	}
	sess.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.UserID, sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return storage.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*storage.Session, error) {
	var sess storage.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
