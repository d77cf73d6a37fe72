package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/activity"
	"github.com/topbestgames/platform/internal/domain/analytics"
	"github.com/topbestgames/platform/internal/domain/favorite"
	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/review"
	"github.com/topbestgames/platform/internal/domain/user"
	"github.com/topbestgames/platform/internal/rating"
	"github.com/topbestgames/platform/pkg/metrics"
)

// Memory is the ephemeral backend. All state lives in process memory and
// is lost on restart. Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	users      map[int64]user.User
	games      map[int64]game.Game
	reviews    map[int64]review.Review
	favorites  map[int64]favorite.Favorite
	activities map[int64]activity.Entry
	buckets    map[int64]analytics.Analytics
	sessions   map[string]Session

	nextUserID      int64
	nextGameID      int64
	nextReviewID    int64
	nextFavoriteID  int64
	nextActivityID  int64
	nextAnalyticsID int64

	now func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]user.User),
		games:      make(map[int64]game.Game),
		reviews:    make(map[int64]review.Review),
		favorites:  make(map[int64]favorite.Favorite),
		activities: make(map[int64]activity.Entry),
		buckets:    make(map[int64]analytics.Analytics),
		sessions:   make(map[string]Session),
		now:        time.Now,
	}
}

// Seed installs the administrator account and the sample catalog. Seed
// ratings are written directly; they do not pass through CreateGame, which
// always zeroes ratings.
func (m *Memory) Seed(ctx context.Context, adminPassword string) error {
	admin, err := SeedAdmin(adminPassword)
	if err != nil {
		return err
	}
	if _, err := m.CreateUser(ctx, admin); err != nil {
		return err
	}

	catalog, err := SeedCatalog()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	for _, g := range catalog {
		m.nextGameID++
		g.ID = m.nextGameID
		g.CreatedAt = now
		g.UpdatedAt = now
		m.games[g.ID] = g
	}
	return nil
}

// --- UserStore ---

func (m *Memory) GetUser(_ context.Context, id int64) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CreateUser(_ context.Context, u user.User) (user.User, error) {
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return user.User{}, core.NewConflictError("user", u.Username, "username already taken")
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, core.NewConflictError("user", u.Email, "email already registered")
		}
	}

	m.nextUserID++
	u.ID = m.nextUserID
	u.CreatedAt = m.now().UTC()
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) UpdateUser(_ context.Context, id int64, patch user.Patch) (*user.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	for _, existing := range m.users {
		if existing.ID == id {
			continue
		}
		if patch.Username != nil && strings.EqualFold(existing.Username, *patch.Username) {
			return nil, core.NewConflictError("user", *patch.Username, "username already taken")
		}
		if patch.Email != nil && strings.EqualFold(existing.Email, *patch.Email) {
			return nil, core.NewConflictError("user", *patch.Email, "email already registered")
		}
	}
	patch.Apply(&u)
	m.users[id] = u
	return &u, nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)

	// Cascade, then recompute each game the user had reviewed.
	touched := make(map[int64]bool)
	for rid, r := range m.reviews {
		if r.UserID == id {
			touched[r.GameID] = true
			delete(m.reviews, rid)
		}
	}
	for fid, f := range m.favorites {
		if f.UserID == id {
			delete(m.favorites, fid)
		}
	}
	for token, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, token)
		}
	}
	// Audit entries survive the account, detached from it.
	for eid, e := range m.activities {
		if e.UserID == id {
			e.UserID = 0
			m.activities[eid] = e
		}
	}
	for gameID := range touched {
		m.recomputeGameRatingLocked(gameID)
	}
	return true, nil
}

// --- GameStore ---

func (m *Memory) GetGame(_ context.Context, id int64) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return &g, nil
	}
	return nil, nil
}

func (m *Memory) GetGameByTitle(_ context.Context, title string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		if strings.EqualFold(g.Title, title) {
			g := g
			return &g, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListGames(_ context.Context) ([]game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]game.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListFeaturedGames(_ context.Context) ([]game.Game, error) {
	return m.listGamesWhere(func(g game.Game) bool { return g.IsFeatured })
}

func (m *Memory) ListTrendingGames(_ context.Context) ([]game.Game, error) {
	return m.listGamesWhere(func(g game.Game) bool { return g.IsTrending })
}

func (m *Memory) ListGamesByGenre(_ context.Context, genre game.Genre) ([]game.Game, error) {
	return m.listGamesWhere(func(g game.Game) bool { return g.Genre == genre })
}

// listGamesWhere returns matching games ordered by rating descending, then
// id ascending, the order every curated list uses.
func (m *Memory) listGamesWhere(keep func(game.Game) bool) ([]game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []game.Game
	for _, g := range m.games {
		if keep(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateGame(_ context.Context, g game.Game) (game.Game, error) {
	if err := g.Validate(); err != nil {
		return game.Game{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGameID++
	g.ID = m.nextGameID
	g.Rating = 0
	now := m.now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	m.games[g.ID] = g
	return g, nil
}

func (m *Memory) UpdateGame(_ context.Context, id int64, patch game.Patch) (*game.Game, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&g)
	g.UpdatedAt = m.now().UTC()
	m.games[id] = g
	return &g, nil
}

func (m *Memory) DeleteGame(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return false, nil
	}
	delete(m.games, id)
	for rid, r := range m.reviews {
		if r.GameID == id {
			delete(m.reviews, rid)
		}
	}
	for fid, f := range m.favorites {
		if f.GameID == id {
			delete(m.favorites, fid)
		}
	}
	return true, nil
}

// --- ReviewStore ---

func (m *Memory) GetReview(_ context.Context, id int64) (*review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.reviews[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) ListReviewsByGame(_ context.Context, gameID int64) ([]review.Review, error) {
	return m.listReviewsWhere(func(r review.Review) bool {
		return r.GameID == gameID && r.IsApproved
	})
}

func (m *Memory) ListReviewsByUser(_ context.Context, userID int64) ([]review.Review, error) {
	return m.listReviewsWhere(func(r review.Review) bool { return r.UserID == userID })
}

func (m *Memory) ListPendingReviews(_ context.Context) ([]review.Review, error) {
	return m.listReviewsWhere(func(r review.Review) bool { return !r.IsApproved })
}

func (m *Memory) ListAllReviews(_ context.Context) ([]review.Review, error) {
	return m.listReviewsWhere(func(review.Review) bool { return true })
}

// listReviewsWhere returns matching reviews newest first.
func (m *Memory) listReviewsWhere(keep func(review.Review) bool) ([]review.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []review.Review
	for _, r := range m.reviews {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	if err := r.Validate(); err != nil {
		return review.Review{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReviewID++
	r.ID = m.nextReviewID
	r.IsApproved = false
	r.CreatedAt = m.now().UTC()
	m.reviews[r.ID] = r
	m.recomputeGameRatingLocked(r.GameID)
	return r, nil
}

func (m *Memory) UpdateReview(_ context.Context, id int64, patch review.Patch) (*review.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	patch.Apply(&r)
	m.reviews[id] = r
	if patch.TouchesRating() {
		m.recomputeGameRatingLocked(r.GameID)
	}
	return &r, nil
}

func (m *Memory) DeleteReview(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return false, nil
	}
	delete(m.reviews, id)
	m.recomputeGameRatingLocked(r.GameID)
	return true, nil
}

// recomputeGameRatingLocked re-derives a game's rating from its approved
// reviews. Callers must hold the write lock.
func (m *Memory) recomputeGameRatingLocked(gameID int64) {
	g, ok := m.games[gameID]
	if !ok {
		return
	}
	var ratings []int
	for _, r := range m.reviews {
		if r.GameID == gameID && r.IsApproved {
			ratings = append(ratings, r.Rating)
		}
	}
	g.Rating = rating.Aggregate(ratings)
	g.UpdatedAt = m.now().UTC()
	m.games[gameID] = g
	metrics.RecordRatingRecompute()
}

// --- FavoriteStore ---

func (m *Memory) GetFavoriteByID(_ context.Context, id int64) (*favorite.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.favorites[id]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *Memory) GetFavorite(_ context.Context, userID, gameID int64) (*favorite.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.favorites {
		if f.UserID == userID && f.GameID == gameID {
			f := f
			return &f, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListFavoritesByUser(_ context.Context, userID int64) ([]favorite.Favorite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []favorite.Favorite
	for _, f := range m.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateFavorite(_ context.Context, f favorite.Favorite) (favorite.Favorite, error) {
	if err := f.Validate(); err != nil {
		return favorite.Favorite{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.favorites {
		if existing.UserID == f.UserID && existing.GameID == f.GameID {
			return favorite.Favorite{}, core.NewConflictError("favorite", "", "game already in favorites")
		}
	}
	m.nextFavoriteID++
	f.ID = m.nextFavoriteID
	f.CreatedAt = m.now().UTC()
	m.favorites[f.ID] = f
	return f, nil
}

func (m *Memory) DeleteFavorite(_ context.Context, userID, gameID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.favorites {
		if f.UserID == userID && f.GameID == gameID {
			delete(m.favorites, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) IsFavorite(ctx context.Context, userID, gameID int64) (bool, error) {
	f, err := m.GetFavorite(ctx, userID, gameID)
	return f != nil, err
}

// --- ActivityLogStore ---

func (m *Memory) AppendActivity(_ context.Context, e activity.Entry) (activity.Entry, error) {
	if err := e.Validate(); err != nil {
		return activity.Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextActivityID++
	e.ID = m.nextActivityID
	e.CreatedAt = m.now().UTC()
	m.activities[e.ID] = e
	return e, nil
}

func (m *Memory) ListRecentActivity(_ context.Context, limit int) ([]activity.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]activity.Entry, 0, len(m.activities))
	for _, e := range m.activities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- AnalyticsStore ---

func (m *Memory) ListAnalytics(_ context.Context, days int) ([]analytics.Analytics, error) {
	cutoff := m.now().UTC().AddDate(0, 0, -days)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []analytics.Analytics
	for _, a := range m.buckets {
		if !a.Date.Before(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *Memory) UpsertDailyAnalytics(_ context.Context, date time.Time, delta analytics.Delta) (analytics.Analytics, error) {
	key := analytics.DayKey(date)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.buckets {
		if a.Date.Equal(key) {
			a.TotalVisits += delta.TotalVisits
			a.NewUsers += delta.NewUsers
			a.ActiveUsers += delta.ActiveUsers
			m.buckets[id] = a
			return a, nil
		}
	}
	m.nextAnalyticsID++
	a := analytics.Analytics{
		ID:          m.nextAnalyticsID,
		Date:        key,
		TotalVisits: delta.TotalVisits,
		NewUsers:    delta.NewUsers,
		ActiveUsers: delta.ActiveUsers,
		CreatedAt:   m.now().UTC(),
	}
	m.buckets[a.ID] = a
	return a, nil
}

// --- SessionStore ---

// Sessions returns the backend's session store.
func (m *Memory) Sessions() SessionStore { return m }

func (m *Memory) CreateSession(_ context.Context, s Session) (Session, error) {
	if s.Token == "" {
		return Session{}, core.RequiredError("token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.CreatedAt = m.now().UTC()
	m.sessions[s.Token] = s
	return s, nil
}

func (m *Memory) GetSession(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[token]; ok {
		return &s, nil
	}
	return nil, nil
}

func (m *Memory) DeleteSession(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return false, nil
	}
	delete(m.sessions, token)
	return true, nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for token, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}
