package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/activity"
	"github.com/topbestgames/platform/internal/domain/analytics"
	"github.com/topbestgames/platform/internal/domain/favorite"
	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/review"
	"github.com/topbestgames/platform/internal/domain/user"
)

func newTestStore(t *testing.T) *Memory {
	t.Helper()
	return NewMemory()
}

func mustCreateUser(t *testing.T, m *Memory, username, email string) user.User {
	t.Helper()
	u, err := m.CreateUser(context.Background(), user.User{
		Username: username,
		Password: "$2a$10$abcdefghijklmnopqrstuv",
		Email:    email,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func mustCreateGame(t *testing.T, m *Memory, title string) game.Game {
	t.Helper()
	g, err := m.CreateGame(context.Background(), game.Game{
		Title:       title,
		Description: "a test game",
		Genre:       game.GenreAction,
		Developer:   "Test Studio",
		ImageURL:    "https://example.com/cover.jpg",
	})
	if err != nil {
		t.Fatalf("create game %s: %v", title, err)
	}
	return g
}

func mustCreateReview(t *testing.T, m *Memory, gameID, userID int64, stars int) review.Review {
	t.Helper()
	r, err := m.CreateReview(context.Background(), review.Review{
		Content: "solid entry",
		Rating:  stars,
		GameID:  gameID,
		UserID:  userID,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return r
}

func approve(t *testing.T, m *Memory, reviewID int64) {
	t.Helper()
	yes := true
	if _, err := m.UpdateReview(context.Background(), reviewID, review.Patch{IsApproved: &yes}); err != nil {
		t.Fatalf("approve review %d: %v", reviewID, err)
	}
}

func gameRating(t *testing.T, m *Memory, id int64) float64 {
	t.Helper()
	g, err := m.GetGame(context.Background(), id)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if g == nil {
		t.Fatalf("game %d vanished", id)
	}
	return g.Rating
}

func TestNotFoundIsNilNil(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()

	if u, err := m.GetUser(ctx, 99); u != nil || err != nil {
		t.Errorf("GetUser = (%v, %v), want (nil, nil)", u, err)
	}
	if g, err := m.GetGame(ctx, 99); g != nil || err != nil {
		t.Errorf("GetGame = (%v, %v), want (nil, nil)", g, err)
	}
	if r, err := m.GetReview(ctx, 99); r != nil || err != nil {
		t.Errorf("GetReview = (%v, %v), want (nil, nil)", r, err)
	}
	if u, err := m.UpdateUser(ctx, 99, user.Patch{}); u != nil || err != nil {
		t.Errorf("UpdateUser = (%v, %v), want (nil, nil)", u, err)
	}
	if ok, err := m.DeleteGame(ctx, 99); ok || err != nil {
		t.Errorf("DeleteGame = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCreateGameZeroesRating(t *testing.T) {
	m := newTestStore(t)
	g, err := m.CreateGame(context.Background(), game.Game{
		Title:       "Portal 2",
		Description: "co-op puzzles",
		Genre:       game.GenrePuzzle,
		Developer:   "Valve",
		ImageURL:    "https://example.com/portal2.jpg",
		Rating:      9.9,
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Rating != 0 {
		t.Errorf("new game rating = %v, want 0", g.Rating)
	}
}

func TestReviewLifecycleDrivesRating(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "alice", "alice@example.com")
	g := mustCreateGame(t, m, "Celeste")

	r1 := mustCreateReview(t, m, g.ID, u.ID, 4)
	if r1.IsApproved {
		t.Fatal("new review must start unapproved")
	}
	if got := gameRating(t, m, g.ID); got != 0 {
		t.Fatalf("pending review changed rating: %v", got)
	}

	approve(t, m, r1.ID)
	if got := gameRating(t, m, g.ID); got != 4.0 {
		t.Fatalf("rating after first approval = %v, want 4.0", got)
	}

	u2 := mustCreateUser(t, m, "bob", "bob@example.com")
	r2 := mustCreateReview(t, m, g.ID, u2.ID, 5)
	approve(t, m, r2.ID)
	if got := gameRating(t, m, g.ID); got != 4.5 {
		t.Fatalf("rating after second approval = %v, want 4.5", got)
	}

	// Rejecting an approved review removes it from the aggregate.
	no := false
	if _, err := m.UpdateReview(ctx, r2.ID, review.Patch{IsApproved: &no}); err != nil {
		t.Fatal(err)
	}
	if got := gameRating(t, m, g.ID); got != 4.0 {
		t.Fatalf("rating after rejection = %v, want 4.0", got)
	}

	if ok, err := m.DeleteReview(ctx, r1.ID); err != nil || !ok {
		t.Fatalf("delete review: (%v, %v)", ok, err)
	}
	if got := gameRating(t, m, g.ID); got != 0 {
		t.Fatalf("rating after last approved review removed = %v, want 0", got)
	}
}

func TestContentOnlyPatchKeepsRating(t *testing.T) {
	m := newTestStore(t)
	u := mustCreateUser(t, m, "carol", "carol@example.com")
	g := mustCreateGame(t, m, "Hades")
	r := mustCreateReview(t, m, g.ID, u.ID, 5)
	approve(t, m, r.ID)

	content := "still excellent on a second run"
	if _, err := m.UpdateReview(context.Background(), r.ID, review.Patch{Content: &content}); err != nil {
		t.Fatal(err)
	}
	if got := gameRating(t, m, g.ID); got != 5.0 {
		t.Errorf("content edit changed rating: %v", got)
	}
}

func TestRatingRoundsToOneDecimal(t *testing.T) {
	m := newTestStore(t)
	g := mustCreateGame(t, m, "Outer Wilds")
	users := []string{"u1", "u2", "u3"}
	for i, name := range users {
		u := mustCreateUser(t, m, name, name+"@example.com")
		stars := []int{4, 4, 5}[i]
		r := mustCreateReview(t, m, g.ID, u.ID, stars)
		approve(t, m, r.ID)
	}
	if got := gameRating(t, m, g.ID); got != 4.3 {
		t.Errorf("rating = %v, want 4.3", got)
	}
}

func TestApprovedReviewListing(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "dave", "dave@example.com")
	g := mustCreateGame(t, m, "Factorio")

	r1 := mustCreateReview(t, m, g.ID, u.ID, 5)
	r2 := mustCreateReview(t, m, g.ID, u.ID, 3)
	approve(t, m, r2.ID)

	visible, err := m.ListReviewsByGame(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 1 || visible[0].ID != r2.ID {
		t.Errorf("ListReviewsByGame = %+v, want only the approved review", visible)
	}

	pending, err := m.ListPendingReviews(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != r1.ID {
		t.Errorf("ListPendingReviews = %+v, want only the unapproved review", pending)
	}

	mine, err := m.ListReviewsByUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("ListReviewsByUser returned %d reviews, want 2", len(mine))
	}
}

func TestUserUniquenessCaseInsensitive(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, m, "Erin", "erin@example.com")

	_, err := m.CreateUser(ctx, user.User{Username: "ERIN", Password: "x", Email: "other@example.com"})
	if !core.IsConflict(err) {
		t.Errorf("duplicate username: expected conflict, got %v", err)
	}
	_, err = m.CreateUser(ctx, user.User{Username: "erin2", Password: "x", Email: "Erin@Example.com"})
	if !core.IsConflict(err) {
		t.Errorf("duplicate email: expected conflict, got %v", err)
	}

	found, err := m.GetUserByUsername(ctx, "eRiN")
	if err != nil || found == nil {
		t.Fatalf("case-insensitive lookup failed: (%v, %v)", found, err)
	}
}

func TestFavoriteUniqueness(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "frank", "frank@example.com")
	g := mustCreateGame(t, m, "Terraria")

	if _, err := m.CreateFavorite(ctx, favorite.Favorite{UserID: u.ID, GameID: g.ID}); err != nil {
		t.Fatal(err)
	}
	_, err := m.CreateFavorite(ctx, favorite.Favorite{UserID: u.ID, GameID: g.ID})
	if !core.IsConflict(err) {
		t.Errorf("duplicate favorite: expected conflict, got %v", err)
	}

	if ok, _ := m.IsFavorite(ctx, u.ID, g.ID); !ok {
		t.Error("IsFavorite should report true")
	}
	if ok, err := m.DeleteFavorite(ctx, u.ID, g.ID); err != nil || !ok {
		t.Fatalf("delete favorite: (%v, %v)", ok, err)
	}
	if ok, _ := m.IsFavorite(ctx, u.ID, g.ID); ok {
		t.Error("IsFavorite should report false after delete")
	}
}

func TestAnalyticsUpsertAccumulates(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	// No read-then-write split: the upsert itself is the unit, so the
	// accumulate path must be exercised across differing wall-clock times
	// of the same day.
	if _, err := m.UpsertDailyAnalytics(ctx, day, analytics.Delta{TotalVisits: 1}); err != nil {
		t.Fatal(err)
	}
	evening := day.Add(10 * time.Hour)
	a, err := m.UpsertDailyAnalytics(ctx, evening, analytics.Delta{TotalVisits: 2, NewUsers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if a.TotalVisits != 3 || a.NewUsers != 1 || a.ActiveUsers != 0 {
		t.Errorf("bucket = %+v, want visits 3, new 1, active 0", a)
	}
	if !a.Date.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bucket date not normalized: %v", a.Date)
	}

	// A different day opens a fresh bucket.
	next := day.AddDate(0, 0, 1)
	b, err := m.UpsertDailyAnalytics(ctx, next, analytics.Delta{TotalVisits: 1})
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalVisits != 1 {
		t.Errorf("next-day bucket visits = %d, want 1", b.TotalVisits)
	}
}

func TestThreeReviewerAggregate(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	g := mustCreateGame(t, m, "Nova")

	stars := []int{5, 4, 3}
	reviews := make([]review.Review, len(stars))
	for i, s := range stars {
		u := mustCreateUser(t, m, fmt.Sprintf("nova%d", i), fmt.Sprintf("nova%d@example.com", i))
		reviews[i] = mustCreateReview(t, m, g.ID, u.ID, s)
		approve(t, m, reviews[i].ID)
	}
	if got := gameRating(t, m, g.ID); got != 4.0 {
		t.Fatalf("rating with 5,4,3 approved = %v, want 4.0", got)
	}

	no := false
	if _, err := m.UpdateReview(ctx, reviews[2].ID, review.Patch{IsApproved: &no}); err != nil {
		t.Fatal(err)
	}
	if got := gameRating(t, m, g.ID); got != 4.5 {
		t.Errorf("rating after rejecting the 3-star review = %v, want 4.5", got)
	}
}

func TestRepeatedUpsertKeepsOneRow(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return day }

	for i := 0; i < 5; i++ {
		if _, err := m.UpsertDailyAnalytics(ctx, day, analytics.Delta{TotalVisits: 1}); err != nil {
			t.Fatal(err)
		}
	}

	buckets, err := m.ListAnalytics(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 1 {
		t.Fatalf("got %d rows for one day, want 1", len(buckets))
	}
	if buckets[0].TotalVisits != 5 {
		t.Errorf("totalVisits = %d, want 5", buckets[0].TotalVisits)
	}
}

func TestAnalyticsWindow(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	for _, daysAgo := range []int{0, 3, 9, 20} {
		day := base.AddDate(0, 0, -daysAgo)
		if _, err := m.UpsertDailyAnalytics(ctx, day, analytics.Delta{TotalVisits: 1}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.ListAnalytics(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("window of 10 days returned %d buckets, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Error("buckets not ordered newest first")
		}
	}
}

func TestActivityLogOrderAndLimit(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	tick := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	for _, action := range []string{"Game Added", "Review Submitted", "Review Approved", "Game Updated"} {
		if _, err := m.AppendActivity(ctx, activity.Entry{Action: action}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := m.ListRecentActivity(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("limit ignored: got %d entries", len(recent))
	}
	if recent[0].Action != "Game Updated" || recent[1].Action != "Review Approved" {
		t.Errorf("unexpected order: %q, %q", recent[0].Action, recent[1].Action)
	}
}

func TestCuratedGameListsOrderByRating(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "grace", "grace@example.com")

	ratings := map[string]int{"Low": 2, "High": 5, "Mid": 3}
	for _, title := range []string{"Low", "High", "Mid"} {
		g := mustCreateGame(t, m, title)
		yes := true
		if _, err := m.UpdateGame(ctx, g.ID, game.Patch{IsFeatured: &yes}); err != nil {
			t.Fatal(err)
		}
		r := mustCreateReview(t, m, g.ID, u.ID, ratings[title])
		approve(t, m, r.ID)
	}

	featured, err := m.ListFeaturedGames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"High", "Mid", "Low"}
	for i, title := range want {
		if featured[i].Title != title {
			t.Fatalf("featured order = %v, want %v", titles(featured), want)
		}
	}
}

func titles(games []game.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Title
	}
	return out
}

func TestDeleteGameCascades(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "henry", "henry@example.com")
	g := mustCreateGame(t, m, "Doom")
	r := mustCreateReview(t, m, g.ID, u.ID, 5)
	if _, err := m.CreateFavorite(ctx, favorite.Favorite{UserID: u.ID, GameID: g.ID}); err != nil {
		t.Fatal(err)
	}

	if ok, err := m.DeleteGame(ctx, g.ID); err != nil || !ok {
		t.Fatalf("delete game: (%v, %v)", ok, err)
	}
	if got, _ := m.GetReview(ctx, r.ID); got != nil {
		t.Error("review survived game deletion")
	}
	if ok, _ := m.IsFavorite(ctx, u.ID, g.ID); ok {
		t.Error("favorite survived game deletion")
	}
}

func TestDeleteUserRecomputesReviewedGames(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	keeper := mustCreateUser(t, m, "keeper", "keeper@example.com")
	leaver := mustCreateUser(t, m, "leaver", "leaver@example.com")
	g := mustCreateGame(t, m, "Stardew Valley")

	r1 := mustCreateReview(t, m, g.ID, keeper.ID, 3)
	approve(t, m, r1.ID)
	r2 := mustCreateReview(t, m, g.ID, leaver.ID, 5)
	approve(t, m, r2.ID)
	if got := gameRating(t, m, g.ID); got != 4.0 {
		t.Fatalf("setup rating = %v, want 4.0", got)
	}

	if ok, err := m.DeleteUser(ctx, leaver.ID); err != nil || !ok {
		t.Fatalf("delete user: (%v, %v)", ok, err)
	}
	if got := gameRating(t, m, g.ID); got != 3.0 {
		t.Errorf("rating after reviewer removal = %v, want 3.0", got)
	}
}

func TestSessions(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, m, "ivy", "ivy@example.com")

	s, err := m.CreateSession(ctx, Session{
		Token:     "tok-1",
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := m.GetSession(ctx, s.Token); got == nil || got.UserID != u.ID {
		t.Fatalf("session lookup failed: %+v", got)
	}

	expired := Session{Token: "tok-2", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	if _, err := m.CreateSession(ctx, expired); err != nil {
		t.Fatal(err)
	}
	removed, err := m.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed %d expired sessions, want 1", removed)
	}

	if ok, _ := m.DeleteSession(ctx, s.Token); !ok {
		t.Error("DeleteSession should report true for a live session")
	}
	if got, _ := m.GetSession(ctx, s.Token); got != nil {
		t.Error("session survived logout")
	}
}

func TestSeed(t *testing.T) {
	m := newTestStore(t)
	ctx := context.Background()
	if err := m.Seed(ctx, "seed-password"); err != nil {
		t.Fatal(err)
	}

	admin, err := m.GetUserByUsername(ctx, SeedAdminUsername)
	if err != nil || admin == nil {
		t.Fatalf("seed admin missing: (%v, %v)", admin, err)
	}
	if !admin.IsAdmin {
		t.Error("seed admin must be an administrator")
	}

	games, err := m.ListGames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 7 {
		t.Fatalf("seed catalog has %d games, want 7", len(games))
	}
	for _, g := range games {
		if !g.Genre.Valid() {
			t.Errorf("seed game %q has invalid genre %q", g.Title, g.Genre)
		}
	}

	trending, _ := m.ListTrendingGames(ctx)
	featured, _ := m.ListFeaturedGames(ctx)
	if len(trending) != 4 || len(featured) != 3 {
		t.Errorf("trending/featured = %d/%d, want 4/3", len(trending), len(featured))
	}
}
