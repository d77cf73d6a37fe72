package httpapi

import (
	"net/http"

	"github.com/topbestgames/platform/internal/auth"
	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/activity"
	"github.com/topbestgames/platform/internal/domain/favorite"
	"github.com/topbestgames/platform/internal/domain/game"
	"github.com/topbestgames/platform/internal/domain/review"
	"github.com/topbestgames/platform/internal/domain/user"
)

func activityEntry(action string, userID int64, details string) activity.Entry {
	return activity.Entry{Action: action, UserID: userID, Details: details}
}

// --- auth ---

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	u, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email, req.FullName)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logActivity(r, "User Registered", u.ID, u.Username)
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter(r.RemoteAddr).Allow() {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	sess, u, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.fail(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, _ *http.Request, u *user.User) {
	writeJSON(w, http.StatusOK, u)
}

// --- games ---

func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListGames(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) handleFeaturedGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListFeaturedGames(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) handleTrendingGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.store.ListTrendingGames(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) handleGamesByGenre(w http.ResponseWriter, r *http.Request) {
	genre := game.Genre(r.PathValue("genre"))
	if !genre.Valid() {
		h.fail(w, core.NewValidationError("genre", "must be one of the known genres"))
		return
	}
	games, err := h.store.ListGamesByGenre(r.Context(), genre)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	g, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request, u *user.User) {
	var g game.Game
	if err := decodeJSON(r, &g); err != nil {
		h.fail(w, err)
		return
	}
	created, err := h.store.CreateGame(r.Context(), g)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logActivity(r, "Game Added", u.ID, created.Title)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateGame(w http.ResponseWriter, r *http.Request, u *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var patch game.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, err)
		return
	}
	updated, err := h.store.UpdateGame(r.Context(), id, patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	h.logActivity(r, "Game Updated", u.ID, updated.Title)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteGame(w http.ResponseWriter, r *http.Request, u *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	g, err := h.store.GetGame(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if _, err := h.store.DeleteGame(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.logActivity(r, "Game Deleted", u.ID, g.Title)
	writeJSON(w, http.StatusOK, map[string]string{"message": "game deleted"})
}

// --- reviews ---

func (h *Handler) handleGameReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	reviews, err := h.store.ListReviewsByGame(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

type createReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request, u *user.User) {
	gameID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	g, err := h.store.GetGame(r.Context(), gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	created, err := h.store.CreateReview(r.Context(), review.Review{
		Content: req.Content,
		Rating:  req.Rating,
		GameID:  gameID,
		UserID:  u.ID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logActivity(r, "Review Submitted", u.ID, g.Title)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request, _ *user.User) {
	reviews, err := h.store.ListAllReviews(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handlePendingReviews(w http.ResponseWriter, r *http.Request, _ *user.User) {
	reviews, err := h.store.ListPendingReviews(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handleModerateReview(w http.ResponseWriter, r *http.Request, u *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var patch review.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, err)
		return
	}
	updated, err := h.store.UpdateReview(r.Context(), id, patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	if patch.IsApproved != nil {
		action := "Review Rejected"
		if *patch.IsApproved {
			action = "Review Approved"
		}
		h.logActivity(r, action, u.ID, "")
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteReview(w http.ResponseWriter, r *http.Request, u *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	ok, err := h.store.DeleteReview(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "review not found")
		return
	}
	h.logActivity(r, "Review Deleted", u.ID, "")
	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// --- users ---

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request, _ *user.User) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, admin *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var patch user.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, err)
		return
	}
	if patch.Password != nil {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			h.fail(w, err)
			return
		}
		patch.Password = &hash
	}
	updated, err := h.store.UpdateUser(r.Context(), id, patch)
	if err != nil {
		h.fail(w, err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	h.logActivity(r, "User Updated", admin.ID, updated.Username)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request, admin *user.User) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if id == admin.ID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	target, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if _, err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.logActivity(r, "User Deleted", admin.ID, target.Username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// --- favorites ---

type favoriteWithGame struct {
	favorite.Favorite
	Game *game.Game `json:"game,omitempty"`
}

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request, u *user.User) {
	favs, err := h.store.ListFavoritesByUser(r.Context(), u.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]favoriteWithGame, 0, len(favs))
	for _, f := range favs {
		g, err := h.store.GetGame(r.Context(), f.GameID)
		if err != nil {
			h.fail(w, err)
			return
		}
		out = append(out, favoriteWithGame{Favorite: f, Game: g})
	}
	writeJSON(w, http.StatusOK, out)
}

type createFavoriteRequest struct {
	GameID int64 `json:"gameId"`
}

func (h *Handler) handleCreateFavorite(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req createFavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	g, err := h.store.GetGame(r.Context(), req.GameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	created, err := h.store.CreateFavorite(r.Context(), favorite.Favorite{UserID: u.ID, GameID: req.GameID})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleFavoriteStatus(w http.ResponseWriter, r *http.Request, u *user.User) {
	gameID, err := pathID(r, "gameId")
	if err != nil {
		h.fail(w, err)
		return
	}
	isFav, err := h.store.IsFavorite(r.Context(), u.ID, gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": isFav})
}

func (h *Handler) handleDeleteFavorite(w http.ResponseWriter, r *http.Request, u *user.User) {
	gameID, err := pathID(r, "gameId")
	if err != nil {
		h.fail(w, err)
		return
	}
	ok, err := h.store.DeleteFavorite(r.Context(), u.ID, gameID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "favorite removed"})
}

// --- activities & analytics ---

type activityWithUser struct {
	activity.Entry
	Username string `json:"username,omitempty"`
}

func (h *Handler) handleListActivities(w http.ResponseWriter, r *http.Request, _ *user.User) {
	limit := queryInt(r, "limit", 10)
	entries, err := h.store.ListRecentActivity(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]activityWithUser, 0, len(entries))
	for _, e := range entries {
		enriched := activityWithUser{Entry: e}
		if e.UserID != 0 {
			u, err := h.store.GetUser(r.Context(), e.UserID)
			if err != nil {
				h.fail(w, err)
				return
			}
			if u != nil {
				enriched.Username = u.Username
			}
		}
		out = append(out, enriched)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleListAnalytics(w http.ResponseWriter, r *http.Request, _ *user.User) {
	days := queryInt(r, "days", 30)
	buckets, err := h.store.ListAnalytics(r.Context(), days)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
