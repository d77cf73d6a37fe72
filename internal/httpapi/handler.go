// Package httpapi is the REST surface over the storage contract. Handlers
// stay thin: decode, call the store, map errors, encode.
package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/topbestgames/platform/internal/auth"
	"github.com/topbestgames/platform/internal/core"
	"github.com/topbestgames/platform/internal/domain/analytics"
	"github.com/topbestgames/platform/internal/domain/user"
	"github.com/topbestgames/platform/internal/storage"
	"github.com/topbestgames/platform/pkg/logger"
	"github.com/topbestgames/platform/pkg/metrics"
)

const sessionCookie = "session_token"

// Handler serves the REST API.
type Handler struct {
	store storage.Store
	auth  *auth.Manager
	log   *logger.Logger

	mu            sync.Mutex
	loginLimiters map[string]*rate.Limiter
}

// New builds a Handler over the active backend.
func New(store storage.Store, authMgr *auth.Manager, log *logger.Logger) *Handler {
	return &Handler{
		store:         store,
		auth:          authMgr,
		log:           log,
		loginLimiters: make(map[string]*rate.Limiter),
	}
}

// Routes assembles the route table and the middleware stack.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/user", h.requireUser(h.handleCurrentUser))

	mux.HandleFunc("GET /api/games", h.handleListGames)
	mux.HandleFunc("GET /api/games/featured", h.handleFeaturedGames)
	mux.HandleFunc("GET /api/games/trending", h.handleTrendingGames)
	mux.HandleFunc("GET /api/games/genre/{genre}", h.handleGamesByGenre)
	mux.HandleFunc("GET /api/games/{id}", h.handleGetGame)
	mux.HandleFunc("POST /api/games", h.requireAdmin(h.handleCreateGame))
	mux.HandleFunc("PATCH /api/games/{id}", h.requireAdmin(h.handleUpdateGame))
	mux.HandleFunc("DELETE /api/games/{id}", h.requireAdmin(h.handleDeleteGame))

	mux.HandleFunc("GET /api/games/{id}/reviews", h.handleGameReviews)
	mux.HandleFunc("POST /api/games/{id}/reviews", h.requireUser(h.handleCreateReview))
	mux.HandleFunc("GET /api/reviews", h.requireAdmin(h.handleListReviews))
	mux.HandleFunc("GET /api/reviews/pending", h.requireAdmin(h.handlePendingReviews))
	mux.HandleFunc("PATCH /api/reviews/{id}", h.requireAdmin(h.handleModerateReview))
	mux.HandleFunc("DELETE /api/reviews/{id}", h.requireAdmin(h.handleDeleteReview))

	mux.HandleFunc("GET /api/users", h.requireAdmin(h.handleListUsers))
	mux.HandleFunc("PATCH /api/users/{id}", h.requireAdmin(h.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", h.requireAdmin(h.handleDeleteUser))

	mux.HandleFunc("GET /api/favorites", h.requireUser(h.handleListFavorites))
	mux.HandleFunc("POST /api/favorites", h.requireUser(h.handleCreateFavorite))
	mux.HandleFunc("GET /api/favorites/{gameId}/status", h.requireUser(h.handleFavoriteStatus))
	mux.HandleFunc("DELETE /api/favorites/{gameId}", h.requireUser(h.handleDeleteFavorite))

	mux.HandleFunc("GET /api/activities", h.requireAdmin(h.handleListActivities))
	mux.HandleFunc("GET /api/analytics", h.requireAdmin(h.handleListAnalytics))

	return h.withRequestMetrics(h.withVisitTracking(mux))
}

// --- middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *Handler) withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordRequest(r.Method, rec.status)
	})
}

// withVisitTracking counts page loads: GET requests outside /api whose path
// carries no file extension. Each one bumps the current day's visit bucket.
func (h *Handler) withVisitTracking(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if r.Method == http.MethodGet &&
			!strings.HasPrefix(path, "/api") &&
			path != "/metrics" &&
			!strings.Contains(path, ".") {
			_, err := h.store.UpsertDailyAnalytics(r.Context(), time.Now(), analytics.Delta{TotalVisits: 1})
			if err != nil {
				h.log.WithError(err).Warn("failed to record visit")
			} else {
				metrics.RecordVisit()
			}
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, u *user.User)

func (h *Handler) requireUser(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.auth.UserFromToken(r.Context(), sessionToken(r))
		if err != nil {
			h.fail(w, err)
			return
		}
		if u == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, u)
	}
}

func (h *Handler) requireAdmin(next authedHandler) http.HandlerFunc {
	return h.requireUser(func(w http.ResponseWriter, r *http.Request, u *user.User) {
		if !u.IsAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r, u)
	})
}

// loginLimiter returns the per-address limiter, creating it on first use.
// Five attempts, refilling one per second.
func (h *Handler) loginLimiter(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	lim, ok := h.loginLimiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 5)
		h.loginLimiters[host] = lim
	}
	return lim
}

// --- helpers ---

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if bearer := r.Header.Get("Authorization"); strings.HasPrefix(bearer, "Bearer ") {
		return strings.TrimPrefix(bearer, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.NewValidationError("body", "malformed JSON request")
	}
	return nil
}

// fail maps domain errors onto status codes. Validation and conflicts are
// client errors; everything else is logged and hidden behind a 500.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidationError(err), core.IsConflict(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, core.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		h.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// logActivity appends an audit entry; failures are logged, not surfaced,
// so the triggering request still succeeds.
func (h *Handler) logActivity(r *http.Request, action string, userID int64, details string) {
	_, err := h.store.AppendActivity(r.Context(), activityEntry(action, userID, details))
	if err != nil {
		h.log.WithError(err).WithField("action", action).Warn("failed to append activity")
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
