package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"pollsite/internal/domain/question"
	"pollsite/internal/domain/user"
	jwtpkg "pollsite/internal/platform/jwt"
	"pollsite/internal/worker"
)

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type VoteLimit struct {
	PerMinute int
	Burst     int
}

type Handler struct {
	questionSvc *question.Service
	userSvc     *user.Service
	jwtMgr      *jwtpkg.Manager
	voteCh      chan<- worker.VoteEvent
	db          Pinger
}

func NewRouter(
	questionSvc *question.Service,
	userSvc *user.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db Pinger,
	voteLimit VoteLimit,
) http.Handler {
	h := &Handler{
		questionSvc: questionSvc,
		userSvc:     userSvc,
		jwtMgr:      jwtMgr,
		voteCh:      voteCh,
		db:          db,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if voteLimit.PerMinute <= 0 {
		voteLimit.PerMinute = 10
	}
	if voteLimit.Burst <= 0 {
		voteLimit.Burst = 3
	}
	voteRate := rate.Every(time.Minute / time.Duration(voteLimit.PerMinute))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		r.Get("/questions", h.handleLatestQuestions)
		r.Get("/questions/{id}", h.handleQuestionDetail)
		r.Get("/questions/{id}/results", h.handleQuestionResults)
		r.With(VoteRateLimit(voteRate, voteLimit.Burst)).Post("/questions/{id}/vote", h.handleVote)

		r.Route("/admin", func(r chi.Router) {
			r.Use(Authenticate(jwtMgr))
			r.Use(RequireRole(user.RoleAdmin))

			r.Get("/questions", h.handleAdminListQuestions)
			r.Post("/questions", h.handleCreateQuestion)
			r.Patch("/questions/{id}", h.handleUpdateQuestion)
			r.Delete("/questions/{id}", h.handleDeleteQuestion)
			r.Post("/questions/{id}/choices", h.handleAddChoice)
			r.Get("/users", h.handleListUsers)
			r.Patch("/users/{id}/role", h.handleUpdateUserRole)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

// parseTimePtr parses an optional RFC 3339 timestamp. Empty input yields nil.
func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
