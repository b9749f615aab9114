package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/controller/auth"
	"github.com/abhishek622/moviestream/internal/controller/catalog"
	"github.com/abhishek622/moviestream/internal/controller/review"
	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/internal/httputil"
	"github.com/abhishek622/moviestream/pkg/model"
	"github.com/abhishek622/moviestream/pkg/validation"
)

// CookieName is the name of the cookie holding the identity tokens.
const CookieName = "moviestream-session"

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

type reviewGateway interface {
	InsertReview(ctx context.Context, review model.ReviewInsert) error
	FetchReviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error)
}

type identityGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	GetUser(ctx context.Context, accessToken string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Handler defines the catalog HTTP API.
type Handler struct {
	catalog  *catalog.Controller
	reviews  reviewGateway
	identity identityGateway
	tokens   *auth.TokenParser
	store    sessions.Store
	metrics  tally.Scope
	logger   *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

func WithMetrics(s tally.Scope) Option {
	return func(h *Handler) { h.metrics = s }
}

func WithTokenParser(p *auth.TokenParser) Option {
	return func(h *Handler) { h.tokens = p }
}

// New creates a new catalog HTTP handler.
func New(ctrl *catalog.Controller, reviews reviewGateway, identity identityGateway, store sessions.Store, opts ...Option) *Handler {
	h := &Handler{
		catalog:  ctrl,
		reviews:  reviews,
		identity: identity,
		store:    store,
		tokens:   auth.NewTokenParser(nil),
		metrics:  tally.NoopScope,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, h.trace, h.accessLog, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.withSession)
		r.Get("/featured", h.showcase(catalog.FeaturedLimit))
		r.Get("/trending", h.showcase(catalog.TrendingLimit))
		r.Route("/movies", h.titleRoutes(model.KindMovie))
		r.Route("/tvshows", h.titleRoutes(model.KindTVShow))
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/session", h.currentSession)
		})
	})
	return r
}

func (h *Handler) titleRoutes(kind model.Kind) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.list(kind))
		r.Get("/{id}", h.get(kind))
		r.Get("/{id}/reviews", h.listReviews(kind))
		r.Post("/{id}/reviews", h.submitReview(kind))
	}
}

type listResponse struct {
	Items []model.Title `json:"items"`
	Shown int           `json:"shown"`
	Total int           `json:"total"`
}

func (h *Handler) list(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key, err := catalog.ParseSortKey(q.Get("sort"))
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "INVALID_SORT", err.Error(), nil)
			return
		}
		genre := q.Get("genre")
		if genre == "" {
			genre = model.GenreAll
		}
		if genre != model.GenreAll && !model.IsGenre(genre) {
			httputil.WriteError(w, http.StatusBadRequest, "INVALID_GENRE", "unknown genre "+strconv.Quote(genre), nil)
			return
		}

		listing, err := h.catalog.List(r.Context(), kind, catalog.Filter{Query: q.Get("q"), Genre: genre, Sort: key})
		if err != nil {
			h.writeErr(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, listResponse{Items: listing.Titles, Shown: len(listing.Titles), Total: listing.Total})
	}
}

func (h *Handler) get(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, ok := titleRef(w, r, kind)
		if !ok {
			return
		}
		t, err := h.catalog.Get(r.Context(), ref)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, t)
	}
}

type reviewsResponse struct {
	Reviews []model.Review `json:"reviews"`
}

func (h *Handler) listReviews(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, ok := titleRef(w, r, kind)
		if !ok {
			return
		}
		reviews, err := h.catalog.Reviews(r.Context(), ref)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reviewsResponse{Reviews: reviews})
	}
}

type submitRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) submitReview(kind model.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, ok := titleRef(w, r, kind)
		if !ok {
			return
		}
		var req submitRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}

		wf := review.New(h.reviews, requestAuthFrom(r.Context()).observer, ref,
			review.WithLogger(h.logger), review.WithMetrics(h.metrics))
		wf.SetRating(model.Stars(req.Rating))
		wf.SetComment(req.Comment)
		if err := wf.Submit(r.Context()); err != nil {
			h.writeErr(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, reviewsResponse{Reviews: wf.Reviews()})
	}
}

type showcaseResponse struct {
	Movies  []model.Title `json:"movies"`
	TVShows []model.Title `json:"tvshows"`
}

func (h *Handler) showcase(limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.catalog.Showcase(r.Context(), limit)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, showcaseResponse{Movies: s.Movies, TVShows: s.TVShows})
	}
}

type sessionResponse struct {
	UserID    model.UserID `json:"user_id"`
	Email     string       `json:"email"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	s, err := requestAuthFrom(r.Context()).controller.SignIn(r.Context(), creds)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.logger.Info("User signed in", zap.String("user", string(s.UserID)))
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := requestAuthFrom(r.Context()).controller.SignOut(r.Context()); err != nil {
		h.logger.Warn("Sign out incomplete", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	s, ok := requestAuthFrom(r.Context()).observer.CurrentSession()
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "not signed in", nil)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{UserID: s.UserID, Email: s.Email, ExpiresAt: s.ExpiresAt})
}

func titleRef(w http.ResponseWriter, r *http.Request, kind model.Kind) (model.TitleRef, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be a positive integer", nil)
		return model.TitleRef{}, false
	}
	return model.TitleRef{Kind: kind, ID: model.TitleID(id)}, true
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	var (
		reviewErr *review.ValidationError
		inputErr  *validation.Error
		remoteErr *gateway.RemoteError
	)
	switch {
	case errors.Is(err, review.ErrUnauthenticated):
		httputil.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), nil)
	case errors.As(err, &reviewErr):
		httputil.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", reviewErr.Message,
			map[string]any{"field": reviewErr.Field})
	case errors.As(err, &inputErr):
		fields := make([]string, len(inputErr.Fields))
		for i, f := range inputErr.Fields {
			fields[i] = f.Field
		}
		httputil.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", inputErr.Error(),
			map[string]any{"fields": fields})
	case errors.Is(err, review.ErrSubmitInFlight):
		httputil.WriteError(w, http.StatusConflict, "IN_FLIGHT", err.Error(), nil)
	case errors.Is(err, catalog.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, gateway.ErrInvalidCredentials):
		httputil.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid login credentials", nil)
	case errors.Is(err, review.ErrSubmissionFailed):
		httputil.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", review.ErrSubmissionFailed.Error(), nil)
	case errors.As(err, &remoteErr):
		h.logger.Error("Remote call failed", zap.Error(err))
		httputil.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", "the catalog service is unavailable", nil)
	default:
		h.logger.Error("Request failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func (h *Handler) trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := opentracing.GlobalTracer().StartSpan(r.Method + " " + r.URL.Path)
		defer span.Finish()
		ext.SpanKindRPCServer.Set(span)
		ext.HTTPMethod.Set(span, r.Method)
		ext.HTTPUrl.Set(span, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(opentracing.ContextWithSpan(r.Context(), span)))
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
