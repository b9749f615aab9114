package http

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/controller/auth"
	"github.com/abhishek622/moviestream/internal/session"
	"github.com/abhishek622/moviestream/pkg/model"
)

type requestAuth struct {
	observer   *session.Observer
	controller *auth.Controller
}

type requestAuthKey struct{}

// requestAuthFrom returns the request's session state. Routes reading it are
// always mounted behind withSession.
func requestAuthFrom(ctx context.Context) *requestAuth {
	return ctx.Value(requestAuthKey{}).(*requestAuth)
}

// withSession restores the caller's session from the cookie into a
// request-scoped observer. Session changes published during the request are
// written back to the cookie until the request ends.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs, err := h.store.Get(r, CookieName)
		if err != nil {
			h.logger.Debug("Discarding unreadable session cookie", zap.Error(err))
		}

		obs := session.NewObserver(h.logger)
		unsubscribe := obs.Subscribe(func(e model.AuthEvent) {
			h.persist(w, r, cs, e)
		})
		defer unsubscribe()

		ctrl := auth.New(h.identity, obs, h.tokens, h.logger)
		access, _ := cs.Values[keyAccessToken].(string)
		refresh, _ := cs.Values[keyRefreshToken].(string)
		if err := ctrl.Restore(r.Context(), access, refresh); err != nil {
			h.logger.Info("Session not restored", zap.Error(err))
		}

		ctx := context.WithValue(r.Context(), requestAuthKey{}, &requestAuth{observer: obs, controller: ctrl})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) persist(w http.ResponseWriter, r *http.Request, cs *sessions.Session, e model.AuthEvent) {
	switch e.Type {
	case model.AuthEventSignedIn, model.AuthEventTokenRefreshed:
		cs.Values[keyAccessToken] = e.Session.AccessToken
		cs.Values[keyRefreshToken] = e.Session.RefreshToken
	case model.AuthEventSignedOut:
		if len(cs.Values) == 0 && cs.IsNew {
			return
		}
		delete(cs.Values, keyAccessToken)
		delete(cs.Values, keyRefreshToken)
		cs.Options.MaxAge = -1
	default:
		return
	}
	if err := cs.Save(r, w); err != nil {
		h.logger.Error("Failed to save session cookie", zap.String("event", string(e.Type)), zap.Error(err))
	}
}
