package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
	"github.com/abhishek622/moviestream/pkg/validation"
)

// refreshLeeway refreshes tokens slightly before they expire.
const refreshLeeway = 10 * time.Second

type identityGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Session, error)
	GetUser(ctx context.Context, accessToken string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type observer interface {
	CurrentSession() (*model.Session, bool)
	Publish(e model.AuthEvent)
}

// Credentials is a sign-in request.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Controller relays identity provider results into a session observer.
type Controller struct {
	identity identityGateway
	observer observer
	tokens   *TokenParser
	logger   *zap.Logger
}

// New creates an auth controller publishing into observer.
func New(identity identityGateway, observer observer, tokens *TokenParser, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens == nil {
		tokens = NewTokenParser(nil)
	}
	return &Controller{identity: identity, observer: observer, tokens: tokens, logger: logger}
}

// Restore rebuilds the session from stored tokens. A usable access token
// yields INITIAL_SESSION, an expired one is refreshed into TOKEN_REFRESHED,
// and tokens the provider rejects yield SIGNED_OUT. Without a signing secret
// a usable access token is confirmed with the provider first. Transient provider
// failures publish nothing and return the error.
func (c *Controller) Restore(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return nil
	}
	claims, err := c.tokens.Parse(accessToken)
	switch {
	case err == nil && (claims.ExpiresAt.IsZero() || c.tokens.now().Add(refreshLeeway).Before(claims.ExpiresAt)):
		s := &model.Session{
			UserID:       claims.UserID,
			Email:        claims.Email,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    claims.ExpiresAt,
		}
		// Unsigned claims are only trusted once the provider confirms them.
		if !c.tokens.Verifies() {
			u, err := c.identity.GetUser(ctx, accessToken)
			if err != nil {
				if errors.Is(err, gateway.ErrInvalidSession) {
					c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
				}
				c.logger.Warn("Failed to verify session", zap.Error(err))
				return err
			}
			s.UserID, s.Email = u.UserID, u.Email
		}
		c.observer.Publish(model.AuthEvent{Type: model.AuthEventInitialSession, Session: s})
		return nil
	case err != nil && !errors.Is(err, ErrTokenExpired) && accessToken != "":
		c.logger.Warn("Discarding invalid access token", zap.Error(err))
		c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
		return err
	}

	if refreshToken == "" {
		c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
		return ErrTokenExpired
	}
	s, err := c.identity.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSession) {
			c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
		}
		c.logger.Warn("Failed to refresh session", zap.Error(err))
		return err
	}
	c.observer.Publish(model.AuthEvent{Type: model.AuthEventTokenRefreshed, Session: s})
	return nil
}

// SignIn authenticates with email and password.
func (c *Controller) SignIn(ctx context.Context, creds Credentials) (*model.Session, error) {
	if err := validation.Struct(&creds); err != nil {
		return nil, err
	}
	s, err := c.identity.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedIn, Session: s})
	return s, nil
}

// SignOut revokes the current session. The local session is dropped even
// when the provider call fails.
func (c *Controller) SignOut(ctx context.Context) error {
	var err error
	if s, ok := c.observer.CurrentSession(); ok && s.AccessToken != "" {
		if err = c.identity.SignOut(ctx, s.AccessToken); err != nil {
			c.logger.Warn("Failed to revoke session", zap.String("user", string(s.UserID)), zap.Error(err))
		}
	}
	c.observer.Publish(model.AuthEvent{Type: model.AuthEventSignedOut})
	return err
}
