package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

const tracerID = "identity-gateway-http"

// Gateway defines an HTTP gateway for the hosted identity API.
type Gateway struct {
	authURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

// New creates a new identity gateway. The identity API is expected under
// /auth/v1 of baseURL.
func New(baseURL, apiKey string, client *http.Client) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		authURL: strings.TrimRight(baseURL, "/") + "/auth/v1",
		apiKey:  apiKey,
		client:  client,
		now:     time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         user   `json:"user"`
}

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
}

func (e errorResponse) message() string {
	for _, s := range []string{e.Msg, e.ErrorDescription, e.Error, e.ErrorCode} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignInWithPassword exchanges an email and password for a session.
func (g *Gateway) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/SignInWithPassword")
	defer span.End()

	body := map[string]string{"email": email, "password": password}
	var resp tokenResponse
	if err := g.call(ctx, "signIn", http.MethodPost, "/token?grant_type=password", "", body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return g.session(resp), nil
}

// Refresh trades a refresh token for a new session.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/Refresh")
	defer span.End()

	body := map[string]string{"refresh_token": refreshToken}
	var resp tokenResponse
	if err := g.call(ctx, "refresh", http.MethodPost, "/token?grant_type=refresh_token", "", body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return g.session(resp), nil
}

// GetUser returns the principal owning accessToken. Token fields of the
// returned session are limited to the access token passed in.
func (g *Gateway) GetUser(ctx context.Context, accessToken string) (*model.Session, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/GetUser")
	defer span.End()

	var u user
	if err := g.call(ctx, "getUser", http.MethodGet, "/user", accessToken, nil, &u); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &model.Session{UserID: model.UserID(u.ID), Email: u.Email, AccessToken: accessToken}, nil
}

// SignOut revokes the session owning accessToken.
func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/SignOut")
	defer span.End()

	if err := g.call(ctx, "signOut", http.MethodPost, "/logout", accessToken, nil, nil); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (g *Gateway) session(resp tokenResponse) *model.Session {
	s := &model.Session{
		UserID:       model.UserID(resp.User.ID),
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = g.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}

func (g *Gateway) call(ctx context.Context, op, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.authURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer == "" {
		bearer = g.apiKey
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := g.client.Do(req)
	if err != nil {
		return &gateway.RemoteError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(op, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &gateway.RemoteError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func classify(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er errorResponse
	_ = json.Unmarshal(b, &er)
	msg := er.message()
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case op == "signIn" && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity):
		return fmt.Errorf("%w: %s", gateway.ErrInvalidCredentials, msg)
	case op != "signIn" && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		return fmt.Errorf("%w: %s", gateway.ErrInvalidSession, msg)
	}
	return &gateway.RemoteError{Op: op, StatusCode: resp.StatusCode, Cause: errors.New(msg)}
}
