package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

type account struct {
	id    model.UserID
	email string
	hash  []byte
}

// Accounts is a memory identity provider issuing HS256 access tokens.
type Accounts struct {
	mu      sync.Mutex
	secret  []byte
	ttl     time.Duration
	byEmail map[string]*account
	refresh map[string]*account
	revoked map[string]bool
	now     func() time.Time
}

// NewAccounts creates an identity provider signing tokens with secret.
func NewAccounts(secret []byte, ttl time.Duration) *Accounts {
	return &Accounts{
		secret:  secret,
		ttl:     ttl,
		byEmail: map[string]*account{},
		refresh: map[string]*account{},
		revoked: map[string]bool{},
		now:     time.Now,
	}
}

// Register creates an account and returns its id.
func (a *Accounts) Register(email, password string) (model.UserID, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := a.byEmail[key]; ok {
		return "", fmt.Errorf("account %s already exists", email)
	}
	acc := &account{id: model.UserID(uuid.NewString()), email: email, hash: hash}
	a.byEmail[key] = acc
	return acc.id, nil
}

// SetClock overrides the time source used for token issue and expiry.
func (a *Accounts) SetClock(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.now = now
}

func (a *Accounts) SignInWithPassword(_ context.Context, email, password string) (*model.Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing email or password", gateway.ErrInvalidCredentials)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.byEmail[strings.ToLower(email)]
	if !ok || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return nil, fmt.Errorf("%w: Invalid login credentials", gateway.ErrInvalidCredentials)
	}
	return a.issueLocked(acc)
}

func (a *Accounts) Refresh(_ context.Context, refreshToken string) (*model.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.refresh[refreshToken]
	if !ok {
		return nil, fmt.Errorf("%w: Invalid Refresh Token", gateway.ErrInvalidSession)
	}
	delete(a.refresh, refreshToken)
	return a.issueLocked(acc)
}

func (a *Accounts) GetUser(_ context.Context, accessToken string) (*model.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, err := a.verifyLocked(accessToken)
	if err != nil {
		return nil, err
	}
	return &model.Session{UserID: acc.id, Email: acc.email, AccessToken: accessToken}, nil
}

func (a *Accounts) SignOut(_ context.Context, accessToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, err := a.verifyLocked(accessToken)
	if err != nil {
		return err
	}
	a.revoked[accessToken] = true
	for rt, owner := range a.refresh {
		if owner == acc {
			delete(a.refresh, rt)
		}
	}
	return nil
}

func (a *Accounts) issueLocked(acc *account) (*model.Session, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   string(acc.id),
		"email": acc.email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
		"jti":   uuid.NewString(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, err
	}
	rt := uuid.NewString()
	a.refresh[rt] = acc
	return &model.Session{
		UserID:       acc.id,
		Email:        acc.email,
		AccessToken:  signed,
		RefreshToken: rt,
		ExpiresAt:    time.Unix(exp.Unix(), 0),
	}, nil
}

func (a *Accounts) verifyLocked(accessToken string) (*account, error) {
	if a.revoked[accessToken] {
		return nil, fmt.Errorf("%w: token revoked", gateway.ErrInvalidSession)
	}
	token, err := jwt.Parse(accessToken, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", gateway.ErrInvalidSession)
	}
	sub, _ := token.Claims.GetSubject()
	for _, acc := range a.byEmail {
		if string(acc.id) == sub {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown user", gateway.ErrInvalidSession)
}
