package testutil

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/controller/auth"
	"github.com/abhishek622/moviestream/internal/controller/catalog"
	httphandler "github.com/abhishek622/moviestream/internal/handler/http"
	"github.com/abhishek622/moviestream/internal/repository/memory"
)

var (
	// TokenSecret signs the access tokens issued by test servers.
	TokenSecret = []byte("moviestream-test-secret")
	// CookieHashKey and CookieBlockKey authenticate and encrypt the session
	// cookie of test servers.
	CookieHashKey  = []byte("moviestream-test-cookie-hash-key")
	CookieBlockKey = []byte("moviestream-test-cookie-blockkey")
)

// CatalogServer bundles a test API handler with the memory stores behind it.
type CatalogServer struct {
	Handler  *httphandler.Handler
	Titles   *memory.Repository
	Accounts *memory.Accounts
}

// NewTestCatalogServer creates a catalog API backed by memory stores to be
// used in tests.
func NewTestCatalogServer() *CatalogServer {
	titles := memory.New()
	accounts := memory.NewAccounts(TokenSecret, time.Hour)
	store := sessions.NewCookieStore(CookieHashKey, CookieBlockKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(time.Hour.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	h := httphandler.New(catalog.New(titles, zap.NewNop()), titles, accounts, store,
		httphandler.WithTokenParser(auth.NewTokenParser(func() []byte { return TokenSecret })))
	return &CatalogServer{Handler: h, Titles: titles, Accounts: accounts}
}
