// Package gateway holds the types shared by the remote data and identity
// gateways.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhishek622/moviestream/pkg/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by the identity provider for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrInvalidSession is returned when an access or refresh token is no longer accepted.
	ErrInvalidSession = errors.New("invalid session")
)

// Collection names a remote table.
type Collection string

const (
	CollectionMovies  = Collection("movies")
	CollectionTVShows = Collection("tv_shows")
	CollectionReviews = Collection("reviews")
)

// TitleCollection returns the collection holding titles of the given kind.
func TitleCollection(kind model.Kind) (Collection, error) {
	switch kind {
	case model.KindMovie:
		return CollectionMovies, nil
	case model.KindTVShow:
		return CollectionTVShows, nil
	}
	return "", fmt.Errorf("unknown title kind %q", kind)
}

// ReviewColumn returns the reviews foreign key column for a title kind.
func ReviewColumn(kind model.Kind) (string, error) {
	switch kind {
	case model.KindMovie:
		return "movie_id", nil
	case model.KindTVShow:
		return "tvshow_id", nil
	}
	return "", fmt.Errorf("unknown title kind %q", kind)
}

// Filter is an equality constraint on a single column.
type Filter struct {
	Column string
	Value  string
}

// Query describes a single-field ordered read.
type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
	Eq         []Filter
}

// RemoteError is returned for any transport or server side failure. Calls
// are treated as atomic, so there is no partial result to go with it.
type RemoteError struct {
	Op         string
	Collection Collection
	StatusCode int
	Cause      error
}

func (e *RemoteError) Error() string {
	target := e.Op
	if e.Collection != "" {
		target = fmt.Sprintf("%s %s", e.Op, e.Collection)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s: status %d: %v", target, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("remote %s: %v", target, e.Cause)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// APIError is the error body returned by the hosted service.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token to ctx. Gateways send
// it as the bearer credential instead of the public key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken.
func AccessToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}
