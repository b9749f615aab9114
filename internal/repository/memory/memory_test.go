package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

func TestFetchOrderedLimit(t *testing.T) {
	r := New()
	r.PutTitle(model.Title{ID: 1, Kind: model.KindMovie, Name: "Low", Rating: 5})
	r.PutTitle(model.Title{ID: 2, Kind: model.KindMovie, Name: "High", Rating: 9})
	r.PutTitle(model.Title{ID: 3, Kind: model.KindMovie, Name: "Mid", Rating: 7})
	r.PutTitle(model.Title{ID: 1, Kind: model.KindTVShow, Name: "Show", Rating: 8})

	got, err := r.FetchOrdered(context.Background(), model.KindMovie, gateway.Query{OrderBy: "rating", Descending: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "High", got[0].Name)
	assert.Equal(t, "Mid", got[1].Name)
}

func TestFetchByIDNotFound(t *testing.T) {
	r := New()
	_, err := r.FetchByID(context.Background(), model.KindMovie, 1)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
}

func TestInsertAndFetchReviews(t *testing.T) {
	r := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	movie := model.TitleRef{Kind: model.KindMovie, ID: 1}
	show := model.TitleRef{Kind: model.KindTVShow, ID: 1}
	for _, in := range []struct {
		ref   model.TitleRef
		stars model.Stars
	}{{movie, 3}, {show, 4}, {movie, 5}} {
		payload, err := model.NewReviewInsert(in.ref, "u1", in.stars, "")
		require.NoError(t, err)
		require.NoError(t, r.InsertReview(context.Background(), payload))
	}

	got, err := r.FetchReviews(context.Background(), movie)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Stars(5), got[0].Rating)
	assert.Equal(t, model.Stars(3), got[1].Rating)
}

func TestFailInserts(t *testing.T) {
	r := New()
	r.FailInserts(errors.New("boom"))
	payload, err := model.NewReviewInsert(model.TitleRef{Kind: model.KindMovie, ID: 1}, "u1", 3, "")
	require.NoError(t, err)

	err = r.InsertReview(context.Background(), payload)
	var rerr *gateway.RemoteError
	assert.True(t, errors.As(err, &rerr))
}

func TestAccountsLifecycle(t *testing.T) {
	a := NewAccounts([]byte("secret"), time.Hour)
	id, err := a.Register("ada@example.com", "pw")
	require.NoError(t, err)

	_, err = a.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)

	s, err := a.SignInWithPassword(context.Background(), "ADA@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)

	u, err := a.GetUser(context.Background(), s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	refreshed, err := a.Refresh(context.Background(), s.RefreshToken)
	require.NoError(t, err)
	_, err = a.Refresh(context.Background(), s.RefreshToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidSession, "refresh tokens are single use")

	require.NoError(t, a.SignOut(context.Background(), refreshed.AccessToken))
	_, err = a.GetUser(context.Background(), refreshed.AccessToken)
	assert.ErrorIs(t, err, gateway.ErrInvalidSession)
}

func TestFetchOrderedFiltersOnColumns(t *testing.T) {
	r := New()
	r.PutTitle(model.Title{ID: 1, Kind: model.KindTVShow, Name: "Dark", Rating: 8.7, Seasons: 3})
	r.PutTitle(model.Title{ID: 2, Kind: model.KindTVShow, Name: "Lost", Rating: 8.3, Seasons: 6})
	r.PutTitle(model.Title{ID: 3, Kind: model.KindTVShow, Name: "Fargo", Rating: 8.9, Seasons: 3})

	tests := []struct {
		name string
		eq   []gateway.Filter
		want []string
	}{
		{name: "by title", eq: []gateway.Filter{{Column: "title", Value: "Lost"}}, want: []string{"Lost"}},
		{name: "by seasons", eq: []gateway.Filter{{Column: "seasons", Value: "3"}}, want: []string{"Dark", "Fargo"}},
		{name: "by rating", eq: []gateway.Filter{{Column: "rating", Value: "8.9"}}, want: []string{"Fargo"}},
		{name: "conjunctive", eq: []gateway.Filter{{Column: "seasons", Value: "3"}, {Column: "id", Value: "1"}}, want: []string{"Dark"}},
		{name: "no match", eq: []gateway.Filter{{Column: "title", Value: "Heat"}}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FetchOrdered(context.Background(), model.KindTVShow, gateway.Query{OrderBy: "id", Eq: tt.eq})
			require.NoError(t, err)
			names := []string{}
			for _, title := range got {
				names = append(names, title.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFetchOrderedRejectsUnknownColumn(t *testing.T) {
	r := New()
	r.PutTitle(model.Title{ID: 1, Kind: model.KindMovie, Name: "Heat"})

	_, err := r.FetchOrdered(context.Background(), model.KindMovie, gateway.Query{Eq: []gateway.Filter{{Column: "director", Value: "Mann"}}})
	var remote *gateway.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 400, remote.StatusCode)
	assert.Equal(t, gateway.CollectionMovies, remote.Collection)

	_, err = r.FetchOrdered(context.Background(), model.KindMovie, gateway.Query{OrderBy: "popularity"})
	assert.ErrorAs(t, err, &remote)
}
