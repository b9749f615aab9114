package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/mock/gomock"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/internal/session"
	"github.com/abhishek622/moviestream/pkg/model"
)

var (
	movieRef  = model.TitleRef{Kind: model.KindMovie, ID: 11}
	seriesRef = model.TitleRef{Kind: model.KindTVShow, ID: 11}
	signedIn  = session.NewFixed(&model.Session{UserID: "0b7e", Email: "ada@example.com", AccessToken: "user-token"})
)

func counter(t *testing.T, scope tally.TestScope, outcome string) int64 {
	t.Helper()
	for _, c := range scope.Snapshot().Counters() {
		if c.Name() == "review_submissions" && c.Tags()["outcome"] == outcome {
			return c.Value()
		}
	}
	return 0
}

func TestSubmitMissingRatingMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)

	w := New(gw, signedIn, movieRef)
	w.SetComment("great")

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrMissingRating)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, StateIdle, w.State())
}

func TestSubmitUnauthenticatedCheckedFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	sessions := NewMocksessionProvider(ctrl)
	sessions.EXPECT().CurrentSession().Return(nil, false)

	w := New(gw, sessions, movieRef)

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubmitInvalidRating(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)

	w := New(gw, signedIn, movieRef)
	w.SetRating(7)

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestSubmitSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	scope := tally.NewTestScope("", nil)
	fresh := []model.Review{{ID: 1, Rating: 4, UserID: "0b7e", CreatedAt: time.Now()}}

	gomock.InOrder(
		gw.EXPECT().InsertReview(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, in model.ReviewInsert) error {
			token, ok := gateway.AccessToken(ctx)
			assert.True(t, ok)
			assert.Equal(t, "user-token", token)
			require.NotNil(t, in.MovieID)
			assert.Equal(t, model.TitleID(11), *in.MovieID)
			assert.Nil(t, in.TVShowID)
			assert.Equal(t, model.UserID("0b7e"), in.UserID)
			assert.Equal(t, model.Stars(4), in.Rating)
			require.NotNil(t, in.Comment)
			assert.Equal(t, "Loved it", *in.Comment)
			return nil
		}).Times(1),
		gw.EXPECT().FetchReviews(gomock.Any(), movieRef).Return(fresh, nil).Times(1),
	)

	w := New(gw, signedIn, movieRef, WithMetrics(scope))
	w.SetRating(4)
	w.SetComment("Loved it")

	require.NoError(t, w.Submit(context.Background()))
	rating, comment := w.Pending()
	assert.Equal(t, model.Stars(0), rating)
	assert.Equal(t, "", comment)
	assert.Equal(t, StateSucceeded, w.State())
	assert.Equal(t, fresh, w.Reviews())
	assert.Equal(t, int64(1), counter(t, scope, "succeeded"))

	w.SetRating(2)
	assert.Equal(t, StateIdle, w.State())
}

func TestSubmitSeriesBindsSeriesKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	gw.EXPECT().InsertReview(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in model.ReviewInsert) error {
		assert.Nil(t, in.MovieID)
		require.NotNil(t, in.TVShowID)
		assert.Equal(t, model.TitleID(11), *in.TVShowID)
		assert.Nil(t, in.Comment)
		return nil
	})
	gw.EXPECT().FetchReviews(gomock.Any(), seriesRef).Return([]model.Review{}, nil)

	w := New(gw, signedIn, seriesRef)
	w.SetRating(5)
	require.NoError(t, w.Submit(context.Background()))
}

func TestSubmitGatewayFailureIsNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	scope := tally.NewTestScope("", nil)
	remote := &gateway.RemoteError{Op: "insert", Collection: gateway.CollectionReviews, StatusCode: 500, Cause: errors.New("boom")}
	gw.EXPECT().InsertReview(gomock.Any(), gomock.Any()).Return(remote).Times(1)

	w := New(gw, signedIn, movieRef, WithMetrics(scope))
	w.SetRating(3)
	w.SetComment("meh")

	err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	var rerr *gateway.RemoteError
	assert.True(t, errors.As(err, &rerr))
	assert.Equal(t, StateFailed, w.State())

	rating, comment := w.Pending()
	assert.Equal(t, model.Stars(3), rating)
	assert.Equal(t, "meh", comment)
	assert.Equal(t, int64(1), counter(t, scope, "failed"))
}

func TestSubmitRejectsConcurrentSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	entered := make(chan struct{})
	release := make(chan struct{})
	gw.EXPECT().InsertReview(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, model.ReviewInsert) error {
		close(entered)
		<-release
		return nil
	}).Times(1)
	gw.EXPECT().FetchReviews(gomock.Any(), movieRef).Return(nil, nil).Times(1)

	w := New(gw, signedIn, movieRef)
	w.SetRating(5)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-entered

	assert.Equal(t, StateSubmitting, w.State())
	assert.ErrorIs(t, w.Submit(context.Background()), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestRefreshFailureAfterSubmitIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := NewMockreviewGateway(ctrl)
	seed := []model.Review{{ID: 1}}
	gw.EXPECT().InsertReview(gomock.Any(), gomock.Any()).Return(nil)
	gw.EXPECT().FetchReviews(gomock.Any(), movieRef).Return(nil, errors.New("offline"))

	w := New(gw, signedIn, movieRef, WithReviews(seed))
	w.SetRating(1)

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, seed, w.Reviews())
}
