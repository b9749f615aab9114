package catalog

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

// ErrNotFound is returned when a requested title does not exist.
var ErrNotFound = errors.New("title not found")

const (
	FeaturedLimit = 6
	TrendingLimit = 10
)

type titleGateway interface {
	FetchByID(ctx context.Context, kind model.Kind, id model.TitleID) (*model.Title, error)
	FetchOrdered(ctx context.Context, kind model.Kind, q gateway.Query) ([]model.Title, error)
	FetchReviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error)
}

// Filter is the user's current list criteria.
type Filter struct {
	Query string
	Genre string
	Sort  SortKey
}

// Listing is a filtered view together with the size of the full list.
type Listing struct {
	Titles []model.Title
	Total  int
}

// Showcase holds the top rated titles of each kind.
type Showcase struct {
	Movies  []model.Title
	TVShows []model.Title
}

// Controller defines the catalog service controller.
type Controller struct {
	gateway titleGateway
	logger  *zap.Logger
}

// New creates a catalog controller.
func New(gateway titleGateway, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{gateway: gateway, logger: logger}
}

// List fetches every title of kind, best rated first, and applies f.
func (c *Controller) List(ctx context.Context, kind model.Kind, f Filter) (*Listing, error) {
	all, err := c.gateway.FetchOrdered(ctx, kind, gateway.Query{OrderBy: "rating", Descending: true})
	if err != nil {
		c.logger.Error("Failed to fetch titles", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	genre := f.Genre
	if genre == "" {
		genre = model.GenreAll
	}
	key := f.Sort
	if key == "" {
		key = SortByRating
	}
	return &Listing{Titles: View(all, f.Query, genre, key), Total: len(all)}, nil
}

// Get returns a single title.
func (c *Controller) Get(ctx context.Context, ref model.TitleRef) (*model.Title, error) {
	t, err := c.gateway.FetchByID(ctx, ref.Kind, ref.ID)
	if err != nil && errors.Is(err, gateway.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// Reviews returns a title's reviews, newest first.
func (c *Controller) Reviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error) {
	return c.gateway.FetchReviews(ctx, ref)
}

// Showcase returns the limit best rated movies and TV shows. Both lists are
// fetched concurrently; the first failure cancels the other.
func (c *Controller) Showcase(ctx context.Context, limit int) (*Showcase, error) {
	var res Showcase
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		res.Movies, err = c.gateway.FetchOrdered(ctx, model.KindMovie, gateway.Query{OrderBy: "rating", Descending: true, Limit: limit})
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		res.TVShows, err = c.gateway.FetchOrdered(ctx, model.KindTVShow, gateway.Query{OrderBy: "rating", Descending: true, Limit: limit})
		return err
	})
	if err := p.Wait(); err != nil {
		c.logger.Error("Failed to fetch showcase", zap.Int("limit", limit), zap.Error(err))
		return nil, err
	}
	return &res, nil
}
