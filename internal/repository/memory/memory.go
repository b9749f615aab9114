// Package memory is an in-process stand-in for the hosted data and identity
// services.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

const tracerID = "catalog-repository-memory"

// Repository defines a memory catalog repository.
type Repository struct {
	sync.RWMutex
	titles     map[model.Kind][]model.Title
	reviews    []model.Review
	nextReview model.ReviewID
	insertErr  error
	now        func() time.Time
}

// New creates a new memory repository.
func New() *Repository {
	return &Repository{
		titles:     map[model.Kind][]model.Title{},
		nextReview: 1,
		now:        time.Now,
	}
}

// PutTitle adds or replaces a title.
func (r *Repository) PutTitle(t model.Title) {
	r.Lock()
	defer r.Unlock()
	list := r.titles[t.Kind]
	for i := range list {
		if list[i].ID == t.ID {
			list[i] = t
			return
		}
	}
	r.titles[t.Kind] = append(list, t)
}

// FailInserts makes every following insert return err. Pass nil to reset.
func (r *Repository) FailInserts(err error) {
	r.Lock()
	defer r.Unlock()
	r.insertErr = err
}

// FetchByID retrieves a title by kind and id.
func (r *Repository) FetchByID(ctx context.Context, kind model.Kind, id model.TitleID) (*model.Title, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/FetchByID")
	defer span.End()

	for _, t := range r.titles[kind] {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gateway.ErrNotFound
}

// FetchOrdered returns titles of a kind honouring the query.
func (r *Repository) FetchOrdered(ctx context.Context, kind model.Kind, q gateway.Query) ([]model.Title, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/FetchOrdered")
	defer span.End()

	if err := checkColumns(q); err != nil {
		coll, _ := gateway.TitleCollection(kind)
		return nil, &gateway.RemoteError{Op: "fetchOrdered", Collection: coll, StatusCode: 400, Cause: err}
	}
	out := make([]model.Title, 0, len(r.titles[kind]))
	for _, t := range r.titles[kind] {
		if matches(t, q.Eq) {
			out = append(out, t)
		}
	}
	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b model.Title) int {
			c := compareField(a, b, q.OrderBy)
			if q.Descending {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FetchReviews returns a title's reviews, newest first.
func (r *Repository) FetchReviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/FetchReviews")
	defer span.End()

	out := []model.Review{}
	for _, rv := range r.reviews {
		if target, err := rv.Target(); err == nil && target == ref {
			out = append(out, rv)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// InsertReview stores a review, assigning its id and creation time.
func (r *Repository) InsertReview(ctx context.Context, in model.ReviewInsert) error {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/InsertReview")
	defer span.End()

	if r.insertErr != nil {
		return &gateway.RemoteError{Op: "insert", Collection: gateway.CollectionReviews, Cause: r.insertErr}
	}
	if (in.MovieID == nil) == (in.TVShowID == nil) {
		return model.ErrInvalidTarget
	}
	r.reviews = append(r.reviews, model.Review{
		ID:        r.nextReview,
		MovieID:   in.MovieID,
		TVShowID:  in.TVShowID,
		UserID:    in.UserID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: r.now(),
	})
	r.nextReview++
	return nil
}

// checkColumns rejects columns the titles collections do not have, as the
// REST API does.
func checkColumns(q gateway.Query) error {
	for _, f := range q.Eq {
		if _, ok := columnValue(model.Title{}, f.Column); !ok {
			return fmt.Errorf("column %q does not exist", f.Column)
		}
	}
	if q.OrderBy != "" {
		if _, ok := columnValue(model.Title{}, q.OrderBy); !ok {
			return fmt.Errorf("column %q does not exist", q.OrderBy)
		}
	}
	return nil
}

func matches(t model.Title, filters []gateway.Filter) bool {
	for _, f := range filters {
		if v, _ := columnValue(t, f.Column); v != f.Value {
			return false
		}
	}
	return true
}

// columnValue renders a column the way it appears in an eq filter.
func columnValue(t model.Title, column string) (string, bool) {
	switch column {
	case "id":
		return strconv.FormatInt(int64(t.ID), 10), true
	case "title":
		return t.Name, true
	case "rating":
		return strconv.FormatFloat(t.Rating, 'f', -1, 64), true
	case "release_date":
		return formatDate(t.ReleaseDate), true
	case "first_air_date":
		return formatDate(t.FirstAirDate), true
	case "seasons":
		return strconv.Itoa(t.Seasons), true
	case "episodes":
		return strconv.Itoa(t.Episodes), true
	}
	return "", false
}

func formatDate(d *model.Date) string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func compareField(a, b model.Title, field string) int {
	switch field {
	case "rating":
		return cmp.Compare(a.Rating, b.Rating)
	case "title":
		return cmp.Compare(a.Name, b.Name)
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "seasons":
		return cmp.Compare(a.Seasons, b.Seasons)
	case "episodes":
		return cmp.Compare(a.Episodes, b.Episodes)
	case "release_date":
		return cmp.Compare(formatDate(a.ReleaseDate), formatDate(b.ReleaseDate))
	case "first_air_date":
		return cmp.Compare(formatDate(a.FirstAirDate), formatDate(b.FirstAirDate))
	}
	return 0
}
