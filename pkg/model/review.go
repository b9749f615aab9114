package model

import (
	"errors"
	"time"
)

type ReviewID int64
type UserID string

// Stars is a review rating on the 1-5 scale, unrelated to a title's 0-10
// rating.
type Stars int

const (
	MinStars = Stars(1)
	MaxStars = Stars(5)
)

// Valid reports whether s is in [1,5].
func (s Stars) Valid() bool {
	return s >= MinStars && s <= MaxStars
}

// ErrInvalidTarget is returned when a review does not reference exactly one title.
var ErrInvalidTarget = errors.New("review must reference exactly one of movie or tv show")

type Review struct {
	ID        ReviewID  `json:"id"`
	MovieID   *TitleID  `json:"movie_id"`
	TVShowID  *TitleID  `json:"tvshow_id"`
	UserID    UserID    `json:"user_id"`
	Rating    Stars     `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Target returns the title the review belongs to.
func (r Review) Target() (TitleRef, error) {
	switch {
	case r.MovieID != nil && r.TVShowID == nil:
		return TitleRef{Kind: KindMovie, ID: *r.MovieID}, nil
	case r.TVShowID != nil && r.MovieID == nil:
		return TitleRef{Kind: KindTVShow, ID: *r.TVShowID}, nil
	}
	return TitleRef{}, ErrInvalidTarget
}

// ReviewInsert is the payload written to the reviews collection. Both
// foreign keys are always serialized so the unused one goes out as null.
type ReviewInsert struct {
	MovieID  *TitleID `json:"movie_id"`
	TVShowID *TitleID `json:"tvshow_id"`
	UserID   UserID   `json:"user_id" validate:"required"`
	Rating   Stars    `json:"rating" validate:"min=1,max=5"`
	Comment  *string  `json:"comment"`
}

// NewReviewInsert binds the target id to the foreign key slot of its kind.
func NewReviewInsert(target TitleRef, user UserID, rating Stars, comment string) (ReviewInsert, error) {
	in := ReviewInsert{UserID: user, Rating: rating}
	id := target.ID
	switch target.Kind {
	case KindMovie:
		in.MovieID = &id
	case KindTVShow:
		in.TVShowID = &id
	default:
		return ReviewInsert{}, ErrInvalidTarget
	}
	if comment != "" {
		in.Comment = &comment
	}
	return in, nil
}
