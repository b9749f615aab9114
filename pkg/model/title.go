package model

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TitleID identifies a movie or a TV show inside its own collection.
type TitleID int64

// Kind distinguishes the two title variants.
type Kind string

const (
	KindMovie  = Kind("movie")
	KindTVShow = Kind("tvshow")
)

// TitleRef points at exactly one title of a given kind.
type TitleRef struct {
	Kind Kind    `json:"kind"`
	ID   TitleID `json:"id"`
}

// Title is a catalog entry. Movies carry ReleaseDate and Duration, TV shows
// carry FirstAirDate, Seasons and Episodes.
type Title struct {
	ID          TitleID  `json:"id"`
	Kind        Kind     `json:"kind,omitempty"`
	Name        string   `json:"title"`
	Description *string  `json:"description"`
	PosterURL   *string  `json:"poster_url"`
	BackdropURL *string  `json:"backdrop_url"`
	TrailerURL  *string  `json:"trailer_url"`
	Rating      float64  `json:"rating"`
	Genres      []string `json:"genre"`

	ReleaseDate *Date `json:"release_date,omitempty"`
	Duration    *int  `json:"duration,omitempty"`

	FirstAirDate *Date `json:"first_air_date,omitempty"`
	Seasons      int   `json:"seasons,omitempty"`
	Episodes     int   `json:"episodes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns a reference to the title.
func (t Title) Ref() TitleRef {
	return TitleRef{Kind: t.Kind, ID: t.ID}
}

// Date returns the variant's temporal field and whether it is set.
func (t Title) Date() (time.Time, bool) {
	d := t.ReleaseDate
	if t.Kind == KindTVShow {
		d = t.FirstAirDate
	}
	if d == nil || d.IsZero() {
		return time.Time{}, false
	}
	return d.Time, true
}

// HasGenre reports whether genre is one of the title's genres.
func (t Title) HasGenre(genre string) bool {
	for _, g := range t.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// Date is a calendar date as stored by the database ("2006-01-02").
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t.UTC()
	return nil
}
