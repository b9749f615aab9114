package review

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
	"github.com/abhishek622/moviestream/pkg/validation"
)

//go:generate mockgen -source=workflow.go -destination=mock_test.go -package=review

// State is the position of a workflow in its submission cycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type reviewGateway interface {
	InsertReview(ctx context.Context, review model.ReviewInsert) error
	FetchReviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error)
}

type sessionProvider interface {
	CurrentSession() (*model.Session, bool)
}

// Workflow collects a pending review for one title and submits it.
type Workflow struct {
	mu       sync.Mutex
	gateway  reviewGateway
	sessions sessionProvider
	target   model.TitleRef
	state    State
	rating   model.Stars
	comment  string
	reviews  []model.Review
	metrics  tally.Scope
	logger   *zap.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the workflow logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithMetrics sets the scope submission outcomes are counted in.
func WithMetrics(s tally.Scope) Option {
	return func(w *Workflow) { w.metrics = s }
}

// WithReviews seeds the review list, typically from the detail page fetch.
func WithReviews(reviews []model.Review) Option {
	return func(w *Workflow) { w.reviews = reviews }
}

// New creates a workflow for target.
func New(gateway reviewGateway, sessions sessionProvider, target model.TitleRef, opts ...Option) *Workflow {
	w := &Workflow{
		gateway:  gateway,
		sessions: sessions,
		target:   target,
		metrics:  tally.NoopScope,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetRating sets the pending rating. Zero clears it.
func (w *Workflow) SetRating(r model.Stars) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settleLocked()
	w.rating = r
}

// SetComment sets the pending comment.
func (w *Workflow) SetComment(c string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.settleLocked()
	w.comment = c
}

// Pending returns the pending rating and comment.
func (w *Workflow) Pending() (model.Stars, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rating, w.comment
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Reviews returns the last fetched review list.
func (w *Workflow) Reviews() []model.Review {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reviews
}

// Refresh re-fetches the reviews of the target title.
func (w *Workflow) Refresh(ctx context.Context) error {
	reviews, err := w.gateway.FetchReviews(ctx, w.target)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.reviews = reviews
	w.mu.Unlock()
	return nil
}

// Submit validates the pending review and writes it. Validation failures
// leave the workflow idle without touching the gateway. A failed write is
// not retried and keeps the pending input; a successful one clears it and
// re-fetches the review list once.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		w.count("busy")
		return ErrSubmitInFlight
	}
	w.state = StateValidating

	payload, sess, err := w.validateLocked()
	if err != nil {
		w.state = StateIdle
		w.mu.Unlock()
		if errors.Is(err, ErrUnauthenticated) {
			w.count("unauthenticated")
		} else {
			w.count("invalid")
		}
		return err
	}
	w.state = StateSubmitting
	w.mu.Unlock()

	err = w.gateway.InsertReview(gateway.WithAccessToken(ctx, sess.AccessToken), payload)

	w.mu.Lock()
	if err != nil {
		w.state = StateFailed
		w.mu.Unlock()
		w.count("failed")
		w.logger.Error("Failed to submit review",
			zap.String("kind", string(w.target.Kind)), zap.Int64("id", int64(w.target.ID)), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	w.state = StateSucceeded
	w.rating = 0
	w.comment = ""
	w.mu.Unlock()
	w.count("succeeded")

	if err := w.Refresh(ctx); err != nil {
		w.logger.Warn("Failed to refresh reviews after submit", zap.Error(err))
	}
	return nil
}

func (w *Workflow) validateLocked() (model.ReviewInsert, *model.Session, error) {
	sess, ok := w.sessions.CurrentSession()
	if !ok || sess == nil || sess.UserID == "" {
		return model.ReviewInsert{}, nil, ErrUnauthenticated
	}
	if w.rating == 0 {
		return model.ReviewInsert{}, nil, ErrMissingRating
	}
	payload, err := model.NewReviewInsert(w.target, sess.UserID, w.rating, w.comment)
	if err != nil {
		return model.ReviewInsert{}, nil, err
	}
	if err := validation.Struct(payload); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) && len(verr.Fields) > 0 && verr.Fields[0].Field == "rating" {
			return model.ReviewInsert{}, nil, ErrInvalidRating
		}
		return model.ReviewInsert{}, nil, err
	}
	return payload, sess, nil
}

// settleLocked moves a finished submission back to idle.
func (w *Workflow) settleLocked() {
	if w.state == StateSucceeded || w.state == StateFailed {
		w.state = StateIdle
	}
}

func (w *Workflow) count(outcome string) {
	w.metrics.Tagged(map[string]string{"outcome": outcome}).Counter("review_submissions").Inc(1)
}
