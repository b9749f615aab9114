package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhishek622/moviestream/internal/gateway"
	"github.com/abhishek622/moviestream/pkg/model"
)

const tracerID = "data-gateway-http"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Gateway defines an HTTP gateway for the hosted REST data API.
type Gateway struct {
	restURL string
	apiKey  string
	client  *http.Client
}

// New creates a new data gateway. baseURL is the project URL; the REST API
// is expected under /rest/v1.
func New(baseURL, apiKey string, client *http.Client) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		restURL: strings.TrimRight(baseURL, "/") + "/rest/v1/",
		apiKey:  apiKey,
		client:  client,
	}
}

// FetchByID returns a single title or gateway.ErrNotFound.
func (g *Gateway) FetchByID(ctx context.Context, kind model.Kind, id model.TitleID) (*model.Title, error) {
	coll, err := gateway.TitleCollection(kind)
	if err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/FetchByID")
	defer span.End()

	q := gateway.Query{
		Limit: 1,
		Eq:    []gateway.Filter{{Column: "id", Value: strconv.FormatInt(int64(id), 10)}},
	}
	var titles []model.Title
	if err := g.get(ctx, span, "fetchById", coll, q, &titles); err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, gateway.ErrNotFound
	}
	t := titles[0]
	t.Kind = kind
	return &t, nil
}

// FetchOrdered returns the titles of a kind ordered by a single field.
func (g *Gateway) FetchOrdered(ctx context.Context, kind model.Kind, q gateway.Query) ([]model.Title, error) {
	coll, err := gateway.TitleCollection(kind)
	if err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/FetchOrdered")
	defer span.End()

	var titles []model.Title
	if err := g.get(ctx, span, "fetchOrdered", coll, q, &titles); err != nil {
		return nil, err
	}
	for i := range titles {
		titles[i].Kind = kind
	}
	if titles == nil {
		titles = []model.Title{}
	}
	return titles, nil
}

// FetchReviews returns the reviews of a title, newest first.
func (g *Gateway) FetchReviews(ctx context.Context, ref model.TitleRef) ([]model.Review, error) {
	column, err := gateway.ReviewColumn(ref.Kind)
	if err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/FetchReviews")
	defer span.End()

	q := gateway.Query{
		OrderBy:    "created_at",
		Descending: true,
		Eq:         []gateway.Filter{{Column: column, Value: strconv.FormatInt(int64(ref.ID), 10)}},
	}
	var reviews []model.Review
	if err := g.get(ctx, span, "fetchOrdered", gateway.CollectionReviews, q, &reviews); err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return reviews, nil
}

// InsertReview writes a single review.
func (g *Gateway) InsertReview(ctx context.Context, review model.ReviewInsert) error {
	if (review.MovieID == nil) == (review.TVShowID == nil) {
		return model.ErrInvalidTarget
	}
	return g.Insert(ctx, gateway.CollectionReviews, review)
}

// Insert writes one record into a collection.
func (g *Gateway) Insert(ctx context.Context, coll gateway.Collection, record any) error {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Gateway/Insert")
	defer span.End()
	span.SetAttributes(attribute.String("collection", string(coll)))

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", coll, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.restURL+string(coll), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	return g.do(req, span, "insert", coll, nil)
}

func (g *Gateway) get(ctx context.Context, span trace.Span, op string, coll gateway.Collection, q gateway.Query, out any) error {
	span.SetAttributes(attribute.String("collection", string(coll)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.restURL+string(coll)+"?"+encodeQuery(q), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return g.do(req, span, op, coll, out)
}

func (g *Gateway) do(req *http.Request, span trace.Span, op string, coll gateway.Collection, out any) error {
	token, ok := gateway.AccessToken(req.Context())
	if !ok {
		token = g.apiKey
	}
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return &gateway.RemoteError{Op: op, Collection: coll, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &gateway.RemoteError{Op: op, Collection: coll, StatusCode: resp.StatusCode, Cause: decodeAPIError(resp)}
		span.RecordError(rerr)
		return rerr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return &gateway.RemoteError{Op: op, Collection: coll, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func encodeQuery(q gateway.Query) string {
	v := url.Values{}
	v.Set("select", "*")
	for _, f := range q.Eq {
		v.Add(f.Column, "eq."+f.Value)
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Descending {
			dir = "desc"
		}
		v.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v.Encode()
}

func decodeAPIError(resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(b)) == 0 {
		return errors.New(http.StatusText(resp.StatusCode))
	}
	var apiErr gateway.APIError
	if err := json.Unmarshal(b, &apiErr); err != nil || apiErr.Message == "" {
		return errors.New(strings.TrimSpace(string(b)))
	}
	return &apiErr
}
