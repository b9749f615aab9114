package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScopeIsServed(t *testing.T) {
	scope, closer, handler := New("moviestream", time.Millisecond)
	defer closer.Close()

	scope.Tagged(map[string]string{"outcome": "succeeded"}).Counter("review_submissions").Inc(2)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return rec.Code == http.StatusOK &&
			strings.Contains(rec.Body.String(), `moviestream_review_submissions{outcome="succeeded"} 2`)
	}, time.Second, 10*time.Millisecond)
}

func TestScopeOmitsInternalMetrics(t *testing.T) {
	scope, closer, handler := New("moviestream", time.Millisecond)
	defer closer.Close()
	scope.Counter("requests").Inc(1)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		return strings.Contains(rec.Body.String(), "moviestream_requests 1")
	}, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NotContains(t, rec.Body.String(), "cardinality")
}
