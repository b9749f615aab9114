// Package metrics wires a tally root scope to a Prometheus endpoint.
package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/uber-go/tally/v4"
	promreporter "github.com/uber-go/tally/v4/prometheus"
)

// New creates a root scope reporting every interval and the HTTP handler
// serving its metrics. Close the returned closer on shutdown.
func New(prefix string, interval time.Duration) (tally.Scope, io.Closer, http.Handler) {
	reporter := promreporter.NewReporter(promreporter.Options{})
	// Cardinality gauges are named tally.internal.*, which Prometheus rejects.
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:                 prefix,
		Tags:                   map[string]string{},
		CachedReporter:         reporter,
		Separator:              promreporter.DefaultSeparator,
		OmitCardinalityMetrics: true,
	}, interval)
	return scope, closer, reporter.HTTPHandler()
}
