package tracing

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
	"go.uber.org/zap"
)

// Config locates the Jaeger agent. An empty Host disables tracing.
type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// NewTracer creates a Jaeger tracer reporting through logger. With tracing
// disabled it returns a no-op tracer.
func NewTracer(serviceName string, cfg Config, logger *zap.Logger) (opentracing.Tracer, io.Closer, error) {
	if cfg.Host == "" {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}
	jcfg := &config.Configuration{
		ServiceName: serviceName,
		Sampler: &config.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &config.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		},
	}
	tracer, closer, err := jcfg.NewTracer(
		config.Logger(&jaegerLoggerAdapter{logger: logger}),
		config.Metrics(metrics.NullFactory),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Jaeger tracer: %w", err)
	}
	return tracer, closer, nil
}

// jaegerLoggerAdapter adapts zap logger to Jaeger logger interface
type jaegerLoggerAdapter struct {
	logger *zap.Logger
}

func (l *jaegerLoggerAdapter) Error(msg string) {
	l.logger.Error(msg)
}

func (l *jaegerLoggerAdapter) Infof(msg string, args ...interface{}) {
	l.logger.Sugar().Infof(msg, args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
