package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("singularity.analysis")
	meter  = otel.Meter("singularity.analysis")
)

var (
	analyzeLatency metric.Float64Histogram
	analyzeTotal   metric.Int64Counter
	analyzeErrors  metric.Int64Counter
	spacesBuilt    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Later calls return the first error.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"analysis_duration_seconds",
			metric.WithDescription("Duration of single-file metric analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"analysis_total",
			metric.WithDescription("Total number of analysis calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeErrors, err = meter.Int64Counter(
			"analysis_errors_total",
			metric.WithDescription("Total number of failed analysis calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		spacesBuilt, err = meter.Int64Histogram(
			"analysis_spaces",
			metric.WithDescription("Number of spaces produced per analysis"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordAnalysis(ctx context.Context, language string, duration time.Duration, spaces int, err error) {
	if initMetrics() != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", err == nil),
	)
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)

	lang := metric.WithAttributes(attribute.String("language", language))
	if err != nil {
		analyzeErrors.Add(ctx, 1, lang)
		return
	}
	spacesBuilt.Record(ctx, int64(spaces), lang)
}

func startAnalyzeSpan(ctx context.Context, language, path string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analysis.language", language),
			attribute.String("analysis.path", path),
			attribute.Int("analysis.content_size", size),
		),
	)
}

func endAnalyzeSpan(span trace.Span, spaces int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("analysis.space_count", spaces))
	}
	span.End()
}
