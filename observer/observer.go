// Package observer provides OTEL-based observability for transcription runs.
//
// It wraps the transcription engine with an instrumented version that emits
// traces, metrics, and logs via OpenTelemetry. Users export to any
// OTEL-compatible backend by setting standard OTEL env vars.
package observer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	foliolog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/prasetyo/folio/observer"

// Instruments holds all OTEL instruments used by the observer wrappers.
type Instruments struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger foliolog.Logger

	// Counters
	PagesTranscribed  metric.Int64Counter
	ImagesExtracted   metric.Int64Counter
	PlaceholderPages  metric.Int64Counter
	TranscriptionRuns metric.Int64Counter

	// Histograms
	PageDuration metric.Float64Histogram
	RunDuration  metric.Float64Histogram
}

// Init sets up OTEL trace, metric, and log providers with OTLP HTTP exporters.
// Configuration comes from standard OTEL env vars (OTEL_EXPORTER_OTLP_ENDPOINT, etc.).
// Returns a shutdown function that must be called on application exit.
func Init(ctx context.Context) (*Instruments, func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName("folio")),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, nil, err
	}

	// Trace provider
	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	// Metric provider
	metricExp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	// Log provider
	logExp, err := otlploghttp.New(ctx)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(lp)

	inst, err := newInstruments()
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		_ = lp.Shutdown(ctx)
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tp.Shutdown(ctx),
			mp.Shutdown(ctx),
			lp.Shutdown(ctx),
		)
	}

	return inst, shutdown, nil
}

func newInstruments() (*Instruments, error) {
	tracer := otel.Tracer(scopeName)
	meter := otel.Meter(scopeName)
	logger := global.GetLoggerProvider().Logger(scopeName)

	pagesTranscribed, err := meter.Int64Counter("transcribe.pages",
		metric.WithDescription("Pages transcribed"),
		metric.WithUnit("{page}"))
	if err != nil {
		return nil, err
	}

	imagesExtracted, err := meter.Int64Counter("transcribe.images",
		metric.WithDescription("Images extracted and uploaded"),
		metric.WithUnit("{image}"))
	if err != nil {
		return nil, err
	}

	placeholderPages, err := meter.Int64Counter("transcribe.placeholder_pages",
		metric.WithDescription("Pages that failed extraction and were emitted as placeholders"),
		metric.WithUnit("{page}"))
	if err != nil {
		return nil, err
	}

	transcriptionRuns, err := meter.Int64Counter("transcribe.runs",
		metric.WithDescription("Transcription run count"),
		metric.WithUnit("{run}"))
	if err != nil {
		return nil, err
	}

	pageDuration, err := meter.Float64Histogram("transcribe.page.duration",
		metric.WithDescription("Per-page transcription duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram("transcribe.run.duration",
		metric.WithDescription("Whole-document transcription duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		Tracer:            tracer,
		Meter:             meter,
		Logger:            logger,
		PagesTranscribed:  pagesTranscribed,
		ImagesExtracted:   imagesExtracted,
		PlaceholderPages:  placeholderPages,
		TranscriptionRuns: transcriptionRuns,
		PageDuration:      pageDuration,
		RunDuration:       runDuration,
	}, nil
}
