package observer

import (
	"context"
	"time"

	folio "github.com/prasetyo/folio"
	"github.com/prasetyo/folio/transcribe"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	foliolog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Transcriber is the engine surface the observer instruments.
type Transcriber interface {
	Transcribe(ctx context.Context, doc transcribe.Document, bookID string) ([]folio.PageContent, error)
}

// ObservedTranscriber wraps a Transcriber to emit OTEL lifecycle spans,
// metrics, and logs. The wrapper creates a parent span for each run; inner
// operations inherit it via context propagation.
type ObservedTranscriber struct {
	inner Transcriber
	inst  *Instruments
}

// WrapTranscriber returns an instrumented Transcriber that emits run telemetry.
func WrapTranscriber(inner Transcriber, inst *Instruments) *ObservedTranscriber {
	return &ObservedTranscriber{inner: inner, inst: inst}
}

// Transcribe wraps the inner engine's Transcribe, emitting a transcribe.run
// span plus per-run counters for pages, images, and placeholder pages.
func (o *ObservedTranscriber) Transcribe(ctx context.Context, doc transcribe.Document, bookID string) ([]folio.PageContent, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "transcribe.run", trace.WithAttributes(
		AttrBookID.String(bookID),
		AttrPageCount.Int(doc.NumPages()),
	))
	defer span.End()
	start := time.Now()

	span.AddEvent("transcribe.started")

	pages, err := o.inner.Transcribe(ctx, doc, bookID)

	durationMs := float64(time.Since(start).Milliseconds())
	status := "ok"

	if ctx.Err() != nil && err != nil {
		status = "cancelled"
		span.AddEvent("transcribe.cancelled")
		span.SetStatus(codes.Error, "cancelled")
	} else if err != nil {
		status = "error"
		span.AddEvent("transcribe.failed", trace.WithAttributes(
			attribute.String("error", err.Error()),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.AddEvent("transcribe.completed")
	}

	var blocks, images, placeholders int
	for _, page := range pages {
		blocks += len(page.Blocks)
		if page.Empty() {
			placeholders++
		}
		for _, b := range page.Blocks {
			if b.Type == folio.BlockImage {
				images++
			}
		}
	}

	span.SetAttributes(
		AttrRunStatus.String(status),
		AttrBlockCount.Int(blocks),
		AttrImageCount.Int(images),
		AttrPlaceholders.Int(placeholders),
	)

	// Metrics
	runAttrs := metric.WithAttributes(
		AttrBookID.String(bookID),
		attribute.String("status", status),
	)
	o.inst.TranscriptionRuns.Add(ctx, 1, runAttrs)
	o.inst.PagesTranscribed.Add(ctx, int64(len(pages)), runAttrs)
	o.inst.ImagesExtracted.Add(ctx, int64(images), runAttrs)
	o.inst.PlaceholderPages.Add(ctx, int64(placeholders), runAttrs)
	o.inst.RunDuration.Record(ctx, durationMs, metric.WithAttributes(
		AttrBookID.String(bookID),
	))

	// Structured log
	var rec foliolog.Record
	rec.SetSeverity(foliolog.SeverityInfo)
	rec.SetBody(foliolog.StringValue("transcription run completed"))
	rec.AddAttributes(
		foliolog.String("book.id", bookID),
		foliolog.String("status", status),
		foliolog.Int("pages", len(pages)),
		foliolog.Int("images", images),
		foliolog.Int("placeholders", placeholders),
		foliolog.Float64("duration_ms", durationMs),
	)
	o.inst.Logger.Emit(ctx, rec)

	return pages, err
}

// PageProgress returns a progress callback that records per-page durations
// into the page duration histogram. Attach it to the engine with
// transcribe.WithProgress; the first event (page 0) arms the timer, each
// subsequent page event records the elapsed time since the previous one.
func (i *Instruments) PageProgress() func(folio.TranscriptionProgress) {
	var last time.Time
	var lastPage int
	return func(p folio.TranscriptionProgress) {
		now := time.Now()
		defer func() { last, lastPage = now, p.CurrentPage }()

		if last.IsZero() || p.CurrentPage == 0 || p.CurrentPage == lastPage {
			return
		}
		i.PageDuration.Record(context.Background(),
			float64(now.Sub(last).Milliseconds()),
			metric.WithAttributes(AttrBookID.String(p.BookID)))
	}
}

// compile-time check
var _ Transcriber = (*ObservedTranscriber)(nil)
