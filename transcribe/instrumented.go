package transcribe

import (
	"context"
	"time"

	"listscribe"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedTranscriber wraps a listscribe.Transcriber with run metrics.
type InstrumentedTranscriber struct {
	next   listscribe.Transcriber
	tracer trace.Tracer

	runs      metric.Int64Counter
	failures  metric.Int64Counter
	notLists  metric.Int64Counter
	images    metric.Int64Counter
	items     metric.Int64Histogram
	durations metric.Float64Histogram
}

// NewInstrumentedTranscriber registers its instruments on meter.
func NewInstrumentedTranscriber(next listscribe.Transcriber, tracer trace.Tracer, meter metric.Meter) (*InstrumentedTranscriber, error) {
	t := &InstrumentedTranscriber{next: next, tracer: tracer}

	var err error
	if t.runs, err = meter.Int64Counter("transcriber_runs_total",
		metric.WithDescription("Total number of transcription runs started")); err != nil {
		return nil, err
	}
	if t.failures, err = meter.Int64Counter("transcriber_runs_failed_total",
		metric.WithDescription("Total number of transcription runs that failed")); err != nil {
		return nil, err
	}
	if t.notLists, err = meter.Int64Counter("transcriber_not_a_list_total",
		metric.WithDescription("Total number of transcriptions classified as not a grocery list")); err != nil {
		return nil, err
	}
	if t.images, err = meter.Int64Counter("transcriber_images_total",
		metric.WithDescription("Total number of images submitted for transcription")); err != nil {
		return nil, err
	}
	if t.items, err = meter.Int64Histogram("transcriber_items_parsed",
		metric.WithDescription("Number of grocery items parsed per run")); err != nil {
		return nil, err
	}
	if t.durations, err = meter.Float64Histogram("transcriber_run_duration_seconds",
		metric.WithDescription("Duration of transcription runs in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *InstrumentedTranscriber) Run(ctx context.Context, images ...string) (listscribe.TranscriptionResult, error) {
	ctx, span := t.tracer.Start(ctx, "InstrumentedTranscriber.Run")
	defer span.End()

	start := time.Now()
	t.runs.Add(ctx, 1)
	t.images.Add(ctx, int64(len(images)))

	res, err := t.next.Run(ctx, images...)
	t.durations.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		t.failures.Add(ctx, 1)
		span.SetStatus(codes.Error, "transcription failed")
		span.RecordError(err)
		return res, err
	}

	if !res.IsList() {
		t.notLists.Add(ctx, 1)
		span.AddEvent("Not a grocery list")
		return res, nil
	}

	items, perr := res.Text.GroceryItems()
	if perr == nil {
		t.items.Record(ctx, int64(len(items)))
		span.AddEvent("Grocery list parsed", trace.WithAttributes(attribute.Int("items", len(items))))
	}
	return res, nil
}
