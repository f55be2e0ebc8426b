package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"listscribe"
	"listscribe/tools"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// ErrNoImages is returned when Run is called without any image.
var ErrNoImages = errors.New("no images to transcribe")

// NotifyTimeout bounds a single notification.
const NotifyTimeout = 10 * time.Second

// Notifier is told about every successfully parsed list.
type Notifier interface {
	Notify(ctx context.Context, msg listscribe.ChatMessage) error
}

// Transcriber turns one or more photos of a list into a parsed checklist
// by running transcribe, classify and parse against a model.
type Transcriber struct {
	model    listscribe.ModelClient
	logs     listscribe.SessionLogger
	notifier Notifier
	pending  sync.WaitGroup
}

// NewTranscriber initializes a new transcriber. logs and notifier may be nil.
func NewTranscriber(model listscribe.ModelClient, logs listscribe.SessionLogger, notifier Notifier) *Transcriber {
	if logs == nil {
		logs = listscribe.SharedSessionLogger{}
	}
	return &Transcriber{model: model, logs: logs, notifier: notifier}
}

// Run transcribes every image, classifies the combined text and, if it is a
// grocery list, parses it into items. Text that is not a list comes back as
// the result's Error. Model failures are returned as errors.
func (t *Transcriber) Run(ctx context.Context, images ...string) (listscribe.TranscriptionResult, error) {
	ctx, span := otel.Tracer(listscribe.TracerNameTranscriber).Start(ctx, "Transcriber.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("images", len(images)))

	if len(images) == 0 {
		return listscribe.TranscriptionResult{}, ErrNoImages
	}

	log, finish, err := t.logs.StartSession()
	if err != nil {
		slog.Warn("TRANSCRIBER: Could not start transcription log, continuing without it", "error", err)
		log, finish = listscribe.NewNoOpTranscriptionLogger(), func() error { return nil }
	}
	defer func() {
		if err := finish(); err != nil {
			slog.Error("TRANSCRIBER: Failed to write transcription log", "error", err)
		}
	}()

	slog.Info("TRANSCRIBER: Starting run", "images", len(images))

	res, err := t.run(ctx, log, images)
	if err != nil {
		span.SetStatus(codes.Error, "transcription failed")
		span.RecordError(err)
		slog.Error("TRANSCRIBER: Run failed", "error", err)
		return listscribe.TranscriptionResult{}, err
	}

	span.SetAttributes(attribute.Bool("is_grocery_list", res.IsList()))
	if res.IsList() && t.notifier != nil {
		t.notify(ctx, *res.Text)
	}
	return res, nil
}

// notify sends msg in the background. The request's values are kept but
// not its cancellation.
func (t *Transcriber) notify(ctx context.Context, msg listscribe.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)
	t.pending.Go(func() {
		defer cancel()
		if err := t.notifier.Notify(ctx, msg); err != nil {
			slog.Warn("TRANSCRIBER: Notification failed", "error", err)
		}
	})
}

// Wait blocks until every notification started by Run has finished.
func (t *Transcriber) Wait() {
	t.pending.Wait()
}

func (t *Transcriber) run(ctx context.Context, log listscribe.TranscriptionLogger, images []string) (listscribe.TranscriptionResult, error) {
	texts, err := t.transcribeAll(ctx, log, images)
	if err != nil {
		return listscribe.TranscriptionResult{}, err
	}
	text := tools.JoinTranscriptions(texts)

	var isList bool
	err = t.step(log, "classify", tools.Excerpt(text, tools.ClassifierExcerptLen), func() (any, error) {
		var err error
		isList, err = t.model.IsGroceryList(ctx, text)
		return isList, err
	})
	if err != nil {
		return listscribe.TranscriptionResult{}, fmt.Errorf("classify transcription: %w", err)
	}

	if !isList {
		slog.Info("TRANSCRIBER: Transcription is not a grocery list")
		return listscribe.TranscriptionResult{Error: text}, nil
	}

	var msg listscribe.ChatMessage
	err = t.step(log, "parse", text, func() (any, error) {
		var err error
		msg, err = t.model.ParseItems(ctx, text)
		return msg, err
	})
	if err != nil {
		return listscribe.TranscriptionResult{}, fmt.Errorf("parse items: %w", err)
	}

	slog.Info("TRANSCRIBER: Parsed grocery list", "tool_calls", len(msg.ToolCalls))
	return listscribe.TranscriptionResult{Text: &msg}, nil
}

// transcribeAll runs one transcription per image concurrently. Results keep
// input order and the first failure cancels the rest.
func (t *Transcriber) transcribeAll(ctx context.Context, log listscribe.TranscriptionLogger, images []string) ([]string, error) {
	texts := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			return t.step(log, fmt.Sprintf("transcribe[%d]", i), fmt.Sprintf("%d base64 chars", len(img)), func() (any, error) {
				text, err := t.model.TranscribeImage(gctx, img)
				if err != nil {
					return nil, fmt.Errorf("transcribe image %d: %w", i, err)
				}
				texts[i] = text
				return text, nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// step times fn and records it in the transcription log.
func (t *Transcriber) step(log listscribe.TranscriptionLogger, name, input string, fn func() (any, error)) error {
	start := time.Now()
	out, err := fn()

	entry := listscribe.StepLog{
		Step:      name,
		Timestamp: start,
		Duration:  time.Since(start),
		Input:     input,
		Output:    out,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if lerr := log.LogStep(entry); lerr != nil {
		slog.Error("TRANSCRIBER: Failed to log step", "error", lerr, "step", name)
	}

	slog.Info("TRANSCRIBER: Step finished", "step", name, "duration_ms", entry.Duration.Milliseconds(), "ok", err == nil)
	return err
}
