package listscribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TranscriptionLogger records each model step of a transcription request.
type TranscriptionLogger interface {
	LogStep(step StepLog) error
}

// NewTranscriptionLogFilePath returns a file path under dir named after the
// current time and a cleaned up model id.
func NewTranscriptionLogFilePath(dir, model string) string {
	if model == "" {
		model = "default"
	}
	name := strings.NewReplacer(":", "_", "/", "_").Replace(strings.ToLower(model))
	return filepath.Join(dir, fmt.Sprintf("%d.%s.json", time.Now().UnixNano(), name))
}

// StepLog represents one model call made while handling a request
type StepLog struct {
	Step      string        `json:"step"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration_ns"`
	Input     string        `json:"input,omitempty"`
	Output    any           `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// FileTranscriptionLogger accumulates steps and writes them out on Flush
type FileTranscriptionLogger struct {
	mu     sync.Mutex
	steps  []StepLog
	writer io.Writer
}

func NewFileTranscriptionLogger(writer io.Writer) *FileTranscriptionLogger {
	return &FileTranscriptionLogger{
		steps:  make([]StepLog, 0),
		writer: writer,
	}
}

// LogStep buffers the step; nothing is written until Flush.
func (l *FileTranscriptionLogger) LogStep(step StepLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
	return nil
}

// Flush writes all buffered steps to the writer and clears the buffer.
func (l *FileTranscriptionLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"transcription_session": map[string]any{
			"timestamp": time.Now(),
			"steps":     l.steps,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcription log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write transcription log: %w", err)
	}

	l.steps = l.steps[:0]
	return nil
}

type NoOpTranscriptionLogger struct{}

func NewNoOpTranscriptionLogger() *NoOpTranscriptionLogger {
	return &NoOpTranscriptionLogger{}
}

func (nop *NoOpTranscriptionLogger) LogStep(step StepLog) error {
	return nil
}

// StdoutTranscriptionLogger writes each step as a JSON line (for Lambda/CloudWatch)
type StdoutTranscriptionLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdoutTranscriptionLogger() *StdoutTranscriptionLogger {
	return &StdoutTranscriptionLogger{out: os.Stdout}
}

func (l *StdoutTranscriptionLogger) LogStep(step StepLog) error {
	data, err := json.Marshal(step)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}

// SessionLogger hands out a TranscriptionLogger per request. The returned
// finish func must be called once the request is done.
type SessionLogger interface {
	StartSession() (TranscriptionLogger, func() error, error)
}

// SharedSessionLogger reuses one logger for every session.
type SharedSessionLogger struct {
	Logger TranscriptionLogger
}

func (s SharedSessionLogger) StartSession() (TranscriptionLogger, func() error, error) {
	l := s.Logger
	if l == nil {
		l = NewNoOpTranscriptionLogger()
	}
	return l, func() error { return nil }, nil
}

// DirSessionLogger writes each session to its own JSON file under Dir.
type DirSessionLogger struct {
	Dir   string
	Model string
}

func (d DirSessionLogger) StartSession() (TranscriptionLogger, func() error, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create transcription log dir: %w", err)
	}
	f, err := os.Create(NewTranscriptionLogFilePath(d.Dir, d.Model))
	if err != nil {
		return nil, nil, fmt.Errorf("create transcription log: %w", err)
	}
	l := NewFileTranscriptionLogger(f)
	return l, func() error {
		return errors.Join(l.Flush(), f.Close())
	}, nil
}
