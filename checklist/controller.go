package checklist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"listscribe"
)

// Status is where the controller is in a scan.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusDisplaying
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusDisplaying:
		return "displaying"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// GenericErrorMessage is shown for every failure that is not the model
// rejecting the photo.
const GenericErrorMessage = "An error occurred while transcribing the image."

type transcriber interface {
	Transcribe(ctx context.Context, images ...[]byte) (listscribe.TranscriptionResult, error)
}

// Controller drives one scan at a time: idle -> loading -> displaying or
// error. Only a parsed list touches the stored checklist.
type Controller struct {
	list *Checklist
	api  transcriber

	mu      sync.Mutex
	status  Status
	message string
}

func NewController(list *Checklist, api transcriber) *Controller {
	return &Controller{list: list, api: api}
}

// State returns the current status and the message to show for it.
func (c *Controller) State() (Status, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.message
}

// Items returns the checklist as currently stored.
func (c *Controller) Items() []listscribe.GroceryItem {
	return c.list.Items()
}

// Scan sends the images for transcription. A photo that is not a grocery
// list is not an error: the controller shows the model's message and
// Scan returns nil. Everything else that goes wrong returns an error and
// shows GenericErrorMessage.
func (c *Controller) Scan(ctx context.Context, images ...[]byte) error {
	c.set(StatusLoading, "")

	res, err := c.api.Transcribe(ctx, images...)
	if err != nil {
		return c.fail("transcribe", err)
	}

	if !res.IsList() {
		slog.Info("CLIENT: Image is not a grocery list")
		c.set(StatusError, res.Error)
		return nil
	}

	items, err := ParseTranscription(*res.Text)
	if err != nil {
		return c.fail("parse transcription", err)
	}
	if err := c.list.Replace(ctx, items); err != nil {
		return c.fail("save checklist", err)
	}

	slog.Info("CLIENT: Checklist replaced", "items", len(items))
	c.set(StatusDisplaying, "")
	return nil
}

// Toggle updates one item and keeps the controller displaying.
func (c *Controller) Toggle(ctx context.Context, name string, checked bool) error {
	if err := c.list.Toggle(ctx, name, checked); err != nil {
		return err
	}
	c.set(StatusDisplaying, "")
	return nil
}

func (c *Controller) fail(step string, err error) error {
	slog.Error("CLIENT: Scan failed", "step", step, "error", err)
	c.set(StatusError, GenericErrorMessage)
	return fmt.Errorf("%s: %w", step, err)
}

func (c *Controller) set(s Status, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
	c.message = msg
}
