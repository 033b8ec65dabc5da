package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-bot/internal/core/events"
)

// Deliverer turns intents published on the bus into per-recipient messages.
type Deliverer struct {
	dir    Directory
	sink   Sink
	logger *slog.Logger
}

func NewDeliverer(dir Directory, sink Sink, logger *slog.Logger) *Deliverer {
	return &Deliverer{dir: dir, sink: sink, logger: logger}
}

// Register subscribes the deliverer to every intent kind.
func (d *Deliverer) Register(bus *events.EventBus) {
	for _, kind := range Kinds {
		bus.Subscribe(string(kind), d.Handle)
	}
}

func (d *Deliverer) Handle(ctx context.Context, event events.Event) error {
	intent, ok := event.Payload().(Intent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for event %s", event.Payload(), event.EventType())
	}

	subject, recipients, err := Recipients(ctx, d.dir, intent)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		d.logger.Debug("no recipients for intent", "intent_id", intent.ID, "kind", intent.Kind)
		return nil
	}

	var errs []error
	for _, r := range recipients {
		msg := Message{
			IntentID:    intent.ID,
			Kind:        intent.Kind,
			RecipientID: r.ID,
			Text:        Render(intent, subject, r),
			Intent:      intent,
		}
		if err := d.sink.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("recipient %d: %w", r.ID, err))
		}
	}
	return errors.Join(errs...)
}
