// Package relay runs one event through the mute filters, the translator and
// the Discord publisher.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gitcord/internal"
	"gitcord/pkg/discord"
	"gitcord/pkg/translate"

	ghevent "github.com/go-playground/webhooks/v6/github"
)

// Outcome says what happened to an event that did not fail.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeIgnored
	OutcomeFiltered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeFiltered:
		return "filtered"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ErrDelivery wraps every publisher failure.
var ErrDelivery = errors.New("delivery failed")

type Relay struct {
	translator *translate.Translator
	filters    *internal.FilterEngine
	publisher  internal.Publisher
	logger     *log.Logger
}

// New returns a Relay. filters may be nil.
func New(translator *translate.Translator, filters *internal.FilterEngine, publisher internal.Publisher, logger *log.Logger) *Relay {
	if logger == nil {
		logger = internal.NewLogger("relay")
	}
	return &Relay{
		translator: translator,
		filters:    filters,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle relays event. Events that are muted or not notable are reported
// through the outcome, not as errors.
func (r *Relay) Handle(ctx context.Context, event internal.Event) (Outcome, error) {
	return r.HandleWithLogger(ctx, event, r.logger)
}

// HandleWithLogger is Handle logging to a request-scoped logger.
func (r *Relay) HandleWithLogger(ctx context.Context, event internal.Event, logger *log.Logger) (Outcome, error) {
	if logger == nil {
		logger = r.logger
	}
	kind := ghevent.Event(event.Name)

	if !translate.Supported(kind) {
		logger.Printf("event name=%s action=%s ignored: unsupported kind", event.Name, event.Action)
		internal.IncIgnored(event.Name)
		return OutcomeIgnored, nil
	}

	if when, muted := r.filters.MatchWithLogger(event, logger); muted {
		logger.Printf("event name=%s action=%s filtered by %q", event.Name, event.Action, when)
		internal.IncIgnored(event.Name)
		return OutcomeFiltered, nil
	}

	embed, err := r.translator.Translate(kind, event.RawPayload)
	if err != nil {
		return 0, fmt.Errorf("translate %s: %w", event.Name, err)
	}
	if embed == nil {
		logger.Printf("event name=%s action=%s ignored: not notable", event.Name, event.Action)
		internal.IncIgnored(event.Name)
		return OutcomeIgnored, nil
	}

	if err := r.publisher.Publish(ctx, discord.NewPayload(*embed)); err != nil {
		internal.IncDeliveryError(event.Name)
		return 0, fmt.Errorf("%w: %s: %w", ErrDelivery, event.Name, err)
	}
	logger.Printf("event name=%s action=%s delivered title=%q", event.Name, event.Action, embed.Title)
	return OutcomeDelivered, nil
}
