package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// Event types emitted by the schema engine after a committed mutation.
const (
	FeatureCreated  = "FEATURE_CREATED"
	FeatureUpdated  = "FEATURE_UPDATED"
	FeatureDeleted  = "FEATURE_DELETED"
	TemplateCreated = "TEMPLATE_CREATED"
	TemplateUpdated = "TEMPLATE_UPDATED"
	TemplateDeleted = "TEMPLATE_DELETED"

	TemplateFeatureAttached = "TEMPLATE_FEATURE_ATTACHED"
	TemplateFeatureDetached = "TEMPLATE_FEATURE_DETACHED"

	PatternCreated = "PATTERN_CREATED"
	PatternUpdated = "PATTERN_UPDATED"
	PatternDeleted = "PATTERN_DELETED"

	LanguageCreated           = "LANGUAGE_CREATED"
	LanguageUpdated           = "LANGUAGE_UPDATED"
	LanguageDeleted           = "LANGUAGE_DELETED"
	LanguageMembersReconciled = "LANGUAGE_MEMBERS_RECONCILED"

	ViewCreated = "VIEW_CREATED"
	ViewUpdated = "VIEW_UPDATED"
	ViewDeleted = "VIEW_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PATTERN_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher delivers events to a bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Recorder keeps published events in memory. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, event)
	return nil
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.EventType())
	}
	return out
}

// Marshal encodes an event as the JSON envelope shared by every transport.
func Marshal(event Event) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp().UTC().Format(time.RFC3339Nano),
		"data":        event.Payload(),
	})
}

// Decode rebuilds an event from its Marshal envelope.
func Decode(data []byte) (BaseEvent, error) {
	var envelope struct {
		Type       string                 `json:"type"`
		OccurredAt time.Time              `json:"occurred_at"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return BaseEvent{}, err
	}
	if envelope.Type == "" {
		return BaseEvent{}, errors.New("event envelope without type")
	}
	return BaseEvent{Type: envelope.Type, Data: envelope.Data, OccurredAt: envelope.OccurredAt}, nil
}

type fanout []Publisher

// Fanout delivers each event to every non-nil publisher. It returns nil
// when no publisher is left.
func Fanout(publishers ...Publisher) Publisher {
	var out fanout
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

func (f fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
