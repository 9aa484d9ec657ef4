package internal

import (
	"encoding/json"
	"fmt"
)

// Event is one inbound notification as seen by the relay.
type Event struct {
	Provider   string                 `json:"provider"`
	Name       string                 `json:"name"`
	Action     string                 `json:"action,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	RawPayload []byte                 `json:"-"`
	RawObject  interface{}            `json:"-"`
	Data       map[string]interface{} `json:"data"`
}

// NewEvent decodes raw once so filters can read both the object and its
// flattened form.
func NewEvent(provider, name, requestID string, raw []byte) (Event, error) {
	event := Event{
		Provider:   provider,
		Name:       name,
		RequestID:  requestID,
		RawPayload: raw,
	}
	if len(raw) == 0 {
		event.Data = map[string]interface{}{}
		return event, nil
	}
	var object interface{}
	if err := json.Unmarshal(raw, &object); err != nil {
		return event, fmt.Errorf("decode %s payload: %w", name, err)
	}
	event.RawObject = object
	if m, ok := object.(map[string]interface{}); ok {
		event.Data = Flatten(m)
		if action, ok := m["action"].(string); ok {
			event.Action = action
		}
	} else {
		event.Data = map[string]interface{}{}
	}
	return event, nil
}
