// Package relay exchanges entity declaration events with a remote
// collaborator through a mailbox. Inbound events are applied to the local
// ontology on its owner goroutine; local declaration changes are pushed
// back out.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/translate"
)

// PropName is the event property holding the entity's short name.
const PropName = "name"

// ElementEvent is the wire form of one declaration change.
type ElementEvent struct {
	Type  string            `json:"type"`
	Props map[string]string `json:"props"`
	IsAdd bool              `json:"isAdd"`
}

// EventFromNotification builds the outbound event for a declaration change.
func EventFromNotification(n translate.Notification) ElementEvent {
	return ElementEvent{
		Type:  string(n.Kind),
		Props: map[string]string{PropName: n.Name},
		IsAdd: n.Add,
	}
}

// Name returns the entity name carried by the event.
func (e ElementEvent) Name() string { return e.Props[PropName] }

// Kind returns the entity kind named by the event type.
func (e ElementEvent) Kind() (ontology.EntityKind, error) {
	return ontology.ParseEntityKind(e.Type)
}

// Validate checks the event type and the presence of a name.
func (e ElementEvent) Validate() error {
	if _, err := e.Kind(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(e.Name()) == "" {
		return fmt.Errorf("%w: missing %q property", ErrMalformedEvent, PropName)
	}
	return nil
}

// Encode serializes the event.
func (e ElementEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// DecodeEvent parses and validates a payload. Every failure wraps
// ErrMalformedEvent.
func DecodeEvent(data []byte) (ElementEvent, error) {
	var ev ElementEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ElementEvent{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return ElementEvent{}, err
	}
	return ev, nil
}
