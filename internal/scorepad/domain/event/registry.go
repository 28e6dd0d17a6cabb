package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEventIDRequired indicates a missing event id.
	ErrEventIDRequired = errors.New("event id is required")
	// ErrUnknownType indicates an event type outside the catalog.
	ErrUnknownType = errors.New("unknown event type")
	// ErrInvalidPayload indicates a payload that fails its type's schema.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Validator decodes and validates a payload for one catalog entry.
type Validator func(payload []byte) error

// Registry maps every catalog event type to its payload validator.
//
// Validation happens once, at the append boundary; reducers can then decode
// payloads without re-checking shape.
type Registry struct {
	validators map[Type]Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[Type]Validator)}
}

// Register binds a validator to an event type. Later registrations win.
func (r *Registry) Register(t Type, v Validator) {
	if r == nil || !t.IsValid() || v == nil {
		return
	}
	r.validators[t] = v
}

// Known reports whether the type belongs to the catalog.
func (r *Registry) Known(t Type) bool {
	if r == nil {
		return false
	}
	_, ok := r.validators[t]
	return ok
}

// ValidateForAppend checks the envelope and payload before any write.
func (r *Registry) ValidateForAppend(evt Event) (Event, error) {
	if r == nil {
		return Event{}, fmt.Errorf("event registry is required")
	}
	evt.EventID = strings.TrimSpace(evt.EventID)
	if evt.EventID == "" {
		return Event{}, ErrEventIDRequired
	}
	validator, ok := r.validators[evt.Type]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownType, evt.Type)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)
	if err := validator(evt.PayloadJSON); err != nil {
		return Event{}, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, evt.Type, err)
	}
	return evt, nil
}

// DecodeStrict parses payload JSON into target, rejecting unknown fields.
func DecodeStrict(payload []byte, target any) error {
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

// StrictValidator returns a Validator that strictly decodes into a fresh
// value produced by prototype.
func StrictValidator(prototype func() any) Validator {
	return func(payload []byte) error {
		return DecodeStrict(payload, prototype())
	}
}
