package protocol

import (
	"encoding/json"
	"fmt"
)

// Location is the payload of the Hydro-Location header.
type Location struct {
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`
}

// TargetOrDefault returns the target selector, defaulting to the body.
func (l Location) TargetOrDefault() string {
	if l.Target == "" {
		return DefaultTarget
	}
	return l.Target
}

// ParseLocation decodes a Hydro-Location header value.
func ParseLocation(raw string) (Location, error) {
	var loc Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return Location{}, fmt.Errorf("decode location: %w", err)
	}
	return loc, nil
}

// Scope names who receives a trigger.
type Scope string

const (
	ScopeParent Scope = "parent"
	ScopeGlobal Scope = "global"
)

// Trigger is one entry of the Hydro-Trigger header.
type Trigger struct {
	Name  string          `json:"name"`
	Scope Scope           `json:"scope"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ParseTriggers decodes a Hydro-Trigger header value.
func ParseTriggers(raw string) ([]Trigger, error) {
	var triggers []Trigger
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		return nil, fmt.Errorf("decode triggers: %w", err)
	}
	return triggers, nil
}

// EventName builds the bus name a trigger is broadcast under:
// "<scope-id>:<name>".
func EventName(scopeID, name string) string {
	return scopeID + ":" + name
}

// EventDescriptor is the content of the x-on-hydro-event attribute.
type EventDescriptor struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// ParseEventDescriptor decodes an x-on-hydro-event attribute.
func ParseEventDescriptor(raw string) (EventDescriptor, error) {
	var d EventDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return EventDescriptor{}, fmt.Errorf("decode event descriptor: %w", err)
	}
	return d, nil
}
