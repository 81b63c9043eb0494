package model

import (
	"fmt"
	"strings"
)

// ActionKind is the closed set of input operations a script step can request.
type ActionKind int

const (
	ActionSetText ActionKind = iota + 1 // focus the element, then type the payload
	ActionClick                         // press-release at the element center
)

// ParseActionKind converts the script spelling ("setText", "Click") to an ActionKind.
// Matching is case-insensitive.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "settext":
		return ActionSetText, nil
	case "click":
		return ActionClick, nil
	default:
		return 0, fmt.Errorf("unknown action %q (expected setText or Click)", s)
	}
}

func (k ActionKind) String() string {
	switch k {
	case ActionSetText:
		return "setText"
	case ActionClick:
		return "Click"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// MarshalText emits the script spelling so reports round-trip into scripts.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the script spelling.
func (k *ActionKind) UnmarshalText(b []byte) error {
	parsed, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ActionDescriptor is one scripted step. Steps run in script order for every record.
type ActionDescriptor struct {
	FieldName string     `yaml:"field_name" json:"field_name"` // Data column or credential field supplying the payload
	Action    ActionKind `yaml:"action"     json:"action"`
	ObjectID  string     `yaml:"objectId"   json:"objectId"` // Reference image file name
}
