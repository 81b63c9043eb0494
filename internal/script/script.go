// Package script loads the ordered list of action descriptors that every
// data record is replayed through.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mj1618/visual-runner/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidAction is returned for steps whose action is not setText or Click.
var ErrInvalidAction = errors.New("invalid action")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is the encoding of a script file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// rawStep mirrors one entry of the script file before validation.
type rawStep struct {
	FieldName string `json:"field_name" yaml:"field_name"`
	Action    string `json:"action"     yaml:"action"`
	ObjectID  string `json:"objectId"   yaml:"objectId"`
}

// FormatFor picks the format from a file extension; anything other than
// .yaml/.yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the script at path.
func Load(path string) ([]model.ActionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	steps, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}
	return steps, nil
}

// Parse decodes and validates script content. A step without objectId is
// kept; the run loop skips it.
func Parse(data []byte, format Format) ([]model.ActionDescriptor, error) {
	var raw []rawStep
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported script format %q", format)
	}

	steps := make([]model.ActionDescriptor, 0, len(raw))
	for i, r := range raw {
		kind, err := model.ParseActionKind(r.Action)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w: %v", i+1, ErrInvalidAction, err)
		}
		steps = append(steps, model.ActionDescriptor{
			FieldName: r.FieldName,
			Action:    kind,
			ObjectID:  strings.TrimSpace(r.ObjectID),
		})
	}
	return steps, nil
}
