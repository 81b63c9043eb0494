package output

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/mj1618/visual-runner/internal/model"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes.
var Stdout io.Writer = os.Stdout

// LocateResult is the output of the `locate` command and MCP tool.
type LocateResult struct {
	Object   string       `yaml:"object"             json:"object"`
	Found    bool         `yaml:"found"              json:"found"`
	Score    float64      `yaml:"score"              json:"score"`
	Location *model.Point `yaml:"location,omitempty" json:"location,omitempty"`
	// Threshold is the confidence the score was compared with.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Waited    string  `yaml:"waited,omitempty" json:"waited,omitempty"`
}

// NewLocateResult describes a match of object at threshold.
func NewLocateResult(object string, m model.MatchResult, threshold float64) LocateResult {
	r := LocateResult{Object: object, Found: m.Found, Score: m.Score, Threshold: threshold}
	if m.Found {
		loc := m.Location
		r.Location = &loc
	}
	return r
}

// ActionResult is the output of a single input action.
type ActionResult struct {
	OK      bool   `yaml:"ok"                json:"ok"`
	Action  string `yaml:"action"            json:"action"`
	Object  string `yaml:"object,omitempty"  json:"object,omitempty"`
	X       int    `yaml:"x,omitempty"       json:"x,omitempty"`
	Y       int    `yaml:"y,omitempty"       json:"y,omitempty"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	URL     string `yaml:"url,omitempty"     json:"url,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// ScreenshotResult is the output of the `screenshot` command.
type ScreenshotResult struct {
	Path   string `yaml:"path"   json:"path"`
	Width  int    `yaml:"width"  json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(Stdout, OutputFormat, v)
}

// Fprint serializes v to w in format f.
func Fprint(w io.Writer, f Format, v interface{}) error {
	switch f {
	case FormatJSON:
		return writeJSON(w, v, PrettyOutput)
	case FormatYAML:
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
