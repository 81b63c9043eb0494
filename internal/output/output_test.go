package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/visual-runner/internal/model"
	"gopkg.in/yaml.v3"
)

func sampleReport() *model.Report {
	rep := &model.Report{
		RunID:    "2f1c",
		Started:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Finished: time.Date(2024, 3, 1, 10, 0, 12, 0, time.UTC),
		Records:  1,
	}
	rep.Add(model.StepResult{Record: 1, Step: 1, Field: "Name", Action: model.ActionSetText, ObjectID: "name.png",
		Outcome: model.OutcomePerformed, Score: 0.98, Location: &model.Point{X: 10, Y: 20}})
	rep.Add(model.StepResult{Record: 1, Step: 2, Action: model.ActionClick, Outcome: model.OutcomeSkipped, Reason: "missing objectId"})
	return rep
}

func TestFprint_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, FormatYAML, sampleReport()); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	// YAML output should be multi-line
	if strings.Count(output, "\n") <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", output)
	}
	for _, want := range []string{"outcome: performed", "outcome: skipped", "action: setText", "action: Click", "object: name.png"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	var decoded model.Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Performed != 1 || decoded.Skipped != 1 {
		t.Errorf("counters: got performed=%d skipped=%d", decoded.Performed, decoded.Skipped)
	}
	if len(decoded.Results) != 2 || decoded.Results[1].Outcome != model.OutcomeSkipped {
		t.Errorf("results did not round-trip: %+v", decoded.Results)
	}
}

func TestFprint_JSONCompact(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, FormatJSON, sampleReport()); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	// Compact output should be a single line (plus newline from Encode)
	if strings.Count(output, "\n") != 1 {
		t.Errorf("compact JSON should be one line, got:\n%s", output)
	}
	if !strings.Contains(output, `"outcome":"performed"`) {
		t.Errorf("outcome not encoded as text: %s", output)
	}
	if strings.Contains(output, "Elapsed") {
		t.Errorf("elapsed should not be serialized: %s", output)
	}
}

func TestFprint_JSONPretty(t *testing.T) {
	PrettyOutput = true
	defer func() { PrettyOutput = false }()

	var buf bytes.Buffer
	if err := Fprint(&buf, FormatJSON, ScreenshotResult{Path: "a.png", Width: 3, Height: 4}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"path\": \"a.png\",\n  \"width\": 3,\n  \"height\": 4\n}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestFprint_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	if err := Fprint(&buf, FormatJSON, ActionResult{OK: true, Action: "open", URL: "https://x.test/?a=1&b=<2>"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "a=1&b=<2>") {
		t.Errorf("URL was escaped: %s", buf.String())
	}
}

func TestPrint_UsesGlobals(t *testing.T) {
	var buf bytes.Buffer
	old, oldFmt := Stdout, OutputFormat
	Stdout, OutputFormat = &buf, FormatJSON
	defer func() { Stdout, OutputFormat = old, oldFmt }()

	if err := Print(ActionResult{OK: true, Action: "click"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"ok\":true,\"action\":\"click\"}\n" {
		t.Errorf("got %q", got)
	}
}

func TestNewLocateResult(t *testing.T) {
	found := NewLocateResult("ok.png", model.MatchResult{Found: true, Location: model.Point{X: 5, Y: 6}, Score: 0.91}, 0.8)
	if found.Location == nil || *found.Location != (model.Point{X: 5, Y: 6}) {
		t.Errorf("location: got %v", found.Location)
	}

	missed := NewLocateResult("ok.png", model.MatchResult{Location: model.Point{X: 5, Y: 6}, Score: 0.3}, 0.8)
	if missed.Location != nil {
		t.Errorf("not-found result should omit location, got %v", missed.Location)
	}
	if missed.Threshold != 0.8 || missed.Found {
		t.Errorf("unexpected result: %+v", missed)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"agent", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
