package model

import "testing"

func TestParseActionKind_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  ActionKind
	}{
		{"setText", ActionSetText},
		{"SetText", ActionSetText},
		{"settext", ActionSetText},
		{"Click", ActionClick},
		{"click", ActionClick},
		{" Click ", ActionClick},
	}
	for _, tt := range tests {
		got, err := ParseActionKind(tt.input)
		if err != nil {
			t.Errorf("ParseActionKind(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseActionKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseActionKind_Invalid(t *testing.T) {
	for _, s := range []string{"", "doubleClick", "type", "set text"} {
		if _, err := ParseActionKind(s); err == nil {
			t.Errorf("ParseActionKind(%q) should fail", s)
		}
	}
}

func TestActionKind_TextRoundTrip(t *testing.T) {
	for _, k := range []ActionKind{ActionSetText, ActionClick} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got ActionKind
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != k {
			t.Errorf("round trip %v: got %v", k, got)
		}
	}
}

func TestRecord_GetMissingColumn(t *testing.T) {
	r := Record{"Name": "A"}
	if got := r.Get("Name"); got != "A" {
		t.Errorf("Get(Name) = %q, want A", got)
	}
	if got := r.Get("Email"); got != "" {
		t.Errorf("Get(Email) = %q, want empty", got)
	}
}
