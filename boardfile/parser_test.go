package boardfile

import (
	"strings"
	"testing"
)

func TestParseValidTemplate(t *testing.T) {
	input := "3x3\nunicorn\nunicorn\nrainbow\nrainbow\nrainbow\nunicorn\nrainbow\nunicorn\nrainbow\n"
	rows, cols, values, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows != 3 || cols != 3 {
		t.Errorf("expected 3x3, got %dx%d", rows, cols)
	}
	if len(values) != 9 {
		t.Fatalf("expected 9 values, got %d", len(values))
	}
	if values[0] != "unicorn" || values[8] != "rainbow" {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	input := "  2x1  \n  fox \n hound \n"
	rows, cols, values, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows != 2 || cols != 1 {
		t.Errorf("expected 2x1, got %dx%d", rows, cols)
	}
	if values[0] != "fox" || values[1] != "hound" {
		t.Errorf("expected trimmed values, got %v", values)
	}
}

func TestParseRejectsMalformedDimensions(t *testing.T) {
	cases := []string{"", "3", "3x", "xa", "0x3", "3x-1", "threexthree"}
	for _, in := range cases {
		if _, _, _, err := Parse(strings.NewReader(in + "\n")); err == nil {
			t.Errorf("Parse(%q): expected error, got none", in)
		}
	}
}

func TestParseRejectsEmptyValue(t *testing.T) {
	input := "1x2\nfox\n\n"
	if _, _, _, err := Parse(strings.NewReader(input)); err == nil {
		t.Error("expected error for empty value line")
	}
}

func TestParseRejectsInternalWhitespace(t *testing.T) {
	input := "1x1\nred fox\n"
	if _, _, _, err := Parse(strings.NewReader(input)); err == nil {
		t.Error("expected error for value containing whitespace")
	}
}

func TestParseRejectsCountMismatch(t *testing.T) {
	input := "2x2\nfox\nhound\nbear\n"
	if _, _, _, err := Parse(strings.NewReader(input)); err == nil {
		t.Error("expected error for value count mismatch")
	}
}
