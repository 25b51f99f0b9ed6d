package bpm

import "testing"

func TestParseOutput(t *testing.T) {
	value, err := parseOutput([]byte("120.624\n"))
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}
	if value != 120.624 {
		t.Errorf("Expected 120.624, got %v", value)
	}
}

func TestParseOutputGarbage(t *testing.T) {
	if _, err := parseOutput([]byte("not a number")); err == nil {
		t.Error("Expected error for non-numeric output")
	}
}

func TestParseOutputEmpty(t *testing.T) {
	if _, err := parseOutput([]byte("")); err == nil {
		t.Error("Expected error for empty output")
	}
}
