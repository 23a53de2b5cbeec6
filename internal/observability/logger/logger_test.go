package logger

import "testing"

func TestNewDefaults(t *testing.T) {
	log, err := New(nil, Config{ServiceName: "propease-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log == nil {
		t.Fatal("expected logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(nil, Config{Level: "noisy"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNormalizeFormat(t *testing.T) {
	if got := normalizeFormat("console"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
	if got := normalizeFormat(""); got != "json" {
		t.Fatalf("expected json, got %q", got)
	}
}
