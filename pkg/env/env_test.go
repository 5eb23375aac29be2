package env

import "testing"

func TestGetPrefersPrefixedName(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	if got := Get("LOG_FORMAT", "json"); got != "console" {
		t.Fatalf("expected bare fallback, got %q", got)
	}

	t.Setenv("STOREFRONT_LOG_FORMAT", "json")
	if got := Get("LOG_FORMAT", "x"); got != "json" {
		t.Fatalf("expected prefixed value, got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	if got := Get("STOREFRONT_UNSET_FOR_TEST", "dflt"); got != "dflt" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
