package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("BARGEN_TEST_VALUE", "   ")
	if got := Get("BARGEN_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("BARGEN_TEST_VALUE", " set ")
	if got := Get("BARGEN_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}

func TestLookupPrefersFirstKey(t *testing.T) {
	t.Setenv("BARGEN_TEST_A", "")
	t.Setenv("BARGEN_TEST_B", "b")
	t.Setenv("BARGEN_TEST_C", "c")
	got, ok := Lookup("BARGEN_TEST_A", "BARGEN_TEST_B", "BARGEN_TEST_C")
	if !ok || got != "b" {
		t.Fatalf("expected b, got %q (%v)", got, ok)
	}
	if _, ok := Lookup("BARGEN_TEST_MISSING"); ok {
		t.Fatal("expected missing key to report false")
	}
}
