package cart

import (
	"testing"

	"github.com/bargen/bargen-backend/pkg/config"
)

func TestRecommendPicksCheapestCovering(t *testing.T) {
	cases := []struct {
		total int64
		want  string
	}{
		{total: 1, want: "Lite"},
		{total: 1000, want: "Lite"},
		{total: 1001, want: "Plus"},
		{total: 20000, want: "Max"},
		{total: 50000, want: "Max"},
	}
	for _, tc := range cases {
		got := testCatalog.Recommend(tc.total)
		if got == nil || got.Name != tc.want {
			t.Fatalf("Recommend(%d) = %+v, want %s", tc.total, got, tc.want)
		}
	}
}

func TestRecommendEmptyCart(t *testing.T) {
	if got := testCatalog.Recommend(0); got != nil {
		t.Fatalf("expected nil for empty cart, got %+v", got)
	}
	if got := testCatalog.Recommend(-5); got != nil {
		t.Fatalf("expected nil for negative total, got %+v", got)
	}
	if got := NewCatalog(nil).Recommend(100); got != nil {
		t.Fatalf("expected nil for empty catalog, got %+v", got)
	}
}

func TestDefaultCatalogFromConfig(t *testing.T) {
	opts, err := config.CartConfig{}.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	catalog := NewCatalog(opts)
	basic, ok := catalog.Lookup("basic deal protection")
	if !ok {
		t.Fatal("expected basic option")
	}
	if basic.Premium != 4900 || basic.CoverageAmount != 100000 {
		t.Fatalf("unexpected basic option %+v", basic)
	}
	if got := catalog.Recommend(300000); got == nil || got.Name != "Standard Deal Protection" {
		t.Fatalf("unexpected recommendation %+v", got)
	}
}
