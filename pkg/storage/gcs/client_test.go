package gcs

import (
	"context"
	"testing"

	"github.com/bargen/bargen-backend/pkg/config"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
)

func newURLOnlyClient(t *testing.T, bucket string) *Client {
	t.Helper()
	return &Client{bucket: bucket, publicBase: "https://storage.googleapis.com"}
}

func TestDirectURLUsesBucket(t *testing.T) {
	c := newURLOnlyClient(t, "bargen-photos")
	got := c.DirectURL("products/abc/photo 1.jpg")
	want := "https://storage.googleapis.com/bargen-photos/products/abc/photo%201.jpg"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestDirectURLPassesThroughAbsolute(t *testing.T) {
	c := newURLOnlyClient(t, "bargen-photos")
	ref := "https://cdn.example.com/a.png"
	if got := c.DirectURL(ref); got != ref {
		t.Fatalf("expected absolute ref unchanged, got %q", got)
	}
	if got := c.DirectURL(""); got != "" {
		t.Fatalf("expected empty ref to stay empty, got %q", got)
	}
}

func TestNewClientWithoutBucketFallsBackToBaseURL(t *testing.T) {
	c, err := NewClient(context.Background(), config.GCSConfig{PublicBaseURL: "https://media.bargen.test/"}, config.GCPConfig{}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := c.DirectURL("x/y.jpg"); got != "https://media.bargen.test/x/y.jpg" {
		t.Fatalf("unexpected url %q", got)
	}

	_, err = c.Fetch(context.Background(), "x/y.jpg")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail without storage")
	}
}
