package phonelinks

import "testing"

func TestLinks(t *testing.T) {
	phone := "+91 (98765) 43-210"
	if got := WhatsApp(phone); got != "https://wa.me/919876543210" {
		t.Fatalf("unexpected whatsapp link %q", got)
	}
	if got := Tel(phone); got != "tel:+919876543210" {
		t.Fatalf("unexpected tel link %q", got)
	}
}

func TestEmptyPhone(t *testing.T) {
	if WhatsApp("") != "" || Tel("  ") != "" || WhatsApp("n/a") != "" {
		t.Fatal("expected empty links for missing phone")
	}
}
