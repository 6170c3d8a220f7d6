package enums

import "testing"

func TestParseProductConditionNormalizes(t *testing.T) {
	got, err := ParseProductCondition(" USED ")
	if err != nil {
		t.Fatalf("ParseProductCondition: %v", err)
	}
	if got != ProductConditionUsed {
		t.Fatalf("expected used, got %q", got)
	}
	if _, err := ParseProductCondition("refurbished"); err == nil {
		t.Fatal("expected error for unknown condition")
	}
}

func TestDeliveryStatusTerminal(t *testing.T) {
	for _, status := range validDeliveryStatuses {
		want := status == DeliveryStatusCompleted || status == DeliveryStatusFailed
		if status.IsTerminal() != want {
			t.Fatalf("status %s terminal=%v", status, status.IsTerminal())
		}
	}
	if _, err := ParseDeliveryStatus("lost"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestUserRoleAssignable(t *testing.T) {
	if UserRoleGuest.Assignable() {
		t.Fatal("guest must not be assignable")
	}
	if !UserRoleAdmin.Assignable() || !UserRoleUser.Assignable() {
		t.Fatal("admin and user must be assignable")
	}
	if _, err := ParseUserRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseDeliveryOption(t *testing.T) {
	if got, err := ParseDeliveryOption("Pickup"); err != nil || got != DeliveryOptionPickup {
		t.Fatalf("ParseDeliveryOption(Pickup) = %q, %v", got, err)
	}
	if _, err := ParseDeliveryOption("drone"); err == nil {
		t.Fatal("expected error for unknown option")
	}
}
